package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventify-backend/internal/cache"
	cacheMocks "eventify-backend/internal/cache/mocks"
	"eventify-backend/internal/model"
	repoMocks "eventify-backend/internal/repository/mocks"
	"eventify-backend/internal/service"
	apperrors "eventify-backend/pkg/app_errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRegistrationService(t *testing.T) (
	service.RegistrationService,
	*repoMocks.RegistrationRepositoryMock,
	*cacheMocks.RegistrationCacheMock,
	*cacheMocks.IntentStoreMock,
) {
	t.Helper()
	repo := repoMocks.NewRegistrationRepositoryMock()
	regCache := cacheMocks.NewRegistrationCacheMock()
	intents := cacheMocks.NewIntentStoreMock()
	t.Cleanup(func() {
		repo.AssertExpectations(t)
		regCache.AssertExpectations(t)
		intents.AssertExpectations(t)
	})
	return service.NewRegistrationService(repo, regCache, intents), repo, regCache, intents
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - trims name and invalidates cache", func(t *testing.T) {
		svc, repo, regCache, _ := setupRegistrationService(t)

		repo.On("Upsert", ctx, 7, "Go Meetup", mock.AnythingOfType("time.Time")).
			Return(&model.Registration{ID: 1, UserID: 7, EventName: "Go Meetup"}, nil).Once()
		regCache.On("Invalidate", ctx, []int{7}).Return(nil).Once()

		reg, err := svc.Register(ctx, 7, "  Go Meetup ")

		require.NoError(t, err)
		assert.Equal(t, "Go Meetup", reg.EventName)
	})

	t.Run("Success - invalidation retried", func(t *testing.T) {
		svc, repo, regCache, _ := setupRegistrationService(t)

		repo.On("Upsert", ctx, 7, "Go Meetup", mock.Anything).Return(&model.Registration{ID: 1}, nil).Once()
		regCache.On("Invalidate", ctx, []int{7}).Return(errors.New("redis timeout")).Once()
		regCache.On("Invalidate", ctx, []int{7}).Return(nil).Once()

		_, err := svc.Register(ctx, 7, "Go Meetup")
		require.NoError(t, err)
	})

	t.Run("Failed - cache cannot be invalidated", func(t *testing.T) {
		svc, repo, regCache, _ := setupRegistrationService(t)
		redisErr := errors.New("redis down")

		repo.On("Upsert", ctx, 7, "Go Meetup", mock.Anything).Return(&model.Registration{ID: 1}, nil).Once()
		regCache.On("Invalidate", ctx, []int{7}).Return(redisErr).Times(3)

		_, err := svc.Register(ctx, 7, "Go Meetup")
		assert.ErrorIs(t, err, redisErr)
	})

	t.Run("Failed - empty event name", func(t *testing.T) {
		svc, _, _, _ := setupRegistrationService(t)
		_, err := svc.Register(ctx, 7, "   ")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Failed - anonymous", func(t *testing.T) {
		svc, _, _, _ := setupRegistrationService(t)
		_, err := svc.Register(ctx, 0, "Go Meetup")
		assert.ErrorIs(t, err, apperrors.ErrAuthRequired)
	})
}

func TestRegistrationService_ListEventNames(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - anonymous gets empty list", func(t *testing.T) {
		svc, _, _, _ := setupRegistrationService(t)

		names, err := svc.ListEventNames(ctx, 0)

		require.NoError(t, err)
		assert.NotNil(t, names)
		assert.Empty(t, names)
	})

	t.Run("Success - cache hit", func(t *testing.T) {
		svc, repo, regCache, _ := setupRegistrationService(t)

		regCache.On("Get", ctx, 7).Return([]string{"b", "a"}, true, nil).Once()

		names, err := svc.ListEventNames(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, names)
		repo.AssertNotCalled(t, "ListEventNames", mock.Anything, mock.Anything)
	})

	t.Run("Success - cache miss loads and fills", func(t *testing.T) {
		svc, repo, regCache, _ := setupRegistrationService(t)

		regCache.On("Get", ctx, 7).Return(nil, false, nil).Once()
		regCache.On("Version", ctx, 7).Return(int64(4), nil).Once()
		repo.On("ListEventNames", ctx, 7).Return([]string{"Hackathon", "Go Meetup"}, nil).Once()
		regCache.On("Set", ctx, 7, int64(4), []string{"Hackathon", "Go Meetup"}).Return(true, nil).Once()

		names, err := svc.ListEventNames(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, []string{"Go Meetup", "Hackathon"}, names)
	})

	t.Run("Success - cache error falls back to database", func(t *testing.T) {
		svc, repo, regCache, _ := setupRegistrationService(t)

		regCache.On("Get", ctx, 7).Return(nil, false, errors.New("redis down")).Once()
		regCache.On("Version", ctx, 7).Return(int64(0), errors.New("redis down")).Once()
		repo.On("ListEventNames", ctx, 7).Return([]string{"Go Meetup"}, nil).Once()

		names, err := svc.ListEventNames(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, []string{"Go Meetup"}, names)
	})

	t.Run("Failed - database error", func(t *testing.T) {
		svc, repo, regCache, _ := setupRegistrationService(t)
		dbErr := errors.New("connection reset")

		regCache.On("Get", ctx, 7).Return(nil, false, nil).Once()
		regCache.On("Version", ctx, 7).Return(int64(0), nil).Once()
		repo.On("ListEventNames", ctx, 7).Return(nil, dbErr).Once()

		_, err := svc.ListEventNames(ctx, 7)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("Success - registration during load is not hidden by the cache", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })

		repo := repoMocks.NewRegistrationRepositoryMock()
		svc := service.NewRegistrationService(repo, cache.NewRedisRegistrationCache(rdb, 5*time.Minute), cacheMocks.NewIntentStoreMock())

		repo.On("ListEventNames", ctx, 7).Return([]string{}, nil).Run(func(mock.Arguments) {
			_, err := svc.Register(ctx, 7, "Go Meetup")
			require.NoError(t, err)
		}).Once()
		repo.On("Upsert", ctx, 7, "Go Meetup", mock.Anything).Return(&model.Registration{ID: 1}, nil).Once()
		repo.On("ListEventNames", ctx, 7).Return([]string{"Go Meetup"}, nil).Once()

		first, err := svc.ListEventNames(ctx, 7)
		require.NoError(t, err)
		assert.Empty(t, first)

		second, err := svc.ListEventNames(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, []string{"Go Meetup"}, second)
		repo.AssertExpectations(t)
	})
}

func TestRegistrationService_Pending(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - capture", func(t *testing.T) {
		svc, _, _, intents := setupRegistrationService(t)

		intents.On("Save", ctx, mock.MatchedBy(func(p *model.PendingRegistration) bool {
			return p.EventName == "Go Meetup" && p.Link == "https://forms.example/x" && !p.CreatedAt.IsZero()
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.PendingRegistration).ID = "intent-1"
		}).Return(nil).Once()

		intent, err := svc.CapturePending(ctx, " Go Meetup ", "https://forms.example/x")

		require.NoError(t, err)
		assert.Equal(t, "intent-1", intent.ID)
	})

	t.Run("Failed - capture without event name", func(t *testing.T) {
		svc, _, _, _ := setupRegistrationService(t)
		_, err := svc.CapturePending(ctx, "", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Success - replay registers once", func(t *testing.T) {
		svc, repo, regCache, intents := setupRegistrationService(t)
		intent := &model.PendingRegistration{ID: "intent-1", EventName: "Go Meetup"}

		intents.On("Consume", ctx, "intent-1").Return(intent, nil).Once()
		repo.On("Upsert", ctx, 7, "Go Meetup", mock.Anything).Return(&model.Registration{ID: 1}, nil).Once()
		regCache.On("Invalidate", ctx, []int{7}).Return(nil).Once()

		got, err := svc.ReplayPending(ctx, "intent-1", 7)

		require.NoError(t, err)
		assert.Equal(t, "Go Meetup", got.EventName)
	})

	t.Run("Failed - replay of unknown intent", func(t *testing.T) {
		svc, _, _, intents := setupRegistrationService(t)

		intents.On("Consume", ctx, "gone").Return(nil, apperrors.ErrIntentNotFound).Once()

		_, err := svc.ReplayPending(ctx, "gone", 7)
		assert.ErrorIs(t, err, apperrors.ErrIntentNotFound)
	})

	t.Run("Failed - replay restores intent when registration fails", func(t *testing.T) {
		svc, repo, _, intents := setupRegistrationService(t)
		intent := &model.PendingRegistration{ID: "intent-1", EventName: "Go Meetup"}
		dbErr := errors.New("connection reset")

		intents.On("Consume", ctx, "intent-1").Return(intent, nil).Once()
		repo.On("Upsert", ctx, 7, "Go Meetup", mock.Anything).Return(nil, dbErr).Once()
		intents.On("Save", ctx, intent).Return(nil).Once()

		_, err := svc.ReplayPending(ctx, "intent-1", 7)
		assert.ErrorIs(t, err, dbErr)
	})
}
