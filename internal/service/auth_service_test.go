package service_test

import (
	"context"
	"testing"

	"eventify-backend/internal/model"
	repoMocks "eventify-backend/internal/repository/mocks"
	"eventify-backend/internal/service"
	apperrors "eventify-backend/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hashed(t *testing.T, password string) *string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	s := string(h)
	return &s
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - hashes password and normalizes email", func(t *testing.T) {
		users := repoMocks.NewUserRepositoryMock()
		svc := service.NewAuthService(users, bcrypt.MinCost)

		users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "sam@example.com" &&
				u.Username == "sam" &&
				u.AuthProvider == model.AuthProviderManual &&
				u.PasswordHash != nil &&
				bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte("s3cret")) == nil
		})).Return(&model.User{ID: 1, Email: "sam@example.com"}, nil).Once()

		user, err := svc.Signup(ctx, model.SignupRequest{Username: "sam", Email: " Sam@Example.com ", Password: "s3cret"})

		require.NoError(t, err)
		assert.Equal(t, 1, user.ID)
		users.AssertExpectations(t)
	})

	t.Run("Failed - email taken", func(t *testing.T) {
		users := repoMocks.NewUserRepositoryMock()
		svc := service.NewAuthService(users, bcrypt.MinCost)

		users.On("Create", ctx, mock.Anything).Return(nil, apperrors.ErrEmailTaken).Once()

		_, err := svc.Signup(ctx, model.SignupRequest{Username: "sam", Email: "sam@example.com", Password: "x"})
		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	})

	t.Run("Failed - blank fields", func(t *testing.T) {
		svc := service.NewAuthService(repoMocks.NewUserRepositoryMock(), bcrypt.MinCost)
		_, err := svc.Signup(ctx, model.SignupRequest{Username: " ", Email: "sam@example.com", Password: "x"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		users := repoMocks.NewUserRepositoryMock()
		svc := service.NewAuthService(users, bcrypt.MinCost)

		users.On("FindByEmail", ctx, "sam@example.com").
			Return(&model.User{ID: 3, Email: "sam@example.com", PasswordHash: hashed(t, "s3cret")}, nil).Once()

		user, err := svc.Login(ctx, model.LoginRequest{Email: "SAM@example.com", Password: "s3cret"})

		require.NoError(t, err)
		assert.Equal(t, 3, user.ID)
	})

	t.Run("Failed - wrong password", func(t *testing.T) {
		users := repoMocks.NewUserRepositoryMock()
		svc := service.NewAuthService(users, bcrypt.MinCost)

		users.On("FindByEmail", ctx, "sam@example.com").
			Return(&model.User{ID: 3, PasswordHash: hashed(t, "s3cret")}, nil).Once()

		_, err := svc.Login(ctx, model.LoginRequest{Email: "sam@example.com", Password: "nope"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("Failed - no local password", func(t *testing.T) {
		users := repoMocks.NewUserRepositoryMock()
		svc := service.NewAuthService(users, bcrypt.MinCost)

		users.On("FindByEmail", ctx, "sam@example.com").Return(&model.User{ID: 3}, nil).Once()

		_, err := svc.Login(ctx, model.LoginRequest{Email: "sam@example.com", Password: "x"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("Failed - unknown email", func(t *testing.T) {
		users := repoMocks.NewUserRepositoryMock()
		svc := service.NewAuthService(users, bcrypt.MinCost)

		users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrUserNotFound).Once()

		_, err := svc.Login(ctx, model.LoginRequest{Email: "ghost@example.com", Password: "x"})
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
