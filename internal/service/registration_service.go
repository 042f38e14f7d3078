package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"eventify-backend/internal/cache"
	"eventify-backend/internal/model"
	"eventify-backend/internal/repository"
	apperrors "eventify-backend/pkg/app_errors"
	"eventify-backend/pkg/logger"

	"go.uber.org/zap"
)

const invalidateAttempts = 3

type RegistrationService interface {
	// Register records (userID, eventName); repeating it only refreshes the timestamp.
	Register(ctx context.Context, userID int, eventName string) (*model.Registration, error)
	// ListEventNames returns the names userID registered for. Anonymous callers get an empty list.
	ListEventNames(ctx context.Context, userID int) ([]string, error)
	// CapturePending keeps a registration attempt made without an identity.
	CapturePending(ctx context.Context, eventName, link string) (*model.PendingRegistration, error)
	// ReplayPending consumes a captured attempt and registers it for userID.
	ReplayPending(ctx context.Context, intentID string, userID int) (*model.PendingRegistration, error)
}

type RegistrationServiceImpl struct {
	repo    repository.RegistrationRepository
	cache   cache.RegistrationCache
	intents cache.IntentStore
	now     func() time.Time
}

func NewRegistrationService(repo repository.RegistrationRepository, regCache cache.RegistrationCache, intents cache.IntentStore) RegistrationService {
	return &RegistrationServiceImpl{
		repo:    repo,
		cache:   regCache,
		intents: intents,
		now:     time.Now,
	}
}

func (s *RegistrationServiceImpl) Register(ctx context.Context, userID int, eventName string) (*model.Registration, error) {
	if userID == 0 {
		return nil, apperrors.ErrAuthRequired
	}
	eventName = strings.TrimSpace(eventName)
	if eventName == "" {
		return nil, apperrors.NewValidationError("eventName is required")
	}

	reg, err := s.repo.Upsert(ctx, userID, eventName, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.invalidate(ctx, userID); err != nil {
		logger.WithComponent("service").Error("registration cache invalidation failed",
			zap.Int("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("invalidate registrations of user %d: %w", userID, err)
	}
	return reg, nil
}

// invalidate must succeed before a registration is reported as recorded.
func (s *RegistrationServiceImpl) invalidate(ctx context.Context, userID int) error {
	var err error
	for attempt := 0; attempt < invalidateAttempts; attempt++ {
		if err = s.cache.Invalidate(ctx, userID); err == nil {
			return nil
		}
	}
	return err
}

func (s *RegistrationServiceImpl) ListEventNames(ctx context.Context, userID int) ([]string, error) {
	if userID == 0 {
		return []string{}, nil
	}
	log := logger.WithComponent("service").With(zap.Int("user_id", userID))

	names, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		log.Warn("registration cache read failed", zap.Error(err))
	}
	if err == nil && ok {
		return sortedCopy(names), nil
	}

	version, versionErr := s.cache.Version(ctx, userID)
	names, err = s.repo.ListEventNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	if versionErr != nil {
		log.Warn("registration cache version read failed", zap.Error(versionErr))
		return sortedCopy(names), nil
	}

	stored, err := s.cache.Set(ctx, userID, version, names)
	if err != nil {
		log.Warn("registration cache write failed", zap.Error(err))
	} else if !stored {
		log.Debug("registration cache write skipped, set changed during load")
	}
	return sortedCopy(names), nil
}

func (s *RegistrationServiceImpl) CapturePending(ctx context.Context, eventName, link string) (*model.PendingRegistration, error) {
	eventName = strings.TrimSpace(eventName)
	if eventName == "" {
		return nil, apperrors.NewValidationError("eventName is required")
	}
	intent := &model.PendingRegistration{
		EventName: eventName,
		Link:      strings.TrimSpace(link),
		CreatedAt: s.now().UTC(),
	}
	if err := s.intents.Save(ctx, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func (s *RegistrationServiceImpl) ReplayPending(ctx context.Context, intentID string, userID int) (*model.PendingRegistration, error) {
	if userID == 0 {
		return nil, apperrors.ErrAuthRequired
	}
	intent, err := s.intents.Consume(ctx, intentID)
	if err != nil {
		return nil, err
	}

	if _, err := s.Register(ctx, userID, intent.EventName); err != nil {
		// Put it back so the attempt is not lost.
		if saveErr := s.intents.Save(ctx, intent); saveErr != nil {
			logger.WithComponent("service").Error("restore pending registration failed",
				zap.String("intent_id", intent.ID), zap.Error(saveErr))
		}
		return nil, err
	}

	logger.WithComponent("service").Info("pending registration replayed",
		zap.Int("user_id", userID), zap.String("event_name", intent.EventName))
	return intent, nil
}

func sortedCopy(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}
