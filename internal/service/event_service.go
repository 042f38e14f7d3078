package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"eventify-backend/internal/blob"
	"eventify-backend/internal/cache"
	"eventify-backend/internal/database"
	"eventify-backend/internal/model"
	"eventify-backend/internal/queue"
	"eventify-backend/internal/repository"
	apperrors "eventify-backend/pkg/app_errors"
	"eventify-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	ImageField    = "eventImage"
	BrochureField = "eventBrochure"

	msgFilesRequired = "Both Image and Brochure are required."
)

type EventService interface {
	// Create validates the submission, stores both uploads and persists the event for ownerID.
	Create(ctx context.Context, ownerID int, input model.EventInput, image, brochure *multipart.FileHeader) (*model.Event, error)
	// List returns live events in scope, newest first.
	List(ctx context.Context, scope model.EventScope) ([]*model.Event, error)
	// GetByEventID returns a live event. Expired events are reported as not found
	// even before the sweeper removes them.
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	// Delete removes an event owned by requesterID together with its registrations.
	// Missing and foreign events both yield ErrEventNotFound.
	Delete(ctx context.Context, eventID uuid.UUID, requesterID int) error
}

type EventServiceConfig struct {
	GracePeriod time.Duration
	Location    *time.Location
}

type EventServiceImpl struct {
	db        database.DB
	repo      repository.EventRepository
	regRepo   repository.RegistrationRepository
	blobs     blob.Store
	regCache  cache.RegistrationCache
	blobQueue queue.BlobQueue
	cfg       EventServiceConfig
	now       func() time.Time
}

func NewEventService(
	db database.DB,
	repo repository.EventRepository,
	regRepo repository.RegistrationRepository,
	blobs blob.Store,
	regCache cache.RegistrationCache,
	blobQueue queue.BlobQueue,
	cfg EventServiceConfig,
) EventService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &EventServiceImpl{
		db:        db,
		repo:      repo,
		regRepo:   regRepo,
		blobs:     blobs,
		regCache:  regCache,
		blobQueue: blobQueue,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *EventServiceImpl) Create(ctx context.Context, ownerID int, input model.EventInput, image, brochure *multipart.FileHeader) (*model.Event, error) {
	if image == nil || brochure == nil {
		return nil, apperrors.NewValidationError(msgFilesRequired)
	}
	if ownerID == 0 {
		return nil, apperrors.ErrAuthRequired
	}

	event, err := canonicalEvent(input)
	if err != nil {
		return nil, err
	}
	event.EventID = uuid.New()
	event.OwnerID = ownerID

	log := logger.WithComponent("service").With(zap.String("event_name", event.EventName))

	at, err := ParseEventDateTime(event.Date, event.Time, s.cfg.Location)
	if err != nil {
		// Stored without an instant; the sweeper never removes it.
		log.Warn("event date/time not parseable, auto-expiry disabled", zap.Error(err))
	} else {
		event.EventDateTime = &at
	}

	event.ImagePath, err = s.blobs.Save(ctx, ImageField, image)
	if err != nil {
		return nil, err
	}
	event.BrochurePath, err = s.blobs.Save(ctx, BrochureField, brochure)
	if err != nil {
		s.discardBlobs(ctx, event.ImagePath)
		return nil, err
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		s.discardBlobs(ctx, event.ImagePath, event.BrochurePath)
		return nil, err
	}

	log.Info("event created", zap.String("event_id", created.EventID.String()), zap.Int("owner_id", ownerID))
	return created, nil
}

func (s *EventServiceImpl) List(ctx context.Context, scope model.EventScope) ([]*model.Event, error) {
	return s.repo.List(ctx, scope, s.now().Add(-s.cfg.GracePeriod))
}

func (s *EventServiceImpl) GetByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Expired(s.now(), s.cfg.GracePeriod) {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}

func (s *EventServiceImpl) Delete(ctx context.Context, eventID uuid.UUID, requesterID int) error {
	if requesterID == 0 {
		return apperrors.ErrAuthRequired
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	event, err := s.repo.FindLiveForUpdate(ctx, tx, eventID, s.now().Add(-s.cfg.GracePeriod))
	if err != nil {
		return err
	}
	// Someone else's event is reported exactly like a missing one.
	if !event.IsOwnedBy(requesterID) {
		return apperrors.ErrEventNotFound
	}

	// Registrations are linked by name, so the cascade matches on event_name.
	userIDs, err := s.regRepo.DeleteByEventName(ctx, tx, event.EventName)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tx, event.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	log := logger.WithComponent("service").With(zap.String("event_id", eventID.String()))
	log.Info("event deleted", zap.Int("registrations_removed", len(userIDs)))

	if err := s.regCache.Invalidate(ctx, userIDs...); err != nil {
		log.Warn("registration cache invalidation failed", zap.Error(err))
	}
	PublishBlobCleanup(ctx, s.blobQueue, event, model.BlobReasonDeleted)
	return nil
}

// PublishBlobCleanup queues both uploads of a removed event. Failures only leak files.
func PublishBlobCleanup(ctx context.Context, q queue.BlobQueue, event *model.Event, reason string) {
	for _, path := range []string{event.ImagePath, event.BrochurePath} {
		if path == "" {
			continue
		}
		if err := q.PublishBlob(ctx, &model.BlobJob{Path: path, Reason: reason}); err != nil {
			logger.WithComponent("service").Warn("publish blob cleanup failed", zap.String("path", path), zap.Error(err))
		}
	}
}

// discardBlobs removes uploads of a failed create; leftovers go to the cleanup queue.
func (s *EventServiceImpl) discardBlobs(ctx context.Context, paths ...string) {
	for _, p := range paths {
		err := s.blobs.Delete(ctx, p)
		if err == nil {
			continue
		}
		log := logger.WithComponent("service").With(zap.String("path", p))
		log.Warn("discard blob failed, queueing cleanup", zap.Error(err))
		if err := s.blobQueue.PublishBlob(ctx, &model.BlobJob{Path: p, Reason: model.BlobReasonOrphan}); err != nil {
			log.Warn("publish orphan blob failed", zap.Error(err))
		}
	}
}

// canonicalEvent trims the submission, resolves alternate date/time keys and
// checks required fields.
func canonicalEvent(in model.EventInput) (*model.Event, error) {
	event := &model.Event{
		EventName:        strings.TrimSpace(in.EventName),
		Category:         strings.TrimSpace(in.Category),
		OrganizationName: strings.TrimSpace(in.OrganizationName),
		OrganizerName:    strings.TrimSpace(in.OrganizerName),
		OrganizerEmail:   strings.TrimSpace(in.OrganizerEmail),
		MobileNumber:     strings.TrimSpace(in.MobileNumber),
		Address:          strings.TrimSpace(in.Address),
		City:             strings.TrimSpace(in.City),
		Latitude:         strings.TrimSpace(in.Latitude),
		Longitude:        strings.TrimSpace(in.Longitude),
		GoogleFormLink:   strings.TrimSpace(in.GoogleFormLink),
		Date:             strings.TrimSpace(in.ResolvedDate()),
		Time:             strings.TrimSpace(in.ResolvedTime()),
	}

	required := []struct {
		name  string
		value string
	}{
		{"eventName", event.EventName},
		{"category", event.Category},
		{"organizationName", event.OrganizationName},
		{"organizerName", event.OrganizerName},
		{"organizerEmail", event.OrganizerEmail},
		{"mobileNumber", event.MobileNumber},
		{"address", event.Address},
		{"city", event.City},
		{"date", event.Date},
		{"time", event.Time},
	}
	var missing []string
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("Missing required fields: " + strings.Join(missing, ", "))
	}
	return event, nil
}
