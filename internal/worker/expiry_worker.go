package worker

import (
	"context"
	"time"

	"eventify-backend/config"
	"eventify-backend/internal/cache"
	"eventify-backend/internal/model"
	"eventify-backend/internal/queue"
	"eventify-backend/internal/repository"
	"eventify-backend/internal/service"
	"eventify-backend/pkg/logger"

	"go.uber.org/zap"
)

type ExpiryWorker interface {
	// Start sweeps once immediately and then on every interval until ctx is done.
	Start(ctx context.Context) error
	// SweepOnce removes events past their instant plus grace and returns how many were removed.
	// It is a no-op when another instance holds the lease.
	SweepOnce(ctx context.Context) (int, error)
}

type ExpiryWorkerImpl struct {
	repo      repository.EventRepository
	lease     cache.Lease
	blobQueue queue.BlobQueue
	grace     time.Duration
	interval  time.Duration
	now       func() time.Time
}

func NewExpiryWorker(repo repository.EventRepository, lease cache.Lease, blobQueue queue.BlobQueue, cfg config.ExpiryConfig) ExpiryWorker {
	return &ExpiryWorkerImpl{
		repo:      repo,
		lease:     lease,
		blobQueue: blobQueue,
		grace:     cfg.GracePeriod,
		interval:  cfg.SweepInterval,
		now:       time.Now,
	}
}

func (w *ExpiryWorkerImpl) Start(ctx context.Context) error {
	log := logger.WithComponent("worker").With(zap.String("worker", "expiry"))

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			// A failed sweep leaves expired events listed until the next tick.
			if _, err := w.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				log.Warn("sweep failed", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

func (w *ExpiryWorkerImpl) SweepOnce(ctx context.Context) (int, error) {
	log := logger.WithComponent("worker").With(zap.String("worker", "expiry"))

	if w.lease != nil {
		acquired, err := w.lease.Acquire(ctx)
		if err != nil {
			return 0, err
		}
		if !acquired {
			log.Debug("sweep lease held elsewhere")
			return 0, nil
		}
		defer func() {
			if err := w.lease.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("release sweep lease failed", zap.Error(err))
			}
		}()
	}

	expired, err := w.repo.DeleteExpired(ctx, w.now().Add(-w.grace))
	if err != nil {
		return 0, err
	}
	for _, event := range expired {
		service.PublishBlobCleanup(ctx, w.blobQueue, event, model.BlobReasonExpired)
	}
	if len(expired) > 0 {
		log.Info("expired events removed", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}
