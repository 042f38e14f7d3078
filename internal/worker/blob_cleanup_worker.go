package worker

import (
	"context"
	"errors"

	"eventify-backend/internal/blob"
	"eventify-backend/internal/queue"
	"eventify-backend/pkg/logger"

	"go.uber.org/zap"
)

type BlobCleanupWorker interface {
	// Start subscribes to the cleanup queue and removes blobs until ctx is done.
	Start(ctx context.Context) error
}

type BlobCleanupWorkerImpl struct {
	store blob.Store
	queue queue.BlobQueue
}

func NewBlobCleanupWorker(store blob.Store, queue queue.BlobQueue) BlobCleanupWorker {
	return &BlobCleanupWorkerImpl{
		store: store,
		queue: queue,
	}
}

func (w *BlobCleanupWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeBlobs(ctx)
	if err != nil {
		return err
	}
	log := logger.WithComponent("worker").With(zap.String("worker", "blob_cleanup"))

	go func() {
		for msg := range msgs {
			err := w.store.Delete(ctx, msg.Data.Path)
			switch {
			case err == nil:
				log.Debug("blob removed", zap.String("path", msg.Data.Path), zap.String("reason", msg.Data.Reason))
				msg.Ack()
			case errors.Is(err, blob.ErrOutsideStore):
				log.Error("dropping blob job", zap.String("path", msg.Data.Path), zap.Error(err))
				msg.Ack()
			default:
				log.Warn("blob removal failed, requeueing", zap.String("path", msg.Data.Path), zap.Error(err))
				msg.Nack(true)
			}
		}
	}()
	return nil
}
