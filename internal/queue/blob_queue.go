package queue

import (
	"context"

	"eventify-backend/internal/model"
)

type Delivery struct {
	Data *model.BlobJob
	Ack  func()
	Nack func(requeue bool)
}

type BlobQueue interface {
	// PublishBlob enqueues a blob for removal.
	PublishBlob(ctx context.Context, job *model.BlobJob) error
	// SubscribeBlobs streams pending jobs until ctx is done.
	SubscribeBlobs(ctx context.Context) (<-chan Delivery, error)
}

type BlobQueueImpl struct {
	ch chan *model.BlobJob
}

// NewBlobQueue returns a process-local queue backed by a buffered channel.
func NewBlobQueue(bufferSize int) BlobQueue {
	return &BlobQueueImpl{
		ch: make(chan *model.BlobJob, bufferSize),
	}
}

func (q *BlobQueueImpl) PublishBlob(ctx context.Context, job *model.BlobJob) error {
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *BlobQueueImpl) SubscribeBlobs(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.ch:
				if !ok {
					return
				}

				d := Delivery{
					Data: job,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if !requeue {
							return
						}
						// Requeue without blocking the subscriber when the buffer is full.
						select {
						case q.ch <- job:
						default:
						}
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
