package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"eventify-backend/internal/model"
	"eventify-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey         = "blobs:cleanup"
	ConsumerGroupName = "blob-cleaners"
)

// RedisStreamBlobQueueConfig tunes delivery; zero fields take defaults.
type RedisStreamBlobQueueConfig struct {
	MaxAttempts int           // a job nacked this many times is dropped
	OrphanIdle  time.Duration // entries left unacked by a dead consumer this long are taken over
	BlockTime   time.Duration
}

type RedisStreamBlobQueueImpl struct {
	client   *redis.Client
	consumer string
	cfg      RedisStreamBlobQueueConfig
}

// NewRedisStreamBlobQueue creates a stream-backed BlobQueue shared by all instances.
// Removing a blob is idempotent, so a job may be delivered more than once.
func NewRedisStreamBlobQueue(client *redis.Client, consumerID string, config *RedisStreamBlobQueueConfig) (BlobQueue, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	cfg := RedisStreamBlobQueueConfig{MaxAttempts: 5, OrphanIdle: time.Minute, BlockTime: 2 * time.Second}
	if config != nil {
		if config.MaxAttempts > 0 {
			cfg.MaxAttempts = config.MaxAttempts
		}
		if config.OrphanIdle > 0 {
			cfg.OrphanIdle = config.OrphanIdle
		}
		if config.BlockTime > 0 {
			cfg.BlockTime = config.BlockTime
		}
	}

	err := client.XGroupCreateMkStream(context.Background(), StreamKey, ConsumerGroupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return &RedisStreamBlobQueueImpl{
		client:   client,
		consumer: "cleaner:" + consumerID,
		cfg:      cfg,
	}, nil
}

func (q *RedisStreamBlobQueueImpl) PublishBlob(ctx context.Context, job *model.BlobJob) error {
	return q.add(ctx, q.client, job, 1)
}

func (q *RedisStreamBlobQueueImpl) add(ctx context.Context, c redis.Cmdable, job *model.BlobJob, attempt int) error {
	err := c.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		Values: map[string]interface{}{
			"path":    job.Path,
			"reason":  job.Reason,
			"attempt": attempt,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd blob job: %w", err)
	}
	return nil
}

func (q *RedisStreamBlobQueueImpl) SubscribeBlobs(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		lastTakeover := time.Now()
		for ctx.Err() == nil {
			var msgs []redis.XMessage
			if time.Since(lastTakeover) >= q.cfg.OrphanIdle {
				msgs = q.takeOver(ctx)
				lastTakeover = time.Now()
			}
			msgs = append(msgs, q.readNew(ctx)...)

			for _, msg := range msgs {
				select {
				case out <- q.delivery(ctx, msg):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (q *RedisStreamBlobQueueImpl) readNew(ctx context.Context) []redis.XMessage {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroupName,
		Consumer: q.consumer,
		Streams:  []string{StreamKey, ">"},
		Count:    10,
		Block:    q.cfg.BlockTime,
	}).Result()
	if errors.Is(err, redis.Nil) || ctx.Err() != nil {
		return nil
	}
	if err != nil {
		logger.WithComponent("queue").Error("read blob jobs failed", zap.Error(err))
		time.Sleep(time.Second)
		return nil
	}
	var msgs []redis.XMessage
	for _, s := range streams {
		msgs = append(msgs, s.Messages...)
	}
	return msgs
}

// takeOver claims jobs another consumer received but never settled.
func (q *RedisStreamBlobQueueImpl) takeOver(ctx context.Context) []redis.XMessage {
	msgs, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamKey,
		Group:    ConsumerGroupName,
		Consumer: q.consumer,
		MinIdle:  q.cfg.OrphanIdle,
		Start:    "0-0",
		Count:    10,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) && ctx.Err() == nil {
		logger.WithComponent("queue").Warn("take over idle blob jobs failed", zap.Error(err))
	}
	return msgs
}

func (q *RedisStreamBlobQueueImpl) delivery(ctx context.Context, msg redis.XMessage) Delivery {
	job := &model.BlobJob{}
	job.Path, _ = msg.Values["path"].(string)
	job.Reason, _ = msg.Values["reason"].(string)
	attemptRaw, _ := msg.Values["attempt"].(string)
	attempt, err := strconv.Atoi(attemptRaw)
	if err != nil || attempt < 1 {
		attempt = 1
	}
	log := logger.WithComponent("queue").With(zap.String("message_id", msg.ID), zap.String("path", job.Path))

	ack := func() {
		if err := q.client.XAck(ctx, StreamKey, ConsumerGroupName, msg.ID).Err(); err != nil {
			log.Error("ack blob job failed", zap.Error(err))
		}
	}
	return Delivery{
		Data: job,
		Ack:  ack,
		Nack: func(requeue bool) {
			if !requeue || attempt >= q.cfg.MaxAttempts {
				if requeue {
					log.Warn("dropping blob job after repeated failures", zap.Int("attempts", attempt))
				}
				ack()
				return
			}
			// Re-add with the next attempt number and settle the original in one step.
			_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if err := q.add(ctx, pipe, job, attempt+1); err != nil {
					return err
				}
				pipe.XAck(ctx, StreamKey, ConsumerGroupName, msg.ID)
				return nil
			})
			if err != nil {
				log.Error("requeue blob job failed", zap.Error(err))
			}
		},
	}
}
