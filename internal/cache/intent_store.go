package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventify-backend/internal/model"
	apperrors "eventify-backend/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// IntentStore holds registration attempts made before the caller logged in.
type IntentStore interface {
	// Save stores the intent, assigning an id when empty.
	Save(ctx context.Context, intent *model.PendingRegistration) error
	// Consume returns and removes the intent in one step, so it is replayed at most once.
	Consume(ctx context.Context, id string) (*model.PendingRegistration, error)
}

type RedisIntentStoreImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIntentStore(client *redis.Client, ttl time.Duration) IntentStore {
	return &RedisIntentStoreImpl{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisIntentStoreImpl) key(id string) string {
	return fmt.Sprintf("registration:intent:%s", id)
}

func (s *RedisIntentStoreImpl) Save(ctx context.Context, intent *model.PendingRegistration) error {
	if intent.ID == "" {
		intent.ID = uuid.New().String()
	}
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	return s.client.Set(ctx, s.key(intent.ID), payload, s.ttl).Err()
}

func (s *RedisIntentStoreImpl) Consume(ctx context.Context, id string) (*model.PendingRegistration, error) {
	if id == "" {
		return nil, apperrors.ErrIntentNotFound
	}
	raw, err := s.client.GetDel(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrIntentNotFound
	}
	if err != nil {
		return nil, err
	}

	var intent model.PendingRegistration
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, fmt.Errorf("unmarshal intent: %w", err)
	}
	return &intent, nil
}
