package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lease is a best-effort mutual exclusion across server instances.
type Lease interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type RedisLeaseImpl struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

func NewRedisLease(client *redis.Client, key string, ttl time.Duration) Lease {
	return &RedisLeaseImpl{
		client: client,
		key:    key,
		token:  uuid.New().String(),
		ttl:    ttl,
	}
}

func (l *RedisLeaseImpl) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
}

// Release deletes the lease only if this holder still owns it (Lua keeps the check and delete atomic).
func (l *RedisLeaseImpl) Release(ctx context.Context) error {
	script := `
		if redis.call('GET', KEYS[1]) == ARGV[1] then
			return redis.call('DEL', KEYS[1])
		end
		return 0
	`
	return l.client.Eval(ctx, script, []string{l.key}, l.token).Err()
}
