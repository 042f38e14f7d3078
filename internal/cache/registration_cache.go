package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// loadedMarker keeps an empty registration set distinguishable from a cache miss.
const loadedMarker = "\x00loaded"

// versionTTL outlives any single database load by a wide margin.
const versionTTL = 24 * time.Hour

type RegistrationCache interface {
	// Get returns the cached event names for a user; ok is false on a miss.
	Get(ctx context.Context, userID int) (names []string, ok bool, err error)
	// Version returns the user's invalidation counter. Read it before loading from the database.
	Version(ctx context.Context, userID int) (int64, error)
	// Set stores names only if no invalidation happened since version was read.
	Set(ctx context.Context, userID int, version int64, names []string) (bool, error)
	// Invalidate drops the cached sets of the given users and bumps their versions.
	Invalidate(ctx context.Context, userIDs ...int) error
}

type RedisRegistrationCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRegistrationCache(client *redis.Client, ttl time.Duration) RegistrationCache {
	return &RedisRegistrationCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisRegistrationCacheImpl) key(userID int) string {
	return fmt.Sprintf("registrations:user:%d", userID)
}

func (c *RedisRegistrationCacheImpl) versionKey(userID int) string {
	return fmt.Sprintf("registrations:user:%d:version", userID)
}

func (c *RedisRegistrationCacheImpl) Get(ctx context.Context, userID int) ([]string, bool, error) {
	members, err := c.client.SMembers(ctx, c.key(userID)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}

	names := make([]string, 0, len(members)-1)
	for _, m := range members {
		if m == loadedMarker {
			continue
		}
		names = append(names, m)
	}
	return names, true, nil
}

func (c *RedisRegistrationCacheImpl) Version(ctx context.Context, userID int) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *RedisRegistrationCacheImpl) Set(ctx context.Context, userID int, version int64, names []string) (bool, error) {
	script := `
		local current = redis.call('GET', KEYS[2]) or '0'
		if current ~= ARGV[1] then
			return 0
		end
		redis.call('DEL', KEYS[1])
		redis.call('SADD', KEYS[1], unpack(ARGV, 3))
		redis.call('PEXPIRE', KEYS[1], ARGV[2])
		return 1
	`
	args := make([]interface{}, 0, len(names)+3)
	args = append(args, version, c.ttl.Milliseconds(), loadedMarker)
	for _, n := range names {
		args = append(args, n)
	}

	stored, err := c.client.Eval(ctx, script, []string{c.key(userID), c.versionKey(userID)}, args...).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func (c *RedisRegistrationCacheImpl) Invalidate(ctx context.Context, userIDs ...int) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Del(ctx, c.key(id))
			pipe.Incr(ctx, c.versionKey(id))
			pipe.PExpire(ctx, c.versionKey(id), versionTTL)
		}
		return nil
	})
	return err
}
