package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Miss then hit", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		c := NewRedisRegistrationCache(rdb, time.Minute)

		_, ok, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok)

		setFresh(t, c, 1, []string{"Foo", "Bar"})

		names, ok, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.ElementsMatch(t, []string{"Foo", "Bar"}, names)
	})

	t.Run("Empty set is a hit", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		c := NewRedisRegistrationCache(rdb, time.Minute)

		setFresh(t, c, 2, nil)

		names, ok, err := c.Get(ctx, 2)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, names)
	})

	t.Run("Set replaces previous members", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		c := NewRedisRegistrationCache(rdb, time.Minute)

		setFresh(t, c, 3, []string{"Old"})
		setFresh(t, c, 3, []string{"New"})

		names, _, err := c.Get(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"New"}, names)
	})

	t.Run("Invalidate", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		c := NewRedisRegistrationCache(rdb, time.Minute)

		setFresh(t, c, 1, []string{"Foo"})
		setFresh(t, c, 2, []string{"Foo"})
		require.NoError(t, c.Invalidate(ctx, 1, 2))
		require.NoError(t, c.Invalidate(ctx))

		_, ok, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = c.Get(ctx, 2)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Entries expire", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		c := NewRedisRegistrationCache(rdb, time.Minute)

		setFresh(t, c, 1, []string{"Foo"})
		mr.FastForward(2 * time.Minute)

		_, ok, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Invalidate bumps version", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		c := NewRedisRegistrationCache(rdb, time.Minute)

		v, err := c.Version(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(0), v)

		require.NoError(t, c.Invalidate(ctx, 4))
		v, err = c.Version(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})

	t.Run("Set after invalidate is rejected", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		c := NewRedisRegistrationCache(rdb, time.Minute)

		v, err := c.Version(ctx, 5)
		require.NoError(t, err)
		// A registration lands while the old set is being loaded.
		require.NoError(t, c.Invalidate(ctx, 5))

		stored, err := c.Set(ctx, 5, v, []string{})
		require.NoError(t, err)
		assert.False(t, stored)

		_, ok, err := c.Get(ctx, 5)
		require.NoError(t, err)
		assert.False(t, ok)

		setFresh(t, c, 5, []string{"Go Meetup"})
		names, ok, err := c.Get(ctx, 5)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"Go Meetup"}, names)
	})
}

func setFresh(t *testing.T, c RegistrationCache, userID int, names []string) {
	t.Helper()
	ctx := context.Background()
	v, err := c.Version(ctx, userID)
	require.NoError(t, err)
	stored, err := c.Set(ctx, userID, v, names)
	require.NoError(t, err)
	require.True(t, stored)
}
