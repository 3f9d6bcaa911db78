package session

import (
	"checkout_kiosk/directory"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redsync/redsync/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestIdentityCache_RoundTrip(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	cache := NewIdentityCache(rdb, time.Minute)
	ctx := context.Background()

	_, err := cache.GetName(ctx, "U1")
	assert.ErrorIs(t, err, directory.ErrCacheMiss)

	require.NoError(t, cache.SetName(ctx, "U1", "Alice"))
	name, err := cache.GetName(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
	assert.True(t, mr.Exists("kiosk:identity:U1"))

	mr.FastForward(2 * time.Minute)
	_, err = cache.GetName(ctx, "U1")
	assert.ErrorIs(t, err, directory.ErrCacheMiss)
}

func TestIdentityCache_Forget(t *testing.T) {
	_, rdb := setupTestRedis(t)
	cache := NewIdentityCache(rdb, time.Minute)
	ctx := context.Background()
	require.NoError(t, cache.SetName(ctx, "U1", "Alice"))

	require.NoError(t, cache.Forget(ctx, "U1"))

	_, err := cache.GetName(ctx, "U1")
	assert.ErrorIs(t, err, directory.ErrCacheMiss)
}

func TestIdentityCache_WithResolver(t *testing.T) {
	_, rdb := setupTestRedis(t)
	calls := 0
	backend := directory.ResolverFunc(func(context.Context, string) (string, error) {
		calls++
		return "Alice", nil
	})
	r := directory.Cached(backend, NewIdentityCache(rdb, time.Minute), nil)

	for i := 0; i < 3; i++ {
		name, err := r.Resolve(context.Background(), "U1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", name)
	}
	assert.Equal(t, 1, calls)
}

func TestIdentityCache_CorruptEntryIsDropped(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	require.NoError(t, mr.Set(identityKey("U1"), "not json"))
	backend := directory.ResolverFunc(func(context.Context, string) (string, error) {
		return "Alice", nil
	})
	r := directory.Cached(backend, NewIdentityCache(rdb, time.Minute), nil)

	name, err := r.Resolve(context.Background(), "U1")

	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
	got, err := NewIdentityCache(rdb, time.Minute).GetName(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got)
}

func TestIdentityCache_UnknownIDIsForgotten(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	backend := directory.ResolverFunc(func(_ context.Context, id string) (string, error) {
		return "", &directory.NotFoundError{ID: id}
	})
	require.NoError(t, mr.Set(identityKey("U9"), ""))
	r := directory.Cached(backend, NewIdentityCache(rdb, time.Minute), nil)

	_, err := r.Resolve(context.Background(), "U9")

	assert.ErrorIs(t, err, directory.ErrNotFound)
	assert.False(t, mr.Exists(identityKey("U9")))
}

func TestIsContention(t *testing.T) {
	assert.True(t, isContention(&redsync.ErrTaken{Nodes: []int{0}}))
	assert.True(t, isContention(fmt.Errorf("lock: %w", redsync.ErrFailed)))
	assert.False(t, isContention(errors.New("dial tcp: connection refused")))
}

func TestScanLock_ExclusivePerID(t *testing.T) {
	_, rdb := setupTestRedis(t)
	lock := NewScanLock(rdb, 5*time.Second)
	ctx := context.Background()

	unlock, err := lock.Lock(ctx, "U1")
	require.NoError(t, err)

	_, err = lock.Lock(ctx, "U1")
	assert.ErrorIs(t, err, ErrScanInProgress)

	other, err := lock.Lock(ctx, "U2")
	require.NoError(t, err, "a different id must not be blocked")
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	again, err := lock.Lock(ctx, "U1")
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestScanLock_Expires(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	lock := NewScanLock(rdb, time.Second)
	ctx := context.Background()

	_, err := lock.Lock(ctx, "U1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	unlock, err := lock.Lock(ctx, "U1")
	require.NoError(t, err)
	assert.NoError(t, unlock(ctx))
}

func TestScanLock_RedisDown(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	lock := NewScanLock(rdb, time.Second)
	mr.Close()

	_, err := lock.Lock(context.Background(), "U1")

	require.Error(t, err)
}

func TestNopLocker(t *testing.T) {
	unlock, err := NopLocker{}.Lock(context.Background(), "U1")
	require.NoError(t, err)
	assert.NoError(t, unlock(context.Background()))
}
