package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilLockerIsDisabled(t *testing.T) {
	var l *Locker
	assert.False(t, l.Enabled())
	assert.Nil(t, NewLocker(nil))

	lease, err := l.Acquire(context.Background(), ProductLockKey(7), time.Second)
	assert.ErrorIs(t, err, ErrLockNotConfigured)
	assert.Nil(t, lease)
}

func TestNilLeaseRelease(t *testing.T) {
	var lease *Lease
	require.NoError(t, lease.Release(context.Background()))
	assert.Empty(t, lease.Key())
}

func TestProductLockKey(t *testing.T) {
	assert.Equal(t, "stockroom:lock:alert:product:42", ProductLockKey(42))
}

func newRedisLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client), mr
}

func TestLockerAcquireAndRelease(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()
	key := ProductLockKey(9)

	lease, err := l.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, key, lease.Key())
	assert.True(t, mr.Exists(key))

	_, err = l.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, lease.Release(ctx))
	assert.False(t, mr.Exists(key))
	require.NoError(t, lease.Release(ctx))

	again, err := l.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestExpiredLeaseDoesNotReleaseNewHolder(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()
	key := ProductLockKey(10)

	stale, err := l.Acquire(ctx, key, time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	current, err := l.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	require.NoError(t, stale.Release(ctx))
	assert.True(t, mr.Exists(key))

	require.NoError(t, current.Release(ctx))
	assert.False(t, mr.Exists(key))
}

func TestReleaseRunsWithCancelledContext(t *testing.T) {
	l, mr := newRedisLocker(t)
	key := ProductLockKey(11)

	lease, err := l.Acquire(context.Background(), key, time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, lease.Release(ctx))
	assert.False(t, mr.Exists(key))
}
