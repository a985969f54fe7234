package verification

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl, zap.NewNop()), mr
}

func TestRedisStore_IssueAndConsume(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	code, err := s.Issue(ctx, "Admin@Example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	stored, err := mr.Get(keyPrefix + "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, code, stored)
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"admin@example.com"))

	assert.False(t, s.Verify(ctx, "admin@example.com", "nope"))
	assert.True(t, mr.Exists(keyPrefix+"admin@example.com"), "a wrong code keeps the stored one")

	assert.True(t, s.Verify(ctx, " admin@example.com", " "+code+" "))
	assert.False(t, s.Verify(ctx, "admin@example.com", code), "codes are single use")
	require.NoError(t, s.Close())
}

func TestRedisStore_ExpiredCodeIsRejected(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	code, err := s.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	assert.False(t, s.Verify(ctx, "a@example.com", code))
}

func TestRedisStore_VerifyFailsClosedWhenRedisIsDown(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	code, err := s.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	mr.Close()
	assert.False(t, s.Verify(ctx, "a@example.com", code))
}
