package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewLimiter_DisabledWithoutRedis(t *testing.T) {
	cfg := config.Config{RateLimit: config.RateLimitConfig{Enabled: true, LoginRate: 1, LoginBurst: 1}}

	l := NewLimiter(cfg, nil, nil, zap.NewNop())
	assert.Nil(t, l)
	assert.False(t, l.Enabled())
	assert.True(t, l.AllowLogin(context.Background(), "127.0.0.1").Allowed)
	assert.True(t, l.AllowVerification(context.Background(), "a@example.com").Allowed)
}

func TestNilComponents(t *testing.T) {
	assert.Nil(t, NewTokenBucket(nil))

	var bucket *TokenBucket
	res, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
	assert.False(t, res.Allowed)
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 10*time.Second, bucketTTL(1, 5))
	assert.Equal(t, time.Second, bucketTTL(1000, 1))
}

func TestScriptValueParsing(t *testing.T) {
	assert.Equal(t, int64(1), toInt64(int64(1)))
	assert.Equal(t, int64(0), toInt64(nil))
	assert.InDelta(t, 2.5, toFloat64("2.5"), 0.0001)
	assert.InDelta(t, 3.0, toFloat64(int64(3)), 0.0001)
}
