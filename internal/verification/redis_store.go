package verification

import (
	"context"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "verification:"

// consumeScript deletes the key only when the stored code matches.
const consumeScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisStore shares codes between API replicas. Expiry is left to redis.
type RedisStore struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		script: redis.NewScript(consumeScript),
		ttl:    ttl,
		log:    log,
	}
}

func (s *RedisStore) Issue(ctx context.Context, email string) (string, error) {
	code, err := newCode()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, keyPrefix+normalizeEmail(email), code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

func (s *RedisStore) Verify(ctx context.Context, email, code string) bool {
	n, err := s.script.Run(ctx, s.client, []string{keyPrefix + normalizeEmail(email)}, strings.TrimSpace(code)).Int64()
	if err != nil {
		s.log.Warn("verification lookup failed", zap.Error(err))
		return false
	}
	return n == 1
}

// Close is a no-op; the redis client belongs to the ratelimit module.
func (s *RedisStore) Close() error {
	return nil
}
