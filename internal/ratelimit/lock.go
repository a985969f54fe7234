package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Deletes the key only while it still holds our token, so an expired lease
// never releases a lock another process has since taken.
const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const productLockKeyFormat = "stockroom:lock:alert:product:%d"

var (
	ErrLockNotConfigured = errors.New("lock client not configured")
	ErrLockHeld          = errors.New("lock held elsewhere")
)

// Locker hands out short redis leases that serialize low-stock alerts for a
// product across processes.
type Locker struct {
	client *redis.Client
	script *redis.Script
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
	}
}

// Enabled reports whether the locker is backed by redis.
func (l *Locker) Enabled() bool {
	return l != nil && l.client != nil
}

// ProductLockKey names the lease guarding alerts for one product.
func ProductLockKey(productID int64) string {
	return fmt.Sprintf(productLockKeyFormat, productID)
}

// Lease is a held lock. Release is idempotent.
type Lease struct {
	locker   *Locker
	key      string
	token    string
	released atomic.Bool
}

// Acquire takes key for ttl. It returns ErrLockHeld when another holder has it.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if !l.Enabled() {
		return nil, ErrLockNotConfigured
	}
	if key == "" {
		return nil, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lease{locker: l, key: key, token: token}, nil
}

func (s *Lease) Key() string {
	if s == nil {
		return ""
	}
	return s.key
}

// Release gives the lock back. It runs even when ctx is already cancelled.
func (s *Lease) Release(ctx context.Context) error {
	if s == nil || !s.released.CompareAndSwap(false, true) {
		return nil
	}
	return s.locker.script.Run(context.WithoutCancel(ctx), s.locker.client, []string{s.key}, s.token).Err()
}
