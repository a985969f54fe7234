// Package verification issues short-lived codes that gate admin operations.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/stockroom/internal/clock"
)

const (
	DefaultTTL      = 5 * time.Minute
	janitorInterval = time.Minute
	codeDigits      = 6
)

// Store keeps at most one live code per email.
type Store interface {
	Issue(ctx context.Context, email string) (string, error)
	// Verify consumes the code on success and drops it once expired.
	Verify(ctx context.Context, email, code string) bool
	Close() error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()+100000), nil
}

type entry struct {
	code    string
	expires time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	codes   map[string]entry
	ttl     time.Duration
	clock   clock.Clock
	stop    chan struct{}
	stopped sync.Once
	done    chan struct{}
}

// NewMemoryStore starts a janitor that sweeps expired codes until Close.
func NewMemoryStore(ttl time.Duration, clk clock.Clock) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		codes: make(map[string]entry),
		ttl:   ttl,
		clock: clk,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.janitor(janitorInterval)
	return s
}

func (s *MemoryStore) Issue(_ context.Context, email string) (string, error) {
	code, err := newCode()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.codes[normalizeEmail(email)] = entry{code: code, expires: s.clock.Now().Add(s.ttl)}
	s.mu.Unlock()
	return code, nil
}

func (s *MemoryStore) Verify(_ context.Context, email, code string) bool {
	key := normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.codes[key]
	if !ok {
		return false
	}
	if s.clock.Now().After(stored.expires) {
		delete(s.codes, key)
		return false
	}
	if stored.code != strings.TrimSpace(code) {
		return false
	}
	delete(s.codes, key)
	return true
}

func (s *MemoryStore) Close() error {
	s.stopped.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}

func (s *MemoryStore) janitor(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.codes {
		if now.After(e.expires) {
			delete(s.codes, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}
