package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	keyLogin        = "ratelimit:login:%s"
	keyVerification = "ratelimit:verification:%s"

	EndpointLogin        = "login"
	EndpointVerification = "verification"
)

// Limiter throttles credential and verification-code endpoints. A nil or
// disabled Limiter allows everything. Redis errors fail open.
type Limiter struct {
	bucket  *TokenBucket
	cfg     config.RateLimitConfig
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewLimiter(cfg config.Config, bucket *TokenBucket, m *metrics.Metrics, log *zap.Logger) *Limiter {
	log = log.Named("ratelimit")
	if !cfg.RateLimit.Enabled {
		return nil
	}
	if bucket == nil {
		log.Warn("rate limiting enabled but redis is not configured; limiter disabled")
		return nil
	}
	return &Limiter{bucket: bucket, cfg: cfg.RateLimit, metrics: m, log: log}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowLogin is keyed by client address.
func (l *Limiter) AllowLogin(ctx context.Context, clientIP string) *Result {
	if !l.Enabled() {
		return &Result{Allowed: true}
	}
	return l.allow(ctx, EndpointLogin, fmt.Sprintf(keyLogin, strings.TrimSpace(clientIP)), l.cfg.LoginRate, l.cfg.LoginBurst)
}

// AllowVerification is keyed by the target email.
func (l *Limiter) AllowVerification(ctx context.Context, email string) *Result {
	if !l.Enabled() {
		return &Result{Allowed: true}
	}
	key := fmt.Sprintf(keyVerification, strings.ToLower(strings.TrimSpace(email)))
	return l.allow(ctx, EndpointVerification, key, l.cfg.VerificationRate, l.cfg.VerificationBurst)
}

func (l *Limiter) allow(ctx context.Context, endpoint, key string, rate float64, burst int) *Result {
	res, err := l.bucket.Allow(ctx, key, rate, burst)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.String("endpoint", endpoint), zap.Error(err))
		return &Result{Allowed: true}
	}
	if res.Allowed {
		l.metrics.RecordRateLimitAllowed(ctx, endpoint)
	} else {
		l.metrics.RecordRateLimitDenied(ctx, endpoint, "token_bucket")
	}
	return res
}
