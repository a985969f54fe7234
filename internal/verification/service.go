package verification

import (
	"context"
	"errors"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
	"github.com/smallbiznis/stockroom/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	mailSubject  = "管理员操作验证码"
	mailTemplate = "verification_code"
)

var (
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrNoNotifyAddress = errors.New("admin_notify_email_not_configured")
	ErrSendFailed      = errors.New("verification_send_failed")
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
	Clock     clock.Clock
	Email     email.Provider
	Redis     *redis.Client `optional:"true"`
}

// Service owns the code store and closes it on shutdown.
type Service struct {
	store    Store
	email    email.Provider
	notifyTo string
	ttl      time.Duration
	log      *zap.Logger
}

func New(p Params) *Service {
	log := p.Log.Named("verification.service")
	ttl := time.Duration(p.Cfg.Verification.CodeTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	var store Store
	if p.Redis != nil {
		store = NewRedisStore(p.Redis, ttl, log)
	} else {
		store = NewMemoryStore(ttl, p.Clock)
	}

	svc := NewService(store, p.Email, p.Cfg.Email.AdminNotifyEmail, ttl, log)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return svc.Close()
		},
	})
	return svc
}

func NewService(store Store, provider email.Provider, notifyTo string, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		email:    provider,
		notifyTo: strings.TrimSpace(notifyTo),
		ttl:      ttl,
		log:      log,
	}
}

// Send issues a code for target and mails it to the admin notify address.
func (s *Service) Send(ctx context.Context, target string) error {
	target = strings.TrimSpace(target)
	if target == "" || !strings.Contains(target, "@") {
		return ErrInvalidEmail
	}
	if s.notifyTo == "" {
		return ErrNoNotifyAddress
	}

	code, err := s.store.Issue(ctx, target)
	if err != nil {
		return err
	}

	data := map[string]any{
		"Email":      target,
		"Code":       code,
		"TTLMinutes": int(s.ttl / time.Minute),
	}
	if err := s.email.SendTemplate(ctx, []string{s.notifyTo}, mailSubject, mailTemplate, data); err != nil {
		obslogger.WithContext(ctx, s.log).Warn("verification mail failed", zap.Error(err))
		return ErrSendFailed
	}
	return nil
}

func (s *Service) Verify(ctx context.Context, target, code string) bool {
	return s.store.Verify(ctx, target, code)
}

func (s *Service) Close() error {
	return s.store.Close()
}
