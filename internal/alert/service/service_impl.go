package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/alert/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/providers/email"
	"github.com/smallbiznis/stockroom/internal/ratelimit"
	recipientdomain "github.com/smallbiznis/stockroom/internal/recipient/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultLockTTL = 30 * time.Second

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Cfg           config.Config
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	ProductRepo   productdomain.Repository
	RecipientRepo recipientdomain.Repository
	InventoryRepo inventorydomain.Repository
	Email         email.Provider
	Mailer        domain.Mailer         `optional:"true"`
	Locker        *ratelimit.Locker     `optional:"true"`
	AlertMetrics  *metrics.AlertMetrics `optional:"true"`
	Metrics       *metrics.Metrics      `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	loc        *time.Location
	repo       domain.Repository
	products   domain.ProductLookup
	recipients domain.RecipientSource
	inventory  domain.InventorySource
	mailer     domain.Mailer
	locker     *ratelimit.Locker
	lockTTL    time.Duration
	local      *keyedMutex
	alerts     *metrics.AlertMetrics
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	log := p.Log.Named("alert.dispatcher")
	loc := loadLocation(p.Cfg.Alert.Timezone, log)

	mailer := p.Mailer
	if mailer == nil {
		mailer = NewMailer(p.Email, p.Clock, loc, p.Log)
	}
	lockTTL := time.Duration(p.Cfg.Alert.LockTTLSeconds) * time.Second
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}

	return &Service{
		db:         p.DB,
		log:        log,
		genID:      p.GenID,
		clock:      p.Clock,
		loc:        loc,
		repo:       p.Repo,
		products:   p.ProductRepo,
		recipients: p.RecipientRepo,
		inventory:  p.InventoryRepo,
		mailer:     mailer,
		locker:     p.Locker,
		lockTTL:    lockTTL,
		local:      newKeyedMutex(),
		alerts:     p.AlertMetrics,
		metrics:    p.Metrics,
	}
}

func loadLocation(name string, log *zap.Logger) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("unknown alert timezone, using local", zap.String("timezone", name), zap.Error(err))
		return time.Local
	}
	return loc
}

type outcome struct {
	name   string
	sent   int
	failed int
}

func (s *Service) Dispatch(ctx context.Context, productID int64, newQuantity int) {
	if newQuantity > domain.Threshold {
		s.alerts.IncDispatch(metrics.AlertOutcomeAboveThreshold)
		return
	}

	start := time.Now()
	log := obslogger.WithContext(ctx, s.log).With(
		zap.Int64("product_id", productID),
		zap.Int("quantity", newQuantity),
	)
	res := outcome{name: metrics.AlertOutcomeError}
	defer func() {
		if r := recover(); r != nil {
			log.Error("dispatch panicked", zap.Any("panic", r))
			res = outcome{name: metrics.AlertOutcomeError}
		}
		s.alerts.IncDispatch(res.name)
		s.alerts.ObserveDispatch(time.Since(start).Seconds())
	}()

	product, err := s.products.FindByID(ctx, s.db, productID)
	if err != nil {
		log.Error("product lookup failed", zap.Error(err))
		return
	}
	if product == nil {
		log.Warn("low stock product not found")
		res.name = metrics.AlertOutcomeProductMissing
		return
	}

	recipients, err := s.recipients.ListActive(ctx, s.db)
	if err != nil {
		log.Error("recipient lookup failed", zap.Error(err))
		return
	}
	if len(recipients) == 0 {
		log.Info("no active recipients, alert skipped")
		res.name = metrics.AlertOutcomeNoRecipients
		return
	}

	res = s.notify(ctx, log, product, newQuantity, recipients)
}

// notify sends one alert per recipient unless any of them already has a row
// for this product today.
func (s *Service) notify(ctx context.Context, log *zap.Logger, product *productdomain.Product, quantity int, recipients []recipientdomain.Recipient) outcome {
	unlock := s.local.Lock(product.ID)
	defer unlock()

	if s.locker.Enabled() {
		lease, err := s.locker.Acquire(ctx, ratelimit.ProductLockKey(product.ID), s.lockTTL)
		switch {
		case errors.Is(err, ratelimit.ErrLockHeld):
			log.Info("alert in progress elsewhere, skipped")
			return outcome{name: metrics.AlertOutcomeLocked}
		case err != nil:
			log.Warn("distributed lock unavailable, relying on unique key", zap.Error(err))
		default:
			defer func() {
				if err := lease.Release(ctx); err != nil {
					log.Warn("lock release failed", zap.String("key", lease.Key()), zap.Error(err))
				}
			}()
		}
	}

	now := s.clock.Now()
	dayKey := domain.DayKey(now, s.loc)

	emails := make([]string, 0, len(recipients))
	for _, r := range recipients {
		emails = append(emails, r.Email)
	}
	existing, err := s.repo.FindTodayLog(ctx, s.db, product.ID, emails, dayKey)
	if err != nil {
		log.Error("dedup lookup failed", zap.Error(err))
		return outcome{name: metrics.AlertOutcomeError}
	}
	if existing != nil {
		log.Info("already alerted today", zap.String("day", dayKey))
		return outcome{name: metrics.AlertOutcomeDeduplicated}
	}

	res := outcome{name: metrics.AlertOutcomeDispatched}
	for _, r := range recipients {
		entry := &domain.AlertLog{
			ID:          s.genID.Generate().Int64(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			Threshold:   domain.Threshold,
			Email:       r.Email,
			DayKey:      dayKey,
			SentAt:      now,
		}
		claimed, err := s.repo.Claim(ctx, s.db, entry)
		if err != nil {
			log.Error("alert log insert failed", zap.String("email", r.Email), zap.Error(err))
			res.failed++
			s.recordEmail(ctx, metrics.AlertEmailFailed)
			continue
		}
		if !claimed {
			s.recordEmail(ctx, metrics.AlertEmailSkipped)
			continue
		}

		ok := s.mailer.SendLowStock(ctx, r.Email, product.Name, quantity)
		if ok {
			res.sent++
			s.recordEmail(ctx, metrics.AlertEmailSent)
			if err := s.repo.SetSuccess(ctx, s.db, entry.ID, true); err != nil {
				log.Error("alert log update failed", zap.String("email", r.Email), zap.Error(err))
			}
		} else {
			res.failed++
			s.recordEmail(ctx, metrics.AlertEmailFailed)
		}
	}

	log.Info("low stock alert dispatched",
		zap.Int("sent", res.sent),
		zap.Int("failed", res.failed),
	)
	return res
}

func (s *Service) recordEmail(ctx context.Context, result string) {
	s.alerts.IncEmail(result)
	s.metrics.RecordAlertEmail(ctx, result)
}

func (s *Service) CheckAll(ctx context.Context) (domain.CheckResult, error) {
	log := obslogger.WithContext(ctx, s.log)

	low, err := s.inventory.ListAtOrBelow(ctx, s.db, domain.Threshold)
	if err != nil {
		return domain.CheckResult{}, err
	}
	if len(low) == 0 {
		return domain.CheckResult{Message: domain.MessageNoLowStock}, nil
	}

	result := domain.CheckResult{LowInventoryCount: len(low)}

	recipients, err := s.recipients.ListActive(ctx, s.db)
	if err != nil {
		log.Error("recipient lookup failed", zap.Error(err))
		return domain.CheckResult{}, err
	}
	if len(recipients) == 0 {
		result.Message = domain.MessageNoRecipients
		return result, nil
	}

	seen := make(map[int64]struct{}, len(low))
	for _, inv := range low {
		if _, ok := seen[inv.ProductID]; ok {
			continue
		}
		seen[inv.ProductID] = struct{}{}

		res := s.checkOne(ctx, log, inv, recipients)
		s.alerts.IncDispatch(res.name)
		result.SentCount += res.sent
		result.FailedCount += res.failed
	}

	result.Message = domain.CheckCompleteMessage(result.LowInventoryCount, result.SentCount, result.FailedCount)
	log.Info("manual inventory check finished",
		zap.Int("low", result.LowInventoryCount),
		zap.Int("sent", result.SentCount),
		zap.Int("failed", result.FailedCount),
	)
	return result, nil
}

func (s *Service) checkOne(ctx context.Context, log *zap.Logger, inv inventorydomain.Inventory, recipients []recipientdomain.Recipient) (res outcome) {
	log = log.With(zap.Int64("product_id", inv.ProductID), zap.Int("quantity", inv.Quantity))
	defer func() {
		if r := recover(); r != nil {
			log.Error("check panicked", zap.Any("panic", r))
			res = outcome{name: metrics.AlertOutcomeError}
		}
	}()

	product, err := s.products.FindByID(ctx, s.db, inv.ProductID)
	if err != nil {
		log.Error("product lookup failed", zap.Error(err))
		return outcome{name: metrics.AlertOutcomeError}
	}
	if product == nil {
		log.Warn("low stock product not found")
		return outcome{name: metrics.AlertOutcomeProductMissing}
	}
	return s.notify(ctx, log, product, inv.Quantity, recipients)
}

func (s *Service) ListLogs(ctx context.Context, limit int) ([]domain.LogResponse, error) {
	if limit <= 0 {
		limit = domain.DefaultLogLimit
	}
	items, err := s.repo.ListRecent(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.LogResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, domain.LogResponse{
			ID:          snowflake.ID(item.ID).String(),
			ProductID:   snowflake.ID(item.ProductID).String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Threshold:   item.Threshold,
			Email:       item.Email,
			Success:     item.Success,
			SentAt:      item.SentAt,
		})
	}
	return resp, nil
}
