package service

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/stockroom/internal/alert/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/providers/email"
	"go.uber.org/zap"
)

const (
	lowStockTemplate = "low_stock"
	sentAtLayout     = "2006-01-02 15:04:05"
)

type mailer struct {
	provider email.Provider
	clock    clock.Clock
	loc      *time.Location
	log      *zap.Logger
}

// NewMailer renders the low-stock template through provider.
func NewMailer(provider email.Provider, clk clock.Clock, loc *time.Location, log *zap.Logger) domain.Mailer {
	return &mailer{provider: provider, clock: clk, loc: loc, log: log.Named("alert.mailer")}
}

func (m *mailer) SendLowStock(ctx context.Context, to, productName string, quantity int) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("mail provider panicked", zap.String("email", to), zap.Any("panic", r))
			ok = false
		}
	}()

	subject := fmt.Sprintf("库存警报：%s 库存不足", productName)
	data := map[string]any{
		"ProductName": productName,
		"Quantity":    quantity,
		"Threshold":   domain.Threshold,
		"SentAt":      m.clock.Now().In(m.loc).Format(sentAtLayout),
	}
	if err := m.provider.SendTemplate(ctx, []string{to}, subject, lowStockTemplate, data); err != nil {
		m.log.Warn("low stock mail failed", zap.String("email", to), zap.Error(err))
		return false
	}
	return true
}
