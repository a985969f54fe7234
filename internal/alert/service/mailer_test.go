package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureProvider struct {
	to       []string
	subject  string
	template string
	data     any
	err      error
	panics   bool
}

func (p *captureProvider) Send(context.Context, []string, string, string) error {
	return p.err
}

func (p *captureProvider) SendTemplate(_ context.Context, to []string, subject, name string, data any) error {
	if p.panics {
		panic("smtp exploded")
	}
	p.to, p.subject, p.template, p.data = to, subject, name, data
	return p.err
}

func TestMailer_SendLowStock(t *testing.T) {
	p := &captureProvider{}
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC))

	ok := NewMailer(p, clk, loc, zap.NewNop()).SendLowStock(context.Background(), "a@example.com", "Alpha", 1)
	require.True(t, ok)

	assert.Equal(t, []string{"a@example.com"}, p.to)
	assert.Equal(t, "库存警报：Alpha 库存不足", p.subject)
	assert.Equal(t, "low_stock", p.template)
	data := p.data.(map[string]any)
	assert.Equal(t, 2, data["Threshold"])
	assert.Equal(t, "2025-03-01 09:00:00", data["SentAt"])
}

func TestMailer_FailureAndPanicReturnFalse(t *testing.T) {
	clk := clock.NewFakeClock(time.Now())

	failing := NewMailer(&captureProvider{err: errors.New("535 auth")}, clk, time.UTC, zap.NewNop())
	assert.False(t, failing.SendLowStock(context.Background(), "a@example.com", "Alpha", 1))

	panicking := NewMailer(&captureProvider{panics: true}, clk, time.UTC, zap.NewNop())
	assert.NotPanics(t, func() {
		assert.False(t, panicking.SendLowStock(context.Background(), "a@example.com", "Alpha", 1))
	})
}
