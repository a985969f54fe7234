package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smallbiznis/stockroom/internal/config"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	"go.uber.org/zap"
)

const DriverMemory = "memory"

// Bus is an in-process event bus backed by a buffered channel and a fixed
// worker pool. Publish never blocks: when the buffer is full the event is
// dropped and logged.
type Bus struct {
	log     *zap.Logger
	metrics *metrics.AlertMetrics
	queue   chan Event
	workers int

	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewBus(cfg config.EventsConfig, log *zap.Logger, m *metrics.AlertMetrics) *Bus {
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = 256
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Bus{
		log:      log.Named("events.bus"),
		metrics:  m,
		queue:    make(chan Event, buffer),
		workers:  workers,
		handlers: make(map[string][]Handler),
	}
}

func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	e = e.withRequestID(ctx)

	select {
	case b.queue <- e:
		return nil
	default:
		b.metrics.IncStockEvent(DriverMemory, "dropped")
		obslogger.WithContext(ctx, b.log).Warn("event buffer full, dropping event",
			zap.String("event_id", e.ID),
			zap.String("type", e.Type),
			zap.Int64("product_id", e.ProductID),
		)
		return fmt.Errorf("event buffer full: %s", e.ID)
	}
}

// Start launches the worker pool.
func (b *Bus) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.run(ctx)
	}
}

// Stop rejects new events, drains queued ones and waits for the workers.
func (b *Bus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if b.cancel != nil {
			b.cancel()
		}
		return ctx.Err()
	}
}

func (b *Bus) run(ctx context.Context) {
	defer b.wg.Done()
	for e := range b.queue {
		b.deliver(ctx, e)
	}
}

func (b *Bus) deliver(ctx context.Context, e Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[e.Type]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(ctx, h, e)
	}
}

func (b *Bus) invoke(ctx context.Context, h Handler, e Event) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			b.metrics.IncStockEvent(DriverMemory, "panic")
			b.log.Error("event handler panic",
				zap.String("event_id", e.ID),
				zap.Any("panic", r),
			)
		}
	}()

	if err := h(handlerContext(ctx, e), e); err != nil {
		b.metrics.IncStockEvent(DriverMemory, "failed")
		b.log.Warn("event handler failed",
			zap.String("event_id", e.ID),
			zap.String("type", e.Type),
			zap.Error(err),
		)
		return
	}
	b.metrics.IncStockEvent(DriverMemory, "handled")
	b.log.Debug("event handled",
		zap.String("event_id", e.ID),
		zap.Duration("elapsed", time.Since(start)),
	)
}
