package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	"go.uber.org/zap"
)

const DriverKafka = "kafka"

// KafkaPublisher writes events to a topic keyed by product id.
type KafkaPublisher struct {
	writer  *kafka.Writer
	log     *zap.Logger
	metrics *metrics.AlertMetrics
}

func NewKafkaPublisher(cfg config.EventsConfig, log *zap.Logger, m *metrics.AlertMetrics) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{
		writer:  writer,
		log:     log.Named("events.kafka.publisher"),
		metrics: m,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	e = e.withRequestID(ctx)
	payload, err := e.Marshal()
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   e.Key(),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}); err != nil {
		p.metrics.IncStockEvent(DriverKafka, "publish_failed")
		p.log.Error("failed to publish event",
			zap.String("event_id", e.ID),
			zap.Error(err),
		)
		return err
	}

	p.metrics.IncStockEvent(DriverKafka, "published")
	p.log.Debug("event published",
		zap.String("event_id", e.ID),
		zap.Int64("product_id", e.ProductID),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// KafkaConsumer reads events with a consumer group and commits each message
// after its handlers ran. Handler errors are logged; the message is still
// committed since alert dispatch has no retry.
type KafkaConsumer struct {
	reader  *kafka.Reader
	log     *zap.Logger
	metrics *metrics.AlertMetrics

	mu       sync.RWMutex
	handlers map[string][]Handler

	cancel context.CancelFunc
	done   chan struct{}
}

func NewKafkaConsumer(cfg config.EventsConfig, log *zap.Logger, m *metrics.AlertMetrics) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
	return &KafkaConsumer{
		reader:   reader,
		log:      log.Named("events.kafka.consumer"),
		metrics:  m,
		handlers: make(map[string][]Handler),
	}
}

func (c *KafkaConsumer) Subscribe(eventType string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventType] = append(c.handlers[eventType], h)
}

func (c *KafkaConsumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.loop(ctx)
}

func (c *KafkaConsumer) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	if c.done != nil {
		select {
		case <-c.done:
		case <-ctx.Done():
		}
	}
	return c.reader.Close()
}

func (c *KafkaConsumer) loop(ctx context.Context) {
	defer close(c.done)
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			c.log.Warn("fetch failed", zap.Error(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.Warn("commit failed",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, msg kafka.Message) {
	e, err := Unmarshal(msg.Value)
	if err != nil {
		c.metrics.IncStockEvent(DriverKafka, "malformed")
		c.log.Warn("malformed event skipped",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return
	}

	c.mu.RLock()
	handlers := append([]Handler(nil), c.handlers[e.Type]...)
	c.mu.RUnlock()

	ctx = handlerContext(ctx, e)
	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			c.metrics.IncStockEvent(DriverKafka, "failed")
			c.log.Warn("event handler failed",
				zap.String("event_id", e.ID),
				zap.Error(err),
			)
			continue
		}
		c.metrics.IncStockEvent(DriverKafka, "handled")
	}
}
