package events

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(provideBus),
	fx.Provide(NewPublisher),
	fx.Provide(NewSubscriber),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
	Metrics   *metrics.AlertMetrics
	Meters    *metrics.Metrics `optional:"true"`
}

func provideBus(p Params) *Bus {
	bus := NewBus(p.Cfg.Events, p.Log, p.Metrics)
	if p.Cfg.UsesKafka() {
		return bus
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			bus.Start()
			return nil
		},
		OnStop: bus.Stop,
	})
	return bus
}

// NewPublisher returns the Kafka publisher when EVENTS_DRIVER=kafka and the
// in-process bus otherwise.
func NewPublisher(p Params, bus *Bus) Publisher {
	if !p.Cfg.UsesKafka() {
		return &meteredPublisher{next: bus, meters: p.Meters, driver: DriverMemory}
	}
	pub := NewKafkaPublisher(p.Cfg.Events, p.Log, p.Metrics)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	})
	p.Log.Info("stock events published to kafka",
		zap.Strings("brokers", p.Cfg.Events.Brokers),
		zap.String("topic", p.Cfg.Events.Topic),
	)
	return &meteredPublisher{next: pub, meters: p.Meters, driver: DriverKafka}
}

// meteredPublisher counts accepted events on the OTel meter.
type meteredPublisher struct {
	next   Publisher
	meters *metrics.Metrics
	driver string
}

func (p *meteredPublisher) Publish(ctx context.Context, e Event) error {
	if err := p.next.Publish(ctx, e); err != nil {
		return err
	}
	p.meters.RecordStockEvent(ctx, e.Type, p.driver)
	return nil
}

// NewSubscriber mirrors NewPublisher for the consuming side.
func NewSubscriber(p Params, bus *Bus) Subscriber {
	if !p.Cfg.UsesKafka() {
		return bus
	}
	consumer := NewKafkaConsumer(p.Cfg.Events, p.Log, p.Metrics)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			consumer.Start()
			return nil
		},
		OnStop: consumer.Stop,
	})
	p.Log.Info("stock events consumed from kafka",
		zap.String("topic", p.Cfg.Events.Topic),
		zap.String("group_id", p.Cfg.Events.GroupID),
	)
	return consumer
}
