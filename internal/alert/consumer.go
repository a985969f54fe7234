package alert

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/alert/domain"
	"github.com/smallbiznis/stockroom/internal/events"
	"go.uber.org/zap"
)

// Consumer feeds stock.changed events into the dispatcher.
type Consumer struct {
	dispatcher domain.Service
	log        *zap.Logger
}

func NewConsumer(dispatcher domain.Service, log *zap.Logger) *Consumer {
	return &Consumer{dispatcher: dispatcher, log: log.Named("alert.consumer")}
}

func (c *Consumer) Handle(ctx context.Context, e events.Event) error {
	c.log.Debug("stock changed",
		zap.String("event_id", e.ID),
		zap.Int64("product_id", e.ProductID),
		zap.Int("quantity", e.Quantity),
	)
	c.dispatcher.Dispatch(ctx, e.ProductID, e.Quantity)
	return nil
}

func RegisterConsumer(sub events.Subscriber, c *Consumer) {
	sub.Subscribe(events.TypeStockChanged, c.Handle)
}
