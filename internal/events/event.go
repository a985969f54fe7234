// Package events carries post-commit domain events between the write paths
// and asynchronous consumers such as the low-stock alert dispatcher.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	obscontext "github.com/smallbiznis/stockroom/internal/observability/context"
)

const TypeStockChanged = "stock.changed"

var ErrBusClosed = errors.New("event_bus_closed")

// Event is the envelope published after a stock-changing write commits.
type Event struct {
	ID         string    `json:"event_id"`
	Type       string    `json:"type"`
	ProductID  int64     `json:"product_id,string"`
	Quantity   int       `json:"quantity"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewStockChanged builds a stock.changed event for the product's new box count.
func NewStockChanged(productID int64, quantity int, at time.Time) Event {
	return Event{
		ID:         ulid.Make().String(),
		Type:       TypeStockChanged,
		ProductID:  productID,
		Quantity:   quantity,
		OccurredAt: at.UTC(),
	}
}

// Key partitions events so that one product's events stay ordered.
func (e Event) Key() []byte {
	return []byte(strconv.FormatInt(e.ProductID, 10))
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// withRequestID copies the publishing request's id onto the event.
func (e Event) withRequestID(ctx context.Context) Event {
	if e.RequestID == "" {
		e.RequestID = obscontext.RequestIDFromContext(ctx)
	}
	return e
}

// handlerContext carries the originating request id into handler logs.
func handlerContext(ctx context.Context, e Event) context.Context {
	if e.RequestID == "" {
		return ctx
	}
	return obscontext.WithRequestID(ctx, e.RequestID)
}

type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	Subscribe(eventType string, h Handler)
}
