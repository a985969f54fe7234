package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBus(t *testing.T, buffer, workers int) *Bus {
	t.Helper()
	m := metrics.NewAlertMetricsForTest(prometheus.NewRegistry())
	return NewBus(config.EventsConfig{Buffer: buffer, Workers: workers}, zap.NewNop(), m)
}

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := newTestBus(t, 8, 2)

	var mu sync.Mutex
	var got []Event
	var wg sync.WaitGroup
	wg.Add(2)
	bus.Subscribe(TypeStockChanged, func(ctx context.Context, e Event) error {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		wg.Done()
		return nil
	})
	bus.Start()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, bus.Publish(context.Background(), NewStockChanged(1, 2, now)))
	require.NoError(t, bus.Publish(context.Background(), NewStockChanged(2, 0, now)))

	wg.Wait()
	require.NoError(t, bus.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 2)
}

func TestBusSurvivesHandlerFailures(t *testing.T) {
	bus := newTestBus(t, 8, 1)

	done := make(chan struct{})
	calls := 0
	bus.Subscribe(TypeStockChanged, func(ctx context.Context, e Event) error {
		calls++
		switch calls {
		case 1:
			panic("boom")
		case 2:
			return errors.New("smtp down")
		default:
			close(done)
			return nil
		}
	})
	bus.Start()

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(context.Background(), NewStockChanged(int64(i+1), 1, time.Now())))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("third event was not delivered")
	}
	require.NoError(t, bus.Stop(context.Background()))
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := newTestBus(t, 1, 1)

	require.NoError(t, bus.Publish(context.Background(), NewStockChanged(1, 1, time.Now())))
	assert.Error(t, bus.Publish(context.Background(), NewStockChanged(2, 1, time.Now())))
}

func TestBusRejectsAfterStop(t *testing.T) {
	bus := newTestBus(t, 4, 1)
	bus.Start()
	require.NoError(t, bus.Stop(context.Background()))

	err := bus.Publish(context.Background(), NewStockChanged(1, 1, time.Now()))
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestEventRoundTrip(t *testing.T) {
	e := NewStockChanged(1842, 2, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	payload, err := e.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"product_id":"1842"`)

	decoded, err := Unmarshal(payload)
	require.NoError(t, err)
	assert.Equal(t, e, decoded)
	assert.Equal(t, []byte("1842"), e.Key())
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func TestMeteredPublisherForwards(t *testing.T) {
	next := &recordingPublisher{}
	pub := &meteredPublisher{next: next, driver: DriverMemory}

	e := NewStockChanged(9, 1, time.Now())
	require.NoError(t, pub.Publish(context.Background(), e))
	require.Len(t, next.events, 1)
	assert.Equal(t, e.ID, next.events[0].ID)

	next.err = errors.New("broker down")
	assert.Error(t, pub.Publish(context.Background(), e))
}
