package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	AlertOutcomeAboveThreshold = "above_threshold"
	AlertOutcomeProductMissing = "product_missing"
	AlertOutcomeNoRecipients   = "no_recipients"
	AlertOutcomeDeduplicated   = "deduplicated"
	AlertOutcomeLocked         = "locked"
	AlertOutcomeDispatched     = "dispatched"
	AlertOutcomeError          = "error"
)

const (
	AlertEmailSent    = "sent"
	AlertEmailFailed  = "failed"
	AlertEmailSkipped = "skipped"
)

// AlertMetrics captures low-stock alert dispatcher signals.
type AlertMetrics struct {
	dispatches  *prometheus.CounterVec
	emails      *prometheus.CounterVec
	stockEvents *prometheus.CounterVec
	dispatchDur prometheus.Histogram
}

var (
	alertMetricsOnce sync.Once
	alertMetrics     *AlertMetrics
)

// Alerts returns the singleton alert metrics registered on the default registerer.
func Alerts(cfg Config) *AlertMetrics {
	alertMetricsOnce.Do(func() {
		alertMetrics = newAlertMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return alertMetrics
}

// NewAlertMetricsForTest registers alert metrics on the given registry.
func NewAlertMetricsForTest(registerer prometheus.Registerer) *AlertMetrics {
	return newAlertMetrics(registerer, Config{ServiceName: "stockroom", Environment: "test"})
}

func newAlertMetrics(registerer prometheus.Registerer, cfg Config) *AlertMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	constLabels := constLabelsFor(cfg)

	dispatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "stockroom_alert_dispatch_total",
		Help:        "Low-stock alert dispatches by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	emails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "stockroom_alert_emails_total",
		Help:        "Low-stock alert emails by result.",
		ConstLabels: constLabels,
	}, []string{"result"})
	stockEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "stockroom_stock_events_total",
		Help:        "Stock change events handled by driver and result.",
		ConstLabels: constLabels,
	}, []string{"driver", "result"})
	dispatchDur := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "stockroom_alert_dispatch_duration_seconds",
		Help:        "Low-stock alert dispatch latency including email delivery.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	})

	registerer.MustRegister(dispatches, emails, stockEvents, dispatchDur)

	return &AlertMetrics{
		dispatches:  dispatches,
		emails:      emails,
		stockEvents: stockEvents,
		dispatchDur: dispatchDur,
	}
}

func (m *AlertMetrics) IncDispatch(outcome string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(outcome).Inc()
}

func (m *AlertMetrics) IncEmail(result string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(result).Inc()
}

func (m *AlertMetrics) IncStockEvent(driver, result string) {
	if m == nil {
		return
	}
	m.stockEvents.WithLabelValues(driver, result).Inc()
}

func (m *AlertMetrics) ObserveDispatch(seconds float64) {
	if m == nil {
		return
	}
	m.dispatchDur.Observe(seconds)
}

// DispatchCounter exposes one outcome series for assertions in tests.
func (m *AlertMetrics) DispatchCounter(outcome string) prometheus.Counter {
	return m.dispatches.WithLabelValues(outcome)
}

func constLabelsFor(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "stockroom"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}
