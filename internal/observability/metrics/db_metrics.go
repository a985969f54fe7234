package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// DBMetrics counts statements that crossed the slow query threshold.
type DBMetrics struct {
	slowQueries *prometheus.CounterVec
}

var (
	dbMetricsOnce sync.Once
	dbMetrics     *DBMetrics
)

// DB returns the singleton database metrics registered on the default registerer.
func DB(cfg Config) *DBMetrics {
	dbMetricsOnce.Do(func() {
		dbMetrics = newDBMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return dbMetrics
}

func newDBMetrics(registerer prometheus.Registerer, cfg Config) *DBMetrics {
	slowQueries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "stockroom_db_slow_queries_total",
		Help:        "Statements slower than DATABASE_SLOW_QUERY_MS by operation and table.",
		ConstLabels: constLabelsFor(cfg),
	}, []string{"operation", "table"})
	registerer.MustRegister(slowQueries)
	return &DBMetrics{slowQueries: slowQueries}
}

// ObserveSlowQuery matches logger.SlowQueryFunc.
func (m *DBMetrics) ObserveSlowQuery(operation, table string) {
	if m == nil {
		return
	}
	if table == "" {
		table = "unknown"
	}
	m.slowQueries.WithLabelValues(operation, table).Inc()
}
