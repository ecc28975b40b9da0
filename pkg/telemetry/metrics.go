package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the store. The zero-value-like
// instance returned for a disabled config is a no-op.
type Metrics struct {
	config MetricsConfig

	// Item metrics
	itemOperations *prometheus.CounterVec
	itemCount      *prometheus.GaugeVec

	// Solve metrics
	solvesStarted   prometheus.Counter
	solvesCompleted *prometheus.CounterVec
	solveDuration   *prometheus.HistogramVec

	// Error metrics
	errorsByClass *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		itemOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "item_operations_total",
				Help:      "Total number of item operations by library and operation",
			},
			[]string{"library", "operation"},
		),
		itemCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "items",
				Help:      "Current number of items per library",
			},
			[]string{"library"},
		),

		solvesStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "solves_started_total",
				Help:      "Total number of model solves started",
			},
		),
		solvesCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "solves_completed_total",
				Help:      "Total number of model solves completed",
			},
			[]string{"status"},
		),
		solveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "solve_duration_seconds",
				Help:      "Duration of model solves in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),

		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors by class",
			},
			[]string{"class"},
		),
	}

	registry.MustRegister(
		m.itemOperations,
		m.itemCount,
		m.solvesStarted,
		m.solvesCompleted,
		m.solveDuration,
		m.errorsByClass,
	)

	return m, nil
}

// RecordItemOperation records one add, get or delete against a library.
func (m *Metrics) RecordItemOperation(library, operation string) {
	if m.itemOperations == nil {
		return
	}
	m.itemOperations.WithLabelValues(library, operation).Inc()
}

// SetItemCount sets the current item count of a library.
func (m *Metrics) SetItemCount(library string, count float64) {
	if m.itemCount == nil {
		return
	}
	m.itemCount.WithLabelValues(library).Set(count)
}

// RecordSolveStarted records the start of one model solve.
func (m *Metrics) RecordSolveStarted() {
	if m.solvesStarted == nil {
		return
	}
	m.solvesStarted.Inc()
}

// RecordSolveCompleted records the outcome and duration of one model solve.
func (m *Metrics) RecordSolveCompleted(status string, duration time.Duration) {
	if m.solvesCompleted == nil {
		return
	}
	m.solvesCompleted.WithLabelValues(status).Inc()
	m.solveDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordError records one classified error.
func (m *Metrics) RecordError(class string) {
	if m.errorsByClass == nil {
		return
	}
	m.errorsByClass.WithLabelValues(class).Inc()
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
