package limits

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the admission controller.
// Client keys are not used as labels; the set of clients is unbounded.
type Metrics struct {
	decisions    *prometheus.CounterVec
	storeErrors  prometheus.Counter
	sweptRecords prometheus.Counter
	trackedKeys  prometheus.Gauge
	checkLatency *prometheus.HistogramVec
}

// NewMetrics creates admission metrics registered with reg. A nil reg
// creates unregistered collectors, which is convenient in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "admission",
				Name:      "decisions_total",
				Help:      "Total number of admission decisions",
			},
			[]string{"result"},
		),

		storeErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "admission",
				Name:      "store_errors_total",
				Help:      "Total number of quota store failures answered from the in-memory fallback",
			},
		),

		sweptRecords: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "admission",
				Name:      "swept_records_total",
				Help:      "Total number of expired quota records removed",
			},
		),

		trackedKeys: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "admission",
				Name:      "tracked_clients",
				Help:      "Number of client keys with a quota record after the last sweep",
			},
		),

		checkLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "admission",
				Name:      "check_duration_seconds",
				Help:      "Duration of admission checks in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"backend"},
		),
	}
}

// RecordDecision records an admission decision.
func (m *Metrics) RecordDecision(allowed bool) {
	result := "allowed"
	if !allowed {
		result = "rejected"
	}
	m.decisions.WithLabelValues(result).Inc()
}

// RecordStoreError records a quota store failure.
func (m *Metrics) RecordStoreError() {
	m.storeErrors.Inc()
}

// RecordSweep records a completed sweep.
func (m *Metrics) RecordSweep(removed, remaining int) {
	m.sweptRecords.Add(float64(removed))
	m.trackedKeys.Set(float64(remaining))
}

// RecordCheckDuration records the duration of one admission check.
func (m *Metrics) RecordCheckDuration(backend string, seconds float64) {
	m.checkLatency.WithLabelValues(backend).Observe(seconds)
}
