package metrics

import (
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
)

// EndpointMetrics tracks upstream RPC node health, selection and forwarding.
//
// Metrics:
//   - tokengate_endpoint_probes_total: probes by segment and result
//   - tokengate_endpoint_probe_latency_seconds: latency of live probes
//   - tokengate_endpoint_alive: last probe result per node (1=alive, 0=dead)
//   - tokengate_endpoint_selections_total: probe rounds by segment and result
//   - tokengate_upstream_requests_total: forwarded calls by route, segment and outcome
//   - tokengate_upstream_request_duration_seconds: forwarded call latency
//
// Nodes are labeled by host only; query strings may carry API keys.
type EndpointMetrics struct {
	probes          *prometheus.CounterVec
	probeLatency    *prometheus.HistogramVec
	alive           *prometheus.GaugeVec
	selections      *prometheus.CounterVec
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

// NewEndpointMetrics creates and registers endpoint metrics with the provided registry.
func NewEndpointMetrics(namespace string, registry prometheus.Registerer) *EndpointMetrics {
	em := &EndpointMetrics{
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "endpoint",
				Name:      "probes_total",
				Help:      "Total number of endpoint liveness probes",
			},
			[]string{"segment", "result"},
		),

		probeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "endpoint",
				Name:      "probe_latency_seconds",
				Help:      "Latency of successful liveness probes in seconds",
				Buckets:   []float64{0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1.5, 3},
			},
			[]string{"segment"},
		),

		alive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "endpoint",
				Name:      "alive",
				Help:      "Result of the last probe of each endpoint (1=alive, 0=dead)",
			},
			[]string{"segment", "host"},
		),

		selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "endpoint",
				Name:      "selections_total",
				Help:      "Total number of probe rounds by outcome",
			},
			[]string{"segment", "result"},
		),

		upstreamTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total number of forwarded RPC calls by outcome",
			},
			[]string{"route", "segment", "outcome"},
		),

		upstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Duration of forwarded RPC calls in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(
		em.probes,
		em.probeLatency,
		em.alive,
		em.selections,
		em.upstreamTotal,
		em.upstreamLatency,
	)
	return em
}

// RecordProbe records one probe result.
func (em *EndpointMetrics) RecordProbe(h routing.EndpointHealth) {
	segment := string(h.Endpoint.Segment)
	host := hostLabel(h.Endpoint.URL)

	if h.Alive {
		em.probes.WithLabelValues(segment, "alive").Inc()
		em.probeLatency.WithLabelValues(segment).Observe(h.Latency.Seconds())
		em.alive.WithLabelValues(segment, host).Set(1)
		return
	}
	em.probes.WithLabelValues(segment, "dead").Inc()
	em.alive.WithLabelValues(segment, host).Set(0)
}

// RecordSelection records the outcome of a probe round.
func (em *EndpointMetrics) RecordSelection(segment routing.Segment, sel routing.Selection) {
	result := "selected"
	if sel.Fallback {
		result = "fallback"
	}
	em.selections.WithLabelValues(string(segment), result).Inc()
}

// RecordForward records one forwarded call.
func (em *EndpointMetrics) RecordForward(route, segment, outcome string, duration time.Duration) {
	em.upstreamTotal.WithLabelValues(route, segment, outcome).Inc()
	em.upstreamLatency.WithLabelValues(route).Observe(duration.Seconds())
}

func hostLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
