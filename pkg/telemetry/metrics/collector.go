package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
)

// maxRouteLabels bounds the number of distinct route labels.
const maxRouteLabels = 256

// Collector owns the gateway's Prometheus registry and records HTTP,
// endpoint selection, upstream forwarding and upload metrics.
//
// It satisfies the observer interfaces of the routing, proxy, upload and
// middleware packages so that those packages stay free of Prometheus types.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	endpointMetrics *EndpointMetrics
	uploadMetrics   *UploadMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering into registry. A nil
// registry gets a fresh one with the Go runtime and process collectors.
//
// Example:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	selector := routing.NewSelector(reg, prober, scfg, routing.WithObserver(collector))
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		requestMetrics:     NewRequestMetrics(cfg.Namespace, registry),
		endpointMetrics:    NewEndpointMetrics(cfg.Namespace, registry),
		uploadMetrics:      NewUploadMetrics(cfg.Namespace, registry),
		cardinalityLimiter: NewCardinalityLimiter(maxRouteLabels),
	}
}

// Registry returns the Prometheus registry used by this collector.
// Other packages (e.g., the admission controller) register into it.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Enabled reports whether recording is on.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// ObserveRequest records a completed HTTP request. Routes past the
// cardinality limit are recorded as "other".
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	if !c.cardinalityLimiter.Allow(route) {
		route = "other"
	}
	c.requestMetrics.Record(method, route, strconv.Itoa(status), duration)
}

// ObserveProbe records one liveness probe.
func (c *Collector) ObserveProbe(health routing.EndpointHealth) {
	if !c.config.Enabled {
		return
	}
	c.endpointMetrics.RecordProbe(health)
}

// ObserveSelection records the outcome of a probe round.
func (c *Collector) ObserveSelection(segment routing.Segment, sel routing.Selection) {
	if !c.config.Enabled {
		return
	}
	c.endpointMetrics.RecordSelection(segment, sel)
}

// ObserveForward records a forwarded RPC call.
func (c *Collector) ObserveForward(route, segment, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	if segment == "" {
		segment = "none"
	}
	c.endpointMetrics.RecordForward(route, segment, outcome, duration)
}

// ObserveUpload records an upload that reached the storage backend.
func (c *Collector) ObserveUpload(contentType string, size int, duration time.Duration, err error) {
	if !c.config.Enabled {
		return
	}
	c.uploadMetrics.Record(contentType, size, duration, err)
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if it was seen
// before or the limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
