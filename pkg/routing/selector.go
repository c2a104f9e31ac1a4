package routing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// Observer receives probe and selection events, typically for metrics.
type Observer interface {
	ObserveProbe(health EndpointHealth)
	ObserveSelection(segment Segment, sel Selection)
}

// SelectorConfig contains selector timing.
type SelectorConfig struct {
	// TTL is how long a winning endpoint is served from cache.
	TTL time.Duration

	// RoundTimeout bounds a whole probe round. Probes still running when
	// it expires count as dead.
	RoundTimeout time.Duration
}

// Selector picks the live endpoint with the lowest probe latency for a
// segment and caches it for TTL. Concurrent refreshes of the same segment
// are coalesced into one probe round.
type Selector struct {
	registry *Registry
	prober   Prober
	cache    *EndpointCache
	group    singleflight.Group

	ttl          time.Duration
	roundTimeout time.Duration

	observer Observer
	tracer   trace.Tracer
	logger   *slog.Logger

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// SelectorOption customizes a Selector.
type SelectorOption func(*Selector)

// WithObserver registers an observer for probe and selection events.
func WithObserver(o Observer) SelectorOption {
	return func(s *Selector) { s.observer = o }
}

// WithClock replaces the selector's clock.
func WithClock(now func() time.Time) SelectorOption {
	return func(s *Selector) { s.now = now }
}

// NewSelector creates a selector over registry using prober.
func NewSelector(registry *Registry, prober Prober, cfg SelectorConfig, opts ...SelectorOption) *Selector {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.RoundTimeout <= 0 {
		cfg.RoundTimeout = 4 * time.Second
	}

	s := &Selector{
		registry:     registry,
		prober:       prober,
		cache:        NewEndpointCache(),
		ttl:          cfg.TTL,
		roundTimeout: cfg.RoundTimeout,
		tracer:       otel.Tracer("github.com/Herocku2/solana-token-creatorf/pkg/routing"),
		logger:       slog.Default().With("component", "selector"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the selector draws candidates from.
func (s *Selector) Registry() *Registry {
	return s.registry
}

// Select returns the endpoint to use for segment. A valid cache entry is
// returned without any network call. Otherwise the caller joins the
// segment's in-flight probe round, or starts one. If the caller's context
// ends first, or no candidate is alive, the first registry candidate is
// returned. Select never fails; an unknown segment yields a zero Endpoint.
func (s *Selector) Select(ctx context.Context, segment Segment) Endpoint {
	if sel, ok := s.cache.Get(segment, s.now()); ok {
		return sel.Endpoint
	}

	ch := s.group.DoChan(string(segment), func() (any, error) {
		return s.refresh(segment, false), nil
	})

	select {
	case res := <-ch:
		return res.Val.(Selection).Endpoint
	case <-ctx.Done():
		s.logger.Debug("caller left before probe round finished", "segment", segment)
		return s.registry.Default(segment)
	}
}

// Refresh runs a probe round for segment even if the cache is still
// valid, caches a live winner, and returns the outcome. A round already in
// flight for the segment is joined instead.
func (s *Selector) Refresh(ctx context.Context, segment Segment) Selection {
	ch := s.group.DoChan(string(segment), func() (any, error) {
		return s.refresh(segment, true), nil
	})

	select {
	case res := <-ch:
		return res.Val.(Selection)
	case <-ctx.Done():
		return Selection{Endpoint: s.registry.Default(segment), Fallback: true}
	}
}

// Current returns the cached selection for segment, if still valid.
func (s *Selector) Current(segment Segment) (Selection, bool) {
	return s.cache.Get(segment, s.now())
}

// Invalidate drops the cached selection so the next Select re-probes.
func (s *Selector) Invalidate(segment Segment) {
	s.cache.Delete(segment)
}

// refresh runs inside the single-flight group. The probe round is detached
// from any one caller's context so that a departing caller does not cancel
// the round the others are waiting on.
func (s *Selector) refresh(segment Segment, force bool) Selection {
	if !force {
		// Another round may have completed between the caller's cache miss
		// and this flight starting.
		if sel, ok := s.cache.Get(segment, s.now()); ok {
			return sel
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.roundTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "endpoint.refresh")
	defer span.End()
	span.SetAttributes(attribute.String("network.segment", string(segment)))

	candidates := s.registry.Candidates(segment)
	results := s.ProbeAll(ctx, candidates)
	best := pickBest(results)

	var sel Selection
	if best < 0 {
		sel = Selection{Endpoint: s.registry.Default(segment), Fallback: true, Health: results}
		s.logger.Warn("no live endpoint, using default candidate",
			"segment", segment,
			"candidates", len(candidates),
		)
	} else {
		sel = Selection{
			Endpoint:  results[best].Endpoint,
			ExpiresAt: s.now().Add(s.ttl),
			Health:    results,
		}
		s.cache.Set(segment, sel)
		s.logger.Info("endpoint selected",
			"segment", segment,
			"index", best,
			"latency_ms", results[best].LatencyMs(),
		)
	}

	span.SetAttributes(
		attribute.Bool("selection.fallback", sel.Fallback),
		attribute.Int("selection.candidates", len(candidates)),
	)
	if s.observer != nil {
		s.observer.ObserveSelection(segment, sel)
	}
	return sel
}

// ProbeAll probes every endpoint concurrently and returns results in input
// order. It returns when all probes finish or ctx ends; probes that have
// not reported by then are recorded as dead.
func (s *Selector) ProbeAll(ctx context.Context, endpoints []Endpoint) []EndpointHealth {
	results := make([]EndpointHealth, len(endpoints))
	for i, ep := range endpoints {
		results[i] = EndpointHealth{Endpoint: ep, Err: &ProbeError{Reason: "probe did not complete"}}
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i, ep := range endpoints {
		wg.Add(1)
		go func(i int, ep Endpoint) {
			defer wg.Done()
			health := s.prober.Probe(ctx, ep)
			if s.observer != nil {
				s.observer.ObserveProbe(health)
			}
			mu.Lock()
			results[i] = health
			mu.Unlock()
		}(i, ep)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]EndpointHealth, len(results))
	copy(out, results)
	return out
}

// pickBest returns the index of the alive result with the lowest latency,
// earlier entries winning ties, or -1 if none is alive.
func pickBest(results []EndpointHealth) int {
	best := -1
	for i, h := range results {
		if !h.Alive {
			continue
		}
		if best < 0 || h.Latency < results[best].Latency {
			best = i
		}
	}
	return best
}
