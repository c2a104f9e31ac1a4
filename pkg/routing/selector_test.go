package routing

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// scriptedProber answers from a fixed table of latencies; a missing entry
// means the endpoint is dead.
type scriptedProber struct {
	latencies map[string]time.Duration
	delay     time.Duration
	calls     int64
}

func (p *scriptedProber) Probe(ctx context.Context, ep Endpoint) EndpointHealth {
	atomic.AddInt64(&p.calls, 1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return EndpointHealth{Endpoint: ep, Err: ctx.Err()}
		}
	}
	latency, ok := p.latencies[ep.URL]
	if !ok {
		return EndpointHealth{Endpoint: ep, Err: &ProbeError{Reason: "unreachable"}}
	}
	return EndpointHealth{Endpoint: ep, Alive: true, Latency: latency, CheckedAt: time.Now()}
}

func (p *scriptedProber) Calls() int {
	return int(atomic.LoadInt64(&p.calls))
}

func testRegistry(t *testing.T, devnet ...string) *Registry {
	t.Helper()
	r, err := NewRegistry(map[Segment][]string{
		Devnet:  devnet,
		Mainnet: {"https://main"},
	})
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return r
}

type recordingObserver struct {
	mu         sync.Mutex
	probes     int
	selections []Selection
}

func (o *recordingObserver) ObserveProbe(EndpointHealth) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.probes++
}

func (o *recordingObserver) ObserveSelection(_ Segment, sel Selection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selections = append(o.selections, sel)
}

func TestSelector_PicksLowestLatency(t *testing.T) {
	prober := &scriptedProber{latencies: map[string]time.Duration{
		"https://a": 80 * time.Millisecond,
		"https://b": 20 * time.Millisecond,
		"https://c": 50 * time.Millisecond,
	}}
	s := NewSelector(testRegistry(t, "https://a", "https://b", "https://c"), prober, SelectorConfig{TTL: time.Minute})

	got := s.Select(context.Background(), Devnet)
	if got.URL != "https://b" {
		t.Errorf("expected fastest endpoint https://b, got %q", got.URL)
	}
}

func TestSelector_TieBrokenByRegistryOrder(t *testing.T) {
	prober := &scriptedProber{latencies: map[string]time.Duration{
		"https://a": 30 * time.Millisecond,
		"https://b": 10 * time.Millisecond,
		"https://c": 10 * time.Millisecond,
	}}
	s := NewSelector(testRegistry(t, "https://a", "https://b", "https://c"), prober, SelectorConfig{TTL: time.Minute})

	for i := 0; i < 5; i++ {
		s.Invalidate(Devnet)
		if got := s.Select(context.Background(), Devnet); got.URL != "https://b" {
			t.Fatalf("expected earlier tied endpoint https://b, got %q", got.URL)
		}
	}
}

func TestSelector_SkipsDeadEndpoints(t *testing.T) {
	prober := &scriptedProber{latencies: map[string]time.Duration{
		"https://c": 90 * time.Millisecond,
	}}
	s := NewSelector(testRegistry(t, "https://a", "https://b", "https://c"), prober, SelectorConfig{TTL: time.Minute})

	if got := s.Select(context.Background(), Devnet); got.URL != "https://c" {
		t.Errorf("expected only live endpoint https://c, got %q", got.URL)
	}
}

func TestSelector_CacheHitDoesNotProbe(t *testing.T) {
	clock := newFakeClock()
	prober := &scriptedProber{latencies: map[string]time.Duration{"https://a": time.Millisecond}}
	s := NewSelector(testRegistry(t, "https://a", "https://b"), prober, SelectorConfig{TTL: 5 * time.Minute}, WithClock(clock.Now))

	s.Select(context.Background(), Devnet)
	first := prober.Calls()

	clock.Advance(4 * time.Minute)
	for i := 0; i < 10; i++ {
		s.Select(context.Background(), Devnet)
	}

	if prober.Calls() != first {
		t.Errorf("expected no probes within TTL, got %d extra", prober.Calls()-first)
	}
}

func TestSelector_ReprobesAfterTTL(t *testing.T) {
	clock := newFakeClock()
	prober := &scriptedProber{latencies: map[string]time.Duration{"https://a": time.Millisecond}}
	s := NewSelector(testRegistry(t, "https://a", "https://b"), prober, SelectorConfig{TTL: 5 * time.Minute}, WithClock(clock.Now))

	s.Select(context.Background(), Devnet)
	if prober.Calls() != 2 {
		t.Fatalf("expected one round of 2 probes, got %d", prober.Calls())
	}

	clock.Advance(5*time.Minute + time.Second)
	s.Select(context.Background(), Devnet)

	if prober.Calls() != 4 {
		t.Errorf("expected a second round after expiry, got %d probes", prober.Calls())
	}
}

func TestSelector_ConcurrentCallersShareOneRound(t *testing.T) {
	prober := &scriptedProber{
		latencies: map[string]time.Duration{
			"https://a": 5 * time.Millisecond,
			"https://b": 3 * time.Millisecond,
			"https://c": 9 * time.Millisecond,
		},
		delay: 100 * time.Millisecond,
	}
	s := NewSelector(testRegistry(t, "https://a", "https://b", "https://c"), prober, SelectorConfig{TTL: time.Minute})

	const callers = 50
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		got   = make([]Endpoint, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = s.Select(context.Background(), Devnet)
		}(i)
	}
	close(start)
	wg.Wait()

	if prober.Calls() > 3 {
		t.Errorf("expected at most 3 probes (one round), got %d", prober.Calls())
	}
	for i, ep := range got {
		if ep.URL != "https://b" {
			t.Errorf("caller %d got %q, want https://b", i, ep.URL)
		}
	}
}

func TestSelector_AllDeadReturnsFirstCandidate(t *testing.T) {
	prober := &scriptedProber{latencies: map[string]time.Duration{}}
	observer := &recordingObserver{}
	s := NewSelector(testRegistry(t, "https://a", "https://b"), prober, SelectorConfig{TTL: time.Minute}, WithObserver(observer))

	got := s.Select(context.Background(), Devnet)
	if got.URL != "https://a" {
		t.Errorf("expected first candidate https://a, got %q", got.URL)
	}

	if _, ok := s.Current(Devnet); ok {
		t.Error("expected negative result not to be cached")
	}

	s.Select(context.Background(), Devnet)
	if prober.Calls() != 4 {
		t.Errorf("expected a new round on the next call, got %d probes", prober.Calls())
	}

	observer.mu.Lock()
	defer observer.mu.Unlock()
	if len(observer.selections) != 2 || !observer.selections[0].Fallback {
		t.Errorf("expected two fallback selections observed, got %+v", observer.selections)
	}
	if observer.probes != 4 {
		t.Errorf("expected 4 observed probes, got %d", observer.probes)
	}
}

func TestSelector_RoundTimeoutBoundsSelect(t *testing.T) {
	prober := ProberFunc(func(ctx context.Context, ep Endpoint) EndpointHealth {
		<-ctx.Done()
		// Report late even after the round gave up.
		time.Sleep(50 * time.Millisecond)
		return EndpointHealth{Endpoint: ep, Alive: true}
	})
	s := NewSelector(testRegistry(t, "https://a", "https://b"), prober, SelectorConfig{
		TTL:          time.Minute,
		RoundTimeout: 100 * time.Millisecond,
	})

	start := time.Now()
	got := s.Select(context.Background(), Devnet)
	elapsed := time.Since(start)

	if got.URL != "https://a" {
		t.Errorf("expected fallback to first candidate, got %q", got.URL)
	}
	if elapsed > time.Second {
		t.Errorf("expected select bounded by round timeout, took %v", elapsed)
	}
}

func TestSelector_CallerCancelReturnsDefault(t *testing.T) {
	prober := &scriptedProber{
		latencies: map[string]time.Duration{"https://b": time.Millisecond},
		delay:     300 * time.Millisecond,
	}
	s := NewSelector(testRegistry(t, "https://a", "https://b"), prober, SelectorConfig{TTL: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if got := s.Select(ctx, Devnet); got.URL != "https://a" {
		t.Errorf("expected default for departed caller, got %q", got.URL)
	}

	// The detached round still completes and populates the cache.
	time.Sleep(500 * time.Millisecond)
	sel, ok := s.Current(Devnet)
	if !ok || sel.Endpoint.URL != "https://b" {
		t.Errorf("expected round to finish and cache https://b, got %+v ok=%v", sel, ok)
	}
}

func TestSelector_RefreshForcesRound(t *testing.T) {
	prober := &scriptedProber{latencies: map[string]time.Duration{"https://a": time.Millisecond}}
	s := NewSelector(testRegistry(t, "https://a"), prober, SelectorConfig{TTL: time.Hour})

	s.Select(context.Background(), Devnet)
	sel := s.Refresh(context.Background(), Devnet)

	if prober.Calls() != 2 {
		t.Errorf("expected refresh to probe despite valid cache, got %d probes", prober.Calls())
	}
	if sel.Fallback || sel.Endpoint.URL != "https://a" || len(sel.Health) != 1 {
		t.Errorf("unexpected selection %+v", sel)
	}
}

func TestSelector_UnknownSegment(t *testing.T) {
	prober := &scriptedProber{}
	s := NewSelector(testRegistry(t, "https://a"), prober, SelectorConfig{})

	if got := s.Select(context.Background(), "localnet"); !got.IsZero() {
		t.Errorf("expected zero endpoint, got %+v", got)
	}
	if prober.Calls() != 0 {
		t.Errorf("expected no probes, got %d", prober.Calls())
	}
}

func TestPickBest(t *testing.T) {
	tests := []struct {
		name    string
		results []EndpointHealth
		want    int
	}{
		{name: "empty", results: nil, want: -1},
		{name: "all dead", results: []EndpointHealth{{}, {}}, want: -1},
		{
			name: "lowest wins",
			results: []EndpointHealth{
				{Alive: true, Latency: 3},
				{Alive: true, Latency: 1},
			},
			want: 1,
		},
		{
			name: "dead with zero latency ignored",
			results: []EndpointHealth{
				{Alive: false},
				{Alive: true, Latency: 7},
			},
			want: 1,
		},
		{
			name: "tie keeps first",
			results: []EndpointHealth{
				{Alive: true, Latency: 2},
				{Alive: true, Latency: 2},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickBest(tt.results); got != tt.want {
				t.Errorf("pickBest() = %d, want %d", got, tt.want)
			}
		})
	}
}
