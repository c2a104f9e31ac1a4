package limits

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
	"github.com/Herocku2/solana-token-creatorf/pkg/limits/ratelimit"
	"github.com/Herocku2/solana-token-creatorf/pkg/limits/storage"
)

// Controller decides whether a client's request is admitted under a
// fixed-window quota. It never fails: an unidentifiable client is counted
// against UnknownClientKey, and a failing durable store is replaced by an
// in-memory fallback for that call.
//
// # Example
//
//	ctrl := limits.NewController(limits.Config{
//	    Policy: ratelimit.Policy{Window: 15 * time.Minute, Limit: 100},
//	})
//
//	d := ctrl.Admit(ctx, clientIP, time.Now())
//	if !d.Allowed {
//	    // 429, Retry-After: d.RetryAfterSeconds()
//	}
type Controller struct {
	mu     sync.RWMutex
	policy ratelimit.Policy

	store    storage.Store
	fallback *storage.MemoryStore
	backend  string

	sweepInterval time.Duration
	lastSweep     atomic.Int64

	metrics *Metrics
	logger  *slog.Logger
}

// Config contains configuration for the admission controller.
type Config struct {
	// Policy is the fixed-window quota.
	Policy ratelimit.Policy

	// SweepInterval is the minimum time between opportunistic sweeps run
	// from Admit. Zero disables them.
	SweepInterval time.Duration

	// Store holds quota records. Defaults to a MemoryStore.
	Store storage.Store

	// Metrics is optional.
	Metrics *Metrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// PolicyFromConfig converts the admission config section to a policy.
func PolicyFromConfig(cfg config.AdmissionConfig) ratelimit.Policy {
	return ratelimit.Policy{Window: cfg.Window, Limit: cfg.MaxRequests}
}

// NewController creates an admission controller.
func NewController(cfg Config) *Controller {
	if cfg.Policy.Window <= 0 {
		cfg.Policy.Window = config.DefaultAdmissionWindow
	}
	if cfg.Policy.Limit <= 0 {
		cfg.Policy.Limit = config.DefaultAdmissionMaxRequests
	}
	if cfg.Store == nil {
		cfg.Store = storage.NewMemoryStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		policy:        cfg.Policy,
		store:         cfg.Store,
		fallback:      storage.NewMemoryStore(),
		backend:       backendName(cfg.Store),
		sweepInterval: cfg.SweepInterval,
		metrics:       cfg.Metrics,
		logger:        logger.With("component", "admission"),
	}
}

// Policy returns the current policy.
func (c *Controller) Policy() ratelimit.Policy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policy
}

// UpdatePolicy replaces the policy. Existing windows keep their start time;
// the new limit and window length apply from the next request.
func (c *Controller) UpdatePolicy(p ratelimit.Policy) {
	if p.Window <= 0 || p.Limit <= 0 {
		c.logger.Warn("ignoring invalid admission policy", "window", p.Window, "limit", p.Limit)
		return
	}

	c.mu.Lock()
	old := c.policy
	c.policy = p
	c.mu.Unlock()

	if old != p {
		c.logger.Info("admission policy updated",
			"window", p.Window.String(),
			"limit", p.Limit,
		)
	}
}

// Admit counts one request from clientKey at now and returns the decision.
// An empty key is counted against UnknownClientKey.
func (c *Controller) Admit(ctx context.Context, clientKey string, now time.Time) Decision {
	start := time.Now()
	if clientKey == "" {
		clientKey = UnknownClientKey
	}
	policy := c.Policy()

	backend := c.backend
	degraded := false
	rec, err := c.store.Increment(ctx, clientKey, now, policy.Window)
	if err != nil {
		c.logger.Warn("quota store failed, using in-memory fallback",
			"client", clientKey,
			"error", err,
		)
		if c.metrics != nil {
			c.metrics.RecordStoreError()
		}
		// The in-memory store never fails for a non-empty key.
		rec, _ = c.fallback.Increment(ctx, clientKey, now, policy.Window)
		backend = BackendMemory
		degraded = true
	}

	res := policy.Evaluate(ratelimit.Window{Start: rec.WindowStart, Count: rec.Count}, now)
	d := decisionFrom(clientKey, res)
	d.Degraded = degraded

	if c.metrics != nil {
		c.metrics.RecordDecision(d.Allowed)
		c.metrics.RecordCheckDuration(backend, time.Since(start).Seconds())
	}
	if !d.Allowed && rec.Count == policy.Limit+1 {
		c.logger.Info("client exceeded quota",
			"client", clientKey,
			"limit", policy.Limit,
			"reset_at", d.ResetAt,
		)
	}

	c.maybeSweep(ctx, now)
	return d
}

// maybeSweep runs a sweep if the sweep interval has elapsed since the last
// one. Only the caller that wins the compare-and-swap pays for it.
func (c *Controller) maybeSweep(ctx context.Context, now time.Time) {
	if c.sweepInterval <= 0 {
		return
	}
	last := c.lastSweep.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < c.sweepInterval {
		return
	}
	if !c.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	if last == 0 {
		// First request only arms the timer.
		return
	}
	if _, err := c.Sweep(ctx, now); err != nil {
		c.logger.Debug("opportunistic sweep failed", "error", err)
	}
}

// Sweep removes quota records whose window expired before now, from both
// the configured store and the fallback. It returns the number removed.
func (c *Controller) Sweep(ctx context.Context, now time.Time) (int, error) {
	window := c.Policy().Window

	fromFallback, _ := c.fallback.Sweep(ctx, now, window)
	removed, err := c.store.Sweep(ctx, now, window)
	removed += fromFallback
	if err != nil {
		return removed, err
	}

	remaining, err := c.store.Len(ctx)
	if err != nil {
		return removed, err
	}
	if c.metrics != nil {
		c.metrics.RecordSweep(removed, remaining)
	}
	if removed > 0 {
		c.logger.Debug("swept expired quota records", "removed", removed, "remaining", remaining)
	}
	return removed, nil
}

// Len returns the number of clients tracked by the configured store.
func (c *Controller) Len(ctx context.Context) (int, error) {
	return c.store.Len(ctx)
}

// Close releases the store.
func (c *Controller) Close() error {
	c.fallback.Close()
	return c.store.Close()
}
