package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/providers"
	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/logging"
)

// DefaultForwardTimeout bounds a forwarded call when none is configured.
const DefaultForwardTimeout = 10 * time.Second

// Route labels passed to a ForwardObserver.
const (
	RouteFixed   = "fixed"
	RouteGeneric = "generic"
)

// ForwardObserver receives the outcome of every forwarded call.
type ForwardObserver interface {
	ObserveForward(route, segment, outcome string, duration time.Duration)
}

// ForwarderOption customizes a Forwarder.
type ForwarderOption func(*Forwarder)

// WithForwardObserver registers an observer for forwarded calls.
func WithForwardObserver(o ForwardObserver) ForwarderOption {
	return func(f *Forwarder) { f.observer = o }
}

// Forwarder relays JSON-RPC calls to upstream nodes. Fixed-network calls
// resolve their node through the selector; generic calls name it.
// Successful bodies are returned byte-for-byte after checking that they are
// a JSON-RPC envelope.
type Forwarder struct {
	client   *providers.Client
	selector *routing.Selector
	timeout  time.Duration
	observer ForwardObserver
	logger   *slog.Logger
}

// NewForwarder creates a forwarder. A zero timeout uses DefaultForwardTimeout.
func NewForwarder(client *providers.Client, selector *routing.Selector, timeout time.Duration, opts ...ForwarderOption) *Forwarder {
	if timeout <= 0 {
		timeout = DefaultForwardTimeout
	}
	f := &Forwarder{
		client:   client,
		selector: selector,
		timeout:  timeout,
		logger:   slog.Default().With("component", "rpc-proxy"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Timeout returns the per-call bound.
func (f *Forwarder) Timeout() time.Duration {
	return f.timeout
}

// Forward relays req to the selected node of segment. Endpoint selection
// and the upstream call share one timeout, so a probe round on a cold cache
// eats into the call's budget instead of extending it. When the node cannot
// be reached or times out, the segment's cached selection is dropped so the
// next call re-probes.
func (f *Forwarder) Forward(ctx context.Context, segment routing.Segment, req *providers.Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	endpoint := f.selector.Select(ctx, segment)
	if endpoint.IsZero() {
		return nil, &routing.UnknownSegmentError{Name: string(segment)}
	}

	body, err := f.forward(ctx, RouteFixed, string(segment), endpoint.URL, req)
	if err != nil && shouldInvalidate(err) {
		f.selector.Invalidate(segment)
		f.logger.WarnContext(ctx, "dropping cached endpoint after failure",
			"segment", segment,
			"endpoint", logging.RedactURL(endpoint.URL),
			"error", err,
		)
	}
	return body, err
}

// ForwardTo relays req to endpoint.
func (f *Forwarder) ForwardTo(ctx context.Context, endpoint string, req *providers.Request) ([]byte, error) {
	return f.forward(ctx, RouteGeneric, "", endpoint, req)
}

func (f *Forwarder) forward(ctx context.Context, route, segment, endpoint string, req *providers.Request) ([]byte, error) {
	start := time.Now()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Under Forward the caller's deadline is already shorter; the nested
	// bound keeps the earlier of the two.
	body, err := f.client.PostWithTimeout(ctx, endpoint, payload, f.timeout)
	if err == nil {
		// Only the envelope shape is checked. Result contents are opaque.
		_, err = providers.DecodeResponse(endpoint, body)
	}

	duration := time.Since(start)
	if f.observer != nil {
		f.observer.ObserveForward(route, segment, Outcome(err), duration)
	}

	if err != nil {
		f.logger.DebugContext(ctx, "forward failed",
			"route", route,
			"method", req.Method,
			"outcome", Outcome(err),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, err
	}
	return body, nil
}

// Outcome labels err for metrics.
func Outcome(err error) string {
	var (
		upstreamErr  *providers.UpstreamError
		transportErr *providers.TransportError
		parseErr     *providers.ParseError
	)
	switch {
	case err == nil:
		return "success"
	case providers.IsTimeout(err):
		return "timeout"
	case errors.As(err, &upstreamErr):
		return "upstream_error"
	case errors.As(err, &transportErr):
		return "transport_error"
	case errors.As(err, &parseErr):
		return "parse_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "error"
}

func shouldInvalidate(err error) bool {
	var transportErr *providers.TransportError
	return providers.IsTimeout(err) || errors.As(err, &transportErr)
}
