package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxResponseBytes caps a buffered upstream response.
	DefaultMaxResponseBytes = 64 << 20

	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 16
	defaultIdleConnTimeout     = 90 * time.Second
)

// ClientConfig contains transport settings for a Client.
type ClientConfig struct {
	// Name identifies the client in logs and spans (e.g., "rpc-proxy", "prober")
	Name string

	// Timeout bounds each call. Zero leaves the bound to the caller's context.
	Timeout time.Duration

	// MaxIdleConns is the pool size across all hosts.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the pool size per upstream node.
	MaxIdleConnsPerHost int

	// IdleConnTimeout closes pooled connections after this idle period.
	IdleConnTimeout time.Duration

	// MaxResponseBytes caps the buffered response size.
	MaxResponseBytes int64

	// Transport overrides the pooled transport (tests).
	Transport http.RoundTripper
}

// Client posts JSON-RPC payloads to upstream nodes. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	config ClientConfig
	client *http.Client
	tracer trace.Tracer
	logger *slog.Logger
}

// NewClient creates a client with a pooled HTTP transport.
func NewClient(config ClientConfig) *Client {
	if config.Name == "" {
		config.Name = "rpc"
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = defaultMaxIdleConns
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = defaultIdleConnTimeout
	}
	if config.MaxResponseBytes == 0 {
		config.MaxResponseBytes = DefaultMaxResponseBytes
	}

	transport := config.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        config.MaxIdleConns,
			MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
			IdleConnTimeout:     config.IdleConnTimeout,
			TLSHandshakeTimeout: 5 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}

	return &Client{
		config: config,
		// No client-level timeout: every call is bounded through its context
		// so that expiry is reported as TimeoutError rather than a url.Error.
		client: &http.Client{Transport: transport},
		tracer: otel.Tracer("github.com/Herocku2/solana-token-creatorf/pkg/providers"),
		logger: slog.Default().With("component", config.Name),
	}
}

// Timeout returns the configured per-call bound.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// Post sends body to endpoint and returns the response body of a 2xx answer.
// The returned error is one of *UpstreamError, *TimeoutError,
// *TransportError, *ParseError, or wraps context.Canceled when the caller
// went away.
func (c *Client) Post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	return c.post(ctx, endpoint, body, c.config.Timeout)
}

// PostWithTimeout is Post with an explicit bound overriding the configured one.
func (c *Client) PostWithTimeout(ctx context.Context, endpoint string, body []byte, timeout time.Duration) ([]byte, error) {
	return c.post(ctx, endpoint, body, timeout)
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte, timeout time.Duration) ([]byte, error) {
	host := endpointHost(endpoint)

	ctx, span := c.tracer.Start(ctx, "rpc.post", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("rpc.client", c.config.Name),
		attribute.String("server.address", host),
	)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, c.fail(span, &TransportError{Endpoint: host, Cause: fmt.Errorf("failed to create request: %w", err)})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.fail(span, c.classify(ctx, host, timeout, err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes+1))
	if err != nil {
		return nil, c.fail(span, c.classify(ctx, host, timeout, err))
	}
	if int64(len(data)) > c.config.MaxResponseBytes {
		return nil, c.fail(span, &ParseError{
			Endpoint: host,
			Cause:    fmt.Errorf("response exceeds %d bytes", c.config.MaxResponseBytes),
		})
	}

	c.logger.Debug("upstream response",
		"endpoint", host,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(span, &UpstreamError{
			Endpoint:   host,
			StatusCode: resp.StatusCode,
			Body:       data,
		})
	}

	return data, nil
}

// Call marshals req, posts it and decodes the response envelope. The raw
// body is returned alongside so callers can relay it unmodified.
func (c *Client) Call(ctx context.Context, endpoint string, req *Request) (*Response, []byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := c.Post(ctx, endpoint, payload)
	if err != nil {
		return nil, nil, err
	}

	resp, err := DecodeResponse(endpoint, body)
	if err != nil {
		return nil, body, err
	}
	return resp, body, nil
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

// classify maps a transport failure to the typed errors of this package.
// A deadline on the call context, whether set by this client or by the
// caller, is a timeout; cancellation is the caller going away.
func (c *Client) classify(ctx context.Context, host string, timeout time.Duration, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return &TimeoutError{Endpoint: host, Timeout: timeout, Cause: ctxErr}
		}
		return fmt.Errorf("upstream %q request aborted: %w", host, context.Canceled)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Endpoint: host, Timeout: timeout, Cause: err}
	}

	return &TransportError{Endpoint: host, Cause: err}
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
