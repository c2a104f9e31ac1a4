package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Herocku2/solana-token-creatorf/internal/rpcmock"
	"github.com/Herocku2/solana-token-creatorf/pkg/config"
	"github.com/Herocku2/solana-token-creatorf/pkg/limits"
	"github.com/Herocku2/solana-token-creatorf/pkg/providers"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/types"
	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/health"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/metrics"
	"github.com/Herocku2/solana-token-creatorf/pkg/upload"
)

type testEnv struct {
	cfg      *config.Config
	server   *Server
	http     *httptest.Server
	upstream *rpcmock.MockServer
	uploads  int32
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	env := &testEnv{upstream: rpcmock.NewHealthyServer()}
	t.Cleanup(env.upstream.Close)

	cfg := config.Default()
	cfg.Networks.Devnet.Candidates = []string{env.upstream.URL()}
	cfg.Networks.Mainnet.Candidates = []string{env.upstream.URL()}
	if mutate != nil {
		mutate(cfg)
	}
	env.cfg = cfg

	collector := metrics.NewCollector(cfg.Telemetry.Metrics, prometheus.NewRegistry())

	registry, err := routing.RegistryFromConfig(cfg.Networks)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	client := providers.NewClient(providers.ClientConfig{Name: "test"})
	prober := routing.NewHTTPProber(client, cfg.Selector.ProbeMethod, cfg.Selector.ProbeTimeout)
	selector := routing.NewSelector(registry, prober,
		routing.SelectorConfig{TTL: cfg.Selector.CacheTTL, RoundTimeout: time.Second},
		routing.WithObserver(collector),
	)
	forwarder := proxy.NewForwarder(client, selector, cfg.RPC.RequestTimeout, proxy.WithForwardObserver(collector))

	controller := limits.NewController(limits.Config{
		Policy:  limits.PolicyFromConfig(cfg.Admission),
		Metrics: limits.NewMetrics(cfg.Telemetry.Metrics.Namespace, collector.Registry()),
	})

	relay := upload.NewRelay(upload.SettingsFromConfig(cfg.Storage),
		upload.BackendFunc(func(ctx context.Context, a upload.Artifact) (string, error) {
			atomic.AddInt32(&env.uploads, 1)
			return "bafytestcid", nil
		}),
		upload.WithObserver(collector),
	)

	checker := health.New(time.Second)
	checker.RegisterCheck("config", health.ConfigCheck(func() *config.Config { return cfg }))
	checker.RegisterSelectionChecks(selector)

	srv, err := NewServer(cfg, Dependencies{
		Forwarder: forwarder,
		Selection: selector,
		Admitter:  controller,
		Uploader:  relay,
		Checker:   checker,
		Version:   health.NewVersionInfo("test", "abc123", ""),
		Metrics:   collector,
	})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	env.server = srv
	env.http = httptest.NewServer(srv.Handler())
	t.Cleanup(env.http.Close)

	return env
}

func (e *testEnv) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(e.http.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.http.URL + path)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(data)
}

func TestServer_RPCRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/api/rpc/devnet", "/api/rpc/mainnet-beta", "/api/proxy-solana"} {
		t.Run(path, func(t *testing.T) {
			resp := env.post(t, path, `{"method":"getHealth","params":[]}`)

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected status 200, got %d", resp.StatusCode)
			}
			if body := readBody(t, resp); body != `{"jsonrpc":"2.0","id":1,"result":"ok"}` {
				t.Errorf("expected upstream body relayed unmodified, got %s", body)
			}
			if got := resp.Header.Get("X-RateLimit-Limit"); got != "100" {
				t.Errorf("expected X-RateLimit-Limit 100, got %q", got)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}
		})
	}
}

func TestServer_GenericRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	body := `{"endpoint":"` + env.upstream.URL() + `","method":"getSlot"}`

	for _, path := range []string{"/api/rpc/generic", "/api/solana-rpc"} {
		resp := env.post(t, path, body)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, resp.StatusCode)
		}
	}
	if got := env.upstream.MethodCount("getSlot"); got != 2 {
		t.Errorf("expected 2 getSlot calls, got %d", got)
	}
}

func TestServer_GenericDisabled(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.RPC.Generic.Disabled = true
	})

	resp := env.post(t, "/api/rpc/generic", `{"endpoint":"https://example.com","method":"getSlot"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected generic to be treated as unknown segment, got %d", resp.StatusCode)
	}

	resp = env.post(t, "/api/solana-rpc", `{}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for disabled legacy route, got %d", resp.StatusCode)
	}
}

func TestServer_AdmissionOnlyOnAPI(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Admission.MaxRequests = 2
	})

	for i := 0; i < 2; i++ {
		if resp := env.post(t, "/api/rpc/devnet", `{"method":"getHealth"}`); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}

	resp := env.post(t, "/api/rpc/devnet", `{"method":"getHealth"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	var errResp types.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if errResp.Error != "Too many requests, please try again later." || errResp.RetryAfter <= 0 {
		t.Errorf("unexpected rate limit body: %+v", errResp)
	}

	for i := 0; i < 5; i++ {
		if resp := env.get(t, "/health"); resp.StatusCode != http.StatusOK {
			t.Errorf("expected /health outside admission, got %d", resp.StatusCode)
		}
	}
}

func TestServer_AdmissionDisabled(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Admission.Disabled = true
		cfg.Admission.MaxRequests = 1
	})

	for i := 0; i < 3; i++ {
		resp := env.post(t, "/api/rpc/devnet", `{"method":"getHealth"}`)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200 without admission, got %d", resp.StatusCode)
		}
		if resp.Header.Get("X-RateLimit-Limit") != "" {
			t.Error("expected no rate limit headers without admission")
		}
	}
}

func TestServer_SecurityHeadersAndCSRF(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.get(t, "/health")

	expected := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"X-Powered-By":           config.DefaultPoweredBy,
	}
	for header, value := range expected {
		if got := resp.Header.Get(header); got != value {
			t.Errorf("expected %s %q, got %q", header, value, got)
		}
	}

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == env.cfg.Proxy.CSRF.CookieName {
			found = true
			if len(c.Value) != 32 {
				t.Errorf("expected 32 hex char token, got %q", c.Value)
			}
		}
	}
	if !found {
		t.Error("expected CSRF cookie to be issued")
	}
}

func TestServer_Upload(t *testing.T) {
	t.Run("missing storage configuration", func(t *testing.T) {
		env := newTestEnv(t, nil)

		resp := postMultipart(t, env.http.URL+"/api/upload", map[string]string{"type": "json", "jsonData": `{"a":1}`})
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", resp.StatusCode)
		}
		if body := readBody(t, resp); !strings.Contains(body, types.KindConfigurationError) {
			t.Errorf("expected configuration_error, got %s", body)
		}
		if got := atomic.LoadInt32(&env.uploads); got != 0 {
			t.Errorf("expected no backend calls, got %d", got)
		}
	})

	t.Run("configured", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *config.Config) {
			cfg.Storage.AccessKey = "key"
			cfg.Storage.SecretKey = "secret"
			cfg.Storage.Bucket = "bucket"
			cfg.Storage.Gateway = "https://gateway.example.com/ipfs"
		})

		resp := postMultipart(t, env.http.URL+"/api/upload", map[string]string{"type": "json", "jsonData": `{"a":1}`, "name": "meta.json"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
		}
		var result types.UploadResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if result.URL != "https://gateway.example.com/ipfs/bafytestcid" {
			t.Errorf("expected gateway URL, got %q", result.URL)
		}
	})
}

func postMultipart(t *testing.T, url string, fields map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_OperationalRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.get(t, "/ready")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected cold cache to be ready, got %d", resp.StatusCode)
	}
	var status health.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if status.Status != health.StatusDegraded {
		t.Errorf("expected degraded before first probe, got %q", status.Status)
	}

	env.post(t, "/api/rpc/devnet", `{"method":"getHealth"}`)

	resp = env.get(t, "/api/endpoints/devnet")
	if body := readBody(t, resp); !strings.Contains(body, `"cached":true`) {
		t.Errorf("expected cached selection after a request, got %s", body)
	}

	resp = env.get(t, env.cfg.Telemetry.Metrics.Path)
	body := readBody(t, resp)
	if !strings.Contains(body, `route="/api/rpc/{segment}"`) {
		t.Errorf("expected route pattern label in metrics, got %s", body)
	}

	resp = env.get(t, "/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("expected JSON 404, got %q", ct)
	}
}

func TestNewServer_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	deps := env.server.deps

	tests := []struct {
		name   string
		mutate func(*config.Config, *Dependencies)
	}{
		{name: "missing forwarder", mutate: func(_ *config.Config, d *Dependencies) { d.Forwarder = nil }},
		{name: "missing admitter", mutate: func(_ *config.Config, d *Dependencies) { d.Admitter = nil }},
		{name: "bad default segment", mutate: func(c *config.Config, _ *Dependencies) { c.RPC.DefaultSegment = "testnet2" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *env.cfg
			d := deps
			tt.mutate(&cfg, &d)

			if _, err := NewServer(&cfg, d); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestServer_StartShutdown(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Proxy.ListenAddress = "127.0.0.1:0"
		cfg.Proxy.ShutdownTimeout = time.Second
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for env.server.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !env.server.IsRunning() {
		t.Fatal("expected server to be running")
	}

	resp, err := http.Get("http://" + env.server.Addr() + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for shutdown")
	}
	if env.server.IsRunning() {
		t.Error("expected server stopped")
	}
}

func TestServer_StartTLS(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Proxy.ListenAddress = "127.0.0.1:0"
		cfg.Proxy.ShutdownTimeout = time.Second
	})

	// Borrow the certificate and a trusting client from httptest.
	certSource := httptest.NewTLSServer(http.NotFoundHandler())
	defer certSource.Close()
	env.server.deps.TLS = certSource.TLS.Clone()
	client := certSource.Client()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for env.server.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := client.Get("https://" + env.server.Addr() + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.TLS == nil {
		t.Error("expected a TLS connection")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for shutdown")
	}
}
