package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/limits"
	"github.com/Herocku2/solana-token-creatorf/pkg/limits/ratelimit"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/logging"
)

func newAdmissionHandler(t *testing.T, limit int, now func() time.Time) (http.Handler, *int) {
	t.Helper()

	controller := limits.NewController(limits.Config{
		Policy: ratelimit.Policy{Window: 15 * time.Minute, Limit: limit},
	})
	t.Cleanup(func() { _ = controller.Close() })

	served := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		w.WriteHeader(http.StatusOK)
	})

	mw := AdmissionMiddleware(controller, AdmissionConfig{TrustForwardedHeaders: true, Now: now})
	return mw(next), &served
}

func TestAdmissionMiddleware_101Requests(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	handler, served := newAdmissionHandler(t, 100, func() time.Time { return start })

	for i := 1; i <= 101; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/rpc/devnet", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if i <= 100 {
			if w.Code != http.StatusOK {
				t.Fatalf("request %d: expected 200, got %d", i, w.Code)
			}
			if got := w.Header().Get(HeaderRateLimitRemaining); got != strconv.Itoa(100-i) {
				t.Fatalf("request %d: expected remaining %d, got %s", i, 100-i, got)
			}
			continue
		}

		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("request 101: expected 429, got %d", w.Code)
		}
		if got := w.Header().Get(HeaderRetryAfter); got != "900" {
			t.Errorf("expected Retry-After 900, got %q", got)
		}
		if got := w.Header().Get(HeaderRateLimitLimit); got != "100" {
			t.Errorf("expected limit 100, got %q", got)
		}
		wantReset := strconv.FormatInt(start.Add(15*time.Minute).Unix(), 10)
		if got := w.Header().Get(HeaderRateLimitReset); got != wantReset {
			t.Errorf("expected reset %s, got %s", wantReset, got)
		}

		var body struct {
			Error      string `json:"error"`
			RetryAfter int    `json:"retry_after"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Error != "Too many requests, please try again later." || body.RetryAfter != 900 {
			t.Errorf("unexpected body %+v", body)
		}
	}

	if *served != 100 {
		t.Errorf("expected 100 requests to reach the handler, got %d", *served)
	}
}

func TestAdmissionMiddleware_KeysAreIndependent(t *testing.T) {
	now := time.Now()
	handler, _ := newAdmissionHandler(t, 1, func() time.Time { return now })

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/upload", nil)
		req.Header.Set("X-Real-IP", ip)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("client %s: expected 200, got %d", ip, w.Code)
		}
	}
}

type recordingAdmitter struct {
	mu   sync.Mutex
	keys []string
}

func (a *recordingAdmitter) Admit(ctx context.Context, key string, now time.Time) limits.Decision {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	return limits.Decision{ClientKey: key, Allowed: true, Limit: 100, Remaining: 99, ResetAt: now.Add(time.Minute)}
}

func TestAdmissionMiddleware_ClientKeyInContext(t *testing.T) {
	admitter := &recordingAdmitter{}
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.GetClientKey(r.Context())
	})

	handler := AdmissionMiddleware(admitter, AdmissionConfig{})(next)
	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	req.RemoteAddr = "192.0.2.7:51000"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "192.0.2.7" || admitter.keys[0] != "192.0.2.7" {
		t.Errorf("expected client key 192.0.2.7, got context %q admitter %v", seen, admitter.keys)
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		trust      bool
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{name: "first forwarded hop", trust: true, xff: "1.2.3.4, 10.0.0.1", remoteAddr: "10.0.0.9:80", want: "1.2.3.4"},
		{name: "real ip", trust: true, realIP: "5.6.7.8", remoteAddr: "10.0.0.9:80", want: "5.6.7.8"},
		{name: "forwarded ignored when untrusted", trust: false, xff: "1.2.3.4", remoteAddr: "10.0.0.9:80", want: "10.0.0.9"},
		{name: "blank forwarded falls through", trust: true, xff: " ,10.0.0.1", remoteAddr: "10.0.0.9:80", want: "10.0.0.9"},
		{name: "ipv6 remote", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "remote without port", remoteAddr: "10.0.0.9", want: "10.0.0.9"},
		{name: "nothing known", remoteAddr: "", want: limits.UnknownClientKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			if got := ClientKey(req, tt.trust); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
