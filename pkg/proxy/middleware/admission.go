package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/limits"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/types"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/logging"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// Admitter decides whether a client may make another request.
type Admitter interface {
	Admit(ctx context.Context, clientKey string, now time.Time) limits.Decision
}

// AdmissionConfig configures AdmissionMiddleware.
type AdmissionConfig struct {
	// TrustForwardedHeaders derives the client key from X-Forwarded-For and
	// X-Real-IP.
	TrustForwardedHeaders bool

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// AdmissionMiddleware applies the per-client fixed-window quota. Every
// response carries X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset (unix seconds). Rejected requests are answered 429 with
// Retry-After and never reach next.
//
// Example usage:
//
//	api.Use(AdmissionMiddleware(controller, AdmissionConfig{TrustForwardedHeaders: true}))
func AdmissionMiddleware(admitter Admitter, cfg AdmissionConfig) func(http.Handler) http.Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r, cfg.TrustForwardedHeaders)
			ctx := logging.WithClientKey(r.Context(), key)
			r = r.WithContext(ctx)

			decision := admitter.Admit(ctx, key, now())
			setRateLimitHeaders(w, decision)

			if !decision.Allowed {
				retryAfter := max(1, decision.RetryAfterSeconds())
				w.Header().Set(HeaderRetryAfter, strconv.Itoa(retryAfter))
				_ = proxy.WriteErrorResponse(w, r, types.NewRateLimitedError(retryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, d limits.Decision) {
	h := w.Header()
	h.Set(HeaderRateLimitLimit, strconv.Itoa(d.Limit))
	h.Set(HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
	h.Set(HeaderRateLimitReset, strconv.FormatInt(d.ResetAt.Unix(), 10))
}

// ClientKey identifies the caller for admission. With trustForwarded it
// prefers the first X-Forwarded-For hop, then X-Real-IP. Otherwise, or when
// those are empty, the host of RemoteAddr is used. An unidentifiable caller
// gets limits.UnknownClientKey.
func ClientKey(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if key := strings.TrimSpace(first); key != "" {
				return key
			}
		}
		if key := strings.TrimSpace(r.Header.Get("X-Real-IP")); key != "" {
			return key
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host = strings.TrimSpace(host); host != "" {
		return host
	}
	return limits.UnknownClientKey
}
