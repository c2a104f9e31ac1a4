package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
)

// CSRFTokenHeader echoes a newly issued CSRF token.
const CSRFTokenHeader = "X-CSRF-Token"

// SecurityHeadersMiddleware writes the browser hardening headers on every
// response.
func SecurityHeadersMiddleware(cfg config.HeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if cfg.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-XSS-Protection", "1; mode=block")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if cfg.PermissionsPolicy != "" {
				h.Set("Permissions-Policy", cfg.PermissionsPolicy)
			}
			if cfg.PoweredBy != "" {
				h.Set("X-Powered-By", cfg.PoweredBy)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFCookieMiddleware issues a random token cookie to clients that do not
// carry one and echoes it in X-CSRF-Token. Inbound tokens are not checked.
func CSRFCookieMiddleware(cfg config.CSRFConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := r.Cookie(cfg.CookieName); err != nil {
				token, err := newCSRFToken()
				if err != nil {
					slog.WarnContext(r.Context(), "failed to generate csrf token", "error", err)
				} else {
					http.SetCookie(w, &http.Cookie{
						Name:     cfg.CookieName,
						Value:    token,
						Path:     "/",
						HttpOnly: true,
						Secure:   cfg.Secure,
						SameSite: http.SameSiteStrictMode,
					})
					w.Header().Set(CSRFTokenHeader, token)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// newCSRFToken returns 16 random bytes as 32 hex characters.
func newCSRFToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
