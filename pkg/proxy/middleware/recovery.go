package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Herocku2/solana-token-creatorf/pkg/proxy"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/types"
)

const panicMessage = "An internal error occurred. Please try again later."

// RecoveryMiddleware turns a handler panic into a 500 internal_error
// response. The panic value and stack go to the log under the request ID;
// the client sees only the generic message. http.ErrAbortHandler is
// re-raised so net/http can drop the connection.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}

			slog.ErrorContext(r.Context(), "handler panicked",
				"component", "server",
				"request_id", GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"panic", fmt.Sprint(v),
				"stack", string(debug.Stack()),
			)
			_ = proxy.WriteErrorResponse(w, r, types.NewInternalError(panicMessage))
		}()

		next.ServeHTTP(w, r)
	})
}
