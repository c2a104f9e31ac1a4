package limits

import (
	"errors"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/limits/ratelimit"
)

// UnknownClientKey is the shared bucket for requests whose client cannot be
// identified, such as traffic behind a proxy that hides the address.
const UnknownClientKey = "unknown"

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// ErrUnknownBackend is returned for an unsupported store backend name.
var ErrUnknownBackend = errors.New("unknown quota store backend")

// Decision is the outcome of admitting one request.
// It carries what is needed to populate X-RateLimit-* and Retry-After headers.
type Decision struct {
	// ClientKey is the key the request was counted against, after the
	// sentinel substitution.
	ClientKey string

	// Allowed indicates if the request is within quota.
	Allowed bool

	// Limit is the maximum number of requests per window.
	Limit int

	// Remaining is the number of requests still admitted in the window.
	Remaining int

	// ResetAt is when the client's window ends.
	ResetAt time.Time

	// RetryAfter is how long a rejected client should wait.
	RetryAfter time.Duration

	// Degraded is set when the durable store failed and the decision was
	// taken against the in-memory fallback.
	Degraded bool
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds.
func (d Decision) RetryAfterSeconds() int {
	return ratelimit.RetryAfterSeconds(d.RetryAfter)
}

func decisionFrom(key string, res ratelimit.Result) Decision {
	return Decision{
		ClientKey:  key,
		Allowed:    res.Allowed,
		Limit:      res.Limit,
		Remaining:  res.Remaining,
		ResetAt:    res.ResetAt,
		RetryAfter: res.RetryAfter,
	}
}
