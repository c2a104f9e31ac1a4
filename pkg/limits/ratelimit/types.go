package ratelimit

import "time"

// Policy is a fixed-window quota: at most Limit requests per client in
// each Window.
type Policy struct {
	// Window is the fixed window length (e.g., 15 minutes).
	Window time.Duration

	// Limit is the number of requests admitted per window.
	Limit int
}

// Window is the counter state of one client.
type Window struct {
	// Start is when the current window opened.
	Start time.Time

	// Count is the number of requests seen in the current window,
	// including rejected ones.
	Count int
}

// Result is the outcome of evaluating a window against a policy.
// It carries what is needed to populate X-RateLimit-* headers.
type Result struct {
	// Allowed indicates if the request is within quota.
	Allowed bool

	// Limit is the configured request limit.
	Limit int

	// Remaining is the number of requests still admitted in this window.
	Remaining int

	// ResetAt is when the window ends.
	ResetAt time.Time

	// RetryAfter is how long a rejected client should wait. Zero when allowed.
	RetryAfter time.Duration
}
