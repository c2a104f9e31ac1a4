package ratelimit

import (
	"math"
	"time"
)

// Expired reports whether a window opened at start has run out at now.
// A window is still current at exactly start+window.
func Expired(start, now time.Time, window time.Duration) bool {
	return now.Sub(start) > window
}

// Advance applies one request to w: the window restarts at now if it has
// expired (or was never opened), then the count is incremented.
func (p Policy) Advance(w Window, now time.Time) Window {
	if w.Start.IsZero() || Expired(w.Start, now, p.Window) {
		w = Window{Start: now}
	}
	w.Count++
	return w
}

// Evaluate computes the decision for a window that already includes the
// current request.
func (p Policy) Evaluate(w Window, now time.Time) Result {
	resetAt := w.Start.Add(p.Window)
	remaining := p.Limit - w.Count
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:   w.Count <= p.Limit,
		Limit:     p.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !res.Allowed {
		res.RetryAfter = resetAt.Sub(now)
		if res.RetryAfter < 0 {
			res.RetryAfter = 0
		}
	}
	return res
}

// RetryAfterSeconds rounds d up to whole seconds for the Retry-After header.
func RetryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
