// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server installs, outermost first:
//
//	Recovery, RequestID, Logging, SecurityHeaders, CORS, CSRFCookie
//
// and, on the /api route group only:
//
//	Admission
//
// # Admission
//
// AdmissionMiddleware derives a client key from the request (first
// X-Forwarded-For hop, X-Real-IP, then the socket address; "unknown" when
// none is usable) and asks the admission controller for a decision. Every
// API response carries:
//
//	X-RateLimit-Limit: 100
//	X-RateLimit-Remaining: 42
//	X-RateLimit-Reset: 1735733700
//
// A rejected request is answered without reaching the handler:
//
//	HTTP/1.1 429 Too Many Requests
//	Retry-After: 900
//
//	{"error":"Too many requests, please try again later.","kind":"rate_limited","retry_after":900}
//
// # Request ID
//
// RequestIDMiddleware keeps a well-formed client X-Request-ID or generates a
// UUID v4. The ID is stored with logging.WithRequestID so every log line
// written with the request context carries it.
//
// # Browser hardening
//
// SecurityHeadersMiddleware writes CSP, frame, sniffing, referrer and
// permissions headers. CSRFCookieMiddleware issues a csrf-token cookie to
// clients without one; tokens are not verified on inbound requests.
package middleware
