package logging

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// SensitiveQueryParams are query parameters that carry RPC provider
// credentials (e.g., Helius "?api-key=").
var SensitiveQueryParams = []string{"api-key", "api_key", "apikey", "token", "access_token"}

// sensitiveKeys are attribute keys whose values are never logged.
var sensitiveKeys = map[string]bool{
	"access_key": true,
	"secret_key": true,
	"secret":     true,
	"password":   true,
}

// Redactor scrubs credentials from log attributes.
type Redactor struct {
	queryParam *regexp.Regexp
	userinfo   *regexp.Regexp
}

// NewRedactor creates a redactor for the default sensitive parameters.
func NewRedactor() *Redactor {
	names := make([]string, len(SensitiveQueryParams))
	for i, p := range SensitiveQueryParams {
		names[i] = regexp.QuoteMeta(p)
	}
	return &Redactor{
		queryParam: regexp.MustCompile(`(?i)([?&](?:` + strings.Join(names, "|") + `)=)[^&\s"'#]+`),
		userinfo:   regexp.MustCompile(`(https?://[^:/@\s]+:)[^@/\s]+@`),
	}
}

// RedactString replaces credential values embedded in s, such as URLs
// quoted inside error messages.
func (r *Redactor) RedactString(s string) string {
	if s == "" || (!strings.Contains(s, "=") && !strings.Contains(s, "@")) {
		return s
	}
	s = r.queryParam.ReplaceAllString(s, "${1}"+redacted)
	return r.userinfo.ReplaceAllString(s, "${1}"+redacted+"@")
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, redacted)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if v := a.Value.String(); v != "" {
			return slog.String(a.Key, r.RedactString(v))
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
	}
	return a
}

// RedactURL returns raw with credential query parameters and userinfo
// passwords replaced. Unparseable input is reduced to a fixed placeholder.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}

	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), redacted)
		}
	}

	if u.RawQuery != "" {
		q := u.Query()
		changed := false
		for key := range q {
			for _, p := range SensitiveQueryParams {
				if strings.EqualFold(key, p) {
					q.Set(key, redacted)
					changed = true
				}
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}

	return u.String()
}
