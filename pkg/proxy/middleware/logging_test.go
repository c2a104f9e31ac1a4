package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/logging"
)

type requestEvent struct {
	method, route string
	status        int
}

type recordingRequestObserver struct {
	events []requestEvent
}

func (o *recordingRequestObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	o.events = append(o.events, requestEvent{method, route, status})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	prev := slog.Default()
	slog.SetDefault(logger)
	defer slog.SetDefault(prev)

	obs := &recordingRequestObserver{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("{}"))
	})
	pattern := func(*http.Request) string { return "/api/rpc/{segment}" }
	wrapped := RequestIDMiddleware(LoggingMiddleware(obs, pattern)(handler))

	req := httptest.NewRequest(http.MethodPost, "/api/rpc/devnet", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	if entry["level"] != "ERROR" {
		t.Errorf("expected ERROR level for 502, got %v", entry["level"])
	}
	if entry["request_id"] != "req-7" || entry["status"] != float64(502) || entry["bytes"] != float64(2) {
		t.Errorf("unexpected log entry %v", entry)
	}

	if len(obs.events) != 1 || obs.events[0] != (requestEvent{"POST", "/api/rpc/{segment}", 502}) {
		t.Errorf("unexpected observed events %v", obs.events)
	}
}
