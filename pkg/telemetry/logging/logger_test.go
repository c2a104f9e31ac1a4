package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "json", config: Config{Level: "info", Format: "json"}},
		{name: "text", config: Config{Level: "debug", Format: "text"}},
		{name: "defaults", config: Config{}},
		{name: "invalid level", config: Config{Level: "trace"}, wantErr: true},
		{name: "invalid format", config: Config{Format: "console"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("expected logger")
			}
		})
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn to be written, got %q", buf.String())
	}
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Config{Writer: &buf})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithClientKey(ctx, "1.2.3.4")
	ctx = WithSegment(ctx, "devnet")
	logger.InfoContext(ctx, "forwarded")

	entry := decodeLine(t, &buf)
	for key, want := range map[string]string{"request_id": "req-1", "client": "1.2.3.4", "segment": "devnet"} {
		if entry[key] != want {
			t.Errorf("expected %s=%q, got %v", key, want, entry[key])
		}
	}
}

func TestLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Config{Writer: &buf})

	logger.Error("upstream failed",
		"endpoint", "https://mainnet.helius-rpc.com/?api-key=abc123",
		"error", errors.New(`Post "https://rpc.example.com/?token=s3cret&x=1": dial tcp: refused`),
		"secret_key", "hunter2",
	)

	out := buf.String()
	for _, leaked := range []string{"abc123", "s3cret", "hunter2"} {
		if strings.Contains(out, leaked) {
			t.Errorf("expected %q to be redacted, got %s", leaked, out)
		}
	}
	if !strings.Contains(out, "x=1") {
		t.Errorf("expected non-sensitive params to survive, got %s", out)
	}
}

func TestContextHandler_WithAttrsKeepsContext(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(h).With("component", "selector")

	logger.InfoContext(WithRequestID(context.Background(), "r"), "msg")

	entry := decodeLine(t, &buf)
	if entry["component"] != "selector" || entry["request_id"] != "r" {
		t.Errorf("expected component and request_id, got %v", entry)
	}
}

func TestContextGetters_Empty(t *testing.T) {
	ctx := context.Background()
	if GetRequestID(ctx) != "" || GetClientKey(ctx) != "" || GetSegment(ctx) != "" {
		t.Error("expected empty values from bare context")
	}
}
