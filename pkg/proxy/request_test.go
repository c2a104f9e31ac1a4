package proxy

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/rpc/devnet", strings.NewReader(body))
}

func TestParseRPCRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantParam  string
		wantID     string
		wantParams string
	}{
		{
			name:       "defaults filled in",
			body:       `{"method":"getHealth"}`,
			wantID:     "1",
			wantParams: "[]",
		},
		{
			name:       "caller id kept",
			body:       `{"jsonrpc":"2.0","id":"abc","method":"getBalance","params":["So1111"]}`,
			wantID:     `"abc"`,
			wantParams: `["So1111"]`,
		},
		{
			name:      "missing method",
			body:      `{"params":[]}`,
			wantErr:   true,
			wantParam: "method",
		},
		{
			name:      "scalar params",
			body:      `{"method":"getSlot","params":5}`,
			wantErr:   true,
			wantParam: "params",
		},
		{
			name:      "invalid json",
			body:      `{"method":`,
			wantErr:   true,
			wantParam: "body",
		},
		{
			name:      "empty body",
			body:      "  ",
			wantErr:   true,
			wantParam: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRPCRequest(newRequest(tt.body), 0)
			if tt.wantErr {
				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("expected RequestError, got %v", err)
				}
				if reqErr.Param != tt.wantParam {
					t.Errorf("expected param %q, got %q", tt.wantParam, reqErr.Param)
				}
				if HandleError(err).HTTPStatusCode() != http.StatusBadRequest {
					t.Error("expected request errors to map to 400")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(req.ID) != tt.wantID {
				t.Errorf("expected id %s, got %s", tt.wantID, req.ID)
			}
			if string(req.Params) != tt.wantParams {
				t.Errorf("expected params %s, got %s", tt.wantParams, req.Params)
			}
			if req.JSONRPC != "2.0" {
				t.Errorf("expected jsonrpc 2.0, got %q", req.JSONRPC)
			}
		})
	}
}

func TestParseRPCRequest_BodyTooLarge(t *testing.T) {
	body := `{"method":"getHealth","params":["` + strings.Repeat("x", 200) + `"]}`
	_, err := ParseRPCRequest(newRequest(body), 64)

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if !strings.Contains(reqErr.Message, "64 bytes") {
		t.Errorf("expected size in message, got %q", reqErr.Message)
	}
}

func TestParseGenericRequest(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		allowed   []string
		wantParam string
	}{
		{name: "valid", body: `{"endpoint":"https://api.devnet.solana.com","method":"getSlot"}`},
		{name: "allowed host", body: `{"endpoint":"https://API.devnet.solana.com","method":"getSlot"}`, allowed: []string{"api.devnet.solana.com"}},
		{name: "missing endpoint", body: `{"method":"getSlot"}`, wantParam: "endpoint"},
		{name: "missing method", body: `{"endpoint":"https://api.devnet.solana.com"}`, wantParam: "method"},
		{name: "relative endpoint", body: `{"endpoint":"/rpc","method":"getSlot"}`, wantParam: "endpoint"},
		{name: "bad scheme", body: `{"endpoint":"ws://node","method":"getSlot"}`, wantParam: "endpoint"},
		{name: "host not allowed", body: `{"endpoint":"https://evil.example.com","method":"getSlot"}`, allowed: []string{"api.devnet.solana.com"}, wantParam: "endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, req, err := ParseGenericRequest(newRequest(tt.body), 0, tt.allowed)
			if tt.wantParam != "" {
				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("expected RequestError, got %v", err)
				}
				if reqErr.Param != tt.wantParam {
					t.Errorf("expected param %q, got %q", tt.wantParam, reqErr.Param)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if endpoint == "" {
				t.Error("expected endpoint")
			}
			if string(req.ID) != "1" || string(req.Params) != "[]" {
				t.Errorf("expected id 1 and params [], got %s %s", req.ID, req.Params)
			}
		})
	}
}
