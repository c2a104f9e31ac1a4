package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Herocku2/solana-token-creatorf/internal/rpcmock"
)

func TestClient_PostSuccess(t *testing.T) {
	mock := rpcmock.NewMockServer(rpcmock.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"result":"ok"}`,
	})
	defer mock.Close()

	client := NewClient(ClientConfig{Timeout: time.Second})
	body, err := client.Post(context.Background(), mock.URL(), []byte(`{"jsonrpc":"2.0","id":1,"method":"getHealth","params":[]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(body) != `{"result":"ok"}` {
		t.Errorf("expected body relayed unmodified, got %q", body)
	}
	if mock.MethodCount("getHealth") != 1 {
		t.Errorf("expected 1 getHealth call, got %d", mock.MethodCount("getHealth"))
	}
}

func TestClient_PostUpstreamError(t *testing.T) {
	mock := rpcmock.NewMockServer(rpcmock.MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error":"rate limited"}`,
	})
	defer mock.Close()

	client := NewClient(ClientConfig{Timeout: time.Second})
	_, err := client.Post(context.Background(), mock.URL(), []byte(`{}`))

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	if upstreamErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", upstreamErr.StatusCode)
	}
	if string(upstreamErr.Body) != `{"error":"rate limited"}` {
		t.Errorf("expected upstream body kept, got %q", upstreamErr.Body)
	}
}

func TestClient_PostTimeout(t *testing.T) {
	mock := rpcmock.NewMockServer(rpcmock.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"result":"late"}`,
		Delay:      5 * time.Second,
	})
	defer mock.Close()

	timeout := 100 * time.Millisecond
	client := NewClient(ClientConfig{Timeout: timeout})

	start := time.Now()
	_, err := client.Post(context.Background(), mock.URL(), []byte(`{}`))
	elapsed := time.Since(start)

	if !IsTimeout(err) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
	if elapsed > timeout+500*time.Millisecond {
		t.Errorf("expected return within timeout, took %v", elapsed)
	}
}

func TestClient_PostCallerCancel(t *testing.T) {
	mock := rpcmock.NewMockServer(rpcmock.MockResponse{Delay: 5 * time.Second})
	defer mock.Close()

	client := NewClient(ClientConfig{Timeout: 10 * time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := client.Post(ctx, mock.URL(), []byte(`{}`))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %T: %v", err, err)
	}
	if IsTimeout(err) {
		t.Error("caller cancellation must not be reported as timeout")
	}
}

func TestClient_PostTransportError(t *testing.T) {
	mock := rpcmock.NewHealthyServer()
	url := mock.URL()
	mock.Close()

	client := NewClient(ClientConfig{Timeout: time.Second})
	_, err := client.Post(context.Background(), url, []byte(`{}`))

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
}

func TestClient_PostResponseLimit(t *testing.T) {
	mock := rpcmock.NewMockServer(rpcmock.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"result":"` + strings.Repeat("x", 100) + `"}`,
	})
	defer mock.Close()

	client := NewClient(ClientConfig{Timeout: time.Second, MaxResponseBytes: 32})
	_, err := client.Post(context.Background(), mock.URL(), []byte(`{}`))

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
}

func TestClient_Call(t *testing.T) {
	mock := rpcmock.NewHealthyServer()
	defer mock.Close()

	client := NewClient(ClientConfig{Timeout: time.Second})
	resp, raw, err := client.Call(context.Background(), mock.URL(), NewRequest("getHealth", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.ResultString() != "ok" {
		t.Errorf("expected result ok, got %q", resp.ResultString())
	}
	if len(raw) == 0 {
		t.Error("expected raw body")
	}

	var sent Request
	if err := json.Unmarshal(mock.LastRequest(), &sent); err != nil {
		t.Fatalf("failed to decode sent request: %v", err)
	}
	if sent.JSONRPC != "2.0" || string(sent.ID) != "1" || string(sent.Params) != "[]" {
		t.Errorf("expected normalized envelope, got %+v", sent)
	}
}

func TestClient_CallParseError(t *testing.T) {
	mock := rpcmock.NewMockServer(rpcmock.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>gateway</html>`,
	})
	defer mock.Close()

	client := NewClient(ClientConfig{Timeout: time.Second})
	_, _, err := client.Call(context.Background(), mock.URL(), NewRequest("getHealth", nil))

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
}

func TestEndpointHost_HidesSecrets(t *testing.T) {
	host := endpointHost("https://mainnet.helius-rpc.com/?api-key=secret")
	if host != "mainnet.helius-rpc.com" {
		t.Errorf("expected bare host, got %q", host)
	}
	if host := endpointHost("::not a url"); host != "invalid-endpoint" {
		t.Errorf("expected invalid-endpoint, got %q", host)
	}
}
