// Package rpcmock provides an httptest-based JSON-RPC upstream for tests.
package rpcmock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"
)

// MockServer simulates a Solana RPC node. Responses are chosen by JSON-RPC
// method; unknown methods fall back to the default response.
type MockServer struct {
	server *httptest.Server

	mu          sync.Mutex
	responses   map[string]MockResponse
	fallback    MockResponse
	lastRequest []byte
	methods     map[string]int

	requestCount int64
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode int
	Body       interface{}
	Delay      time.Duration
	Headers    map[string]string
}

// Healthy is the answer of a node that passes the liveness probe.
var Healthy = MockResponse{
	StatusCode: http.StatusOK,
	Body:       `{"jsonrpc":"2.0","id":1,"result":"ok"}`,
}

// Unhealthy is the answer of a node that is behind or otherwise degraded.
var Unhealthy = MockResponse{
	StatusCode: http.StatusOK,
	Body:       `{"jsonrpc":"2.0","id":1,"error":{"code":-32005,"message":"Node is behind by 42 slots"}}`,
}

// NewMockServer starts a mock node that answers every method with fallback.
func NewMockServer(fallback MockResponse) *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
		methods:   make(map[string]int),
		fallback:  fallback,
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// NewHealthyServer starts a mock node that passes liveness probes.
func NewHealthyServer() *MockServer {
	return NewMockServer(Healthy)
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.CloseClientConnections()
	ms.server.Close()
}

// SetResponse sets the response for one JSON-RPC method.
func (ms *MockServer) SetResponse(method string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[method] = response
}

// SetFallback replaces the response for methods without their own entry.
func (ms *MockServer) SetFallback(response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.fallback = response
}

// GetRequestCount returns the number of requests received.
func (ms *MockServer) GetRequestCount() int {
	return int(atomic.LoadInt64(&ms.requestCount))
}

// MethodCount returns how often method was called.
func (ms *MockServer) MethodCount(method string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.methods[method]
}

// LastRequest returns the body of the most recent request.
func (ms *MockServer) LastRequest() []byte {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]byte(nil), ms.lastRequest...)
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&ms.requestCount, 1)

	body, _ := io.ReadAll(r.Body)
	var envelope struct {
		Method string `json:"method"`
	}
	_ = json.Unmarshal(body, &envelope)

	ms.mu.Lock()
	ms.lastRequest = body
	ms.methods[envelope.Method]++
	response, ok := ms.responses[envelope.Method]
	if !ok {
		response = ms.fallback
	}
	ms.mu.Unlock()

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}
