package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/Herocku2/solana-token-creatorf/pkg/upload"
)

type fakeBackend struct {
	calls int
	last  upload.Artifact
	err   error
}

func (b *fakeBackend) Put(_ context.Context, a upload.Artifact) (string, error) {
	b.calls++
	b.last = a
	if b.err != nil {
		return "", b.err
	}
	return "QmTestCID", nil
}

var configured = upload.Settings{
	AccessKey: "key",
	SecretKey: "secret",
	Bucket:    "tokens",
	Gateway:   "https://gateway.example.com/ipfs/",
}

type formPart struct {
	field, filename, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, fields map[string]string, files ...formPart) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		_, _ = part.Write(f.data)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler_Image(t *testing.T) {
	backend := &fakeBackend{}
	h := NewUploadHandler(upload.NewRelay(configured, backend), 0)

	png := []byte("\x89PNG\r\n\x1a\n0000")
	req := multipartRequest(t, map[string]string{"type": "image", "name": "logo.png"},
		formPart{field: "file", filename: "logo.png", contentType: "image/png", data: png})
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool   `json:"success"`
		URL     string `json:"url"`
		CID     string `json:"cid"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.URL != "https://gateway.example.com/ipfs/QmTestCID" || resp.CID != "QmTestCID" {
		t.Errorf("unexpected response %+v", resp)
	}
	if backend.last.Name != "logo.png" || backend.last.ContentType != "image/png" || !bytes.Equal(backend.last.Payload, png) {
		t.Errorf("unexpected artifact %+v", backend.last)
	}
}

func TestUploadHandler_JSONData(t *testing.T) {
	backend := &fakeBackend{}
	h := NewUploadHandler(upload.NewRelay(configured, backend), 0)

	req := multipartRequest(t, map[string]string{
		"type":     "json",
		"jsonData": "{\n  \"name\": \"Florka\",\n  \"symbol\": \"FLK\"\n}",
	})
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if string(backend.last.Payload) != `{"name":"Florka","symbol":"FLK"}` {
		t.Errorf("expected compacted JSON, got %s", backend.last.Payload)
	}
	if backend.last.ContentType != "application/json" {
		t.Errorf("expected application/json, got %q", backend.last.ContentType)
	}
	if len(backend.last.Name) != 36 {
		t.Errorf("expected generated UUID name, got %q", backend.last.Name)
	}
}

func TestUploadHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		settings   upload.Settings
		backendErr error
		fields     map[string]string
		files      []formPart
		maxBytes   int64
		wantStatus int
		wantKind   string
		wantCalls  int
	}{
		{
			name:       "missing credentials",
			settings:   upload.Settings{Gateway: "https://gw"},
			fields:     map[string]string{"type": "image"},
			files:      []formPart{{field: "file", filename: "a.png", data: []byte("x")}},
			wantStatus: 500,
			wantKind:   "configuration_error",
		},
		{
			name:       "missing type",
			settings:   configured,
			wantStatus: 400,
			wantKind:   "client_error",
		},
		{
			name:       "unknown type",
			settings:   configured,
			fields:     map[string]string{"type": "video"},
			wantStatus: 400,
			wantKind:   "client_error",
		},
		{
			name:       "image without file",
			settings:   configured,
			fields:     map[string]string{"type": "image"},
			wantStatus: 400,
			wantKind:   "client_error",
		},
		{
			name:       "invalid jsonData",
			settings:   configured,
			fields:     map[string]string{"type": "json", "jsonData": "{nope"},
			wantStatus: 400,
			wantKind:   "client_error",
		},
		{
			name:       "body too large",
			settings:   configured,
			fields:     map[string]string{"type": "image"},
			files:      []formPart{{field: "file", filename: "a.png", data: bytes.Repeat([]byte("x"), 4096)}},
			maxBytes:   1024,
			wantStatus: 400,
			wantKind:   "client_error",
		},
		{
			name:       "backend rejects",
			settings:   configured,
			backendErr: &upload.BackendError{StatusCode: http.StatusForbidden, Message: "Access Denied"},
			fields:     map[string]string{"type": "image"},
			files:      []formPart{{field: "file", filename: "a.png", data: []byte("x")}},
			wantStatus: 403,
			wantKind:   "upstream_error",
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{err: tt.backendErr}
			h := NewUploadHandler(upload.NewRelay(tt.settings, backend), tt.maxBytes)
			w := httptest.NewRecorder()

			h.ServeHTTP(w, multipartRequest(t, tt.fields, tt.files...))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["kind"] != tt.wantKind {
				t.Errorf("expected kind %q, got %v", tt.wantKind, body["kind"])
			}
			if backend.calls != tt.wantCalls {
				t.Errorf("expected %d backend calls, got %d", tt.wantCalls, backend.calls)
			}
		})
	}
}
