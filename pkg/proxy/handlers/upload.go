package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Herocku2/solana-token-creatorf/pkg/proxy"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/types"
	"github.com/Herocku2/solana-token-creatorf/pkg/upload"
)

// Upload kinds accepted in the "type" form field.
const (
	UploadTypeImage = "image"
	UploadTypeJSON  = "json"
)

// DefaultMaxUploadBytes is the multipart body limit when none is configured.
const DefaultMaxUploadBytes = 10 << 20

// Uploader stores artifacts.
type Uploader interface {
	Check() error
	Upload(ctx context.Context, artifact upload.Artifact) (upload.Result, error)
}

// UploadHandler relays token images and metadata documents to object
// storage. Form fields:
//
//	type      "image" or "json"
//	name      object name, a UUID when empty
//	file      the image, or the metadata document when type=json
//	jsonData  the metadata document as a field, preferred over file
type UploadHandler struct {
	uploader Uploader
	maxBytes int64
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(uploader Uploader, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadHandler{uploader: uploader, maxBytes: maxBytes}
}

// ServeHTTP implements http.Handler.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r)
		return
	}

	// Missing credentials are reported before the body is read.
	if err := h.uploader.Check(); err != nil {
		_ = proxy.WriteError(w, r, err)
		return
	}

	artifact, err := h.parseArtifact(w, r)
	if err != nil {
		_ = proxy.WriteError(w, r, err)
		return
	}

	res, err := h.uploader.Upload(r.Context(), artifact)
	if err != nil {
		_ = proxy.WriteError(w, r, err)
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, types.UploadResponse{
		Success: true,
		URL:     res.URL,
		CID:     res.CID,
		Name:    res.Name,
	})
}

func (h *UploadHandler) parseArtifact(w http.ResponseWriter, r *http.Request) (upload.Artifact, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return upload.Artifact{}, &proxy.RequestError{
				Message: fmt.Sprintf("upload exceeds maximum size of %d bytes", h.maxBytes),
				Param:   "file",
			}
		}
		return upload.Artifact{}, &proxy.RequestError{Message: "invalid multipart form: " + err.Error(), Param: "body"}
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	artifact := upload.Artifact{Name: r.FormValue("name")}

	switch kind := r.FormValue("type"); kind {
	case UploadTypeJSON:
		if doc := r.FormValue("jsonData"); doc != "" {
			var compact bytes.Buffer
			if err := json.Compact(&compact, []byte(doc)); err != nil {
				return upload.Artifact{}, &proxy.RequestError{Message: "jsonData is not valid JSON", Param: "jsonData"}
			}
			artifact.Payload = compact.Bytes()
			artifact.ContentType = "application/json"
			return artifact, nil
		}
		payload, contentType, err := readFilePart(r)
		if err != nil {
			return upload.Artifact{}, err
		}
		artifact.Payload = payload
		artifact.ContentType = contentType
		if artifact.ContentType == "" || artifact.ContentType == "application/octet-stream" {
			artifact.ContentType = "application/json"
		}

	case UploadTypeImage:
		payload, contentType, err := readFilePart(r)
		if err != nil {
			return upload.Artifact{}, err
		}
		artifact.Payload = payload
		if contentType != "application/octet-stream" {
			artifact.ContentType = contentType
		}

	case "":
		return upload.Artifact{}, &proxy.RequestError{Message: "type is required", Param: "type"}
	default:
		return upload.Artifact{}, &proxy.RequestError{
			Message: fmt.Sprintf("type must be %q or %q, got %q", UploadTypeImage, UploadTypeJSON, kind),
			Param:   "type",
		}
	}

	return artifact, nil
}

func readFilePart(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", &proxy.RequestError{Message: "file is required", Param: "file"}
		}
		return nil, "", fmt.Errorf("failed to open file part: %w", err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file part: %w", err)
	}
	return payload, header.Header.Get("Content-Type"), nil
}
