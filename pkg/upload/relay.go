package upload

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
)

// Settings are the values the relay needs on every call.
type Settings struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Gateway   string

	// MaxBytes caps the payload size. Zero disables the check.
	MaxBytes int64
}

// SettingsFromConfig extracts relay settings from the storage section.
func SettingsFromConfig(cfg config.StorageConfig) Settings {
	return Settings{
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		Gateway:   cfg.Gateway,
		MaxBytes:  cfg.MaxUploadBytes,
	}
}

// Missing lists the settings that are empty.
func (s Settings) Missing() []string {
	var missing []string
	if s.AccessKey == "" {
		missing = append(missing, "access key")
	}
	if s.SecretKey == "" {
		missing = append(missing, "secret key")
	}
	if s.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if s.Gateway == "" {
		missing = append(missing, "gateway")
	}
	return missing
}

// Relay stores artifacts in a content-addressed backend and returns their
// public URL. It keeps no state between calls.
type Relay struct {
	settings Settings
	backend  Backend
	observer Observer
	logger   *slog.Logger
}

// RelayOption customizes a Relay.
type RelayOption func(*Relay)

// WithObserver registers an upload observer.
func WithObserver(o Observer) RelayOption {
	return func(r *Relay) { r.observer = o }
}

// NewRelay creates a relay writing to backend.
func NewRelay(settings Settings, backend Backend, opts ...RelayOption) *Relay {
	r := &Relay{
		settings: settings,
		backend:  backend,
		logger:   slog.Default().With("component", "upload"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Configured reports whether all required settings are present.
func (r *Relay) Configured() bool {
	return len(r.settings.Missing()) == 0
}

// Check returns a *ConfigurationError naming the missing settings, if any.
func (r *Relay) Check() error {
	if missing := r.settings.Missing(); len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// Upload validates the artifact, writes it and returns its URL. Missing
// settings yield a *ConfigurationError without contacting the backend.
// A name is generated when empty and the content type is sniffed when
// absent.
func (r *Relay) Upload(ctx context.Context, artifact Artifact) (Result, error) {
	if err := r.Check(); err != nil {
		return Result{}, err
	}
	if len(artifact.Payload) == 0 {
		return Result{}, ErrEmptyPayload
	}
	if r.settings.MaxBytes > 0 && int64(len(artifact.Payload)) > r.settings.MaxBytes {
		return Result{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrPayloadTooLarge, len(artifact.Payload), r.settings.MaxBytes)
	}

	if artifact.Name == "" {
		artifact.Name = uuid.NewString()
	}
	if artifact.ContentType == "" {
		artifact.ContentType = http.DetectContentType(artifact.Payload)
	}

	start := time.Now()
	cid, err := r.backend.Put(ctx, artifact)
	if r.observer != nil {
		r.observer.ObserveUpload(artifact.ContentType, len(artifact.Payload), time.Since(start), err)
	}
	if err != nil {
		r.logger.Error("upload failed",
			"name", artifact.Name,
			"content_type", artifact.ContentType,
			"size", len(artifact.Payload),
			"error", err,
		)
		return Result{}, err
	}

	res := Result{
		URL:  strings.TrimRight(r.settings.Gateway, "/") + "/" + cid,
		CID:  cid,
		Name: artifact.Name,
	}
	r.logger.Info("artifact stored",
		"name", artifact.Name,
		"cid", cid,
		"size", len(artifact.Payload),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
