package upload

import (
	"context"
	"time"
)

// Artifact is one object to store.
type Artifact struct {
	// Name is the object key
	Name string

	// ContentType is the MIME type sent with the object
	ContentType string

	// Payload is the object content
	Payload []byte
}

// Result describes a stored artifact.
type Result struct {
	// URL is the public gateway URL, {gateway}/{cid}
	URL string `json:"url"`

	// CID is the content identifier assigned by the backend
	CID string `json:"cid"`

	// Name is the object key that was written
	Name string `json:"name"`
}

// Backend writes an artifact and returns its content identifier.
type Backend interface {
	Put(ctx context.Context, artifact Artifact) (cid string, err error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, artifact Artifact) (string, error)

// Put calls f.
func (f BackendFunc) Put(ctx context.Context, artifact Artifact) (string, error) {
	return f(ctx, artifact)
}

// Observer receives one event per upload attempt that reached the backend.
type Observer interface {
	ObserveUpload(contentType string, size int, duration time.Duration, err error)
}
