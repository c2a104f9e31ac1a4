package secrets

import (
	"context"
	"errors"
)

// ErrNotFound indicates that no provider holds the named secret.
var ErrNotFound = errors.New("secret not found")

// Provider retrieves secrets from one source.
type Provider interface {
	// Get returns the named secret. A missing secret is reported with an
	// error wrapping ErrNotFound.
	Get(ctx context.Context, name string) (string, error)

	// Name identifies the source in logs ("env", "file").
	Name() string
}

// Refreshable is a provider whose cached values can be dropped.
type Refreshable interface {
	Provider
	Refresh(ctx context.Context) error
}
