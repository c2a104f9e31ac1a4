package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
)

// refPattern matches ${secret:name} references.
var refPattern = regexp.MustCompile(`\$\{secret:([A-Za-z0-9._-]+)\}`)

// Manager resolves secrets from its providers in order; the first provider
// holding a secret wins.
type Manager struct {
	providers []Provider
	cache     *cache
	logger    *slog.Logger
}

// NewManager creates a manager over providers with a resolved-value cache.
func NewManager(providers []Provider, cacheTTL time.Duration) *Manager {
	return &Manager{
		providers: providers,
		cache:     newCache(cacheTTL),
		logger:    slog.Default().With("component", "secrets"),
	}
}

// NewManagerFromConfig builds the file provider (when a directory is
// configured) followed by the environment provider.
func NewManagerFromConfig(cfg config.SecretsConfig) (*Manager, error) {
	var providers []Provider
	if cfg.Dir != "" {
		fp, err := NewFileProvider(cfg.Dir, cfg.Watch)
		if err != nil {
			return nil, err
		}
		providers = append(providers, fp)
	}
	providers = append(providers, NewEnvProvider(cfg.EnvPrefix))
	return NewManager(providers, cfg.CacheTTL), nil
}

// Get returns the named secret.
func (m *Manager) Get(ctx context.Context, name string) (string, error) {
	if value, ok := m.cache.get(name); ok {
		return value, nil
	}

	var errs []error
	for _, p := range m.providers {
		value, err := p.Get(ctx, name)
		if err == nil {
			m.cache.set(name, value)
			m.logger.Debug("secret resolved", "name", name, "provider", p.Name())
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("failed to resolve secret %q: %w", name, errors.Join(errs...))
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Resolve replaces every ${secret:name} reference in s. All unresolved
// references are reported together; s is returned unchanged on error.
func (m *Manager) Resolve(ctx context.Context, s string) (string, error) {
	if !HasReference(s) {
		return s, nil
	}

	var errs []error
	out := refPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := refPattern.FindStringSubmatch(ref)[1]
		value, err := m.Get(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return ref
		}
		return value
	})
	if len(errs) > 0 {
		return s, errors.Join(errs...)
	}
	return out, nil
}

// Refresh clears the cache and every refreshable provider.
func (m *Manager) Refresh(ctx context.Context) error {
	m.cache.clear()
	var errs []error
	for _, p := range m.providers {
		if r, ok := p.(Refreshable); ok {
			if err := r.Refresh(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases provider resources.
func (m *Manager) Close() error {
	var errs []error
	for _, p := range m.providers {
		if c, ok := p.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// HasReference reports whether s contains a ${secret:name} reference.
func HasReference(s string) bool {
	return refPattern.MatchString(s)
}
