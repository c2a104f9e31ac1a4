package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/logging"
)

// SelectionSource exposes the cached endpoint selections.
type SelectionSource interface {
	Current(segment routing.Segment) (routing.Selection, bool)
}

// SelectionCheck reports whether segment has a live endpoint cached. A
// segment without one is degraded, never unhealthy: requests are still
// routed to the registry default. The check does not probe.
func SelectionCheck(source SelectionSource, segment routing.Segment) CheckFunc {
	return func(ctx context.Context) error {
		sel, ok := source.Current(segment)
		if !ok {
			return fmt.Errorf("no live endpoint cached: %w", ErrDegraded)
		}
		if sel.Fallback {
			return fmt.Errorf("all candidates dead, serving %s: %w", logging.RedactURL(sel.Endpoint.URL), ErrDegraded)
		}
		return nil
	}
}

// ConfigCheck fails until a configuration has been loaded.
func ConfigCheck(current func() *config.Config) CheckFunc {
	return func(ctx context.Context) error {
		if current() == nil {
			return errors.New("configuration not loaded")
		}
		return nil
	}
}

// RegisterSelectionChecks registers one SelectionCheck per known segment,
// named "endpoint:<segment>".
func (c *Checker) RegisterSelectionChecks(source SelectionSource) {
	for _, segment := range routing.Segments {
		c.RegisterCheck("endpoint:"+string(segment), SelectionCheck(source, segment))
	}
}

// CertificateSource exposes the expiry of the served TLS certificate.
type CertificateSource interface {
	NotAfter() time.Time
}

// CertificateCheck is unhealthy once the served certificate has expired and
// degraded within 30 days of expiry.
func CertificateCheck(source CertificateSource) CheckFunc {
	return func(ctx context.Context) error {
		notAfter := source.NotAfter()
		remaining := time.Until(notAfter)
		switch {
		case notAfter.IsZero():
			return errors.New("no certificate loaded")
		case remaining <= 0:
			return fmt.Errorf("certificate expired at %s", notAfter.Format(time.RFC3339))
		case remaining < 30*24*time.Hour:
			return fmt.Errorf("certificate expires in %d days: %w", int(remaining.Hours()/24), ErrDegraded)
		}
		return nil
	}
}
