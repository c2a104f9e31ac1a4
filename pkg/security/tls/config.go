package tls

import (
	"context"
	"crypto/tls"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
)

// ServerConfig returns a server tls.Config backed by reloader.
func ServerConfig(cfg config.TLSConfig, reloader *CertificateReloader) *tls.Config {
	// #nosec G402 - MinVersion is 1.2 or 1.3, enforced by config validation
	return &tls.Config{
		MinVersion:     parseVersion(cfg.MinVersion),
		GetCertificate: reloader.GetCertificate,
		NextProtos:     []string{"h2", "http/1.1"},
	}
}

// NewServerTLS loads the configured certificate, starts polling for
// renewals and returns the listener config together with the reloader.
// It returns nil values when TLS is disabled.
func NewServerTLS(ctx context.Context, cfg config.TLSConfig) (*tls.Config, *CertificateReloader, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}

	reloader := NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval)
	if err := reloader.Load(); err != nil {
		return nil, nil, err
	}
	reloader.Start(ctx)

	return ServerConfig(cfg, reloader), reloader, nil
}

func parseVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
