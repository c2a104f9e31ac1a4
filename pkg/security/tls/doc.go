// Package tls terminates TLS on the gateway listener.
//
// The certificate pair is read from disk and polled for changes, so a
// renewed certificate (e.g., from an ACME client) is served without a
// restart:
//
//	tlsCfg, reloader, err := tls.NewServerTLS(ctx, cfg.Proxy.TLS)
//	if err != nil {
//	    return err
//	}
//	checker.RegisterCheck("tls", health.CertificateCheck(reloader))
//
// Only TLS 1.2 and 1.3 are accepted. Go's default cipher suites are used.
package tls
