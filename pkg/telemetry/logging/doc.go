// Package logging builds the process logger on top of log/slog.
//
// # Overview
//
//   - JSON or text output at a configurable level
//   - request_id, client, segment and trace_id added from the context
//   - RPC credentials scrubbed from URLs and error strings
//
// # Usage
//
//	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, id)
//	slog.InfoContext(ctx, "forwarded") // includes request_id
//
// # Redaction
//
// Many RPC providers authenticate with a query parameter, e.g.
// https://mainnet.helius-rpc.com/?api-key=... . Any string attribute or error
// containing such a URL is logged with the value replaced by [REDACTED].
// RedactURL does the same for a single URL and is used where endpoints are
// returned to clients.
package logging
