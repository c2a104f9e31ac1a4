// Package providers implements the JSON-RPC transport used to talk to
// upstream Solana RPC nodes.
//
// # Overview
//
// Client posts JSON-RPC envelopes over a pooled HTTP transport. Every call
// carries an explicit timeout derived from the caller's context, and every
// failure is classified into one of a small set of typed errors:
//
//   - UpstreamError: the node answered with a non-2xx status; the body is kept
//   - TimeoutError: no answer within the bound
//   - TransportError: DNS, connection or TLS failure
//   - ParseError: the answer was not a JSON document
//
// Cancellation of the caller's context (client disconnect) aborts the
// in-flight request and surfaces as context.Canceled.
//
// # Basic Usage
//
//	client := providers.NewClient(providers.ClientConfig{Timeout: 10 * time.Second})
//	body, err := client.Post(ctx, "https://api.devnet.solana.com", payload)
//
//	resp, err := client.Call(ctx, endpoint, providers.NewRequest("getHealth", nil))
package providers
