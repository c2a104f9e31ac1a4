// Package proxy relays JSON-RPC calls from browser clients to Solana RPC
// nodes and maps every failure to one JSON error envelope.
//
// # Forwarding
//
// A Forwarder has two entry points:
//
//   - Forward resolves the node of a network segment through the endpoint
//     selector (lowest-latency live node, cached) and relays the call.
//   - ForwardTo relays the call to a node named by the caller.
//
// Every call is bounded by the forward timeout (10s by default). Successful
// bodies are relayed byte-for-byte once they parse as a JSON-RPC envelope;
// the proxy does not interpret results.
//
// # Errors
//
// HandleError classifies errors:
//
//	*RequestError              400 client_error
//	*providers.TimeoutError    504 upstream_timeout
//	*providers.UpstreamError   upstream status, upstream body under "upstream"
//	*upload.BackendError       backend status
//	*upload.ConfigurationError 500 configuration_error
//	context.Canceled           499 client_closed
//	anything else              500 internal_error
//
// The admission middleware writes 429 rate_limited itself.
//
// # Usage
//
//	fwd := proxy.NewForwarder(client, selector, cfg.RPC.RequestTimeout)
//
//	req, err := proxy.ParseRPCRequest(r, cfg.RPC.MaxBodyBytes)
//	if err != nil {
//	    proxy.WriteError(w, r, err)
//	    return
//	}
//	body, err := fwd.Forward(r.Context(), routing.Mainnet, req)
//	if err != nil {
//	    proxy.WriteError(w, r, err)
//	    return
//	}
//	proxy.WriteRawJSON(w, http.StatusOK, body)
package proxy
