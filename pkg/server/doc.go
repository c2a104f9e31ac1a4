// Package server assembles the gateway's HTTP surface: a chi router, its
// middleware chain and the server lifecycle.
//
// # Routes
//
//	GET  /health                    liveness
//	GET  /ready                     readiness (degraded segments still 200)
//	GET  /version                   build info
//	GET  /metrics                   Prometheus exposition
//	POST /api/rpc/{segment}         fixed-network RPC proxy
//	POST /api/rpc/generic           generic RPC proxy
//	POST /api/proxy-solana          fixed-network proxy on rpc.default_segment
//	POST /api/solana-rpc            generic proxy (legacy path)
//	POST /api/upload                upload relay
//	GET  /api/endpoints/{segment}   cached selection status
//
// Only the API prefix is subject to admission control. Static routes win
// over parameters in chi, so /api/rpc/generic never reaches the segment
// handler.
//
// # Basic Usage
//
//	srv, err := server.NewServer(cfg, server.Dependencies{
//	    Forwarder: forwarder,
//	    Selection: selector,
//	    Admitter:  controller,
//	    Uploader:  relay,
//	    Checker:   checker,
//	    Metrics:   collector,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx) // returns after ctx is done and in-flight requests drain
package server
