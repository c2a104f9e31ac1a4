// Package handlers implements the gateway's API routes:
//
//	POST /api/rpc/{segment}   RPCHandler, segment from the URL
//	POST /api/proxy-solana    RPCHandler pinned to the default segment
//	POST /api/rpc/generic     GenericRPCHandler
//	POST /api/solana-rpc      GenericRPCHandler (legacy path)
//	POST /api/upload          UploadHandler
//	GET  /api/endpoints/{segment}  EndpointsHandler
//
// Handlers write every failure through proxy.WriteError, so error bodies
// and statuses follow one taxonomy.
package handlers
