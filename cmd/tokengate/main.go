// Tokengate is the network-resilience gateway of the Solana token creator.
//
// It sits between the browser and the chain, providing:
//   - RPC proxying to the live endpoint with the lowest latency per network
//   - Per-client fixed-window admission control
//   - Upload relaying to an S3-compatible content-addressed store
//
// Usage:
//
//	# Start the gateway with defaults and environment overrides
//	tokengate run
//
//	# Start with a configuration file
//	tokengate run --config /etc/tokengate/config.yaml
//
//	# Probe the configured endpoints once
//	tokengate probe --segment mainnet
//
//	# Validate a configuration file
//	tokengate validate --config config.yaml
//
//	# Show version information
//	tokengate version
package main

func main() {
	Execute()
}
