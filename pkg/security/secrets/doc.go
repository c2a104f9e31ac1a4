// Package secrets resolves ${secret:name} references in configuration.
//
// RPC provider URLs often embed an API key and the storage backend needs
// an access key pair. Instead of writing those into the config file, an
// operator can reference them:
//
//	networks:
//	  mainnet:
//	    candidates:
//	      - "https://mainnet.helius-rpc.com/?api-key=${secret:helius-api-key}"
//	storage:
//	  secret_key: "${secret:filebase-secret}"
//
// A reference is resolved from a directory of secret files (one file per
// secret, as mounted by Kubernetes or Docker) and then from the environment
// (TOKENGATE_SECRET_HELIUS_API_KEY for the name above).
//
// ResolveConfig returns a resolved copy; the config singleton keeps the raw
// references so that resolved keys never appear in config dumps.
package secrets
