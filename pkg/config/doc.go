// Package config provides configuration management for the tokengate gateway.
//
// Configuration is read from an optional YAML file decoded on top of
// Default(), then environment overrides are applied and the result is
// validated as a whole:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("tokengate.yaml")
//
// # Environment Variable Overrides
//
// Variables follow the naming convention TOKENGATE_SECTION_FIELD, for
// example TOKENGATE_PROXY_LISTEN_ADDRESS or TOKENGATE_ADMISSION_MAX_REQUESTS.
// The names used by the token creator front end are accepted too:
//
//   - FILEBASE_KEY, FILEBASE_SECRET, FILEBASE_BUCKETNAME, FILEBASE_GATEWAY
//   - NEXT_PUBLIC_SOLANA_DEVNET_RPC, NEXT_PUBLIC_SOLANA_MAINNET_RPC
//
// RPC overrides may list several comma-separated URLs. They are prepended
// to the segment's candidates as highest priority.
//
// # Hot Reload
//
// Watcher observes the configuration file and reloads it after a debounce
// period. Callers receive the new *Config and apply the parts that can
// change at runtime (candidate lists, admission policy).
package config
