package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of Default(), remaining zero values are
// defaulted, and the result is validated. An empty path yields the
// defaults alone.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention TOKENGATE_SECTION_FIELD. The variable names used by the web
// front end (FILEBASE_*, NEXT_PUBLIC_SOLANA_*_RPC) are honored as well.
//
// The loading sequence is:
// 1. Load YAML from file (optional)
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Proxy overrides
	if val := os.Getenv("TOKENGATE_PROXY_LISTEN_ADDRESS"); val != "" {
		cfg.Proxy.ListenAddress = val
	}
	setDuration("TOKENGATE_PROXY_READ_TIMEOUT", &cfg.Proxy.ReadTimeout)
	setDuration("TOKENGATE_PROXY_WRITE_TIMEOUT", &cfg.Proxy.WriteTimeout)
	setBool("TOKENGATE_PROXY_TRUST_FORWARDED_HEADERS", &cfg.Proxy.TrustForwardedHeaders)
	setBool("TOKENGATE_PROXY_CSRF_SECURE", &cfg.Proxy.CSRF.Secure)
	if val := os.Getenv("TOKENGATE_PROXY_CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.Proxy.CORS.AllowedOrigins = splitList(val)
	}
	setBool("TOKENGATE_PROXY_TLS_ENABLED", &cfg.Proxy.TLS.Enabled)
	setFirst(&cfg.Proxy.TLS.CertFile, "TOKENGATE_PROXY_TLS_CERT_FILE")
	setFirst(&cfg.Proxy.TLS.KeyFile, "TOKENGATE_PROXY_TLS_KEY_FILE")

	// Network overrides are prepended as highest priority candidates
	for _, name := range []string{"TOKENGATE_NETWORKS_DEVNET_RPC", "NEXT_PUBLIC_SOLANA_DEVNET_RPC"} {
		if val := os.Getenv(name); val != "" {
			cfg.Networks.Devnet.Candidates = PrependCandidates(cfg.Networks.Devnet.Candidates, splitList(val))
		}
	}
	for _, name := range []string{"TOKENGATE_NETWORKS_MAINNET_RPC", "NEXT_PUBLIC_SOLANA_MAINNET_RPC"} {
		if val := os.Getenv(name); val != "" {
			cfg.Networks.Mainnet.Candidates = PrependCandidates(cfg.Networks.Mainnet.Candidates, splitList(val))
		}
	}

	// Selector overrides
	setDuration("TOKENGATE_SELECTOR_CACHE_TTL", &cfg.Selector.CacheTTL)
	setDuration("TOKENGATE_SELECTOR_PROBE_TIMEOUT", &cfg.Selector.ProbeTimeout)
	if val := os.Getenv("TOKENGATE_SELECTOR_PREWARM_SCHEDULE"); val != "" {
		cfg.Selector.PrewarmSchedule = val
	}

	// RPC overrides
	setDuration("TOKENGATE_RPC_REQUEST_TIMEOUT", &cfg.RPC.RequestTimeout)
	if val := os.Getenv("TOKENGATE_RPC_DEFAULT_SEGMENT"); val != "" {
		cfg.RPC.DefaultSegment = val
	}
	if val := os.Getenv("TOKENGATE_RPC_GENERIC_ALLOWED_HOSTS"); val != "" {
		cfg.RPC.Generic.AllowedHosts = splitList(val)
	}

	// Admission overrides
	setBool("TOKENGATE_ADMISSION_DISABLED", &cfg.Admission.Disabled)
	setDuration("TOKENGATE_ADMISSION_WINDOW", &cfg.Admission.Window)
	if val := os.Getenv("TOKENGATE_ADMISSION_MAX_REQUESTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Admission.MaxRequests = i
		}
	}
	if val := os.Getenv("TOKENGATE_ADMISSION_STORE_BACKEND"); val != "" {
		cfg.Admission.Store.Backend = val
	}
	if val := os.Getenv("TOKENGATE_ADMISSION_STORE_SQLITE_PATH"); val != "" {
		cfg.Admission.Store.SQLitePath = val
	}

	// Storage overrides; TOKENGATE_ names win over the front-end names
	setFirst(&cfg.Storage.AccessKey, "TOKENGATE_STORAGE_ACCESS_KEY", "FILEBASE_KEY")
	setFirst(&cfg.Storage.SecretKey, "TOKENGATE_STORAGE_SECRET_KEY", "FILEBASE_SECRET")
	setFirst(&cfg.Storage.Bucket, "TOKENGATE_STORAGE_BUCKET", "FILEBASE_BUCKETNAME")
	setFirst(&cfg.Storage.Gateway, "TOKENGATE_STORAGE_GATEWAY", "FILEBASE_GATEWAY")
	setFirst(&cfg.Storage.Endpoint, "TOKENGATE_STORAGE_ENDPOINT")
	setFirst(&cfg.Storage.Region, "TOKENGATE_STORAGE_REGION")

	// Secrets overrides
	setFirst(&cfg.Secrets.Dir, "TOKENGATE_SECRETS_DIR")

	// Telemetry overrides
	if val := os.Getenv("TOKENGATE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("TOKENGATE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	setBool("TOKENGATE_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	setBool("TOKENGATE_TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	if val := os.Getenv("TOKENGATE_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
}

// PrependCandidates returns overrides followed by base, keeping the first
// occurrence of each URL.
func PrependCandidates(base, overrides []string) []string {
	seen := make(map[string]bool, len(base)+len(overrides))
	out := make([]string, 0, len(base)+len(overrides))
	for _, list := range [][]string{overrides, base} {
		for _, u := range list {
			u = strings.TrimRight(strings.TrimSpace(u), "/")
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setDuration(name string, dst *time.Duration) {
	if val := os.Getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func setBool(name string, dst *bool) {
	if val := os.Getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setFirst(dst *string, names ...string) {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			*dst = val
			return
		}
	}
}
