package config

import "time"

// Config is the root configuration structure for the tokengate RPC gateway.
// It contains the HTTP surface, the upstream endpoint registry, the selector
// and admission policies, the upload backend and telemetry settings.
type Config struct {
	// Proxy contains HTTP server configuration including listen address,
	// timeouts, CORS and response hardening.
	Proxy ProxyConfig `yaml:"proxy"`

	// Networks contains the ordered candidate RPC endpoints for each
	// network segment.
	Networks NetworksConfig `yaml:"networks"`

	// Selector contains endpoint health probing and caching configuration.
	Selector SelectorConfig `yaml:"selector"`

	// RPC contains forwarding configuration for the RPC proxy routes.
	RPC RPCConfig `yaml:"rpc"`

	// Admission contains the per-client fixed-window rate limit policy.
	Admission AdmissionConfig `yaml:"admission"`

	// Storage contains the content-addressed upload backend configuration.
	Storage StorageConfig `yaml:"storage"`

	// Secrets contains the sources for ${secret:name} references.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProxyConfig contains configuration for the HTTP server.
type ProxyConfig struct {
	// ListenAddress is the address and port for the gateway to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Must exceed rpc.request_timeout so that 504 responses can be
	// written.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// APIPrefix is the path prefix of all rate-limited routes.
	// Default: "/api"
	APIPrefix string `yaml:"api_prefix"`

	// TrustForwardedHeaders derives the client key from X-Forwarded-For or
	// X-Real-IP before falling back to the socket address. Enable only behind
	// a proxy that overwrites these headers.
	// Default: true
	TrustForwardedHeaders bool `yaml:"trust_forwarded_headers"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// Headers contains response hardening headers.
	Headers HeadersConfig `yaml:"headers"`

	// CSRF contains CSRF cookie issuance settings.
	CSRF CSRFConfig `yaml:"csrf"`

	// TLS contains listener TLS settings.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS termination settings for the listener.
type TLSConfig struct {
	// Enabled serves HTTPS instead of plain HTTP.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM-encoded certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept.
	// Options: "1.2", "1.3"
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate files are checked for
	// changes. Renewed certificates are picked up without a restart.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Content-Type", "X-Request-ID", "X-CSRF-Token"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining",
	// "X-RateLimit-Reset", "Retry-After", "X-CSRF-Token"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed in CORS requests.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// HeadersConfig contains security headers applied to every response.
type HeadersConfig struct {
	// Enabled controls whether security headers are written.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// PoweredBy is the X-Powered-By value. Empty omits the header.
	// Default: "FlorkaFun Token Creator"
	PoweredBy string `yaml:"powered_by"`

	// ContentSecurityPolicy is the Content-Security-Policy value.
	// Default: DefaultContentSecurityPolicy
	ContentSecurityPolicy string `yaml:"content_security_policy"`

	// PermissionsPolicy is the Permissions-Policy value.
	// Default: "camera=(), microphone=(), geolocation=()"
	PermissionsPolicy string `yaml:"permissions_policy"`
}

// CSRFConfig controls issuance of the CSRF cookie.
type CSRFConfig struct {
	// Enabled controls whether a token cookie is issued to clients without one.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// CookieName is the name of the token cookie.
	// Default: "csrf-token"
	CookieName string `yaml:"cookie_name"`

	// Secure sets the Secure attribute on the cookie. Enable in production.
	// Default: false
	Secure bool `yaml:"secure"`
}

// NetworksConfig lists candidate RPC endpoints per network segment.
// Ordering is a priority hint: the first candidate is the default fallback.
type NetworksConfig struct {
	// Devnet is the test network segment.
	Devnet NetworkConfig `yaml:"devnet"`

	// Mainnet is the production network segment.
	Mainnet NetworkConfig `yaml:"mainnet"`
}

// NetworkConfig contains the candidates of one segment.
type NetworkConfig struct {
	// Candidates is the ordered list of RPC endpoint URLs.
	// Default: public Solana endpoints for the segment
	Candidates []string `yaml:"candidates"`
}

// Candidates returns the candidate list for the named segment, or nil if
// the segment is unknown.
func (n NetworksConfig) Candidates(segment string) []string {
	switch segment {
	case SegmentDevnet:
		return n.Devnet.Candidates
	case SegmentMainnet:
		return n.Mainnet.Candidates
	}
	return nil
}

// SelectorConfig contains endpoint health probing configuration.
type SelectorConfig struct {
	// CacheTTL is how long a selected endpoint is reused before re-probing.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// ProbeTimeout bounds a single liveness probe.
	// Default: 3s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// ProbeMethod is the JSON-RPC method used as liveness check.
	// Default: "getHealth"
	ProbeMethod string `yaml:"probe_method"`

	// PrewarmSchedule is a cron expression for proactive probe rounds.
	// Empty disables pre-warming.
	// Default: ""
	PrewarmSchedule string `yaml:"prewarm_schedule"`
}

// RPCConfig contains RPC proxy forwarding configuration.
type RPCConfig struct {
	// RequestTimeout bounds each forwarded RPC call.
	// Default: 10s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxBodyBytes limits the size of an inbound RPC request body.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// DefaultSegment is the segment served by the legacy fixed-network route.
	// Options: "devnet", "mainnet"
	// Default: "mainnet"
	DefaultSegment string `yaml:"default_segment"`

	// Generic contains settings of the caller-addressed proxy.
	Generic GenericRPCConfig `yaml:"generic"`
}

// GenericRPCConfig contains settings for the generic RPC proxy.
type GenericRPCConfig struct {
	// Disabled turns off the generic proxy routes.
	// Default: false
	Disabled bool `yaml:"disabled"`

	// AllowedHosts restricts the hosts a caller may address. Empty allows any.
	// Default: []
	AllowedHosts []string `yaml:"allowed_hosts"`
}

// AdmissionConfig contains the fixed-window rate limit policy.
type AdmissionConfig struct {
	// Disabled turns off admission control for API routes.
	// Default: false
	Disabled bool `yaml:"disabled"`

	// Window is the fixed window length.
	// Default: 15m
	Window time.Duration `yaml:"window"`

	// MaxRequests is the number of requests admitted per client per window.
	// Default: 100
	MaxRequests int `yaml:"max_requests"`

	// SweepInterval is the minimum time between opportunistic stale-record
	// sweeps triggered from the request path.
	// Default: 1m
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// SweepSchedule is a cron expression for scheduled sweeps.
	// Default: "@every 5m"
	SweepSchedule string `yaml:"sweep_schedule"`

	// Store selects where quota records live.
	Store QuotaStoreConfig `yaml:"store"`
}

// QuotaStoreConfig selects the quota record store.
type QuotaStoreConfig struct {
	// Backend is the store type.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file for the sqlite backend.
	// Default: "data/quota.db"
	SQLitePath string `yaml:"sqlite_path"`

	// BusyTimeout is the SQLite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// StorageConfig configures the S3-compatible content-addressed backend.
type StorageConfig struct {
	// Endpoint is the S3-compatible API base URL.
	// Default: "https://s3.filebase.com"
	Endpoint string `yaml:"endpoint"`

	// Region is the signing region.
	// Default: "us-east-1"
	Region string `yaml:"region"`

	// Bucket is the destination bucket. Required for uploads.
	Bucket string `yaml:"bucket"`

	// AccessKey is the backend access key. Required for uploads.
	AccessKey string `yaml:"access_key"`

	// SecretKey is the backend secret key. Required for uploads.
	SecretKey string `yaml:"secret_key"`

	// Gateway is the public gateway base; URLs are "{gateway}/{cid}".
	// Required for uploads.
	Gateway string `yaml:"gateway"`

	// ACL is the canned ACL applied to uploaded objects.
	// Default: "public-read"
	ACL string `yaml:"acl"`

	// MaxUploadBytes limits the multipart request size.
	// Default: 10485760 (10MB)
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Timeout bounds one upload against the backend.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// SecretsConfig configures where ${secret:name} references in candidate
// URLs and storage credentials are resolved from. The environment is
// always consulted; a directory of secret files is optional.
type SecretsConfig struct {
	// Dir is a directory holding one file per secret (e.g., a mounted
	// Kubernetes secret). Empty disables file secrets.
	Dir string `yaml:"dir"`

	// Watch clears cached file secrets when files in Dir change.
	// Default: false
	Watch bool `yaml:"watch"`

	// EnvPrefix is prepended to the upper-cased secret name to form the
	// environment variable name.
	// Default: "TOKENGATE_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// CacheTTL is how long a resolved secret is reused.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "tokengate"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "tokengate"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces sampled.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}
