package config

import "time"

// Segment names recognized in configuration.
const (
	SegmentDevnet  = "devnet"
	SegmentMainnet = "mainnet"
)

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultListenAddress         = "127.0.0.1:8080"
	DefaultReadTimeout           = 30 * time.Second
	DefaultWriteTimeout          = 60 * time.Second
	DefaultIdleTimeout           = 120 * time.Second
	DefaultShutdownTimeout       = 30 * time.Second
	DefaultMaxHeaderBytes        = 1048576 // 1MB
	DefaultAPIPrefix             = "/api"
	DefaultTrustForwardedHeaders = true

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Header defaults
	DefaultHeadersEnabled        = true
	DefaultPoweredBy             = "FlorkaFun Token Creator"
	DefaultContentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-eval' 'unsafe-inline'; " +
		"style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' data:; " +
		"connect-src 'self' https: wss:; frame-ancestors 'none'"
	DefaultPermissionsPolicy = "camera=(), microphone=(), geolocation=()"

	// TLS defaults
	DefaultTLSMinVersion     = "1.2"
	DefaultTLSReloadInterval = 5 * time.Minute

	// CSRF defaults
	DefaultCSRFEnabled    = true
	DefaultCSRFCookieName = "csrf-token"

	// Selector defaults
	DefaultCacheTTL     = 5 * time.Minute
	DefaultProbeTimeout = 3 * time.Second
	DefaultProbeMethod  = "getHealth"

	// RPC defaults
	DefaultRPCRequestTimeout = 10 * time.Second
	DefaultRPCMaxBodyBytes   = int64(1048576)
	DefaultRPCSegment        = SegmentMainnet

	// Admission defaults
	DefaultAdmissionWindow        = 15 * time.Minute
	DefaultAdmissionMaxRequests   = 100
	DefaultAdmissionSweepInterval = time.Minute
	DefaultAdmissionSweepSchedule = "@every 5m"
	DefaultQuotaStoreBackend      = "memory"
	DefaultQuotaSQLitePath        = "data/quota.db"
	DefaultQuotaBusyTimeout       = 5 * time.Second

	// Storage defaults
	DefaultStorageEndpoint       = "https://s3.filebase.com"
	DefaultStorageRegion         = "us-east-1"
	DefaultStorageACL            = "public-read"
	DefaultStorageMaxUploadBytes = int64(10 << 20)
	DefaultStorageTimeout        = 30 * time.Second

	// Secrets defaults
	DefaultSecretsEnvPrefix = "TOKENGATE_SECRET_"
	DefaultSecretsCacheTTL  = 5 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultMetricsEnabled      = true
	DefaultPrometheusPath      = "/metrics"
	DefaultMetricsNamespace    = "tokengate"
	DefaultTracingServiceName  = "tokengate"
	DefaultTracingSamplingRate = 1.0
)

// DefaultDevnetCandidates are the public test network endpoints.
var DefaultDevnetCandidates = []string{
	"https://api.devnet.solana.com",
	"https://solana-devnet-rpc.allthatnode.com",
}

// DefaultMainnetCandidates are the public production network endpoints.
var DefaultMainnetCandidates = []string{
	"https://rpc.ankr.com/solana",
	"https://solana-api.projectserum.com",
	"https://api.mainnet-beta.solana.com",
	"https://solana-mainnet-rpc.allthatnode.com",
}

// Default returns a configuration populated with every default value.
// YAML files are decoded on top of it so that boolean options whose
// default is true survive when a file omits them.
func Default() *Config {
	cfg := &Config{}
	cfg.Proxy.TrustForwardedHeaders = DefaultTrustForwardedHeaders
	cfg.Proxy.CORS.Enabled = DefaultCORSEnabled
	cfg.Proxy.Headers.Enabled = DefaultHeadersEnabled
	cfg.Proxy.Headers.PoweredBy = DefaultPoweredBy
	cfg.Proxy.CSRF.Enabled = DefaultCSRFEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = DefaultListenAddress
	}
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Proxy.WriteTimeout == 0 {
		cfg.Proxy.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Proxy.APIPrefix == "" {
		cfg.Proxy.APIPrefix = DefaultAPIPrefix
	}
	applyCORSDefaults(&cfg.Proxy.CORS)
	if cfg.Proxy.Headers.ContentSecurityPolicy == "" {
		cfg.Proxy.Headers.ContentSecurityPolicy = DefaultContentSecurityPolicy
	}
	if cfg.Proxy.Headers.PermissionsPolicy == "" {
		cfg.Proxy.Headers.PermissionsPolicy = DefaultPermissionsPolicy
	}
	if cfg.Proxy.CSRF.CookieName == "" {
		cfg.Proxy.CSRF.CookieName = DefaultCSRFCookieName
	}
	if cfg.Proxy.TLS.MinVersion == "" {
		cfg.Proxy.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Proxy.TLS.ReloadInterval == 0 {
		cfg.Proxy.TLS.ReloadInterval = DefaultTLSReloadInterval
	}

	// Networks
	if len(cfg.Networks.Devnet.Candidates) == 0 {
		cfg.Networks.Devnet.Candidates = append([]string(nil), DefaultDevnetCandidates...)
	}
	if len(cfg.Networks.Mainnet.Candidates) == 0 {
		cfg.Networks.Mainnet.Candidates = append([]string(nil), DefaultMainnetCandidates...)
	}

	// Selector
	if cfg.Selector.CacheTTL == 0 {
		cfg.Selector.CacheTTL = DefaultCacheTTL
	}
	if cfg.Selector.ProbeTimeout == 0 {
		cfg.Selector.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Selector.ProbeMethod == "" {
		cfg.Selector.ProbeMethod = DefaultProbeMethod
	}

	// RPC
	if cfg.RPC.RequestTimeout == 0 {
		cfg.RPC.RequestTimeout = DefaultRPCRequestTimeout
	}
	if cfg.RPC.MaxBodyBytes == 0 {
		cfg.RPC.MaxBodyBytes = DefaultRPCMaxBodyBytes
	}
	if cfg.RPC.DefaultSegment == "" {
		cfg.RPC.DefaultSegment = DefaultRPCSegment
	}

	// Admission
	if cfg.Admission.Window == 0 {
		cfg.Admission.Window = DefaultAdmissionWindow
	}
	if cfg.Admission.MaxRequests == 0 {
		cfg.Admission.MaxRequests = DefaultAdmissionMaxRequests
	}
	if cfg.Admission.SweepInterval == 0 {
		cfg.Admission.SweepInterval = DefaultAdmissionSweepInterval
	}
	if cfg.Admission.SweepSchedule == "" {
		cfg.Admission.SweepSchedule = DefaultAdmissionSweepSchedule
	}
	if cfg.Admission.Store.Backend == "" {
		cfg.Admission.Store.Backend = DefaultQuotaStoreBackend
	}
	if cfg.Admission.Store.SQLitePath == "" {
		cfg.Admission.Store.SQLitePath = DefaultQuotaSQLitePath
	}
	if cfg.Admission.Store.BusyTimeout == 0 {
		cfg.Admission.Store.BusyTimeout = DefaultQuotaBusyTimeout
	}

	// Storage
	if cfg.Storage.Endpoint == "" {
		cfg.Storage.Endpoint = DefaultStorageEndpoint
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = DefaultStorageRegion
	}
	if cfg.Storage.ACL == "" {
		cfg.Storage.ACL = DefaultStorageACL
	}
	if cfg.Storage.MaxUploadBytes == 0 {
		cfg.Storage.MaxUploadBytes = DefaultStorageMaxUploadBytes
	}
	if cfg.Storage.Timeout == 0 {
		cfg.Storage.Timeout = DefaultStorageTimeout
	}

	// Secrets
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	if cfg.Secrets.CacheTTL == 0 {
		cfg.Secrets.CacheTTL = DefaultSecretsCacheTTL
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
}

func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "X-Request-ID", "X-CSRF-Token"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
			"X-CSRF-Token",
		}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
