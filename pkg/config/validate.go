package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "proxy.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
//
// Missing storage credentials are not a validation error: the upload relay
// reports them per request so the RPC routes keep working without them.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateNetworks(&cfg.Networks)...)
	errs = append(errs, validateSelector(&cfg.Selector)...)
	errs = append(errs, validateRPC(&cfg.RPC, cfg.Proxy.WriteTimeout)...)
	errs = append(errs, validateAdmission(&cfg.Admission)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateSecrets(&cfg.Secrets)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.MaxHeaderBytes < 0 || cfg.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "max header bytes must be between 0 and 10MB",
		})
	}

	if !strings.HasPrefix(cfg.APIPrefix, "/") {
		errs = append(errs, FieldError{
			Field:   "proxy.api_prefix",
			Message: "api prefix must start with /",
		})
	}

	if cfg.CSRF.Enabled && cfg.CSRF.CookieName == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.csrf.cookie_name",
			Message: "cookie name is required when csrf is enabled",
		})
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "proxy.tls.cert_file",
				Message: "cert file is required when tls is enabled",
			})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "proxy.tls.key_file",
				Message: "key file is required when tls is enabled",
			})
		}
	}
	if cfg.TLS.MinVersion != "1.2" && cfg.TLS.MinVersion != "1.3" {
		errs = append(errs, FieldError{
			Field:   "proxy.tls.min_version",
			Message: fmt.Sprintf("invalid version %q: must be '1.2' or '1.3'", cfg.TLS.MinVersion),
		})
	}
	if cfg.TLS.ReloadInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.tls.reload_interval",
			Message: "reload interval must not be negative",
		})
	}

	return errs
}

func validateNetworks(cfg *NetworksConfig) []FieldError {
	var errs []FieldError

	for _, segment := range []string{SegmentDevnet, SegmentMainnet} {
		field := "networks." + segment + ".candidates"
		candidates := cfg.Candidates(segment)
		if len(candidates) == 0 {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "at least one candidate endpoint is required",
			})
			continue
		}
		for i, raw := range candidates {
			if err := validateHTTPURL(raw); err != nil {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Message: err.Error(),
				})
			}
		}
	}

	return errs
}

func validateSelector(cfg *SelectorConfig) []FieldError {
	var errs []FieldError

	if cfg.CacheTTL <= 0 {
		errs = append(errs, FieldError{
			Field:   "selector.cache_ttl",
			Message: "cache ttl must be positive",
		})
	}
	if cfg.ProbeTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "selector.probe_timeout",
			Message: "probe timeout must be positive",
		})
	}
	if cfg.ProbeMethod == "" {
		errs = append(errs, FieldError{
			Field:   "selector.probe_method",
			Message: "probe method is required",
		})
	}
	if cfg.PrewarmSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PrewarmSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "selector.prewarm_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateRPC(cfg *RPCConfig, writeTimeout time.Duration) []FieldError {
	var errs []FieldError

	if cfg.RequestTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "rpc.request_timeout",
			Message: "request timeout must be positive",
		})
	} else if writeTimeout > 0 && cfg.RequestTimeout >= writeTimeout {
		errs = append(errs, FieldError{
			Field:   "rpc.request_timeout",
			Message: "request timeout must be shorter than proxy.write_timeout",
		})
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "rpc.max_body_bytes",
			Message: "max body bytes must be positive",
		})
	}
	if cfg.DefaultSegment != SegmentDevnet && cfg.DefaultSegment != SegmentMainnet {
		errs = append(errs, FieldError{
			Field:   "rpc.default_segment",
			Message: fmt.Sprintf("invalid segment %q: must be 'devnet' or 'mainnet'", cfg.DefaultSegment),
		})
	}

	return errs
}

func validateAdmission(cfg *AdmissionConfig) []FieldError {
	var errs []FieldError

	if cfg.Window <= 0 {
		errs = append(errs, FieldError{
			Field:   "admission.window",
			Message: "window must be positive",
		})
	}
	if cfg.MaxRequests <= 0 {
		errs = append(errs, FieldError{
			Field:   "admission.max_requests",
			Message: "max requests must be positive",
		})
	}
	if cfg.SweepInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "admission.sweep_interval",
			Message: "sweep interval must not be negative",
		})
	}
	if cfg.SweepSchedule != "" {
		if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "admission.sweep_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	switch cfg.Store.Backend {
	case "memory":
	case "sqlite":
		if cfg.Store.SQLitePath == "" {
			errs = append(errs, FieldError{
				Field:   "admission.store.sqlite_path",
				Message: "sqlite path is required for the sqlite backend",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "admission.store.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Store.Backend),
		})
	}

	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	if err := validateHTTPURL(cfg.Endpoint); err != nil {
		errs = append(errs, FieldError{
			Field:   "storage.endpoint",
			Message: err.Error(),
		})
	}
	if cfg.Gateway != "" {
		if err := validateHTTPURL(cfg.Gateway); err != nil {
			errs = append(errs, FieldError{
				Field:   "storage.gateway",
				Message: err.Error(),
			})
		}
	}
	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "storage.max_upload_bytes",
			Message: "max upload bytes must be positive",
		})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "storage.timeout",
			Message: "timeout must be positive",
		})
	}

	return errs
}

func validateSecrets(cfg *SecretsConfig) []FieldError {
	var errs []FieldError

	if cfg.Watch && cfg.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "secrets.watch",
			Message: "watch requires secrets.dir",
		})
	}
	if cfg.CacheTTL < 0 {
		errs = append(errs, FieldError{
			Field:   "secrets.cache_ttl",
			Message: "cache ttl must not be negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	return nil
}
