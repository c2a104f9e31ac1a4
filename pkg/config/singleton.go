package config

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// current is the process-wide configuration. Readers never block: a reload
// swaps in a fully validated Config and in-flight requests keep the one they
// already loaded.
var current atomic.Pointer[Config]

// ErrAlreadyInitialized is returned by Initialize when a configuration has
// already been installed.
var ErrAlreadyInitialized = errors.New("configuration already initialized")

// Initialize loads the file at path (empty for defaults only), applies
// TOKENGATE_* overrides and installs the result. It succeeds once per
// process; later calls leave the installed config untouched.
func Initialize(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return err
	}
	if !current.CompareAndSwap(nil, cfg) {
		return ErrAlreadyInitialized
	}
	return nil
}

// GetConfig returns the installed configuration, or nil before Initialize.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig installs cfg as-is.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig re-reads path and installs the result. A file that fails to
// load or validate leaves the running configuration in place.
func ReloadConfig(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}
	current.Store(cfg)
	return cfg, nil
}
