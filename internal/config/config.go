// Package config provides configuration management for the
// remediation CLI.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the CLI configuration: run-wide settings from the
// DEFAULT section and one account per remaining section.
type Config struct {
	Timezone string
	Timeout  string
	LogLevel string
	Metrics  MetricsConfig
	Accounts []AccountConfig
}

// AccountConfig defines one credential set. Accounts are tried in
// file order when resolving an address.
type AccountConfig struct {
	Name    string
	User    string
	Pass    string
	Server  string
	Version string
}

// MetricsConfig holds configuration for Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Address string
	Path    string
}

// Default returns a Config with sensible default values.
func Default() Config {
	return Config{
		Timezone: "UTC",
		Timeout:  "60s",
		LogLevel: "info",
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9101",
			Path:    "/metrics",
		},
	}
}

// Validate checks that the configuration is valid and returns an
// error if not.
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return errors.New("at least one account is required")
	}

	for i, a := range c.Accounts {
		if a.User == "" {
			return fmt.Errorf("account %q (%d): user is required", a.Name, i)
		}
		if a.Pass == "" {
			return fmt.Errorf("account %q (%d): pass is required", a.Name, i)
		}
		if a.Server == "" {
			return fmt.Errorf("account %q (%d): server is required", a.Name, i)
		}
	}

	if c.Timezone == "" {
		return errors.New("timezone is required")
	}

	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			return errors.New("metrics address is required when metrics are enabled")
		}
		if c.Metrics.Path == "" {
			return errors.New("metrics path is required when metrics are enabled")
		}
	}

	return nil
}

// RequestTimeout returns the HTTP request timeout as a time.Duration.
// Returns 60 seconds if not configured or invalid.
func (c *Config) RequestTimeout() time.Duration {
	if c.Timeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}
