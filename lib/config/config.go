// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for the action server.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Server configures the inbound callback listener.
	Server ServerConfig `yaml:"server"`

	// Gateway configures the outbound registration client.
	Gateway GatewayConfig `yaml:"gateway"`

	// Signing configures signature verification.
	Signing SigningConfig `yaml:"signing"`

	// Paths configures file locations.
	Paths PathsConfig `yaml:"paths"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// Per-environment overrides, applied after the base config.
	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains fields that can be overridden per environment.
type Overrides struct {
	Server  *ServerOverrides `yaml:"server,omitempty"`
	Gateway *GatewayConfig   `yaml:"gateway,omitempty"`
	Signing *SigningConfig   `yaml:"signing,omitempty"`
	Log     *LogConfig       `yaml:"log,omitempty"`
}

// ServerOverrides is the per-environment server section. RateLimit is
// a pointer so an override that only touches listen leaves the base
// rate-limit settings alone; the section must appear to change them.
type ServerOverrides struct {
	Listen    string           `yaml:"listen,omitempty"`
	RateLimit *RateLimitConfig `yaml:"rate_limit,omitempty"`
}

// ServerConfig configures the inbound callback listener.
type ServerConfig struct {
	// Listen is the TCP listen address (e.g., "127.0.0.1:5000").
	Listen string `yaml:"listen"`

	// RateLimit configures optional per-client-IP rate limiting.
	// Disabled unless Enabled is true.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig configures per-client-IP token-bucket limiting.
type RateLimitConfig struct {
	Enabled   bool    `yaml:"enabled"`
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// GatewayConfig configures the outbound registration client.
type GatewayConfig struct {
	// BaseURL is the gateway API base
	// (e.g., "https://flowent.example.com/api/v1/gateway").
	BaseURL string `yaml:"base_url"`

	// CallbackBaseURL is the externally reachable base of this
	// server, used to build per-action webhook URLs at registration
	// (e.g., "https://actions.example.com").
	CallbackBaseURL string `yaml:"callback_base_url"`

	// APITokenPath is the file holding the static gateway API token
	// exchanged for a bearer token. "-" reads from stdin.
	APITokenPath string `yaml:"api_token_path"`
}

// SigningConfig configures signature verification.
type SigningConfig struct {
	// KeyPath is the file holding the shared HMAC key. "-" reads
	// from stdin.
	KeyPath string `yaml:"key_path"`

	// ReplayWindowSeconds bounds |now - timestamp| for accepted
	// requests. 0 means the protocol default of 300.
	ReplayWindowSeconds int `yaml:"replay_window_seconds"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// State is the directory for runtime state (the cached gateway
	// session).
	State string `yaml:"state"`

	// ActionManifest is an optional JSONC file describing the
	// exposed actions. Empty means the binary's builtin definitions
	// are used.
	ActionManifest string `yaml:"action_manifest"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// Default returns the default configuration. These defaults exist to
// give every field a sensible zero-value base; the config file is
// still required.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Listen: "127.0.0.1:5000",
			RateLimit: RateLimitConfig{
				PerSecond: 25,
				Burst:     50,
			},
		},
		Signing: SigningConfig{
			ReplayWindowSeconds: 300,
		},
		Paths: PathsConfig{
			State: "${HOME}/.cache/flowent-action-server",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the FLOWENT_CONFIG environment
// variable. There are no fallbacks — if FLOWENT_CONFIG is not set,
// this fails.
func Load() (*Config, error) {
	path := os.Getenv("FLOWENT_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("FLOWENT_CONFIG environment variable not set; " +
			"set it to the path of your config file, or use --config")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. The config
// file is the single source of truth; environment variables do not
// override config values. The only expansion performed is ${VAR} in
// paths for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.Server != nil {
		if overrides.Server.Listen != "" {
			c.Server.Listen = overrides.Server.Listen
		}
		if limit := overrides.Server.RateLimit; limit != nil {
			// The section's presence is the override: enabled takes
			// the section's value, rates fall back to base when
			// unset.
			c.Server.RateLimit.Enabled = limit.Enabled
			if limit.PerSecond != 0 {
				c.Server.RateLimit.PerSecond = limit.PerSecond
			}
			if limit.Burst != 0 {
				c.Server.RateLimit.Burst = limit.Burst
			}
		}
	}
	if overrides.Gateway != nil {
		if overrides.Gateway.BaseURL != "" {
			c.Gateway.BaseURL = overrides.Gateway.BaseURL
		}
		if overrides.Gateway.CallbackBaseURL != "" {
			c.Gateway.CallbackBaseURL = overrides.Gateway.CallbackBaseURL
		}
		if overrides.Gateway.APITokenPath != "" {
			c.Gateway.APITokenPath = overrides.Gateway.APITokenPath
		}
	}
	if overrides.Signing != nil {
		if overrides.Signing.KeyPath != "" {
			c.Signing.KeyPath = overrides.Signing.KeyPath
		}
		if overrides.Signing.ReplayWindowSeconds != 0 {
			c.Signing.ReplayWindowSeconds = overrides.Signing.ReplayWindowSeconds
		}
	}
	if overrides.Log != nil && overrides.Log.Level != "" {
		c.Log.Level = overrides.Log.Level
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	c.Paths.State = expandVars(c.Paths.State)
	c.Paths.ActionManifest = expandVars(c.Paths.ActionManifest)
	c.Signing.KeyPath = expandVars(c.Signing.KeyPath)
	c.Gateway.APITokenPath = expandVars(c.Gateway.APITokenPath)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Server.Listen == "" {
		errs = append(errs, fmt.Errorf("server.listen is required"))
	}
	if c.Signing.KeyPath == "" {
		errs = append(errs, fmt.Errorf("signing.key_path is required"))
	}
	if c.Signing.ReplayWindowSeconds < 0 {
		errs = append(errs, fmt.Errorf("signing.replay_window_seconds must be >= 0"))
	}
	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.PerSecond <= 0 {
			errs = append(errs, fmt.Errorf("server.rate_limit.per_second must be > 0 when enabled"))
		}
		if c.Server.RateLimit.Burst <= 0 {
			errs = append(errs, fmt.Errorf("server.rate_limit.burst must be > 0 when enabled"))
		}
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ReplayWindow returns the configured replay window as a Duration.
func (c *Config) ReplayWindow() time.Duration {
	if c.Signing.ReplayWindowSeconds == 0 {
		return 300 * time.Second
	}
	return time.Duration(c.Signing.ReplayWindowSeconds) * time.Second
}

// LogLevel parses Log.Level into a slog.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
}
