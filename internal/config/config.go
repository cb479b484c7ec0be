// Package config loads and validates the coordination layer configuration.
// Settings come from a YAML config file, CODEX_* environment variables, and
// built-in defaults, merged through viper.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete coordination configuration
type Config struct {
	Coordination CoordinationConfig `mapstructure:"coordination"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// CoordinationConfig controls the shared filesystem state
type CoordinationConfig struct {
	// Root is the directory that holds all team state (rosters, queues,
	// mailboxes). Empty means use the default: ~/.codex
	Root string `mapstructure:"root"`
	// LockTimeoutMs bounds how long a store waits for a document lock
	// before giving up (in milliseconds)
	LockTimeoutMs int `mapstructure:"lock_timeout_ms"`
	// WaitPollMs is how often WaitForTeammates re-reads the roster
	// while waiting for members to finish (in milliseconds)
	WaitPollMs int `mapstructure:"wait_poll_ms"`
}

// LoggingConfig controls structured logging behavior
type LoggingConfig struct {
	// Enabled turns the coordination log on or off
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum log level: debug, info, warn, error
	Level string `mapstructure:"level"`
}

// LockTimeout returns the lock timeout as a time.Duration
func (c *CoordinationConfig) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMs) * time.Millisecond
}

// WaitPoll returns the roster poll interval as a time.Duration
func (c *CoordinationConfig) WaitPoll() time.Duration {
	return time.Duration(c.WaitPollMs) * time.Millisecond
}

// ResolveRoot returns the coordination root, falling back to ~/.codex
// when no explicit root is configured.
func (c *CoordinationConfig) ResolveRoot() string {
	if c.Root != "" {
		return c.Root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codex"
	}
	return filepath.Join(home, ".codex")
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Coordination: CoordinationConfig{
			Root:          "", // Empty means use default: ~/.codex
			LockTimeoutMs: 5000,
			WaitPollMs:    500,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("coordination.root", defaults.Coordination.Root)
	viper.SetDefault("coordination.lock_timeout_ms", defaults.Coordination.LockTimeoutMs)
	viper.SetDefault("coordination.wait_poll_ms", defaults.Coordination.WaitPollMs)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
}

// Load unmarshals the current viper state into a validated Config
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codex")
	}
	// Fall back to ~/.config/codex
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "codex")
}
