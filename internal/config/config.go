package config

import (
	"fmt"
	"strings"

	"github.com/reliefvalve/prv/internal/relay"
)

// Config represents the complete application configuration, merged from
// defaults, an optional config file, PRV_ environment variables and flags
// (lowest to highest precedence).
type Config struct {
	Relay   RelayConfig   `mapstructure:"relay" yaml:"relay"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// RelayConfig contains the rate limiting parameters
type RelayConfig struct {
	// Limit is the number of lines admitted per window; 0 disables limiting
	Limit int `mapstructure:"limit" yaml:"limit"`

	// Window is the window length in seconds
	Window int `mapstructure:"window" yaml:"window"`

	// WriteBuffer is the behaviour if the write buffer is full.
	// Accepted for compatibility; the relay does not consult it.
	WriteBuffer string `mapstructure:"write_buffer" yaml:"write_buffer"`

	// Verbose reports discarded lines on stderr
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled starts the Prometheus exporter for the duration of the run
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the exporter port; 0 picks a free port
	Port int `mapstructure:"port" yaml:"port"`
}

var logLevels = map[string]bool{
	"trace":   true,
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks value ranges that the flag parser cannot enforce for
// config files and environment variables.
func (c *Config) Validate() error {
	if c.Relay.Limit < 0 {
		return fmt.Errorf("relay.limit must be >= 0, got %d", c.Relay.Limit)
	}
	if c.Relay.Window < 0 {
		return fmt.Errorf("relay.window must be >= 0, got %d", c.Relay.Window)
	}
	if strings.TrimSpace(c.Relay.WriteBuffer) == "" {
		return fmt.Errorf("relay.write_buffer must not be empty")
	}
	if level := strings.ToLower(strings.TrimSpace(c.Logging.Level)); level != "" && !logLevels[level] {
		return fmt.Errorf("logging.level %q is not one of trace, debug, info, warn, error", c.Logging.Level)
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port)
	}
	return nil
}

// RelayConfig converts the validated settings for the relay.
func (c *Config) RelayConfig() relay.Config {
	return relay.Config{
		Limit:       uint64(c.Relay.Limit),
		Window:      uint64(c.Relay.Window),
		Verbose:     c.Relay.Verbose,
		WriteBuffer: relay.WriteBufferPolicy(strings.TrimSpace(c.Relay.WriteBuffer)),
	}
}
