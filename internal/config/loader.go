// Package config provides layered configuration for prv:
// Layer 1: built-in defaults
// Layer 2: optional YAML config file (explicit path, XDG config dir, ./config)
// Layer 3: PRV_ environment variables
// Layer 4: command line flags
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// AppName names the XDG config directory and the binary.
	AppName = "prv"

	// EnvPrefix is prepended to every environment override, e.g. PRV_RELAY_LIMIT.
	EnvPrefix = "PRV"
)

// SetDefaults registers default values. Every key must have a default so
// AutomaticEnv can resolve its environment override.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("relay.limit", 0)
	v.SetDefault("relay.window", 1)
	v.SetDefault("relay.write_buffer", "block")
	v.SetDefault("relay.verbose", false)

	v.SetDefault("logging.level", "warn")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
}

// Prepare wires config file discovery and environment overrides into v.
// An empty cfgFile searches the XDG config dir and ./config.
func Prepare(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if dir := gfconfig.GetAppConfigDir(AppName); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath("./config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// ReadFile reads the config file if one exists. It returns the file used, or
// "" when none was found.
func ReadFile(v *viper.Viper) (string, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes and validates the merged settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	dir := gfconfig.GetAppConfigDir(AppName)
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}
