package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Inventory  string           `mapstructure:"inventory"`
	ConfigsDir string           `mapstructure:"configs_dir"`
	Deploy     DeployConfig     `mapstructure:"deploy"`
	Log        LogConfig        `mapstructure:"log"`
	MockDevice MockDeviceConfig `mapstructure:"mock_device"`
}

// DeployConfig holds deployment run configuration.
type DeployConfig struct {
	// MaxConcurrent bounds simultaneously in-flight device sessions.
	MaxConcurrent int `mapstructure:"max_concurrent"`

	// Timeout bounds each protocol round trip per device.
	Timeout time.Duration `mapstructure:"timeout"`

	// VerifySSL enables strict TLS verification towards devices.
	// Off by default: lab devices ship self-signed certificates.
	VerifySSL bool `mapstructure:"verify_ssl"`

	// DryRun stages and diffs on every device but aborts instead of
	// committing.
	DryRun bool `mapstructure:"dry_run"`

	// ShowDiff prints per-device diff text after the summary table.
	ShowDiff bool `mapstructure:"show_diff"`

	// Limit restricts deployment to hosts directly under the named
	// inventory groups.
	Limit []string `mapstructure:"limit"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MockDeviceConfig holds the simulated device listener configuration.
type MockDeviceConfig struct {
	Listen   string `mapstructure:"listen"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("inventory", "inventory.yml")
	v.SetDefault("configs_dir", "intended/configs")
	v.SetDefault("deploy.max_concurrent", 10)
	v.SetDefault("deploy.timeout", "30s")
	v.SetDefault("deploy.verify_ssl", false)
	v.SetDefault("deploy.dry_run", false)
	v.SetDefault("deploy.show_diff", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("mock_device.listen", "127.0.0.1:8443")
	v.SetDefault("mock_device.username", "admin")
	v.SetDefault("mock_device.password", "admin")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("FABRICPUSH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
// Logs go to stderr so the report table on stdout stays parseable.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
