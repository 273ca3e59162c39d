package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Config Loading Tests
// =============================================================================

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "inventory.yml", cfg.Inventory)
	assert.Equal(t, "intended/configs", cfg.ConfigsDir)
	assert.Equal(t, 10, cfg.Deploy.MaxConcurrent)
	assert.Equal(t, 30*time.Second, cfg.Deploy.Timeout)
	assert.False(t, cfg.Deploy.VerifySSL)
	assert.False(t, cfg.Deploy.DryRun)
	assert.False(t, cfg.Deploy.ShowDiff)
	assert.Empty(t, cfg.Deploy.Limit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:8443", cfg.MockDevice.Listen)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)

	configContent := `
inventory: "fleet/inventory.yml"
configs_dir: "fleet/configs"

deploy:
  max_concurrent: 3
  timeout: 10s
  verify_ssl: true
  dry_run: true
  show_diff: true
  limit:
    - groupA
    - groupB

log:
  level: "debug"
  format: "json"
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(configContent), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "fleet/inventory.yml", cfg.Inventory)
	assert.Equal(t, "fleet/configs", cfg.ConfigsDir)
	assert.Equal(t, 3, cfg.Deploy.MaxConcurrent)
	assert.Equal(t, 10*time.Second, cfg.Deploy.Timeout)
	assert.True(t, cfg.Deploy.VerifySSL)
	assert.True(t, cfg.Deploy.DryRun)
	assert.True(t, cfg.Deploy.ShowDiff)
	assert.Equal(t, []string{"groupA", "groupB"}, cfg.Deploy.Limit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	clearEnv(t)

	t.Setenv("FABRICPUSH_DEPLOY_MAX_CONCURRENT", "2")
	t.Setenv("FABRICPUSH_DEPLOY_DRY_RUN", "true")
	t.Setenv("FABRICPUSH_LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Deploy.MaxConcurrent)
	assert.True(t, cfg.Deploy.DryRun)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	clearEnv(t)

	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("deploy: [not a mapping"), 0644))

	_, err := LoadConfig(tmpFile)

	assert.Error(t, err)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Deploy.MaxConcurrent)
}

// =============================================================================
// Logger Setup Tests
// =============================================================================

func TestSetupLogger_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		cfg := &Config{Log: LogConfig{Level: level, Format: "text"}}
		assert.NotNil(t, SetupLogger(cfg))
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"FABRICPUSH_INVENTORY",
		"FABRICPUSH_CONFIGS_DIR",
		"FABRICPUSH_DEPLOY_MAX_CONCURRENT",
		"FABRICPUSH_DEPLOY_TIMEOUT",
		"FABRICPUSH_DEPLOY_DRY_RUN",
		"FABRICPUSH_DEPLOY_SHOW_DIFF",
		"FABRICPUSH_LOG_LEVEL",
		"FABRICPUSH_LOG_FORMAT",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}
