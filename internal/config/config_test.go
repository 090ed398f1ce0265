package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.BackoffBase)
	assert.Equal(t, BackoffExponential, cfg.BackoffStrategy)
	assert.Equal(t, 0.75, cfg.WarningThreshold)
	assert.Equal(t, 0.90, cfg.CriticalThreshold)
	assert.Equal(t, 100, cfg.MaxConflicts)

	require.NoError(t, cfg.Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("batch_size: 25\nbackoff_strategy: linear\nsync_interval: 2m\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, BackoffLinear, cfg.BackoffStrategy)
	assert.Equal(t, 2*time.Minute, cfg.SyncInterval)
	// Untouched fields keep defaults.
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 0.90, cfg.CriticalThreshold)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch_size: [oops"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, "batch_size"},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, "max_retries"},
		{"zero backoff base", func(c *Config) { c.BackoffBase = 0 }, "backoff_base"},
		{"bad strategy", func(c *Config) { c.BackoffStrategy = "fibonacci" }, "backoff_strategy"},
		{"warning too high", func(c *Config) { c.WarningThreshold = 1.5 }, "warning_threshold"},
		{"critical below warning", func(c *Config) { c.CriticalThreshold = 0.5 }, "critical_threshold"},
		{"zero conflicts", func(c *Config) { c.MaxConflicts = 0 }, "max_conflicts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
