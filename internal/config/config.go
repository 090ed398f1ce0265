// Package config holds the engine configuration with defaults and optional
// YAML file loading.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BackoffStrategy selects the retry delay growth function.
type BackoffStrategy string

const (
	// BackoffExponential grows delays as base * 2^attempts.
	BackoffExponential BackoffStrategy = "exponential"
	// BackoffLinear grows delays as base * attempts.
	BackoffLinear BackoffStrategy = "linear"
)

// Config carries all tunables of the sync engine.
type Config struct {
	// BatchSize bounds how many operations one sync run processes at a time.
	BatchSize int `yaml:"batch_size"`

	// MaxRetries is the default retry budget for queued operations.
	MaxRetries int `yaml:"max_retries"`

	// BackoffBase is the base delay between retry attempts.
	BackoffBase time.Duration `yaml:"backoff_base"`

	// BackoffStrategy is exponential or linear.
	BackoffStrategy BackoffStrategy `yaml:"backoff_strategy"`

	// RequestTimeout bounds each transport call.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// SyncInterval drives the periodic sync timer while online.
	SyncInterval time.Duration `yaml:"sync_interval"`

	// ProbeInterval drives the connectivity quality probe.
	ProbeInterval time.Duration `yaml:"probe_interval"`

	// ProbeTimeout bounds one connectivity probe round trip.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// QuotaPollInterval drives the storage usage poll.
	QuotaPollInterval time.Duration `yaml:"quota_poll_interval"`

	// WarningThreshold is the usage fraction that raises a quota warning.
	WarningThreshold float64 `yaml:"warning_threshold"`

	// CriticalThreshold is the usage fraction that raises a critical event.
	CriticalThreshold float64 `yaml:"critical_threshold"`

	// MaxConflicts bounds the active conflict set.
	MaxConflicts int `yaml:"max_conflicts"`
}

// Default returns the engine defaults.
func Default() Config {
	return Config{
		BatchSize:         10,
		MaxRetries:        5,
		BackoffBase:       2 * time.Second,
		BackoffStrategy:   BackoffExponential,
		RequestTimeout:    30 * time.Second,
		SyncInterval:      30 * time.Second,
		ProbeInterval:     15 * time.Second,
		ProbeTimeout:      5 * time.Second,
		QuotaPollInterval: time.Minute,
		WarningThreshold:  0.75,
		CriticalThreshold: 0.90,
		MaxConflicts:      100,
	}
}

// Load reads a YAML config file and overlays it on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be positive, got %d", c.MaxRetries)
	}
	if c.BackoffBase <= 0 {
		return fmt.Errorf("backoff_base must be positive, got %s", c.BackoffBase)
	}
	if c.BackoffStrategy != BackoffExponential && c.BackoffStrategy != BackoffLinear {
		return fmt.Errorf("unknown backoff_strategy %q", c.BackoffStrategy)
	}
	if c.WarningThreshold <= 0 || c.WarningThreshold >= 1 {
		return fmt.Errorf("warning_threshold must be in (0, 1), got %v", c.WarningThreshold)
	}
	if c.CriticalThreshold <= c.WarningThreshold || c.CriticalThreshold >= 1 {
		return fmt.Errorf("critical_threshold must be in (warning_threshold, 1), got %v", c.CriticalThreshold)
	}
	if c.MaxConflicts <= 0 {
		return fmt.Errorf("max_conflicts must be positive, got %d", c.MaxConflicts)
	}
	return nil
}
