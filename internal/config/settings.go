package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultLogLevel        = "info"
	DefaultMonitorInterval = 5 * time.Second
)

// SettingsConfig holds general application settings.
type SettingsConfig struct {
	Seed            *uint64               `yaml:"seed,omitempty"`
	LogLevel        string                `yaml:"log_level,omitempty"`
	InternalMetrics InternalMetricsConfig `yaml:"internal_metrics"`
	Monitor         MonitorConfig         `yaml:"monitor"`
}

// InternalMetricsConfig controls the exporter's self-instrumentation.
type InternalMetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MonitorConfig controls the process resource monitor.
type MonitorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Validate applies defaults and validates settings configuration.
func (s *SettingsConfig) Validate() error {
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if _, err := zap.ParseAtomicLevel(s.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if s.Monitor.Interval == 0 {
		s.Monitor.Interval = DefaultMonitorInterval
	}
	if s.Monitor.Interval < 0 {
		return fmt.Errorf("monitor interval must be positive")
	}

	return nil
}
