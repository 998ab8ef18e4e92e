package config

import "fmt"

// Config holds the complete application configuration.
type Config struct {
	Export    ExportConfig     `yaml:"export"`
	Scenarios []ScenarioConfig `yaml:"scenarios"`
	Settings  SettingsConfig   `yaml:"settings"`
}

// Default returns a configuration that exposes Prometheus metrics on the
// default port and runs no scenarios.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Prometheus: &PrometheusExportConfig{
				Enabled: true,
				Port:    DefaultPrometheusPort,
				Path:    DefaultPrometheusPath,
			},
		},
	}
}

// Validate applies defaults and validates the whole configuration.
func (c *Config) Validate() error {
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("at least one scenario must be defined")
	}

	for i := range c.Scenarios {
		if err := c.Scenarios[i].Validate(); err != nil {
			return fmt.Errorf("scenario at index %d: %w", i, err)
		}
	}

	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	return nil
}
