package config

import (
	"fmt"
	"time"

	"go.yaml.in/yaml/v4"
)

const (
	// Prometheus defaults
	DefaultPrometheusPort = 8181
	DefaultPrometheusPath = "/metrics"

	// OTEL defaults
	DefaultOTELPushInterval = 10 * time.Second
	DefaultOTELTransport    = "grpc"
	DefaultOTELHost         = "localhost"
	DefaultOTELPortGRPC     = 4317
	DefaultOTELPortHTTP     = 4318
	DefaultServiceName      = "scrapebox"
	DefaultServiceVersion   = "dev"
)

// ExportConfig defines how metrics are exposed.
type ExportConfig struct {
	Prometheus *PrometheusExportConfig `yaml:"prometheus,omitempty"`
	OTEL       *OTELExportConfig       `yaml:"otel,omitempty"`
}

// Validate applies defaults and validates export configuration.
func (e *ExportConfig) Validate() error {
	// Default to Prometheus enabled if no exporters configured
	if e.Prometheus == nil && e.OTEL == nil {
		e.Prometheus = &PrometheusExportConfig{Enabled: true, Port: DefaultPrometheusPort}
	}

	if e.Prometheus != nil && e.Prometheus.Enabled {
		if err := e.Prometheus.Validate(); err != nil {
			return err
		}
	}

	if e.OTEL != nil && e.OTEL.Enabled {
		if err := e.OTEL.Validate(); err != nil {
			return err
		}
	}

	if !e.PrometheusEnabled() && !e.OTELEnabled() {
		return fmt.Errorf("at least one exporter must be enabled")
	}

	return nil
}

// PrometheusEnabled reports whether the pull endpoint is enabled.
func (e *ExportConfig) PrometheusEnabled() bool {
	return e.Prometheus != nil && e.Prometheus.Enabled
}

// OTELEnabled reports whether the OTLP push exporter is enabled.
func (e *ExportConfig) OTELEnabled() bool {
	return e.OTEL != nil && e.OTEL.Enabled
}

// PrometheusExportConfig defines Prometheus pull endpoint settings.
type PrometheusExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// UnmarshalYAML fills in the default port before decoding, so an explicit
// `port: 0` survives and is rejected when the exporter binds.
func (c *PrometheusExportConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain PrometheusExportConfig
	p := plain{Port: DefaultPrometheusPort}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = PrometheusExportConfig(p)
	return nil
}

// Validate applies the default path and validates Prometheus configuration.
// The port is left as given and checked when the exporter binds.
func (c *PrometheusExportConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Path == "" {
		c.Path = DefaultPrometheusPath
	}
	if c.Path[0] != '/' {
		return fmt.Errorf("invalid prometheus path: %q (must start with /)", c.Path)
	}

	return nil
}

// Addr returns the listen address.
func (c *PrometheusExportConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// OTELExportConfig defines OTEL push settings.
type OTELExportConfig struct {
	Enabled   bool              `yaml:"enabled"`
	Transport string            `yaml:"transport"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	Interval  time.Duration     `yaml:"interval"`
	Resource  map[string]string `yaml:"resource,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`
}

// Validate applies defaults and validates OTEL configuration.
func (c *OTELExportConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Transport == "" {
		c.Transport = DefaultOTELTransport
	}
	if c.Transport != "grpc" && c.Transport != "http" {
		return fmt.Errorf("invalid transport: %s (must be grpc or http)", c.Transport)
	}

	if c.Host == "" {
		c.Host = DefaultOTELHost
	}

	// Apply port default based on transport
	if c.Port == 0 {
		if c.Transport == "grpc" {
			c.Port = DefaultOTELPortGRPC
		} else {
			c.Port = DefaultOTELPortHTTP
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid otel port: %d", c.Port)
	}

	if c.Interval == 0 {
		c.Interval = DefaultOTELPushInterval
	}
	if c.Interval < 0 {
		return fmt.Errorf("otel interval must be positive")
	}

	if c.Resource == nil {
		c.Resource = make(map[string]string)
	}
	if _, exists := c.Resource["service.name"]; !exists {
		c.Resource["service.name"] = DefaultServiceName
	}
	if _, exists := c.Resource["service.version"]; !exists {
		c.Resource["service.version"] = DefaultServiceVersion
	}

	return nil
}

// GetEndpoint returns the full endpoint address.
func (c *OTELExportConfig) GetEndpoint() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
