package config

import (
	"fmt"
	"math"
	"time"

	"go.yaml.in/yaml/v4"
)

// ScenarioType names a built-in metric scenario.
type ScenarioType string

const (
	ScenarioRandomRange ScenarioType = "random_range"
	ScenarioMeals       ScenarioType = "meals"
	ScenarioWildlife    ScenarioType = "wildlife"
)

// Scenario interval defaults
var (
	DefaultRandomRangeInterval = IntervalConfig{Min: 1 * time.Second, Max: 5 * time.Second}
	DefaultMealsInterval       = IntervalConfig{Min: 100 * time.Millisecond, Max: 3 * time.Second}
	DefaultWildlifeInterval    = IntervalConfig{Min: 10 * time.Second, Max: 10 * time.Second}
)

// ScenarioConfig defines one metric-producing loop.
type ScenarioConfig struct {
	Type     ScenarioType   `yaml:"type"`
	Low      float64        `yaml:"low,omitempty"`
	High     float64        `yaml:"high,omitempty"`
	Interval IntervalConfig `yaml:"interval,omitempty"`
}

// Validate applies defaults and validates the scenario.
func (s *ScenarioConfig) Validate() error {
	switch s.Type {
	case ScenarioRandomRange:
		if math.IsNaN(s.Low) || math.IsNaN(s.High) || math.IsInf(s.Low, 0) || math.IsInf(s.High, 0) {
			return fmt.Errorf("random_range bounds must be finite numbers")
		}
		if s.Low > s.High {
			return fmt.Errorf("random_range low %v is greater than high %v", s.Low, s.High)
		}
		s.Interval.applyDefault(DefaultRandomRangeInterval)
	case ScenarioMeals:
		s.Interval.applyDefault(DefaultMealsInterval)
	case ScenarioWildlife:
		s.Interval.applyDefault(DefaultWildlifeInterval)
	case "":
		return fmt.Errorf("type cannot be empty")
	default:
		return fmt.Errorf("unknown scenario type: %s", s.Type)
	}

	return s.Interval.Validate()
}

// IntervalConfig bounds the random pause between two scenario steps.
type IntervalConfig struct {
	Min time.Duration
	Max time.Duration
}

// UnmarshalYAML handles both simple (10s) and detailed (min/max) forms.
func (i *IntervalConfig) UnmarshalYAML(value *yaml.Node) error {
	// Try simple duration form first
	var simple time.Duration
	if err := value.Decode(&simple); err == nil {
		i.Min = simple
		i.Max = simple
		return nil
	}

	// Fall back to detailed form
	type intervalConfig struct {
		Min time.Duration `yaml:"min"`
		Max time.Duration `yaml:"max"`
	}
	var detailed intervalConfig
	if err := value.Decode(&detailed); err != nil {
		return err
	}
	i.Min = detailed.Min
	i.Max = detailed.Max
	return nil
}

// Validate checks that the interval is positive and ordered.
func (i IntervalConfig) Validate() error {
	if i.Min <= 0 || i.Max <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if i.Min > i.Max {
		return fmt.Errorf("interval min %s is greater than max %s", i.Min, i.Max)
	}
	return nil
}

func (i *IntervalConfig) applyDefault(def IntervalConfig) {
	if i.Min == 0 && i.Max == 0 {
		*i = def
	}
}
