package metric

import (
	"math"
	"sync/atomic"
)

// Gauge holds a single float64 value that can be set arbitrarily.
type Gauge struct {
	name string
	help string
	bits atomic.Uint64
}

// Set overwrites the current value.
func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

// Value returns the current value.
func (g *Gauge) Value() float64 {
	return math.Float64frombits(g.bits.Load())
}

func (g *Gauge) Name() string        { return g.name }
func (g *Gauge) Help() string        { return g.help }
func (g *Gauge) Type() MetricType    { return MetricTypeGauge }
func (g *Gauge) LabelKeys() []string { return nil }

// Snapshot implements Metric.
func (g *Gauge) Snapshot() Family {
	return Family{
		Name:    g.name,
		Help:    g.help,
		Type:    MetricTypeGauge,
		Samples: []Sample{{Value: g.Value()}},
	}
}
