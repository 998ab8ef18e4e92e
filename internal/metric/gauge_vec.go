package metric

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

// GaugeVec is a set of gauges partitioned by a fixed set of label keys.
// Cells are created lazily on first Set.
type GaugeVec struct {
	name string
	help string
	keys []string

	mu    sync.RWMutex
	cells map[string]*gaugeCell
}

type gaugeCell struct {
	labelValues []string
	bits        atomic.Uint64
}

// Set overwrites the value of the cell identified by labelValues.
func (g *GaugeVec) Set(v float64, labelValues ...string) error {
	if err := g.checkArity(labelValues); err != nil {
		return err
	}
	key := cellKey(labelValues)

	g.mu.RLock()
	cell, ok := g.cells[key]
	g.mu.RUnlock()
	if !ok {
		g.mu.Lock()
		if cell, ok = g.cells[key]; !ok {
			cell = &gaugeCell{labelValues: slices.Clone(labelValues)}
			g.cells[key] = cell
		}
		g.mu.Unlock()
	}

	cell.bits.Store(math.Float64bits(v))
	return nil
}

// MustSet is like Set but panics on a label arity mismatch.
func (g *GaugeVec) MustSet(v float64, labelValues ...string) {
	if err := g.Set(v, labelValues...); err != nil {
		panic(err)
	}
}

// Value returns the value of one cell. Cells that were never set read as zero.
func (g *GaugeVec) Value(labelValues ...string) (float64, error) {
	if err := g.checkArity(labelValues); err != nil {
		return 0, err
	}

	g.mu.RLock()
	cell, ok := g.cells[cellKey(labelValues)]
	g.mu.RUnlock()
	if !ok {
		return 0, nil
	}
	return math.Float64frombits(cell.bits.Load()), nil
}

func (g *GaugeVec) Name() string        { return g.name }
func (g *GaugeVec) Help() string        { return g.help }
func (g *GaugeVec) Type() MetricType    { return MetricTypeGauge }
func (g *GaugeVec) LabelKeys() []string { return slices.Clone(g.keys) }

// Snapshot implements Metric. Samples are sorted by label values.
func (g *GaugeVec) Snapshot() Family {
	g.mu.RLock()
	samples := make([]Sample, 0, len(g.cells))
	for _, cell := range g.cells {
		samples = append(samples, Sample{
			LabelValues: slices.Clone(cell.labelValues),
			Value:       math.Float64frombits(cell.bits.Load()),
		})
	}
	g.mu.RUnlock()

	slices.SortFunc(samples, func(a, b Sample) int {
		return slices.Compare(a.LabelValues, b.LabelValues)
	})

	return Family{
		Name:      g.name,
		Help:      g.help,
		Type:      MetricTypeGauge,
		LabelKeys: g.LabelKeys(),
		Samples:   samples,
	}
}

func (g *GaugeVec) checkArity(labelValues []string) error {
	if len(labelValues) != len(g.keys) {
		return fmt.Errorf("%w: metric %q expects %d label values %v, got %d",
			ErrLabelArity, g.name, len(g.keys), g.keys, len(labelValues))
	}
	return nil
}
