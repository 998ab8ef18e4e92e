package metric

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// labelSeparator cannot appear in valid UTF-8 label values.
const labelSeparator = "\xff"

// Counter is a monotonically increasing count partitioned by a fixed set of
// label keys. Cells are created lazily on first use.
type Counter struct {
	name string
	help string
	keys []string

	mu    sync.RWMutex
	cells map[string]*counterCell
}

type counterCell struct {
	labelValues []string
	count       atomic.Uint64
}

// Inc adds one to the cell identified by labelValues.
func (c *Counter) Inc(labelValues ...string) error {
	return c.Add(1, labelValues...)
}

// MustInc is like Inc but panics on a label arity mismatch.
func (c *Counter) MustInc(labelValues ...string) {
	if err := c.Inc(labelValues...); err != nil {
		panic(err)
	}
}

// Add adds n to the cell identified by labelValues. Adding zero only makes
// sure the cell exists.
func (c *Counter) Add(n uint64, labelValues ...string) error {
	cell, err := c.cell(labelValues)
	if err != nil {
		return err
	}
	cell.count.Add(n)
	return nil
}

// Value returns the count of one cell. Cells that were never touched read as zero.
func (c *Counter) Value(labelValues ...string) (uint64, error) {
	if err := c.checkArity(labelValues); err != nil {
		return 0, err
	}

	c.mu.RLock()
	cell, ok := c.cells[cellKey(labelValues)]
	c.mu.RUnlock()
	if !ok {
		return 0, nil
	}
	return cell.count.Load(), nil
}

func (c *Counter) Name() string        { return c.name }
func (c *Counter) Help() string        { return c.help }
func (c *Counter) Type() MetricType    { return MetricTypeCounter }
func (c *Counter) LabelKeys() []string { return slices.Clone(c.keys) }

// Snapshot implements Metric. Samples are sorted by label values.
func (c *Counter) Snapshot() Family {
	c.mu.RLock()
	samples := make([]Sample, 0, len(c.cells))
	for _, cell := range c.cells {
		samples = append(samples, Sample{
			LabelValues: slices.Clone(cell.labelValues),
			Value:       float64(cell.count.Load()),
		})
	}
	c.mu.RUnlock()

	slices.SortFunc(samples, func(a, b Sample) int {
		return slices.Compare(a.LabelValues, b.LabelValues)
	})

	return Family{
		Name:      c.name,
		Help:      c.help,
		Type:      MetricTypeCounter,
		LabelKeys: c.LabelKeys(),
		Samples:   samples,
	}
}

func (c *Counter) cell(labelValues []string) (*counterCell, error) {
	if err := c.checkArity(labelValues); err != nil {
		return nil, err
	}
	key := cellKey(labelValues)

	c.mu.RLock()
	cell, ok := c.cells[key]
	c.mu.RUnlock()
	if ok {
		return cell, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cell, ok := c.cells[key]; ok {
		return cell, nil
	}
	cell = &counterCell{labelValues: slices.Clone(labelValues)}
	c.cells[key] = cell
	return cell, nil
}

func (c *Counter) checkArity(labelValues []string) error {
	if len(labelValues) != len(c.keys) {
		return fmt.Errorf("%w: metric %q expects %d label values %v, got %d",
			ErrLabelArity, c.name, len(c.keys), c.keys, len(labelValues))
	}
	return nil
}

func cellKey(labelValues []string) string {
	return strings.Join(labelValues, labelSeparator)
}
