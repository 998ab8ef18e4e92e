package metric

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds every defined metric in definition order.
type Registry struct {
	mu      sync.RWMutex
	metrics []Metric
	index   map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// DefineGauge registers a new gauge with an initial value of zero.
func (r *Registry) DefineGauge(name, help string) (*Gauge, error) {
	g := &Gauge{name: name, help: help}
	if err := r.register(g); err != nil {
		return nil, err
	}
	return g, nil
}

// DefineCounter registers a new counter partitioned by labelKeys.
// The label keys are fixed for the lifetime of the counter.
func (r *Registry) DefineCounter(name, help string, labelKeys ...string) (*Counter, error) {
	if err := validateLabelKeys(name, labelKeys); err != nil {
		return nil, err
	}
	c := &Counter{
		name:  name,
		help:  help,
		keys:  slices.Clone(labelKeys),
		cells: make(map[string]*counterCell),
	}
	if err := r.register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// DefineGaugeVec registers a gauge partitioned by labelKeys. It has no
// samples until the first Set.
func (r *Registry) DefineGaugeVec(name, help string, labelKeys ...string) (*GaugeVec, error) {
	if err := validateLabelKeys(name, labelKeys); err != nil {
		return nil, err
	}
	g := &GaugeVec{
		name:  name,
		help:  help,
		keys:  slices.Clone(labelKeys),
		cells: make(map[string]*gaugeCell),
	}
	if err := r.register(g); err != nil {
		return nil, err
	}
	return g, nil
}

// MustDefineGauge is like DefineGauge but panics on error.
func (r *Registry) MustDefineGauge(name, help string) *Gauge {
	g, err := r.DefineGauge(name, help)
	if err != nil {
		panic(err)
	}
	return g
}

// MustDefineCounter is like DefineCounter but panics on error.
func (r *Registry) MustDefineCounter(name, help string, labelKeys ...string) *Counter {
	c, err := r.DefineCounter(name, help, labelKeys...)
	if err != nil {
		panic(err)
	}
	return c
}

// Metrics returns all registered metrics in definition order.
func (r *Registry) Metrics() []Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.metrics)
}

// Snapshot copies every metric in definition order.
func (r *Registry) Snapshot() []Family {
	metrics := r.Metrics()
	families := make([]Family, 0, len(metrics))
	for _, m := range metrics {
		families = append(families, m.Snapshot())
	}
	return families
}

// Index returns the definition position of a metric.
func (r *Registry) Index(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	return i, ok
}

// Len returns the number of registered metrics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metrics)
}

func (r *Registry) register(m Metric) error {
	if !IsValidMetricName(m.Name()) {
		return fmt.Errorf("%w: metric %q", ErrInvalidName, m.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.index[m.Name()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, m.Name())
	}
	r.index[m.Name()] = len(r.metrics)
	r.metrics = append(r.metrics, m)
	return nil
}
