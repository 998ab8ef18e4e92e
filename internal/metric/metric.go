package metric

// MetricType defines the semantic type of a metric.
type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeGauge   MetricType = "gauge"
)

// Metric is a registered gauge or counter.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	LabelKeys() []string

	// Snapshot returns a read-only copy of the current values.
	Snapshot() Family
}

// Family is a point-in-time copy of one metric and all of its samples.
type Family struct {
	Name      string
	Help      string
	Type      MetricType
	LabelKeys []string
	Samples   []Sample
}

// Sample is a single value of a family. LabelValues is parallel to the
// family's LabelKeys.
type Sample struct {
	LabelValues []string
	Value       float64
}

// Labels returns the sample's labels as a key/value map.
func (f Family) Labels(s Sample) map[string]string {
	labels := make(map[string]string, len(f.LabelKeys))
	for i, key := range f.LabelKeys {
		labels[key] = s.LabelValues[i]
	}
	return labels
}
