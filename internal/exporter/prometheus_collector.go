package exporter

import (
	"sync"

	"github.com/neox5/scrapebox/internal/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// collector implements prometheus.Collector on top of a metric.Registry.
// Describe sends nothing so the collector is unchecked: metrics may still be
// defined after the collector has been registered.
type collector struct {
	metrics *metric.Registry

	mu    sync.Mutex
	descs map[string]*prometheus.Desc
}

func newCollector(metrics *metric.Registry) *collector {
	return &collector{
		metrics: metrics,
		descs:   make(map[string]*prometheus.Desc),
	}
}

// Describe implements prometheus.Collector.
func (c *collector) Describe(chan<- *prometheus.Desc) {}

// Collect snapshots every metric and sends one const metric per sample.
// This is called on each Prometheus scrape and never mutates the registry.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, family := range c.metrics.Snapshot() {
		desc := c.desc(family)
		valueType := prometheusValueType(family.Type)

		for _, sample := range family.Samples {
			m, err := prometheus.NewConstMetric(desc, valueType, sample.Value, sample.LabelValues...)
			if err != nil {
				ch <- prometheus.NewInvalidMetric(desc, err)
				continue
			}
			ch <- m
		}
	}
}

func (c *collector) desc(family metric.Family) *prometheus.Desc {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.descs[family.Name]; ok {
		return d
	}
	d := prometheus.NewDesc(family.Name, family.Help, family.LabelKeys, nil)
	c.descs[family.Name] = d
	return d
}

func prometheusValueType(t metric.MetricType) prometheus.ValueType {
	if t == metric.MetricTypeCounter {
		return prometheus.CounterValue
	}
	return prometheus.GaugeValue
}
