package exporter

import (
	"cmp"
	"slices"

	"github.com/neox5/scrapebox/internal/metric"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// createPrometheusRegistry creates a Prometheus registry backed by the metric registry.
func createPrometheusRegistry(metrics *metric.Registry) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(newCollector(metrics))
	return promRegistry
}

// orderedGatherer returns families in metric definition order instead of
// the name order produced by prometheus.Registry. Families that are not in
// the metric registry (internal metrics) follow in name order.
type orderedGatherer struct {
	gatherer prometheus.Gatherer
	metrics  *metric.Registry
}

// Gather implements prometheus.Gatherer.
func (g orderedGatherer) Gather() ([]*dto.MetricFamily, error) {
	families, err := g.gatherer.Gather()
	slices.SortStableFunc(families, func(a, b *dto.MetricFamily) int {
		ai, aok := g.metrics.Index(a.GetName())
		bi, bok := g.metrics.Index(b.GetName())
		switch {
		case aok && bok:
			return cmp.Compare(ai, bi)
		case aok:
			return -1
		case bok:
			return 1
		default:
			return cmp.Compare(a.GetName(), b.GetName())
		}
	})
	return families, err
}
