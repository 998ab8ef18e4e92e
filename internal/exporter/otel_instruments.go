package exporter

import (
	"context"
	"fmt"

	"github.com/neox5/scrapebox/internal/metric"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// instrument pairs an OTEL observable instrument with its registry metric.
type instrument struct {
	metric  metric.Metric
	counter otelmetric.Int64ObservableCounter
	gauge   otelmetric.Float64ObservableGauge
}

// registerOTELInstruments creates one observable instrument per registered
// metric and a single callback observing all of them.
func (e *OTELExporter) registerOTELInstruments(meter otelmetric.Meter) error {
	var instruments []instrument
	var observables []otelmetric.Observable

	for _, m := range e.metrics.Metrics() {
		inst := instrument{metric: m}

		switch m.Type() {
		case metric.MetricTypeCounter:
			counter, err := meter.Int64ObservableCounter(m.Name(), otelmetric.WithDescription(m.Help()))
			if err != nil {
				return fmt.Errorf("failed to create counter %q: %w", m.Name(), err)
			}
			inst.counter = counter
			observables = append(observables, counter)

		case metric.MetricTypeGauge:
			gauge, err := meter.Float64ObservableGauge(m.Name(), otelmetric.WithDescription(m.Help()))
			if err != nil {
				return fmt.Errorf("failed to create gauge %q: %w", m.Name(), err)
			}
			inst.gauge = gauge
			observables = append(observables, gauge)
		}

		instruments = append(instruments, inst)
		e.log.Info("registered otel metric",
			zap.String("name", m.Name()),
			zap.String("type", string(m.Type())),
			zap.Strings("attributes", m.LabelKeys()))
	}

	if len(observables) == 0 {
		return nil
	}

	reg, err := meter.RegisterCallback(
		func(ctx context.Context, observer otelmetric.Observer) error {
			e.log.Debug("otel push", zap.Int("metrics", len(instruments)))

			for _, inst := range instruments {
				family := inst.metric.Snapshot()
				for _, sample := range family.Samples {
					attrs := otelmetric.WithAttributes(sampleAttributes(family, sample)...)
					if inst.counter != nil {
						observer.ObserveInt64(inst.counter, int64(sample.Value), attrs)
					}
					if inst.gauge != nil {
						observer.ObserveFloat64(inst.gauge, sample.Value, attrs)
					}
				}
			}
			return nil
		},
		observables...,
	)
	if err != nil {
		return fmt.Errorf("failed to register callback: %w", err)
	}

	e.registration = reg
	return nil
}

func sampleAttributes(family metric.Family, sample metric.Sample) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(family.LabelKeys))
	for key, value := range family.Labels(sample) {
		attrs = append(attrs, attribute.String(key, value))
	}
	return attrs
}
