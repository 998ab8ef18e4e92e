package exporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/neox5/scrapebox/internal/config"
	"github.com/neox5/scrapebox/internal/metric"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const meterName = "github.com/neox5/scrapebox"

// OTELExporter pushes registry metrics to an OTEL collector.
type OTELExporter struct {
	config        *config.OTELExportConfig
	metrics       *metric.Registry
	log           *zap.Logger
	reader        sdkmetric.Reader
	meterProvider *sdkmetric.MeterProvider
	registration  otelmetric.Registration
}

// NewOTELExporter creates a new OTEL exporter. Nothing is pushed until Start.
func NewOTELExporter(cfg *config.OTELExportConfig, metrics *metric.Registry, log *zap.Logger) *OTELExporter {
	return &OTELExporter{
		config:  cfg,
		metrics: metrics,
		log:     log,
	}
}

// newOTELExporterWithReader uses reader instead of an OTLP periodic reader.
func newOTELExporterWithReader(
	cfg *config.OTELExportConfig,
	metrics *metric.Registry,
	log *zap.Logger,
	reader sdkmetric.Reader,
) *OTELExporter {
	e := NewOTELExporter(cfg, metrics, log)
	e.reader = reader
	return e
}

// Start creates the meter provider and registers instruments for every
// metric defined so far. Export runs in the background on the push interval.
func (e *OTELExporter) Start(ctx context.Context) error {
	if e.meterProvider != nil {
		return ErrAlreadyStarted
	}

	res, err := createOTELResource(ctx, e.config.Resource)
	if err != nil {
		return err
	}

	reader := e.reader
	if reader == nil {
		reader, err = createPeriodicReader(ctx, e.config)
		if err != nil {
			return err
		}
	}

	e.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	if err := e.registerOTELInstruments(e.meterProvider.Meter(meterName)); err != nil {
		return errors.Join(err, e.meterProvider.Shutdown(ctx))
	}

	e.log.Info("starting otel exporter",
		zap.String("transport", e.config.Transport),
		zap.String("endpoint", e.config.GetEndpoint()),
		zap.Duration("push_interval", e.config.Interval))

	return nil
}

// Stop flushes pending data and shuts the meter provider down.
func (e *OTELExporter) Stop() error {
	if e.meterProvider == nil {
		return nil
	}

	e.log.Info("shutting down otel exporter")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown performs a final collection, so the callback stays registered until after it.
	var errs []error
	if err := e.meterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if e.registration != nil {
		if err := e.registration.Unregister(); err != nil {
			errs = append(errs, fmt.Errorf("failed to unregister callback: %w", err))
		}
		e.registration = nil
	}

	e.meterProvider = nil
	return errors.Join(errs...)
}
