package app

import (
	"context"
	"fmt"

	"github.com/neox5/scrapebox/internal/config"
	"github.com/neox5/scrapebox/internal/exporter"
	"github.com/neox5/scrapebox/internal/generator"
	"github.com/neox5/scrapebox/internal/metric"
	"github.com/neox5/scrapebox/internal/monitor"
	"go.uber.org/zap"
)

// App holds initialized application components.
type App struct {
	Config             *config.Config
	Metrics            *metric.Registry
	Generator          *generator.Generator
	Monitor            *monitor.Monitor
	PrometheusExporter *exporter.PrometheusExporter
	OTELExporter       *exporter.OTELExporter

	log *zap.Logger
}

// New initializes the application from a validated configuration.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	metrics := metric.NewRegistry()

	gen, err := generator.New(cfg.Scenarios, cfg.Settings.Seed, metrics, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	a := &App{
		Config:    cfg,
		Metrics:   metrics,
		Generator: gen,
		log:       log,
	}

	if cfg.Settings.Monitor.Enabled {
		a.Monitor, err = monitor.New(cfg.Settings.Monitor.Interval, metrics, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create monitor: %w", err)
		}
	}

	if cfg.Export.PrometheusEnabled() {
		a.PrometheusExporter = exporter.NewPrometheusExporter(
			*cfg.Export.Prometheus,
			metrics,
			cfg.Settings.InternalMetrics.Enabled,
			log,
		)
	}

	if cfg.Export.OTELEnabled() {
		a.OTELExporter = exporter.NewOTELExporter(cfg.Export.OTEL, metrics, log)
	}

	log.Info("application initialized",
		zap.Int("scenarios", len(cfg.Scenarios)),
		zap.Int("metrics", metrics.Len()))

	return a, nil
}

// Run starts the exporters, then the generator and monitor, and blocks
// until ctx is cancelled or the exposition server fails. Exporter start
// errors are returned before any metric is generated.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)

	if a.PrometheusExporter != nil {
		if err := a.PrometheusExporter.Start(runCtx); err != nil {
			return fmt.Errorf("prometheus exporter: %w", err)
		}
		go func() {
			if err := a.PrometheusExporter.Wait(); err != nil {
				serveErr <- err
			}
		}()
	}

	if a.OTELExporter != nil {
		if err := a.OTELExporter.Start(runCtx); err != nil {
			a.stopPrometheus()
			return fmt.Errorf("otel exporter: %w", err)
		}
	}

	a.Generator.Start()
	if a.Monitor != nil {
		a.Monitor.Run(runCtx)
	}

	a.log.Debug("application running")

	var err error
	select {
	case err = <-serveErr:
		a.log.Error("exporter error", zap.Error(err))
		err = fmt.Errorf("prometheus exporter: %w", err)
	case <-ctx.Done():
	}

	a.log.Debug("shutdown initiated")

	a.Generator.Stop()
	cancel()
	if a.Monitor != nil {
		a.Monitor.Wait()
	}
	if a.OTELExporter != nil {
		if stopErr := a.OTELExporter.Stop(); stopErr != nil {
			a.log.Warn("otel exporter shutdown", zap.Error(stopErr))
		}
	}
	a.stopPrometheus()

	a.log.Info("shutdown complete")
	return err
}

func (a *App) stopPrometheus() {
	if a.PrometheusExporter == nil {
		return
	}
	if err := a.PrometheusExporter.Stop(); err != nil {
		a.log.Warn("prometheus exporter shutdown", zap.Error(err))
	}
}
