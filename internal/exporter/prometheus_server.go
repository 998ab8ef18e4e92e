package exporter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/neox5/scrapebox/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// createHandler builds the router serving the exposition endpoint at path only.
func createHandler(
	path string,
	gatherer prometheus.Gatherer,
	promRegistry *prometheus.Registry,
	internalMetricsEnabled bool,
	log *zap.Logger,
) http.Handler {
	var handler http.Handler = promhttp.HandlerFor(
		gatherer,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
			ErrorLog:          zap.NewStdLog(log),
		},
	)

	// Conditionally wrap with instrumentation
	if internalMetricsEnabled {
		handler = promhttp.InstrumentMetricHandler(promRegistry, handler)
		log.Info("enabled prometheus internal metrics",
			zap.Strings("metrics", []string{
				"promhttp_metric_handler_requests_total",
				"promhttp_metric_handler_requests_in_flight",
			}))
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogger(log))
	r.Method(http.MethodGet, path, handler)

	return r
}
