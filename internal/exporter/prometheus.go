package exporter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/neox5/scrapebox/internal/config"
	"github.com/neox5/scrapebox/internal/metric"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("exporter already started")

var errInvalidPort = errors.New("port must be between 1 and 65535")

// BindError reports that the exposition server could not listen on its address.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("cannot listen on %q: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// State is the lifecycle state of an exporter.
type State int

const (
	StateNotStarted State = iota
	StateListening
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateListening:
		return "listening"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PrometheusExporter provides the HTTP exposition endpoint.
type PrometheusExporter struct {
	port    int
	addr    string
	path    string
	handler http.Handler
	server  *http.Server
	log     *zap.Logger

	mu       sync.Mutex
	state    State
	listener net.Listener
	done     chan struct{}
	serveErr error
}

// NewPrometheusExporter creates a new Prometheus HTTP exporter.
func NewPrometheusExporter(
	cfg config.PrometheusExportConfig,
	metrics *metric.Registry,
	internalMetricsEnabled bool,
	log *zap.Logger,
) *PrometheusExporter {
	promRegistry := createPrometheusRegistry(metrics)
	gatherer := orderedGatherer{gatherer: promRegistry, metrics: metrics}
	handler := createHandler(cfg.Path, gatherer, promRegistry, internalMetricsEnabled, log)

	return &PrometheusExporter{
		port:    cfg.Port,
		addr:    cfg.Addr(),
		path:    cfg.Path,
		handler: handler,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log:  log,
		done: make(chan struct{}),
	}
}

// Handler returns the HTTP handler serving the exposition path.
func (e *PrometheusExporter) Handler() http.Handler {
	return e.handler
}

// Start binds the listen address and serves scrapes in the background.
// It returns once the socket is bound; a *BindError is returned when the
// port is invalid or already in use. Cancelling ctx stops the server.
func (e *PrometheusExporter) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateNotStarted {
		return ErrAlreadyStarted
	}

	if e.port < 1 || e.port > 65535 {
		return &BindError{Addr: e.addr, Err: errInvalidPort}
	}

	ln, err := net.Listen("tcp", e.addr)
	if err != nil {
		return &BindError{Addr: e.addr, Err: err}
	}
	e.listener = ln
	e.state = StateListening

	e.log.Info("starting prometheus exporter",
		zap.String("addr", ln.Addr().String()),
		zap.String("path", e.path))

	go func() {
		defer close(e.done)
		if err := e.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("prometheus exporter stopped", zap.Error(err))
			e.serveErr = err
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			if err := e.Stop(); err != nil {
				e.log.Warn("prometheus exporter shutdown", zap.Error(err))
			}
		case <-e.done:
		}
	}()

	return nil
}

// Stop gracefully stops the exporter. It is a no-op unless the exporter is listening.
func (e *PrometheusExporter) Stop() error {
	e.mu.Lock()
	switch e.state {
	case StateNotStarted:
		e.mu.Unlock()
		return nil
	case StateStopped:
		e.mu.Unlock()
		<-e.done
		return nil
	}
	e.state = StateStopped
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	e.log.Info("shutting down prometheus exporter")
	err := e.server.Shutdown(ctx)
	<-e.done
	return err
}

// Wait blocks until the server has stopped serving and returns the serve error, if any.
// It must only be called after a successful Start.
func (e *PrometheusExporter) Wait() error {
	<-e.done
	return e.serveErr
}

// State returns the current lifecycle state.
func (e *PrometheusExporter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Addr returns the bound address, or nil before Start.
func (e *PrometheusExporter) Addr() net.Addr {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener == nil {
		return nil
	}
	return e.listener.Addr()
}
