package exporter

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/neox5/scrapebox/internal/config"
	"github.com/neox5/scrapebox/internal/metric"
	"github.com/neox5/scrapebox/internal/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExporter(t *testing.T, reg *metric.Registry, port int, internal bool) *PrometheusExporter {
	t.Helper()
	cfg := config.PrometheusExportConfig{Enabled: true, Port: port}
	require.NoError(t, cfg.Validate())
	return NewPrometheusExporter(cfg, reg, internal, zap.NewNop())
}

func get(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHandler_GaugeAndCounter(t *testing.T) {
	reg := metric.NewRegistry()
	g := reg.MustDefineGauge("g", "a gauge")
	c := reg.MustDefineCounter("c", "a counter", "food")

	g.Set(4.2)
	for range 3 {
		c.MustInc("Apple")
	}
	c.MustInc("Banana")

	w := get(t, newTestExporter(t, reg, 8181, false).Handler(), http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	body := w.Body.String()
	assert.Contains(t, body, "\ng 4.2\n")
	assert.Contains(t, body, `c{food="Apple"} 3`)
	assert.Contains(t, body, `c{food="Banana"} 1`)
	assert.Contains(t, body, "# HELP g a gauge")
	assert.Contains(t, body, "# TYPE c counter")
}

func TestHandler_LabelledGauge(t *testing.T) {
	reg := metric.NewRegistry()
	g, err := reg.DefineGaugeVec("response_seconds", "last response time", "method", "path")
	require.NoError(t, err)
	g.MustSet(0.25, "GET", "/index.html")
	g.MustSet(7.5, "POST", "/store")

	body := get(t, newTestExporter(t, reg, 8181, false).Handler(), http.MethodGet, "/metrics").Body.String()
	assert.Contains(t, body, "# TYPE response_seconds gauge")
	assert.Contains(t, body, `response_seconds{method="GET",path="/index.html"} 0.25`)
	assert.Contains(t, body, `response_seconds{method="POST",path="/store"} 7.5`)
}

func TestHandler_DefinitionOrder(t *testing.T) {
	reg := metric.NewRegistry()
	reg.MustDefineGauge("zulu", "defined first").Set(1)
	reg.MustDefineCounter("alpha_total", "defined second").MustInc()
	reg.MustDefineGauge("mike", "defined third").Set(2)

	body := get(t, newTestExporter(t, reg, 8181, true).Handler(), http.MethodGet, "/metrics").Body.String()

	zulu := strings.Index(body, "\nzulu 1")
	alpha := strings.Index(body, "\nalpha_total 1")
	mike := strings.Index(body, "\nmike 2")
	internal := strings.Index(body, "promhttp_metric_handler_requests_total")

	require.True(t, zulu >= 0 && alpha >= 0 && mike >= 0 && internal >= 0, body)
	assert.Less(t, zulu, alpha)
	assert.Less(t, alpha, mike)
	assert.Less(t, mike, internal, "internal metrics follow registry metrics")
}

func TestHandler_ScrapeIsReadOnly(t *testing.T) {
	reg := metric.NewRegistry()
	c := reg.MustDefineCounter("meals_total", "meals", "food", "drink")
	c.MustInc("Apple", "Water")
	c.MustInc("Steak", "Wine")

	h := newTestExporter(t, reg, 8181, false).Handler()
	first := get(t, h, http.MethodGet, "/metrics").Body.String()
	second := get(t, h, http.MethodGet, "/metrics").Body.String()
	assert.Equal(t, first, second, "no increments between scrapes")

	v, err := c.Value("Apple", "Water")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
}

func TestHandler_SamplesDefinedAfterConstruction(t *testing.T) {
	reg := metric.NewRegistry()
	h := newTestExporter(t, reg, 8181, false).Handler()

	reg.MustDefineGauge("late", "defined after the exporter").Set(7)

	assert.Contains(t, get(t, h, http.MethodGet, "/metrics").Body.String(), "late 7")
}

func TestHandler_OnlyMetricsPath(t *testing.T) {
	reg := metric.NewRegistry()
	reg.MustDefineGauge("g", "help")
	h := newTestExporter(t, reg, 8181, false).Handler()

	assert.Equal(t, http.StatusNotFound, get(t, h, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, http.MethodGet, "/debug/vars").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, get(t, h, http.MethodPost, "/metrics").Code)
}

func TestHandler_ConcurrentScrapesDuringMutation(t *testing.T) {
	reg := metric.NewRegistry()
	g := reg.MustDefineGauge("g", "help")
	c := reg.MustDefineCounter("c_total", "help", "k")
	h := newTestExporter(t, reg, 8181, false).Handler()

	stop := make(chan struct{})
	var writer sync.WaitGroup
	writer.Go(func() {
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				g.Set(float64(i))
				c.MustInc(fmt.Sprint(i % 5))
			}
		}
	})

	var scrapers sync.WaitGroup
	for range 4 {
		scrapers.Go(func() {
			for range 20 {
				w := get(t, h, http.MethodGet, "/metrics")
				assert.Equal(t, http.StatusOK, w.Code)
				_, err := scrape.ParseText(w.Body)
				assert.NoError(t, err)
			}
		})
	}
	scrapers.Wait()
	close(stop)
	writer.Wait()
}

func TestPrometheusExporter_StartServesAndStops(t *testing.T) {
	reg := metric.NewRegistry()
	reg.MustDefineCounter("c", "a counter", "food").MustInc("Apple")

	port := freePort(t)
	e := newTestExporter(t, reg, port, false)
	assert.Equal(t, StateNotStarted, e.State())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, e.Start(ctx))
	assert.Equal(t, StateListening, e.State())
	assert.ErrorIs(t, e.Start(ctx), ErrAlreadyStarted)

	require.NotNil(t, e.Addr())
	url := fmt.Sprintf("http://127.0.0.1:%d/metrics", port)
	families, err := scrape.NewClient(time.Second).Scrape(ctx, url)
	require.NoError(t, err)
	assert.Contains(t, scrape.Lines(families), `c{food="Apple"} 1`)

	cancel()
	require.NoError(t, e.Wait())
	assert.Equal(t, StateStopped, e.State())
	assert.NoError(t, e.Stop(), "stopping twice is a no-op")
}

func TestPrometheusExporter_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	e := newTestExporter(t, metric.NewRegistry(), ln.Addr().(*net.TCPAddr).Port, false)
	err = e.Start(context.Background())

	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, StateNotStarted, e.State())
}

func TestPrometheusExporter_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 65536, 70000} {
		t.Run(fmt.Sprint(port), func(t *testing.T) {
			e := newTestExporter(t, metric.NewRegistry(), port, false)
			err := e.Start(context.Background())

			var bindErr *BindError
			require.ErrorAs(t, err, &bindErr)
			assert.ErrorIs(t, err, errInvalidPort)
		})
	}
}

func TestPrometheusExporter_StopBeforeStart(t *testing.T) {
	e := newTestExporter(t, metric.NewRegistry(), 8181, false)
	assert.NoError(t, e.Stop())
	assert.Nil(t, e.Addr())
}

func TestPrometheusExporter_ServesOverHTTP(t *testing.T) {
	reg := metric.NewRegistry()
	reg.MustDefineGauge("g", "help").Set(1.5)

	port := freePort(t)
	e := newTestExporter(t, reg, port, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, e.Start(ctx))

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", port))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "g 1.5")
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}
