package app

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/neox5/scrapebox/internal/config"
	"github.com/neox5/scrapebox/internal/exporter"
	"github.com/neox5/scrapebox/internal/metric"
	"github.com/neox5/scrapebox/internal/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func randomRangeConfig(t *testing.T, port int) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Export.Prometheus.Port = port
	cfg.Scenarios = []config.ScenarioConfig{{
		Type:     config.ScenarioRandomRange,
		Low:      5,
		High:     10,
		Interval: config.IntervalConfig{Min: time.Millisecond, Max: 2 * time.Millisecond},
	}}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRun_ServesGeneratedMetrics(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := randomRangeConfig(t, port)
	cfg.Settings.InternalMetrics.Enabled = true
	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	client := scrape.NewClient(time.Second)
	url := fmt.Sprintf("http://127.0.0.1:%d/metrics", port)

	var values []float64
	require.Eventually(t, func() bool {
		families, err := client.Scrape(ctx, url)
		if err != nil {
			return false
		}
		for _, l := range scrape.Lines(families) {
			if v, ok := strings.CutPrefix(l, "random_number_5_to_10 "); ok {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					values = append(values, f)
				}
			}
		}
		return len(values) >= 3
	}, 5*time.Second, 10*time.Millisecond)

	for _, v := range values {
		assert.GreaterOrEqual(t, v, 5.0, "every scrape, including the first, is in range")
		assert.LessOrEqual(t, v, 10.0)
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, exporter.StateStopped, a.PrometheusExporter.State())
}

func TestRun_BindErrorStopsBeforeGenerating(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	a, err := New(randomRangeConfig(t, ln.Addr().(*net.TCPAddr).Port), zap.NewNop())
	require.NoError(t, err)

	err = a.Run(context.Background())
	var bindErr *exporter.BindError
	require.ErrorAs(t, err, &bindErr)

	time.Sleep(10 * time.Millisecond)
	g, ok := a.Metrics.Metrics()[0].(*metric.Gauge)
	require.True(t, ok)
	assert.Equal(t, 5.0, g.Value(), "domain loop never started")
}

func TestNew_WiresOptionalComponents(t *testing.T) {
	cfg := randomRangeConfig(t, 8181)
	cfg.Settings.Monitor.Enabled = true
	cfg.Export.OTEL = &config.OTELExportConfig{Enabled: true}
	require.NoError(t, cfg.Validate())

	core, logs := observer.New(zap.InfoLevel)
	a, err := New(cfg, zap.New(core))
	require.NoError(t, err)

	assert.NotNil(t, a.Monitor)
	assert.NotNil(t, a.OTELExporter)
	assert.NotNil(t, a.PrometheusExporter)

	_, ok := a.Metrics.Index("scrapebox_goroutines")
	assert.True(t, ok)

	initialized := logs.FilterMessage("application initialized").All()
	require.Len(t, initialized, 1)
	assert.Equal(t, int64(a.Metrics.Len()), initialized[0].ContextMap()["metrics"])
}

func TestNew_DuplicateMetricDefinition(t *testing.T) {
	cfg := randomRangeConfig(t, 8181)
	cfg.Scenarios = append(cfg.Scenarios, cfg.Scenarios[0])

	_, err := New(cfg, zap.NewNop())
	assert.ErrorIs(t, err, metric.ErrDuplicateName)
}
