package generator

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/neox5/scrapebox/internal/config"
	"github.com/neox5/scrapebox/internal/metric"
)

// randomRange publishes one gauge holding a random number in [low, high].
type randomRange struct {
	low      float64
	high     float64
	interval config.IntervalConfig
	name     string
	help     string
	gauge    *metric.Gauge
}

func newRandomRange(low, high float64, interval config.IntervalConfig) *randomRange {
	lo, hi := formatBound(low), formatBound(high)
	return &randomRange{
		low:      low,
		high:     high,
		interval: interval,
		name:     metric.SanitizeName("random_number_" + lo + "_to_" + hi),
		help:     fmt.Sprintf("A random number in the range of %s to %s", lo, hi),
	}
}

func (r *randomRange) Name() string {
	return string(config.ScenarioRandomRange) + ":" + r.name
}

func (r *randomRange) Register(reg *metric.Registry) error {
	g, err := reg.DefineGauge(r.name, r.help)
	if err != nil {
		return err
	}
	// Scrapes before the first step must still read a value in range.
	g.Set(r.low)
	r.gauge = g
	return nil
}

func (r *randomRange) Step(rng *rand.Rand) time.Duration {
	v := r.low + rng.Float64()*(r.high-r.low)
	r.gauge.Set(min(v, r.high))
	return uniformDuration(rng, r.interval)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
