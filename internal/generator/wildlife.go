package generator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/neox5/scrapebox/internal/config"
	"github.com/neox5/scrapebox/internal/metric"
)

var (
	animalTypes = []string{"Deer", "Goose", "Squirrel", "Turkey"}
	httpMethods = []string{"GET", "POST"}
	httpPaths   = []string{
		"/index.html",
		"/store/browse.jsp?product=123",
		"/store/buy.jsp#cart",
		"/admin/query-db",
	}
)

// Sine wave shape
const (
	waveAmplitude = 10.0
	waveFrequency = 0.025
)

// wildlife counts animal sightings, traces a sine wave and simulates HTTP
// requests on every loop.
type wildlife struct {
	interval config.IntervalConfig
	now      func() time.Time
	loop     uint64

	loops        *metric.Counter
	animals      *metric.Counter
	requests     *metric.Counter
	randomNumber *metric.Gauge
	currentHour  *metric.Gauge
	wave         *metric.Gauge
	responseTime *metric.GaugeVec
}

func newWildlife(interval config.IntervalConfig, now func() time.Time) *wildlife {
	return &wildlife{interval: interval, now: now}
}

func (w *wildlife) Name() string {
	return string(config.ScenarioWildlife)
}

func (w *wildlife) Register(reg *metric.Registry) error {
	var err error
	if w.loops, err = reg.DefineCounter("wildlife_loops_total",
		"Number of generation loops"); err != nil {
		return err
	}
	if w.animals, err = reg.DefineCounter("wildlife_animals_sighted_total",
		"Number of animals sighted", "animal"); err != nil {
		return err
	}
	for _, a := range animalTypes {
		if err := w.animals.Add(0, a); err != nil {
			return err
		}
	}
	if w.randomNumber, err = reg.DefineGauge("wildlife_random_number",
		"A random number between 0 and 99"); err != nil {
		return err
	}
	if w.currentHour, err = reg.DefineGauge("wildlife_current_hour",
		"The current hour of the day in local time"); err != nil {
		return err
	}
	if w.wave, err = reg.DefineGauge("wildlife_wave",
		"A sine wave advancing one step per loop"); err != nil {
		return err
	}
	if w.requests, err = reg.DefineCounter("wildlife_simulated_requests_total",
		"Number of simulated HTTP requests", "method", "path"); err != nil {
		return err
	}
	if w.responseTime, err = reg.DefineGaugeVec("wildlife_last_response_time_seconds",
		"Response time of the last simulated HTTP request per method and path", "method", "path"); err != nil {
		return err
	}
	return nil
}

func (w *wildlife) Step(rng *rand.Rand) time.Duration {
	w.loop++
	w.loops.MustInc()
	w.animals.MustInc(pick(rng, animalTypes))
	w.randomNumber.Set(float64(rng.IntN(100)))
	w.currentHour.Set(float64(w.now().Hour()))
	w.wave.Set(math.Sin(waveFrequency*float64(w.loop)) * waveAmplitude)

	method, path := pick(rng, httpMethods), pick(rng, httpPaths)
	w.requests.MustInc(method, path)
	w.responseTime.MustSet(rng.Float64()*10, method, path)

	return uniformDuration(rng, w.interval)
}
