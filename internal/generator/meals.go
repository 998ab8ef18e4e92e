package generator

import (
	"math/rand/v2"
	"time"

	"github.com/neox5/scrapebox/internal/config"
	"github.com/neox5/scrapebox/internal/metric"
)

var (
	foods  = []string{"Apple", "Banana", "Hamburger", "Hotdog", "Lobster", "Steak", "Pasta"}
	drinks = []string{"Water", "Lemonade", "Beer", "Wine", "Soda", "Coffee", "Tea"}
)

// hungerPercent is the chance of eating after each sleep.
const hungerPercent = 75

// meals sleeps for a random duration and, after waking, usually eats.
type meals struct {
	interval config.IntervalConfig

	lastSleep *metric.Gauge
	methods   *metric.Counter
	eaten     *metric.Counter
	awake     bool
}

func newMeals(interval config.IntervalConfig) *meals {
	return &meals{interval: interval}
}

func (m *meals) Name() string {
	return string(config.ScenarioMeals)
}

func (m *meals) Register(reg *metric.Registry) error {
	var err error
	if m.lastSleep, err = reg.DefineGauge("test_last_sleep_duration",
		"The duration of the last sleep in seconds"); err != nil {
		return err
	}
	if m.methods, err = reg.DefineCounter("test_method_invocations_total",
		"Number of times methods are called", "method_name"); err != nil {
		return err
	}
	if m.eaten, err = reg.DefineCounter("test_meals_eaten_total",
		"Number of times a meal was eaten", "food", "drink"); err != nil {
		return err
	}
	return nil
}

func (m *meals) Step(rng *rand.Rand) time.Duration {
	if m.awake && rng.IntN(100) < hungerPercent {
		m.eat(rng)
	}
	m.awake = true
	return m.sleep(rng)
}

func (m *meals) sleep(rng *rand.Rand) time.Duration {
	m.methods.MustInc("do_random_sleep")
	d := uniformDuration(rng, m.interval)
	m.lastSleep.Set(d.Seconds())
	return d
}

func (m *meals) eat(rng *rand.Rand) {
	m.methods.MustInc("eat")
	m.eaten.MustInc(pick(rng, foods), pick(rng, drinks))
}

func pick(rng *rand.Rand, choices []string) string {
	return choices[rng.IntN(len(choices))]
}
