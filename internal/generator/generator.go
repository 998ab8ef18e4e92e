package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/neox5/scrapebox/internal/config"
	"github.com/neox5/scrapebox/internal/metric"
	"go.uber.org/zap"
)

// Scenario mutates a fixed set of metrics in a loop.
type Scenario interface {
	// Name identifies the scenario in logs.
	Name() string

	// Register defines the scenario's metrics. It is called once before the first Step.
	Register(reg *metric.Registry) error

	// Step performs one iteration and returns the pause before the next one.
	Step(rng *rand.Rand) time.Duration
}

// Generator runs every scenario in its own goroutine until stopped.
type Generator struct {
	scenarios []Scenario
	seed      uint64
	log       *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates the configured scenarios and registers their metrics.
// A nil seed picks a random one.
func New(cfgs []config.ScenarioConfig, seed *uint64, reg *metric.Registry, log *zap.Logger) (*Generator, error) {
	scenarios := make([]Scenario, 0, len(cfgs))
	for _, cfg := range cfgs {
		s, err := newScenario(cfg)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}

	return NewWithScenarios(scenarios, seed, reg, log)
}

// NewWithScenarios registers the given scenarios.
func NewWithScenarios(scenarios []Scenario, seed *uint64, reg *metric.Registry, log *zap.Logger) (*Generator, error) {
	for _, s := range scenarios {
		if err := s.Register(reg); err != nil {
			return nil, fmt.Errorf("failed to register scenario %q: %w", s.Name(), err)
		}
		log.Info("registered scenario", zap.String("scenario", s.Name()))
	}

	g := &Generator{
		scenarios: scenarios,
		log:       log,
	}
	if seed != nil {
		g.seed = *seed
	} else {
		g.seed = rand.Uint64()
	}

	return g, nil
}

func newScenario(cfg config.ScenarioConfig) (Scenario, error) {
	switch cfg.Type {
	case config.ScenarioRandomRange:
		return newRandomRange(cfg.Low, cfg.High, cfg.Interval), nil
	case config.ScenarioMeals:
		return newMeals(cfg.Interval), nil
	case config.ScenarioWildlife:
		return newWildlife(cfg.Interval, time.Now), nil
	default:
		return nil, fmt.Errorf("unknown scenario type: %s", cfg.Type)
	}
}

// Start begins value generation. Calling Start while running is a no-op.
func (g *Generator) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel

	g.log.Info("starting generator", zap.Int("scenarios", len(g.scenarios)), zap.Uint64("seed", g.seed))
	for i, s := range g.scenarios {
		rng := rand.New(rand.NewPCG(g.seed, uint64(i)))
		g.wg.Go(func() {
			run(ctx, s, rng)
		})
	}
}

// Stop halts value generation and waits for every scenario loop to return.
func (g *Generator) Stop() {
	g.mu.Lock()
	cancel := g.cancel
	g.cancel = nil
	g.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	g.wg.Wait()
	g.log.Info("generator stopped")
}

func run(ctx context.Context, s Scenario, rng *rand.Rand) {
	timer := time.NewTimer(s.Step(rng))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			timer.Reset(s.Step(rng))
		}
	}
}

// uniformDuration picks a pause within the interval, bounds included.
func uniformDuration(rng *rand.Rand, interval config.IntervalConfig) time.Duration {
	if interval.Max <= interval.Min {
		return interval.Min
	}
	return interval.Min + time.Duration(rng.Int64N(int64(interval.Max-interval.Min)+1))
}
