package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sph2d/config"
	"github.com/pthm-cable/sph2d/game"
	"github.com/pthm-cable/sph2d/telemetry"
)

// Fitness component weights.
const (
	weightCompression = 10.0 // per unit of p90 density above rest
	weightSettle      = 1.0  // per unit of mean speed in the last window (static)
	weightClamp       = 2.0  // per window whose max speed hit the clamp
	weightHealth      = 0.1  // per fallback step or healed particle

	warmupWindows = 2 // skip the first N windows
)

// Scenario is one simulation run per evaluation.
type Scenario struct {
	Name     string
	Fountain bool
	Seed     int64
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	scenarios   []Scenario
	configPath  string
	statsWindow float64

	mu          sync.Mutex
	bestFitness float64
	lastScores  map[string]float64
}

// NewFitnessEvaluator creates a new evaluator. Each evaluation loads a fresh
// config from configPath (empty = defaults).
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, scenarios []Scenario, configPath string) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		scenarios:   scenarios,
		configPath:  configPath,
		statsWindow: 0.08,
		bestFitness: math.Inf(1),
	}
}

// LastScores returns the per-scenario fitness of the most recent evaluation.
func (fe *FitnessEvaluator) LastScores() map[string]float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScores
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	scores := make([]float64, len(fe.scenarios))
	var wg sync.WaitGroup

	for i, sc := range fe.scenarios {
		wg.Add(1)
		go func(idx int, sc Scenario) {
			defer wg.Done()
			windows, err := fe.runSimulation(x, sc)
			if err != nil {
				scores[idx] = math.Inf(1)
				return
			}
			scores[idx] = ComputeFitness(windows, sc.Fountain, fe.restDensity(), fe.maxVelocity())
		}(i, sc)
	}
	wg.Wait()

	byName := make(map[string]float64, len(scores))
	for i, sc := range fe.scenarios {
		byName[sc.Name] = scores[i]
	}
	avg := stat.Mean(scores, nil)

	fe.mu.Lock()
	fe.bestFitness = min(fe.bestFitness, avg)
	fe.lastScores = byName
	fe.mu.Unlock()

	return avg
}

// runSimulation executes one headless run and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, sc Scenario) ([]telemetry.WindowStats, error) {
	cfg, err := fe.loadConfig()
	if err != nil {
		return nil, err
	}
	fe.params.ApplyToConfig(cfg, x)
	cfg.SetFountain(sc.Fountain)

	var windows []telemetry.WindowStats
	sim, err := game.NewSimulation(cfg, game.Options{
		Seed:           sc.Seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StatsCallback: func(s telemetry.WindowStats) {
			windows = append(windows, s)
		},
	})
	if err != nil {
		return nil, err
	}
	defer sim.Close()

	for sim.Tick() < fe.maxTicks {
		sim.Step()
	}
	return windows, nil
}

func (fe *FitnessEvaluator) loadConfig() (*config.Config, error) {
	return config.Load(fe.configPath)
}

func (fe *FitnessEvaluator) restDensity() float64 {
	cfg, err := fe.loadConfig()
	if err != nil {
		return 1000
	}
	return cfg.Fluid.Density
}

func (fe *FitnessEvaluator) maxVelocity() float64 {
	cfg, err := fe.loadConfig()
	if err != nil {
		return 10
	}
	return cfg.Fluid.MaxVelocity
}

// ComputeFitness scores a run (lower = better). It penalizes compression
// above rest density, speeds pinned at the clamp and solver recovery events.
// Static runs are also penalized for motion left in the final window.
func ComputeFitness(windows []telemetry.WindowStats, fountain bool, restDensity, maxVelocity float64) float64 {
	if len(windows) <= warmupWindows {
		return math.Inf(1)
	}
	valid := windows[warmupWindows:]

	compression := make([]float64, 0, len(valid))
	var clamped, health float64
	for _, w := range valid {
		if w.Particles == 0 {
			continue
		}
		if math.IsNaN(w.DensityP90) || math.IsNaN(w.SpeedMax) {
			return math.Inf(1)
		}
		compression = append(compression, math.Max(0, w.DensityP90/restDensity-1))
		if w.SpeedMax >= 0.99*maxVelocity {
			clamped++
		}
		health += float64(w.FallbackSteps + w.Healed)
	}
	if len(compression) == 0 {
		return math.Inf(1)
	}

	fitness := weightCompression*stat.Mean(compression, nil) +
		weightClamp*clamped +
		weightHealth*health

	if !fountain {
		fitness += weightSettle * valid[len(valid)-1].SpeedMean
	}
	return fitness
}
