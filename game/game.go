// Package game wires the fluid systems, telemetry and configuration into a
// steppable simulation.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sph2d/components"
	"github.com/pthm-cable/sph2d/config"
	"github.com/pthm-cable/sph2d/systems"
	"github.com/pthm-cable/sph2d/telemetry"
)

// ErrClosed is returned when a closed simulation is asked to rebuild.
var ErrClosed = errors.New("simulation closed")

// Mode selects what Step does.
type Mode uint8

const (
	// ModeStatic simulates a fixed set of particles placed at setup.
	ModeStatic Mode = iota
	// ModeFountain continuously emits particles and drains them at the bottom.
	ModeFountain
)

func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeFountain:
		return "fountain"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// State is the lifecycle state of a Simulation.
type State uint8

const (
	StateIdle     State = iota // closed or not yet built
	StateFilled                // scene built, not stepped since
	StateStepping              // at least one Step since the last build
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFilled:
		return "filled"
	case StateStepping:
		return "stepping"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Options configures a Simulation beyond the loaded config.
type Options struct {
	Seed           int64   // RNG seed for emission jitter
	LogStats       bool    // log window and perf stats via slog
	StatsWindowSec float64 // stats window in simulated seconds (0 = config)
	SnapshotDir    string  // save snapshots on bookmarks (empty = disabled)
	OutputDir      string  // CSV and config output (empty = disabled)
	Headless       bool    // no viewer; only affects logging

	// StatsCallback is called with every flushed window, if set.
	StatsCallback func(telemetry.WindowStats)
}

// Simulation owns the particle store, solver, fountain and telemetry for one
// run. Every owned resource is released by Close.
type Simulation struct {
	cfg  *config.Config
	opts Options

	mode  Mode
	state State

	world    *ecs.World
	rng      *rand.Rand
	params   systems.Params
	ps       *systems.ParticleSystem
	solver   *systems.Solver
	fountain *systems.FountainSystem

	tick int32

	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
}

// NewSimulation builds the scene described by cfg. The mode comes from
// cfg.Derived.Fountain.
func NewSimulation(cfg *config.Config, opts Options) (*Simulation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalid)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	s := &Simulation{
		cfg:           cfg,
		opts:          opts,
		outputManager: om,
	}
	if err := s.build(); err != nil {
		om.Close()
		return nil, err
	}
	return s, nil
}

// build creates every per-run object from the config and fills the scene.
func (s *Simulation) build() error {
	cfg := s.cfg

	s.mode = ModeStatic
	if cfg.Derived.Fountain {
		s.mode = ModeFountain
	}
	s.tick = 0
	s.world = ecs.NewWorld()
	s.rng = rand.New(rand.NewSource(s.opts.Seed))
	s.params = systems.NewParams(cfg)
	s.ps = systems.NewParticleSystem(s.params)

	lower := vec2(cfg.Container.Lower)
	upper := vec2(cfg.Container.Upper)
	if err := s.ps.SetContainerSize(lower, upper); err != nil {
		return fmt.Errorf("setting container: %w", err)
	}
	s.solver = systems.NewSolver(s.ps, s.params)

	var err error
	switch s.mode {
	case ModeFountain:
		s.setupFountain()
	default:
		err = s.fillBlocks()
	}
	if err != nil {
		return err
	}
	s.ps.UpdateBlockInfo()

	s.setupTelemetry()
	s.state = StateFilled

	bx, by := s.ps.BlockDims()
	slog.Info("simulation ready",
		"mode", s.mode.String(),
		"particles", s.ps.Len(),
		"blocks_x", bx,
		"blocks_y", by,
		"seed", s.opts.Seed,
	)
	return nil
}

// setupTelemetry creates the per-run collectors.
func (s *Simulation) setupTelemetry() {
	window := s.cfg.Telemetry.StatsWindow
	if s.opts.StatsWindowSec > 0 {
		window = s.opts.StatsWindowSec
	}
	ceiling := 0
	if s.mode == ModeFountain {
		ceiling = s.cfg.Fountain.MaxParticles
	}
	s.collector = telemetry.NewCollector(window, s.params.DT)
	s.perfCollector = telemetry.NewPerfCollector(s.cfg.Telemetry.PerfCollectorWindow)
	s.bookmarkDetector = telemetry.NewBookmarkDetector(10, ceiling)
}

// Reset discards all particles and rebuilds the scene from the config.
func (s *Simulation) Reset() error {
	if s.cfg == nil {
		return ErrClosed
	}
	s.releaseRun()
	return s.build()
}

// SetMode switches between static and fountain and rebuilds the scene.
func (s *Simulation) SetMode(m Mode) error {
	if s.cfg == nil {
		return ErrClosed
	}
	s.cfg.SetFountain(m == ModeFountain)
	return s.Reset()
}

// releaseRun drops the per-run objects so nothing outlives a rebuild.
func (s *Simulation) releaseRun() {
	if s.ps != nil {
		s.ps.Clear()
	}
	s.fountain = nil
	s.solver = nil
	s.ps = nil
	s.world = nil
	s.state = StateIdle
}

// Close releases every resource owned by the simulation. It is safe to call
// more than once.
func (s *Simulation) Close() error {
	if s.cfg == nil {
		return nil
	}
	s.releaseRun()
	err := s.outputManager.Close()
	s.outputManager = nil
	s.cfg = nil
	return err
}

// Particles returns the current particles in simulation units. The slice is
// only valid until the next Step.
func (s *Simulation) Particles() []components.Particle {
	if s.ps == nil {
		return nil
	}
	return s.ps.Particles()
}

// Len returns the current particle count.
func (s *Simulation) Len() int {
	if s.ps == nil {
		return 0
	}
	return s.ps.Len()
}

// Scale returns the world-to-simulation coordinate factor.
func (s *Simulation) Scale() float32 {
	return s.params.Scale
}

// Tick returns the number of Step calls since the last build.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// Mode returns the active mode.
func (s *Simulation) Mode() Mode {
	return s.mode
}

// State returns the lifecycle state.
func (s *Simulation) State() State {
	return s.state
}

// Params returns the active solver parameters.
func (s *Simulation) Params() systems.Params {
	return s.params
}

// Bounds returns the container in simulation units.
func (s *Simulation) Bounds() (lower, upper components.Vec2) {
	if s.ps == nil {
		return components.Vec2{}, components.Vec2{}
	}
	return s.ps.Bounds()
}

// SetViscosity updates the viscosity coefficient for subsequent steps.
func (s *Simulation) SetViscosity(v float32) {
	if s.solver == nil {
		return
	}
	s.params.Viscosity = v
	s.solver.SetParams(s.params)
}

// Frame returns a render snapshot of the current particles.
func (s *Simulation) Frame() systems.Frame {
	if s.ps == nil {
		return systems.Frame{Scale: s.params.Scale}
	}
	var drains []components.Drain
	if s.fountain != nil {
		drains = s.fountain.Drains()
	}
	return systems.BuildFrame(s.ps, s.mode == ModeFountain, drains)
}

// PerfStats returns the rolling performance statistics.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	if s.perfCollector == nil {
		return telemetry.PerfStats{}
	}
	return s.perfCollector.Stats()
}

// RecordFrame records a rendered frame for FPS tracking.
func (s *Simulation) RecordFrame() {
	if s.perfCollector != nil {
		s.perfCollector.RecordFrame()
	}
}

func vec2(v [2]float64) components.Vec2 {
	return components.Vec2{X: float32(v[0]), Y: float32(v[1])}
}

// Nearest returns the index of the particle closest to pos (simulation units)
// within radius.
func (s *Simulation) Nearest(pos components.Vec2, radius float32) (int, bool) {
	if s.ps == nil {
		return -1, false
	}
	return s.ps.Nearest(pos, radius)
}

// SimTime returns the simulated seconds since the last build.
func (s *Simulation) SimTime() float64 {
	return float64(s.tick) * float64(s.params.DT)
}
