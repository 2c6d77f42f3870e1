// Package viewer runs a Simulation in a raylib window with pan/zoom, particle
// inspection and raygui controls.
package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph2d/camera"
	"github.com/pthm-cable/sph2d/config"
	"github.com/pthm-cable/sph2d/game"
	"github.com/pthm-cable/sph2d/inspector"
	"github.com/pthm-cable/sph2d/renderer"
	"github.com/pthm-cable/sph2d/telemetry"
	"github.com/pthm-cable/sph2d/ui"
)

const maxStepsPerUpdate = 10

// Viewer owns the window-side state. The raylib window must be open before
// New is called.
type Viewer struct {
	sim *game.Simulation
	cfg *config.Config

	screenWidth, screenHeight float32

	camera     *camera.Camera
	background *renderer.BackgroundRenderer
	fluid      *renderer.FluidRenderer
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	statsPanel *ui.FlowStatsPanel
	controls   *ui.ControlsPanel
	inspect    *inspector.Inspector
	inspectUI  *ui.InspectorPanel

	paused         bool
	stepsPerUpdate int
	showPerf       bool
	lastStats      *telemetry.WindowStats
}

// New creates a viewer over a fresh simulation built from cfg. opts.StatsCallback
// is wrapped so the viewer sees every flushed window.
func New(cfg *config.Config, opts game.Options) (*Viewer, error) {
	v := &Viewer{
		cfg:            cfg,
		screenWidth:    float32(rl.GetScreenWidth()),
		screenHeight:   float32(rl.GetScreenHeight()),
		stepsPerUpdate: 1,
		inspect:        inspector.New(),
	}

	userCallback := opts.StatsCallback
	opts.StatsCallback = func(s telemetry.WindowStats) {
		v.lastStats = &s
		if userCallback != nil {
			userCallback(s)
		}
	}

	sim, err := game.NewSimulation(cfg, opts)
	if err != nil {
		return nil, err
	}
	v.sim = sim

	lower, upper := sim.Bounds()
	params := sim.Params()
	w, h := int32(v.screenWidth), int32(v.screenHeight)

	v.camera = camera.New(v.screenWidth, v.screenHeight, lower.X, lower.Y, upper.X, upper.Y)
	v.background = renderer.NewBackgroundRenderer(w, h, 24, 30, 38)
	v.fluid = renderer.NewFluidRenderer(params.RestDensity, params.ParticleDiameter/2)
	v.hud = ui.NewHUD()
	v.perfPanel = ui.NewPerfPanel(10, 100)
	v.statsPanel = ui.NewFlowStatsPanel(w-230, 10, 220, params.RestDensity)
	v.controls = ui.NewControlsPanel(10, h-170, 300)
	v.controls.MaxViscosity = max(1, 2*params.Viscosity)
	v.inspectUI = ui.NewInspectorPanel(w-ui.InspectorWidth-10, 330)

	slog.Info("viewer ready", "width", w, "height", h)
	return v, nil
}

// Simulation returns the simulation driven by the viewer.
func (v *Viewer) Simulation() *game.Simulation {
	return v.sim
}

// Tick returns the simulation tick.
func (v *Viewer) Tick() int32 {
	return v.sim.Tick()
}

// Update handles input and advances the simulation unless paused.
func (v *Viewer) Update() {
	v.handleInput()

	if !v.paused {
		for range v.stepsPerUpdate {
			v.sim.Step()
		}
	}

	// A particle moves at most MaxVelocity*DT per step
	params := v.sim.Params()
	radius := max(params.SupportRadius, params.MaxVelocity*params.DT*float32(v.stepsPerUpdate))
	v.inspect.Follow(v.sim, radius)
}

// Close releases the simulation.
func (v *Viewer) Close() error {
	return v.sim.Close()
}
