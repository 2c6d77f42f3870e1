package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph2d/game"
	"github.com/pthm-cable/sph2d/inspector"
	"github.com/pthm-cable/sph2d/ui"
)

// inspectFields is the number of fields shown for a particle.
var inspectFields = len(inspector.ExtractFields(inspector.ParticleView{}))

// Draw renders one frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	v.background.Draw()

	lower, upper := v.sim.Bounds()
	v.fluid.DrawContainer(lower.X, lower.Y, upper.X, upper.Y, v.camera)

	frame := v.sim.Frame()
	v.fluid.Draw(&frame, v.camera)
	v.drawSelection()

	v.hud.Draw(ui.HUDData{
		Title:        "SPH Fluid",
		Mode:         v.sim.Mode().String(),
		Particles:    v.sim.Len(),
		Tick:         v.sim.Tick(),
		SimTime:      v.sim.SimTime(),
		Speed:        v.stepsPerUpdate,
		FPS:          rl.GetFPS(),
		Paused:       v.paused,
		ScreenWidth:  int32(v.screenWidth),
		ScreenHeight: int32(v.screenHeight),
	})
	if v.showPerf {
		v.perfPanel.Draw(v.sim.PerfStats())
	}
	v.statsPanel.Draw(v.lastStats)

	v.applyControls(v.controls.Draw(ui.ControlState{
		Paused:    v.paused,
		Fountain:  v.sim.Mode() == game.ModeFountain,
		Viscosity: v.sim.Params().Viscosity,
	}))

	v.hud.DrawControls(int32(v.screenWidth), int32(v.screenHeight),
		"Space: pause | R: reset | M: mode | ,/.: speed | P: perf | C: controls | Click: inspect")

	rl.EndDrawing()
	v.sim.RecordFrame()
}

// drawSelection outlines the selected particle and shows its panel.
func (v *Viewer) drawSelection() {
	i, ok := v.inspect.Selected()
	particles := v.sim.Particles()
	if !ok || i < 0 || i >= len(particles) {
		return
	}

	p := &particles[i]
	sx, sy := v.camera.WorldToScreen(p.Position.X, p.Position.Y)
	r := max(v.camera.WorldLength(v.sim.Params().SupportRadius), 4)
	rl.DrawCircleLines(int32(sx), int32(sy), r, rl.Yellow)

	lower, upper := v.sim.Bounds()
	view := inspector.NewParticleView(i, p, v.sim.Scale(), lower, upper)
	v.inspectUI.Draw("PARTICLE", view)
}
