package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph2d/components"
	"github.com/pthm-cable/sph2d/game"
	"github.com/pthm-cable/sph2d/ui"
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.reset()
	}
	if rl.IsKeyPressed(rl.KeyM) {
		v.toggleMode()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}
	if rl.IsKeyPressed(rl.KeyC) {
		v.controls.Toggle()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.stepsPerUpdate > 1 {
		v.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.stepsPerUpdate < maxStepsPerUpdate {
		v.stepsPerUpdate++
	}

	v.handleCameraInput()
	v.handleSelection()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	v.camera.Resize(w, h)
	v.background.Resize(int32(w), int32(h))
	v.statsPanel.SetPosition(int32(w)-230, 10)
	v.controls.SetPosition(10, int32(h)-170)
	v.inspectUI.SetPosition(int32(w)-ui.InspectorWidth-10, 330)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	panSpeed := float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.2)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(1 / 1.2)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}

	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		v.camera.Pan(-d.X, -d.Y)
	}
}

// handleSelection picks a particle on left click; right click or Escape clears it.
func (v *Viewer) handleSelection() {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		v.inspect.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	mouse := rl.GetMousePosition()
	if v.overPanel(mouse.X, mouse.Y) {
		return
	}
	wx, wy := v.camera.ScreenToWorld(mouse.X, mouse.Y)
	radius := 8 / v.camera.PixelsPerUnit()
	v.inspect.Select(v.sim, components.Vec2{X: wx, Y: wy}, max(radius, v.sim.Params().ParticleDiameter))
}

// overPanel reports whether a screen point is covered by a clickable panel.
func (v *Viewer) overPanel(sx, sy float32) bool {
	if _, ok := v.inspect.Selected(); ok && v.inspectUI.Contains(sx, sy, inspectFields) {
		return true
	}
	return v.controls.IsVisible() && sy >= v.screenHeight-170 && sx <= 310
}

// applyControls handles the raygui panel actions.
func (v *Viewer) applyControls(a ui.ControlActions) {
	if a.TogglePause {
		v.paused = !v.paused
	}
	if a.Reset {
		v.reset()
	}
	if a.ToggleMode {
		v.toggleMode()
	}
	if a.ViscosityChange {
		v.sim.SetViscosity(a.Viscosity)
	}
}

func (v *Viewer) reset() {
	visc := v.sim.Params().Viscosity
	if err := v.sim.Reset(); err != nil {
		slog.Error("reset failed", "error", err)
		return
	}
	v.sim.SetViscosity(visc)
	v.inspect.Deselect()
	v.lastStats = nil
}

func (v *Viewer) toggleMode() {
	mode := game.ModeFountain
	if v.sim.Mode() == game.ModeFountain {
		mode = game.ModeStatic
	}
	visc := v.sim.Params().Viscosity
	if err := v.sim.SetMode(mode); err != nil {
		slog.Error("mode switch failed", "error", err)
		return
	}
	v.sim.SetViscosity(visc)
	v.inspect.Deselect()
	v.lastStats = nil
}
