package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlState is the viewer state the controls panel reads and edits.
type ControlState struct {
	Paused    bool
	Fountain  bool
	Viscosity float32
}

// ControlActions reports what the user changed this frame.
type ControlActions struct {
	TogglePause     bool
	Reset           bool
	ToggleMode      bool
	ViscosityChange bool
	Viscosity       float32
}

// ControlsPanel renders the raygui controls: pause, reset, mode and viscosity.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	MinViscosity, MaxViscosity float32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer:     NewRenderer(),
		x:            x,
		y:            y,
		width:        width,
		visible:      true,
		MinViscosity: 0,
		MaxViscosity: 1,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and returns the actions taken this frame.
func (c *ControlsPanel) Draw(state ControlState) ControlActions {
	var actions ControlActions
	if !c.visible {
		return actions
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	panelHeight := lineHeight*6 + padding*3 + 60

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	inner := float32(c.width - 2*padding)

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += float32(lineHeight) + 6

	buttonW := (inner - 2*float32(padding)) / 3
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: buttonW, Height: 24}, toggleText(state.Paused, "Resume", "Pause")) {
		actions.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + buttonW + float32(padding), Y: y, Width: buttonW, Height: 24}, "Reset") {
		actions.Reset = true
	}
	if gui.Button(rl.Rectangle{X: x + 2*(buttonW+float32(padding)), Y: y, Width: buttonW, Height: 24}, toggleText(state.Fountain, "Static", "Fountain")) {
		actions.ToggleMode = true
	}
	y += 24 + float32(padding)

	rl.DrawText("Viscosity", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += float32(lineHeight)
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: inner - 60, Height: 18},
		"", "",
		state.Viscosity, c.MinViscosity, c.MaxViscosity,
	)
	rl.DrawText(fmt.Sprintf("%.3f", v), int32(x+inner-52), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
	if v != state.Viscosity {
		actions.ViscosityChange = true
		actions.Viscosity = v
	}

	return actions
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
