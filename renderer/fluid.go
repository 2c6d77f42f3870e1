// Package renderer draws simulation frames with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph2d/camera"
	"github.com/pthm-cable/sph2d/systems"
)

// FluidRenderer draws particles colored by density relative to rest density.
type FluidRenderer struct {
	RestDensity float32
	Radius      float32 // particle draw radius in simulation units

	Low, Rest, High rl.Color // density ramp stops
	Mark            rl.Color // drain highlight and markers
}

// NewFluidRenderer creates a renderer for particles of the given radius.
func NewFluidRenderer(restDensity, radius float32) *FluidRenderer {
	return &FluidRenderer{
		RestDensity: restDensity,
		Radius:      radius,
		Low:         rl.Color{R: 40, G: 90, B: 170, A: 255},
		Rest:        rl.Color{R: 80, G: 170, B: 230, A: 255},
		High:        rl.Color{R: 235, G: 245, B: 255, A: 255},
		Mark:        rl.Color{R: 255, G: 150, B: 50, A: 255},
	}
}

// Draw renders every point of the frame through cam.
func (r *FluidRenderer) Draw(frame *systems.Frame, cam *camera.Camera) {
	size := max(cam.WorldLength(r.Radius), 1)

	for i, pos := range frame.Positions {
		if !cam.IsVisible(pos.X, pos.Y, r.Radius) {
			continue
		}
		color := r.DensityColor(frame.Densities[i])
		if frame.Marks[i] > 0 {
			color = r.Mark
		}
		sx, sy := cam.WorldToScreen(pos.X, pos.Y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size, color)
	}
}

// DrawContainer outlines the container bounds.
func (r *FluidRenderer) DrawContainer(lowerX, lowerY, upperX, upperY float32, cam *camera.Camera) {
	x0, y0 := cam.WorldToScreen(lowerX, upperY)
	x1, y1 := cam.WorldToScreen(upperX, lowerY)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 2, rl.Color{R: 90, G: 100, B: 110, A: 255})
}

// DensityColor maps density onto the Low-Rest-High ramp. Rest density lands
// on Rest; 1.5x rest and above on High. Zero density (drain markers) is Low.
func (r *FluidRenderer) DensityColor(density float32) rl.Color {
	if r.RestDensity <= 0 {
		return r.Rest
	}
	t := density / r.RestDensity
	switch {
	case t <= 0:
		return r.Low
	case t < 1:
		return lerpColor(r.Low, r.Rest, t)
	case t < 1.5:
		return lerpColor(r.Rest, r.High, (t-1)*2)
	}
	return r.High
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t)
	}
	return rl.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
