package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// BackgroundRenderer fills the screen with a vertical gradient.
type BackgroundRenderer struct {
	screenW, screenH int32
	top, bottom      rl.Color
}

// NewBackgroundRenderer creates a background with the given base color.
func NewBackgroundRenderer(screenW, screenH int32, baseR, baseG, baseB uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		screenW: screenW,
		screenH: screenH,
		top:     rl.Color{R: baseR, G: baseG, B: baseB, A: 255},
		bottom:  rl.Color{R: baseR / 2, G: baseG / 2, B: baseB / 2, A: 255},
	}
}

// Resize updates the screen dimensions.
func (b *BackgroundRenderer) Resize(screenW, screenH int32) {
	b.screenW = screenW
	b.screenH = screenH
}

// Draw renders the background.
func (b *BackgroundRenderer) Draw() {
	rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, b.top, b.bottom)
}
