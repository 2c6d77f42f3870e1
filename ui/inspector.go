package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph2d/inspector"
)

// Inspector panel dimensions
const (
	InspectorWidth   = 260
	InspectorPadding = 10
	InspectorHeader  = 30
)

var (
	colorInspectorHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	colorBoolOn          = rl.Color{R: 100, G: 200, B: 100, A: 255}
	colorBoolOff         = rl.Color{R: 80, G: 80, B: 80, A: 255}
)

// InspectorPanel draws the fields of an inspected value.
type InspectorPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewInspectorPanel creates an inspector panel at (x, y).
func NewInspectorPanel(x, y int32) *InspectorPanel {
	return &InspectorPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *InspectorPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Contains reports whether a screen point lies on the panel.
func (p *InspectorPanel) Contains(sx, sy float32, fieldCount int) bool {
	h := p.height(fieldCount)
	return sx >= float32(p.x) && sx <= float32(p.x+InspectorWidth) &&
		sy >= float32(p.y) && sy <= float32(p.y+h)
}

func (p *InspectorPanel) height(fieldCount int) int32 {
	return InspectorHeader + InspectorPadding*2 + int32(fieldCount)*18
}

// Draw renders the tagged fields of v.
func (p *InspectorPanel) Draw(title string, v any) {
	fields := inspector.ExtractFields(v)
	h := p.height(len(fields))

	p.renderer.DrawPanel(p.x, p.y, InspectorWidth, h)
	rl.DrawRectangle(p.x, p.y, InspectorWidth, InspectorHeader, colorInspectorHeader)
	rl.DrawText(title, p.x+InspectorPadding, p.y+7, 16, rl.White)

	x := p.x + InspectorPadding
	y := p.y + InspectorHeader + InspectorPadding
	for _, f := range fields {
		y += p.drawField(x, y, f)
	}
}

func (p *InspectorPanel) drawField(x, y int32, f inspector.Field) int32 {
	theme := p.renderer.Theme
	switch f.Widget {
	case inspector.WidgetBar:
		if v, ok := inspector.GetFloatValue(f.Value); ok {
			p.renderer.DrawBar(x, y, f.Name, v, FieldRange{Max: inspector.GetMax(f.Options)}, InspectorWidth-2*InspectorPadding)
			return 18
		}
	case inspector.WidgetBool:
		if v, ok := f.Value.(bool); ok {
			rl.DrawText(f.Name+":", x, y, theme.FontSize, theme.LabelColor)
			color, text := colorBoolOff, "no"
			if v {
				color, text = colorBoolOn, "yes"
			}
			rl.DrawRectangle(x+theme.LabelWidth, y, 12, 12, color)
			rl.DrawText(text, x+theme.LabelWidth+17, y, theme.FontSize, color)
			return 18
		}
	}
	rl.DrawText(fmt.Sprintf("%s:", f.Name), x, y, theme.FontSize, theme.LabelColor)
	rl.DrawText(inspector.FormatValue(f.Value, f.Options["fmt"]), x+theme.LabelWidth, y, theme.FontSize, theme.ValueColor)
	return 18
}
