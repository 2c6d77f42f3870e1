package ui

import (
	"fmt"

	"github.com/pthm-cable/sph2d/telemetry"
)

// FlowStatsPanel shows the most recent telemetry window.
type FlowStatsPanel struct {
	renderer   *Renderer
	descriptor PanelDescriptor
	x, y       int32
}

// NewFlowStatsPanel creates a stats panel. restDensity sets the scale of the
// density bars.
func NewFlowStatsPanel(x, y, width int32, restDensity float32) *FlowStatsPanel {
	return &FlowStatsPanel{
		renderer:   NewRenderer(),
		descriptor: FlowStatsDescriptor(width, restDensity),
		x:          x,
		y:          y,
	}
}

// SetPosition updates the panel position.
func (p *FlowStatsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel for stats. Nothing is drawn before the first window.
func (p *FlowStatsPanel) Draw(stats *telemetry.WindowStats) {
	if stats == nil {
		return
	}
	p.renderer.DrawDescriptor(p.x, p.y, p.descriptor, stats)
}

func windowStats(data any) *telemetry.WindowStats {
	s, _ := data.(*telemetry.WindowStats)
	if s == nil {
		return &telemetry.WindowStats{}
	}
	return s
}

func statGetter(f func(*telemetry.WindowStats) float64) func(any) float32 {
	return func(data any) float32 {
		return float32(f(windowStats(data)))
	}
}

// FlowStatsDescriptor describes the stats panel layout.
func FlowStatsDescriptor(width int32, restDensity float32) PanelDescriptor {
	densityRange := FieldRange{Min: 0, Max: 1.5 * restDensity}
	hasFlow := func(data any) bool {
		s := windowStats(data)
		return s.Emitted+s.Drained+s.Killed > 0
	}

	return PanelDescriptor{
		ID:    "flow_stats",
		Title: "Flow",
		Width: width,
		Sections: []SectionDescriptor{
			{
				ID: "window",
				Fields: []FieldDescriptor{
					{ID: "sim_time", Label: "Time", Widget: WidgetText, Format: "%.3fs",
						Getter: statGetter(func(s *telemetry.WindowStats) float64 { return s.SimTimeSec })},
					{ID: "particles", Label: "Particles", Widget: WidgetText,
						TextGetter: func(data any) string { return fmt.Sprintf("%d", windowStats(data).Particles) }},
					{ID: "pairs", Label: "Neighbors", Widget: WidgetText, Format: "%.1f",
						Getter: statGetter(func(s *telemetry.WindowStats) float64 { return s.PairsPerParticle })},
				},
			},
			{
				ID:    "density",
				Title: "Density",
				Fields: []FieldDescriptor{
					{ID: "density_p50", Label: "median", Widget: WidgetBar, Range: densityRange,
						Getter: statGetter(func(s *telemetry.WindowStats) float64 { return s.DensityP50 })},
					{ID: "density_p90", Label: "p90", Widget: WidgetBar, Range: densityRange,
						Getter: statGetter(func(s *telemetry.WindowStats) float64 { return s.DensityP90 })},
					{ID: "density_max", Label: "max", Widget: WidgetBar, Range: densityRange,
						Getter: statGetter(func(s *telemetry.WindowStats) float64 { return s.DensityMax })},
				},
			},
			{
				ID:    "speed",
				Title: "Speed",
				Fields: []FieldDescriptor{
					{ID: "speed_mean", Label: "mean", Widget: WidgetText, Format: "%.3f",
						Getter: statGetter(func(s *telemetry.WindowStats) float64 { return s.SpeedMean })},
					{ID: "speed_max", Label: "max", Widget: WidgetText, Format: "%.3f",
						Getter: statGetter(func(s *telemetry.WindowStats) float64 { return s.SpeedMax })},
					{ID: "kinetic_energy", Label: "KE", Widget: WidgetText, Format: "%.4f",
						Getter: statGetter(func(s *telemetry.WindowStats) float64 { return s.KineticEnergy })},
				},
			},
			{
				ID:      "flow",
				Title:   "Fountain",
				Visible: hasFlow,
				Fields: []FieldDescriptor{
					{ID: "emitted", Label: "Emitted", Widget: WidgetText,
						TextGetter: func(data any) string { return fmt.Sprintf("%d", windowStats(data).Emitted) }},
					{ID: "drained", Label: "Drained", Widget: WidgetText,
						TextGetter: func(data any) string { return fmt.Sprintf("%d", windowStats(data).Drained) }},
					{ID: "killed", Label: "Killed", Widget: WidgetText,
						TextGetter: func(data any) string { return fmt.Sprintf("%d", windowStats(data).Killed) }},
				},
			},
		},
	}
}
