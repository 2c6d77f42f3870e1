package systems

import "github.com/pthm-cable/sph2d/components"

const (
	// DrainHighlight is the band above a drain (world units) whose particles are marked.
	DrainHighlight = 0.02
	// DrainMarkers is the number of static points drawn along each drain edge.
	DrainMarkers = 32
)

// Frame is a render snapshot. Positions are in simulation units; divide by
// Scale for world units. Marks are 1 for highlighted points and 0 otherwise.
type Frame struct {
	Positions []components.Vec2
	Densities []float32
	Marks     []float32
	Scale     float32
}

// Len returns the number of points in the frame.
func (f *Frame) Len() int {
	return len(f.Positions)
}

// BuildFrame captures the particles of ps. In fountain mode particles near a
// drain are marked and marker points along each drain edge are appended with
// zero density.
func BuildFrame(ps *ParticleSystem, fountain bool, drains []components.Drain) Frame {
	particles := ps.Particles()
	n := len(particles)
	if fountain {
		n += len(drains) * DrainMarkers
	}

	scale := ps.Scale()
	f := Frame{
		Positions: make([]components.Vec2, 0, n),
		Densities: make([]float32, 0, n),
		Marks:     make([]float32, 0, n),
		Scale:     scale,
	}

	inv := 1 / scale
	for i := range particles {
		p := &particles[i]
		mark := float32(0)
		if fountain && nearDrain(drains, p.Position.X*inv, p.Position.Y*inv) {
			mark = 1
		}
		f.Positions = append(f.Positions, p.Position)
		f.Densities = append(f.Densities, p.Density)
		f.Marks = append(f.Marks, mark)
	}

	if !fountain {
		return f
	}
	for _, d := range drains {
		for k := 0; k < DrainMarkers; k++ {
			t := float32(k) / float32(DrainMarkers-1)
			x := d.MinX + (d.MaxX-d.MinX)*t
			f.Positions = append(f.Positions, components.Vec2{X: x, Y: d.Y}.Scale(scale))
			f.Densities = append(f.Densities, 0)
			f.Marks = append(f.Marks, 1)
		}
	}
	return f
}

func nearDrain(drains []components.Drain, x, y float32) bool {
	for i := range drains {
		d := &drains[i]
		if x >= d.MinX && x <= d.MaxX && y <= d.Y+DrainHighlight {
			return true
		}
	}
	return false
}
