// Package inspector tracks a selected particle across steps and exposes its
// state as tagged fields for display.
package inspector

import "github.com/pthm-cable/sph2d/components"

// Picker finds particles by position. Positions are in simulation units.
type Picker interface {
	Nearest(pos components.Vec2, radius float32) (int, bool)
	Particles() []components.Particle
}

// Inspector manages particle selection. Particles are reordered by every
// reindex, so the selection is tracked by position and re-resolved each frame.
type Inspector struct {
	pos         components.Vec2
	index       int
	hasSelected bool
}

// New creates an inspector with nothing selected.
func New() *Inspector {
	return &Inspector{}
}

// Select picks the particle nearest pos within radius. Returns false and
// clears the selection when none is in range.
func (ins *Inspector) Select(p Picker, pos components.Vec2, radius float32) bool {
	i, ok := p.Nearest(pos, radius)
	if !ok {
		ins.Deselect()
		return false
	}
	ins.index = i
	ins.pos = p.Particles()[i].Position
	ins.hasSelected = true
	return true
}

// Follow re-resolves the selection after particles moved. radius should
// cover the farthest a particle can travel between calls.
func (ins *Inspector) Follow(p Picker, radius float32) bool {
	if !ins.hasSelected {
		return false
	}
	return ins.Select(p, ins.pos, radius)
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
	ins.index = -1
}

// Selected returns the index of the selected particle as of the last Select
// or Follow.
func (ins *Inspector) Selected() (int, bool) {
	return ins.index, ins.hasSelected
}

// Position returns the last known position of the selection.
func (ins *Inspector) Position() components.Vec2 {
	return ins.pos
}
