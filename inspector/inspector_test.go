package inspector

import (
	"testing"

	"github.com/pthm-cable/sph2d/components"
)

// listPicker scans a plain slice.
type listPicker []components.Particle

func (l listPicker) Particles() []components.Particle { return l }

func (l listPicker) Nearest(pos components.Vec2, radius float32) (int, bool) {
	best, bestD2 := -1, radius*radius
	for i, p := range l {
		if d2 := p.Position.Sub(pos).LenSq(); d2 <= bestD2 {
			best, bestD2 = i, d2
		}
	}
	return best, best >= 0
}

func at(x, y float32) components.Particle {
	return components.Particle{Position: components.Vec2{X: x, Y: y}}
}

func TestSelect(t *testing.T) {
	ins := New()
	p := listPicker{at(0, 0), at(1, 0), at(0, 1)}

	if !ins.Select(p, components.Vec2{X: 0.9, Y: 0.1}, 0.5) {
		t.Fatal("expected selection")
	}
	if i, ok := ins.Selected(); !ok || i != 1 {
		t.Errorf("selected = %d, %v; want 1, true", i, ok)
	}

	if ins.Select(p, components.Vec2{X: 5, Y: 5}, 0.5) {
		t.Error("expected miss")
	}
	if _, ok := ins.Selected(); ok {
		t.Error("miss should clear the selection")
	}
}

func TestFollowTracksReorder(t *testing.T) {
	ins := New()
	p := listPicker{at(0, 0), at(1, 0)}
	ins.Select(p, components.Vec2{X: 1, Y: 0}, 0.1)

	// Reindex swapped the order and the particle moved slightly
	moved := listPicker{at(1.05, 0), at(0, 0)}
	if !ins.Follow(moved, 0.1) {
		t.Fatal("follow lost the particle")
	}
	if i, _ := ins.Selected(); i != 0 {
		t.Errorf("selected = %d, want 0", i)
	}
	if ins.Position().X != 1.05 {
		t.Errorf("position = %v, want x=1.05", ins.Position())
	}

	// Drained
	if ins.Follow(listPicker{at(0, 0)}, 0.1) {
		t.Error("follow should drop a removed particle")
	}
}

func TestFollowWithoutSelection(t *testing.T) {
	ins := New()
	if ins.Follow(listPicker{at(0, 0)}, 1) {
		t.Error("follow without selection should be a no-op")
	}
}
