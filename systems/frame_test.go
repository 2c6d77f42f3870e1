package systems

import (
	"testing"

	"github.com/pthm-cable/sph2d/components"
)

func TestBuildFrameStatic(t *testing.T) {
	params := testParams()
	ps := newTestSystem(t, params)
	n := fillDefaultBlock(t, ps)

	f := BuildFrame(ps, false, nil)
	if f.Len() != n || len(f.Densities) != n || len(f.Marks) != n {
		t.Fatalf("frame sizes %d/%d/%d, want %d", f.Len(), len(f.Densities), len(f.Marks), n)
	}
	if f.Scale != params.Scale {
		t.Errorf("frame scale = %g, want %g", f.Scale, params.Scale)
	}
	for i, m := range f.Marks {
		if m != 0 {
			t.Fatalf("mark %d = %g in static mode, want 0", i, m)
		}
	}
}

func TestBuildFrameFountainMarks(t *testing.T) {
	params := testParams()
	ps := newTestSystem(t, params)
	drain := components.Drain{MinX: -0.25, MaxX: 0.25, Y: -1.0}

	near := components.Vec2{X: 0, Y: -0.99}.Scale(params.Scale)
	far := components.Vec2{X: 0, Y: 0.5}.Scale(params.Scale)
	ps.Append(components.Particle{Position: near, Density: 900})
	ps.Append(components.Particle{Position: far, Density: 1100})

	f := BuildFrame(ps, true, []components.Drain{drain})

	if want := 2 + DrainMarkers; f.Len() != want {
		t.Fatalf("frame len = %d, want %d", f.Len(), want)
	}
	if f.Marks[0] != 1 {
		t.Errorf("particle in drain band mark = %g, want 1", f.Marks[0])
	}
	if f.Marks[1] != 0 {
		t.Errorf("particle away from drain mark = %g, want 0", f.Marks[1])
	}
	if f.Densities[1] != 1100 {
		t.Errorf("density = %g, want 1100", f.Densities[1])
	}

	markers := f.Positions[2:]
	for i, p := range markers {
		if f.Densities[2+i] != 0 || f.Marks[2+i] != 1 {
			t.Errorf("marker %d density/mark = %g/%g, want 0/1", i, f.Densities[2+i], f.Marks[2+i])
		}
		if p.Y != drain.Y*params.Scale {
			t.Errorf("marker %d y = %g, want drain edge %g", i, p.Y, drain.Y*params.Scale)
		}
	}
	if markers[0].X != drain.MinX*params.Scale || markers[DrainMarkers-1].X != drain.MaxX*params.Scale {
		t.Errorf("markers span %g..%g, want drain width", markers[0].X, markers[DrainMarkers-1].X)
	}
}
