package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/sph2d/components"
)

func TestTwoParticleDensity(t *testing.T) {
	params := testParams()
	h := float64(params.SupportRadius)
	mass := float64(params.ParticleMass())
	coeff := 4 / (math.Pi * math.Pow(h, 8))
	self := mass * coeff * math.Pow(h*h, 3)

	tests := []struct {
		name string
		dist float64
		want float64
	}{
		{"within support", 0.02, self + mass*coeff*math.Pow(h*h-0.02*0.02, 3)},
		{"close pair", 0.005, self + mass*coeff*math.Pow(h*h-0.005*0.005, 3)},
		{"beyond support", 1.5 * h, self},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := newTestSystem(t, params)
			s := NewSolver(ps, params)
			ps.Append(components.Particle{Position: components.Vec2{X: 0, Y: 0}})
			ps.Append(components.Particle{Position: components.Vec2{X: float32(tt.dist), Y: 0}})
			ps.UpdateBlockInfo()
			s.computeDensities()

			for i, p := range ps.Particles() {
				if !approxEqual(float64(p.Density), tt.want, 1e-4) {
					t.Errorf("particle %d density = %g, want %g", i, p.Density, tt.want)
				}
			}
		})
	}
}

func TestDensityFloor(t *testing.T) {
	params := testParams()
	// A huge rest density makes the lone self contribution fall below the floor
	params.RestDensity = 1e6
	params.ParticleVolume = 1e-12
	ps := newTestSystem(t, params)
	s := NewSolver(ps, params)

	ps.Append(components.Particle{})
	ps.UpdateBlockInfo()
	s.computeDensities()

	want := 0.1 * params.RestDensity
	if got := ps.Particles()[0].Density; got != want {
		t.Errorf("density = %g, want floor %g", got, want)
	}
}

func TestPressureEquationOfState(t *testing.T) {
	params := testParams()
	ps := newTestSystem(t, params)
	s := NewSolver(ps, params)

	ps.Append(components.Particle{Density: params.RestDensity})
	ps.Append(components.Particle{Density: 2 * params.RestDensity})
	s.computePressures()

	p := ps.Particles()
	if p[0].Pressure != 0 {
		t.Errorf("pressure at rest density = %g, want 0", p[0].Pressure)
	}
	want := float64(params.Stiffness) * (math.Pow(2, float64(params.Exponent)) - 1)
	if !approxEqual(float64(p[1].Pressure), want, 1e-5) {
		t.Errorf("pressure at 2x rest = %g, want %g", p[1].Pressure, want)
	}
	wantRatio := float64(p[1].Pressure) / math.Pow(float64(p[1].Density), 2)
	if !approxEqual(float64(p[1].PressDivDens2), wantRatio, 1e-5) {
		t.Errorf("pressure/density^2 = %g, want %g", p[1].PressDivDens2, wantRatio)
	}
}

func TestGravityFreeFall(t *testing.T) {
	params := testParams()
	ps := newTestSystem(t, params)
	s := NewSolver(ps, params)

	ps.Append(components.Particle{Density: params.RestDensity})
	ps.UpdateBlockInfo()

	steps := 50
	for range steps {
		s.Step()
	}

	p := ps.Particles()[0]
	elapsed := float64(steps) * float64(params.DT)
	want := -float64(params.GravityY) * elapsed
	if math.Abs(float64(p.Velocity.Y)-want) > 1e-4 {
		t.Errorf("velocity.y = %g, want %g", p.Velocity.Y, want)
	}
	if p.Velocity.X != 0 {
		t.Errorf("velocity.x = %g, want 0", p.Velocity.X)
	}
	if p.Position.Y >= 0 {
		t.Errorf("position.y = %g, particle should have fallen", p.Position.Y)
	}
}

func TestWallReflection(t *testing.T) {
	params := testParams()
	params.GravityY = 0

	tests := []struct {
		name  string
		start func(lo, hi components.Vec2) components.Vec2
		vel   components.Vec2
		check func(t *testing.T, p components.Particle, lo, hi components.Vec2)
	}{
		{
			name:  "left wall",
			start: func(lo, _ components.Vec2) components.Vec2 { return components.Vec2{X: lo.X + 0.001} },
			vel:   components.Vec2{X: -1},
			check: func(t *testing.T, p components.Particle, lo, _ components.Vec2) {
				if p.Position.X != lo.X {
					t.Errorf("x = %g, want %g", p.Position.X, lo.X)
				}
				if p.Velocity.X != params.VelocityAttenuation {
					t.Errorf("vx = %g, want %g", p.Velocity.X, params.VelocityAttenuation)
				}
			},
		},
		{
			name:  "right wall",
			start: func(_, hi components.Vec2) components.Vec2 { return components.Vec2{X: hi.X - 0.001} },
			vel:   components.Vec2{X: 1},
			check: func(t *testing.T, p components.Particle, _, hi components.Vec2) {
				if p.Position.X != hi.X {
					t.Errorf("x = %g, want %g", p.Position.X, hi.X)
				}
				if p.Velocity.X != -params.VelocityAttenuation {
					t.Errorf("vx = %g, want %g", p.Velocity.X, -params.VelocityAttenuation)
				}
			},
		},
		{
			name:  "floor",
			start: func(lo, _ components.Vec2) components.Vec2 { return components.Vec2{Y: lo.Y + 0.001} },
			vel:   components.Vec2{Y: -2},
			check: func(t *testing.T, p components.Particle, lo, _ components.Vec2) {
				if p.Position.Y != lo.Y {
					t.Errorf("y = %g, want %g", p.Position.Y, lo.Y)
				}
				if want := 2 * params.VelocityAttenuation; p.Velocity.Y != want {
					t.Errorf("vy = %g, want %g", p.Velocity.Y, want)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := newTestSystem(t, params)
			s := NewSolver(ps, params)
			lo, hi := ps.Bounds()
			ps.Append(components.Particle{Position: tt.start(lo, hi), Velocity: tt.vel})
			ps.UpdateBlockInfo()

			s.Solve()
			tt.check(t, ps.Particles()[0], lo, hi)
		})
	}
}

func TestStepKeepsInvariants(t *testing.T) {
	params := testParams()
	ps := newTestSystem(t, params)
	s := NewSolver(ps, params)
	n := fillDefaultBlock(t, ps)

	for range 30 {
		stats := s.Step()
		if stats.Fallback {
			t.Fatal("solver took the fallback path on an indexed grid")
		}
	}

	if ps.Len() != n {
		t.Fatalf("Len = %d, want %d (solver must not add or remove)", ps.Len(), n)
	}

	lo, hi := ps.Bounds()
	floor := 0.1 * params.RestDensity
	limit := params.MaxVelocity * (1 + 1e-5)
	for i, p := range ps.Particles() {
		if p.Position.X < lo.X || p.Position.X > hi.X || p.Position.Y < lo.Y || p.Position.Y > hi.Y {
			t.Fatalf("particle %d at %v outside container", i, p.Position)
		}
		if p.Velocity.Len() > limit {
			t.Fatalf("particle %d speed %g exceeds %g", i, p.Velocity.Len(), params.MaxVelocity)
		}
		if p.Density < floor {
			t.Fatalf("particle %d density %g below floor %g", i, p.Density, floor)
		}
		if id := ps.BlockIDByPosition(p.Position); id != p.BlockID {
			t.Fatalf("particle %d block %d, position maps to %d", i, p.BlockID, id)
		}
	}
}

func TestSpeedClamp(t *testing.T) {
	params := testParams()
	params.GravityY = 0
	ps := newTestSystem(t, params)
	s := NewSolver(ps, params)

	ps.Append(components.Particle{Velocity: components.Vec2{X: 30, Y: 40}})
	ps.UpdateBlockInfo()
	s.Solve()

	v := ps.Particles()[0].Velocity
	if math.Abs(float64(v.Len()-params.MaxVelocity)) > 1e-4 {
		t.Errorf("speed = %g, want clamp %g", v.Len(), params.MaxVelocity)
	}
	// Direction is preserved
	if math.Abs(float64(v.X/v.Y)-0.75) > 1e-4 {
		t.Errorf("velocity direction changed: %v", v)
	}
}

func TestSolveFallbackWithoutIndex(t *testing.T) {
	params := testParams()
	ps := newTestSystem(t, params)
	s := NewSolver(ps, params)

	// Appended after SetContainerSize without a reindex: no block ranges yet
	ps.Append(components.Particle{Density: 5})
	stats := s.Solve()

	if !stats.Fallback {
		t.Fatal("expected the fallback path")
	}
	p := ps.Particles()[0]
	if p.Density != params.RestDensity {
		t.Errorf("density = %g, want rest density", p.Density)
	}
	want := -params.GravityY * params.SubstepDT()
	if math.Abs(float64(p.Velocity.Y-want)) > 1e-6 {
		t.Errorf("velocity.y = %g, want %g", p.Velocity.Y, want)
	}
	if !ps.gridReady() {
		t.Error("fallback should leave a reindexed grid")
	}
}

func TestSolveHealsOutOfRangeBlock(t *testing.T) {
	params := testParams()
	ps := newTestSystem(t, params)
	s := NewSolver(ps, params)

	ps.Append(components.Particle{})
	ps.Append(components.Particle{Position: components.Vec2{X: 0.5}})
	ps.UpdateBlockInfo()
	ps.particles[1].BlockID = InvalidBlock

	stats := s.Solve()
	if stats.Healed != 1 {
		t.Errorf("healed = %d, want 1", stats.Healed)
	}
	for i, p := range ps.Particles() {
		if p.BlockID >= ps.BlockCount() {
			t.Errorf("particle %d block %d still out of range", i, p.BlockID)
		}
	}
}

func TestSolveEmpty(t *testing.T) {
	params := testParams()
	ps := newTestSystem(t, params)
	s := NewSolver(ps, params)

	if stats := s.Step(); stats != (SolveStats{}) {
		t.Errorf("Step on empty store = %+v, want zero stats", stats)
	}
}

func TestSubstepSplitsDT(t *testing.T) {
	params := testParams()
	params.Substep = 4
	ps := newTestSystem(t, params)
	s := NewSolver(ps, params)

	ps.Append(components.Particle{})
	ps.UpdateBlockInfo()
	s.Step()

	// One Step still advances DT in total
	want := -params.GravityY * params.DT
	if got := ps.Particles()[0].Velocity.Y; math.Abs(float64(got-want)) > 1e-5 {
		t.Errorf("velocity.y after one step = %g, want %g", got, want)
	}
}

func TestStepMatchesReindexSolveLoop(t *testing.T) {
	params := testParams()
	params.Substep = 2

	a := newTestSystem(t, params)
	fillDefaultBlock(t, a)
	sa := NewSolver(a, params)

	b := newTestSystem(t, params)
	fillDefaultBlock(t, b)
	sb := NewSolver(b, params)

	sa.Step()
	for range params.Substep {
		b.UpdateBlockInfo()
		sb.Solve()
	}

	pa, pb := a.Particles(), b.Particles()
	if len(pa) != len(pb) {
		t.Fatalf("lengths differ: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("particle %d differs: %+v vs %+v", i, pa[i], pb[i])
		}
	}
}

func BenchmarkSolverStep(b *testing.B) {
	params := testParams()
	ps := newTestSystem(b, params)
	s := NewSolver(ps, params)
	fillDefaultBlock(b, ps)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step()
	}
}
