package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/sph2d/components"
)

func TestCollectorWindowTicks(t *testing.T) {
	tests := []struct {
		name   string
		window float64
		dt     float32
		want   int32
	}{
		{"default window", 0.16, 0.0016, 99},
		{"window shorter than dt", 0.001, 0.0016, 1},
		{"one second", 1, 0.01, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector(tt.window, tt.dt)
			// float32 dt makes the division land just below the integer
			if got := c.WindowDurationTicks(); got < tt.want || got > tt.want+1 {
				t.Errorf("window ticks = %d, want %d or %d", got, tt.want, tt.want+1)
			}
		})
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(0.016, 0.0016)

	c.RecordEmitted(8)
	c.RecordEmitted(8)
	c.RecordCull(3, 1)
	c.RecordSolve(100, 0, false)
	c.RecordSolve(300, 2, true)

	particles := []components.Particle{
		{Velocity: components.Vec2{X: 3, Y: 4}, Density: 1000},
		{Velocity: components.Vec2{}, Density: 800},
	}

	if c.ShouldFlush(5) {
		t.Error("should not flush before the window elapses")
	}
	ticks := c.WindowDurationTicks()
	if !c.ShouldFlush(ticks) {
		t.Fatalf("should flush at tick %d", ticks)
	}

	stats := c.Flush(ticks, particles, 2)

	if stats.Particles != 2 {
		t.Errorf("particles = %d, want 2", stats.Particles)
	}
	if stats.Emitted != 16 || stats.Drained != 3 || stats.Killed != 1 {
		t.Errorf("lifecycle = %d/%d/%d, want 16/3/1", stats.Emitted, stats.Drained, stats.Killed)
	}
	if stats.Healed != 2 || stats.FallbackSteps != 1 {
		t.Errorf("healed/fallback = %d/%d, want 2/1", stats.Healed, stats.FallbackSteps)
	}
	// 400 pairs over 2 solves and 2 particles
	if stats.PairsPerParticle != 100 {
		t.Errorf("pairs per particle = %v, want 100", stats.PairsPerParticle)
	}
	if stats.DensityMax != 1000 || stats.DensityMean != 900 {
		t.Errorf("density max/mean = %v/%v, want 1000/900", stats.DensityMax, stats.DensityMean)
	}
	if stats.SpeedMax != 5 {
		t.Errorf("speed max = %v, want 5", stats.SpeedMax)
	}
	// 0.5 * m * v^2 = 0.5 * 2 * 25
	if math.Abs(stats.KineticEnergy-25) > 1e-9 {
		t.Errorf("kinetic energy = %v, want 25", stats.KineticEnergy)
	}
	if want := float64(ticks) * float64(float32(0.0016)); math.Abs(stats.SimTimeSec-want) > 1e-12 {
		t.Errorf("sim time = %v, want %v", stats.SimTimeSec, want)
	}

	// Counters reset for the next window
	next := c.Flush(2*ticks, nil, 2)
	if next.Emitted != 0 || next.Drained != 0 || next.Healed != 0 || next.PairsPerParticle != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.WindowStartTick != ticks {
		t.Errorf("window start = %d, want %d", next.WindowStartTick, ticks)
	}
}
