package telemetry

import (
	"github.com/pthm-cable/sph2d/components"
	"gonum.org/v1/gonum/floats"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	emitted       int
	drained       int
	killed        int
	healed        int
	fallbackSteps int
	pairs         int
	solves        int

	// Scratch buffers reused across flushes
	densities []float64
	speeds    []float64
	energies  []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordEmitted records particles injected by emitters.
func (c *Collector) RecordEmitted(n int) {
	c.emitted += n
}

// RecordCull records particles removed at drains and kill bounds.
func (c *Collector) RecordCull(drained, killed int) {
	c.drained += drained
	c.killed += killed
}

// RecordSolve records one solver pass.
func (c *Collector) RecordSolve(pairs, healed int, fallback bool) {
	c.pairs += pairs
	c.healed += healed
	c.solves++
	if fallback {
		c.fallbackSteps++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// particles are sampled for the density and speed distributions; mass is the
// per-particle mass used for kinetic energy.
func (c *Collector) Flush(currentTick int32, particles []components.Particle, mass float32) WindowStats {
	c.densities = c.densities[:0]
	c.speeds = c.speeds[:0]
	c.energies = c.energies[:0]
	for i := range particles {
		p := &particles[i]
		v2 := float64(p.Velocity.LenSq())
		c.densities = append(c.densities, float64(p.Density))
		c.speeds = append(c.speeds, float64(p.Velocity.Len()))
		c.energies = append(c.energies, 0.5*float64(mass)*v2)
	}

	var kinetic float64
	if len(c.energies) > 0 {
		kinetic = floats.Sum(c.energies)
	}
	density := ComputeDistribution(c.densities)
	speed := ComputeDistribution(c.speeds)

	var pairsPer float64
	if c.solves > 0 && len(particles) > 0 {
		pairsPer = float64(c.pairs) / float64(c.solves) / float64(len(particles))
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Particles: len(particles),

		Emitted: c.emitted,
		Drained: c.drained,
		Killed:  c.killed,

		Healed:           c.healed,
		FallbackSteps:    c.fallbackSteps,
		PairsPerParticle: pairsPer,

		DensityMean: density.Mean,
		DensityStd:  density.Std,
		DensityP10:  density.P10,
		DensityP50:  density.P50,
		DensityP90:  density.P90,
		DensityMax:  density.Max,

		SpeedMean: speed.Mean,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,
		SpeedMax:  speed.Max,

		KineticEnergy: kinetic,
	}

	c.reset(currentTick)
	return stats
}

func (c *Collector) reset(tick int32) {
	c.windowStartTick = tick
	c.emitted = 0
	c.drained = 0
	c.killed = 0
	c.healed = 0
	c.fallbackSteps = 0
	c.pairs = 0
	c.solves = 0
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
