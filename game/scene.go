package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/sph2d/components"
	"github.com/pthm-cable/sph2d/systems"
	"github.com/pthm-cable/sph2d/telemetry"
)

// fillBlocks places the configured fluid blocks for the static mode.
func (s *Simulation) fillBlocks() error {
	for i, b := range s.cfg.FluidBlocks {
		n, err := s.ps.AddFluidBlock(vec2(b.Lower), vec2(b.Upper), vec2(b.InitVelocity), float32(b.ParticleSpace))
		if err != nil {
			return fmt.Errorf("fluid block %d: %w", i, err)
		}
		if n == 0 {
			slog.Warn("fluid block added no particles", "block", i, "lower", b.Lower, "upper", b.Upper)
		}
	}
	return nil
}

// setupFountain spawns the emitter and drain entities.
func (s *Simulation) setupFountain() {
	f := s.cfg.Fountain
	kill := components.KillBounds{Extent: float32(f.KillBound)}
	s.fountain = systems.NewFountainSystem(s.world, f.MaxParticles, kill, s.rng)

	s.fountain.AddEmitter(components.Emitter{
		MinX:      float32(f.EmitterMinX),
		MaxX:      float32(f.EmitterMaxX),
		Y:         float32(f.EmitterY),
		Speed:     float32(f.EmitterSpeed),
		HalfAngle: float32(f.EmitterHalfAngle),
		Layers:    f.EmitterLayers,
	})
	s.fountain.AddDrain(components.Drain{
		MinX: float32(f.DrainMinX),
		MaxX: float32(f.DrainMaxX),
		Y:    float32(f.DrainY),
	})
}

// Snapshot captures the current particles for later Restore.
func (s *Simulation) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:        telemetry.SnapshotVersion,
		RNGSeed:        s.opts.Seed,
		Mode:           s.mode.String(),
		Scale:          s.params.Scale,
		ContainerLower: corner(s.cfg.Container.Lower),
		ContainerUpper: corner(s.cfg.Container.Upper),
		Tick:           s.tick,
		Particles:      telemetry.CaptureParticles(s.Particles()),
		Bookmark:       bookmark,
	}
	if s.fountain != nil {
		snap.EmitStep = s.fountain.Step()
	}
	return snap
}

// Restore replaces the particles with those of snap. The snapshot must have
// been taken in the same mode, scale and container.
func (s *Simulation) Restore(snap *telemetry.Snapshot) error {
	if s.ps == nil {
		return ErrClosed
	}
	if snap.Mode != s.mode.String() {
		return fmt.Errorf("snapshot mode %q does not match %q", snap.Mode, s.mode)
	}
	if snap.Scale != s.params.Scale {
		return fmt.Errorf("snapshot scale %v does not match %v", snap.Scale, s.params.Scale)
	}
	lower, upper := corner(s.cfg.Container.Lower), corner(s.cfg.Container.Upper)
	if snap.ContainerLower != lower || snap.ContainerUpper != upper {
		return fmt.Errorf("snapshot container %v-%v does not match %v-%v",
			snap.ContainerLower, snap.ContainerUpper, lower, upper)
	}

	s.ps.Clear()
	for _, p := range snap.Particles {
		s.ps.Append(p.Particle())
	}
	s.ps.UpdateBlockInfo()

	s.tick = snap.Tick
	if s.fountain != nil {
		s.fountain.SetStep(snap.EmitStep)
	}
	s.state = StateFilled

	slog.Info("snapshot restored", "tick", s.tick, "particles", s.ps.Len())
	return nil
}

func corner(v [2]float64) [2]float32 {
	return [2]float32{float32(v[0]), float32(v[1])}
}
