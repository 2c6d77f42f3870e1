package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"github.com/pthm-cable/sph2d/components"
)

// Emission pattern constants, relative to the particle diameter.
const (
	emitLayerSpacing = 0.85
	emitPhaseSpacing = 0.04
	emitJitter       = 0.05
	emitLateralRatio = 0.7
	emitPhaseCycle   = 4
)

// CullStats counts particles removed by one Cull call.
type CullStats struct {
	Drained int
	Killed  int
}

// Removed returns the total number of culled particles.
func (c CullStats) Removed() int {
	return c.Drained + c.Killed
}

// FountainSystem injects particles at emitter entities and removes them at
// drain entities or once they leave the kill bounds.
type FountainSystem struct {
	emitterMap *ecs.Map1[components.Emitter]
	drainMap   *ecs.Map1[components.Drain]
	emitters   *ecs.Filter1[components.Emitter]
	drains     *ecs.Filter1[components.Drain]

	kill         components.KillBounds
	maxParticles int
	rng          *rand.Rand
	step         uint64

	drainBuf []components.Drain
}

// NewFountainSystem creates a fountain over world. Emitters and drains are
// added with AddEmitter and AddDrain.
func NewFountainSystem(world *ecs.World, maxParticles int, kill components.KillBounds, rng *rand.Rand) *FountainSystem {
	return &FountainSystem{
		emitterMap:   ecs.NewMap1[components.Emitter](world),
		drainMap:     ecs.NewMap1[components.Drain](world),
		emitters:     ecs.NewFilter1[components.Emitter](world),
		drains:       ecs.NewFilter1[components.Drain](world),
		kill:         kill,
		maxParticles: maxParticles,
		rng:          rng,
	}
}

// AddEmitter creates an emitter entity.
func (f *FountainSystem) AddEmitter(em components.Emitter) ecs.Entity {
	return f.emitterMap.NewEntity(&em)
}

// AddDrain creates a drain entity.
func (f *FountainSystem) AddDrain(d components.Drain) ecs.Entity {
	return f.drainMap.NewEntity(&d)
}

// Step returns the emission phase counter.
func (f *FountainSystem) Step() uint64 {
	return f.step
}

// SetStep restores the emission phase counter, e.g. when resuming a run.
func (f *FountainSystem) SetStep(step uint64) {
	f.step = step
}

// Advance moves the emission phase forward; called once per simulation step,
// before that step's first Emit.
func (f *FountainSystem) Advance() {
	f.step++
}

// Drains returns a snapshot of every drain in world units.
func (f *FountainSystem) Drains() []components.Drain {
	f.drainBuf = f.drainBuf[:0]
	query := f.drains.Query()
	for query.Next() {
		f.drainBuf = append(f.drainBuf, *query.Get())
	}
	return f.drainBuf
}

// Emit appends one batch of particles per emitter and returns how many were
// added. Emission stops silently at the particle ceiling; particles whose
// position falls outside the grid are discarded.
func (f *FountainSystem) Emit(ps *ParticleSystem) int {
	if ps.Len() >= f.maxParticles {
		return 0
	}

	params := ps.Params()
	emitted := 0
	query := f.emitters.Query()
	for query.Next() {
		em := query.Get()
		emitted += f.emitFrom(ps, em, params)
	}
	return emitted
}

func (f *FountainSystem) emitFrom(ps *ParticleSystem, em *components.Emitter, params Params) int {
	space := params.ParticleDiameter
	if space <= 0 || em.MaxX < em.MinX {
		return 0
	}

	maxVx := float32(math.Tan(float64(em.HalfAngle))) * em.Speed * emitLateralRatio
	jitterX := (f.rng.Float32() - 0.5) * space * emitJitter
	phase := float32(f.step%emitPhaseCycle) - 0.5*(emitPhaseCycle-1)
	baseY := em.Y + phase*space*emitPhaseSpacing
	step := space * emitLayerSpacing

	emitted := 0
	for layer := 0; layer < em.Layers; layer++ {
		y := baseY + float32(layer)*step
		offset := float32(0)
		if layer%2 == 1 {
			offset = 0.5 * step
		}

		for k := 0; ; k++ {
			x := em.MinX + offset + float32(k)*step
			if x > em.MaxX+1e-6 {
				break
			}
			if ps.Len() >= f.maxParticles {
				return emitted
			}

			// Every lattice point draws its lateral velocity, kept or not
			u := f.rng.Float32()
			pos := components.Vec2{X: x + jitterX, Y: y}.Scale(params.Scale)
			id := ps.BlockIDByPosition(pos)
			if id == InvalidBlock {
				continue
			}

			ps.Append(components.Particle{
				Position: pos,
				Velocity: components.Vec2{X: -maxVx + 2*maxVx*u, Y: em.Speed},
				Density:  params.RestDensity,
				BlockID:  id,
			})
			emitted++
		}
	}
	return emitted
}

// Cull removes drained particles and particles beyond the kill bounds in one
// order-preserving pass. Regions are tested in world units.
func (f *FountainSystem) Cull(ps *ParticleSystem) CullStats {
	var stats CullStats
	if ps.Len() == 0 {
		return stats
	}

	drains := f.Drains()
	inv := 1 / ps.Scale()
	ps.Compact(func(p *components.Particle) bool {
		x, y := p.Position.X*inv, p.Position.Y*inv
		for i := range drains {
			if drains[i].Contains(x, y) {
				stats.Drained++
				return false
			}
		}
		if f.kill.Outside(x, y) {
			stats.Killed++
			return false
		}
		return true
	})
	return stats
}
