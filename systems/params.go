package systems

import (
	"github.com/pthm-cable/sph2d/components"
	"github.com/pthm-cable/sph2d/config"
)

// Params holds the physical constants consumed by the particle store and solver.
// The solver treats them as read-only; use Solver.SetParams to change them.
type Params struct {
	Substep int
	DT      float32 // seconds per Step; each Solve advances DT/Substep

	RestDensity float32
	Stiffness   float32
	Exponent    float32
	Viscosity   float32

	// GravityY is the configured magnitude; it pulls toward decreasing Y.
	GravityX, GravityY float32

	MaxVelocity         float32
	VelocityAttenuation float32
	SupportRadius       float32
	Eps                 float32

	ParticleDiameter float32
	ParticleVolume   float32
	Scale            float32
}

// NewParams converts the loaded configuration into solver parameters.
func NewParams(cfg *config.Config) Params {
	f := cfg.Fluid
	return Params{
		Substep:             cfg.Simulation.Substep,
		DT:                  cfg.Derived.DT32,
		RestDensity:         float32(f.Density),
		Stiffness:           float32(f.Stiffness),
		Exponent:            float32(f.Exponent),
		Viscosity:           float32(f.Viscosity),
		GravityX:            float32(f.GravityX),
		GravityY:            float32(f.GravityY),
		MaxVelocity:         float32(f.MaxVelocity),
		VelocityAttenuation: float32(f.VelocityAttenuation),
		SupportRadius:       float32(f.SupportRadius),
		Eps:                 float32(f.Eps),
		ParticleDiameter:    cfg.Derived.ParticleDiameter,
		ParticleVolume:      cfg.Derived.ParticleVolume,
		Scale:               float32(f.Scale),
	}
}

// Gravity returns the gravity vector in simulation coordinates.
func (p Params) Gravity() components.Vec2 {
	return components.Vec2{X: p.GravityX, Y: -p.GravityY}
}

// ParticleMass is the constant mass shared by all particles.
func (p Params) ParticleMass() float32 {
	return p.RestDensity * p.ParticleVolume
}

// SubstepDT is the time advanced by a single Solve call.
func (p Params) SubstepDT() float32 {
	n := p.Substep
	if n < 1 {
		n = 1
	}
	return p.DT / float32(n)
}

// eps returns the singular-distance guard, never below 1e-6.
func (p Params) eps() float32 {
	if p.Eps < 1e-6 {
		return 1e-6
	}
	return p.Eps
}
