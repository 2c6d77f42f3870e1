package systems

import (
	"math"

	"github.com/pthm-cable/sph2d/components"
)

// SolveStats summarizes one Solve call.
type SolveStats struct {
	Pairs    int  // neighbor pairs inside the support radius
	Healed   int  // particles whose block had to be recomputed
	Fallback bool // grid was not ready; only gravity was applied
}

// Solver advances a ParticleSystem with weakly compressible SPH.
type Solver struct {
	ps      *ParticleSystem
	params  Params
	kernels Kernels
	eps     float32
	mass    float32
}

// NewSolver creates a solver bound to ps. The solver does not own ps.
func NewSolver(ps *ParticleSystem, params Params) *Solver {
	s := &Solver{ps: ps}
	s.SetParams(params)
	return s
}

// SetParams replaces the physical constants and rebuilds the kernels.
// The particle store is resized to match the new support radius.
func (s *Solver) SetParams(params Params) {
	s.params = params
	s.eps = params.eps()
	s.mass = params.ParticleMass()
	s.kernels = NewKernels(params.SupportRadius, s.eps)
	s.ps.SetParams(params)
}

// Params returns the active parameters.
func (s *Solver) Params() Params {
	return s.params
}

// Kernels returns the precomputed smoothing kernels.
func (s *Solver) Kernels() Kernels {
	return s.kernels
}

// Step runs Substep solver passes, reindexing before each one. It is the
// static-scene step for callers that drive a Solver directly; the game layer
// runs the same sequence itself to time reindex and solve separately.
func (s *Solver) Step() SolveStats {
	var total SolveStats
	n := max(1, s.params.Substep)
	for range n {
		s.ps.UpdateBlockInfo()
		st := s.Solve()
		total.Pairs += st.Pairs
		total.Healed += st.Healed
		total.Fallback = total.Fallback || st.Fallback
	}
	return total
}

// Solve advances every particle by one sub-step of DT/Substep and reindexes.
// It assumes the grid was reindexed since particles last moved; otherwise it
// falls back to gravity-only integration.
func (s *Solver) Solve() SolveStats {
	var stats SolveStats
	if s.ps.Len() == 0 {
		return stats
	}
	dt := s.params.SubstepDT()

	if !s.ps.gridReady() {
		s.fallback(dt)
		stats.Fallback = true
		return stats
	}

	stats.Healed = s.heal()
	s.computeDensities()
	s.computePressures()
	stats.Pairs = s.computeForces()

	particles := s.ps.particles
	for i := range particles {
		s.integrate(&particles[i], dt)
	}
	s.ps.UpdateBlockInfo()
	return stats
}

// fallback integrates under gravity alone when no neighbor structure exists.
func (s *Solver) fallback(dt float32) {
	g := s.params.Gravity()
	particles := s.ps.particles
	for i := range particles {
		p := &particles[i]
		p.Density = s.params.RestDensity
		p.Pressure = 0
		p.PressDivDens2 = 0
		p.Acceleration = g
		s.integrate(p, dt)
	}
	s.ps.UpdateBlockInfo()
}

// heal recomputes the block of every particle whose BlockID is out of range.
func (s *Solver) heal() int {
	count := s.ps.BlockCount()
	healed := 0
	particles := s.ps.particles
	for i := range particles {
		if particles[i].BlockID < count {
			continue
		}
		s.ps.resolveBlock(&particles[i])
		healed++
	}
	return healed
}

func (s *Solver) computeDensities() {
	particles := s.ps.particles
	floor := 0.1 * s.params.RestDensity
	for i := range particles {
		pi := &particles[i]
		var sum float32
		s.ps.ForEachNeighbor(i, func(j int) {
			r := pi.Position.Sub(particles[j].Position)
			sum += s.kernels.Poly6(r.LenSq())
		})
		pi.Density = max(sum*s.mass, floor)
	}
}

func (s *Solver) computePressures() {
	particles := s.ps.particles
	rho0 := float64(s.params.RestDensity)
	k := float64(s.params.Stiffness)
	gamma := float64(s.params.Exponent)
	for i := range particles {
		p := &particles[i]
		p.Pressure = float32(k * (math.Pow(float64(p.Density)/rho0, gamma) - 1))
		p.PressDivDens2 = p.Pressure / (p.Density * p.Density)
	}
}

// computeForces sets each particle's acceleration and returns the number of
// interacting pairs visited.
func (s *Solver) computeForces() int {
	particles := s.ps.particles
	g := s.params.Gravity()
	h2 := s.kernels.H2
	mu := s.params.Viscosity
	pairs := 0

	for i := range particles {
		pi := &particles[i]
		var pressure, viscosity components.Vec2
		s.ps.ForEachNeighbor(i, func(j int) {
			if j == i {
				return
			}
			pj := &particles[j]
			r := pi.Position.Sub(pj.Position)
			r2 := r.LenSq()
			if r2 >= h2 || r2 <= 0 {
				return
			}
			dist := float32(math.Sqrt(float64(r2)))
			pairs++

			grad := s.kernels.SpikyGrad(r, dist)
			pressure = pressure.Sub(grad.Scale(s.mass * (pi.PressDivDens2 + pj.PressDivDens2)))

			lap := s.kernels.ViscosityLaplacian(dist)
			dv := pj.Velocity.Sub(pi.Velocity)
			viscosity = viscosity.Add(dv.Scale(mu * s.mass / pj.Density * lap))
		})
		pi.Acceleration = pressure.Add(viscosity).Add(g)
	}
	return pairs
}

// integrate applies semi-implicit Euler with the speed clamp, then keeps the
// particle inside the container by clamping and reflecting each axis.
func (s *Solver) integrate(p *components.Particle, dt float32) {
	p.Velocity = p.Velocity.Add(p.Acceleration.Scale(dt))

	vmax := s.params.MaxVelocity
	if speed := p.Velocity.Len(); speed > vmax && speed > s.eps {
		p.Velocity = p.Velocity.Scale(vmax / speed)
	}

	p.Position = p.Position.Add(p.Velocity.Scale(dt))
	if !s.ps.hasContainer {
		return
	}

	lo, hi := s.ps.Bounds()
	att := s.params.VelocityAttenuation
	p.Position.X, p.Velocity.X = reflect(p.Position.X, p.Velocity.X, lo.X, hi.X, att)
	p.Position.Y, p.Velocity.Y = reflect(p.Position.Y, p.Velocity.Y, lo.Y, hi.Y, att)

	s.ps.resolveBlock(p)
}

// reflect clamps x into [lo, hi], reversing and damping v on contact.
func reflect(x, v, lo, hi, attenuation float32) (float32, float32) {
	switch {
	case x < lo:
		return lo, -v * attenuation
	case x > hi:
		return hi, -v * attenuation
	}
	return x, v
}
