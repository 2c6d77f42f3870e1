// Package systems provides the particle store, spatial index, SPH solver and
// fountain lifecycle for the simulation.
package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/sph2d/components"
)

// InvalidBlock is returned by BlockIDByPosition for positions outside the grid.
const InvalidBlock = math.MaxUint32

var (
	// ErrInvalidBounds is returned when the container lower corner is not below the upper corner.
	ErrInvalidBounds = errors.New("invalid container bounds")
	// ErrNoContainer is returned when particles are added before SetContainerSize.
	ErrNoContainer = errors.New("container size not set")
)

// BlockExtent is the half-open particle index range [Start, End) of one cell.
type BlockExtent struct {
	Start, End uint32
}

// ParticleSystem owns the particle collection and a uniform block grid over the
// container. Particles are kept sorted by BlockID so every block maps to one
// contiguous range; the ranges are only valid right after UpdateBlockInfo.
type ParticleSystem struct {
	particles []components.Particle
	scratch   []components.Particle
	counts    []uint32

	params Params

	lower, upper components.Vec2 // scaled container bounds
	blockSize    components.Vec2
	blocksX      uint32
	blocksY      uint32
	hasContainer bool

	extents []BlockExtent
}

// NewParticleSystem creates an empty store. SetContainerSize must be called
// before any fill or query.
func NewParticleSystem(params Params) *ParticleSystem {
	if params.Scale == 0 {
		params.Scale = 1
	}
	return &ParticleSystem{
		particles: make([]components.Particle, 0, 1024),
		params:    params,
	}
}

// SetContainerSize defines the simulation domain from world-unit corners.
// The stored bounds are scaled by Params.Scale.
func (ps *ParticleSystem) SetContainerSize(lowerCorner, upperCorner components.Vec2) error {
	if !(lowerCorner.X < upperCorner.X && lowerCorner.Y < upperCorner.Y) {
		return fmt.Errorf("%w: lower %v, upper %v", ErrInvalidBounds, lowerCorner, upperCorner)
	}

	ps.lower = lowerCorner.Scale(ps.params.Scale)
	ps.upper = upperCorner.Scale(ps.params.Scale)
	ps.hasContainer = true
	ps.resizeGrid()
	return nil
}

// resizeGrid sizes blocks to at least the support radius so a 3x3 stencil
// covers every interacting pair. Ranges are dropped until the next reindex.
func (ps *ParticleSystem) resizeGrid() {
	size := ps.upper.Sub(ps.lower)
	h := ps.params.SupportRadius

	bx, by := uint32(1), uint32(1)
	if h > 0 {
		if n := math.Floor(float64(size.X / h)); n > 1 {
			bx = uint32(n)
		}
		if n := math.Floor(float64(size.Y / h)); n > 1 {
			by = uint32(n)
		}
	}

	ps.blocksX = bx
	ps.blocksY = by
	ps.blockSize = components.Vec2{X: size.X / float32(bx), Y: size.Y / float32(by)}
	ps.extents = nil
}

// SetParams replaces the store parameters and resizes the grid if the
// container is already set.
func (ps *ParticleSystem) SetParams(params Params) {
	if params.Scale == 0 {
		params.Scale = 1
	}
	ps.params = params
	if ps.hasContainer {
		ps.resizeGrid()
	}
}

// AddFluidBlock appends particles on a regular lattice filling the rectangle
// between the world-unit corners, spaced by spacing in simulation units.
// Returns the number of particles added; a degenerate rectangle adds none.
func (ps *ParticleSystem) AddFluidBlock(lowerCorner, upperCorner, initialVelocity components.Vec2, spacing float32) (int, error) {
	if !ps.hasContainer {
		return 0, ErrNoContainer
	}
	if spacing <= 0 || !(lowerCorner.X < upperCorner.X && lowerCorner.Y < upperCorner.Y) {
		return 0, nil
	}

	lo := lowerCorner.Scale(ps.params.Scale)
	hi := upperCorner.Scale(ps.params.Scale)
	nx := latticeCount(hi.X-lo.X, spacing)
	ny := latticeCount(hi.Y-lo.Y, spacing)

	added := 0
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			pos := components.Vec2{
				X: lo.X + float32(i)*spacing,
				Y: lo.Y + float32(j)*spacing,
			}
			id := ps.BlockIDByPosition(pos)
			if id == InvalidBlock {
				continue // outside the container
			}
			ps.particles = append(ps.particles, components.Particle{
				Position: pos,
				Velocity: initialVelocity,
				Density:  ps.params.RestDensity,
				BlockID:  id,
			})
			added++
		}
	}
	return added, nil
}

// latticeCount is the number of points at spacing fitting in extent, both ends inclusive.
func latticeCount(extent, spacing float32) int {
	return int(math.Floor(float64(extent)/float64(spacing)+1e-4)) + 1
}

// BlockIDByPosition maps a scaled position to its block index, or InvalidBlock
// when the position lies outside the grid (including NaN).
func (ps *ParticleSystem) BlockIDByPosition(pos components.Vec2) uint32 {
	if ps.blocksX == 0 || ps.blocksY == 0 {
		return InvalidBlock
	}
	if !(pos.X >= ps.lower.X && pos.X <= ps.upper.X && pos.Y >= ps.lower.Y && pos.Y <= ps.upper.Y) {
		return InvalidBlock
	}

	d := pos.Sub(ps.lower)
	cx := uint32(d.X / ps.blockSize.X)
	cy := uint32(d.Y / ps.blockSize.Y)
	// The upper bound itself belongs to the last row/column
	if cx >= ps.blocksX {
		cx = ps.blocksX - 1
	}
	if cy >= ps.blocksY {
		cy = ps.blocksY - 1
	}
	return cy*ps.blocksX + cx
}

// resolveBlock recomputes a particle's block, clamping it into the container
// when it has left the grid and falling back to block 0 when still unresolved.
// Returns true if the position had to be clamped.
func (ps *ParticleSystem) resolveBlock(p *components.Particle) bool {
	p.BlockID = ps.BlockIDByPosition(p.Position)
	if p.BlockID != InvalidBlock {
		return false
	}
	p.Position = p.Position.Clamp(ps.lower, ps.upper)
	p.BlockID = ps.BlockIDByPosition(p.Position)
	if p.BlockID == InvalidBlock {
		p.BlockID = 0
	}
	return true
}

// UpdateBlockInfo reindexes the grid: recomputes every BlockID, counting-sorts
// the particles by block (stable) and rebuilds the per-block ranges.
func (ps *ParticleSystem) UpdateBlockInfo() {
	blockCount := ps.BlockCount()
	if blockCount == 0 {
		ps.extents = nil
		return
	}

	for i := range ps.particles {
		ps.resolveBlock(&ps.particles[i])
	}

	// counts[b+1] = particles in block b, then prefix sums give block starts
	n := int(blockCount)
	if cap(ps.counts) < n+1 {
		ps.counts = make([]uint32, n+1)
	}
	counts := ps.counts[:n+1]
	clear(counts)
	for i := range ps.particles {
		counts[ps.particles[i].BlockID+1]++
	}
	for b := 1; b <= n; b++ {
		counts[b] += counts[b-1]
	}

	if cap(ps.extents) < n {
		ps.extents = make([]BlockExtent, n)
	}
	ps.extents = ps.extents[:n]
	for b := 0; b < n; b++ {
		ps.extents[b] = BlockExtent{Start: counts[b], End: counts[b+1]}
	}

	if cap(ps.scratch) < len(ps.particles) {
		ps.scratch = make([]components.Particle, len(ps.particles), cap(ps.particles))
	}
	sorted := ps.scratch[:len(ps.particles)]
	for i := range ps.particles {
		b := ps.particles[i].BlockID
		sorted[counts[b]] = ps.particles[i]
		counts[b]++
	}
	ps.scratch = ps.particles[:0]
	ps.particles = sorted
}

// neighborhood writes the valid blocks of the 3x3 stencil around id into out.
func (ps *ParticleSystem) neighborhood(id uint32, out *[9]uint32) int {
	if id >= ps.BlockCount() {
		return 0
	}
	cx := int(id % ps.blocksX)
	cy := int(id / ps.blocksX)
	n := 0
	for dy := -1; dy <= 1; dy++ {
		y := cy + dy
		if y < 0 || y >= int(ps.blocksY) {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			x := cx + dx
			if x < 0 || x >= int(ps.blocksX) {
				continue
			}
			out[n] = uint32(y)*ps.blocksX + uint32(x)
			n++
		}
	}
	return n
}

// ForEachNeighbor calls fn with the index of every particle in the 3x3 block
// stencil around particle i, including i itself. The grid must be freshly
// reindexed.
func (ps *ParticleSystem) ForEachNeighbor(i int, fn func(j int)) {
	var blocks [9]uint32
	n := ps.neighborhood(ps.particles[i].BlockID, &blocks)
	for _, b := range blocks[:n] {
		ext := ps.extents[b]
		for j := ext.Start; j < ext.End; j++ {
			fn(int(j))
		}
	}
}

// gridReady reports whether the block ranges match the current grid.
func (ps *ParticleSystem) gridReady() bool {
	count := ps.BlockCount()
	return count > 0 && len(ps.extents) == int(count)
}

// Append adds a particle without reindexing. Callers must run UpdateBlockInfo
// before the next neighbor query.
func (ps *ParticleSystem) Append(p components.Particle) {
	ps.particles = append(ps.particles, p)
}

// Compact keeps the particles for which keep returns true, preserving order,
// and returns how many were removed. Block ranges are stale afterwards.
func (ps *ParticleSystem) Compact(keep func(p *components.Particle) bool) int {
	alive := 0
	for i := range ps.particles {
		if !keep(&ps.particles[i]) {
			continue
		}
		ps.particles[alive] = ps.particles[i]
		alive++
	}
	removed := len(ps.particles) - alive
	ps.particles = ps.particles[:alive]
	return removed
}

// Clear removes every particle.
func (ps *ParticleSystem) Clear() {
	ps.particles = ps.particles[:0]
	ps.extents = nil
}

// Particles returns the particle collection. The slice is owned by the store
// and must be treated as read-only between steps.
func (ps *ParticleSystem) Particles() []components.Particle {
	return ps.particles
}

// Len returns the current number of particles.
func (ps *ParticleSystem) Len() int {
	return len(ps.particles)
}

// BlockCount returns blocksX * blocksY, or 0 before the container is set.
func (ps *ParticleSystem) BlockCount() uint32 {
	return ps.blocksX * ps.blocksY
}

// BlockDims returns the grid dimensions.
func (ps *ParticleSystem) BlockDims() (x, y uint32) {
	return ps.blocksX, ps.blocksY
}

// BlockExtent returns the particle range of block id from the last reindex.
func (ps *ParticleSystem) BlockExtent(id uint32) BlockExtent {
	if int(id) >= len(ps.extents) {
		return BlockExtent{}
	}
	return ps.extents[id]
}

// Bounds returns the scaled container bounds.
func (ps *ParticleSystem) Bounds() (lower, upper components.Vec2) {
	return ps.lower, ps.upper
}

// Scale returns the world-to-simulation coordinate factor.
func (ps *ParticleSystem) Scale() float32 {
	return ps.params.Scale
}

// Params returns the parameters the store was built with.
func (ps *ParticleSystem) Params() Params {
	return ps.params
}
