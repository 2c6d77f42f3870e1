package systems

import "github.com/pthm-cable/sph2d/components"

// Nearest returns the index of the particle closest to pos (simulation units)
// within radius. The block grid is used when it is fresh and radius fits in
// one block; otherwise every particle is scanned.
func (ps *ParticleSystem) Nearest(pos components.Vec2, radius float32) (int, bool) {
	best := -1
	bestD2 := radius * radius
	visit := func(j int) {
		if d2 := ps.particles[j].Position.Sub(pos).LenSq(); d2 <= bestD2 {
			best, bestD2 = j, d2
		}
	}

	id := ps.BlockIDByPosition(pos)
	if ps.gridReady() && id != InvalidBlock && radius <= min(ps.blockSize.X, ps.blockSize.Y) {
		var blocks [9]uint32
		n := ps.neighborhood(id, &blocks)
		for _, b := range blocks[:n] {
			ext := ps.extents[b]
			for j := ext.Start; j < ext.End; j++ {
				visit(int(j))
			}
		}
	} else {
		for j := range ps.particles {
			visit(j)
		}
	}
	return best, best >= 0
}
