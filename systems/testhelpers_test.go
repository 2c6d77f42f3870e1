package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/sph2d/components"
	"github.com/pthm-cable/sph2d/config"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

func testParams() Params {
	return NewParams(config.Cfg())
}

// newTestSystem returns an empty store over the default container.
func newTestSystem(t testing.TB, params Params) *ParticleSystem {
	t.Helper()
	cfg := config.Cfg()
	ps := NewParticleSystem(params)
	lower := components.Vec2{X: float32(cfg.Container.Lower[0]), Y: float32(cfg.Container.Lower[1])}
	upper := components.Vec2{X: float32(cfg.Container.Upper[0]), Y: float32(cfg.Container.Upper[1])}
	if err := ps.SetContainerSize(lower, upper); err != nil {
		t.Fatalf("SetContainerSize: %v", err)
	}
	return ps
}

// fillDefaultBlock adds the default fluid block and reindexes.
func fillDefaultBlock(t testing.TB, ps *ParticleSystem) int {
	t.Helper()
	b := config.Cfg().FluidBlocks[0]
	n, err := ps.AddFluidBlock(
		components.Vec2{X: float32(b.Lower[0]), Y: float32(b.Lower[1])},
		components.Vec2{X: float32(b.Upper[0]), Y: float32(b.Upper[1])},
		components.Vec2{X: float32(b.InitVelocity[0]), Y: float32(b.InitVelocity[1])},
		float32(b.ParticleSpace),
	)
	if err != nil {
		t.Fatalf("AddFluidBlock: %v", err)
	}
	ps.UpdateBlockInfo()
	return n
}

func approxEqual(a, b, relTol float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= relTol*scale
}
