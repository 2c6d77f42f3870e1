package inspector

import "github.com/pthm-cable/sph2d/components"

// ParticleView is the inspected form of one particle. Positions are in world
// units; everything else is in simulation units.
type ParticleView struct {
	Index    int     `inspect:"label"`
	X        float32 `inspect:"label,fmt:%.4f"`
	Y        float32 `inspect:"label,fmt:%.4f"`
	VelX     float32 `inspect:"label,name:Vel X"`
	VelY     float32 `inspect:"label,name:Vel Y"`
	Speed    float32 `inspect:"bar,max:10"`
	Density  float32 `inspect:"bar,max:1500"`
	Pressure float32 `inspect:"label,fmt:%.1f"`
	BlockID  uint32  `inspect:"label,name:Block"`
	Wall     bool    `inspect:"bool,name:At wall"`
}

// NewParticleView builds a view of p. scale converts simulation to world
// units; lower and upper are the container bounds in simulation units.
func NewParticleView(index int, p *components.Particle, scale float32, lower, upper components.Vec2) ParticleView {
	inv := float32(1)
	if scale > 0 {
		inv = 1 / scale
	}
	pos := p.Position
	return ParticleView{
		Index:    index,
		X:        pos.X * inv,
		Y:        pos.Y * inv,
		VelX:     p.Velocity.X,
		VelY:     p.Velocity.Y,
		Speed:    p.Velocity.Len(),
		Density:  p.Density,
		Pressure: p.Pressure,
		BlockID:  p.BlockID,
		Wall:     pos.X <= lower.X || pos.X >= upper.X || pos.Y <= lower.Y || pos.Y >= upper.Y,
	}
}
