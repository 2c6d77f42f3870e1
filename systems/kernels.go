package systems

import (
	"math"

	"github.com/pthm-cable/sph2d/components"
)

// Kernels holds the 2D smoothing kernels with coefficients precomputed for one
// support radius. Rebuild with NewKernels whenever the radius changes.
type Kernels struct {
	H   float32
	H2  float32
	Eps float32

	Poly6Coeff     float32 // 4 / (pi h^8)
	SpikyGradCoeff float32 // -30 / (pi h^5)
	ViscLapCoeff   float32 // 40 / (pi h^5)
}

// NewKernels precomputes kernel coefficients for support radius h.
func NewKernels(h, eps float32) Kernels {
	h64 := float64(h)
	return Kernels{
		H:              h,
		H2:             h * h,
		Eps:            eps,
		Poly6Coeff:     float32(4.0 / (math.Pi * math.Pow(h64, 8))),
		SpikyGradCoeff: float32(-30.0 / (math.Pi * math.Pow(h64, 5))),
		ViscLapCoeff:   float32(40.0 / (math.Pi * math.Pow(h64, 5))),
	}
}

// Poly6 evaluates the density kernel for squared distance r2.
func (k *Kernels) Poly6(r2 float32) float32 {
	if r2 >= k.H2 {
		return 0
	}
	d := k.H2 - r2
	return k.Poly6Coeff * d * d * d
}

// SpikyGrad returns the pressure kernel gradient for separation r with length dist.
// Zero at dist <= Eps and at dist >= H.
func (k *Kernels) SpikyGrad(r components.Vec2, dist float32) components.Vec2 {
	if dist <= k.Eps || dist >= k.H {
		return components.Vec2{}
	}
	d := k.H - dist
	return r.Scale(k.SpikyGradCoeff * d * d / dist)
}

// ViscosityLaplacian decays linearly from the center to zero at H.
func (k *Kernels) ViscosityLaplacian(dist float32) float32 {
	if dist >= k.H {
		return 0
	}
	return k.ViscLapCoeff * (k.H - dist)
}
