package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/sph2d/components"
)

func TestKernelCoefficients(t *testing.T) {
	h := 0.04
	k := NewKernels(float32(h), 1e-5)

	tests := []struct {
		name string
		got  float32
		want float64
	}{
		{"poly6", k.Poly6Coeff, 4 / (math.Pi * math.Pow(h, 8))},
		{"spiky gradient", k.SpikyGradCoeff, -30 / (math.Pi * math.Pow(h, 5))},
		{"viscosity laplacian", k.ViscLapCoeff, 40 / (math.Pi * math.Pow(h, 5))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !approxEqual(float64(tt.got), tt.want, 1e-6) {
				t.Errorf("coefficient = %g, want %g", tt.got, tt.want)
			}
		})
	}
}

func TestKernelsVanishAtSupport(t *testing.T) {
	k := NewKernels(0.04, 1e-5)

	if v := k.Poly6(k.H2); v != 0 {
		t.Errorf("Poly6(h^2) = %g, want 0", v)
	}
	if v := k.Poly6(2 * k.H2); v != 0 {
		t.Errorf("Poly6(2h^2) = %g, want 0", v)
	}
	if v := k.ViscosityLaplacian(k.H); v != 0 {
		t.Errorf("ViscosityLaplacian(h) = %g, want 0", v)
	}

	r := components.Vec2{X: k.H}
	if g := k.SpikyGrad(r, k.H); g != (components.Vec2{}) {
		t.Errorf("SpikyGrad at h = %v, want zero", g)
	}
}

func TestSpikyGradSingularDistance(t *testing.T) {
	k := NewKernels(0.04, 1e-5)

	if g := k.SpikyGrad(components.Vec2{}, 0); g != (components.Vec2{}) {
		t.Errorf("SpikyGrad at 0 = %v, want zero", g)
	}
	if g := k.SpikyGrad(components.Vec2{X: 5e-6}, 5e-6); g != (components.Vec2{}) {
		t.Errorf("SpikyGrad below eps = %v, want zero", g)
	}
}

func TestSpikyGradDirection(t *testing.T) {
	k := NewKernels(0.04, 1e-5)

	// Coefficient is negative, so the gradient points against the separation
	g := k.SpikyGrad(components.Vec2{X: 0.01}, 0.01)
	if g.X >= 0 || g.Y != 0 {
		t.Errorf("SpikyGrad(+x) = %v, want negative x component only", g)
	}
}

func TestPoly6AtCenter(t *testing.T) {
	h := float32(0.04)
	k := NewKernels(h, 1e-5)

	want := 4 / (math.Pi * float64(h) * float64(h))
	if got := k.Poly6(0); !approxEqual(float64(got), want, 1e-5) {
		t.Errorf("Poly6(0) = %g, want %g", got, want)
	}
}
