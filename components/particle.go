// Package components defines the data types shared by the fluid systems.
package components

// Particle is one SPH sample of the fluid.
// Position is in scaled simulation units (world * scale).
type Particle struct {
	Position     Vec2
	Velocity     Vec2
	Acceleration Vec2 // recomputed every sub-step

	Density       float32 // floored at 10% of rest density
	Pressure      float32 // negative below rest density (tension)
	PressDivDens2 float32 // Pressure / Density^2 for the symmetric force form

	BlockID uint32 // grid cell holding Position; valid after every step
}
