package components

// Emitter is a horizontal source segment for the fountain mode.
// Coordinates are unscaled world units.
type Emitter struct {
	MinX, MaxX float32
	Y          float32
	Speed      float32 // vertical launch speed
	HalfAngle  float32 // radians; lateral velocity fan-out
	Layers     int     // staggered rows emitted per sub-step
}

// Drain removes particles that reach the bottom opening.
// A particle is drained when MinX <= x <= MaxX and y <= Y (unscaled).
type Drain struct {
	MinX, MaxX float32
	Y          float32
}

// Contains reports whether an unscaled world position lies inside the drain.
func (d *Drain) Contains(x, y float32) bool {
	return x >= d.MinX && x <= d.MaxX && y <= d.Y
}

// KillBounds culls particles that leave an enlarged square around the domain.
type KillBounds struct {
	Extent float32 // |x| or |y| beyond this (unscaled) is removed
}

// Outside reports whether an unscaled world position is beyond the bound.
func (k *KillBounds) Outside(x, y float32) bool {
	return x < -k.Extent || x > k.Extent || y < -k.Extent || y > k.Extent
}
