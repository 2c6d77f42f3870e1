// Package camera provides a 2D camera system for viewport control.
package camera

// Camera maps a bounded, y-up simulation domain onto a y-down screen.
// Supports pan and zoom; the center is kept inside the domain.
type Camera struct {
	// Position is the camera center in simulation coordinates
	X, Y float32

	// Zoom level on top of the fitted scale (1.0 = whole domain visible)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Domain bounds
	MinX, MinY, MaxX, MaxY float32

	// Margin is the fraction of the viewport left empty around the domain at zoom 1.
	Margin float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the domain [minX,maxX]x[minY,maxY] with the
// whole domain visible.
func New(viewportW, viewportH, minX, minY, maxX, maxY float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinX:      minX,
		MinY:      minY,
		MaxX:      maxX,
		MaxY:      maxY,
		Margin:    0.05,
		MinZoom:   1.0,
		MaxZoom:   8.0,
	}
	c.Reset()
	return c
}

// PixelsPerUnit returns the current screen pixels per simulation unit.
func (c *Camera) PixelsPerUnit() float32 {
	w := c.MaxX - c.MinX
	h := c.MaxY - c.MinY
	if w <= 0 || h <= 0 {
		return c.Zoom
	}
	fit := min(c.ViewportW/w, c.ViewportH/h) * (1 - 2*c.Margin)
	return fit * c.Zoom
}

// WorldToScreen converts simulation coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	ppu := c.PixelsPerUnit()
	sx = c.ViewportW/2 + (wx-c.X)*ppu
	sy = c.ViewportH/2 - (wy-c.Y)*ppu
	return sx, sy
}

// ScreenToWorld converts screen coordinates to simulation coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	ppu := c.PixelsPerUnit()
	wx = c.X + (sx-c.ViewportW/2)/ppu
	wy = c.Y - (sy-c.ViewportH/2)/ppu
	return wx, wy
}

// WorldLength converts a simulation length to pixels.
func (c *Camera) WorldLength(l float32) float32 {
	return l * c.PixelsPerUnit()
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	ppu := c.PixelsPerUnit()
	halfW := c.ViewportW/(2*ppu) + radius
	halfH := c.ViewportH/(2*ppu) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the camera by the given delta in screen pixels.
// Positive dy moves the view down the screen.
func (c *Camera) Pan(dx, dy float32) {
	ppu := c.PixelsPerUnit()
	c.X = clamp(c.X+dx/ppu, c.MinX, c.MaxX)
	c.Y = clamp(c.Y-dy/ppu, c.MinY, c.MaxY)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the domain center at zoom 1.
func (c *Camera) Reset() {
	c.X = (c.MinX + c.MaxX) / 2
	c.Y = (c.MinY + c.MaxY) / 2
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the simulation-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	ppu := c.PixelsPerUnit()
	halfW := c.ViewportW / (2 * ppu)
	halfH := c.ViewportH / (2 * ppu)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
