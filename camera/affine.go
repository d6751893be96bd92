package camera

import "github.com/pthm-cable/spacetime/field"

// Affine maps screen fractions straight onto the fabric and projects fabric
// points with a fixed tilted pseudo-perspective. It never fails.
type Affine struct {
	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	Fabric field.Fabric

	// Projection shape: depth = 1 / (1 + (Horizon - y) * Falloff)
	Horizon, Falloff float32
	// Field units spanned by the viewport at unit depth
	SpanX, SpanY float32
	// Screen lift per unit of y and of z
	TiltY, LiftZ float32
}

// NewAffine creates the fallback mapper with the default tilt.
func NewAffine(fabric field.Fabric, viewportW, viewportH float32) *Affine {
	return &Affine{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Fabric:    fabric,
		Horizon:   58,
		Falloff:   0.012,
		SpanX:     220,
		SpanY:     180,
		TiltY:     0.58,
		LiftZ:     1.6,
	}
}

// Resize updates the viewport dimensions.
func (a *Affine) Resize(viewportW, viewportH float32) {
	if viewportW <= 0 || viewportH <= 0 {
		return
	}
	a.ViewportW = viewportW
	a.ViewportH = viewportH
}

// ScreenToField maps a screen fraction to a centered fabric coordinate.
func (a *Affine) ScreenToField(sx, sy float32) (field.Vec2, bool) {
	x := (sx/a.ViewportW - 0.5) * a.Fabric.Width
	y := ((1 - sy/a.ViewportH) - 0.5) * a.Fabric.Height
	return a.Fabric.Clamp(field.Vec2{X: x, Y: y}), true
}

// Project converts a fabric point with height z to screen coordinates.
// depth grows toward the viewer and scales sizes of projected primitives.
func (a *Affine) Project(x, y, z float32) (sx, sy, depth float32) {
	depth = 1 / (1 + (a.Horizon-y)*a.Falloff)
	sx = a.ViewportW*0.5 + x*depth*(a.ViewportW/a.SpanX)
	sy = a.ViewportH*0.5 - (y*a.TiltY+z*a.LiftZ)*depth*(a.ViewportH/a.SpanY)
	return sx, sy, depth
}
