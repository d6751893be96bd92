// Package camera maps between screen coordinates and fabric coordinates.
// The perspective camera serves the 3D backend via ray casting; the affine
// camera serves the 2D fallback with a closed-form tilt projection.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spacetime/field"
)

// Mapper converts a screen point into a clamped fabric position.
// ok is false when the point cannot be mapped; callers drop the event.
type Mapper interface {
	ScreenToField(sx, sy float32) (p field.Vec2, ok bool)
	Resize(viewportW, viewportH float32)
}

// parallelEpsilon bounds |dir.z| below which a ray counts as parallel to the plane.
const parallelEpsilon = 1e-9

// Perspective is a look-at camera with a vertical field of view.
type Perspective struct {
	Position, Target, Up r3.Vec

	// FovY is the vertical field of view in degrees
	FovY float64

	// PlaneZ is the depth of the interaction plane
	PlaneZ float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	Fabric field.Fabric
}

// NewPerspective creates a perspective camera for the given viewport.
func NewPerspective(position, target, up r3.Vec, fovY, planeZ float64, fabric field.Fabric, viewportW, viewportH float32) *Perspective {
	return &Perspective{
		Position:  position,
		Target:    target,
		Up:        up,
		FovY:      fovY,
		PlaneZ:    planeZ,
		ViewportW: viewportW,
		ViewportH: viewportH,
		Fabric:    fabric,
	}
}

// Resize updates the viewport; only the aspect ratio changes.
func (c *Perspective) Resize(viewportW, viewportH float32) {
	if viewportW <= 0 || viewportH <= 0 {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Aspect returns the viewport width over height.
func (c *Perspective) Aspect() float64 {
	if c.ViewportH == 0 {
		return 1
	}
	return float64(c.ViewportW) / float64(c.ViewportH)
}

// basis returns the camera forward, right and up unit vectors.
func (c *Perspective) basis() (forward, right, up r3.Vec) {
	forward = r3.Unit(r3.Sub(c.Target, c.Position))
	right = r3.Unit(r3.Cross(forward, c.Up))
	up = r3.Cross(right, forward)
	return forward, right, up
}

// NDC converts a screen point to normalized device coordinates (y up).
func (c *Perspective) NDC(sx, sy float32) (nx, ny float64) {
	nx = float64(sx)/float64(c.ViewportW)*2 - 1
	ny = -float64(sy)/float64(c.ViewportH)*2 + 1
	return nx, ny
}

// Ray returns the world-space ray from the camera through a screen point.
func (c *Perspective) Ray(sx, sy float32) (origin, dir r3.Vec) {
	forward, right, up := c.basis()
	nx, ny := c.NDC(sx, sy)
	tanHalf := math.Tan(c.FovY * math.Pi / 360)

	dir = r3.Add(forward, r3.Add(
		r3.Scale(nx*tanHalf*c.Aspect(), right),
		r3.Scale(ny*tanHalf, up),
	))
	return c.Position, r3.Unit(dir)
}

// Intersect casts a ray through the screen point onto the interaction plane.
// It fails when the ray is parallel to the plane or points away from it.
func (c *Perspective) Intersect(sx, sy float32) (r3.Vec, bool) {
	origin, dir := c.Ray(sx, sy)
	if math.Abs(dir.Z) < parallelEpsilon {
		return r3.Vec{}, false
	}
	t := (c.PlaneZ - origin.Z) / dir.Z
	if t < 0 {
		return r3.Vec{}, false
	}
	return r3.Add(origin, r3.Scale(t, dir)), true
}

// ScreenToField maps a screen point onto the fabric plane, clamped to the fabric.
func (c *Perspective) ScreenToField(sx, sy float32) (field.Vec2, bool) {
	hit, ok := c.Intersect(sx, sy)
	if !ok {
		return field.Vec2{}, false
	}
	return c.Fabric.Clamp(field.Vec2{X: float32(hit.X), Y: float32(hit.Y)}), true
}

// Project converts a world point to screen coordinates.
// ok is false for points behind the camera.
func (c *Perspective) Project(p r3.Vec) (sx, sy float32, ok bool) {
	forward, right, up := c.basis()
	d := r3.Sub(p, c.Position)
	z := r3.Dot(d, forward)
	if z <= 0 {
		return 0, 0, false
	}
	tanHalf := math.Tan(c.FovY * math.Pi / 360)
	nx := r3.Dot(d, right) / (z * tanHalf * c.Aspect())
	ny := r3.Dot(d, up) / (z * tanHalf)

	sx = float32((nx + 1) / 2 * float64(c.ViewportW))
	sy = float32((1 - ny) / 2 * float64(c.ViewportH))
	return sx, sy, true
}
