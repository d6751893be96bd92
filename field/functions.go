package field

// Vec2 is a point or offset in fabric coordinates.
type Vec2 struct {
	X, Y float32
}

// Fabric is the rectangular domain shared by the mesh, stars and masses.
// It is centered on the origin.
type Fabric struct {
	Width, Height float32
	Margin        float32 // Inset applied by Clamp
}

// HalfWidth returns half the fabric width.
func (f Fabric) HalfWidth() float32 { return f.Width * 0.5 }

// HalfHeight returns half the fabric height.
func (f Fabric) HalfHeight() float32 { return f.Height * 0.5 }

// Clamp restricts p to the fabric half-extents minus the margin.
func (f Fabric) Clamp(p Vec2) Vec2 {
	hw := f.HalfWidth() - f.Margin
	hh := f.HalfHeight() - f.Margin
	return Vec2{X: Clamp32(p.X, -hw, hw), Y: Clamp32(p.Y, -hh, hh)}
}

// Contains reports whether p lies within the clamped region.
func (f Fabric) Contains(p Vec2) bool {
	hw := f.HalfWidth() - f.Margin
	hh := f.HalfHeight() - f.Margin
	return p.X >= -hw && p.X <= hw && p.Y >= -hh && p.Y <= hh
}

// PotentialParams configure the softened inverse-distance well.
type PotentialParams struct {
	Epsilon   float32 // Softening added to the squared distance
	Threshold float32 // Sources at or below this strength are skipped
}

// LensParams configure the radial pull plus shear displacement.
type LensParams struct {
	Strength       float32 // L, scaled by viewport size
	Shear          float32 // k
	Softening      float32 // Added to r^2
	ShearSoftening float32 // Added to r^2 in the shear denominator
	Threshold      float32 // Sources at or below this strength are skipped
}

// Potential returns the displacement contribution of one source at a sample.
// The negative sign makes the fabric dip toward the mass.
func Potential(sx, sy float32, s Source, p PotentialParams) float32 {
	dx := sx - s.Pos.X
	dy := sy - s.Pos.Y
	return -s.Strength / Sqrt32(dx*dx+dy*dy+p.Epsilon)
}

// PotentialAt sums Potential over all sources above the threshold.
func PotentialAt(sx, sy float32, sources []Source, p PotentialParams) float32 {
	var z float32
	for i := range sources {
		if sources[i].Strength > p.Threshold {
			z += Potential(sx, sy, sources[i], p)
		}
	}
	return z
}

// Lens returns the 2D lensing displacement of one source at a sample.
func Lens(sx, sy float32, s Source, p LensParams) (float32, float32) {
	dx := sx - s.Pos.X
	dy := sy - s.Pos.Y
	r2 := dx*dx + dy*dy + p.Softening
	r := Sqrt32(r2)

	radial := (p.Strength * s.Strength) / (r2 * (r + 1))
	shear := (s.Strength / (r2 + p.ShearSoftening)) * p.Shear

	return -dx*radial - dy*shear, -dy*radial + dx*shear
}

// LensAt sums Lens over all sources above the threshold.
func LensAt(sx, sy float32, sources []Source, p LensParams) Vec2 {
	var out Vec2
	for i := range sources {
		if sources[i].Strength > p.Threshold {
			ox, oy := Lens(sx, sy, sources[i], p)
			out.X += ox
			out.Y += oy
		}
	}
	return out
}
