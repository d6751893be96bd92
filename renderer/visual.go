package renderer

import (
	"math"

	"github.com/pthm-cable/spacetime/components"
	"github.com/pthm-cable/spacetime/field"
)

// Ring annulus of a mass visual at unit scale, in fabric units.
const (
	ringInner = 1.5
	ringOuter = 1.72
)

// raylib clamps the torus tube-to-ring ratio to this range.
const (
	torusMinRatio = 0.1
	torusMaxRatio = 1
)

// ringTorus returns the GenMeshTorus arguments for an annulus. radius is the
// tube-to-ring ratio and size is the ring diameter; raylib builds a unit
// ring and scales it by size/2.
func ringTorus(inner, outer float32) (radius, size float32) {
	mid := (inner + outer) / 2
	tube := (outer - inner) / 2
	return field.Clamp32(tube/mid, torusMinRatio, torusMaxRatio), 2 * mid
}

// torusExtent returns the inner and outer radius of the torus that
// GenMeshTorus builds from radius and size.
func torusExtent(radius, size float32) (inner, outer float32) {
	major := size / 2
	minor := major * field.Clamp32(radius, torusMinRatio, torusMaxRatio)
	return major - minor, major + minor
}

// cappedPixelRatio bounds the window scale reported by the host. A limit of 0
// leaves it unbounded.
func cappedPixelRatio(scale, limit float32) float32 {
	if scale <= 0 {
		scale = 1
	}
	if limit > 0 {
		scale = min(scale, limit)
	}
	return scale
}

// MassLook is the derived appearance of one mass for one frame.
// Every value is a monotonic function of strength that saturates.
type MassLook struct {
	RingRadius  float32 // Fabric units
	RingOpacity float32
	CoreScale   float32 // Includes the twinkle pulse
	CoreOpacity float32
}

// SceneLook derives the 3D ring and glow core of a mass at time t (ms).
// The cursor reads dimmer than persistent masses.
func SceneLook(role components.Role, strength, phase float32, t float64) MassLook {
	s := max(strength, 0)
	cursor := role == components.RoleCursor

	look := MassLook{
		RingRadius: max(1.05, 0.9*field.Sqrt32(s+0.2)),
	}
	if cursor {
		look.RingOpacity = 0.08 + min(0.18, s*0.006)
		look.CoreOpacity = min(0.48, s*0.024)
		look.CoreScale = 1.18
	} else {
		look.RingOpacity = 0.13 + min(0.24, s*0.005)
		look.CoreOpacity = min(0.68, s*0.024)
		look.CoreScale = 1.0
	}
	look.CoreScale = (look.CoreScale + field.Sqrt32(s+0.01)*0.08) * Twinkle(phase, t)
	return look
}

// Twinkle is the slow pulse applied to mass cores.
func Twinkle(phase float32, t float64) float32 {
	return 1 + field.FastSin(wrapTime(t, 0.0012)+phase)*0.05
}

// CanvasRing derives the ring and core radii of a mass on the canvas, in
// viewport pixels at time t (ms).
func CanvasRing(role components.Role, strength float32, t float64) (ring, core float32) {
	s := max(strength, 0)
	k := float32(6.8)
	if role == components.RoleCursor {
		k = 7.4
	}
	ring = max(8, field.Sqrt32(s+0.2)*k)
	pulse := 1 + field.FastSin(wrapTime(t, 0.0013)+s)*0.04
	return ring * pulse, max(2, ring*0.22)
}

// StarOpacity is the global star-field opacity oscillation of the scene.
func StarOpacity(t float64) float32 {
	return 0.62 + 0.06*field.FastSin(wrapTime(t, 0.0008))
}

// wrapTime returns t*speed reduced to one turn, keeping float32 precision
// for long sessions.
func wrapTime(t, speed float64) float32 {
	return float32(math.Mod(t*speed, 2*math.Pi))
}
