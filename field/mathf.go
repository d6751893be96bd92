package field

import "math"

// Float32 helpers for the per-sample hot paths.

// Sqrt32 returns the square root of x.
func Sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// FastSin approximates sin(x) using a polynomial. Accurate to ~0.001 for all x.
// Used for cosmetic oscillation only.
func FastSin(x float32) float32 {
	x = wrapPi(x)
	const pi = math.Pi
	const pi2 = pi * pi
	ax := x
	if ax < 0 {
		ax = -ax
	}
	y := 4 * x * (pi - ax) / pi2
	// Correction: improves accuracy
	return 0.225*(y*Abs32(y)-y) + y
}

// Abs32 returns the absolute value of a float32.
func Abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp32 restricts a value to [lo, hi].
func Clamp32(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// wrapPi wraps an arbitrary angle into [-pi, pi].
func wrapPi(a float32) float32 {
	const twoPi = 2 * math.Pi
	if a > math.Pi || a < -math.Pi {
		a = float32(math.Mod(float64(a)+math.Pi, twoPi))
		if a < 0 {
			a += twoPi
		}
		a -= math.Pi
	}
	return a
}
