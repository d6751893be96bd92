// Package starfield simulates the background points displaced by lensing.
package starfield

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/spacetime/field"
)

// Point is one background star. Base is fixed at creation.
type Point struct {
	BaseX, BaseY, BaseZ float32
	OffsetX, OffsetY    float32 // Smoothed lensing offset
	Twinkle             float32 // Phase of the cosmetic depth wobble
}

// Settings controls scatter and smoothing.
type Settings struct {
	Spread           float32 // Footprint as a multiple of the fabric size
	ZMin, ZMax       float32
	OffsetRate       float32 // Per-tick blend toward the lensing offset
	TwinkleAmplitude float32
	TwinkleSpeed     float32 // Radians per millisecond
}

// Field owns the background points.
type Field struct {
	Points []Point
	cfg    Settings
}

// New scatters count points over the expanded fabric footprint.
func New(count int, fabric field.Fabric, cfg Settings, rng *rand.Rand) *Field {
	f := &Field{
		Points: make([]Point, count),
		cfg:    cfg,
	}
	w := fabric.Width * cfg.Spread
	h := fabric.Height * cfg.Spread
	for i := range f.Points {
		f.Points[i] = Point{
			BaseX:   (rng.Float32() - 0.5) * w,
			BaseY:   (rng.Float32() - 0.5) * h,
			BaseZ:   cfg.ZMin + rng.Float32()*(cfg.ZMax-cfg.ZMin),
			Twinkle: rng.Float32() * 2 * math.Pi,
		}
	}
	return f
}

// Len returns the number of points.
func (f *Field) Len() int {
	return len(f.Points)
}

// Tick blends each offset toward the summed lensing displacement at its base.
func (f *Field) Tick(sources []field.Source, lens field.LensParams) {
	rate := f.cfg.OffsetRate
	for i := range f.Points {
		p := &f.Points[i]
		target := field.LensAt(p.BaseX, p.BaseY, sources, lens)
		p.OffsetX += (target.X - p.OffsetX) * rate
		p.OffsetY += (target.Y - p.OffsetY) * rate
	}
}

// Position returns the rendered position of point i at time t (milliseconds).
// Depth wobbles with the twinkle phase and is not smoothed.
func (f *Field) Position(i int, t float64) (x, y, z float32) {
	p := &f.Points[i]
	angle := float32(math.Mod(t*float64(f.cfg.TwinkleSpeed), 2*math.Pi)) + p.Twinkle
	return p.BaseX + p.OffsetX, p.BaseY + p.OffsetY, p.BaseZ + field.FastSin(angle)*f.cfg.TwinkleAmplitude
}

// MaxOffset returns the largest offset magnitude across all points.
func (f *Field) MaxOffset() float32 {
	var m float32
	for i := range f.Points {
		p := &f.Points[i]
		if d := field.Sqrt32(p.OffsetX*p.OffsetX + p.OffsetY*p.OffsetY); d > m {
			m = d
		}
	}
	return m
}
