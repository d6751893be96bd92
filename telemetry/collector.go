package telemetry

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/spacetime/components"
	"github.com/pthm-cable/spacetime/field"
)

// Collector accumulates session events within frame windows and produces
// WindowStats. It observes the field model for mass lifecycle events.
type Collector struct {
	windowFrames int64

	windowStartFrame int64

	// Event counters for the current window
	placed   int
	evicted  int
	dropped  int
	skipped  int64
	released int
}

// NewCollector creates a collector flushing every windowFrames processed frames.
func NewCollector(windowFrames int64) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: windowFrames}
}

// MassAdded records a placed persistent mass. The cursor replay is ignored.
func (c *Collector) MassAdded(s field.Source) {
	if s.Role == components.RolePersistent {
		c.placed++
	}
}

// MassEvicted records an evicted persistent mass.
func (c *Collector) MassEvicted(ecs.Entity) {
	c.evicted++
}

// RecordDropped records pointer events that could not be mapped to the fabric.
func (c *Collector) RecordDropped(n int) {
	c.dropped += n
}

// RecordSkipped records frames skipped by reduced motion.
func (c *Collector) RecordSkipped(n int64) {
	c.skipped += n
}

// RecordRelease records a cursor release (blur, leave or hidden).
func (c *Collector) RecordRelease() {
	c.released++
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame int64) bool {
	return frame-c.windowStartFrame >= c.windowFrames
}

// FieldState is the sampled field state at window end.
type FieldState struct {
	TimeMS     float64
	Sources    []field.Source
	MeshDepth  float32 // Deepest mesh displacement
	StarOffset float32 // Largest star lensing offset
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(frame int64, state FieldState) WindowStats {
	strengths := make([]float64, 0, len(state.Sources))
	persistent := 0
	var cursor float64
	for _, s := range state.Sources {
		if s.Role == components.RoleCursor {
			cursor = float64(s.Strength)
			continue
		}
		persistent++
		strengths = append(strengths, float64(s.Strength))
	}
	mean, p10, p50, p90 := ComputeStrengthStats(strengths)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		TimeSec:          state.TimeMS / 1000,

		Persistent:     persistent,
		CursorStrength: cursor,

		Placed:   c.placed,
		Evicted:  c.evicted,
		Dropped:  c.dropped,
		Skipped:  c.skipped,
		Released: c.released,

		StrengthMean: mean,
		StrengthP10:  p10,
		StrengthP50:  p50,
		StrengthP90:  p90,

		MeshDepth:  float64(state.MeshDepth),
		StarOffset: float64(state.StarOffset),
	}

	c.windowStartFrame = frame
	c.placed = 0
	c.evicted = 0
	c.dropped = 0
	c.skipped = 0
	c.released = 0

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int64 {
	return c.windowFrames
}
