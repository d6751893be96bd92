package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// WindowStats holds aggregated session statistics for a frame window.
type WindowStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	TimeSec          float64 `csv:"time_sec"`

	// Masses at window end
	Persistent     int     `csv:"persistent"`
	CursorStrength float64 `csv:"cursor_strength"`

	// Events during window
	Placed   int   `csv:"placed"`
	Evicted  int   `csv:"evicted"`
	Dropped  int   `csv:"dropped_events"`
	Skipped  int64 `csv:"skipped_frames"`
	Released int   `csv:"released"`

	// Current strength distribution of persistent masses
	StrengthMean float64 `csv:"strength_mean"`
	StrengthP10  float64 `csv:"strength_p10"`
	StrengthP50  float64 `csv:"strength_p50"`
	StrengthP90  float64 `csv:"strength_p90"`

	// Fabric response
	MeshDepth  float64 `csv:"mesh_depth"`
	StarOffset float64 `csv:"star_offset"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeStrengthStats calculates mean and percentiles of mass strengths.
func ComputeStrengthStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = floats.Sum(values) / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("time_sec", s.TimeSec),
		slog.Int("persistent", s.Persistent),
		slog.Float64("cursor_strength", s.CursorStrength),
		slog.Int("placed", s.Placed),
		slog.Int("evicted", s.Evicted),
		slog.Int("dropped_events", s.Dropped),
		slog.Int64("skipped_frames", s.Skipped),
		slog.Int("released", s.Released),
		slog.Float64("strength_mean", s.StrengthMean),
		slog.Float64("strength_p50", s.StrengthP50),
		slog.Float64("mesh_depth", s.MeshDepth),
		slog.Float64("star_offset", s.StarOffset),
	)
}
