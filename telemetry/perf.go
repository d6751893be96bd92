package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Phase identifies one timed section of a processed frame.
type Phase int

// Frame phases in execution order.
const (
	PhaseField Phase = iota
	PhaseMesh
	PhaseStars
	PhaseDraw
	numPhases
	phaseNone Phase = -1
)

var phaseNames = [numPhases]string{"field", "mesh", "stars", "draw"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "none"
	}
	return phaseNames[p]
}

// PhaseTimes holds one duration per phase.
type PhaseTimes [numPhases]time.Duration

// PerfCollector keeps a ring of per-frame timings. Only processed frames are
// timed; reduced-motion skips never call StartTick.
type PerfCollector struct {
	ring   []float64 // Frame time in microseconds
	phases []PhaseTimes
	next   int
	filled int

	frameStart time.Time
	phaseStart time.Time
	current    Phase
	pending    PhaseTimes

	lastPresent time.Time
	presentGap  time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		ring:    make([]float64, windowSize),
		phases:  make([]PhaseTimes, windowSize),
		current: phaseNone,
	}
}

// StartTick begins timing a processed frame.
func (p *PerfCollector) StartTick() {
	p.frameStart = time.Now()
	p.pending = PhaseTimes{}
	p.current = phaseNone
}

// StartPhase closes the running phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.current = ph
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.current != phaseNone {
		p.pending[p.current] += now.Sub(p.phaseStart)
	}
	p.current = phaseNone
}

// EndTick stores the frame in the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)

	p.ring[p.next] = float64(now.Sub(p.frameStart).Microseconds())
	p.phases[p.next] = p.pending
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
}

// RecordFrame notes a presented frame; the gap between two calls gives FPS.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastPresent.IsZero() {
		p.presentGap = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats summarises the current window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	PhaseAvg PhaseTimes
	PhasePct [numPhases]float64

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the filled part of the ring.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{FrameDuration: p.presentGap}
	if p.presentGap > 0 {
		s.FPS = float64(time.Second) / float64(p.presentGap)
	}
	if p.filled == 0 {
		return s
	}

	window := p.ring[:p.filled]
	us := func(v float64) time.Duration { return time.Duration(v) * time.Microsecond }
	avg := floats.Sum(window) / float64(p.filled)
	s.AvgTickDuration = us(avg)
	s.MinTickDuration = us(floats.Min(window))
	s.MaxTickDuration = us(floats.Max(window))

	var sums PhaseTimes
	for _, pt := range p.phases[:p.filled] {
		for ph := range pt {
			sums[ph] += pt[ph]
		}
	}
	for ph := range sums {
		s.PhaseAvg[ph] = sums[ph] / time.Duration(p.filled)
		if avg > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph].Microseconds()) / avg * 100
		}
	}
	if avg > 0 {
		s.TicksPerSecond = 1e6 / avg
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for ph := Phase(0); ph < numPhases; ph++ {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd   int64   `csv:"window_end"`
	AvgTickUS   int64   `csv:"avg_tick_us"`
	MinTickUS   int64   `csv:"min_tick_us"`
	MaxTickUS   int64   `csv:"max_tick_us"`
	TicksPerSec float64 `csv:"ticks_per_sec"`
	FPS         float64 `csv:"fps"`
	FieldPct    float64 `csv:"field_pct"`
	MeshPct     float64 `csv:"mesh_pct"`
	StarsPct    float64 `csv:"stars_pct"`
	DrawPct     float64 `csv:"draw_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:   windowEnd,
		AvgTickUS:   s.AvgTickDuration.Microseconds(),
		MinTickUS:   s.MinTickDuration.Microseconds(),
		MaxTickUS:   s.MaxTickDuration.Microseconds(),
		TicksPerSec: s.TicksPerSecond,
		FPS:         s.FPS,
		FieldPct:    s.PhasePct[PhaseField],
		MeshPct:     s.PhasePct[PhaseMesh],
		StarsPct:    s.PhasePct[PhaseStars],
		DrawPct:     s.PhasePct[PhaseDraw],
	}
}
