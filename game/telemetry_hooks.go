package game

import (
	"log/slog"

	"github.com/pthm-cable/spacetime/loop"
	"github.com/pthm-cable/spacetime/telemetry"
)

// afterFrame flushes the telemetry window when it is due.
func (g *Game) afterFrame(f *loop.Frame) {
	if !g.collector.ShouldFlush(f.Seq) {
		return
	}

	dropped := g.dispatcher.Dropped()
	g.collector.RecordDropped(dropped - g.lastDropped)
	g.lastDropped = dropped

	skipped := g.driver.Skipped()
	g.collector.RecordSkipped(skipped - g.lastSkipped)
	g.lastSkipped = skipped

	stats := g.collector.Flush(f.Seq, telemetry.FieldState{
		TimeMS:     f.Time,
		Sources:    f.Sources,
		MeshDepth:  f.Mesh.MaxDepth(),
		StarOffset: f.Stars.MaxOffset(),
	})
	perfStats := g.perf.Stats()

	if g.logStats {
		slog.Info("session", "session", g.id, "stats", stats)
		slog.Info("perf", "session", g.id, "stats", perfStats)
	}

	if err := g.output.WriteSession(stats); err != nil {
		slog.Error("failed to write session stats", "error", err)
	}
	if err := g.output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
