package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/guptarohit/asciigraph"

	"github.com/pthm-cable/spacetime/components"
	"github.com/pthm-cable/spacetime/loop"
)

// statsSamples is the number of frame intervals kept for the graph.
const statsSamples = 60

// canvasStats is the terminal counterpart of the scene HUD: a mass count and
// a graph of recent frame intervals, drawn over the bottom-left corner.
type canvasStats struct {
	visible bool
	last    time.Time
	times   []float64 // Frame intervals in ms, oldest first
}

func (s *canvasStats) toggle() { s.visible = !s.visible }

// record adds the interval since the previous drawn frame.
func (s *canvasStats) record(now time.Time) {
	if !s.last.IsZero() {
		if len(s.times) == statsSamples {
			copy(s.times, s.times[1:])
			s.times = s.times[:statsSamples-1]
		}
		s.times = append(s.times, float64(now.Sub(s.last).Microseconds())/1000)
	}
	s.last = now
}

// lines renders the overlay text for a frame.
func (s *canvasStats) lines(f *loop.Frame, capacity int) []string {
	persistent := 0
	for _, src := range f.Sources {
		if src.Role == components.RolePersistent {
			persistent++
		}
	}
	out := []string{fmt.Sprintf("masses %d/%d  frame %d  [h] hide", persistent, capacity, f.Seq)}
	if len(s.times) < 2 {
		return out
	}
	graph := asciigraph.Plot(s.times,
		asciigraph.Height(4),
		asciigraph.Width(40),
		asciigraph.Caption("frame ms"),
	)
	return append(out, strings.Split(graph, "\n")...)
}

// drawStats writes the overlay into the bottom-left corner of the screen.
func drawStats(screen tcell.Screen, lines []string, rows int) {
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(189, 214, 255))
	top := max(rows-len(lines), 0)
	for i, line := range lines {
		row := top + i
		if row >= rows {
			break
		}
		col := 1
		for _, r := range line {
			screen.SetContent(col, row, r, nil, style)
			col++
		}
	}
}
