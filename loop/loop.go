// Package loop drives the per-frame tick: advance the field, recompute the
// mesh and star displacements, then hand a consistent snapshot to the renderer.
package loop

import (
	"context"

	"github.com/pthm-cable/spacetime/field"
	"github.com/pthm-cable/spacetime/input"
	"github.com/pthm-cable/spacetime/mesh"
	"github.com/pthm-cable/spacetime/starfield"
	"github.com/pthm-cable/spacetime/telemetry"
)

// Viewport is the cached surface size, owned by the driver.
type Viewport struct {
	Width, Height float32
	PixelRatio    float32
}

// Narrow reports whether the viewport is below the breakpoint width.
func (v Viewport) Narrow(breakpoint float32) bool {
	return v.Width < breakpoint
}

// Frame is the snapshot handed to the renderer. The renderer may only read it,
// and only for the duration of one Draw call.
type Frame struct {
	Seq      int64   // Processed frame counter
	Time     float64 // Milliseconds since the loop started
	Fabric   field.Fabric
	Sources  []field.Source
	Mesh     *mesh.Lattice
	Stars    *starfield.Field
	Viewport Viewport
}

// Field is the part of the field model the driver advances.
type Field interface {
	Advance()
	Sources() []field.Source
}

// Simulation groups the simulated state and its constants.
type Simulation struct {
	Field     Field
	Mesh      *mesh.Lattice
	Stars     *starfield.Field
	Fabric    field.Fabric
	Potential field.PotentialParams
	Lens      field.LensParams
}

// Surface is the host side of the loop: frame pacing, events and drawing.
type Surface interface {
	// NextFrame blocks until the next display refresh and returns its
	// timestamp in milliseconds. ok is false once the surface has closed.
	NextFrame(ctx context.Context) (now float64, ok bool)
	// Events appends host events received since the previous call.
	Events(dst []input.Event) []input.Event
	// Draw renders a processed frame.
	Draw(f *Frame)
	// Skip keeps the surface responsive on a frame that was not processed.
	Skip()
}

// Options configure frame pacing.
type Options struct {
	ReducedMotion bool
	MinIntervalMS float64 // Minimum spacing of processed frames under reduced motion
	MaxFrames     int64   // Stop after this many processed frames (0 = unlimited)
	Perf          *telemetry.PerfCollector
	AfterFrame    func(f *Frame)
}

// Driver runs the frame sequence.
type Driver struct {
	sim      Simulation
	opts     Options
	viewport Viewport

	frame     Frame
	lastTime  float64
	processed int64
	skipped   int64
	events    []input.Event
}

// NewDriver creates a driver for the given simulation and initial viewport.
func NewDriver(sim Simulation, viewport Viewport, opts Options) *Driver {
	return &Driver{
		sim:      sim,
		opts:     opts,
		viewport: viewport,
		events:   make([]input.Event, 0, 32),
	}
}

// Resize updates the cached viewport; the next frame carries it.
// A pixelRatio of 0 keeps the current density.
func (d *Driver) Resize(width, height, pixelRatio float32) {
	if width <= 0 || height <= 0 {
		return
	}
	d.viewport.Width = width
	d.viewport.Height = height
	if pixelRatio > 0 {
		d.viewport.PixelRatio = pixelRatio
	}
}

// Viewport returns the cached viewport.
func (d *Driver) Viewport() Viewport {
	return d.viewport
}

// Processed returns the number of processed frames.
func (d *Driver) Processed() int64 {
	return d.processed
}

// Skipped returns the number of frames skipped by reduced motion.
func (d *Driver) Skipped() int64 {
	return d.skipped
}

// Frame runs one tick at time now (milliseconds) unless reduced motion asks
// to skip it. It returns the snapshot to draw, or nil for a skipped frame.
func (d *Driver) Frame(now float64) *Frame {
	if d.opts.ReducedMotion && d.processed > 0 && now-d.lastTime < d.opts.MinIntervalMS {
		d.skipped++
		return nil
	}
	d.lastTime = now

	perf := d.opts.Perf
	if perf != nil {
		perf.StartTick()
		perf.StartPhase(telemetry.PhaseField)
	}
	d.sim.Field.Advance()
	sources := d.sim.Field.Sources()

	if perf != nil {
		perf.StartPhase(telemetry.PhaseMesh)
	}
	d.sim.Mesh.Tick(sources, d.sim.Potential)

	if perf != nil {
		perf.StartPhase(telemetry.PhaseStars)
	}
	d.sim.Stars.Tick(sources, d.sim.Lens)

	d.processed++
	d.frame = Frame{
		Seq:      d.processed,
		Time:     now,
		Fabric:   d.sim.Fabric,
		Sources:  sources,
		Mesh:     d.sim.Mesh,
		Stars:    d.sim.Stars,
		Viewport: d.viewport,
	}
	return &d.frame
}

// Run drives the surface until it closes, the context ends, a quit event
// arrives or MaxFrames is reached. Events are applied between frames.
func (d *Driver) Run(ctx context.Context, surface Surface, dispatcher *input.Dispatcher) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now, ok := surface.NextFrame(ctx)
		if !ok {
			return nil
		}

		d.events = surface.Events(d.events[:0])
		dispatcher.ApplyAll(d.events)
		if dispatcher.QuitRequested() {
			return nil
		}

		f := d.Frame(now)
		if f == nil {
			surface.Skip()
			continue
		}

		if d.opts.Perf != nil {
			d.opts.Perf.StartPhase(telemetry.PhaseDraw)
		}
		surface.Draw(f)
		if d.opts.Perf != nil {
			d.opts.Perf.EndTick()
			d.opts.Perf.RecordFrame()
		}
		if d.opts.AfterFrame != nil {
			d.opts.AfterFrame(f)
		}

		if d.opts.MaxFrames > 0 && d.processed >= d.opts.MaxFrames {
			return nil
		}
	}
}
