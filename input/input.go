// Package input describes host events and applies them to the field model.
// Events only ever touch field target state or the cached viewport; they never
// run a partial tick or reach into render resources.
package input

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/spacetime/camera"
	"github.com/pthm-cable/spacetime/field"
)

// Kind identifies a host event.
type Kind uint8

const (
	PointerMove Kind = iota
	PointerDown
	Blur   // Window lost focus
	Leave  // Pointer left the surface
	Hidden // Surface minimized or hidden
	Resize // Surface size changed
	Quit   // User asked to close the surface
)

func (k Kind) String() string {
	switch k {
	case PointerMove:
		return "pointer_move"
	case PointerDown:
		return "pointer_down"
	case Blur:
		return "blur"
	case Leave:
		return "leave"
	case Hidden:
		return "hidden"
	case Resize:
		return "resize"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Button identifies a pointer button.
type Button uint8

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Event is one host event in screen coordinates.
type Event struct {
	Kind   Kind
	X, Y   float32 // Pointer position for pointer events
	Button Button  // PointerDown only
	Width  float32 // Resize only
	Height float32 // Resize only

	// PixelRatio is the device pixel ratio after a resize; 0 keeps the current one
	PixelRatio float32
}

// Field is the subset of the field model mutated by input.
type Field interface {
	SetCursorTarget(p field.Vec2)
	ReleaseCursor()
	AddPersistentMass(p field.Vec2) ecs.Entity
}

// ResizeFunc receives new viewport dimensions and pixel ratio.
type ResizeFunc func(width, height, pixelRatio float32)

// Dispatcher routes events to the field through a screen mapper.
type Dispatcher struct {
	field    Field
	mapper   camera.Mapper
	onResize ResizeFunc

	dropped int
	quit    bool
}

// NewDispatcher creates a dispatcher. onResize may be nil.
func NewDispatcher(f Field, m camera.Mapper, onResize ResizeFunc) *Dispatcher {
	return &Dispatcher{field: f, mapper: m, onResize: onResize}
}

// Apply handles one event.
func (d *Dispatcher) Apply(ev Event) {
	switch ev.Kind {
	case PointerMove:
		p, ok := d.mapper.ScreenToField(ev.X, ev.Y)
		if !ok {
			d.dropped++
			return
		}
		d.field.SetCursorTarget(p)

	case PointerDown:
		if ev.Button != ButtonPrimary {
			return
		}
		p, ok := d.mapper.ScreenToField(ev.X, ev.Y)
		if !ok {
			d.dropped++
			return
		}
		d.field.AddPersistentMass(p)

	case Blur, Leave, Hidden:
		d.field.ReleaseCursor()

	case Resize:
		if ev.Width <= 0 || ev.Height <= 0 {
			return
		}
		d.mapper.Resize(ev.Width, ev.Height)
		if d.onResize != nil {
			d.onResize(ev.Width, ev.Height, ev.PixelRatio)
		}

	case Quit:
		d.quit = true
	}
}

// ApplyAll handles a batch of events in order.
func (d *Dispatcher) ApplyAll(events []Event) {
	for _, ev := range events {
		d.Apply(ev)
	}
}

// Dropped returns how many pointer events could not be mapped.
func (d *Dispatcher) Dropped() int {
	return d.dropped
}

// QuitRequested reports whether a Quit event was seen.
func (d *Dispatcher) QuitRequested() bool {
	return d.quit
}
