package renderer

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/spacetime/field"
)

// Arena owns backend-private visuals keyed by mass identity. A visual is
// created when its mass is added and released exactly once, when the mass is
// evicted or the arena is cleared.
type Arena[T any] struct {
	items   map[ecs.Entity]T
	create  func(field.Source) T
	release func(T)
}

// NewArena creates an arena. release may be nil for visuals without resources.
func NewArena[T any](create func(field.Source) T, release func(T)) *Arena[T] {
	return &Arena[T]{
		items:   make(map[ecs.Entity]T),
		create:  create,
		release: release,
	}
}

// MassAdded creates the visual for s. A mass already present is ignored.
func (a *Arena[T]) MassAdded(s field.Source) {
	if _, ok := a.items[s.ID]; ok {
		return
	}
	a.items[s.ID] = a.create(s)
}

// MassEvicted releases the visual for id. Unknown ids are ignored.
func (a *Arena[T]) MassEvicted(id ecs.Entity) {
	v, ok := a.items[id]
	if !ok {
		return
	}
	delete(a.items, id)
	if a.release != nil {
		a.release(v)
	}
}

// Get returns the visual for id.
func (a *Arena[T]) Get(id ecs.Entity) (T, bool) {
	v, ok := a.items[id]
	return v, ok
}

// Len returns the number of live visuals.
func (a *Arena[T]) Len() int {
	return len(a.items)
}

// Clear releases every visual.
func (a *Arena[T]) Clear() {
	for id, v := range a.items {
		delete(a.items, id)
		if a.release != nil {
			a.release(v)
		}
	}
}
