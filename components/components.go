// Package components defines ECS components for mass sources.
package components

// Role distinguishes the transient cursor mass from click-placed masses.
type Role uint8

const (
	RoleCursor     Role = iota // Tracks the pointer, lives for the session
	RolePersistent             // Placed by a click, evicted FIFO
)

func (r Role) String() string {
	switch r {
	case RoleCursor:
		return "cursor"
	case RolePersistent:
		return "persistent"
	default:
		return "unknown"
	}
}

// Position is a mass position in fabric coordinates.
type Position struct {
	X, Y float32
}

// Drift is the position a mass chases each frame.
// Only the cursor mass moves; persistent masses keep Drift equal to Position.
type Drift struct {
	X, Y float32
	Rate float32 // Per-frame blend factor in (0,1)
}

// Strength is the smoothed magnitude of a mass.
// Current is only ever blended toward Target, never assigned.
type Strength struct {
	Current float32
	Target  float32
	Rate    float32 // Per-frame blend factor in (0,1)
}

// Phase is the cosmetic oscillation offset fixed at creation.
type Phase struct {
	Value float32
}

// Mass tags an entity with its role and creation order.
type Mass struct {
	Role Role
	Seq  uint64 // Monotonic creation counter
}
