// Package field owns the mass sources that perturb the fabric and the
// potential and lensing functions evaluated against them.
package field

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/spacetime/components"
	"github.com/pthm-cable/spacetime/config"
)

// Source is a read-only snapshot of one mass for a single frame.
type Source struct {
	ID       ecs.Entity
	Role     components.Role
	Pos      Vec2
	Strength float32 // Current (smoothed) strength
	Target   float32 // Strength being approached
	Phase    float32
}

// Observer is notified when masses are created or evicted.
// Calls happen synchronously at the mutation point, so backend visuals are
// created and released in the same step as the mass itself.
type Observer interface {
	MassAdded(s Source)
	MassEvicted(id ecs.Entity)
}

// Settings holds the mass source constants.
type Settings struct {
	CursorStrength         float32
	PersistentMin          float32
	PersistentMax          float32
	Capacity               int
	CursorStrengthRate     float32
	PersistentStrengthRate float32
	CursorPositionRate     float32
}

// SettingsFromConfig extracts mass source settings from the loaded config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		CursorStrength:         float32(cfg.Field.CursorStrength),
		PersistentMin:          float32(cfg.Field.PersistentMinStrength),
		PersistentMax:          float32(cfg.Field.PersistentMaxStrength),
		Capacity:               cfg.Field.Capacity,
		CursorStrengthRate:     float32(cfg.Field.CursorStrengthRate),
		PersistentStrengthRate: float32(cfg.Field.PersistentStrengthRate),
		CursorPositionRate:     float32(cfg.Field.CursorPositionRate),
	}
}

// Model owns every mass source. Masses are ark entities; the entity handle
// is the mass identity handed to observers.
type Model struct {
	world *ecs.World
	rng   *rand.Rand
	cfg   Settings

	massMap   *ecs.Map4[components.Position, components.Strength, components.Phase, components.Mass]
	cursorMap *ecs.Map5[components.Position, components.Strength, components.Phase, components.Mass, components.Drift]
	driftMap  *ecs.Map1[components.Drift]
	posMap    *ecs.Map1[components.Position]
	strMap    *ecs.Map1[components.Strength]
	phaseMap  *ecs.Map1[components.Phase]
	roleMap   *ecs.Map1[components.Mass]

	strengthFilter *ecs.Filter1[components.Strength]
	driftFilter    *ecs.Filter2[components.Position, components.Drift]

	cursor     ecs.Entity
	persistent []ecs.Entity // Oldest first
	nextSeq    uint64

	observers []Observer
	sources   []Source // Reused snapshot buffer
}

// NewModel creates a field with the cursor mass at the origin and zero strength.
func NewModel(cfg Settings, rng *rand.Rand) *Model {
	m := &Model{
		world:      ecs.NewWorld(),
		rng:        rng,
		cfg:        cfg,
		persistent: make([]ecs.Entity, 0, cfg.Capacity+1),
		sources:    make([]Source, 0, cfg.Capacity+1),
	}

	w := m.world
	m.massMap = ecs.NewMap4[components.Position, components.Strength, components.Phase, components.Mass](w)
	m.cursorMap = ecs.NewMap5[components.Position, components.Strength, components.Phase, components.Mass, components.Drift](w)
	m.driftMap = ecs.NewMap1[components.Drift](w)
	m.posMap = ecs.NewMap1[components.Position](w)
	m.strMap = ecs.NewMap1[components.Strength](w)
	m.phaseMap = ecs.NewMap1[components.Phase](w)
	m.roleMap = ecs.NewMap1[components.Mass](w)
	m.strengthFilter = ecs.NewFilter1[components.Strength](w)
	m.driftFilter = ecs.NewFilter2[components.Position, components.Drift](w)

	m.cursor = m.spawnCursor()

	return m
}

// spawnCursor creates the session-long cursor mass at the origin, inactive.
func (m *Model) spawnCursor() ecs.Entity {
	pos := components.Position{}
	str := components.Strength{Rate: m.cfg.CursorStrengthRate}
	phase := components.Phase{Value: m.rng.Float32() * 2 * math.Pi}
	mass := components.Mass{Role: components.RoleCursor, Seq: m.nextSeq}
	drift := components.Drift{Rate: m.cfg.CursorPositionRate}
	m.nextSeq++
	return m.cursorMap.NewEntity(&pos, &str, &phase, &mass, &drift)
}

// spawnPersistent creates a stationary mass with zero current strength.
func (m *Model) spawnPersistent(p Vec2, target float32) ecs.Entity {
	pos := components.Position{X: p.X, Y: p.Y}
	str := components.Strength{Current: 0, Target: target, Rate: m.cfg.PersistentStrengthRate}
	phase := components.Phase{Value: m.rng.Float32() * 2 * math.Pi}
	mass := components.Mass{Role: components.RolePersistent, Seq: m.nextSeq}
	m.nextSeq++
	return m.massMap.NewEntity(&pos, &str, &phase, &mass)
}

// Subscribe registers an observer and replays every live mass to it,
// cursor first, then persistent masses oldest first.
func (m *Model) Subscribe(o Observer) {
	m.observers = append(m.observers, o)
	o.MassAdded(m.source(m.cursor))
	for _, e := range m.persistent {
		o.MassAdded(m.source(e))
	}
}

// Advance blends every strength toward its target and the cursor toward its
// drift target. Blend factors are per call, so visual speed follows the frame rate.
func (m *Model) Advance() {
	query := m.driftFilter.Query()
	for query.Next() {
		pos, drift := query.Get()
		pos.X += (drift.X - pos.X) * drift.Rate
		pos.Y += (drift.Y - pos.Y) * drift.Rate
	}

	sq := m.strengthFilter.Query()
	for sq.Next() {
		s := sq.Get()
		s.Current += (s.Target - s.Current) * s.Rate
	}
}

// SetCursorTarget points the cursor mass at p and activates it.
func (m *Model) SetCursorTarget(p Vec2) {
	drift := m.driftMap.Get(m.cursor)
	drift.X, drift.Y = p.X, p.Y
	m.strMap.Get(m.cursor).Target = m.cfg.CursorStrength
}

// ReleaseCursor lets the cursor strength decay to zero.
// The cursor position is frozen where it currently is.
func (m *Model) ReleaseCursor() {
	pos := m.posMap.Get(m.cursor)
	drift := m.driftMap.Get(m.cursor)
	drift.X, drift.Y = pos.X, pos.Y
	m.strMap.Get(m.cursor).Target = 0
}

// AddPersistentMass places a mass at p whose strength ramps up from zero.
// When the capacity is exceeded the oldest persistent mass is evicted.
func (m *Model) AddPersistentMass(p Vec2) ecs.Entity {
	target := m.cfg.PersistentMin + m.rng.Float32()*(m.cfg.PersistentMax-m.cfg.PersistentMin)
	e := m.spawnPersistent(p, target)
	m.persistent = append(m.persistent, e)

	src := m.source(e)
	for _, o := range m.observers {
		o.MassAdded(src)
	}

	for len(m.persistent) > m.cfg.Capacity {
		m.evictOldest()
	}
	return e
}

// evictOldest removes the head of the persistent list and notifies observers once.
func (m *Model) evictOldest() {
	oldest := m.persistent[0]
	copy(m.persistent, m.persistent[1:])
	m.persistent = m.persistent[:len(m.persistent)-1]

	for _, o := range m.observers {
		o.MassEvicted(oldest)
	}
	m.world.RemoveEntity(oldest)
}

// Sources returns a snapshot of every mass: persistent masses oldest first,
// then the cursor. The slice is reused by the next call.
func (m *Model) Sources() []Source {
	m.sources = m.sources[:0]
	for _, e := range m.persistent {
		m.sources = append(m.sources, m.source(e))
	}
	m.sources = append(m.sources, m.source(m.cursor))
	return m.sources
}

// Cursor returns a snapshot of the cursor mass.
func (m *Model) Cursor() Source {
	return m.source(m.cursor)
}

// CursorTarget returns the position the cursor mass is drifting toward.
func (m *Model) CursorTarget() Vec2 {
	d := m.driftMap.Get(m.cursor)
	return Vec2{X: d.X, Y: d.Y}
}

// TargetStrength returns the target strength of a live mass.
func (m *Model) TargetStrength(id ecs.Entity) (float32, bool) {
	if !m.world.Alive(id) {
		return 0, false
	}
	return m.strMap.Get(id).Target, true
}

// Persistent returns the persistent mass identities, oldest first.
func (m *Model) Persistent() []ecs.Entity {
	out := make([]ecs.Entity, len(m.persistent))
	copy(out, m.persistent)
	return out
}

// Alive reports whether id still names a live mass.
func (m *Model) Alive(id ecs.Entity) bool {
	return m.world.Alive(id)
}

func (m *Model) source(e ecs.Entity) Source {
	pos := m.posMap.Get(e)
	str := m.strMap.Get(e)
	return Source{
		ID:       e,
		Role:     m.roleMap.Get(e).Role,
		Pos:      Vec2{X: pos.X, Y: pos.Y},
		Strength: str.Current,
		Target:   str.Target,
		Phase:    m.phaseMap.Get(e).Value,
	}
}
