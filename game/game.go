// Package game wires the field model, the simulators, a render backend and
// the loop driver into one session.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/pthm-cable/spacetime/config"
	"github.com/pthm-cable/spacetime/field"
	"github.com/pthm-cable/spacetime/input"
	"github.com/pthm-cable/spacetime/loop"
	"github.com/pthm-cable/spacetime/mesh"
	"github.com/pthm-cable/spacetime/renderer"
	"github.com/pthm-cable/spacetime/starfield"
	"github.com/pthm-cable/spacetime/telemetry"
)

// Options configure a session.
type Options struct {
	Seed      int64
	Reduced   bool   // Reduced motion, read once at startup
	MaxFrames int64  // Stop after N processed frames (0 = unlimited)
	OutputDir string // CSV logs and config snapshot (empty = off)
	LogStats  bool   // Periodic session and perf log lines
}

// Game is one running visualization.
type Game struct {
	id      string
	cfg     *config.Config
	backend renderer.Backend

	model      *field.Model
	lattice    *mesh.Lattice
	stars      *starfield.Field
	driver     *loop.Driver
	dispatcher *input.Dispatcher

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool

	// Cumulative counters already reported to the collector
	lastDropped int
	lastSkipped int64
}

// trackedField counts cursor releases for telemetry.
type trackedField struct {
	*field.Model
	collector *telemetry.Collector
}

func (t trackedField) ReleaseCursor() {
	t.Model.ReleaseCursor()
	t.collector.RecordRelease()
}

// New builds a session on an opened backend. The lattice and star counts
// come from the backend profile. The game owns the backend from here on.
func New(cfg *config.Config, backend renderer.Backend, opts Options) (*Game, error) {
	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	profile := backend.Profile()
	fabric := fabricFromConfig(cfg)

	window := int64(cfg.Telemetry.LogIntervalFrames)
	if window <= 0 {
		window = int64(cfg.Telemetry.PerfWindow)
	}

	g := &Game{
		id:        uuid.NewString(),
		cfg:       cfg,
		backend:   backend,
		model:     field.NewModel(field.SettingsFromConfig(cfg), rng),
		lattice:   mesh.New(profile.Cols, profile.Rows, fabric, float32(cfg.Mesh.RecoveryRate)),
		stars:     starfield.New(profile.Stars, fabric, starSettings(cfg), rng),
		collector: telemetry.NewCollector(window),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output:    output,
		logStats:  opts.LogStats,
	}

	g.model.Subscribe(backend)
	g.model.Subscribe(g.collector)

	sim := loop.Simulation{
		Field:     g.model,
		Mesh:      g.lattice,
		Stars:     g.stars,
		Fabric:    fabric,
		Potential: potentialParams(cfg),
		Lens:      lensParams(cfg, profile),
	}
	g.driver = loop.NewDriver(sim, backend.Viewport(), loop.Options{
		ReducedMotion: opts.Reduced,
		MinIntervalMS: cfg.Motion.MinIntervalMS,
		MaxFrames:     opts.MaxFrames,
		Perf:          g.perf,
		AfterFrame:    g.afterFrame,
	})
	g.dispatcher = input.NewDispatcher(
		trackedField{Model: g.model, collector: g.collector},
		backend.Mapper(),
		g.driver.Resize,
	)

	slog.Info("session ready",
		"session", g.id,
		"backend", backend.Name(),
		"cols", profile.Cols,
		"rows", profile.Rows,
		"stars", profile.Stars,
		"reduced_motion", opts.Reduced,
		"seed", opts.Seed,
	)
	return g, nil
}

// Run drives the loop until the backend closes, a quit event arrives, the
// frame limit is reached or ctx is cancelled.
func (g *Game) Run(ctx context.Context) error {
	err := g.driver.Run(ctx, g.backend, g.dispatcher)
	slog.Info("session ended",
		"session", g.id,
		"backend", g.backend.Name(),
		"frames", g.driver.Processed(),
		"skipped", g.driver.Skipped(),
		"masses", len(g.model.Persistent()),
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the backend and flushes output files.
func (g *Game) Close() error {
	return errors.Join(g.backend.Close(), g.output.Close())
}

// ID returns the session identifier used in log lines.
func (g *Game) ID() string { return g.id }

// Model returns the field model.
func (g *Game) Model() *field.Model { return g.model }

// Driver returns the loop driver.
func (g *Game) Driver() *loop.Driver { return g.driver }
