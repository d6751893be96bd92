package renderer

import (
	"context"
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spacetime/camera"
	"github.com/pthm-cable/spacetime/config"
	"github.com/pthm-cable/spacetime/field"
	"github.com/pthm-cable/spacetime/input"
	"github.com/pthm-cable/spacetime/loop"
)

// Headless runs the loop without a surface on a synthetic clock. It is only
// chosen explicitly, for profiling.
type Headless struct {
	profile  config.Profile
	viewport loop.Viewport
	mapper   *camera.Perspective
	arena    *Arena[struct{}]

	frameMS float64
	now     float64
	draws   int64
	skips   int64
}

// NewHeadless creates a headless backend with the scene workload.
func NewHeadless(cfg *config.Config) *Headless {
	viewport := loop.Viewport{
		Width:      float32(cfg.Screen.Width),
		Height:     float32(cfg.Screen.Height),
		PixelRatio: 1,
	}
	frameMS := 1000.0 / 60
	if cfg.Screen.TargetFPS > 0 {
		frameMS = 1000.0 / float64(cfg.Screen.TargetFPS)
	}
	return &Headless{
		profile:  cfg.Scene.Resolve(float64(viewport.Width), cfg.Fabric.NarrowBreakpoint),
		viewport: viewport,
		mapper:   perspectiveFromConfig(cfg, viewport),
		arena:    NewArena(func(field.Source) struct{} { return struct{}{} }, nil),
		frameMS:  frameMS,
		now:      -frameMS,
	}
}

func (h *Headless) Name() string              { return NameHeadless }
func (h *Headless) Mapper() camera.Mapper     { return h.mapper }
func (h *Headless) Viewport() loop.Viewport   { return h.viewport }
func (h *Headless) Profile() config.Profile   { return h.profile }
func (h *Headless) MassAdded(s field.Source)  { h.arena.MassAdded(s) }
func (h *Headless) MassEvicted(id ecs.Entity) { h.arena.MassEvicted(id) }

// NextFrame advances the synthetic clock by one frame period.
func (h *Headless) NextFrame(ctx context.Context) (float64, bool) {
	if ctx.Err() != nil {
		return 0, false
	}
	h.now += h.frameMS
	return h.now, true
}

// Events returns dst unchanged; there is no input.
func (h *Headless) Events(dst []input.Event) []input.Event { return dst }

// Draw counts the frame.
func (h *Headless) Draw(*loop.Frame) { h.draws++ }

// Skip counts the skipped frame.
func (h *Headless) Skip() { h.skips++ }

// Close releases the visual arena and reports the frame counts.
func (h *Headless) Close() error {
	slog.Info("headless run finished", "draws", h.draws, "skips", h.skips)
	h.arena.Clear()
	return nil
}

// perspectiveFromConfig builds the scene camera for a viewport.
func perspectiveFromConfig(cfg *config.Config, viewport loop.Viewport) *camera.Perspective {
	vec := func(v [3]float64) r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }
	return camera.NewPerspective(
		vec(cfg.Camera.Position),
		vec(cfg.Camera.Target),
		vec(cfg.Camera.Up),
		cfg.Camera.FovY,
		cfg.Camera.PlaneZ,
		fabricFromConfig(cfg),
		viewport.Width,
		viewport.Height,
	)
}
