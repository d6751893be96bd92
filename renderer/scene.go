package renderer

import (
	"context"
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/spacetime/camera"
	"github.com/pthm-cable/spacetime/components"
	"github.com/pthm-cable/spacetime/config"
	"github.com/pthm-cable/spacetime/field"
	"github.com/pthm-cable/spacetime/input"
	"github.com/pthm-cable/spacetime/loop"
	"github.com/pthm-cable/spacetime/ui"
)

// Scene layer heights and colors.
const (
	fillZ = -0.4
	wireZ = -0.35
	ringZ = 0.82
	coreZ = 1.4
)

var (
	sceneBackground = rl.NewColor(2, 5, 12, 255)
	fillColor       = rl.NewColor(0x11, 0x27, 0x44, 255)
	wireColor       = rl.NewColor(0x9f, 0xc4, 0xff, 255)
	starColor       = rl.NewColor(0xd4, 0xe3, 0xff, 255)
	cursorRingColor = rl.NewColor(0x95, 0xc0, 0xff, 255)
	massRingColor   = rl.NewColor(0xae, 0xc7, 0xff, 255)
	cursorCoreColor = rl.NewColor(0xcf, 0xe4, 0xff, 255)
	massCoreColor   = rl.NewColor(0xf5, 0xf9, 0xff, 255)
)

// sceneMass is the per-mass scene visual: one ring model owned by the arena.
type sceneMass struct {
	role components.Role
	ring rl.Model
}

// Scene is the retained 3D backend drawn into a raylib window.
type Scene struct {
	cfg      *config.Config
	reduced  bool
	profile  config.Profile
	viewport loop.Viewport

	cam   *camera.Perspective
	rlCam rl.Camera3D
	glow  rl.Texture2D
	arena *Arena[sceneMass]
	hud   *ui.HUD

	focused   bool
	onScreen  bool
	minimized bool
	frameSec  float64
}

// OpenScene creates the window and the GPU resources of the scene.
func OpenScene(cfg *config.Config, opts Options) (*Scene, error) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	if !rl.IsWindowReady() {
		rl.CloseWindow()
		return nil, fmt.Errorf("%w: window could not be created", ErrUnavailable)
	}
	fps := cfg.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	rl.SetTargetFPS(int32(fps))

	img := rl.GenImageGradientRadial(64, 64, 0, color.RGBA{255, 255, 255, 255}, color.RGBA{120, 170, 255, 0})
	glow := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(glow, rl.FilterBilinear)

	viewport := loop.Viewport{
		Width:      float32(rl.GetScreenWidth()),
		Height:     float32(rl.GetScreenHeight()),
		PixelRatio: windowPixelRatio(cfg),
	}
	cam := perspectiveFromConfig(cfg, viewport)

	s := &Scene{
		cfg:      cfg,
		reduced:  opts.Reduced,
		profile:  cfg.Scene.Resolve(float64(viewport.Width), cfg.Fabric.NarrowBreakpoint),
		viewport: viewport,
		cam:      cam,
		rlCam: rl.Camera3D{
			Position:   vec3(cfg.Camera.Position),
			Target:     vec3(cfg.Camera.Target),
			Up:         vec3(cfg.Camera.Up),
			Fovy:       float32(cfg.Camera.FovY),
			Projection: rl.CameraPerspective,
		},
		glow:     glow,
		hud:      ui.NewHUD(),
		focused:  true,
		onScreen: true,
		frameSec: 1 / float64(fps),
	}
	s.arena = NewArena(newSceneMass, func(m sceneMass) { rl.UnloadModel(m.ring) })
	return s, nil
}

func newSceneMass(src field.Source) sceneMass {
	radius, size := ringTorus(ringInner, ringOuter)
	mesh := rl.GenMeshTorus(radius, size, 12, 72)
	return sceneMass{role: src.Role, ring: rl.LoadModelFromMesh(mesh)}
}

// windowPixelRatio reads the window scale, capped by screen.max_pixel_ratio.
func windowPixelRatio(cfg *config.Config) float32 {
	return cappedPixelRatio(rl.GetWindowScaleDPI().X, float32(cfg.Screen.MaxPixelRatio))
}

func vec3(v [3]float64) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}

func (s *Scene) Name() string               { return NameScene }
func (s *Scene) Mapper() camera.Mapper      { return s.cam }
func (s *Scene) Viewport() loop.Viewport    { return s.viewport }
func (s *Scene) Profile() config.Profile    { return s.profile }
func (s *Scene) MassAdded(src field.Source) { s.arena.MassAdded(src) }
func (s *Scene) MassEvicted(id ecs.Entity)  { s.arena.MassEvicted(id) }

// NextFrame returns the window clock. Pacing happens in EndDrawing.
func (s *Scene) NextFrame(ctx context.Context) (float64, bool) {
	if ctx.Err() != nil || rl.WindowShouldClose() {
		return 0, false
	}
	return rl.GetTime() * 1000, true
}

// Events collects the window input polled by the last EndDrawing or Skip.
func (s *Scene) Events(dst []input.Event) []input.Event {
	if rl.IsKeyPressed(rl.KeyF1) {
		s.hud.ToggleVisible()
	}
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsWindowResized() {
		dst = append(dst, input.Event{
			Kind:       input.Resize,
			Width:      float32(rl.GetScreenWidth()),
			Height:     float32(rl.GetScreenHeight()),
			PixelRatio: windowPixelRatio(s.cfg),
		})
	}

	focused := rl.IsWindowFocused()
	onScreen := rl.IsCursorOnScreen()
	minimized := rl.IsWindowMinimized()
	if s.focused && !focused {
		dst = append(dst, input.Event{Kind: input.Blur})
	}
	if s.onScreen && !onScreen {
		dst = append(dst, input.Event{Kind: input.Leave})
	}
	if !s.minimized && minimized {
		dst = append(dst, input.Event{Kind: input.Hidden})
	}
	s.focused, s.onScreen, s.minimized = focused, onScreen, minimized
	if !onScreen {
		return dst
	}

	pos := rl.GetMousePosition()
	delta := rl.GetMouseDelta()
	if delta.X != 0 || delta.Y != 0 {
		dst = append(dst, input.Event{Kind: input.PointerMove, X: pos.X, Y: pos.Y})
	}

	buttons := [...]struct {
		mouse rl.MouseButton
		btn   input.Button
	}{
		{rl.MouseButtonLeft, input.ButtonPrimary},
		{rl.MouseButtonRight, input.ButtonSecondary},
		{rl.MouseButtonMiddle, input.ButtonMiddle},
	}
	for _, b := range buttons {
		if !rl.IsMouseButtonPressed(b.mouse) {
			continue
		}
		if b.btn == input.ButtonPrimary && s.hud.Contains(pos.X, pos.Y) {
			continue
		}
		dst = append(dst, input.Event{Kind: input.PointerDown, X: pos.X, Y: pos.Y, Button: b.btn})
	}
	return dst
}

// Draw renders the visible layers and the HUD.
func (s *Scene) Draw(f *loop.Frame) {
	s.viewport = f.Viewport
	layers := &s.hud.Layers

	rl.BeginDrawing()
	rl.ClearBackground(sceneBackground)
	rl.BeginMode3D(s.rlCam)

	if f.Mesh != nil && layers.Visible(ui.LayerFill) {
		s.drawFill(f)
	}
	if f.Mesh != nil && layers.Visible(ui.LayerWire) {
		s.drawWire(f)
	}
	if f.Stars != nil && layers.Visible(ui.LayerStars) {
		s.drawStars(f)
	}
	s.drawMasses(f, layers.Visible(ui.LayerGlow))

	rl.EndMode3D()

	s.hud.Draw(ui.HUDData{
		Backend:     NameScene,
		FPS:         rl.GetFPS(),
		Frame:       f.Seq,
		Reduced:     s.reduced,
		Capacity:    s.cfg.Field.Capacity,
		MaxStrength: float32(max(s.cfg.Field.CursorStrength, s.cfg.Field.PersistentMaxStrength)),
		Sources:     f.Sources,
	})
	rl.EndDrawing()
}

// drawFill shades the displaced lattice with two triangles per cell.
func (s *Scene) drawFill(f *loop.Frame) {
	l := f.Mesh
	tint := rl.Fade(fillColor, 0.3)
	vertex := func(ix, iy int) rl.Vector3 {
		x, y, z := l.Vertex(l.Index(ix, iy))
		return rl.NewVector3(x, y, z+fillZ)
	}

	rl.DisableBackfaceCulling()
	for iy := 0; iy < l.Rows; iy++ {
		for ix := 0; ix < l.Cols; ix++ {
			a, b := vertex(ix, iy), vertex(ix+1, iy)
			c, d := vertex(ix, iy+1), vertex(ix+1, iy+1)
			rl.DrawTriangle3D(a, b, d, tint)
			rl.DrawTriangle3D(a, d, c, tint)
		}
	}
	rl.EnableBackfaceCulling()
}

// drawWire draws every lattice edge, one device pixel per pixel-ratio unit wide.
func (s *Scene) drawWire(f *loop.Frame) {
	l := f.Mesh
	tint := rl.Fade(wireColor, 0.8)
	rl.DrawRenderBatchActive()
	rl.SetLineWidth(f.Viewport.PixelRatio)
	defer func() {
		rl.DrawRenderBatchActive()
		rl.SetLineWidth(1)
	}()
	vertex := func(ix, iy int) rl.Vector3 {
		x, y, z := l.Vertex(l.Index(ix, iy))
		return rl.NewVector3(x, y, z+wireZ)
	}

	for iy := 0; iy <= l.Rows; iy++ {
		for ix := 0; ix <= l.Cols; ix++ {
			v := vertex(ix, iy)
			if ix < l.Cols {
				rl.DrawLine3D(v, vertex(ix+1, iy), tint)
			}
			if iy < l.Rows {
				rl.DrawLine3D(v, vertex(ix, iy+1), tint)
			}
		}
	}
}

// drawStars draws each star as an additive glow billboard.
func (s *Scene) drawStars(f *loop.Frame) {
	tint := rl.Fade(starColor, StarOpacity(f.Time))
	rl.BeginBlendMode(rl.BlendAdditive)
	for i := 0; i < f.Stars.Len(); i++ {
		x, y, z := f.Stars.Position(i, f.Time)
		rl.DrawBillboard(s.rlCam, s.glow, rl.NewVector3(x, y, z), s.profile.StarSize, tint)
	}
	rl.EndBlendMode()
}

// drawMasses draws the ring of every observed mass and, with the glow
// layer visible, its core.
func (s *Scene) drawMasses(f *loop.Frame, glow bool) {
	for _, src := range f.Sources {
		m, ok := s.arena.Get(src.ID)
		if !ok {
			continue
		}
		look := SceneLook(m.role, src.Strength, src.Phase, f.Time)
		ringTint, coreTint := massRingColor, massCoreColor
		if m.role == components.RoleCursor {
			ringTint, coreTint = cursorRingColor, cursorCoreColor
		}

		scale := look.RingRadius
		rl.DrawModelEx(m.ring, rl.NewVector3(src.Pos.X, src.Pos.Y, ringZ),
			rl.NewVector3(0, 0, 1), 0, rl.NewVector3(scale, scale, scale),
			rl.Fade(ringTint, look.RingOpacity))

		if glow && look.CoreOpacity > 0 {
			rl.BeginBlendMode(rl.BlendAdditive)
			rl.DrawBillboard(s.rlCam, s.glow, rl.NewVector3(src.Pos.X, src.Pos.Y, coreZ),
				look.CoreScale, rl.Fade(coreTint, look.CoreOpacity))
			rl.EndBlendMode()
		}
	}
}

// Skip keeps the window responsive on a frame that is not processed.
func (s *Scene) Skip() {
	rl.WaitTime(s.frameSec)
	rl.PollInputEvents()
}

// Close releases every mass visual, the glow texture and the window.
func (s *Scene) Close() error {
	s.arena.Clear()
	rl.UnloadTexture(s.glow)
	rl.CloseWindow()
	return nil
}
