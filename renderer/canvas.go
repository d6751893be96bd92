package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/spacetime/camera"
	"github.com/pthm-cable/spacetime/components"
	"github.com/pthm-cable/spacetime/config"
	"github.com/pthm-cable/spacetime/field"
	"github.com/pthm-cable/spacetime/input"
	"github.com/pthm-cable/spacetime/loop"
)

// Nominal pixel size of a terminal cell. A braille dot is then 4x4 pixels,
// so viewport pixels convert to dots with one scale factor.
const (
	cellW    = 8
	cellH    = 16
	dotScale = 4
)

// Mass ring and core heights on the canvas projection.
const massPlaneZ = -2

// canvasMass is the per-mass canvas state. It holds no host resources; the
// canvas redraws from scratch every frame.
type canvasMass struct {
	role components.Role
}

// Canvas is the terminal fallback backend. It rasterizes the fabric with a
// fixed tilt projection into braille cells.
type Canvas struct {
	screen tcell.Screen
	events chan tcell.Event
	done   chan struct{}
	ticker *time.Ticker
	start  time.Time

	cfg      *config.Config
	profile  config.Profile
	viewport loop.Viewport
	proj     *camera.Affine
	raster   *Raster
	arena    *Arena[canvasMass]
	buttons  tcell.ButtonMask
	stats    canvasStats

	closeOnce sync.Once
}

// OpenCanvas takes over the controlling terminal.
func OpenCanvas(cfg *config.Config) (*Canvas, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal screen: %w", err)
	}
	return newCanvas(screen, cfg), nil
}

// newCanvas wires an initialized screen into a backend.
func newCanvas(screen tcell.Screen, cfg *config.Config) *Canvas {
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.EnableFocus()
	screen.HideCursor()
	screen.Clear()

	cols, rows := screen.Size()
	viewport := loop.Viewport{Width: float32(cols * cellW), Height: float32(rows * cellH), PixelRatio: 1}
	fabric := fabricFromConfig(cfg)

	c := &Canvas{
		screen:   screen,
		events:   make(chan tcell.Event, 128),
		done:     make(chan struct{}),
		start:    time.Now(),
		cfg:      cfg,
		profile:  cfg.Canvas.Resolve(float64(viewport.Width), cfg.Fabric.NarrowBreakpoint),
		viewport: viewport,
		proj:     camera.NewAffine(fabric, viewport.Width, viewport.Height),
		raster:   NewRaster(cols, rows),
		arena: NewArena(func(s field.Source) canvasMass {
			return canvasMass{role: s.Role}
		}, nil),
	}

	go c.pollEvents()
	return c
}

// pollEvents forwards screen events until the screen is finalized.
func (c *Canvas) pollEvents() {
	for {
		ev := c.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

func (c *Canvas) Name() string              { return NameCanvas }
func (c *Canvas) Mapper() camera.Mapper     { return c.proj }
func (c *Canvas) Viewport() loop.Viewport   { return c.viewport }
func (c *Canvas) Profile() config.Profile   { return c.profile }
func (c *Canvas) MassAdded(s field.Source)  { c.arena.MassAdded(s) }
func (c *Canvas) MassEvicted(id ecs.Entity) { c.arena.MassEvicted(id) }

// NextFrame waits for the frame ticker.
func (c *Canvas) NextFrame(ctx context.Context) (float64, bool) {
	if c.ticker == nil {
		period := time.Duration(c.profile.FrameMS * float64(time.Millisecond))
		if period <= 0 {
			period = 16 * time.Millisecond
		}
		c.ticker = time.NewTicker(period)
	}

	select {
	case <-ctx.Done():
		return 0, false
	case <-c.done:
		return 0, false
	case <-c.ticker.C:
		return float64(time.Since(c.start).Microseconds()) / 1000, true
	}
}

// Events drains pending terminal events without blocking.
func (c *Canvas) Events(dst []input.Event) []input.Event {
	for {
		select {
		case ev := <-c.events:
			dst = c.translate(ev, dst)
		default:
			return dst
		}
	}
}

// translate converts one terminal event. Mouse cells map to the pixel at
// the cell center.
func (c *Canvas) translate(ev tcell.Event, dst []input.Event) []input.Event {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		col, row := ev.Position()
		x := (float32(col) + 0.5) * cellW
		y := (float32(row) + 0.5) * cellH
		dst = append(dst, input.Event{Kind: input.PointerMove, X: x, Y: y})

		buttons := ev.Buttons()
		pressed := buttons &^ c.buttons
		c.buttons = buttons
		switch {
		case pressed&tcell.Button1 != 0:
			dst = append(dst, input.Event{Kind: input.PointerDown, X: x, Y: y, Button: input.ButtonPrimary})
		case pressed&tcell.Button2 != 0:
			dst = append(dst, input.Event{Kind: input.PointerDown, X: x, Y: y, Button: input.ButtonSecondary})
		case pressed&tcell.Button3 != 0:
			dst = append(dst, input.Event{Kind: input.PointerDown, X: x, Y: y, Button: input.ButtonMiddle})
		}

	case *tcell.EventFocus:
		if !ev.Focused {
			dst = append(dst, input.Event{Kind: input.Blur})
		}

	case *tcell.EventResize:
		cols, rows := ev.Size()
		dst = append(dst, input.Event{Kind: input.Resize, Width: float32(cols * cellW), Height: float32(rows * cellH)})

	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q'):
			dst = append(dst, input.Event{Kind: input.Quit})
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'h':
			c.stats.toggle()
		}
	}
	return dst
}

// Draw rasterizes the frame and presents it.
func (c *Canvas) Draw(f *loop.Frame) {
	cols := int(f.Viewport.Width) / cellW
	rows := int(f.Viewport.Height) / cellH
	if cols != c.raster.Cols || rows != c.raster.Rows {
		c.raster.Resize(cols, rows)
		c.screen.Sync()
	} else {
		c.raster.Clear()
	}

	paintCanvas(c.raster, c.proj, f, c.arena)
	c.stats.record(time.Now())
	c.present(f)
}

// Skip leaves the previous frame on screen.
func (c *Canvas) Skip() {}

// present copies the raster and the optional stats overlay into the screen.
func (c *Canvas) present(f *loop.Frame) {
	for row := 0; row < c.raster.Rows; row++ {
		for col := 0; col < c.raster.Cols; col++ {
			r, ink, glow := c.raster.Cell(col, row)
			if ink == InkNone {
				c.screen.SetContent(col, row, ' ', nil, tcell.StyleDefault)
				continue
			}
			c.screen.SetContent(col, row, r, nil, inkStyle(ink, glow))
		}
	}
	if c.stats.visible {
		drawStats(c.screen, c.stats.lines(f, c.cfg.Field.Capacity), c.raster.Rows)
	}
	c.screen.Show()
}

// Close restores the terminal.
func (c *Canvas) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ticker != nil {
			c.ticker.Stop()
		}
		c.arena.Clear()
		c.screen.Fini()
	})
	return nil
}

// paintCanvas draws every row and every second column of the lattice, the
// stars as depth-sized dots and a ring with a bright core per observed mass.
func paintCanvas(r *Raster, proj *camera.Affine, f *loop.Frame, masses *Arena[canvasMass]) {
	lattice := f.Mesh
	dot := func(x, y, z float32) (int, int, float32) {
		sx, sy, depth := proj.Project(x, y, z)
		return int(sx / dotScale), int(sy / dotScale), depth
	}

	if lattice != nil {
		for iy := 0; iy <= lattice.Rows; iy++ {
			px, py := 0, 0
			for ix := 0; ix <= lattice.Cols; ix++ {
				x, y, z := lattice.Vertex(lattice.Index(ix, iy))
				qx, qy, _ := dot(x, y, z)
				if ix > 0 {
					r.Line(px, py, qx, qy, InkFabric, fabricGlow(z))
				}
				px, py = qx, qy
			}
		}
		for ix := 0; ix <= lattice.Cols; ix += 2 {
			px, py := 0, 0
			for iy := 0; iy <= lattice.Rows; iy++ {
				x, y, z := lattice.Vertex(lattice.Index(ix, iy))
				qx, qy, _ := dot(x, y, z)
				if iy > 0 {
					r.Line(px, py, qx, qy, InkFabric, fabricGlow(z))
				}
				px, py = qx, qy
			}
		}
	}

	if f.Stars != nil {
		for i := 0; i < f.Stars.Len(); i++ {
			x, y, z := f.Stars.Position(i, f.Time)
			sx, sy, depth := dot(x, y, z)
			r.Disc(sx, sy, starDotRadius(depth), InkStar, 0.62)
		}
	}

	for _, s := range f.Sources {
		m, ok := masses.Get(s.ID)
		if !ok {
			continue
		}
		sx, sy, _ := dot(s.Pos.X, s.Pos.Y, massPlaneZ)
		ring, core := CanvasRing(m.role, s.Strength, f.Time)
		ringGlow, coreGlow := float32(0.42), float32(0.45)
		if m.role == components.RoleCursor {
			ringGlow, coreGlow = 0.36, 0.38
		}
		r.Circle(sx, sy, int(ring/dotScale+0.5), InkMass, ringGlow)
		r.Disc(sx, sy, int(core/dotScale+0.5), InkMass, coreGlow)
	}
}

// starDotPx is the star size, in viewport pixels, that earns a braille dot
// of radius one.
const starDotPx = 1.6

// starDotRadius sizes a star in braille dots. Stars grow with projected
// depth; only the nearest band gets more than a single dot.
func starDotRadius(depth float32) int {
	return int((0.72 + depth*0.8) / starDotPx)
}

// fabricGlow brightens the fabric where it dips.
func fabricGlow(z float32) float32 {
	return field.Clamp32(0.44+field.Abs32(z)*0.05, 0, 1)
}

// inkStyle picks the terminal color of a cell.
func inkStyle(ink Ink, glow float32) tcell.Style {
	var r, g, b float32
	switch ink {
	case InkFabric:
		r, g, b = 140, 181, 255
	case InkStar:
		r, g, b = 223, 237, 255
	default:
		r, g, b = 189, 214, 255
	}
	k := 0.35 + 0.65*field.Clamp32(glow, 0, 1)
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r*k), int32(g*k), int32(b*k)))
}

// fabricFromConfig builds the fabric domain from config.
func fabricFromConfig(cfg *config.Config) field.Fabric {
	return field.Fabric{
		Width:  float32(cfg.Fabric.Width),
		Height: float32(cfg.Fabric.Height),
		Margin: cfg.Derived.Margin32,
	}
}
