package renderer

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/goleak"

	"github.com/pthm-cable/spacetime/camera"
	"github.com/pthm-cable/spacetime/config"
	"github.com/pthm-cable/spacetime/field"
	"github.com/pthm-cable/spacetime/input"
	"github.com/pthm-cable/spacetime/loop"
	"github.com/pthm-cable/spacetime/mesh"
	"github.com/pthm-cable/spacetime/starfield"
)

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func newTestCanvas(t *testing.T, cols, rows int) (*Canvas, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	screen.SetSize(cols, rows)
	c := newCanvas(screen, loadTestConfig(t))
	t.Cleanup(func() { c.Close() })
	return c, screen
}

func TestCanvasProfileFollowsTerminalWidth(t *testing.T) {
	narrow, _ := newTestCanvas(t, 80, 24)
	if got := narrow.Viewport().Width; got != 640 {
		t.Fatalf("expected 640px for 80 columns, got %f", got)
	}
	if p := narrow.Profile(); p.Cols != 72 || p.Rows != 42 || p.Stars != 130 {
		t.Errorf("expected the narrow canvas profile, got %+v", p)
	}

	wide, _ := newTestCanvas(t, 160, 48)
	if p := wide.Profile(); p.Cols != 96 || p.Rows != 56 || p.Stars != 200 {
		t.Errorf("expected the normal canvas profile, got %+v", p)
	}
}

func TestCanvasTranslateMouse(t *testing.T) {
	c, _ := newTestCanvas(t, 80, 24)

	evs := c.translate(tcell.NewEventMouse(10, 5, tcell.ButtonNone, tcell.ModNone), nil)
	if len(evs) != 1 || evs[0].Kind != input.PointerMove {
		t.Fatalf("expected one move, got %+v", evs)
	}
	if evs[0].X != 84 || evs[0].Y != 88 {
		t.Errorf("expected the cell center (84,88), got (%f,%f)", evs[0].X, evs[0].Y)
	}

	// Press edge produces exactly one PointerDown
	evs = c.translate(tcell.NewEventMouse(10, 5, tcell.Button1, tcell.ModNone), nil)
	if len(evs) != 2 || evs[1].Kind != input.PointerDown || evs[1].Button != input.ButtonPrimary {
		t.Fatalf("expected move plus primary press, got %+v", evs)
	}
	evs = c.translate(tcell.NewEventMouse(11, 5, tcell.Button1, tcell.ModNone), nil)
	if len(evs) != 1 {
		t.Errorf("expected a drag to only move, got %+v", evs)
	}

	evs = c.translate(tcell.NewEventMouse(11, 5, tcell.Button2, tcell.ModNone), nil)
	if len(evs) != 2 || evs[1].Button != input.ButtonSecondary {
		t.Errorf("expected a secondary press, got %+v", evs)
	}
}

func TestCanvasTranslateFocusAndResize(t *testing.T) {
	c, _ := newTestCanvas(t, 80, 24)

	if evs := c.translate(tcell.NewEventFocus(true), nil); len(evs) != 0 {
		t.Errorf("focus gain should not produce events, got %+v", evs)
	}
	evs := c.translate(tcell.NewEventFocus(false), nil)
	if len(evs) != 1 || evs[0].Kind != input.Blur {
		t.Errorf("expected blur on focus loss, got %+v", evs)
	}

	evs = c.translate(tcell.NewEventResize(100, 30), nil)
	if len(evs) != 1 || evs[0].Kind != input.Resize || evs[0].Width != 800 || evs[0].Height != 480 {
		t.Errorf("expected an 800x480 resize, got %+v", evs)
	}
}

func TestCanvasDrawRendersFrame(t *testing.T) {
	c, screen := newTestCanvas(t, 80, 24)
	cfg := loadTestConfig(t)
	fabric := fabricFromConfig(cfg)

	model := field.NewModel(field.SettingsFromConfig(cfg), rand.New(rand.NewSource(1)))
	model.Subscribe(c)
	model.AddPersistentMass(field.Vec2{X: 10, Y: 5})
	for i := 0; i < 30; i++ {
		model.Advance()
	}

	lattice := mesh.New(c.Profile().Cols, c.Profile().Rows, fabric, 0.12)
	stars := starfield.New(c.Profile().Stars, fabric, starfield.Settings{
		Spread: 1.35, ZMin: 18, ZMax: 42, OffsetRate: 0.16, TwinkleAmplitude: 0.12, TwinkleSpeed: 0.001,
	}, rand.New(rand.NewSource(2)))
	sources := model.Sources()
	lattice.Tick(sources, field.PotentialParams{Epsilon: 22, Threshold: 0.02})

	c.Draw(&loop.Frame{
		Time:     100,
		Fabric:   fabric,
		Sources:  sources,
		Mesh:     lattice,
		Stars:    stars,
		Viewport: c.Viewport(),
	})

	cells, w, h := screen.GetContents()
	if w != 80 || h != 24 {
		t.Fatalf("unexpected screen size %dx%d", w, h)
	}
	braille := 0
	for _, cell := range cells {
		if len(cell.Runes) > 0 && cell.Runes[0] > brailleBlank && cell.Runes[0] <= brailleBlank+0xff {
			braille++
		}
	}
	if braille < 100 {
		t.Errorf("expected the fabric to cover the screen with braille, got %d cells", braille)
	}

	// The mass cell carries the mass ink
	sx, sy, _ := c.proj.Project(10, 5, massPlaneZ)
	_, ink, _ := c.raster.Cell(int(sx)/cellW, int(sy)/cellH)
	if ink != InkMass {
		t.Errorf("expected mass ink at the mass position, got %d", ink)
	}
}

func TestCanvasReleasesEvictedMass(t *testing.T) {
	c, _ := newTestCanvas(t, 80, 24)
	cfg := loadTestConfig(t)
	model := field.NewModel(field.SettingsFromConfig(cfg), rand.New(rand.NewSource(1)))
	model.Subscribe(c)

	// Cursor replay plus capacity persistent masses
	for i := 0; i < cfg.Field.Capacity+3; i++ {
		model.AddPersistentMass(field.Vec2{X: float32(i), Y: 0})
	}
	if got := c.arena.Len(); got != cfg.Field.Capacity+1 {
		t.Errorf("expected %d live visuals, got %d", cfg.Field.Capacity+1, got)
	}
}

func screenText(screen tcell.SimulationScreen) string {
	cells, w, h := screen.GetContents()
	var b strings.Builder
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			if r := cells[row*w+col].Runes; len(r) > 0 {
				b.WriteRune(r[0])
			} else {
				b.WriteRune(' ')
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func TestCanvasStatsOverlayToggle(t *testing.T) {
	c, screen := newTestCanvas(t, 80, 24)
	frame := &loop.Frame{Seq: 1, Viewport: c.Viewport()}

	c.Draw(frame)
	if strings.Contains(screenText(screen), "masses") {
		t.Fatal("expected the overlay hidden by default")
	}

	if evs := c.translate(tcell.NewEventKey(tcell.KeyRune, 'h', tcell.ModNone), nil); len(evs) != 0 {
		t.Errorf("expected the toggle to produce no events, got %+v", evs)
	}
	for i := 0; i < 3; i++ {
		frame.Seq++
		c.Draw(frame)
	}
	text := screenText(screen)
	if !strings.Contains(text, "masses 0/8") {
		t.Errorf("expected the mass count in the overlay, got:\n%s", text)
	}
	if !strings.Contains(text, "frame ms") {
		t.Errorf("expected the frame time graph caption, got:\n%s", text)
	}
}

func TestCanvasQuitKeys(t *testing.T) {
	c, _ := newTestCanvas(t, 80, 24)
	keys := []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
	}
	for _, k := range keys {
		evs := c.translate(k, nil)
		if len(evs) != 1 || evs[0].Kind != input.Quit {
			t.Errorf("expected quit for %v, got %+v", k.Name(), evs)
		}
	}
}

func TestCanvasCloseStopsEventPump(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c, _ := newTestCanvas(t, 80, 24)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Idempotent
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestStarDotRadiusGrowsWithDepth(t *testing.T) {
	if r := starDotRadius(0.4); r != 0 {
		t.Errorf("expected a far star to be a single dot, got radius %d", r)
	}
	if r := starDotRadius(1.45); r != 1 {
		t.Errorf("expected a near star to have radius 1, got %d", r)
	}

	// Depth range of the canvas projection over the star footprint
	proj := camera.NewAffine(field.Fabric{Width: 182, Height: 124, Margin: 1.4}, 1280, 720)
	_, _, far := proj.Project(0, -84, 0)
	_, _, near := proj.Project(0, 84, 0)
	if starDotRadius(near) <= starDotRadius(far) {
		t.Errorf("expected the nearest stars to draw larger: far %f near %f", far, near)
	}

	prev := 0
	for d := float32(0.3); d <= 1.5; d += 0.05 {
		r := starDotRadius(d)
		if r < prev {
			t.Errorf("radius shrank at depth %f", d)
		}
		prev = r
	}
}
