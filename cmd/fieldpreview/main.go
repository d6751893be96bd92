// Field preview tool - interactive heatmap of the potential and lensing
// functions with sliders for their constants.
//
// Usage: go run ./cmd/fieldpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/spacetime/components"
	"github.com/pthm-cable/spacetime/config"
	"github.com/pthm-cable/spacetime/field"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewW     = 640
	previewH     = 436 // Keeps the fabric aspect ratio
	panelWidth   = windowWidth - previewW - 30
	gridW        = 182
	gridH        = 124

	grabRadius = 6 // Fabric units
)

// Mode selects what the heatmap shows.
type Mode int

const (
	ModePotential Mode = iota
	ModeLensing
)

// Params holds the tunable constants.
type Params struct {
	Epsilon        float32
	Lensing        float32
	Shear          float32
	LensSoftening  float32
	ShearSoftening float32
	Strength       float32 // Strength of newly placed test masses
}

func paramsFromConfig(cfg *config.Config) Params {
	return Params{
		Epsilon:        float32(cfg.Field.Epsilon),
		Lensing:        float32(cfg.Scene.Lensing),
		Shear:          float32(cfg.Scene.Shear),
		LensSoftening:  float32(cfg.Field.LensSoftening),
		ShearSoftening: float32(cfg.Field.ShearSoftening),
		Strength:       float32(cfg.Field.PersistentMaxStrength),
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	fabric := field.Fabric{
		Width:  float32(cfg.Fabric.Width),
		Height: float32(cfg.Fabric.Height),
		Margin: cfg.Derived.Margin32,
	}
	defaults := paramsFromConfig(cfg)
	params := defaults
	mode := ModePotential
	sources := []field.Source{
		{Role: components.RolePersistent, Pos: field.Vec2{X: -30, Y: 10}, Strength: 24},
		{Role: components.RolePersistent, Pos: field.Vec2{X: 35, Y: -15}, Strength: 18},
	}

	rl.InitWindow(windowWidth, windowHeight, "Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	grid := make([]float32, gridW*gridH)
	img := rl.GenImageColor(gridW, gridH, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)
	rl.SetTextureFilter(texture, rl.FilterBilinear)

	preview := rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH}
	dragging := -1
	needsRegen := true

	for !rl.WindowShouldClose() {
		// Test mass editing: drag the nearest mass, or place a new one
		mouse := rl.GetMousePosition()
		if rl.CheckCollisionPointRec(mouse, preview) {
			p := screenToFabric(mouse, preview, fabric)
			if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
				dragging = nearest(sources, p, grabRadius)
				if dragging < 0 {
					sources = append(sources, field.Source{Role: components.RolePersistent, Pos: p, Strength: params.Strength})
					needsRegen = true
				}
			}
			if dragging >= 0 && rl.IsMouseButtonDown(rl.MouseButtonLeft) {
				sources[dragging].Pos = p
				needsRegen = true
			}
			if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
				if i := nearest(sources, p, grabRadius); i >= 0 {
					sources = append(sources[:i], sources[i+1:]...)
					needsRegen = true
				}
			}
		}
		if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
			dragging = -1
		}

		if needsRegen {
			lo, hi := sampleGrid(grid, gridW, gridH, fabric, sources, params, mode)
			updateTexture(texture, grid, lo, hi)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridW, Height: gridH},
			preview,
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLinesEx(preview, 1, rl.DarkGray)
		for _, s := range sources {
			c := fabricToScreen(s.Pos, preview, fabric)
			rl.DrawCircleLines(int32(c.X), int32(c.Y), 4+field.Sqrt32(s.Strength), rl.White)
		}

		statsY := int32(previewH + 25)
		rl.DrawText(fmt.Sprintf("Masses: %d   Mode: %s", len(sources), modeName(mode)), 15, statsY, 16, rl.DarkGray)
		rl.DrawText("Left: place / drag   Right: remove", 15, statsY+20, 14, rl.Gray)

		// Control panel
		panelX := float32(previewW + 20)
		panelY := float32(10)
		rl.DrawText("Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		slider := func(label, format string, value *float32, lo, hi float32) {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprintf(format, lo), fmt.Sprintf(format, hi),
				*value, lo, hi,
			)
			rl.DrawText(fmt.Sprintf(format, *value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if v != *value {
				*value = v
				needsRegen = true
			}
			panelY += 35
		}

		slider("Epsilon (potential softening)", "%.1f", &params.Epsilon, 1, 80)
		slider("Lensing strength", "%.1f", &params.Lensing, 0, 60)
		slider("Shear k", "%.3f", &params.Shear, 0, 0.1)
		slider("Lens softening", "%.0f", &params.LensSoftening, 1, 200)
		slider("Shear softening", "%.0f", &params.ShearSoftening, 1, 300)
		slider("New mass strength", "%.1f", &params.Strength, 1, 40)

		panelY += 10
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(mode == ModePotential, "Show Lensing", "Show Potential")) {
			mode = 1 - mode
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Clear Masses") {
			sources = sources[:0]
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			needsRegen = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := params.YAML()
		rl.DrawText(yaml, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

// YAML renders the parameters as config overrides.
func (p Params) YAML() string {
	return fmt.Sprintf(`field:
  epsilon: %.1f
  lens_softening: %.0f
  shear_softening: %.0f
scene:
  lensing: %.1f
  shear: %.3f`,
		p.Epsilon, p.LensSoftening, p.ShearSoftening, p.Lensing, p.Shear)
}

func modeName(m Mode) string {
	if m == ModeLensing {
		return "lensing"
	}
	return "potential"
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// sampleGrid evaluates the selected function at every grid cell center over
// the fabric. Row 0 is the top edge (positive y). It returns the value range.
func sampleGrid(grid []float32, w, h int, fabric field.Fabric, sources []field.Source, p Params, mode Mode) (lo, hi float32) {
	potential := field.PotentialParams{Epsilon: p.Epsilon}
	lens := field.LensParams{
		Strength:       p.Lensing,
		Shear:          p.Shear,
		Softening:      p.LensSoftening,
		ShearSoftening: p.ShearSoftening,
	}

	lo, hi = float32(math.Inf(1)), float32(math.Inf(-1))
	for iy := 0; iy < h; iy++ {
		y := fabric.HalfHeight() - (float32(iy)+0.5)/float32(h)*fabric.Height
		for ix := 0; ix < w; ix++ {
			x := (float32(ix)+0.5)/float32(w)*fabric.Width - fabric.HalfWidth()

			var v float32
			if mode == ModeLensing {
				d := field.LensAt(x, y, sources, lens)
				v = field.Sqrt32(d.X*d.X + d.Y*d.Y)
			} else {
				v = field.PotentialAt(x, y, sources, potential)
			}
			grid[iy*w+ix] = v
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	return lo, hi
}

// nearest returns the index of the source closest to p within radius, or -1.
func nearest(sources []field.Source, p field.Vec2, radius float32) int {
	best := -1
	bestD := radius * radius
	for i, s := range sources {
		dx, dy := s.Pos.X-p.X, s.Pos.Y-p.Y
		if d := dx*dx + dy*dy; d <= bestD {
			best, bestD = i, d
		}
	}
	return best
}

func screenToFabric(m rl.Vector2, r rl.Rectangle, fabric field.Fabric) field.Vec2 {
	x := (m.X-r.X)/r.Width*fabric.Width - fabric.HalfWidth()
	y := fabric.HalfHeight() - (m.Y-r.Y)/r.Height*fabric.Height
	return fabric.Clamp(field.Vec2{X: x, Y: y})
}

func fabricToScreen(p field.Vec2, r rl.Rectangle, fabric field.Fabric) rl.Vector2 {
	return rl.Vector2{
		X: r.X + (p.X+fabric.HalfWidth())/fabric.Width*r.Width,
		Y: r.Y + (fabric.HalfHeight()-p.Y)/fabric.Height*r.Height,
	}
}

// updateTexture uploads the grid normalized to [lo, hi] with a blue ramp.
func updateTexture(texture rl.Texture2D, grid []float32, lo, hi float32) {
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	pixels := make([]color.RGBA, len(grid))
	for i, v := range grid {
		pixels[i] = ramp((v - lo) / span)
	}
	rl.UpdateTexture(texture, pixels)
}

// ramp maps [0,1] from deep navy through the fabric blue to white.
func ramp(v float32) color.RGBA {
	v = field.Clamp32(v, 0, 1)
	if v < 0.5 {
		t := v / 0.5
		return color.RGBA{R: uint8(2 + t*15), G: uint8(5 + t*34), B: uint8(12 + t*56), A: 255}
	}
	t := (v - 0.5) / 0.5
	return color.RGBA{R: uint8(17 + t*238), G: uint8(39 + t*216), B: uint8(68 + t*187), A: 255}
}
