package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/spacetime/components"
	"github.com/pthm-cable/spacetime/field"
)

// HUDData holds the values shown by the HUD for one frame.
type HUDData struct {
	Backend     string
	FPS         int32
	Frame       int64
	Reduced     bool
	Capacity    int
	MaxStrength float32 // Bar scale
	Sources     []field.Source
}

// HUD renders the stats panel and the layer toggles.
// It only reads the frame; it never touches masses.
type HUD struct {
	renderer *Renderer
	Layers   Layers

	visible bool
	x, y    int32
	width   int32
	height  int32 // Height of the last drawn panel
}

// NewHUD creates a hidden HUD with every layer visible.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		Layers:   AllLayers(),
		x:        10,
		y:        10,
		width:    260,
	}
}

// ToggleVisible shows or hides the panel.
func (h *HUD) ToggleVisible() {
	h.visible = !h.visible
}

// Visible reports whether the panel is shown.
func (h *HUD) Visible() bool {
	return h.visible
}

// Contains reports whether a screen point lies on the visible panel.
// Pointer presses there belong to the HUD, not to the fabric.
func (h *HUD) Contains(x, y float32) bool {
	if !h.visible {
		return false
	}
	return x >= float32(h.x) && x <= float32(h.x+h.width) &&
		y >= float32(h.y) && y <= float32(h.y+h.height)
}

// Draw renders the HUD in screen space. Call between BeginDrawing and EndDrawing,
// outside 3D mode.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	if !h.visible {
		rl.DrawText("F1: HUD", h.x, int32(rl.GetScreenHeight()-20), r.Theme.FontSize, rl.Gray)
		return
	}

	lineHeight := r.Theme.LineHeight
	padding := r.Theme.Padding
	panelHeight := padding*2 + lineHeight*5 + 30 + int32(len(data.Sources))*(lineHeight+2)
	h.height = panelHeight
	r.DrawPanel(h.x, h.y, h.width, panelHeight)

	x := h.x + padding
	y := h.y + padding
	y = r.DrawSectionHeader(x, y, "Spacetime")

	motion := "full"
	if data.Reduced {
		motion = "reduced"
	}
	y = r.DrawLabelValue(x, y, "Backend", data.Backend)
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d (%s motion)", data.FPS, motion))
	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%d", data.Frame))

	persistent := 0
	for _, s := range data.Sources {
		if s.Role == components.RolePersistent {
			persistent++
		}
	}
	y = r.DrawLabelValue(x, y, "Masses", fmt.Sprintf("%d/%d", persistent, data.Capacity))

	// Layer toggles
	const buttonW, buttonH, gap = 56, 22, 4
	for l := LayerFill; l < layerCount; l++ {
		bx := float32(x + int32(l)*(buttonW+gap))
		label := l.String()
		if !h.Layers.Visible(l) {
			label = "-" + label
		}
		if gui.Button(rl.Rectangle{X: bx, Y: float32(y + 2), Width: buttonW, Height: buttonH}, label) {
			h.Layers.Toggle(l)
		}
	}
	y += 30

	inner := h.width - padding*2
	for i, s := range data.Sources {
		fill := r.Theme.BarPersistent
		label := fmt.Sprintf("Mass %d", i+1)
		if s.Role == components.RoleCursor {
			fill = r.Theme.BarCursor
			label = "Cursor"
		}
		y = r.DrawStrengthBar(x, y, label, s.Strength, s.Target, data.MaxStrength, fill, inner)
	}
}
