// Package ui draws the optional heads-up display of the windowed backend.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarCursor      rl.Color
	BarPersistent  rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 8, G: 14, B: 26, A: 220},
		PanelBorder:    rl.Color{R: 60, G: 86, B: 130, A: 255},
		SectionHeader:  rl.Color{R: 174, G: 199, B: 255, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 30, G: 36, B: 48, A: 255},
		BarCursor:      rl.Color{R: 149, G: 192, B: 255, A: 255},
		BarPersistent:  rl.Color{R: 245, G: 249, B: 255, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     70,
		BarHeight:      10,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
