package renderer

import "testing"

func TestRasterSetMapsSubPixels(t *testing.T) {
	r := NewRaster(2, 1)

	r.Set(0, 0, InkFabric, 0.5) // dot 1
	r.Set(1, 3, InkFabric, 0.5) // dot 8
	r.Set(2, 1, InkStar, 0.9)   // second cell, dot 2

	got, ink, glow := r.Cell(0, 0)
	if want := rune(brailleBlank | 0x1 | 0x80); got != want {
		t.Errorf("cell 0: expected %U, got %U", want, got)
	}
	if ink != InkFabric || glow != 0.5 {
		t.Errorf("cell 0: unexpected ink %d glow %f", ink, glow)
	}

	got, ink, _ = r.Cell(1, 0)
	if want := rune(brailleBlank | 0x2); got != want {
		t.Errorf("cell 1: expected %U, got %U", want, got)
	}
	if ink != InkStar {
		t.Errorf("cell 1: expected star ink, got %d", ink)
	}
}

func TestRasterIgnoresOutOfRange(t *testing.T) {
	r := NewRaster(3, 2)
	r.Set(-1, 0, InkMass, 1)
	r.Set(0, -1, InkMass, 1)
	r.Set(6, 0, InkMass, 1)
	r.Set(0, 8, InkMass, 1)
	// Far off lines are rejected without walking them
	r.Line(-1000, -5, -10, -1, InkMass, 1)

	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			if c, ink, _ := r.Cell(col, row); c != brailleBlank || ink != InkNone {
				t.Fatalf("cell (%d,%d) touched by an out of range draw", col, row)
			}
		}
	}
}

func TestRasterInkPriority(t *testing.T) {
	r := NewRaster(1, 1)
	r.Set(0, 0, InkMass, 0.3)
	r.Set(1, 1, InkFabric, 0.8)

	_, ink, glow := r.Cell(0, 0)
	if ink != InkMass {
		t.Errorf("expected mass ink to win, got %d", ink)
	}
	if glow != 0.8 {
		t.Errorf("expected the brightest glow, got %f", glow)
	}
}

func TestRasterLineEndpoints(t *testing.T) {
	r := NewRaster(10, 5)
	r.Line(1, 1, 17, 13, InkFabric, 1)

	// Both endpoints are lit
	for _, p := range [][2]int{{1, 1}, {17, 13}} {
		c, _, _ := r.Cell(p[0]/2, p[1]/4)
		if c&pixelMap[p[1]%4][p[0]%2] == 0 {
			t.Errorf("endpoint %v not lit", p)
		}
	}
}

func TestRasterCircleSymmetry(t *testing.T) {
	r := NewRaster(20, 10)
	r.Circle(20, 20, 6, InkMass, 1)

	lit := func(x, y int) bool {
		c, _, _ := r.Cell(x/2, y/4)
		return c&pixelMap[y%4][x%2] != 0
	}
	for _, p := range [][2]int{{26, 20}, {14, 20}, {20, 26}, {20, 14}} {
		if !lit(p[0], p[1]) {
			t.Errorf("expected (%d,%d) on the circle", p[0], p[1])
		}
	}
	if lit(20, 20) {
		t.Error("circle outline must not fill the center")
	}
}

func TestRasterClearAndResize(t *testing.T) {
	r := NewRaster(4, 4)
	r.Disc(4, 8, 2, InkStar, 1)
	r.Clear()
	if c, ink, glow := r.Cell(2, 2); c != brailleBlank || ink != InkNone || glow != 0 {
		t.Error("expected a blank cell after Clear")
	}

	r.Resize(7, 3)
	if r.Width() != 14 || r.Height() != 12 {
		t.Errorf("expected 14x12 sub-pixels, got %dx%d", r.Width(), r.Height())
	}
	if len(r.String()) != 3*(7*3+1) {
		t.Errorf("unexpected string length %d", len(r.String()))
	}
}
