package renderer

import "strings"

// Braille patterns: 2x4 dots per cell
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Ink classifies what was drawn into a cell. Higher values win.
type Ink uint8

const (
	InkNone Ink = iota
	InkFabric
	InkStar
	InkMass
)

// Raster is a braille sub-pixel canvas. Its size in sub-pixels is
// (Cols*2) x (Rows*4).
type Raster struct {
	Cols, Rows int
	cells      []rune
	ink        []Ink
	glow       []float32 // Brightest value drawn into each cell
}

// NewRaster creates a blank raster of cols x rows terminal cells.
func NewRaster(cols, rows int) *Raster {
	r := &Raster{}
	r.Resize(cols, rows)
	return r
}

// Resize reallocates the raster and clears it.
func (r *Raster) Resize(cols, rows int) {
	r.Cols = max(cols, 0)
	r.Rows = max(rows, 0)
	n := r.Cols * r.Rows
	r.cells = make([]rune, n)
	r.ink = make([]Ink, n)
	r.glow = make([]float32, n)
	r.Clear()
}

// Width returns the width in sub-pixels.
func (r *Raster) Width() int { return r.Cols * 2 }

// Height returns the height in sub-pixels.
func (r *Raster) Height() int { return r.Rows * 4 }

// Clear resets every cell to a blank braille character.
func (r *Raster) Clear() {
	for i := range r.cells {
		r.cells[i] = brailleBlank
		r.ink[i] = InkNone
		r.glow[i] = 0
	}
}

// Set lights the sub-pixel (x, y). Out of range points are ignored.
func (r *Raster) Set(x, y int, ink Ink, glow float32) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= r.Cols || row >= r.Rows {
		return
	}

	i := row*r.Cols + col
	r.cells[i] |= pixelMap[y%4][x%2]
	if ink > r.ink[i] {
		r.ink[i] = ink
	}
	if glow > r.glow[i] {
		r.glow[i] = glow
	}
}

// Line draws a line using Bresenham's algorithm.
func (r *Raster) Line(x0, y0, x1, y1 int, ink Ink, glow float32) {
	// Both ends off the same edge: nothing visible
	w, h := r.Width(), r.Height()
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) || (x0 >= w && x1 >= w) || (y0 >= h && y1 >= h) {
		return
	}

	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		r.Set(x0, y0, ink, glow)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Circle draws a circle outline using the midpoint algorithm.
func (r *Raster) Circle(cx, cy, radius int, ink Ink, glow float32) {
	if radius <= 0 {
		r.Set(cx, cy, ink, glow)
		return
	}
	x, y := radius, 0
	err := 1 - radius
	for x >= y {
		r.Set(cx+x, cy+y, ink, glow)
		r.Set(cx+y, cy+x, ink, glow)
		r.Set(cx-y, cy+x, ink, glow)
		r.Set(cx-x, cy+y, ink, glow)
		r.Set(cx-x, cy-y, ink, glow)
		r.Set(cx-y, cy-x, ink, glow)
		r.Set(cx+y, cy-x, ink, glow)
		r.Set(cx+x, cy-y, ink, glow)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// Disc fills a circle.
func (r *Raster) Disc(cx, cy, radius int, ink Ink, glow float32) {
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				r.Set(cx+dx, cy+dy, ink, glow)
			}
		}
	}
}

// Cell returns the braille rune, winning ink and brightness of a cell.
func (r *Raster) Cell(col, row int) (rune, Ink, float32) {
	if col < 0 || row < 0 || col >= r.Cols || row >= r.Rows {
		return brailleBlank, InkNone, 0
	}
	i := row*r.Cols + col
	return r.cells[i], r.ink[i], r.glow[i]
}

func (r *Raster) String() string {
	var b strings.Builder
	for row := 0; row < r.Rows; row++ {
		b.WriteString(string(r.cells[row*r.Cols : (row+1)*r.Cols]))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
