// Package mesh simulates the deformable fabric: a fixed lattice of sample
// points whose heights follow the summed potential of the mass sources.
package mesh

import "github.com/pthm-cable/spacetime/field"

// Lattice is a regular grid of (Cols+1) x (Rows+1) vertices spanning the fabric.
// Vertex i sits at column i%(Cols+1), row i/(Cols+1); row 0 is the near
// (negative y) edge. Base positions never change after construction.
type Lattice struct {
	Cols, Rows int
	Fabric     field.Fabric

	BaseX, BaseY []float32
	Displacement []float32 // Smoothed z offset per vertex

	recovery float32
}

// New builds a lattice with the given cell counts. recovery is the per-tick
// blend factor toward the target displacement.
func New(cols, rows int, fabric field.Fabric, recovery float32) *Lattice {
	n := (cols + 1) * (rows + 1)
	l := &Lattice{
		Cols:         cols,
		Rows:         rows,
		Fabric:       fabric,
		BaseX:        make([]float32, n),
		BaseY:        make([]float32, n),
		Displacement: make([]float32, n),
		recovery:     recovery,
	}

	stride := cols + 1
	for iy := 0; iy <= rows; iy++ {
		y := (float32(iy)/float32(rows) - 0.5) * fabric.Height
		for ix := 0; ix <= cols; ix++ {
			i := iy*stride + ix
			l.BaseX[i] = (float32(ix)/float32(cols) - 0.5) * fabric.Width
			l.BaseY[i] = y
		}
	}
	return l
}

// Len returns the vertex count.
func (l *Lattice) Len() int {
	return len(l.Displacement)
}

// Index returns the vertex index of column ix, row iy.
func (l *Lattice) Index(ix, iy int) int {
	return iy*(l.Cols+1) + ix
}

// Tick recomputes each vertex target from the sources and blends the
// displacement toward it.
func (l *Lattice) Tick(sources []field.Source, p field.PotentialParams) {
	for i := range l.Displacement {
		target := field.PotentialAt(l.BaseX[i], l.BaseY[i], sources, p)
		l.Displacement[i] += (target - l.Displacement[i]) * l.recovery
	}
}

// Vertex returns the displaced position of vertex i.
func (l *Lattice) Vertex(i int) (x, y, z float32) {
	return l.BaseX[i], l.BaseY[i], l.Displacement[i]
}

// MaxDepth returns the largest absolute displacement, useful for shading.
func (l *Lattice) MaxDepth() float32 {
	var m float32
	for _, d := range l.Displacement {
		if a := field.Abs32(d); a > m {
			m = a
		}
	}
	return m
}
