package main

import (
	"testing"

	"github.com/pthm-cable/spacetime/components"
	"github.com/pthm-cable/spacetime/field"
)

var previewFabric = field.Fabric{Width: 182, Height: 124, Margin: 1.4}

func TestSampleGridPotentialDeepestAtMass(t *testing.T) {
	const w, h = 91, 62
	grid := make([]float32, w*h)
	sources := []field.Source{{Role: components.RolePersistent, Pos: field.Vec2{X: 0, Y: 0}, Strength: 20}}
	p := Params{Epsilon: 22, Lensing: 34, Shear: 0.025, LensSoftening: 48, ShearSoftening: 120}

	lo, hi := sampleGrid(grid, w, h, previewFabric, sources, p, ModePotential)
	if lo >= hi {
		t.Fatalf("expected a value range, got [%f, %f]", lo, hi)
	}

	minIdx := 0
	for i, v := range grid {
		if v < grid[minIdx] {
			minIdx = i
		}
	}
	ix, iy := minIdx%w, minIdx/w
	if ix < w/2-1 || ix > w/2+1 || iy < h/2-1 || iy > h/2+1 {
		t.Errorf("expected the deepest cell near the center, got (%d,%d)", ix, iy)
	}
}

func TestSampleGridEmpty(t *testing.T) {
	grid := make([]float32, 16)
	lo, hi := sampleGrid(grid, 4, 4, previewFabric, nil, Params{Epsilon: 22}, ModeLensing)
	if lo != 0 || hi != 0 {
		t.Errorf("expected a flat field without masses, got [%f, %f]", lo, hi)
	}
}

func TestNearest(t *testing.T) {
	sources := []field.Source{
		{Pos: field.Vec2{X: 0, Y: 0}},
		{Pos: field.Vec2{X: 10, Y: 0}},
	}
	testCases := []struct {
		p    field.Vec2
		want int
	}{
		{field.Vec2{X: 1, Y: 1}, 0},
		{field.Vec2{X: 8, Y: 0}, 1},
		{field.Vec2{X: 50, Y: 50}, -1},
	}
	for _, tc := range testCases {
		if got := nearest(sources, tc.p, grabRadius); got != tc.want {
			t.Errorf("nearest(%v): expected %d, got %d", tc.p, tc.want, got)
		}
	}
}
