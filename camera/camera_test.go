package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spacetime/field"
)

var testFabric = field.Fabric{Width: 182, Height: 124, Margin: 1.4}

func newTestPerspective() *Perspective {
	return NewPerspective(
		r3.Vec{X: 0, Y: -58, Z: 58},
		r3.Vec{X: 0, Y: 0, Z: -2},
		r3.Vec{X: 0, Y: 1, Z: 0},
		48, 0, testFabric, 1280, 720,
	)
}

func TestPerspectiveCenterRayHitsPlane(t *testing.T) {
	cam := newTestPerspective()

	hit, ok := cam.Intersect(640, 360)
	if !ok {
		t.Fatal("expected the center ray to hit the plane")
	}
	if math.Abs(hit.Z) > 1e-9 {
		t.Errorf("expected hit on z=0, got z=%f", hit.Z)
	}
	if math.Abs(hit.X) > 1e-9 {
		t.Errorf("expected center ray to stay on x=0, got x=%f", hit.X)
	}
	// Looking at (0,0,-2) from (0,-58,58): the ray crosses z=0 slightly before the target
	if hit.Y >= 0 || hit.Y < -5 {
		t.Errorf("expected hit just below the origin, got y=%f", hit.Y)
	}
}

func TestPerspectiveProjectRoundtrip(t *testing.T) {
	cam := newTestPerspective()

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		hit, ok := cam.Intersect(tc.sx, tc.sy)
		if !ok {
			t.Fatalf("expected (%f,%f) to hit the plane", tc.sx, tc.sy)
		}
		sx, sy, ok := cam.Project(hit)
		if !ok {
			t.Fatalf("expected hit point to be in front of the camera")
		}
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, hit.X, hit.Y, hit.Z, sx, sy)
		}
	}
}

func TestPerspectiveParallelRayFails(t *testing.T) {
	// Camera looking horizontally: the center ray never meets z=0
	cam := NewPerspective(
		r3.Vec{X: 0, Y: -50, Z: 10},
		r3.Vec{X: 0, Y: 0, Z: 10},
		r3.Vec{X: 0, Y: 0, Z: 1},
		48, 0, testFabric, 800, 600,
	)
	if _, ok := cam.ScreenToField(400, 300); ok {
		t.Error("expected a parallel ray to be unmappable")
	}
	// Rays above the horizon point away from the plane
	if _, ok := cam.ScreenToField(400, 10); ok {
		t.Error("expected a ray pointing away from the plane to be unmappable")
	}
	// Rays below the horizon still map
	if _, ok := cam.ScreenToField(400, 590); !ok {
		t.Error("expected a downward ray to map")
	}
}

func TestScreenToFieldStaysClamped(t *testing.T) {
	hw := testFabric.HalfWidth() - testFabric.Margin
	hh := testFabric.HalfHeight() - testFabric.Margin

	viewports := []struct{ w, h float32 }{
		{1280, 720},
		{640, 960},
		{320, 200},
	}

	for _, vp := range viewports {
		mappers := map[string]Mapper{
			"perspective": newTestPerspective(),
			"affine":      NewAffine(testFabric, 1280, 720),
		}
		for name, m := range mappers {
			m.Resize(vp.w, vp.h)
			for sx := float32(0); sx <= vp.w; sx += vp.w / 16 {
				for sy := float32(0); sy <= vp.h; sy += vp.h / 16 {
					p, ok := m.ScreenToField(sx, sy)
					if !ok {
						continue
					}
					if p.X < -hw || p.X > hw || p.Y < -hh || p.Y > hh {
						t.Errorf("%s %vx%v: (%f,%f) mapped outside clamp to (%f,%f)",
							name, vp.w, vp.h, sx, sy, p.X, p.Y)
					}
				}
			}
		}
	}
}

func TestAffineScreenToField(t *testing.T) {
	a := NewAffine(testFabric, 1000, 500)

	testCases := []struct {
		sx, sy float32
		want   field.Vec2
	}{
		{500, 250, field.Vec2{X: 0, Y: 0}},
		{750, 125, field.Vec2{X: 45.5, Y: 31}},
		{0, 0, field.Vec2{X: -89.6, Y: 60.6}},      // clamped corner
		{1000, 500, field.Vec2{X: 89.6, Y: -60.6}}, // clamped corner
	}

	for _, tc := range testCases {
		p, ok := a.ScreenToField(tc.sx, tc.sy)
		if !ok {
			t.Fatalf("affine mapping should always succeed")
		}
		if math.Abs(float64(p.X-tc.want.X)) > 1e-3 || math.Abs(float64(p.Y-tc.want.Y)) > 1e-3 {
			t.Errorf("(%f,%f): expected %+v, got %+v", tc.sx, tc.sy, tc.want, p)
		}
	}
}

func TestAffineProjectDepth(t *testing.T) {
	a := NewAffine(testFabric, 1280, 720)

	// On the horizon line depth is exactly one
	_, _, depth := a.Project(0, 58, 0)
	if math.Abs(float64(depth-1)) > 1e-6 {
		t.Errorf("expected depth 1 on the horizon, got %f", depth)
	}

	// Nearer rows (lower y) shrink, higher z lifts the point on screen
	_, syFlat, dNear := a.Project(0, -40, 0)
	_, syLifted, _ := a.Project(0, -40, 20)
	if dNear >= 1 {
		t.Errorf("expected near rows to have depth < 1, got %f", dNear)
	}
	if syLifted >= syFlat {
		t.Errorf("expected positive z to move the point up: flat %f lifted %f", syFlat, syLifted)
	}

	sx, sy, _ := a.Project(0, 0, 0)
	if sx != 640 {
		t.Errorf("expected x=0 to project to the horizontal center, got %f", sx)
	}
	if sy != 360 {
		t.Errorf("expected the origin to project to the vertical center, got %f", sy)
	}
}

func TestResizeIgnoresDegenerateViewport(t *testing.T) {
	cam := newTestPerspective()
	cam.Resize(0, 400)
	if cam.ViewportW != 1280 || cam.ViewportH != 720 {
		t.Errorf("expected viewport unchanged, got %fx%f", cam.ViewportW, cam.ViewportH)
	}
	cam.Resize(800, 400)
	if cam.Aspect() != 2 {
		t.Errorf("expected aspect 2, got %f", cam.Aspect())
	}
}
