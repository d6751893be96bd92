package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Field.Capacity != 8 {
		t.Errorf("expected capacity 8, got %d", cfg.Field.Capacity)
	}
	if cfg.Fabric.Width != 182 || cfg.Fabric.Height != 124 {
		t.Errorf("expected fabric 182x124, got %gx%g", cfg.Fabric.Width, cfg.Fabric.Height)
	}
	if cfg.Derived.Margin32 != float32(1.4) {
		t.Errorf("expected derived margin 1.4, got %f", cfg.Derived.Margin32)
	}
}

func TestLoadOverlaysOnlyGivenKeys(t *testing.T) {
	path := writeFile(t, "field:\n  capacity: 3\nmotion:\n  reduced: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Field.Capacity != 3 {
		t.Errorf("expected capacity 3, got %d", cfg.Field.Capacity)
	}
	if !cfg.Motion.Reduced {
		t.Error("expected reduced motion from the overlay")
	}
	if cfg.Field.Epsilon != 22 {
		t.Errorf("expected default epsilon to survive, got %g", cfg.Field.Epsilon)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    string
	}{
		{"rate too high", "mesh:\n  recovery_rate: 1.5\n", "mesh.recovery_rate"},
		{"zero rate", "stars:\n  offset_rate: 0\n", "stars.offset_rate"},
		{"zero capacity", "field:\n  capacity: 0\n", "field.capacity"},
		{"inverted strengths", "field:\n  persistent_min_strength: 40\n", "persistent_max_strength"},
		{"empty lattice", "canvas:\n  cols: -1\n", "canvas lattice"},
	}

	for _, tc := range testCases {
		_, err := Load(writeFile(t, tc.content))
		if err == nil {
			t.Errorf("%s: expected an error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: expected error mentioning %q, got %v", tc.name, tc.want, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestProfileResolve(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	bp := cfg.Fabric.NarrowBreakpoint

	testCases := []struct {
		name       string
		profile    ProfileConfig
		width      float64
		cols, rows int
		stars      int
		lensing    float32
	}{
		{"scene normal", cfg.Scene, 1280, 118, 82, 280, 34},
		{"scene narrow", cfg.Scene, 600, 86, 58, 170, 24},
		{"canvas normal", cfg.Canvas, 1280, 96, 56, 200, 34},
		{"canvas narrow", cfg.Canvas, 600, 72, 42, 130, 34},
		{"at breakpoint", cfg.Scene, bp, 118, 82, 280, 34},
	}

	for _, tc := range testCases {
		p := tc.profile.Resolve(tc.width, bp)
		if p.Cols != tc.cols || p.Rows != tc.rows {
			t.Errorf("%s: expected %dx%d, got %dx%d", tc.name, tc.cols, tc.rows, p.Cols, p.Rows)
		}
		if p.Stars != tc.stars {
			t.Errorf("%s: expected %d stars, got %d", tc.name, tc.stars, p.Stars)
		}
		if p.Lensing != tc.lensing {
			t.Errorf("%s: expected lensing %f, got %f", tc.name, tc.lensing, p.Lensing)
		}
	}
}

func TestResolveFallsBackWithoutNarrowValues(t *testing.T) {
	p := ProfileConfig{Cols: 10, Rows: 8, Stars: 50, Lensing: 12}.Resolve(100, 900)
	if p.Cols != 10 || p.Rows != 8 || p.Stars != 50 || p.Lensing != 12 {
		t.Errorf("expected normal values when narrow ones are unset, got %+v", p)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Field.Capacity = 5
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Field.Capacity != 5 {
		t.Errorf("expected capacity 5 after round trip, got %d", loaded.Field.Capacity)
	}
	if loaded.Camera.Position != cfg.Camera.Position {
		t.Errorf("expected camera position %v, got %v", cfg.Camera.Position, loaded.Camera.Position)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected Cfg to panic before Init")
		}
	}()
	Cfg()
}
