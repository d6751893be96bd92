// Package config provides configuration loading and access for the visualization.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all visualization configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Fabric    FabricConfig    `yaml:"fabric"`
	Field     FieldConfig     `yaml:"field"`
	Mesh      MeshConfig      `yaml:"mesh"`
	Stars     StarsConfig     `yaml:"stars"`
	Motion    MotionConfig    `yaml:"motion"`
	Camera    CameraConfig    `yaml:"camera"`
	Scene     ProfileConfig   `yaml:"scene"`
	Canvas    ProfileConfig   `yaml:"canvas"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the windowed backend.
type ScreenConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	TargetFPS     int     `yaml:"target_fps"`
	Title         string  `yaml:"title"`
	MaxPixelRatio float64 `yaml:"max_pixel_ratio"` // Upper bound on device pixel ratio
}

// FabricConfig describes the rectangular field domain centered on the origin.
type FabricConfig struct {
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	Margin           float64 `yaml:"margin"`            // Inset from the half-extents when clamping pointer positions
	NarrowBreakpoint float64 `yaml:"narrow_breakpoint"` // Viewport widths below this select the narrow profile
}

// FieldConfig holds mass source parameters.
type FieldConfig struct {
	Epsilon                float64 `yaml:"epsilon"`                  // Potential softening term
	CursorStrength         float64 `yaml:"cursor_strength"`          // Target strength of an active cursor mass
	PersistentMinStrength  float64 `yaml:"persistent_min_strength"`  // Lower bound of a clicked mass strength
	PersistentMaxStrength  float64 `yaml:"persistent_max_strength"`  // Upper bound of a clicked mass strength
	Capacity               int     `yaml:"capacity"`                 // Max persistent masses (FIFO eviction)
	CursorStrengthRate     float64 `yaml:"cursor_strength_rate"`     // Per-frame blend toward cursor target strength
	PersistentStrengthRate float64 `yaml:"persistent_strength_rate"` // Per-frame blend toward persistent target strength
	CursorPositionRate     float64 `yaml:"cursor_position_rate"`     // Per-frame blend toward cursor target position
	MeshThreshold          float64 `yaml:"mesh_threshold"`           // Strengths at or below this skip the potential sum
	LensThreshold          float64 `yaml:"lens_threshold"`           // Strengths at or below this skip the lensing sum
	LensSoftening          float64 `yaml:"lens_softening"`           // Added to r^2 in the lensing function
	ShearSoftening         float64 `yaml:"shear_softening"`          // Added to r^2 in the shear denominator
}

// MeshConfig holds fabric mesh parameters.
type MeshConfig struct {
	RecoveryRate float64 `yaml:"recovery_rate"` // Per-frame blend toward the target displacement
}

// StarsConfig holds background point parameters.
type StarsConfig struct {
	OffsetRate       float64 `yaml:"offset_rate"`       // Per-frame blend toward the lensing offset
	Spread           float64 `yaml:"spread"`            // Scatter footprint as a multiple of the fabric size
	ZMin             float64 `yaml:"z_min"`             // Lowest base depth
	ZMax             float64 `yaml:"z_max"`             // Highest base depth
	TwinkleAmplitude float64 `yaml:"twinkle_amplitude"` // Depth wobble amplitude
	TwinkleSpeed     float64 `yaml:"twinkle_speed"`     // Depth wobble angular speed per millisecond
}

// MotionConfig holds frame pacing parameters.
type MotionConfig struct {
	Reduced       bool    `yaml:"reduced"`         // Prefer reduced motion (read once at startup)
	MinIntervalMS float64 `yaml:"min_interval_ms"` // Minimum spacing of processed frames under reduced motion
}

// CameraConfig holds the perspective camera used by the scene backend.
type CameraConfig struct {
	Position [3]float64 `yaml:"position"`
	Target   [3]float64 `yaml:"target"`
	Up       [3]float64 `yaml:"up"`
	FovY     float64    `yaml:"fov_y"`   // Vertical field of view in degrees
	PlaneZ   float64    `yaml:"plane_z"` // Depth of the pointer interaction plane
}

// ProfileConfig holds backend-specific resolution and lensing constants.
type ProfileConfig struct {
	Cols           int     `yaml:"cols"`
	Rows           int     `yaml:"rows"`
	NarrowCols     int     `yaml:"narrow_cols"`
	NarrowRows     int     `yaml:"narrow_rows"`
	Stars          int     `yaml:"stars"`
	NarrowStars    int     `yaml:"narrow_stars"`
	Lensing        float64 `yaml:"lensing"`
	NarrowLensing  float64 `yaml:"narrow_lensing"`
	Shear          float64 `yaml:"shear"`
	StarSize       float64 `yaml:"star_size"`
	NarrowStarSize float64 `yaml:"narrow_star_size"`
	FrameMS        float64 `yaml:"frame_ms"` // Frame period when the host has no refresh pacing (0 = host paced)
}

// TelemetryConfig holds perf telemetry parameters.
type TelemetryConfig struct {
	PerfWindow        int `yaml:"perf_window"`         // Frames averaged by the perf collector
	LogIntervalFrames int `yaml:"log_interval_frames"` // Frames between perf log lines (0 = off)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Margin32 float32 // Fabric.Margin as float32
}

// Profile is a ProfileConfig resolved against a viewport width.
type Profile struct {
	Cols, Rows int
	Stars      int
	Lensing    float32
	Shear      float32
	StarSize   float32
	FrameMS    float64
}

// Resolve picks the normal or narrow values of the profile for the given viewport width.
func (p ProfileConfig) Resolve(viewportWidth, breakpoint float64) Profile {
	out := Profile{
		Cols:     p.Cols,
		Rows:     p.Rows,
		Stars:    p.Stars,
		Lensing:  float32(p.Lensing),
		Shear:    float32(p.Shear),
		StarSize: float32(p.StarSize),
		FrameMS:  p.FrameMS,
	}
	if viewportWidth < breakpoint {
		out.Cols = orInt(p.NarrowCols, p.Cols)
		out.Rows = orInt(p.NarrowRows, p.Rows)
		out.Stars = orInt(p.NarrowStars, p.Stars)
		out.Lensing = float32(orFloat(p.NarrowLensing, p.Lensing))
		out.StarSize = float32(orFloat(p.NarrowStarSize, p.StarSize))
	}
	return out
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func orFloat(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values that would break the smoothing or capacity invariants.
func (c *Config) validate() error {
	rates := map[string]float64{
		"field.cursor_strength_rate":     c.Field.CursorStrengthRate,
		"field.persistent_strength_rate": c.Field.PersistentStrengthRate,
		"field.cursor_position_rate":     c.Field.CursorPositionRate,
		"mesh.recovery_rate":             c.Mesh.RecoveryRate,
		"stars.offset_rate":              c.Stars.OffsetRate,
	}
	for name, r := range rates {
		if r <= 0 || r >= 1 {
			return fmt.Errorf("%s must be in (0,1), got %g", name, r)
		}
	}
	if c.Field.Capacity < 1 {
		return fmt.Errorf("field.capacity must be positive, got %d", c.Field.Capacity)
	}
	if c.Field.PersistentMaxStrength < c.Field.PersistentMinStrength {
		return fmt.Errorf("field.persistent_max_strength %g below min %g",
			c.Field.PersistentMaxStrength, c.Field.PersistentMinStrength)
	}
	if c.Fabric.Width <= 2*c.Fabric.Margin || c.Fabric.Height <= 2*c.Fabric.Margin {
		return fmt.Errorf("fabric %gx%g too small for margin %g", c.Fabric.Width, c.Fabric.Height, c.Fabric.Margin)
	}
	for name, p := range map[string]ProfileConfig{"scene": c.Scene, "canvas": c.Canvas} {
		if p.Cols < 1 || p.Rows < 1 {
			return fmt.Errorf("%s lattice must have at least one cell, got %dx%d", name, p.Cols, p.Rows)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Margin32 = float32(c.Fabric.Margin)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
