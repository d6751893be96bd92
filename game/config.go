package game

import (
	"github.com/pthm-cable/spacetime/config"
	"github.com/pthm-cable/spacetime/field"
	"github.com/pthm-cable/spacetime/starfield"
)

// fabricFromConfig returns the field domain.
func fabricFromConfig(cfg *config.Config) field.Fabric {
	return field.Fabric{
		Width:  float32(cfg.Fabric.Width),
		Height: float32(cfg.Fabric.Height),
		Margin: cfg.Derived.Margin32,
	}
}

func starSettings(cfg *config.Config) starfield.Settings {
	return starfield.Settings{
		Spread:           float32(cfg.Stars.Spread),
		ZMin:             float32(cfg.Stars.ZMin),
		ZMax:             float32(cfg.Stars.ZMax),
		OffsetRate:       float32(cfg.Stars.OffsetRate),
		TwinkleAmplitude: float32(cfg.Stars.TwinkleAmplitude),
		TwinkleSpeed:     float32(cfg.Stars.TwinkleSpeed),
	}
}

func potentialParams(cfg *config.Config) field.PotentialParams {
	return field.PotentialParams{
		Epsilon:   float32(cfg.Field.Epsilon),
		Threshold: float32(cfg.Field.MeshThreshold),
	}
}

// lensParams combines the global softening terms with the backend profile.
func lensParams(cfg *config.Config, profile config.Profile) field.LensParams {
	return field.LensParams{
		Strength:       profile.Lensing,
		Shear:          profile.Shear,
		Softening:      float32(cfg.Field.LensSoftening),
		ShearSoftening: float32(cfg.Field.ShearSoftening),
		Threshold:      float32(cfg.Field.LensThreshold),
	}
}
