// Package config handles meshinfo configuration loading and management.
package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshprep/pkg/mesh"
)

// Config holds all pipeline settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Normals NormalsConfig `yaml:"normals"`
	Bounds  BoundsConfig  `yaml:"bounds"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds face emission settings.
type RenderConfig struct {
	UseMaterialTransparency bool `yaml:"use_material_transparency"`
	PreferModelNormals      bool `yaml:"prefer_model_normals"`
	SmoothShading           bool `yaml:"smooth_shading"`
}

// NormalsConfig holds normal computation settings.
type NormalsConfig struct {
	Workers int `yaml:"workers"` // 0 = GOMAXPROCS, 1 = sequential
}

// BoundsConfig holds bounding box settings.
type BoundsConfig struct {
	LegacyCornerTransform bool `yaml:"legacy_corner_transform"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			UseMaterialTransparency: true,
			PreferModelNormals:      false,
			SmoothShading:           true,
		},
		Normals: NormalsConfig{
			Workers: 0,
		},
		Bounds: BoundsConfig{
			LegacyCornerTransform: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects values that cannot be turned into mesh options.
func (c *Config) Validate() error {
	if c.Normals.Workers < 0 {
		return fmt.Errorf("normals.workers must be >= 0, got %d", c.Normals.Workers)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

// MeshOptions converts the config into options for the mesh pipeline.
// log may be nil.
func (c *Config) MeshOptions(log *zap.Logger) mesh.Options {
	return mesh.Options{
		UseMaterialTransparency: c.Render.UseMaterialTransparency,
		PreferModelNormals:      c.Render.PreferModelNormals,
		SmoothShading:           c.Render.SmoothShading,
		Workers:                 c.Normals.Workers,
		LegacyBoundsTransform:   c.Bounds.LegacyCornerTransform,
		Logger:                  log,
	}
}
