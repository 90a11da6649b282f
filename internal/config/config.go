// Package config handles subdivtool configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/subdiv/pkg/subdiv"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// MaxLevel caps the refinement depth; face count grows by 4x per level.
const MaxLevel = 8

// Config holds all tool settings.
type Config struct {
	Refine  RefineConfig  `yaml:"refine"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// RefineConfig holds the hierarchy construction settings.
type RefineConfig struct {
	Level    int                          `yaml:"level"`
	Boundary subdiv.BoundaryInterpolation `yaml:"boundary"`
	Creases  [][2]int                     `yaml:"creases,omitempty"` // Control edges kept sharp
}

// OutputConfig controls what refine writes.
type OutputConfig struct {
	Limit     bool `yaml:"limit"`     // Push vertices to the limit surface
	Normals   bool `yaml:"normals"`   // Write limit normals (implies limit)
	Precision int  `yaml:"precision"` // Decimals per component, negative for shortest
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Refine: RefineConfig{
			Level:    2,
			Boundary: subdiv.BoundaryEdgeOnly,
		},
		Output: OutputConfig{
			Precision: 6,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks value ranges that YAML decoding cannot express.
func (c *Config) Validate() error {
	if c.Refine.Level < 0 || c.Refine.Level > MaxLevel {
		return fmt.Errorf("%w: refine.level %d outside [0, %d]", ErrInvalidConfig, c.Refine.Level, MaxLevel)
	}
	if _, err := c.Refine.Boundary.MarshalText(); err != nil {
		return fmt.Errorf("%w: refine.boundary: %v", ErrInvalidConfig, err)
	}
	if c.Output.Precision > 9 {
		return fmt.Errorf("%w: output.precision %d above 9", ErrInvalidConfig, c.Output.Precision)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// Options converts the refine section into engine options.
func (c *Config) Options() []subdiv.Option {
	opts := []subdiv.Option{
		subdiv.WithLevel(c.Refine.Level),
		subdiv.WithBoundaryInterpolation(c.Refine.Boundary),
	}
	if len(c.Refine.Creases) > 0 {
		opts = append(opts, subdiv.WithCreases(c.Refine.Creases...))
	}
	return opts
}
