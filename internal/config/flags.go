package config

import (
	"flag"
	"fmt"

	"github.com/Faultbox/subdiv/pkg/subdiv"
)

// Flags holds the command-line overrides registered on a FlagSet.
type Flags struct {
	fs *flag.FlagSet

	config    *string
	debug     *bool
	logFile   *string
	level     *int
	boundary  *string
	limit     *bool
	normals   *bool
	precision *int
}

// RegisterFlags adds the config override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:        fs,
		config:    fs.String("config", "", "Path to config file"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		logFile:   fs.String("log-file", "", "Write logs to this file as well"),
		level:     fs.Int("level", 0, "Refinement level"),
		boundary:  fs.String("boundary", "", "Boundary interpolation: none, edge-only, edge-and-corner"),
		limit:     fs.Bool("limit", false, "Push refined vertices to the limit surface"),
		normals:   fs.Bool("normals", false, "Write limit normals"),
		precision: fs.Int("precision", 0, "Decimals per written component, negative for shortest"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply copies the flags that were set on the command line into cfg.
func (f *Flags) apply(cfg *Config) error {
	if f == nil {
		return nil
	}

	set := make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if set["log-file"] {
		cfg.Logging.LogFile = *f.logFile
	}
	if set["level"] {
		cfg.Refine.Level = *f.level
	}
	if set["boundary"] {
		b, err := subdiv.ParseBoundaryInterpolation(*f.boundary)
		if err != nil {
			return fmt.Errorf("-boundary: %w", err)
		}
		cfg.Refine.Boundary = b
	}
	if set["limit"] {
		cfg.Output.Limit = *f.limit
	}
	if set["normals"] {
		cfg.Output.Normals = *f.normals
	}
	if set["precision"] {
		cfg.Output.Precision = *f.precision
	}
	return nil
}
