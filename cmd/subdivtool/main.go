// subdivtool is a CLI utility for refining Catmull-Clark control cages
// stored as OBJ files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/subdiv/internal/config"
	"github.com/Faultbox/subdiv/internal/logger"
	"github.com/Faultbox/subdiv/pkg/formats"
	"github.com/Faultbox/subdiv/pkg/math"
	"github.com/Faultbox/subdiv/pkg/subdiv"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	err := run(os.Args[1], os.Args[2:], os.Stdout)
	logger.Sync()

	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(args, out)
	case "refine":
		return cmdRefine(args, out)
	case "stencils":
		return cmdStencils(args, out)
	case "facemap":
		return cmdFaceMap(args, out)
	case "config":
		return cmdConfig(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `subdivtool - Catmull-Clark subdivision utility

Usage:
  subdivtool <command> [options]

Commands:
  info <mesh.obj>                      Show per-level counts and vertex rules
  refine <mesh.obj> [-o out.obj]       Write the refined (or limit) mesh
  stencils <mesh.obj> [-kind k] [-o f] Print or dump stencil tables as YAML
  facemap <mesh.obj>                   Print finest face to control face map
  config [-save]                       Print (or save) the effective config

Common options:
  -config path     Config file (default ./subdiv.yaml, then user config dir)
  -level N         Refinement level
  -boundary mode   none, edge-only or edge-and-corner
  -debug           Enable debug logging
  -log-file path   Also log to a rotating file

Examples:
  subdivtool info cube.obj -level 3
  subdivtool refine cube.obj -level 2 -normals -o smooth.obj
  subdivtool stencils cube.obj -kind du -o du.yaml`)
}

// parseArgs parses flags that may appear before, between or after the
// positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

// session is the state shared by every mesh command.
type session struct {
	cfg     *config.Config
	path    string
	mesh    *formats.OBJ
	refiner *subdiv.Refiner
}

// newFlagSet returns a FlagSet carrying the config overrides.
func newFlagSet(name string) (*flag.FlagSet, *config.Flags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return fs, config.RegisterFlags(fs)
}

// setup loads the configuration, starts logging and builds the refiner for
// the single mesh argument.
func setup(name string, fs *flag.FlagSet, flags *config.Flags, args []string) (*session, error) {
	positional, err := parseArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if len(positional) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: subdivtool %s <mesh.obj> [options]\n", name)
		return nil, errUsage
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	path := positional[0]
	mesh, err := formats.ParseOBJFile(path)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.Options(), subdiv.WithLogger(logger.Named("refiner")))
	r, err := subdiv.NewFromTopology(mesh.Topology(), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Info("loaded control cage",
		zap.String("path", path),
		zap.Int("vertices", len(mesh.Positions)),
		zap.Int("faces", len(mesh.Faces)),
		zap.Int("level", r.MaxLevel()),
		zap.Stringer("boundary", r.BoundaryInterpolation()))

	return &session{cfg: cfg, path: path, mesh: mesh, refiner: r}, nil
}

func cmdInfo(args []string, out io.Writer) error {
	fs, flags := newFlagSet("info")
	s, err := setup("info", fs, flags, args)
	if err != nil {
		return err
	}
	r := s.refiner

	fmt.Fprintf(out, "Mesh:     %s\n", s.path)
	fmt.Fprintf(out, "Boundary: %s\n", r.BoundaryInterpolation())
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-6s %10s %10s %10s\n", "level", "faces", "vertices", "edges")
	for lvl := 0; lvl <= r.MaxLevel(); lvl++ {
		fmt.Fprintf(out, "  %-6d %10d %10d %10d\n", lvl, r.FaceCount(lvl), r.VertexCount(lvl), r.EdgeCount(lvl))
	}

	counts := make(map[subdiv.VertexRule]int)
	for _, rule := range r.VertexRules() {
		counts[rule]++
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Vertex rules (level %d):\n", r.MaxLevel())
	for _, rule := range []subdiv.VertexRule{subdiv.RuleSmooth, subdiv.RuleDart, subdiv.RuleCrease, subdiv.RuleCorner} {
		fmt.Fprintf(out, "  %-8s %d\n", rule, counts[rule])
	}

	adjacency := r.AdjacentVertices()
	maxValence := 0
	for v := 0; v < adjacency.Len(); v++ {
		maxValence = max(maxValence, len(adjacency.Elements(v)))
	}
	fmt.Fprintf(out, "Max valence: %d\n", maxValence)
	return nil
}

func cmdRefine(args []string, out io.Writer) error {
	fs, flags := newFlagSet("refine")
	output := fs.String("o", "", "Output OBJ file (default stdout)")
	s, err := setup("refine", fs, flags, args)
	if err != nil {
		return err
	}
	r := s.refiner
	cfg := s.cfg.Output
	start := time.Now()

	texCoords, hasTexCoords := s.mesh.VertexTexCoords()
	if len(s.mesh.TexCoords) > 0 && !hasTexCoords {
		logger.Warn("texture coordinates have seams, dropping them", zap.String("path", s.path))
	}

	// Channels only read the finished hierarchy, so they refine in parallel.
	var (
		positions []math.Vec3
		normals   []math.Vec3
		uvs       []math.Vec2
		g         errgroup.Group
	)
	g.Go(func() error {
		positions = r.RefineFully3(s.mesh.Positions)
		if cfg.Limit || cfg.Normals {
			limit := r.Limit3(positions)
			positions = limit.Values
			if cfg.Normals {
				normals = make([]math.Vec3, len(positions))
				for i := range normals {
					normals[i] = limit.Tangents1[i].Cross(limit.Tangents2[i]).Normalize()
				}
			}
		}
		return nil
	})
	if hasTexCoords {
		g.Go(func() error {
			uvs = r.RefineFully2(texCoords)
			if cfg.Limit || cfg.Normals {
				uvs = r.Limit2(uvs).Values
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
	if s.mesh.Name != "" {
		name = s.mesh.Name
	}
	obj := formats.NewOBJ(name, r.Topology(r.MaxLevel()), positions, uvs, normals)

	if *output == "" {
		err = obj.Write(out, cfg.Precision)
	} else {
		err = obj.WriteFile(*output, cfg.Precision)
	}
	if err != nil {
		return err
	}

	logger.Info("wrote refined mesh",
		zap.String("output", *output),
		zap.Int("vertices", len(positions)),
		zap.Int("faces", len(obj.Faces)),
		zap.Bool("limit", cfg.Limit || cfg.Normals),
		zap.Bool("texcoords", uvs != nil),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// stencilTable is the YAML layout of a stencil dump.
type stencilTable struct {
	Mesh            string         `yaml:"mesh"`
	Kind            string         `yaml:"kind"`
	Level           int            `yaml:"level"`
	Boundary        string         `yaml:"boundary"`
	ControlVertices int            `yaml:"control_vertices"`
	Stencils        []stencilEntry `yaml:"stencils"`
}

type stencilEntry struct {
	Vertex  int                    `yaml:"vertex"`
	Weights []subdiv.WeightedIndex `yaml:"weights,flow"`
}

func cmdStencils(args []string, out io.Writer) error {
	fs, flags := newFlagSet("stencils")
	kindName := fs.String("kind", "level", "Stencil kind: level, limit, du, dv")
	output := fs.String("o", "", "Write the table as YAML to this file")
	s, err := setup("stencils", fs, flags, args)
	if err != nil {
		return err
	}
	kind, err := subdiv.ParseStencilKind(*kindName)
	if err != nil {
		return err
	}
	r := s.refiner

	stencils := r.Stencils(kind)
	if *output == "" {
		for v := 0; v < stencils.Len(); v++ {
			fmt.Fprintf(out, "%6d:", v)
			for _, w := range stencils.Elements(v) {
				fmt.Fprintf(out, " %d*%.6g", w.Index, w.Weight)
			}
			fmt.Fprintln(out)
		}
		return nil
	}

	table := stencilTable{
		Mesh:            s.path,
		Kind:            kind.String(),
		Level:           r.MaxLevel(),
		Boundary:        r.BoundaryInterpolation().String(),
		ControlVertices: r.VertexCount(0),
		Stencils:        make([]stencilEntry, stencils.Len()),
	}
	for v := range table.Stencils {
		table.Stencils[v] = stencilEntry{Vertex: v, Weights: stencils.Elements(v)}
	}

	data, err := yaml.Marshal(&table)
	if err != nil {
		return fmt.Errorf("encoding stencils: %w", err)
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		return fmt.Errorf("writing stencils: %w", err)
	}

	logger.Info("wrote stencil table",
		zap.String("output", *output),
		zap.Stringer("kind", kind),
		zap.Int("vertices", stencils.Len()),
		zap.Int("weights", len(stencils.Elems)))
	return nil
}

func cmdFaceMap(args []string, out io.Writer) error {
	fs, flags := newFlagSet("facemap")
	s, err := setup("facemap", fs, flags, args)
	if err != nil {
		return err
	}

	for f, parent := range s.refiner.FaceMap() {
		fmt.Fprintf(out, "%d %d\n", f, parent)
	}
	return nil
}

func cmdConfig(args []string, out io.Writer) error {
	fs, flags := newFlagSet("config")
	save := fs.Bool("save", false, "Save to the user config directory")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	if *save {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Saved %s\n", filepath.Join(config.ConfigDir(), config.FileName))
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
