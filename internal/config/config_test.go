package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/subdiv/pkg/subdiv"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Refine.Level != 2 {
		t.Errorf("expected level 2, got %d", cfg.Refine.Level)
	}
	if cfg.Refine.Boundary != subdiv.BoundaryEdgeOnly {
		t.Errorf("expected edge-only boundary, got %v", cfg.Refine.Boundary)
	}
	if cfg.Output.Limit || cfg.Output.Normals {
		t.Error("expected limit and normals to be off by default")
	}
	if cfg.Output.Precision != 6 {
		t.Errorf("expected precision 6, got %d", cfg.Output.Precision)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)

	yamlContent := `
refine:
  level: 4
  boundary: edge-and-corner
  creases:
    - [0, 1]
    - [1, 2]

output:
  limit: true
  normals: true
  precision: 3

logging:
  level: "debug"
  log_file: "subdiv.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Refine.Level != 4 {
		t.Errorf("expected level 4, got %d", cfg.Refine.Level)
	}
	if cfg.Refine.Boundary != subdiv.BoundaryEdgeAndCorner {
		t.Errorf("expected edge-and-corner, got %v", cfg.Refine.Boundary)
	}
	if len(cfg.Refine.Creases) != 2 || cfg.Refine.Creases[1] != [2]int{1, 2} {
		t.Errorf("unexpected creases %v", cfg.Refine.Creases)
	}
	if !cfg.Output.Limit || !cfg.Output.Normals {
		t.Error("expected limit and normals to be enabled")
	}
	if cfg.Output.Precision != 3 {
		t.Errorf("expected precision 3, got %d", cfg.Output.Precision)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "subdiv.log" {
		t.Errorf("expected log file 'subdiv.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "refine:\n  level: not a number\n  invalid syntax here\n"},
		{"unknown boundary", "refine:\n  boundary: sometimes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	err := loadFromFile(Default(), "/nonexistent/path/subdiv.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative level", func(c *Config) { c.Refine.Level = -1 }},
		{"level too deep", func(c *Config) { c.Refine.Level = MaxLevel + 1 }},
		{"bad boundary", func(c *Config) { c.Refine.Boundary = 9 }},
		{"precision too high", func(c *Config) { c.Output.Precision = 12 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("refine:\n  level: 1\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "level zero overrides default",
			args: []string{"-level", "0"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Refine.Level != 0 {
					t.Errorf("expected level 0, got %d", cfg.Refine.Level)
				}
			},
		},
		{
			name: "boundary flag",
			args: []string{"-boundary", "none"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Refine.Boundary != subdiv.BoundaryNone {
					t.Errorf("expected boundary none, got %v", cfg.Refine.Boundary)
				}
			},
		},
		{
			name: "output flags",
			args: []string{"-limit", "-normals", "-precision", "-1"},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Output.Limit || !cfg.Output.Normals {
					t.Error("expected limit and normals to be enabled")
				}
				if cfg.Output.Precision != -1 {
					t.Errorf("expected precision -1, got %d", cfg.Output.Precision)
				}
			},
		},
		{
			name: "unset flags keep defaults",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Refine.Level != 2 || cfg.Output.Precision != 6 {
					t.Errorf("defaults changed: %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			f := RegisterFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse failed: %v", err)
			}

			cfg := Default()
			if err := f.apply(cfg); err != nil {
				t.Fatalf("apply failed: %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestApplyFlagsBadBoundary(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse([]string{"-boundary", "sharp"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := f.apply(Default()); !errors.Is(err, subdiv.ErrUnknownBoundary) {
		t.Errorf("expected ErrUnknownBoundary, got %v", err)
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(configPath, []byte("refine:\n  level: 3\noutput:\n  precision: 4\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", configPath, "-level", "1"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Refine.Level != 1 {
		t.Errorf("flag should override file: level %d", cfg.Refine.Level)
	}
	if cfg.Output.Precision != 4 {
		t.Errorf("file should override default: precision %d", cfg.Output.Precision)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", filepath.Join(t.TempDir(), "none.yaml")}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, err := Load(f); err == nil {
		t.Error("expected error for missing explicit config")
	}

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	f = RegisterFlags(fs)
	if err := fs.Parse([]string{"-level", "20"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, err := Load(f); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Refine.Level = 5
	cfg.Refine.Boundary = subdiv.BoundaryEdgeAndCorner
	cfg.Refine.Creases = [][2]int{{3, 4}}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	if !strings.Contains(string(data), "boundary: edge-and-corner") {
		t.Errorf("boundary not written by name:\n%s", data)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if loaded.Refine.Level != 5 || loaded.Refine.Boundary != subdiv.BoundaryEdgeAndCorner {
		t.Errorf("round trip lost refine settings: %+v", loaded.Refine)
	}
	if len(loaded.Refine.Creases) != 1 || loaded.Refine.Creases[0] != [2]int{3, 4} {
		t.Errorf("round trip lost creases: %v", loaded.Refine.Creases)
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Refine.Level = 1
	cfg.Refine.Creases = [][2]int{{0, 1}}

	r, err := subdiv.New(4, []subdiv.Quad{{Index0: 0, Index1: 1, Index2: 2, Index3: 3}}, cfg.Options()...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if r.MaxLevel() != 1 {
		t.Errorf("expected max level 1, got %d", r.MaxLevel())
	}
	if r.BoundaryInterpolation() != subdiv.BoundaryEdgeOnly {
		t.Errorf("expected edge-only, got %v", r.BoundaryInterpolation())
	}
}
