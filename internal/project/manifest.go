package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a loaded signcheck.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Check CheckConfig `toml:"check"`
}

// CheckConfig mirrors the [check] table. Zero values mean "not set" so CLI
// flags and defaults can fill them in.
type CheckConfig struct {
	Jobs           int      `toml:"jobs"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
	Format         string   `toml:"format"`
	Stubs          []string `toml:"stubs"`
	Paths          []string `toml:"paths"`
}

var formats = map[string]struct{}{
	"pretty": {},
	"json":   {},
	"short":  {},
}

// LoadManifest finds and decodes the manifest governing startDir.
func LoadManifest(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoManifest
	}
	return ReadManifest(path)
}

// ReadManifest decodes the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// LoadConfig decodes and validates one manifest file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Check.Jobs < 0 {
		return fmt.Errorf("[check].jobs must not be negative, got %d", c.Check.Jobs)
	}
	if c.Check.MaxDiagnostics < 0 {
		return fmt.Errorf("[check].max_diagnostics must not be negative, got %d", c.Check.MaxDiagnostics)
	}
	c.Check.Format = strings.TrimSpace(c.Check.Format)
	if c.Check.Format != "" {
		if _, ok := formats[c.Check.Format]; !ok {
			return fmt.Errorf("[check].format must be pretty, json or short, got %q", c.Check.Format)
		}
	}
	for i, stub := range c.Check.Stubs {
		if strings.TrimSpace(stub) == "" {
			return fmt.Errorf("[check].stubs[%d] is empty", i)
		}
	}
	return nil
}

// StubPaths returns the stub files resolved against the manifest directory.
func (m *Manifest) StubPaths() []string {
	return m.resolve(m.Config.Check.Stubs)
}

// CheckPaths returns the configured check roots, or the manifest directory
// when none are listed.
func (m *Manifest) CheckPaths() []string {
	if len(m.Config.Check.Paths) == 0 {
		return []string{m.Root}
	}
	return m.resolve(m.Config.Check.Paths)
}

func (m *Manifest) resolve(rel []string) []string {
	out := make([]string, 0, len(rel))
	for _, p := range rel {
		p = filepath.FromSlash(strings.TrimSpace(p))
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.Root, p)
		}
		out = append(out, p)
	}
	return out
}
