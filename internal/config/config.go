// Package config loads the run configuration shared by the CLI and server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-logr/logr"
	"sigs.k8s.io/yaml"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
	"github.com/bayleafwalker/ariadne/internal/reader"
)

const DefaultOutputDir = "out"

// ErrInvalid indicates a configuration that fails validation.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	InternalIdentifiers []string               `json:"internalIdentifiers"`
	Suppressions        []analyzer.Suppression `json:"suppressions,omitempty"`
	Dependencies        []Source               `json:"dependencies"`
	Findings            []Source               `json:"findings"`
	Output              Output                 `json:"output"`
}

// Source is one input file or directory and the reader that understands it.
type Source struct {
	Format reader.Format `json:"format"`
	Path   string        `json:"path"`
}

type Output struct {
	Directory string `json:"directory,omitempty"`
	// Stats also writes the dependency and vulnerability summaries.
	Stats bool `json:"stats,omitempty"`
}

// Load reads a YAML configuration file. Relative source paths are resolved
// against the directory holding the file.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	var c Config
	if err := yaml.UnmarshalStrict(b, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	base := filepath.Dir(path)
	for i := range c.Dependencies {
		c.Dependencies[i].Path = resolve(base, c.Dependencies[i].Path)
	}
	for i := range c.Findings {
		c.Findings[i].Path = resolve(base, c.Findings[i].Path)
	}
	if c.Output.Directory != "" {
		c.Output.Directory = resolve(base, c.Output.Directory)
	}
	return c, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func (c *Config) ApplyDefaults() {
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	var errs []error
	ids := 0
	for _, id := range c.InternalIdentifiers {
		if strings.TrimSpace(id) != "" {
			ids++
		}
	}
	if ids == 0 {
		errs = append(errs, errors.New("at least one internal identifier is required"))
	}
	if len(c.Dependencies) == 0 {
		errs = append(errs, errors.New("at least one dependency source is required"))
	}
	if len(c.Findings) == 0 {
		errs = append(errs, errors.New("at least one vulnerability source is required"))
	}
	for i, s := range c.Dependencies {
		if !slices.Contains(reader.DependencyFormats(), s.Format) {
			errs = append(errs, fmt.Errorf("dependencies[%d]: %w", i, unknown(s.Format)))
		}
		if strings.TrimSpace(s.Path) == "" {
			errs = append(errs, fmt.Errorf("dependencies[%d]: path is required", i))
		}
	}
	for i, s := range c.Findings {
		if !slices.Contains(reader.FindingFormats(), s.Format) {
			errs = append(errs, fmt.Errorf("findings[%d]: %w", i, unknown(s.Format)))
		}
		if strings.TrimSpace(s.Path) == "" {
			errs = append(errs, fmt.Errorf("findings[%d]: path is required", i))
		}
	}
	for i, s := range c.Suppressions {
		if strings.TrimSpace(s.Artifact) == "" {
			errs = append(errs, fmt.Errorf("suppressions[%d]: artifact is required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func unknown(f reader.Format) error {
	return fmt.Errorf("%w: %q", reader.ErrUnknownFormat, f)
}

// AnalyzerConfig returns the analyzer settings carried by c.
func (c *Config) AnalyzerConfig(log logr.Logger) analyzer.Config {
	return analyzer.Config{
		InternalIdentifiers: c.InternalIdentifiers,
		Suppressions:        c.Suppressions,
		Logger:              log,
	}
}

// ReadInput reads every configured source.
func (c *Config) ReadInput(log logr.Logger) (analyzer.Input, error) {
	var in analyzer.Input
	for _, s := range c.Dependencies {
		deps, err := reader.ReadDependencies(s.Format, s.Path, log)
		if err != nil {
			return analyzer.Input{}, err
		}
		in.Dependencies = append(in.Dependencies, deps...)
	}
	for _, s := range c.Findings {
		findings, err := reader.ReadFindings(s.Format, s.Path, log)
		if err != nil {
			return analyzer.Input{}, err
		}
		in.Findings = append(in.Findings, findings...)
	}
	return in, nil
}
