// Package reader turns dependency and vulnerability exports into analyzer input.
//
// Each format has a parser working on an io.Reader so the same code serves
// files on disk and ConfigMap payloads.
package reader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
)

// Format names an input format, as used on the command line and in UpgradePlan specs.
type Format string

const (
	FormatMavenTree   Format = "mvn-tree"
	FormatPomExplorer Format = "pom-explorer"
	FormatFindingsCSV Format = "findings-csv"
)

// DependencyParser reads (parent, child) coordinate pairs.
type DependencyParser interface {
	ParseDependencies(r io.Reader) ([]analyzer.Dependency, error)
}

// FindingParser reads (coordinate, count) pairs.
type FindingParser interface {
	ParseFindings(r io.Reader) ([]analyzer.Finding, error)
}

// DependencyFormats lists the formats accepted by DependencyParserFor.
func DependencyFormats() []Format {
	return []Format{FormatMavenTree, FormatPomExplorer}
}

// FindingFormats lists the formats accepted by FindingParserFor.
func FindingFormats() []Format {
	return []Format{FormatFindingsCSV}
}

func DependencyParserFor(format Format, log logr.Logger) (DependencyParser, error) {
	switch format {
	case FormatMavenTree:
		return &MavenTree{Logger: log}, nil
	case FormatPomExplorer:
		return &PomExplorer{Logger: log}, nil
	default:
		return nil, fmt.Errorf("%w: dependency reader %q", ErrUnknownFormat, format)
	}
}

func FindingParserFor(format Format, log logr.Logger) (FindingParser, error) {
	switch format {
	case FormatFindingsCSV:
		return &FindingsCSV{Logger: log}, nil
	default:
		return nil, fmt.Errorf("%w: vulnerability reader %q", ErrUnknownFormat, format)
	}
}

// ReadDependencies parses every file at path. Directories are only accepted
// for the mvn-tree format, which expects one tree per project.
func ReadDependencies(format Format, path string, log logr.Logger) ([]analyzer.Dependency, error) {
	p, err := DependencyParserFor(format, log)
	if err != nil {
		return nil, err
	}
	files, err := inputFiles(path, format == FormatMavenTree)
	if err != nil {
		return nil, err
	}
	var out []analyzer.Dependency
	for _, f := range files {
		deps, err := parseFile(f, p.ParseDependencies)
		if err != nil {
			return nil, err
		}
		log.V(1).Info("read dependencies", "format", string(format), "file", f, "count", len(deps))
		out = append(out, deps...)
	}
	return out, nil
}

// ReadFindings parses the findings file at path.
func ReadFindings(format Format, path string, log logr.Logger) ([]analyzer.Finding, error) {
	p, err := FindingParserFor(format, log)
	if err != nil {
		return nil, err
	}
	files, err := inputFiles(path, false)
	if err != nil {
		return nil, err
	}
	var out []analyzer.Finding
	for _, f := range files {
		findings, err := parseFile(f, p.ParseFindings)
		if err != nil {
			return nil, err
		}
		log.V(1).Info("read findings", "format", string(format), "file", f, "count", len(findings))
		out = append(out, findings...)
	}
	return out, nil
}

func parseFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	defer f.Close()
	items, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// inputFiles resolves path to the regular files to read, in lexical order.
func inputFiles(path string, allowDir bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	if !allowDir {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ParseSource splits a "format=path" command line value.
func ParseSource(s string) (Format, string, error) {
	format, path, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(format) == "" || strings.TrimSpace(path) == "" {
		return "", "", fmt.Errorf("expected <format>=<path>, got %q", s)
	}
	return Format(strings.TrimSpace(format)), strings.TrimSpace(path), nil
}
