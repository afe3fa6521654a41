// Package report renders analysis results as CSV summaries.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
	"github.com/bayleafwalker/ariadne/internal/coordinate"
	"github.com/bayleafwalker/ariadne/internal/graph"
)

const (
	TiersFile           = "tiers.csv"
	DependenciesFile    = "dependencies.csv"
	VulnerabilitiesFile = "vulnerabilities.csv"

	none = "None"
)

// ErrInvalidOutput indicates an output directory that cannot be created or written.
var ErrInvalidOutput = errors.New("invalid output directory")

// CSVWriter writes the report files into a directory.
type CSVWriter struct {
	dir string
	log logr.Logger
}

// NewCSVWriter creates dir if needed.
func NewCSVWriter(dir string, log logr.Logger) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return &CSVWriter{dir: dir, log: log}, nil
}

// WriteAll writes tiers.csv, and the dependency and vulnerability summaries when stats is set.
func (w *CSVWriter) WriteAll(res analyzer.Result, stats bool) error {
	if err := w.WriteTiers(res); err != nil {
		return err
	}
	if !stats {
		return nil
	}
	if err := w.WriteDependencies(res); err != nil {
		return err
	}
	return w.WriteVulnerabilities(res)
}

func (w *CSVWriter) WriteTiers(res analyzer.Result) error {
	var summary TierSummary
	err := w.create(TiersFile, func(out io.Writer) error {
		var err error
		summary, err = Tiers(out, res.Artifacts)
		return err
	})
	if err != nil {
		return err
	}
	w.log.Info("Artifacts to Update", "count", summary.Artifacts)
	w.log.Info("Number of Tiers", "count", summary.Tiers)
	return nil
}

func (w *CSVWriter) WriteDependencies(res analyzer.Result) error {
	return w.create(DependenciesFile, func(out io.Writer) error {
		return Dependencies(out, res.Artifacts)
	})
}

func (w *CSVWriter) WriteVulnerabilities(res analyzer.Result) error {
	var libraries int
	err := w.create(VulnerabilitiesFile, func(out io.Writer) error {
		var err error
		libraries, err = Vulnerabilities(out, res.Artifacts)
		return err
	})
	if err != nil {
		return err
	}
	w.log.Info("Vulnerable OSS Libraries", "count", libraries)
	return nil
}

func (w *CSVWriter) create(name string, render func(io.Writer) error) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.log.V(1).Info("report written", "path", path)
	return nil
}

// TierSummary counts what the tier report contains.
type TierSummary struct {
	Artifacts int
	Tiers     int
}

// Tiers writes one row per artifact with an assigned tier.
func Tiers(out io.Writer, artifacts []*graph.Artifact) (TierSummary, error) {
	cw := csv.NewWriter(out)
	rows := [][]string{{"Project Name", "Tier", "Internal Dependencies to Upgrade", "External Dependencies to Upgrade"}}
	var s TierSummary
	for _, a := range artifacts {
		if a.Tier() == graph.Unassigned {
			continue
		}
		s.Artifacts++
		if a.Tier()+1 > s.Tiers {
			s.Tiers = a.Tier() + 1
		}
		rows = append(rows, []string{
			a.Name(),
			strconv.Itoa(a.Tier()),
			FormatInternalUpgrades(a.InternalUpgrades()),
			FormatExternalUpgrades(a.ExternalUpgrades()),
		})
	}
	if err := cw.WriteAll(rows); err != nil {
		return s, err
	}
	return s, nil
}

// Dependencies writes usage and version counts for internal artifacts.
func Dependencies(out io.Writer, artifacts []*graph.Artifact) error {
	rows := [][]string{{"Project Name", "# Used", "# Versions"}}
	for _, a := range artifacts {
		if !a.IsInternal() {
			continue
		}
		rows = append(rows, []string{a.Name(), strconv.Itoa(a.Connections()), strconv.Itoa(len(a.Versions()))})
	}
	return csv.NewWriter(out).WriteAll(rows)
}

// Vulnerabilities writes vulnerable artifacts grouped by group:name, each
// group closed by its share of all findings. It returns the number of groups.
func Vulnerabilities(out io.Writer, artifacts []*graph.Artifact) (int, error) {
	groups := map[string][]*graph.Artifact{}
	total := 0
	for _, a := range artifacts {
		if !a.IsVulnerable() {
			continue
		}
		name, _, err := coordinate.Split(a.Name())
		if err != nil {
			return 0, err
		}
		groups[name] = append(groups[name], a)
		total += a.Findings()
	}
	names := make([]string, 0, len(groups))
	for n := range groups {
		names = append(names, n)
	}
	sort.Strings(names)

	var rows [][]string
	for _, n := range names {
		rows = append(rows, []string{"", ""}, []string{coordinate.DisplayName(n), "Total"})
		sum := 0
		for _, a := range groups[n] {
			rows = append(rows, []string{a.Name(), strconv.Itoa(a.Findings())})
			sum += a.Findings()
		}
		percent := float64(sum) / float64(total) * 100
		rows = append(rows, []string{fmt.Sprintf("%.2f%%", percent), strconv.Itoa(sum)})
	}
	return len(names), csv.NewWriter(out).WriteAll(rows)
}

// FormatInternalUpgrades joins upgrades one per line, or returns "None".
func FormatInternalUpgrades(upgrades []string) string {
	if len(upgrades) == 0 {
		return none
	}
	return strings.Join(upgrades, "\n")
}

// FormatExternalUpgrades renders each direct dependency on its own line,
// followed by the vulnerable roots behind it unless the dependency is itself
// the only root.
func FormatExternalUpgrades(upgrades map[string][]string) string {
	if len(upgrades) == 0 {
		return none
	}
	deps := make([]string, 0, len(upgrades))
	for d := range upgrades {
		deps = append(deps, d)
	}
	sort.Strings(deps)

	lines := make([]string, 0, len(deps))
	for _, d := range deps {
		lines = append(lines, FormatExternalUpgrade(d, upgrades[d]))
	}
	return strings.Join(lines, "\n")
}

func FormatExternalUpgrade(dep string, roots []string) string {
	if len(roots) == 1 && roots[0] == dep {
		return dep
	}
	return dep + " (" + strings.Join(roots, ", ") + ")"
}
