// Package synth generates deterministic synthetic dependency graphs for load
// tests and benchmarks.
package synth

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
)

// InternalIdentifier marks every generated internal artifact.
const InternalIdentifier = "com.synth.internal"

const externalGroup = "org.synth.external"

type Params struct {
	Internal int
	External int
	// Fanout is the number of dependencies drawn for each internal artifact.
	Fanout int
	// Vulnerable is the number of external artifacts that receive findings.
	Vulnerable int
	// BackEdge makes the first internal artifact depend on the last one,
	// closing a cycle through the layers.
	BackEdge bool
	Seed     int64
}

func (p Params) withDefaults() Params {
	if p.Internal <= 0 {
		p.Internal = 10
	}
	if p.External < 0 {
		p.External = 0
	}
	if p.Fanout <= 0 {
		p.Fanout = 3
	}
	if p.Vulnerable > p.External {
		p.Vulnerable = p.External
	}
	return p
}

func InternalCoordinate(i int) string {
	return fmt.Sprintf("%s:svc-%03d:1.0", InternalIdentifier, i)
}

func ExternalCoordinate(i int) string {
	return fmt.Sprintf("%s:lib-%03d:%d.0", externalGroup, i, 1+i%3)
}

// Generate returns a layered graph: internal artifact i only depends on
// internal artifacts with a lower index and on external artifacts, so the
// graph is acyclic unless BackEdge is set.
func Generate(p Params) analyzer.Input {
	p = p.withDefaults()
	rng := rand.New(rand.NewSource(p.Seed))

	var in analyzer.Input
	seen := map[[2]string]bool{}
	add := func(parent, child string) {
		k := [2]string{parent, child}
		if parent == child || seen[k] {
			return
		}
		seen[k] = true
		in.Dependencies = append(in.Dependencies, analyzer.Dependency{Parent: parent, Child: child})
	}

	for i := 0; i < p.Internal; i++ {
		parent := InternalCoordinate(i)
		for k := 0; k < p.Fanout; k++ {
			useInternal := i > 0 && (p.External == 0 || rng.Intn(2) == 0)
			switch {
			case useInternal:
				add(parent, InternalCoordinate(rng.Intn(i)))
			case p.External > 0:
				add(parent, ExternalCoordinate(rng.Intn(p.External)))
			}
		}
	}
	if p.BackEdge && p.Internal > 1 {
		add(InternalCoordinate(0), InternalCoordinate(p.Internal-1))
	}

	for _, idx := range rng.Perm(p.External)[:p.Vulnerable] {
		in.Findings = append(in.Findings, analyzer.Finding{
			Artifact: ExternalCoordinate(idx),
			Count:    1 + rng.Intn(5),
		})
	}
	return in
}

// PomExplorerCSV renders dependencies in the pom-explorer edge format.
func PomExplorerCSV(deps []analyzer.Dependency) (string, error) {
	rows := [][]string{{"from", "relation", "to"}}
	for _, d := range deps {
		rows = append(rows, []string{d.Parent, "depends", d.Child})
	}
	return renderCSV(rows)
}

// FindingsCSV renders findings in the findings-csv format.
func FindingsCSV(findings []analyzer.Finding) (string, error) {
	rows := [][]string{{"artifact", "count"}}
	for _, f := range findings {
		rows = append(rows, []string{f.Artifact, strconv.Itoa(f.Count)})
	}
	return renderCSV(rows)
}

func renderCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	if err := csv.NewWriter(&buf).WriteAll(rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}
