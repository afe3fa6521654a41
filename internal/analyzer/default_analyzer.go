package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/ariadne/internal/coordinate"
	"github.com/bayleafwalker/ariadne/internal/graph"
	"github.com/bayleafwalker/ariadne/internal/version"
)

// Config configures a DefaultAnalyzer.
type Config struct {
	// InternalIdentifiers are substrings marking a group:name as in-house.
	InternalIdentifiers []string
	Suppressions        []Suppression
	// Logger defaults to logr.Discard().
	Logger logr.Logger
}

// DefaultAnalyzer builds the graph, detects cycles and propagates tiers, in
// that order, once per call.
type DefaultAnalyzer struct {
	internal     []string
	suppressions []suppression
	log          logr.Logger
}

type suppression struct {
	artifact   string
	constraint *version.Constraint
	reason     string
}

func NewDefault(cfg Config) (*DefaultAnalyzer, error) {
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	a := &DefaultAnalyzer{
		internal: append([]string(nil), cfg.InternalIdentifiers...),
		log:      log,
	}
	for _, s := range cfg.Suppressions {
		name := strings.TrimSpace(s.Artifact)
		if name == "" {
			return nil, fmt.Errorf("%w: artifact is required", ErrInvalidSuppression)
		}
		compiled := suppression{artifact: name, reason: s.Reason}
		if raw := strings.TrimSpace(s.Versions); raw != "" {
			c, err := version.ParseConstraint(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSuppression, name, err)
			}
			compiled.constraint = &c
		}
		a.suppressions = append(a.suppressions, compiled)
	}
	return a, nil
}

func (a *DefaultAnalyzer) Analyze(ctx context.Context, in Input) (Result, error) {
	b := NewBuilder(a.internal, a.log)
	if err := b.IngestDependencies(in.Dependencies); err != nil {
		return Result{}, err
	}

	findings, suppressed, err := a.suppress(in.Findings)
	if err != nil {
		return Result{}, err
	}
	orphans, err := b.IngestFindings(findings)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	g := b.Graph()
	g.FindCycles()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	g.AssignTiers()

	res := Result{
		Artifacts: g.Artifacts(),
		Diagnostics: Diagnostics{
			OrphanFindings:     orphans,
			SuppressedFindings: suppressed,
		},
	}
	res.Stats = computeStats(g, res.Artifacts)

	a.log.V(1).Info("analysis complete",
		"artifacts", res.Stats.Artifacts,
		"internal", res.Stats.Internal,
		"vulnerable", res.Stats.Vulnerable,
		"implicated", res.Stats.Implicated,
		"tiers", res.Stats.Tiers,
	)
	return res, nil
}

func (a *DefaultAnalyzer) suppress(findings []Finding) ([]Finding, []SuppressedFinding, error) {
	if len(a.suppressions) == 0 {
		return findings, nil, nil
	}
	kept := make([]Finding, 0, len(findings))
	var dropped []SuppressedFinding
	for _, f := range findings {
		name, v, err := coordinate.Split(f.Artifact)
		if err != nil {
			return nil, nil, fmt.Errorf("finding %s: %w", f.Artifact, err)
		}
		s, ok := a.match(name, v)
		if !ok {
			kept = append(kept, f)
			continue
		}
		a.log.V(1).Info("finding suppressed", "artifact", f.Artifact, "count", f.Count, "reason", s.reason)
		dropped = append(dropped, SuppressedFinding{Artifact: f.Artifact, Count: f.Count, Reason: s.reason})
	}
	return kept, dropped, nil
}

func (a *DefaultAnalyzer) match(name, v string) (suppression, bool) {
	for _, s := range a.suppressions {
		if s.artifact != name {
			continue
		}
		if s.constraint == nil || version.Satisfies(v, *s.constraint) {
			return s, true
		}
	}
	return suppression{}, false
}

func computeStats(g *graph.Graph, artifacts []*graph.Artifact) Stats {
	s := Stats{Artifacts: len(artifacts), Tiers: g.TierCount()}
	for _, a := range artifacts {
		if a.IsInternal() {
			s.Internal++
			if a.Tier() != graph.Unassigned {
				s.Implicated++
			}
			continue
		}
		if a.IsVulnerable() {
			s.Vulnerable++
		}
		s.Findings += a.Findings()
	}
	return s
}
