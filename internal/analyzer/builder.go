package analyzer

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/ariadne/internal/coordinate"
	"github.com/bayleafwalker/ariadne/internal/graph"
)

// Builder constructs the artifact graph from dependency edges and findings.
// Nodes are created lazily on first reference.
type Builder struct {
	g        *graph.Graph
	internal []string
	log      logr.Logger
}

// NewBuilder returns a Builder that classifies any artifact whose group:name
// contains one of internalIdentifiers as internal.
func NewBuilder(internalIdentifiers []string, log logr.Logger) *Builder {
	ids := make([]string, 0, len(internalIdentifiers))
	for _, id := range internalIdentifiers {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return &Builder{g: graph.New(), internal: ids, log: log}
}

func (b *Builder) Graph() *graph.Graph {
	return b.g
}

// Resolve looks up or creates the node for a full coordinate.
//
// Lookup order: the full coordinate, then a known internal artifact under the
// truncated coordinate (registering the version), then a new internal artifact
// if the truncated name matches an internal identifier, else a new external one.
func (b *Builder) Resolve(coord string) (*graph.Artifact, error) {
	if a, ok := b.g.Get(coord); ok {
		return a, nil
	}
	name, v, err := coordinate.Split(coord)
	if err != nil {
		return nil, err
	}
	if a, ok := b.g.Get(name); ok && a.IsInternal() {
		if err := a.AddVersion(v); err != nil {
			return nil, err
		}
		return a, nil
	}

	var a *graph.Artifact
	if b.isInternal(name) {
		a, err = graph.NewInternal(coord)
	} else {
		a, err = graph.NewExternal(coord)
	}
	if err != nil {
		return nil, err
	}
	if err := b.g.Add(a); err != nil {
		return nil, err
	}
	b.log.V(2).Info("artifact added", "artifact", a.Name(), "kind", a.Kind().String())
	return a, nil
}

func (b *Builder) isInternal(name string) bool {
	for _, id := range b.internal {
		if strings.Contains(name, id) {
			return true
		}
	}
	return false
}

// IngestDependencies records every edge at the versions named by its coordinates.
func (b *Builder) IngestDependencies(deps []Dependency) error {
	for _, d := range deps {
		parent, err := b.Resolve(d.Parent)
		if err != nil {
			return fmt.Errorf("dependency %s -> %s: %w", d.Parent, d.Child, err)
		}
		child, err := b.Resolve(d.Child)
		if err != nil {
			return fmt.Errorf("dependency %s -> %s: %w", d.Parent, d.Child, err)
		}
		_, pv, _ := coordinate.Split(d.Parent)
		_, cv, _ := coordinate.Split(d.Child)
		if err := b.g.AddEdge(parent.Name(), pv, child.Name(), cv); err != nil {
			return fmt.Errorf("dependency %s -> %s: %w", d.Parent, d.Child, err)
		}
	}
	return nil
}

// IngestFindings adds finding counts to external artifacts. Artifacts nobody
// uses yet are still recorded and returned as orphans.
func (b *Builder) IngestFindings(findings []Finding) ([]string, error) {
	var orphans []string
	seen := map[string]bool{}
	for _, f := range findings {
		if f.Count < 0 {
			return orphans, fmt.Errorf("%w: %s has negative count %d", ErrInvalidFinding, f.Artifact, f.Count)
		}
		a, err := b.Resolve(f.Artifact)
		if err != nil {
			return orphans, fmt.Errorf("finding %s: %w", f.Artifact, err)
		}
		if a.Connections() == 0 && !seen[a.Name()] {
			seen[a.Name()] = true
			orphans = append(orphans, a.Name())
			b.log.Info("vulnerability not found in dependency graph", "artifact", a.Name())
		}
		if err := a.AddFindings(f.Count); err != nil {
			return orphans, fmt.Errorf("finding %s: %w", f.Artifact, err)
		}
	}
	return orphans, nil
}
