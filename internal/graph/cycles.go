package graph

import (
	"fmt"
	"slices"
)

// FindCycles annotates every internal artifact with the internal artifacts it
// shares a live dependency cycle with. Each internal artifact starts its own
// walk with an empty path.
func (g *Graph) FindCycles() {
	for _, a := range g.Artifacts() {
		if a.IsInternal() {
			g.findCycles(a, nil)
		}
	}
}

// FindCyclesFrom runs the cycle walk rooted at a single internal artifact.
func (g *Graph) FindCyclesFrom(key string) error {
	a, ok := g.nodes[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownArtifact, key)
	}
	if !a.IsInternal() {
		return fmt.Errorf("%w: find cycles from external artifact %s", ErrNotApplicable, key)
	}
	g.findCycles(a, nil)
	return nil
}

// findCycles walks upward through parents. path holds the keys visited so far,
// the last element being the artifact that led here. The walk continues only
// while the most recent version of each artifact still depends on the previous
// one; stale edges from older versions do not close a cycle.
func (g *Graph) findCycles(a *Artifact, path []string) {
	if len(path) > 0 && !a.Latest().HasChild(path[len(path)-1]) {
		return
	}
	if i := slices.Index(path, a.key); i >= 0 {
		for _, member := range path[i+1:] {
			a.in.cycles.Add(member)
		}
		return
	}

	next := make([]string, len(path), len(path)+1)
	copy(next, path)
	next = append(next, a.key)

	var seen nameSet
	for _, v := range a.orderedVersions() {
		for _, p := range v.parents.items {
			if !seen.Add(p) {
				continue
			}
			parent, ok := g.nodes[p]
			if !ok || !parent.IsInternal() {
				// External artifacts carry no cycle membership.
				continue
			}
			g.findCycles(parent, next)
		}
	}
}
