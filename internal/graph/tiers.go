package graph

import (
	"fmt"
	"slices"
)

// AssignTiers propagates tiers upward from every vulnerable external artifact,
// in key order.
func (g *Graph) AssignTiers() {
	for _, a := range g.Artifacts() {
		if a.IsVulnerable() {
			g.assignFromExternal(a)
		}
	}
}

// AssignTiersFrom starts a single propagation walk at the external artifact key.
func (g *Graph) AssignTiersFrom(key string) error {
	a, ok := g.nodes[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownArtifact, key)
	}
	if a.IsInternal() {
		return fmt.Errorf("%w: assign tiers from internal artifact %s", ErrNotApplicable, key)
	}
	g.assignFromExternal(a)
	return nil
}

func (g *Graph) assignFromExternal(a *Artifact) {
	g.assignTier(a, 0, a.key, a.key, nil)
}

// assignTier visits a with a candidate tier. root is the vulnerable external
// artifact the walk started from, direct is the artifact that forwarded the
// walk to a, and visited is the walk's path, copied per branch.
func (g *Graph) assignTier(a *Artifact, tier int, root, direct string, visited []string) {
	if !a.IsInternal() {
		if slices.Contains(visited, a.key) {
			return
		}
		next := appendPath(visited, a.key)
		for _, p := range a.ext.parents.items {
			if parent, ok := g.nodes[p]; ok {
				g.assignTier(parent, tier, root, a.key, next)
			}
		}
		return
	}

	if !a.Latest().HasChild(direct) {
		return
	}
	a.recordUpgrade(tier, root, direct)
	if slices.Contains(visited, a.key) {
		return
	}
	if tier > a.in.tier {
		a.in.tier = tier
	}
	next := appendPath(visited, a.key)

	var updated nameSet
	for _, v := range a.orderedVersions() {
		for _, p := range v.parents.items {
			if !updated.Add(p) {
				continue
			}
			parent, ok := g.nodes[p]
			if !ok {
				continue
			}
			nextTier := tier + 1
			if a.in.cycles.Has(p) {
				nextTier = tier
			}
			g.assignTier(parent, nextTier, root, a.key, next)
		}
	}
}

// recordUpgrade notes that a must move to a new version of direct. At tier 0
// direct is the external dependency to bump and root is remembered as its
// justification; above tier 0 direct is an internal prerequisite.
func (a *Artifact) recordUpgrade(tier int, root, direct string) {
	if tier > 0 {
		a.in.internalUpgrades.Add(direct)
		return
	}
	roots, ok := a.in.externalUpgrades[direct]
	if !ok {
		roots = &nameSet{}
		a.in.externalUpgrades[direct] = roots
	}
	roots.Add(root)
}

func appendPath(path []string, key string) []string {
	next := make([]string, len(path), len(path)+1)
	copy(next, path)
	return append(next, key)
}
