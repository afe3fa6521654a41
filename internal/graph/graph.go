// Package graph models the artifact dependency graph and the two analyses run
// over it: cycle detection between internal artifacts and remediation tier
// propagation from vulnerable external artifacts.
//
// The Graph owns every Artifact; edges reference nodes by key only.
package graph

import (
	"fmt"
	"sort"
)

// Graph is a keyed arena of artifacts.
type Graph struct {
	nodes map[string]*Artifact
}

func New() *Graph {
	return &Graph{nodes: map[string]*Artifact{}}
}

// Add stores a node under its key.
func (g *Graph) Add(a *Artifact) error {
	if _, ok := g.nodes[a.key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateArtifact, a.key)
	}
	g.nodes[a.key] = a
	return nil
}

func (g *Graph) Get(key string) (*Artifact, bool) {
	a, ok := g.nodes[key]
	return a, ok
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// Keys returns every node key in lexical order.
func (g *Graph) Keys() []string {
	keys := make([]string, 0, len(g.nodes))
	for k := range g.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Artifacts returns every node ordered by key.
func (g *Graph) Artifacts() []*Artifact {
	keys := g.Keys()
	out := make([]*Artifact, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.nodes[k])
	}
	return out
}

// AddEdge records that version parentVersion of parentKey uses version
// childVersion of childKey. The edge is stored on both endpoints.
func (g *Graph) AddEdge(parentKey, parentVersion, childKey, childVersion string) error {
	parent, ok := g.nodes[parentKey]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownArtifact, parentKey)
	}
	child, ok := g.nodes[childKey]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownArtifact, childKey)
	}
	if err := parent.addChild(parentVersion, childKey); err != nil {
		return err
	}
	return child.addParent(childVersion, parentKey)
}

// TierCount returns the number of distinct tiers: one more than the highest
// tier assigned to any artifact, or zero when nothing was reached.
func (g *Graph) TierCount() int {
	highest := Unassigned
	for _, a := range g.nodes {
		if t := a.Tier(); t > highest {
			highest = t
		}
	}
	return highest + 1
}
