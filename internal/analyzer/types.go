package analyzer

import (
	"github.com/bayleafwalker/ariadne/internal/graph"
)

// Dependency records that Parent uses Child. Both are group:name:version coordinates.
type Dependency struct {
	Parent string
	Child  string
}

// Finding is a number of vulnerability findings reported against one coordinate.
type Finding struct {
	Artifact string
	Count    int
}

// Suppression drops findings for accepted risks before they reach the graph.
//
// Artifact is the truncated group:name coordinate. Versions is a semantic
// version constraint such as "<2.0.0"; an empty constraint matches any version.
type Suppression struct {
	Artifact string `json:"artifact"`
	Versions string `json:"versions,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Input is the normalized view of the world the analyzer operates on.
type Input struct {
	Dependencies []Dependency
	Findings     []Finding
}

// Result is the analyzed graph.
type Result struct {
	// Artifacts holds every node ordered by key.
	Artifacts   []*graph.Artifact
	Diagnostics Diagnostics
	Stats       Stats
}

// Diagnostics captures recoverable conditions met during analysis.
type Diagnostics struct {
	// OrphanFindings lists artifacts that had findings but no known users at
	// the time the findings were recorded.
	OrphanFindings     []string
	SuppressedFindings []SuppressedFinding
}

type SuppressedFinding struct {
	Artifact string `json:"artifact"`
	Count    int    `json:"count"`
	Reason   string `json:"reason,omitempty"`
}

type Stats struct {
	Artifacts  int `json:"artifacts"`
	Internal   int `json:"internal"`
	Vulnerable int `json:"vulnerable"`
	Findings   int `json:"findings"`
	// Implicated counts internal artifacts with an assigned tier.
	Implicated int `json:"implicated"`
	Tiers      int `json:"tiers"`
}

// Implicated returns the artifacts with an assigned tier, in key order.
func (r Result) Implicated() []*graph.Artifact {
	var out []*graph.Artifact
	for _, a := range r.Artifacts {
		if a.Tier() != graph.Unassigned {
			out = append(out, a)
		}
	}
	return out
}
