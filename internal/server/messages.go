package server

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
	"github.com/bayleafwalker/ariadne/internal/graph"
)

// Request is the shape of an Analyze request.
type Request struct {
	InternalIdentifiers []string               `json:"internalIdentifiers"`
	Suppressions        []analyzer.Suppression `json:"suppressions,omitempty"`
	// Dependencies holds [parent, child] coordinate pairs.
	Dependencies [][2]string `json:"dependencies"`
	// Findings maps a coordinate to its finding count.
	Findings map[string]float64 `json:"findings,omitempty"`
}

// Response is the shape of an Analyze response.
type Response struct {
	Artifacts          []Artifact                   `json:"artifacts"`
	Stats              analyzer.Stats               `json:"stats"`
	OrphanFindings     []string                     `json:"orphanFindings,omitempty"`
	SuppressedFindings []analyzer.SuppressedFinding `json:"suppressedFindings,omitempty"`
}

type Artifact struct {
	Name             string            `json:"name"`
	Kind             string            `json:"kind"`
	Tier             int               `json:"tier"`
	Versions         []string          `json:"versions,omitempty"`
	Connections      int               `json:"connections"`
	Findings         int               `json:"findings"`
	InternalUpgrades []string          `json:"internalUpgrades,omitempty"`
	ExternalUpgrades []ExternalUpgrade `json:"externalUpgrades,omitempty"`
	CycleMembers     []string          `json:"cycleMembers,omitempty"`
}

type ExternalUpgrade struct {
	Dependency string   `json:"dependency"`
	Roots      []string `json:"roots"`
}

// Input converts the request into analyzer input. Findings are ordered by
// coordinate since the wire form is a map.
func (r Request) Input() (analyzer.Input, error) {
	var in analyzer.Input
	for _, d := range r.Dependencies {
		in.Dependencies = append(in.Dependencies, analyzer.Dependency{Parent: d[0], Child: d[1]})
	}
	coords := make([]string, 0, len(r.Findings))
	for c := range r.Findings {
		coords = append(coords, c)
	}
	sort.Strings(coords)
	for _, c := range coords {
		n := r.Findings[c]
		if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
			return analyzer.Input{}, fmt.Errorf("finding count for %s must be a non-negative integer, got %v", c, n)
		}
		in.Findings = append(in.Findings, analyzer.Finding{Artifact: c, Count: int(n)})
	}
	return in, nil
}

// NewResponse renders an analysis result.
func NewResponse(res analyzer.Result) Response {
	out := Response{
		Artifacts:          make([]Artifact, 0, len(res.Artifacts)),
		Stats:              res.Stats,
		OrphanFindings:     res.Diagnostics.OrphanFindings,
		SuppressedFindings: res.Diagnostics.SuppressedFindings,
	}
	for _, a := range res.Artifacts {
		out.Artifacts = append(out.Artifacts, artifactView(a))
	}
	return out
}

func artifactView(a *graph.Artifact) Artifact {
	v := Artifact{
		Name:             a.Name(),
		Kind:             a.Kind().String(),
		Tier:             a.Tier(),
		Versions:         a.Versions(),
		Connections:      a.Connections(),
		Findings:         a.Findings(),
		InternalUpgrades: a.InternalUpgrades(),
		CycleMembers:     a.CycleMembers(),
	}
	ext := a.ExternalUpgrades()
	deps := make([]string, 0, len(ext))
	for d := range ext {
		deps = append(deps, d)
	}
	sort.Strings(deps)
	for _, d := range deps {
		v.ExternalUpgrades = append(v.ExternalUpgrades, ExternalUpgrade{Dependency: d, Roots: ext[d]})
	}
	return v
}

// ToStruct converts a JSON-tagged value into a Struct message.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, err
	}
	return s, nil
}

// FromStruct decodes a Struct message into a JSON-tagged value.
func FromStruct(s *structpb.Struct, v any) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
