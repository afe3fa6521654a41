package graph

import (
	"fmt"

	"github.com/bayleafwalker/ariadne/internal/coordinate"
	"github.com/bayleafwalker/ariadne/internal/version"
)

// Kind distinguishes in-house artifacts from third-party ones.
type Kind int

const (
	KindExternal Kind = iota
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindExternal:
		return "external"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Unassigned is the tier of an artifact no remediation walk has reached.
const Unassigned = -1

// Artifact is a node of the dependency graph.
//
// External artifacts are keyed by their full group:name:version coordinate and
// carry findings. Internal artifacts are keyed by group:name, own one or more
// versions with their own edges, and accumulate a tier and upgrade obligations.
// Edges reference other artifacts by key; the Graph owns every node.
type Artifact struct {
	key  string
	kind Kind

	ext *externalState
	in  *internalState
}

type externalState struct {
	version  string
	findings int
	parents  nameSet
	children nameSet
}

type internalState struct {
	versions         map[string]*Version
	tier             int
	internalUpgrades nameSet
	externalUpgrades map[string]*nameSet
	cycles           nameSet
}

// Version is one version of an internal artifact with its own parent and child edges.
type Version struct {
	value    string
	parents  nameSet
	children nameSet
}

func (v *Version) String() string {
	return v.value
}

// HasChild reports whether this version depends on the artifact with the given key.
func (v *Version) HasChild(key string) bool {
	return v.children.Has(key)
}

// Parents returns the keys of artifacts that use this version.
func (v *Version) Parents() []string {
	return v.parents.Items()
}

// Children returns the keys of artifacts this version uses.
func (v *Version) Children() []string {
	return v.children.Items()
}

// NewExternal creates an external artifact for a full coordinate.
func NewExternal(coord string) (*Artifact, error) {
	_, v, err := coordinate.Split(coord)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		key:  coord,
		kind: KindExternal,
		ext:  &externalState{version: v},
	}, nil
}

// NewInternal creates an internal artifact keyed by the truncated coordinate
// and seeded with the coordinate's version.
func NewInternal(coord string) (*Artifact, error) {
	name, v, err := coordinate.Split(coord)
	if err != nil {
		return nil, err
	}
	a := &Artifact{
		key:  name,
		kind: KindInternal,
		in: &internalState{
			versions:         map[string]*Version{},
			tier:             Unassigned,
			externalUpgrades: map[string]*nameSet{},
		},
	}
	a.in.versions[v] = &Version{value: v}
	return a, nil
}

// Name returns the identity key of the artifact.
func (a *Artifact) Name() string {
	return a.key
}

func (a *Artifact) Kind() Kind {
	return a.kind
}

func (a *Artifact) IsInternal() bool {
	return a.kind == KindInternal
}

// Tier returns the remediation tier, or Unassigned. External artifacts never
// receive a tier.
func (a *Artifact) Tier() int {
	if a.in == nil {
		return Unassigned
	}
	return a.in.tier
}

// Connections returns how many artifacts use this one, summed over versions.
func (a *Artifact) Connections() int {
	if a.ext != nil {
		return a.ext.parents.Len()
	}
	n := 0
	for _, v := range a.in.versions {
		n += v.parents.Len()
	}
	return n
}

// Findings returns the accumulated finding count. Internal artifacts have none.
func (a *Artifact) Findings() int {
	if a.ext == nil {
		return 0
	}
	return a.ext.findings
}

func (a *Artifact) IsVulnerable() bool {
	return a.ext != nil && a.ext.findings > 0
}

// AddFindings adds n findings to an external artifact.
func (a *Artifact) AddFindings(n int) error {
	if a.ext == nil {
		return fmt.Errorf("%w: add findings to internal artifact %s", ErrNotApplicable, a.key)
	}
	if n < 0 {
		return fmt.Errorf("graph: negative finding count %d for %s", n, a.key)
	}
	a.ext.findings += n
	return nil
}

// Versions returns the known versions, most recent first.
func (a *Artifact) Versions() []string {
	if a.ext != nil {
		return []string{a.ext.version}
	}
	out := make([]string, 0, len(a.in.versions))
	for v := range a.in.versions {
		out = append(out, v)
	}
	version.Sort(out)
	return out
}

// AddVersion registers a version on an internal artifact. Adding an existing
// version is a no-op.
func (a *Artifact) AddVersion(v string) error {
	if a.in == nil {
		return fmt.Errorf("%w: add version to external artifact %s", ErrNotApplicable, a.key)
	}
	if _, ok := a.in.versions[v]; !ok {
		a.in.versions[v] = &Version{value: v}
	}
	return nil
}

// Version returns the named version of an internal artifact.
func (a *Artifact) Version(v string) (*Version, bool) {
	if a.in == nil {
		return nil, false
	}
	ver, ok := a.in.versions[v]
	return ver, ok
}

// Latest returns the most recent version of an internal artifact. Only its
// child edges decide whether a dependency is still live.
func (a *Artifact) Latest() *Version {
	if a.in == nil {
		return nil
	}
	vs := a.Versions()
	return a.in.versions[vs[0]]
}

// Parents returns the keys of every artifact that uses any version of this one.
func (a *Artifact) Parents() []string {
	if a.ext != nil {
		return a.ext.parents.Items()
	}
	var all nameSet
	for _, v := range a.in.versions {
		for _, p := range v.parents.items {
			all.Add(p)
		}
	}
	return all.Items()
}

// Children returns the keys of every artifact used by any version of this one.
func (a *Artifact) Children() []string {
	if a.ext != nil {
		return a.ext.children.Items()
	}
	var all nameSet
	for _, v := range a.in.versions {
		for _, c := range v.children.items {
			all.Add(c)
		}
	}
	return all.Items()
}

// InternalUpgrades returns the internal artifacts this one must pick up new
// versions of. Always empty for external artifacts.
func (a *Artifact) InternalUpgrades() []string {
	if a.in == nil {
		return nil
	}
	return a.in.internalUpgrades.Items()
}

// ExternalUpgrades maps each direct external dependency to upgrade onto the
// vulnerable root artifacts that justify the upgrade. Always empty for
// external artifacts.
func (a *Artifact) ExternalUpgrades() map[string][]string {
	if a.in == nil || len(a.in.externalUpgrades) == 0 {
		return nil
	}
	out := make(map[string][]string, len(a.in.externalUpgrades))
	for dep, roots := range a.in.externalUpgrades {
		out[dep] = roots.Items()
	}
	return out
}

// CycleMembers returns the artifacts found to be in a dependency cycle with this one.
func (a *Artifact) CycleMembers() []string {
	if a.in == nil {
		return nil
	}
	return a.in.cycles.Items()
}

func (a *Artifact) addParent(v, parent string) error {
	if a.ext != nil {
		if v != a.ext.version {
			return fmt.Errorf("%w: %s has no version %q", ErrUnknownVersion, a.key, v)
		}
		a.ext.parents.Add(parent)
		return nil
	}
	ver, ok := a.in.versions[v]
	if !ok {
		return fmt.Errorf("%w: %s has no version %q", ErrUnknownVersion, a.key, v)
	}
	ver.parents.Add(parent)
	return nil
}

func (a *Artifact) addChild(v, child string) error {
	if a.ext != nil {
		if v != a.ext.version {
			return fmt.Errorf("%w: %s has no version %q", ErrUnknownVersion, a.key, v)
		}
		a.ext.children.Add(child)
		return nil
	}
	ver, ok := a.in.versions[v]
	if !ok {
		return fmt.Errorf("%w: %s has no version %q", ErrUnknownVersion, a.key, v)
	}
	ver.children.Add(child)
	return nil
}

// orderedVersions returns the version records most recent first.
func (a *Artifact) orderedVersions() []*Version {
	vs := a.Versions()
	out := make([]*Version, 0, len(vs))
	for _, v := range vs {
		out = append(out, a.in.versions[v])
	}
	return out
}
