package graph

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bayleafwalker/ariadne/internal/coordinate"
)

type fixture struct {
	t        *testing.T
	g        *Graph
	internal map[string]bool
}

func newFixture(t *testing.T, internal ...string) *fixture {
	t.Helper()
	f := &fixture{t: t, g: New(), internal: map[string]bool{}}
	for _, n := range internal {
		f.internal[n] = true
	}
	return f
}

func (f *fixture) node(coord string) *Artifact {
	f.t.Helper()
	name, v, err := coordinate.Split(coord)
	if err != nil {
		f.t.Fatalf("split %q: %v", coord, err)
	}
	if a, ok := f.g.Get(coord); ok {
		return a
	}
	if a, ok := f.g.Get(name); ok && a.IsInternal() {
		if err := a.AddVersion(v); err != nil {
			f.t.Fatalf("add version: %v", err)
		}
		return a
	}
	var a *Artifact
	if f.internal[name] {
		a, err = NewInternal(coord)
	} else {
		a, err = NewExternal(coord)
	}
	if err != nil {
		f.t.Fatalf("new artifact %q: %v", coord, err)
	}
	if err := f.g.Add(a); err != nil {
		f.t.Fatalf("add %q: %v", coord, err)
	}
	return a
}

func (f *fixture) edge(parent, child string) {
	f.t.Helper()
	p := f.node(parent)
	c := f.node(child)
	_, pv, _ := coordinate.Split(parent)
	_, cv, _ := coordinate.Split(child)
	if err := f.g.AddEdge(p.Name(), pv, c.Name(), cv); err != nil {
		f.t.Fatalf("edge %s -> %s: %v", parent, child, err)
	}
}

func (f *fixture) findings(coord string, n int) {
	f.t.Helper()
	if err := f.node(coord).AddFindings(n); err != nil {
		f.t.Fatalf("findings %q: %v", coord, err)
	}
}

func (f *fixture) run() {
	f.g.FindCycles()
	f.g.AssignTiers()
}

type outcome struct {
	Tier     int
	Internal []string
	External map[string][]string
}

func snapshot(g *Graph) map[string]outcome {
	out := map[string]outcome{}
	for _, a := range g.Artifacts() {
		if !a.IsInternal() {
			continue
		}
		out[a.Name()] = outcome{
			Tier:     a.Tier(),
			Internal: a.InternalUpgrades(),
			External: a.ExternalUpgrades(),
		}
	}
	return out
}

const (
	a = "com.acme:a"
	b = "com.acme:b"
	c = "com.acme:c"
	d = "com.acme:d"
)

func TestAssignTiers_LinearChain(t *testing.T) {
	f := newFixture(t, a, b)
	f.edge("com.acme:a:1.0", "com.acme:b:1.0")
	f.edge("com.acme:b:1.0", "org.lib:c:1.0")
	f.findings("org.lib:c:1.0", 1)
	f.run()

	want := map[string]outcome{
		a: {Tier: 1, Internal: []string{b}},
		b: {Tier: 0, External: map[string][]string{"org.lib:c:1.0": {"org.lib:c:1.0"}}},
	}
	if diff := cmp.Diff(want, snapshot(f.g)); diff != "" {
		t.Fatalf("unexpected outcome (-want +got):\n%s", diff)
	}
	if got := f.g.TierCount(); got != 2 {
		t.Fatalf("expected 2 tiers, got %d", got)
	}
}

func TestAssignTiers_Diamond(t *testing.T) {
	for _, direct := range []bool{false, true} {
		f := newFixture(t, a, b, c)
		f.edge("com.acme:a:1.0", "com.acme:b:1.0")
		f.edge("com.acme:a:1.0", "com.acme:c:1.0")
		f.edge("com.acme:b:1.0", "org.lib:d:1.0")
		f.edge("com.acme:c:1.0", "org.lib:d:1.0")
		if direct {
			f.edge("com.acme:a:1.0", "org.lib:d:1.0")
		}
		f.findings("org.lib:d:1.0", 3)
		f.run()

		vuln := map[string][]string{"org.lib:d:1.0": {"org.lib:d:1.0"}}
		wantA := outcome{Tier: 1, Internal: []string{b, c}}
		if direct {
			wantA.External = vuln
		}
		want := map[string]outcome{
			a: wantA,
			b: {Tier: 0, External: vuln},
			c: {Tier: 0, External: vuln},
		}
		if diff := cmp.Diff(want, snapshot(f.g)); diff != "" {
			t.Fatalf("direct=%v: unexpected outcome (-want +got):\n%s", direct, diff)
		}
	}
}

func TestAssignTiers_FanInTakesDeepestTier(t *testing.T) {
	f := newFixture(t, a, b, c)
	f.edge("com.acme:a:1.0", "com.acme:b:1.0")
	f.edge("com.acme:a:1.0", "com.acme:c:1.0")
	f.edge("com.acme:b:1.0", "com.acme:c:1.0")
	f.edge("com.acme:c:1.0", "org.lib:d:1.0")
	f.findings("org.lib:d:1.0", 1)
	f.run()

	got := snapshot(f.g)
	if got[a].Tier != 2 {
		t.Fatalf("expected a at tier 2, got %d", got[a].Tier)
	}
	if diff := cmp.Diff([]string{b, c}, got[a].Internal); diff != "" {
		t.Fatalf("unexpected internal upgrades for a (-want +got):\n%s", diff)
	}
}

func TestAssignTiers_CycleSharesTier(t *testing.T) {
	f := newFixture(t, a, b, c)
	f.edge("com.acme:a:1.0", "com.acme:b:1.0")
	f.edge("com.acme:b:1.0", "com.acme:c:1.0")
	f.edge("com.acme:c:1.0", "com.acme:a:1.0")
	f.edge("com.acme:c:1.0", "org.lib:d:1.0")
	f.findings("org.lib:d:1.0", 1)
	f.run()

	for _, key := range []string{a, b, c} {
		art, _ := f.g.Get(key)
		if art.Tier() != 0 {
			t.Fatalf("expected %s at tier 0, got %d", key, art.Tier())
		}
	}
	cArt, _ := f.g.Get(c)
	if diff := cmp.Diff([]string{a, b}, cArt.CycleMembers()); diff != "" {
		t.Fatalf("unexpected cycle members for c (-want +got):\n%s", diff)
	}
}

func TestAssignTiers_LoopAboveInternalDependency(t *testing.T) {
	f := newFixture(t, a, b, c, d)
	f.edge("com.acme:a:1.0", "com.acme:b:1.0")
	f.edge("com.acme:b:1.0", "com.acme:c:1.0")
	f.edge("com.acme:c:1.0", "com.acme:a:1.0")
	f.edge("com.acme:c:1.0", "com.acme:d:1.0")
	f.edge("com.acme:d:1.0", "org.lib:e:1.0")
	f.findings("org.lib:e:1.0", 2)
	f.run()

	want := map[string]outcome{
		a: {Tier: 1, Internal: []string{b}},
		b: {Tier: 1, Internal: []string{c}},
		c: {Tier: 1, Internal: []string{a, d}},
		d: {Tier: 0, External: map[string][]string{"org.lib:e:1.0": {"org.lib:e:1.0"}}},
	}
	if diff := cmp.Diff(want, snapshot(f.g)); diff != "" {
		t.Fatalf("unexpected outcome (-want +got):\n%s", diff)
	}
}

func TestAssignTiers_StaleVersionExcluded(t *testing.T) {
	f := newFixture(t, a)
	f.edge("com.acme:a:1.0", "org.lib:d:1.0")
	f.edge("com.acme:a:2.0", "org.lib:x:1.0")
	f.findings("org.lib:d:1.0", 1)
	f.run()

	want := map[string]outcome{a: {Tier: Unassigned}}
	if diff := cmp.Diff(want, snapshot(f.g)); diff != "" {
		t.Fatalf("unexpected outcome (-want +got):\n%s", diff)
	}
	if got := f.g.TierCount(); got != 0 {
		t.Fatalf("expected no tiers, got %d", got)
	}
}

func TestAssignTiers_IndependentVulnerabilities(t *testing.T) {
	f := newFixture(t, a)
	f.edge("com.acme:a:1.0", "org.lib:x:1.0")
	f.edge("com.acme:a:1.0", "org.lib:y:1.0")
	f.edge("com.acme:a:1.0", "org.lib:l:1.0")
	f.edge("org.lib:l:1.0", "org.lib:v1:1.0")
	f.edge("org.lib:l:1.0", "org.lib:v2:1.0")
	for _, coord := range []string{"org.lib:x:1.0", "org.lib:y:1.0", "org.lib:v1:1.0", "org.lib:v2:1.0"} {
		f.findings(coord, 1)
	}
	f.run()

	want := map[string]outcome{
		a: {Tier: 0, External: map[string][]string{
			"org.lib:l:1.0": {"org.lib:v1:1.0", "org.lib:v2:1.0"},
			"org.lib:x:1.0": {"org.lib:x:1.0"},
			"org.lib:y:1.0": {"org.lib:y:1.0"},
		}},
	}
	if diff := cmp.Diff(want, snapshot(f.g)); diff != "" {
		t.Fatalf("unexpected outcome (-want +got):\n%s", diff)
	}
}

func TestAssignTiers_ExternalCycleTerminates(t *testing.T) {
	f := newFixture(t, a)
	f.edge("com.acme:a:1.0", "org.lib:x:1.0")
	f.edge("org.lib:x:1.0", "org.lib:y:1.0")
	f.edge("org.lib:y:1.0", "org.lib:x:1.0")
	f.findings("org.lib:y:1.0", 1)
	f.run()

	want := map[string]outcome{
		a: {Tier: 0, External: map[string][]string{"org.lib:x:1.0": {"org.lib:y:1.0"}}},
	}
	if diff := cmp.Diff(want, snapshot(f.g)); diff != "" {
		t.Fatalf("unexpected outcome (-want +got):\n%s", diff)
	}
}

func TestFindCycles_IgnoresStaleEdges(t *testing.T) {
	f := newFixture(t, a, b)
	f.edge("com.acme:a:1.0", "com.acme:b:1.0")
	f.edge("com.acme:b:1.0", "com.acme:a:1.0")
	f.node("com.acme:a:2.0")
	f.g.FindCycles()

	for _, key := range []string{a, b} {
		art, _ := f.g.Get(key)
		if got := art.CycleMembers(); len(got) != 0 {
			t.Fatalf("expected no cycle members for %s, got %v", key, got)
		}
	}
}

func TestEdgesAreMirrored(t *testing.T) {
	f := newFixture(t, a, b)
	f.edge("com.acme:a:1.0", "com.acme:b:1.0")
	f.edge("com.acme:a:2.0", "org.lib:x:1.0")
	f.edge("com.acme:b:1.0", "org.lib:x:1.0")

	for _, art := range f.g.Artifacts() {
		for _, p := range art.Parents() {
			parent, ok := f.g.Get(p)
			if !ok {
				t.Fatalf("parent %s of %s missing from graph", p, art.Name())
			}
			if !contains(parent.Children(), art.Name()) {
				t.Fatalf("%s lists parent %s but is not its child", art.Name(), p)
			}
		}
		for _, ch := range art.Children() {
			child, _ := f.g.Get(ch)
			if !contains(child.Parents(), art.Name()) {
				t.Fatalf("%s lists child %s but is not its parent", art.Name(), ch)
			}
		}
	}

	x, _ := f.g.Get("org.lib:x:1.0")
	if got := x.Connections(); got != 2 {
		t.Fatalf("expected 2 connections on x, got %d", got)
	}
	aArt, _ := f.g.Get(a)
	if v, _ := aArt.Version("1.0"); !v.HasChild(b) || v.HasChild("org.lib:x:1.0") {
		t.Fatalf("version 1.0 of a has unexpected children %v", v.Children())
	}
}

func TestWrongKindOperations(t *testing.T) {
	f := newFixture(t, a)
	f.edge("com.acme:a:1.0", "org.lib:x:1.0")
	internal, _ := f.g.Get(a)
	external, _ := f.g.Get("org.lib:x:1.0")

	if err := internal.AddFindings(1); !errors.Is(err, ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable adding findings to internal, got %v", err)
	}
	if err := external.AddVersion("2.0"); !errors.Is(err, ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable adding version to external, got %v", err)
	}
	if err := f.g.AssignTiersFrom(a); !errors.Is(err, ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable starting tiers from internal, got %v", err)
	}
	if err := f.g.FindCyclesFrom("org.lib:x:1.0"); !errors.Is(err, ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable finding cycles from external, got %v", err)
	}
	if err := f.g.AssignTiersFrom("org.lib:nope:1.0"); !errors.Is(err, ErrUnknownArtifact) {
		t.Fatalf("expected ErrUnknownArtifact, got %v", err)
	}
	if err := f.g.AddEdge(a, "9.9", "org.lib:x:1.0", "1.0"); !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion, got %v", err)
	}
	if err := f.g.Add(external); !errors.Is(err, ErrDuplicateArtifact) {
		t.Fatalf("expected ErrDuplicateArtifact, got %v", err)
	}
}

func TestLatestVersion(t *testing.T) {
	f := newFixture(t, a)
	f.node("com.acme:a:1.0-SNAPSHOT")
	f.node("com.acme:a:1.0")
	f.node("com.acme:a:0.9")
	art, _ := f.g.Get(a)

	if got := art.Latest().String(); got != "1.0" {
		t.Fatalf("expected latest 1.0, got %q", got)
	}
	if diff := cmp.Diff([]string{"1.0", "1.0-SNAPSHOT", "0.9"}, art.Versions()); diff != "" {
		t.Fatalf("unexpected versions (-want +got):\n%s", diff)
	}
}

func TestAnalysisIsDeterministic(t *testing.T) {
	edges := [][2]string{
		{"com.acme:a:1.0", "com.acme:b:1.0"},
		{"com.acme:b:1.0", "com.acme:c:1.0"},
		{"com.acme:c:1.0", "com.acme:a:1.0"},
		{"com.acme:c:1.0", "org.lib:x:1.0"},
		{"com.acme:a:1.0", "org.lib:y:2.0"},
		{"com.acme:d:1.0", "com.acme:a:1.0"},
		{"com.acme:d:1.0", "org.lib:x:1.0"},
		{"org.lib:y:2.0", "org.lib:x:1.0"},
	}

	build := func(order []int) map[string]outcome {
		f := newFixture(t, a, b, c, d)
		for _, i := range order {
			f.edge(edges[i][0], edges[i][1])
		}
		f.findings("org.lib:x:1.0", 1)
		f.findings("org.lib:y:2.0", 4)
		f.run()
		return snapshot(f.g)
	}

	base := make([]int, len(edges))
	for i := range base {
		base[i] = i
	}
	want := build(base)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		order := rng.Perm(len(edges))
		if diff := cmp.Diff(want, build(order)); diff != "" {
			t.Fatalf("order %v changed the outcome (-want +got):\n%s", order, diff)
		}
	}
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
