package version

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "identical", a: "1.0", b: "1.0", want: 0},
		{name: "higher minor first", a: "1.1", b: "1.0", want: -1},
		{name: "lower major last", a: "1.9", b: "2.0", want: 1},
		{name: "numeric not lexical", a: "1.10", b: "1.9", want: -1},
		{name: "more components wins tie", a: "1.0.1", b: "1.0", want: -1},
		{name: "fewer components loses tie", a: "1.0", b: "1.0.2", want: 1},
		{name: "leading zeros are numeric", a: "1.01", b: "1.1", want: 0},
		{name: "numeric before lexical", a: "1.2", b: "foo", want: -1},
		{name: "lexical after numeric", a: "foo", b: "1.2", want: 1},
		{name: "neither numeric reverse lexical", a: "foo", b: "bar", want: -1},
		{name: "release before build", a: "1.0", b: "1.0-1", want: -1},
		{name: "build after release", a: "1.10-5", b: "1.10", want: 1},
		{name: "equal builds", a: "1.0-1", b: "1.0-1", want: 0},
		{name: "snapshot after build", a: "1.0-SNAPSHOT", b: "1.0-1", want: 1},
		{name: "build before snapshot", a: "1.0-7", b: "1.0-SNAPSHOT", want: -1},
		{name: "higher build first", a: "1.0-12", b: "1.0-7", want: -1},
		{name: "integer build before named build", a: "1.0-3", b: "1.0-beta", want: -1},
		{name: "named builds reverse lexical", a: "1.0-alpha", b: "1.0-beta", want: 1},
		{name: "prefix decides before suffix", a: "1.1-SNAPSHOT", b: "1.0", want: -1},
		{name: "huge build numbers", a: "1.0-123456789012345678901234567890", b: "1.0-99", want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Fatalf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompare_AntisymmetricAndTransitive(t *testing.T) {
	versions := []string{
		"1.0", "1.0.0", "1.0.1", "1.1", "2", "1.0-1", "1.0-2", "1.0-SNAPSHOT",
		"1.0-beta", "1.0-1-SNAPSHOT", "foo", "bar", "1.x", "", "10.0-3", "1.01",
	}
	for _, a := range versions {
		for _, b := range versions {
			if Compare(a, b) != -Compare(b, a) {
				t.Fatalf("Compare not antisymmetric for %q, %q", a, b)
			}
			for _, c := range versions {
				if Compare(a, b) <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
					t.Fatalf("Compare not transitive for %q <= %q <= %q", a, b, c)
				}
			}
		}
	}
}

func TestSnapshotOrdersAfterRelease(t *testing.T) {
	pairs := []struct{ snapshot, release string }{
		{snapshot: "1.0-SNAPSHOT", release: "1.0"},
		{snapshot: "2.3.4-SNAPSHOT", release: "2.3.4"},
		{snapshot: "1.0-SNAPSHOT", release: "1.0-4"},
	}
	for _, p := range pairs {
		if Compare(p.snapshot, p.release) <= 0 {
			t.Fatalf("expected %q to order after %q", p.snapshot, p.release)
		}
	}
}

func TestSort(t *testing.T) {
	versions := []string{"1.0-SNAPSHOT", "0.9", "foo", "1.0", "1.0-2", "1.00", "1.1"}
	Sort(versions)
	want := []string{"1.1", "1.00", "1.0", "1.0-2", "1.0-SNAPSHOT", "0.9", "foo"}
	if diff := cmp.Diff(want, versions); diff != "" {
		t.Fatalf("Sort mismatch (-want +got):\n%s", diff)
	}
}

func TestLatest(t *testing.T) {
	if _, ok := Latest(nil); ok {
		t.Fatalf("expected no latest version for empty input")
	}
	got, ok := Latest([]string{"1.0-SNAPSHOT", "1.0", "0.9"})
	if !ok || got != "1.0" {
		t.Fatalf("Latest = %q, %v; want 1.0", got, ok)
	}
	// Equal versions resolve the same way regardless of input order.
	a, _ := Latest([]string{"1.0", "1.00"})
	b, _ := Latest([]string{"1.00", "1.0"})
	if a != b {
		t.Fatalf("Latest depends on input order: %q vs %q", a, b)
	}
}

func TestIsSnapshot(t *testing.T) {
	if !IsSnapshot("1.0-SNAPSHOT") {
		t.Fatalf("expected 1.0-SNAPSHOT to be a snapshot")
	}
	if IsSnapshot("1.0") || IsSnapshot("SNAPSHOT") {
		t.Fatalf("expected versions without a build suffix not to be snapshots")
	}
}
