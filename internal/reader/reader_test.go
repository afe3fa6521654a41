package reader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
	"github.com/bayleafwalker/ariadne/internal/coordinate"
)

const appTree = `com.acme:app:jar:1.0
+- com.acme:lib:jar:1.0:compile
|  +- org.lib:x:jar:2.0:compile
|  |  \- org.lib:y:jar:3.0:compile
|  \- org.lib:z:jar:1.1:runtime
\- junit:junit:jar:4.12:test
   \- org.hamcrest:hamcrest-core:jar:1.3:test
`

func dep(parent, child string) analyzer.Dependency {
	return analyzer.Dependency{Parent: parent, Child: child}
}

func TestMavenTree_ParseDependencies(t *testing.T) {
	m := &MavenTree{}
	got, err := m.ParseDependencies(strings.NewReader(appTree))
	if err != nil {
		t.Fatalf("ParseDependencies error: %v", err)
	}
	want := []analyzer.Dependency{
		dep("com.acme:app:1.0", "com.acme:lib:1.0"),
		dep("com.acme:lib:1.0", "org.lib:x:2.0"),
		dep("org.lib:x:2.0", "org.lib:y:3.0"),
		dep("com.acme:lib:1.0", "org.lib:z:1.1"),
		dep("com.acme:app:1.0", "junit:junit:4.12"),
		dep("junit:junit:4.12", "org.hamcrest:hamcrest-core:1.3"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}
}

func TestMavenTree_MultipleTreesAndParents(t *testing.T) {
	in := `com.acme:a:jar:1.0

+- org.lib:x:jar:1.0:compile
com.acme:b:pom:2.0-SNAPSHOT
\- com.acme:a:jar:1.0:compile
   \- org.lib:x:jar:1.0:compile
com.acme:child:1.0
\- com.acme:parent:3
`
	got, err := (&MavenTree{}).ParseDependencies(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseDependencies error: %v", err)
	}
	want := []analyzer.Dependency{
		dep("com.acme:a:1.0", "org.lib:x:1.0"),
		dep("com.acme:b:2.0-SNAPSHOT", "com.acme:a:1.0"),
		dep("com.acme:a:1.0", "org.lib:x:1.0"),
		dep("com.acme:child:1.0", "com.acme:parent:3"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}
}

func TestMavenTree_DependencyWithoutParent(t *testing.T) {
	_, err := (&MavenTree{}).ParseDependencies(strings.NewReader("+- org.lib:x:jar:1.0:compile\n"))
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
}

func TestMavenCoordinate(t *testing.T) {
	cases := map[string]string{
		"org.lib:x:jar:1.0:compile":                              "org.lib:x:1.0",
		"org.lib:x:jar:1.0":                                      "org.lib:x:1.0",
		"org.lib:x:jar:linux-x86_64:1.0:runtime":                 "org.lib:x:1.0",
		"org.lib:x:1.0":                                          "org.lib:x:1.0",
		" org.lib:x:jar:1.0:compile (version managed from 0.9) ": "org.lib:x:1.0",
	}
	for in, want := range cases {
		if got := mavenCoordinate(in); got != want {
			t.Fatalf("mavenCoordinate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPomExplorer_ParseDependencies(t *testing.T) {
	in := `from,relation,to
com.acme:app:1.0,depends,com.acme:lib:1.0
com.acme lib 2.0,depends,org.lib:x:jar:1.0
commons-io:2.6, depends, org.lib:y
`
	got, err := (&PomExplorer{Logger: logr.Discard()}).ParseDependencies(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseDependencies error: %v", err)
	}
	want := []analyzer.Dependency{
		dep("com.acme:app:1.0", "com.acme:lib:1.0"),
		dep("com.acme:lib:2.0", "org.lib:x:jar:1.0"),
		dep("commons-io:commons-io:2.6", "org.lib:y:null"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}
}

func TestPomExplorer_Errors(t *testing.T) {
	p := &PomExplorer{}
	if _, err := p.ParseDependencies(strings.NewReader("a:b:1,c\n")); !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow for short row, got %v", err)
	}
	if _, err := p.ParseDependencies(strings.NewReader("lonely,depends,a:b:1\n")); !errors.Is(err, coordinate.ErrMalformed) {
		t.Fatalf("expected ErrMalformed for bad coordinate, got %v", err)
	}
}

func TestFindingsCSV_ParseFindings(t *testing.T) {
	in := `artifact,count
org.lib:x:1.0,3
org.lib:y:jar:2.0, 0
`
	got, err := (&FindingsCSV{}).ParseFindings(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseFindings error: %v", err)
	}
	want := []analyzer.Finding{
		{Artifact: "org.lib:x:1.0", Count: 3},
		{Artifact: "org.lib:y:jar:2.0", Count: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected findings (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"org.lib:x:1.0,-1\n", "org.lib:x:1.0,many\n", "org.lib:x:1.0\n"} {
		if _, err := (&FindingsCSV{}).ParseFindings(strings.NewReader(bad)); !errors.Is(err, ErrMalformedRow) {
			t.Fatalf("expected ErrMalformedRow for %q, got %v", bad, err)
		}
	}
}

func TestReadDependencies_Directory(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "b.txt"), "com.acme:b:jar:1.0\n\\- org.lib:y:jar:1.0:compile\n")
	write(t, filepath.Join(dir, "a.txt"), "com.acme:a:jar:1.0\n\\- org.lib:x:jar:1.0:compile\n")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ReadDependencies(FormatMavenTree, dir, logr.Discard())
	if err != nil {
		t.Fatalf("ReadDependencies error: %v", err)
	}
	want := []analyzer.Dependency{
		dep("com.acme:a:1.0", "org.lib:x:1.0"),
		dep("com.acme:b:1.0", "org.lib:y:1.0"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	findings := filepath.Join(dir, "findings.csv")
	write(t, findings, "org.lib:x:1.0,1\n")

	if _, err := ReadDependencies("gradle", dir, logr.Discard()); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := ReadFindings("sarif", findings, logr.Discard()); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := ReadDependencies(FormatPomExplorer, dir, logr.Discard()); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for directory, got %v", err)
	}
	if _, err := ReadFindings(FormatFindingsCSV, filepath.Join(dir, "missing.csv"), logr.Discard()); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for missing file, got %v", err)
	}

	got, err := ReadFindings(FormatFindingsCSV, findings, logr.Discard())
	if err != nil {
		t.Fatalf("ReadFindings error: %v", err)
	}
	if len(got) != 1 || got[0].Count != 1 {
		t.Fatalf("unexpected findings %+v", got)
	}
}

func TestParseSource(t *testing.T) {
	format, path, err := ParseSource("mvn-tree = trees/")
	if err != nil {
		t.Fatalf("ParseSource error: %v", err)
	}
	if format != FormatMavenTree || path != "trees/" {
		t.Fatalf("unexpected source %q %q", format, path)
	}
	for _, bad := range []string{"trees/", "=trees/", "mvn-tree="} {
		if _, _, err := ParseSource(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
