package e2e

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestE2ESmoke_SampleAnalysis(t *testing.T) {
	if os.Getenv("ARIADNE_E2E") == "" {
		t.Skip("set ARIADNE_E2E=1 to run the CLI smoke test")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go not found in PATH")
	}

	repoRoot := findRepoRoot(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	work := t.TempDir()
	bin := filepath.Join(work, "ariadne")
	runOrFail(t, ctx, repoRoot, nil, "go", "build", "-o", bin, "./cmd/ariadne")

	out := filepath.Join(work, "out")
	metrics := filepath.Join(work, "ariadne.prom")
	stdout := runOrFail(t, ctx, repoRoot, nil, bin, "analyze",
		"--config", filepath.Join(repoRoot, "examples", "sample", "ariadne.yaml"),
		"--out", out,
		"--metrics-file", metrics,
	)
	if !strings.Contains(stdout, "4 artifacts to update in 3 tiers") {
		t.Fatalf("unexpected CLI output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "vulnerability not found in dependency graph") {
		t.Fatalf("expected orphan finding to be logged:\n%s", stdout)
	}

	tiers := readCSV(t, filepath.Join(out, "tiers.csv"))
	got := map[string]string{}
	for _, row := range tiers[1:] {
		got[row[0]] = row[1]
	}
	want := map[string]string{
		"com.acme.platform:billing-api":     "2",
		"com.acme.platform:billing-core":    "1",
		"com.acme.platform:common-util":     "0",
		"com.acme.platform:reports-service": "1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected tiers (-want +got):\n%s", diff)
	}

	for _, name := range []string{"dependencies.csv", "vulnerabilities.csv"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	prom, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("read metrics file: %v", err)
	}
	if !strings.Contains(string(prom), "ariadne_analysis_implicated_artifacts 4") {
		t.Fatalf("unexpected metrics file:\n%s", prom)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if len(rows) == 0 {
		t.Fatalf("%s is empty", path)
	}
	return rows
}

func findRepoRoot(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// e2e/smoke_test.go -> repo root
	return filepath.Clean(filepath.Join(filepath.Dir(file), ".."))
}

func runOrFail(t *testing.T, ctx context.Context, dir string, env []string, name string, args ...string) string {
	t.Helper()

	out, err := runOut(ctx, dir, env, name, args...)
	if err != nil {
		t.Fatalf("%s %s failed: %v\n%s", name, strings.Join(args, " "), err, out)
	}
	return out
}

func runOut(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}
