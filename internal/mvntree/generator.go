// Package mvntree generates Maven dependency trees for a directory of projects
// so they can be fed to the mvn-tree reader.
package mvntree

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-logr/logr"
)

const (
	DefaultMaxDepth = 4
	ParentsFile     = "parents.txt"

	pomFile = "pom.xml"
	mvn     = "mvn"
)

// Generator walks a projects directory and runs Maven in every project it finds.
type Generator struct {
	// OutputDir receives one <project>.txt tree per project plus parents.txt.
	OutputDir string
	MaxDepth  int
	// DefaultOption is an extra Maven argument, such as "-Dversion=foo".
	DefaultOption string
	// SpecialOptions overrides DefaultOption per project directory name.
	SpecialOptions map[string]string

	Runner Runner
	Logger logr.Logger
}

// ParseSpecialOptions reads "project,option" pairs. A bare project name maps
// to no option.
func ParseSpecialOptions(values []string) map[string]string {
	out := map[string]string{}
	for _, v := range values {
		project, option, _ := strings.Cut(v, ",")
		if project = strings.TrimSpace(project); project != "" {
			out[project] = strings.TrimSpace(option)
		}
	}
	return out
}

// Generate builds every dependency tree and then records parent POM links.
func (g *Generator) Generate(ctx context.Context, projectsDir string) error {
	info, err := os.Stat(projectsDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("projects directory %q is not a directory", projectsDir)
	}
	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	g.BuildTrees(ctx, projectsDir, 0)
	return g.IdentifyParents(ctx, projectsDir, 0)
}

// BuildTrees runs `mvn dependency:tree` in each project directory up to
// MaxDepth levels below dir. Directories without a POM are searched further.
func (g *Generator) BuildTrees(ctx context.Context, dir string, depth int) {
	entries, ok := g.listDir(dir, depth)
	if !ok {
		return
	}
	if !hasPOM(entries) {
		if depth == 1 {
			g.Logger.Info("no POM file", "dir", dir)
		}
		for _, e := range entries {
			if ctx.Err() != nil {
				return
			}
			g.BuildTrees(ctx, filepath.Join(dir, e.Name()), depth+1)
		}
		return
	}

	out, err := filepath.Abs(filepath.Join(g.OutputDir, filepath.Base(dir)+".txt"))
	if err != nil {
		g.Logger.Error(err, "resolve output path", "dir", dir)
		return
	}
	args := g.withOption(dir, "dependency:tree", "-DappendOutput=true", "-DoutputFile="+out)
	if _, err := g.Runner.Run(ctx, dir, mvn, args...); err != nil {
		if depth == 1 {
			g.Logger.Info("build failed", "dir", dir, "error", err.Error())
		}
		return
	}
	g.Logger.Info("build succeeded", "dir", dir, "output", out)
}

// IdentifyParents records a `child` / `\- parent` pair in parents.txt for
// every project whose POM declares a parent.
func (g *Generator) IdentifyParents(ctx context.Context, dir string, depth int) error {
	entries, ok := g.listDir(dir, depth)
	if !ok {
		return nil
	}
	if hasPOM(entries) {
		if err := g.identifyParent(ctx, dir); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.IdentifyParents(ctx, filepath.Join(dir, e.Name()), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) identifyParent(ctx context.Context, dir string) error {
	parentGroup := g.evaluate(ctx, dir, "project.parent.groupId")
	if !validExpression(parentGroup) {
		return nil
	}
	parent := strings.Join([]string{
		parentGroup,
		g.evaluate(ctx, dir, "project.parent.artifactId"),
		g.evaluate(ctx, dir, "project.parent.version"),
	}, ":")
	child := strings.Join([]string{
		g.evaluate(ctx, dir, "project.groupId"),
		g.evaluate(ctx, dir, "project.artifactId"),
		g.evaluate(ctx, dir, "project.version"),
	}, ":")
	g.Logger.Info("parent found", "child", child, "parent", parent)
	return g.appendParent(child, parent)
}

func (g *Generator) appendParent(child, parent string) error {
	f, err := os.OpenFile(filepath.Join(g.OutputDir, ParentsFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", ParentsFile, err)
	}
	if _, err := fmt.Fprintf(f, "%s\n\\- %s\n", child, parent); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", ParentsFile, err)
	}
	return f.Close()
}

// evaluate returns the first line Maven prints for expression, or "" when
// the command fails.
func (g *Generator) evaluate(ctx context.Context, dir, expression string) string {
	args := g.withOption(dir, "help:evaluate", "-Dexpression="+expression, "-q", "-DforceStdout")
	out, err := g.Runner.Run(ctx, dir, mvn, args...)
	if err != nil && len(out) == 0 {
		g.Logger.V(1).Info("evaluate failed", "dir", dir, "expression", expression, "error", err.Error())
		return ""
	}
	sc := bufio.NewScanner(bytes.NewReader(out))
	if sc.Scan() {
		return strings.TrimSpace(sc.Text())
	}
	return ""
}

func validExpression(v string) bool {
	return v != "" && v != "null object or invalid expression" && !strings.Contains(v, "[ERROR]")
}

func (g *Generator) withOption(dir string, args ...string) []string {
	option, ok := g.SpecialOptions[filepath.Base(dir)]
	if !ok {
		option = g.DefaultOption
	}
	if option != "" {
		args = append(args, option)
	}
	return args
}

func (g *Generator) listDir(dir string, depth int) ([]os.DirEntry, bool) {
	maxDepth := g.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	if depth > maxDepth {
		return nil, false
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		g.Logger.V(1).Info("read directory failed", "dir", dir, "error", err.Error())
		return nil, false
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, true
}

func hasPOM(entries []os.DirEntry) bool {
	for _, e := range entries {
		if e.Name() == pomFile && !e.IsDir() {
			return true
		}
	}
	return false
}
