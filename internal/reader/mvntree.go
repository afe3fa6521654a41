package reader

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
)

var (
	reDirect     = regexp.MustCompile(`^[+\\]- `)
	reTransitive = regexp.MustCompile(`^(\|  |   )`)
)

// MavenTree reads `mvn dependency:tree` output. A file may hold several trees
// one after another.
type MavenTree struct {
	Logger logr.Logger
}

func (m *MavenTree) ParseDependencies(r io.Reader) ([]analyzer.Dependency, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m.parseTree(lines, 1)
}

// parseTree walks one indentation level. Lines at the top of the level are
// parents, marked lines are their direct children, and indented lines belong
// to the subtree of the preceding child and are parsed one level down.
func (m *MavenTree) parseTree(tree []string, depth int) ([]analyzer.Dependency, error) {
	var (
		deps    []analyzer.Dependency
		parent  string
		subtree []string
	)
	flush := func() error {
		if len(subtree) > 1 {
			sub, err := m.parseTree(subtree, depth+1)
			if err != nil {
				return err
			}
			deps = append(deps, sub...)
		}
		return nil
	}

	for _, line := range tree {
		switch {
		case reDirect.MatchString(line):
			if err := flush(); err != nil {
				return nil, err
			}
			if parent == "" {
				return nil, fmt.Errorf("%w: dependency %q has no parent (depth %d)", ErrMalformedRow, line, depth)
			}
			child := line[3:]
			subtree = []string{child}
			deps = append(deps, analyzer.Dependency{Parent: parent, Child: mavenCoordinate(child)})
		case reTransitive.MatchString(line):
			subtree = append(subtree, line[3:])
		default:
			if err := flush(); err != nil {
				return nil, err
			}
			subtree = nil
			parent = mavenCoordinate(line)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return deps, nil
}

// mavenCoordinate reduces group:name:packaging:version[:scope] to
// group:name:version. Three-part coordinates are already reduced.
func mavenCoordinate(s string) string {
	s = strings.TrimSpace(s)
	// Verbose trees annotate entries, e.g. "(version managed from 1.0)".
	if i := strings.Index(s, " ("); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ":")
	switch {
	case len(parts) >= 6:
		// group:name:packaging:classifier:version:scope
		return strings.Join([]string{parts[0], parts[1], parts[4]}, ":")
	case len(parts) >= 4:
		return strings.Join([]string{parts[0], parts[1], parts[3]}, ":")
	default:
		return s
	}
}
