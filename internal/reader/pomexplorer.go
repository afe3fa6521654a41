package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
	"github.com/bayleafwalker/ariadne/internal/coordinate"
)

// PomExplorer reads the CSV edge export of pom-explorer: from,<relation>,to.
type PomExplorer struct {
	Logger logr.Logger
}

func (p *PomExplorer) ParseDependencies(r io.Reader) ([]analyzer.Dependency, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var deps []analyzer.Dependency
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 3 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 3", ErrMalformedRow, line, len(rec))
		}
		if strings.TrimSpace(rec[0]) == "from" {
			continue
		}
		parent, err := normalize(p.Logger, rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		child, err := normalize(p.Logger, rec[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		deps = append(deps, analyzer.Dependency{Parent: parent, Child: child})
	}
	return deps, nil
}

func normalize(log logr.Logger, raw string) (string, error) {
	c, fixups, err := coordinate.Normalize(raw)
	if err != nil {
		return "", err
	}
	for _, f := range fixups {
		log.V(1).Info("coordinate normalized", "input", raw, "fixup", string(f), "coordinate", c.String())
	}
	return c.String(), nil
}
