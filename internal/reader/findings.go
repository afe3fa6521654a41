package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
)

// FindingsCSV reads coordinate,count rows. An optional header row starting
// with "artifact" is skipped.
type FindingsCSV struct {
	Logger logr.Logger
}

func (f *FindingsCSV) ParseFindings(r io.Reader) ([]analyzer.Finding, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []analyzer.Finding
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 2 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 2", ErrMalformedRow, line, len(rec))
		}
		if strings.EqualFold(strings.TrimSpace(rec[0]), "artifact") {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("%w: line %d: count %q is not a non-negative integer", ErrMalformedRow, line, rec[1])
		}
		coord, err := normalize(f.Logger, rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, analyzer.Finding{Artifact: coord, Count: count})
	}
	return out, nil
}
