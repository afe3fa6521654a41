// Package coordinate parses and normalises group:name:version artifact coordinates.
package coordinate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NullVersion is substituted when a coordinate carries no version at all.
const NullVersion = "null"

// Fixup records a best-effort correction applied by Normalize.
type Fixup string

const (
	FixupSpaceSeparated Fixup = "space-separated"
	FixupMissingGroup   Fixup = "missing-group"
	FixupMissingVersion Fixup = "missing-version"
	FixupTooManyParts   Fixup = "too-many-parts"
)

// Coordinate is a fully qualified artifact coordinate.
type Coordinate struct {
	Group    string
	Artifact string
	Version  string
}

// String returns the full group:name:version form.
func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// Name returns the truncated group:name form shared by all versions.
func (c Coordinate) Name() string {
	return c.Group + ":" + c.Artifact
}

// Split separates a coordinate into its truncated name and its version at the
// last colon.
func Split(coord string) (name, version string, err error) {
	i := strings.LastIndex(coord, ":")
	if i < 0 {
		return "", "", fmt.Errorf("%w: %q has no version separator", ErrMalformed, coord)
	}
	return coord[:i], coord[i+1:], nil
}

// Normalize turns a loosely formatted coordinate into group:name:version.
//
// Parts are trimmed. A coordinate without colons is split on whitespace
// instead. Two parts become group=name when the second part starts with a
// digit, otherwise the version defaults to "null". More than three parts are
// collapsed into the name component.
func Normalize(raw string) (Coordinate, []Fixup, error) {
	parts := splitTrim(raw, ":")
	var fixups []Fixup
	for len(parts) != 3 {
		switch {
		case len(parts) <= 1:
			if len(fixups) > 0 {
				return Coordinate{}, fixups, fmt.Errorf("%w: %q", ErrMalformed, raw)
			}
			parts = strings.Fields(raw)
			if len(parts) <= 1 {
				return Coordinate{}, nil, fmt.Errorf("%w: %q", ErrMalformed, raw)
			}
			fixups = append(fixups, FixupSpaceSeparated)
		case len(parts) == 2:
			if startsWithDigit(parts[1]) {
				parts = []string{parts[0], parts[0], parts[1]}
				fixups = append(fixups, FixupMissingGroup)
			} else {
				parts = []string{parts[0], parts[1], NullVersion}
				fixups = append(fixups, FixupMissingVersion)
			}
		default:
			parts = []string{
				parts[0],
				strings.Join(parts[1:len(parts)-1], ":"),
				parts[len(parts)-1],
			}
			fixups = append(fixups, FixupTooManyParts)
		}
	}
	return Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2]}, fixups, nil
}

// DisplayName renders the artifact id of a group:name pair as title-cased
// words, e.g. "org.example:commons-text" becomes "Commons Text".
func DisplayName(name string) string {
	parts := strings.Split(name, ":")
	if len(parts) < 2 {
		return name
	}
	words := strings.Split(parts[1], "-")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		out = append(out, string(unicode.ToUpper(r))+w[size:])
	}
	return strings.Join(out, " ")
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func startsWithDigit(s string) bool {
	if s == "" {
		return false
	}
	return s[0] >= '0' && s[0] <= '9'
}
