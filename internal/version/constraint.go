package version

import (
	"fmt"

	mm "github.com/Masterminds/semver/v3"
)

// Constraint is a semantic version constraint used to match artifact versions,
// for example when suppressing accepted findings.
//
// Examples:
// - ">=1.2.0 <2.0.0"
// - "^1.0.0"
// - "~1.4"
type Constraint struct {
	raw string
	c   *mm.Constraints
}

func ParseConstraint(raw string) (Constraint, error) {
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return Constraint{}, fmt.Errorf("version: parse constraint %q: %w", raw, err)
	}
	return Constraint{raw: raw, c: c}, nil
}

func MustParseConstraint(raw string) Constraint {
	c, err := ParseConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Constraint) String() string {
	return c.raw
}

// Satisfies reports whether the raw version satisfies c.
//
// Versions are parsed loosely ("1.2" and "v1.2.3" are accepted). Versions
// that cannot be read as semantic versions never satisfy a constraint.
func Satisfies(raw string, c Constraint) bool {
	if c.c == nil {
		return false
	}
	v, err := mm.NewVersion(raw)
	if err != nil {
		return false
	}
	return c.c.Check(v)
}
