// Package version orders raw artifact version strings by recency.
//
// The ordering is deliberately looser than semantic versioning: Maven-style
// build suffixes, SNAPSHOT markers and free-form version strings all need a
// stable place in the order so the most recent version of an internal
// artifact can always be identified.
package version

import (
	"regexp"
	"sort"
	"strings"
)

const snapshotMarker = "SNAPSHOT"

var reNumeric = regexp.MustCompile(`^\d+(\.\d+)*$`)

// Compare orders a and b by recency, returning:
// -1 if a is more recent than b
//
//	0 if a and b are equally recent
//	1 if b is more recent than a
//
// More recent versions order first.
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	aPrefix, aSuffix, aHasSuffix := strings.Cut(a, "-")
	bPrefix, bSuffix, bHasSuffix := strings.Cut(b, "-")

	if c := comparePrefix(aPrefix, bPrefix); c != 0 {
		return c
	}
	switch {
	case !aHasSuffix && !bHasSuffix:
		return 0
	case !aHasSuffix:
		return -1
	case !bHasSuffix:
		return 1
	}
	return compareSuffix(aSuffix, bSuffix)
}

// Sort orders versions most recent first. Versions that compare equal are
// ordered by reverse string order so the result does not depend on input order.
func Sort(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		if c := Compare(versions[i], versions[j]); c != 0 {
			return c < 0
		}
		return versions[i] > versions[j]
	})
}

// Latest returns the most recent of the given versions.
func Latest(versions []string) (string, bool) {
	if len(versions) == 0 {
		return "", false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		c := Compare(v, best)
		if c < 0 || (c == 0 && v > best) {
			best = v
		}
	}
	return best, true
}

// IsSnapshot reports whether v carries a SNAPSHOT build suffix.
func IsSnapshot(v string) bool {
	_, suffix, ok := strings.Cut(v, "-")
	return ok && strings.Contains(suffix, snapshotMarker)
}

func comparePrefix(a, b string) int {
	aNumeric := reNumeric.MatchString(a)
	bNumeric := reNumeric.MatchString(b)
	switch {
	case aNumeric && bNumeric:
		as := strings.Split(a, ".")
		bs := strings.Split(b, ".")
		for i := 0; i < len(as) && i < len(bs); i++ {
			if c := compareDigits(bs[i], as[i]); c != 0 {
				return c
			}
		}
		return sign(len(bs) - len(as))
	case aNumeric:
		return -1
	case bNumeric:
		return 1
	default:
		return strings.Compare(b, a)
	}
}

func compareSuffix(a, b string) int {
	if a == b {
		return 0
	}
	aSnapshot := strings.Contains(a, snapshotMarker)
	bSnapshot := strings.Contains(b, snapshotMarker)
	if aSnapshot != bSnapshot {
		if aSnapshot {
			return 1
		}
		return -1
	}

	aInt := isDigits(a)
	bInt := isDigits(b)
	switch {
	case aInt && bInt:
		return compareDigits(b, a)
	case aInt:
		return -1
	case bInt:
		return 1
	default:
		return strings.Compare(b, a)
	}
}

// compareDigits compares two non-empty decimal strings numerically without
// parsing, so arbitrarily long build numbers cannot overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return sign(len(a) - len(b))
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
