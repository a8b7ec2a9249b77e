package version

import (
	"strconv"
	"strings"

	"gsctl-setup/internal/errs"
)

// Version is a parsed MAJOR.MINOR pair. Trailing components of the input
// (patch, build metadata) are truncated, not interpreted: the installer only
// ever needs "is this at least X.Y" checks for the OS, git, and the managed
// CLI, and full semantic-version parsing would add failure modes for no gain.
type Version struct {
	Major int
	Minor int
}

// Parse extracts the MAJOR.MINOR prefix of a dotted version string.
// "17.0.1" parses as {17, 0}; "1.9" as {1, 9}; a bare "17" as {17, 0}.
// A non-numeric major or minor segment yields errs.ErrMalformedVersion,
// which callers must treat as fatal for the affected check.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, &errs.VersionError{Input: s}
	}

	segments := strings.Split(trimmed, ".")
	major, err := strconv.Atoi(segments[0])
	if err != nil {
		return Version{}, &errs.VersionError{Input: s}
	}

	minor := 0
	if len(segments) > 1 {
		minor, err = strconv.Atoi(segments[1])
		if err != nil {
			return Version{}, &errs.VersionError{Input: s}
		}
	}

	return Version{Major: major, Minor: minor}, nil
}

// Compare returns -1, 0 or 1 as v is less than, equal to, or greater than o.
// Majors are compared as integers; minors break ties.
func Compare(v, o Version) int {
	if v.Major != o.Major {
		if v.Major < o.Major {
			return -1
		}
		return 1
	}
	if v.Minor != o.Minor {
		if v.Minor < o.Minor {
			return -1
		}
		return 1
	}
	return 0
}

// Greater reports whether v is strictly newer than o.
func (v Version) Greater(o Version) bool { return Compare(v, o) > 0 }

// GreaterOrEqual reports whether v is at least o.
func (v Version) GreaterOrEqual(o Version) bool { return Compare(v, o) >= 0 }

// Less reports whether v is strictly older than o.
func (v Version) Less(o Version) bool { return Compare(v, o) < 0 }

// CompareStrings parses both inputs and compares them. Either input failing
// to parse aborts the comparison with the parse error.
func CompareStrings(a, b string) (int, error) {
	va, err := Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return Compare(va, vb), nil
}
