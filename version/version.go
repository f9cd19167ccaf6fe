// Package version implements the semantic version triple stored in a
// recording's metadata ("Data Format Version").
package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Version is an ordered (major, minor, patch) triple.
// Missing minor or patch components default to 0.
type Version struct {
	Major int
	Minor int
	Patch int
}

// New returns the version major.minor.patch.
func New(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// FormatError reports a malformed version string.
type FormatError struct {
	Text   string
	Reason string
	cause  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed version %q: %s", e.Text, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.cause }

// Parse parses text such as "v0.9.13", "1.4" or "2".
// A single leading "v" or "V" is accepted. Surrounding whitespace is ignored.
func Parse(text string) (Version, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")
	if s == "" {
		return Version{}, &FormatError{Text: text, Reason: "empty"}
	}

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, &FormatError{Text: text, Reason: "more than three components"}
	}

	var nums [3]int
	for i, p := range parts {
		if p == "" {
			return Version{}, &FormatError{Text: text, Reason: fmt.Sprintf("empty component %d", i)}
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, &FormatError{Text: text, Reason: fmt.Sprintf("non-numeric component %q", p), cause: err}
		}
		if n < 0 {
			return Version{}, &FormatError{Text: text, Reason: fmt.Sprintf("negative component %q", p)}
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is like Parse but panics on error. Intended for constant tables.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to,
// or after o.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmp.Compare(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmp.Compare(v.Minor, o.Minor)
	default:
		return cmp.Compare(v.Patch, o.Patch)
	}
}

// Less reports whether v < o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// IsZero reports whether v is 0.0.0.
func (v Version) IsZero() bool { return v == Version{} }

// String renders the version the way recordings store it, e.g. "v0.9.13"
// or "v1.4". A zero patch is omitted.
func (v Version) String() string {
	if v.Patch == 0 {
		return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}
