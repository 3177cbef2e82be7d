// Package version parses and compares the version specifiers used
// throughout the toolchain: exact semver versions, ranges, and named tags
// such as "latest" and "lts".
package version

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a parsed semantic version. It wraps Masterminds/semver so
// comparison and ordering follow the standard semver grammar.
type Version struct {
	inner *semver.Version
}

// New parses s as an exact semantic version. A leading "v" is stripped.
func New(s string) (Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "v")
	sv, err := semver.NewVersion(trimmed)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version{inner: sv}, nil
}

// MustNew is New, panicking on error. Intended for literals.
func MustNew(s string) Version {
	v, err := New(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	if v.inner == nil {
		return ""
	}
	return v.inner.String()
}

// Major returns the major version component.
func (v Version) Major() int64 {
	if v.inner == nil {
		return 0
	}
	return int64(v.inner.Major())
}

// Minor returns the minor version component.
func (v Version) Minor() int64 {
	if v.inner == nil {
		return 0
	}
	return int64(v.inner.Minor())
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than other.
func (v Version) Compare(other Version) int {
	return v.inner.Compare(other.inner)
}

// Equal reports whether v and other denote the same version.
func (v Version) Equal(other Version) bool {
	return v.inner.Equal(other.inner)
}

// LessThan reports whether v sorts before other.
func (v Version) LessThan(other Version) bool {
	return v.inner.LessThan(other.inner)
}

// IsZero reports whether v was never populated via New.
func (v Version) IsZero() bool {
	return v.inner == nil
}

// Sort sorts versions in ascending order.
func Sort(versions []Version) {
	sort.Slice(versions, func(i, j int) bool { return versions[i].LessThan(versions[j]) })
}

// Max returns the largest version in versions, or the zero Version if empty.
func Max(versions []Version) Version {
	var max Version
	for _, v := range versions {
		if max.IsZero() || v.Compare(max) > 0 {
			max = v
		}
	}
	return max
}
