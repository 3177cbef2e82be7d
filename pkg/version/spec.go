package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/flanksource/jsvm/pkg/toolerrors"
)

// TagKind is one of the well-known tags, or Custom for anything else.
type TagKind int

const (
	TagLatest TagKind = iota
	TagLTS
	TagCustom
)

// Tag is a named release channel, e.g. "latest", "lts", or a custom
// string like "beta" used by some package managers' dist-tags.
type Tag struct {
	Kind   TagKind
	Custom string
}

func (t Tag) String() string {
	switch t.Kind {
	case TagLatest:
		return "latest"
	case TagLTS:
		return "lts"
	default:
		return t.Custom
	}
}

// SpecKind discriminates the variants of VersionSpec.
type SpecKind int

const (
	SpecNone SpecKind = iota
	SpecExact
	SpecRange
	SpecTag
)

// VersionSpec is a parsed `tool@specifier`. Exactly one of the fields
// matching Kind is meaningful; the rest are zero values.
type VersionSpec struct {
	Kind  SpecKind
	Exact Version
	Range *semver.Constraints
	// raw is kept so Display(Parse(s)) can round-trip for non-semver
	// range syntaxes that semver.Constraints doesn't re-render exactly.
	raw string
	Tag Tag
}

// Parse parses s into a VersionSpec, trying Exact, then Range, then Tag,
// in that order. An empty string parses to SpecNone. A leading "v" is
// stripped before any of the three attempts.
func Parse(s string) (VersionSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return VersionSpec{Kind: SpecNone}, nil
	}

	trimmed := strings.TrimPrefix(s, "v")

	// Exact: a bare X.Y.Z (or X.Y, or X) with no range operators.
	if looksExact(trimmed) {
		if v, err := New(trimmed); err == nil {
			return VersionSpec{Kind: SpecExact, Exact: v, raw: s}, nil
		}
	}

	// Range: input containing a range operator (<, >, =, ~, ^, *, |, ","
	// or " - ") that semver.NewConstraint accepts (comma = AND, "||" = OR,
	// "-" = inclusive range). Operator-free forms such as "1.x" are not
	// tried as ranges and fall through to Tag.
	if looksLikeRange(trimmed) {
		c, err := semver.NewConstraint(trimmed)
		if err == nil {
			return VersionSpec{Kind: SpecRange, Range: c, raw: s}, nil
		}
	}

	// Tag: anything else is a named channel.
	switch trimmed {
	case "latest":
		return VersionSpec{Kind: SpecTag, Tag: Tag{Kind: TagLatest}, raw: s}, nil
	case "lts":
		return VersionSpec{Kind: SpecTag, Tag: Tag{Kind: TagLTS}, raw: s}, nil
	default:
		return VersionSpec{Kind: SpecTag, Tag: Tag{Kind: TagCustom, Custom: trimmed}, raw: s}, nil
	}
}

// looksExact reports whether s has no constraint operators and is a
// dotted numeric version (1, 1.2, or 1.2.3), i.e. should parse as Exact
// rather than falling through to Range or Tag.
func looksExact(s string) bool {
	if s == "" || strings.ContainsAny(s, "<>=~^*|, ") {
		return false
	}
	core := s
	if idx := strings.IndexAny(core, "-+"); idx > 0 {
		// allow prerelease/build metadata suffixes, e.g. 1.2.3-beta.1
		core = core[:idx]
	}
	if core == "" {
		return false
	}
	for _, r := range core {
		if r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func looksLikeRange(s string) bool {
	return strings.ContainsAny(s, "<>=~^*|,") || strings.Contains(s, " - ")
}

// Display renders spec back to its canonical string form. For Exact and
// Tag, Display(Parse(s)) == Display(Parse(Display(Parse(s)))); Range keeps
// the original input text because semver constraint syntax has several
// ways to spell the same set and round-tripping through Constraints.String()
// is not guaranteed to reproduce it.
func Display(spec VersionSpec) string {
	switch spec.Kind {
	case SpecNone:
		return ""
	case SpecExact:
		return spec.Exact.String()
	case SpecRange:
		return spec.raw
	case SpecTag:
		return spec.Tag.String()
	default:
		return ""
	}
}

// Satisfies reports whether v satisfies spec.
func (spec VersionSpec) Satisfies(v Version) bool {
	switch spec.Kind {
	case SpecNone:
		return true
	case SpecExact:
		return spec.Exact.Equal(v)
	case SpecRange:
		return spec.Range.Check(v.inner)
	case SpecTag:
		// A tag resolves to a concrete version upstream (via registry
		// dist-tags); by the time Satisfies is checked against an
		// already-resolved candidate list, any version is accepted and
		// resolution order picks the right one.
		return true
	default:
		return false
	}
}

func (spec VersionSpec) String() string {
	return Display(spec)
}

// ErrNoMatch is returned by resolvers when no installed or discoverable
// version satisfies a VersionSpec.
type ErrNoMatch struct {
	Tool string
	Spec string
}

func (e *ErrNoMatch) Error() string {
	return fmt.Sprintf("no version of %s satisfies %s", e.Tool, e.Spec)
}

func (e *ErrNoMatch) Kind() toolerrors.Kind { return toolerrors.KindNoVersionMatch }
