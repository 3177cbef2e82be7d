// Package toolchain holds the persisted and derived Platform state: the
// default platform file, per-project pins discovered from a manifest,
// the merge rule that combines them, and the PackageConfig/BinConfig
// records written by the install interceptor.
package toolchain

import (
	"encoding/json"
	"fmt"

	"github.com/flanksource/jsvm/pkg/version"
)

// Source records where a Platform field's value came from, used only at
// runtime to decide precedence during merge; never persisted.
type Source int

const (
	SourceNone Source = iota
	SourceDefault
	SourceProject
	SourceCommandLine
	SourceBinary
)

func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceProject:
		return "project"
	case SourceCommandLine:
		return "command-line"
	case SourceBinary:
		return "binary"
	default:
		return "none"
	}
}

// Field is an optional version annotated with the source it came from.
type Field struct {
	Version version.Version
	Source  Source
}

// Present reports whether the field carries a version.
func (f Field) Present() bool { return !f.Version.IsZero() }

// Platform is the in-memory `{node, npm?, pnpm?, yarn?}` record used
// during dispatch. Node is required whenever a Platform is meaningful;
// a zero-value Platform (Node not present) denotes "no platform".
type Platform struct {
	Node Field
	Npm  Field
	Pnpm Field
	Yarn Field
}

// HasNode reports whether this Platform carries a node version.
func (p Platform) HasNode() bool { return p.Node.Present() }

// mergeField implements the right-biased fallback: a's value wins when
// present, otherwise b's.
func mergeField(a, b Field) Field {
	if a.Present() {
		return a
	}
	return b
}

// Merge computes a ⊕ b: for each field, a wins when present, else b.
// Associative by construction, since each field is decided independently
// by "first present in left-to-right order": (A⊕B)⊕C == A⊕(B⊕C).
func Merge(a, b Platform) Platform {
	return Platform{
		Node: mergeField(a.Node, b.Node),
		Npm:  mergeField(a.Npm, b.Npm),
		Pnpm: mergeField(a.Pnpm, b.Pnpm),
		Yarn: mergeField(a.Yarn, b.Yarn),
	}
}

// NodeSpec is the wire shape of the "node" key of a PlatformSpec.
type NodeSpec struct {
	Runtime string `json:"runtime"`
	Npm     string `json:"npm,omitempty"`
}

// PlatformSpec is the persisted/pinned wire format: plain version
// strings, no source annotations. This is what platform.json and a
// manifest's "volta" key actually contain.
type PlatformSpec struct {
	Node *NodeSpec `json:"node,omitempty"`
	Pnpm string    `json:"pnpm,omitempty"`
	Yarn string    `json:"yarn,omitempty"`
}

// IsEmpty reports whether spec has no node entry, i.e. deserialises to
// "no platform".
func (s PlatformSpec) IsEmpty() bool { return s.Node == nil || s.Node.Runtime == "" }

// ToPlatform converts a persisted spec into a runtime Platform,
// stamping every present field with source.
func ToPlatform(spec PlatformSpec, source Source) (Platform, error) {
	if spec.IsEmpty() {
		return Platform{}, nil
	}

	var p Platform
	nodeV, err := version.New(spec.Node.Runtime)
	if err != nil {
		return Platform{}, fmt.Errorf("invalid node version in platform: %w", err)
	}
	p.Node = Field{Version: nodeV, Source: source}

	if spec.Node.Npm != "" {
		npmV, err := version.New(spec.Node.Npm)
		if err != nil {
			return Platform{}, fmt.Errorf("invalid npm version in platform: %w", err)
		}
		p.Npm = Field{Version: npmV, Source: source}
	}
	if spec.Pnpm != "" {
		pnpmV, err := version.New(spec.Pnpm)
		if err != nil {
			return Platform{}, fmt.Errorf("invalid pnpm version in platform: %w", err)
		}
		p.Pnpm = Field{Version: pnpmV, Source: source}
	}
	if spec.Yarn != "" {
		yarnV, err := version.New(spec.Yarn)
		if err != nil {
			return Platform{}, fmt.Errorf("invalid yarn version in platform: %w", err)
		}
		p.Yarn = Field{Version: yarnV, Source: source}
	}
	return p, nil
}

// Spec renders p back to its persisted wire form. Callers with an empty
// Platform should not persist at all; Spec on a Platform without Node
// returns the zero PlatformSpec.
func (p Platform) Spec() PlatformSpec {
	if !p.HasNode() {
		return PlatformSpec{}
	}
	spec := PlatformSpec{Node: &NodeSpec{Runtime: p.Node.Version.String()}}
	if p.Npm.Present() {
		spec.Node.Npm = p.Npm.Version.String()
	}
	if p.Pnpm.Present() {
		spec.Pnpm = p.Pnpm.Version.String()
	}
	if p.Yarn.Present() {
		spec.Yarn = p.Yarn.Version.String()
	}
	return spec
}

// Equal reports whether two specs serialise identically; used by the
// default-platform writer to skip no-op writes.
func (s PlatformSpec) Equal(other PlatformSpec) bool {
	a, _ := json.Marshal(s)
	b, _ := json.Marshal(other)
	return string(a) == string(b)
}
