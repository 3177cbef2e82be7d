package toolchain

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/flanksource/jsvm/pkg/atomicfile"
	"github.com/flanksource/jsvm/pkg/layout"
)

// ErrNoDefaultNode is returned when a caller tries to set a
// package-manager field on the default platform with no node recorded.
var ErrNoDefaultNode = errors.New("no default node version set")

// ReadDefaultPlatform reads user/platform.json, touching it into
// existence first (empty file is a valid "no platform" state).
func ReadDefaultPlatform(l layout.Layout) (Platform, error) {
	path := l.DefaultPlatformFile()
	if err := atomicfile.Touch(path); err != nil {
		return Platform{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Platform{}, err
	}
	if len(data) == 0 {
		return Platform{}, nil
	}

	var spec PlatformSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return Platform{}, err
	}
	return ToPlatform(spec, SourceDefault)
}

// WriteDefaultPlatform overwrites platform.json atomically. It is a
// no-op when the new value serialises identically to the stored one.
func WriteDefaultPlatform(l layout.Layout, p Platform) error {
	newSpec := p.Spec()

	current, err := ReadDefaultPlatform(l)
	if err == nil && current.Spec().Equal(newSpec) {
		return nil
	}

	data, err := json.MarshalIndent(newSpec, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(l.DefaultPlatformFile(), data, 0644)
}

// SetDefaultNode sets the default node version (and, if nonzero, its
// bundled npm), leaving pnpm/yarn untouched.
func SetDefaultNode(l layout.Layout, node Field, npm Field) error {
	current, err := ReadDefaultPlatform(l)
	if err != nil {
		return err
	}
	current.Node = node
	if npm.Present() {
		current.Npm = npm
	}
	return WriteDefaultPlatform(l, current)
}

// SetDefaultPackageManager sets pnpm or yarn on the default platform.
// Returns ErrNoDefaultNode if no node is recorded yet.
func SetDefaultPackageManager(l layout.Layout, which string, field Field) error {
	current, err := ReadDefaultPlatform(l)
	if err != nil {
		return err
	}
	if !current.HasNode() {
		return ErrNoDefaultNode
	}
	switch which {
	case "pnpm":
		current.Pnpm = field
	case "yarn":
		current.Yarn = field
	default:
		return errors.New("unknown package manager: " + which)
	}
	return WriteDefaultPlatform(l, current)
}
