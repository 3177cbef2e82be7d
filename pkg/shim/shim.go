// Package shim creates, enumerates, and regenerates the launcher
// entries in bin/ that every managed binary name dispatches through:
// a symlink on Unix, a .cmd/script pair on Windows.
package shim

import (
	"os"
	"sort"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/lock"
)

// Result reports whether Create made a new shim or rewrote an existing one.
type Result int

const (
	Created Result = iota
	AlreadyExists
)

// DefaultNames are the shims that must always be present, independent
// of any installed third-party BinConfig.
var DefaultNames = []string{"node", "npm", "npx", "yarn", "pnpm", "yarnpkg"}

// LauncherPath returns the path every shim should point to: the
// currently running executable, since this binary itself is the
// universal launcher dispatched through argv[0]/the shim's own name.
func LauncherPath() (string, error) {
	return os.Executable()
}

// Create installs (or idempotently rewrites) the shim for name.
func Create(l layout.Layout) func(name string) (Result, error) {
	if l.Platform.IsWindows() {
		return func(name string) (Result, error) { return createWindows(l, name) }
	}
	return func(name string) (Result, error) { return createUnix(l, name) }
}

// CreateOne installs (or idempotently rewrites) the shim for a single name.
func CreateOne(l layout.Layout, name string) (Result, error) {
	return Create(l)(name)
}

// Delete removes the shim for name, tolerating "already gone".
func Delete(l layout.Layout, name string) error {
	if l.Platform.IsWindows() {
		return deleteWindows(l, name)
	}
	return deleteUnix(l, name)
}

// Enumerate lists the shims currently present in bin/.
func Enumerate(l layout.Layout) ([]string, error) {
	var (
		names []string
		err   error
	)
	if l.Platform.IsWindows() {
		names, err = enumerateWindows(l)
	} else {
		names, err = enumerateUnix(l)
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// EnsureDefaults creates every shim in DefaultNames, rewriting any that
// are already present.
func EnsureDefaults(l layout.Layout) error {
	create := Create(l)
	for _, name := range DefaultNames {
		if _, err := create(name); err != nil {
			return err
		}
	}
	return nil
}

// RegenerateDir acquires the Lock and performs delete-then-create for
// every shim currently listed in bin/, the recovery path after a failed
// install. Running it twice in a row produces the same directory
// contents as running it once, since delete-then-create is idempotent
// regardless of starting state.
func RegenerateDir(l layout.Layout) error {
	guard, err := lock.Acquire(l.LockFile())
	if err != nil {
		return err
	}
	defer guard.Release()

	names, err := Enumerate(l)
	if err != nil {
		return err
	}

	create := Create(l)
	for _, name := range names {
		if err := Delete(l, name); err != nil {
			return err
		}
		if _, err := create(name); err != nil {
			return err
		}
	}
	return nil
}
