// Package executor resolves a shim invocation to a concrete child
// process and runs it: tool dispatch, PATH computation against the
// managed images, the recursion sentinel, and global-install
// interception, via a tagged-variant Executor family: one small closed
// set of concrete command kinds sharing a single Run method.
package executor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/jsvm/pkg/fetcher"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/logging"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/flanksource/jsvm/pkg/version"
)

// Image is a checked-out platform: a computed PATH with every managed
// tool's bin directory prepended in the fixed order node, package
// manager, yarn (if distinct).
type Image struct {
	Platform toolchain.Platform
	Path     string
}

// binSubdir is where a family's executables live inside its image
// directory. Windows node/npm/pnpm/yarn distributions place binaries at
// the archive root; Unix distributions use a bin/ subdirectory.
func binSubdir(l layout.Layout) string {
	if l.Platform.IsWindows() {
		return ""
	}
	return "bin"
}

func imageBinDir(l layout.Layout, family layout.Family, v version.Version) string {
	return filepath.Join(l.ImageDir(family, v.String()), binSubdir(l))
}

// ensureImage guarantees family/v is present on disk, fetching it under
// the double-checked lock guard if it's missing, following the same
// idempotence contract CheckFetched documents for every other caller of
// the fetch pipeline.
func ensureImage(l layout.Layout, family layout.Family, v version.Version, opts fetcher.Options) (string, error) {
	dir := l.ImageDir(family, v.String())
	predicate := func() bool {
		_, err := os.Stat(dir)
		return err == nil
	}

	needsFetch, guard, err := fetcher.CheckFetched(l.LockFile(), predicate)
	if err != nil {
		return "", err
	}
	if !needsFetch {
		return dir, nil
	}
	defer guard.Release()

	result, err := fetcher.Fetch(l, family, v, opts)
	if err != nil {
		return "", err
	}
	return result.ImageDir, nil
}

// Checkout resolves p to an Image, fetching any missing piece. Node is
// mandatory. PATH gets node's bin dir, then the one chosen package
// manager's (pnpm when the platform names one, else npm; an unmanaged
// npm rides along inside the node image and needs no separate entry),
// then yarn's when the platform names a yarn.
func Checkout(l layout.Layout, p toolchain.Platform, opts fetcher.Options) (Image, error) {
	if !p.HasNode() {
		return Image{}, &toolerrors.EnvironmentError{
			Message: "no platform selected; run `jst pin node@<version>` in a project or `jst install node@<version>` to set a default",
		}
	}

	var entries []string

	nodeDir, err := ensureImage(l, layout.Node, p.Node.Version, opts)
	if err != nil {
		return Image{}, err
	}
	entries = append(entries, imageBinDir(l, layout.Node, p.Node.Version))
	logging.Debugf("using node@%s from %s", p.Node.Version, nodeDir)

	switch {
	case p.Pnpm.Present():
		if _, err := ensureImage(l, layout.Pnpm, p.Pnpm.Version, opts); err != nil {
			return Image{}, err
		}
		entries = append(entries, imageBinDir(l, layout.Pnpm, p.Pnpm.Version))
	case p.Npm.Present():
		if _, err := ensureImage(l, layout.Npm, p.Npm.Version, opts); err != nil {
			return Image{}, err
		}
		entries = append(entries, imageBinDir(l, layout.Npm, p.Npm.Version))
	}

	if p.Yarn.Present() {
		if _, err := ensureImage(l, layout.Yarn, p.Yarn.Version, opts); err != nil {
			return Image{}, err
		}
		entries = append(entries, imageBinDir(l, layout.Yarn, p.Yarn.Version))
	}

	if hostPath := os.Getenv("PATH"); hostPath != "" {
		entries = append(entries, hostPath)
	}

	return Image{Platform: p, Path: strings.Join(entries, string(os.PathListSeparator))}, nil
}

// SharedModulePath prepends the managed shared-lib root (used so a
// globally installed binary can `require` its sibling packages) to any
// existing NODE_PATH.
func SharedModulePath(l layout.Layout, pkg string) string {
	existing := os.Getenv("NODE_PATH")
	shared := l.SharedDir(pkg)
	if existing == "" {
		return shared
	}
	return shared + string(os.PathListSeparator) + existing
}
