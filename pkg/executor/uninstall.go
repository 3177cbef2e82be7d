package executor

import (
	"os"

	"github.com/flanksource/jsvm/pkg/fetcher"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/lock"
	"github.com/flanksource/jsvm/pkg/session"
	"github.com/flanksource/jsvm/pkg/shim"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/toolerrors"
)

// Uninstall removes an installed image. For Family == layout.Node this
// removes the image directory and the node shared-link, and clears a
// now-dangling default platform pointer; it does NOT cascade to any
// third-party package installed under that node version. For Family ==
// layout.Packages (Name is the package name, not a version) it also
// removes every BinConfig/shim the package's PackageConfig recorded,
// and the package's shared-module link if commitInstalledPackage
// created one.
type Uninstall struct {
	Family layout.Family
	// Name is a version string for Family == layout.Node, or a package
	// name for Family == layout.Packages.
	Name string
}

func (u *Uninstall) Run(sess *session.Session, opts fetcher.Options) (int, error) {
	guard, err := lock.Acquire(sess.Layout.LockFile())
	if err != nil {
		return 0, err
	}
	defer guard.Release()

	switch u.Family {
	case layout.Node:
		return 0, uninstallNode(sess.Layout, u.Name)
	case layout.Packages:
		return 0, uninstallPackage(sess.Layout, u.Name)
	default:
		return 0, &toolerrors.ConfigurationError{Message: "uninstall is only supported for node and packages, not " + string(u.Family)}
	}
}

func uninstallNode(l layout.Layout, ver string) error {
	imageDir := l.ImageDir(layout.Node, ver)
	if err := os.RemoveAll(imageDir); err != nil {
		return &toolerrors.FileSystemError{Op: "remove", Path: imageDir, Err: err}
	}

	sharedDir := l.SharedDir("node")
	if err := os.Remove(sharedDir); err != nil && !os.IsNotExist(err) {
		return &toolerrors.FileSystemError{Op: "remove", Path: sharedDir, Err: err}
	}

	def, err := toolchain.ReadDefaultPlatform(l)
	if err != nil {
		return err
	}
	if !def.Node.Present() || def.Node.Version.String() != ver {
		return nil
	}

	// The default platform pointed at the node version we just removed;
	// clear it entirely rather than leave a dangling pointer along with
	// package-manager fields that no longer have a node to run under.
	return toolchain.WriteDefaultPlatform(l, toolchain.Platform{})
}

func uninstallPackage(l layout.Layout, name string) error {
	cfg, err := toolchain.ReadPackageConfig(l, name)
	if err != nil {
		return &toolerrors.ConfigurationError{Message: name + " is not an installed package"}
	}

	for _, bin := range cfg.Bins {
		_ = shim.Delete(l, bin)
		_ = toolchain.DeleteBinConfig(l, bin)
	}
	if err := toolchain.DeletePackageConfig(l, name); err != nil {
		return err
	}
	if err := os.Remove(l.SharedDir(name)); err != nil && !os.IsNotExist(err) {
		return &toolerrors.FileSystemError{Op: "remove", Path: l.SharedDir(name), Err: err}
	}

	imageDir := l.ImageDir(layout.Packages, name)
	if err := os.RemoveAll(imageDir); err != nil {
		return &toolerrors.FileSystemError{Op: "remove", Path: imageDir, Err: err}
	}
	return nil
}
