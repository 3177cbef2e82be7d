package executor

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/flanksource/jsvm/pkg/fetcher"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/logging"
	"github.com/flanksource/jsvm/pkg/session"
	"github.com/flanksource/jsvm/pkg/shim"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/flanksource/jsvm/pkg/version"
)

// PackageInstall wraps a package-manager global-install invocation so
// its side effects land in the managed inventory instead of whatever
// location the invoking shell would otherwise have used.
type PackageInstall struct {
	// Argv is the full child command line, e.g. {"npm", "install",
	// "-g", "typescript@5.2.0"}; argv[0] is the installer binary name.
	Argv []string
	// Name and Spec are the parsed target of the install, already
	// extracted from Argv by the CLI layer.
	Name      string
	Spec      version.VersionSpec
	Installer toolchain.Manager
	Platform  toolchain.Platform
}

// globalFolderFlag returns the flag this manager uses to redirect a
// global install's target directory into staging: npm and pnpm take a
// --prefix, yarn takes --global-folder.
func globalFolderFlag(m toolchain.Manager) string {
	switch m {
	case toolchain.ManagerYarn:
		return "--global-folder"
	default:
		return "--prefix"
	}
}

func withStagingTarget(argv []string, m toolchain.Manager, stagingDir string) []string {
	out := make([]string, len(argv), len(argv)+2)
	copy(out, argv)
	return append(out, globalFolderFlag(m), stagingDir)
}

// stagedNodeModules locates the node_modules directory a global install
// into stagingDir produces, per manager: npm/pnpm's --prefix nests it
// under lib/ on unix (bare on Windows), yarn's --global-folder puts it
// directly at the top.
func stagedNodeModules(stagingDir string, m toolchain.Manager, p layout.Family, isWindows bool) string {
	switch m {
	case toolchain.ManagerYarn:
		return filepath.Join(stagingDir, "node_modules")
	default:
		if isWindows {
			return filepath.Join(stagingDir, "node_modules")
		}
		return filepath.Join(stagingDir, "lib", "node_modules")
	}
}

type npmPackageManifest struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Bin     interface{} `json:"bin"`
}

// binNames normalizes package.json's "bin" field (a bare string for a
// single-binary package, or a name->path map) into the set of binary
// names this package ships.
func (m npmPackageManifest) binNames() map[string]string {
	out := map[string]string{}
	switch b := m.Bin.(type) {
	case string:
		name := filepath.Base(m.Name)
		out[name] = b
	case map[string]interface{}:
		for k, v := range b {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}

// inspectStagedPackage reads the installed package's own manifest out
// of the staged node_modules tree, returning its resolved version and
// bin map (name -> path relative to the package root).
func inspectStagedPackage(stagingDir string, m toolchain.Manager, name string, isWindows bool) (string, map[string]string, string, error) {
	pkgDir := filepath.Join(stagedNodeModules(stagingDir, m, layout.Packages, isWindows), filepath.FromSlash(name))
	manifestPath := filepath.Join(pkgDir, "package.json")

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", nil, "", &toolerrors.FileSystemError{Op: "read", Path: manifestPath, Err: err}
	}
	var manifest npmPackageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", nil, "", &toolerrors.ConfigurationError{Message: "could not parse " + manifestPath + ": " + err.Error()}
	}
	return manifest.Version, manifest.binNames(), pkgDir, nil
}

// commitInstalledPackage moves the staged package tree into the
// inventory, synthesizes its normalized bin/ subdirectory, and writes
// the PackageConfig/BinConfig/shim set describing it.
func commitInstalledPackage(l layout.Layout, name, pkgVersion string, platform toolchain.Platform, m toolchain.Manager, bins map[string]string, stagedPkgDir string) error {
	imageDir := l.ImageDir(layout.Packages, name)
	if err := os.MkdirAll(filepath.Dir(imageDir), 0755); err != nil {
		return &toolerrors.FileSystemError{Op: "mkdir", Path: filepath.Dir(imageDir), Err: err}
	}
	if err := os.RemoveAll(imageDir); err != nil {
		return &toolerrors.FileSystemError{Op: "remove", Path: imageDir, Err: err}
	}
	if err := os.Rename(stagedPkgDir, imageDir); err != nil {
		return &toolerrors.FileSystemError{Op: "rename", Path: imageDir, Err: err}
	}

	if err := linkSharedModules(l, name, imageDir); err != nil {
		return err
	}

	binNames := make([]string, 0, len(bins))
	for binName, relPath := range bins {
		if err := linkPackageBin(l, imageDir, binName, relPath); err != nil {
			return err
		}
		binNames = append(binNames, binName)
	}

	spec := platform.Spec()
	if err := toolchain.WritePackageConfig(l, toolchain.PackageConfig{
		Name: name, Version: pkgVersion, Platform: spec, Manager: m, Bins: binNames,
	}); err != nil {
		return err
	}

	for _, binName := range binNames {
		if err := toolchain.WriteBinConfig(l, toolchain.BinConfig{
			Name: binName, Package: name, Version: pkgVersion, Platform: spec, Manager: m,
		}); err != nil {
			return err
		}
		if _, err := shim.CreateOne(l, binName); err != nil {
			return err
		}
	}
	return nil
}

// linkSharedModules symlinks a package's own node_modules (its peer and
// hoisted dependencies) into the shared-lib root, so a later
// DefaultBinary dispatch's NODE_PATH (SharedModulePath) resolves to a
// real directory instead of one that was never populated. Packages that
// carry no node_modules of their own (most single-file CLIs) leave
// nothing to link, which is not an error.
func linkSharedModules(l layout.Layout, name, imageDir string) error {
	src := filepath.Join(imageDir, "node_modules")
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return nil
	}

	sharedDir := l.SharedDir(name)
	if err := os.MkdirAll(filepath.Dir(sharedDir), 0755); err != nil {
		return &toolerrors.FileSystemError{Op: "mkdir", Path: filepath.Dir(sharedDir), Err: err}
	}
	_ = os.Remove(sharedDir)
	if err := os.Symlink(src, sharedDir); err != nil {
		return &toolerrors.FileSystemError{Op: "symlink", Path: sharedDir, Err: err}
	}
	return nil
}

// linkPackageBin creates <imageDir>/bin/<binName> (unix) or
// <imageDir>/<binName>.cmd (windows) pointing at the package's own
// script, mirroring the node_modules/.bin launcher a package manager
// would otherwise have created relative to the invoking project.
func linkPackageBin(l layout.Layout, imageDir, binName, relPath string) error {
	if l.Platform.IsWindows() {
		cmdPath := filepath.Join(imageDir, binName+".cmd")
		script := "@echo off\r\nnode \"%~dp0" + filepath.FromSlash(relPath) + "\" %*\r\n"
		return os.WriteFile(cmdPath, []byte(script), 0755)
	}

	binDir := filepath.Join(imageDir, "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return &toolerrors.FileSystemError{Op: "mkdir", Path: binDir, Err: err}
	}
	target := filepath.Join("..", filepath.FromSlash(relPath))
	linkPath := filepath.Join(binDir, binName)
	_ = os.Remove(linkPath)
	if err := os.Symlink(target, linkPath); err != nil {
		return &toolerrors.FileSystemError{Op: "symlink", Path: linkPath, Err: err}
	}
	return nil
}

// rollbackPackage best-effort removes everything commitInstalledPackage
// may have partially written, so a failed install never leaves a
// dangling shim or config record behind.
func rollbackPackage(l layout.Layout, name string, binNames []string) {
	for _, b := range binNames {
		_ = shim.Delete(l, b)
		_ = toolchain.DeleteBinConfig(l, b)
	}
	_ = toolchain.DeletePackageConfig(l, name)
	_ = os.Remove(l.SharedDir(name))
	_ = os.RemoveAll(l.ImageDir(layout.Packages, name))
}

// Run checks out the install platform, runs the wrapped child with its
// global target redirected into a staging directory, and on success
// migrates the staged package into the inventory with shims and
// configs. A non-zero child exit or any post-processing failure leaves
// no partial state: staging is always discarded, and a post-processing
// failure triggers rollback of whatever commit already wrote.
func (p *PackageInstall) Run(sess *session.Session, opts fetcher.Options) (int, error) {
	image, err := Checkout(sess.Layout, p.Platform, opts)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(sess.Layout.StagingDir(), 0755); err != nil {
		return 0, &toolerrors.FileSystemError{Op: "mkdir", Path: sess.Layout.StagingDir(), Err: err}
	}
	stagingDir, err := os.MkdirTemp(sess.Layout.StagingDir(), "install-")
	if err != nil {
		return 0, &toolerrors.FileSystemError{Op: "mkdir", Path: sess.Layout.StagingDir(), Err: err}
	}
	defer os.RemoveAll(stagingDir)

	argv := withStagingTarget(p.Argv, p.Installer, stagingDir)
	code, err := runChild(argv[0], argv[1:], image.Path, nil)
	if err != nil || code != 0 {
		return code, err
	}

	pkgVersion, bins, pkgDir, err := inspectStagedPackage(stagingDir, p.Installer, p.Name, sess.Layout.Platform.IsWindows())
	if err != nil {
		return 0, err
	}

	if err := commitInstalledPackage(sess.Layout, p.Name, pkgVersion, p.Platform, p.Installer, bins, pkgDir); err != nil {
		binNames := make([]string, 0, len(bins))
		for b := range bins {
			binNames = append(binNames, b)
		}
		rollbackPackage(sess.Layout, p.Name, binNames)
		return 0, err
	}

	logging.Infof("installed %s@%s via %s", p.Name, pkgVersion, p.Installer)
	return 0, nil
}

// PackageLink wraps `<manager> link`: it requires an existing
// PackageConfig for the named package whose recorded manager matches,
// and re-creates that package's shims from its already-committed image
// (no new fetch, no staging).
type PackageLink struct {
	Name      string
	Installer toolchain.Manager
}

func (p *PackageLink) Run(sess *session.Session, opts fetcher.Options) (int, error) {
	cfg, err := toolchain.ReadPackageConfig(sess.Layout, p.Name)
	if err != nil {
		return 0, &toolerrors.ConfigurationError{Message: p.Name + " is not an installed package; nothing to link"}
	}
	if cfg.Manager != p.Installer {
		return 0, &toolerrors.ConfigurationError{
			Message: p.Name + " was installed with " + string(cfg.Manager) + ", not " + string(p.Installer),
		}
	}
	for _, bin := range cfg.Bins {
		if _, err := shim.CreateOne(sess.Layout, bin); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

// PackageUpgrade re-runs an install for an already-installed package at
// a newer (or re-resolved) version, warning when the node major version
// on record has drifted since the original install.
type PackageUpgrade struct {
	PackageInstall
}

func (p *PackageUpgrade) Run(sess *session.Session, opts fetcher.Options) (int, error) {
	existing, err := toolchain.ReadPackageConfig(sess.Layout, p.Name)
	if err != nil {
		return 0, &toolerrors.ConfigurationError{Message: p.Name + " is not an installed package; nothing to upgrade"}
	}
	if existing.Manager != p.Installer {
		return 0, &toolerrors.ConfigurationError{
			Message: p.Name + " was installed with " + string(existing.Manager) + ", not " + string(p.Installer),
		}
	}
	if existing.Platform.Node != nil && p.Platform.HasNode() {
		if recorded, err := version.New(existing.Platform.Node.Runtime); err == nil &&
			recorded.Major() != p.Platform.Node.Version.Major() {
			logging.Warnf("%s was installed under node@%s, upgrading under node@%s",
				p.Name, existing.Platform.Node.Runtime, p.Platform.Node.Version.String())
		}
	}
	return p.PackageInstall.Run(sess, opts)
}
