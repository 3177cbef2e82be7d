// Package layout is the single pure function mapping process state (an
// environment and a platform) to the absolute paths of every file and
// directory the toolchain manages. No other package is permitted to
// build one of these paths by string concatenation.
package layout

import (
	"os"
	"path/filepath"

	"github.com/flanksource/jsvm/pkg/platform"
)

const rootEnvVar = "JSVM_HOME"

// Family names the four managed tool families plus third-party packages.
type Family string

const (
	Node     Family = "node"
	Npm      Family = "npm"
	Pnpm     Family = "pnpm"
	Yarn     Family = "yarn"
	Packages Family = "packages"
)

// Layout resolves every managed path from a root directory and a platform.
type Layout struct {
	Root     string
	Platform platform.Platform
}

// Discover builds a Layout from the environment: JSVM_HOME overrides
// the managed root, otherwise it defaults to ~/.jsvm (the user's
// per-account managed home).
func Discover() (Layout, error) {
	root := os.Getenv(rootEnvVar)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Layout{}, err
		}
		root = filepath.Join(home, ".jsvm")
	}
	return Layout{Root: root, Platform: platform.Current()}, nil
}

// New builds a Layout for an explicit root, used by tests.
func New(root string) Layout {
	return Layout{Root: root, Platform: platform.Current()}
}

// BinDir is the shim directory, expected to be on the user's PATH.
func (l Layout) BinDir() string { return filepath.Join(l.Root, "bin") }

// ToolsDir is the root of all downloaded/unpacked tool state.
func (l Layout) ToolsDir() string { return filepath.Join(l.Root, "tools") }

// InventoryDir holds cached archives and registry indices for a family.
func (l Layout) InventoryDir(f Family) string {
	return filepath.Join(l.ToolsDir(), "inventory", string(f))
}

// ImageDir is the directory holding the unpacked image for a family/version.
func (l Layout) ImageDir(f Family, versionOrName string) string {
	return filepath.Join(l.ToolsDir(), "image", string(f), versionOrName)
}

// ImageRoot is the parent directory holding all images of a family.
func (l Layout) ImageRoot(f Family) string {
	return filepath.Join(l.ToolsDir(), "image", string(f))
}

// SharedDir is a link into a package image used to resolve sibling
// global `require`s (set via NODE_PATH for DefaultBinary dispatch).
func (l Layout) SharedDir(name string) string {
	return filepath.Join(l.ToolsDir(), "shared", name)
}

// UserDir is the root of user state: default platform, bin configs,
// package configs, and the cross-process lock file.
func (l Layout) UserDir() string { return filepath.Join(l.ToolsDir(), "user") }

// DefaultPlatformFile is the persisted default Platform.
func (l Layout) DefaultPlatformFile() string { return filepath.Join(l.UserDir(), "platform.json") }

// BinConfigFile is the BinConfig for a third-party binary name.
func (l Layout) BinConfigFile(bin string) string {
	return filepath.Join(l.UserDir(), "bins", bin+".json")
}

// BinConfigDir is the directory holding all BinConfig files.
func (l Layout) BinConfigDir() string { return filepath.Join(l.UserDir(), "bins") }

// PackageConfigFile is the PackageConfig for an installed package name.
func (l Layout) PackageConfigFile(pkg string) string {
	return filepath.Join(l.UserDir(), "packages", pkg+".json")
}

// PackageConfigDir is the directory holding all PackageConfig files.
func (l Layout) PackageConfigDir() string { return filepath.Join(l.UserDir(), "packages") }

// LockFile is the cross-process exclusive lock guarding all mutations of Root.
func (l Layout) LockFile() string { return filepath.Join(l.UserDir(), "jsvm.lock") }

// NodeIndexFile is the cached registry body, URL-prefixed on line 1.
func (l Layout) NodeIndexFile() string {
	return filepath.Join(l.InventoryDir(Node), "index.json")
}

// NodeIndexExpiryFile holds the HTTP-date string for NodeIndexFile's freshness.
func (l Layout) NodeIndexExpiryFile() string {
	return filepath.Join(l.InventoryDir(Node), "index.json.expires")
}

// NodeBundledNpmFile records the npm version bundled inside a node image,
// discoverable only after unpack.
func (l Layout) NodeBundledNpmFile(nodeVersion string) string {
	return filepath.Join(l.ImageDir(Node, nodeVersion), ".npm-version")
}

// ArchiveFile is the cached archive for a family/version, named per the OS
// archive convention (tar.gz on unix, zip on Windows).
func (l Layout) ArchiveFile(f Family, archiveBasename string) string {
	return filepath.Join(l.InventoryDir(f), archiveBasename)
}

// StagingDir is scratch space under ToolsDir for in-progress
// downloads/unpacks, never read by any other component.
func (l Layout) StagingDir() string { return filepath.Join(l.ToolsDir(), "staging") }
