package executor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jsvm/pkg/fetcher"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/version"
)

// fakeNpmInstallerScript writes a package.json + bin/demo-cli.js under the node_modules
// directory the real npm/pnpm/yarn would have staged, mimicking what a
// successful `npm install -g --prefix <staging> pkg` leaves behind. It
// is invoked in place of a real package manager binary.
func fakeNpmInstallerScript(t *testing.T, dir string) {
	t.Helper()
	script := `#!/bin/sh
prefix=""
while [ "$#" -gt 0 ]; do
  case "$1" in
    --prefix) prefix="$2"; shift 2 ;;
    *) shift ;;
  esac
done
mkdir -p "$prefix/lib/node_modules/demo-cli/bin"
cat > "$prefix/lib/node_modules/demo-cli/package.json" <<'EOF'
{"name":"demo-cli","version":"1.2.3","bin":"bin/demo-cli.js"}
EOF
cat > "$prefix/lib/node_modules/demo-cli/bin/demo-cli.js" <<'EOF'
#!/usr/bin/env node
EOF
exit 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "npm"), []byte(script), 0755))
}

func TestPackageInstallCommitsStagedPackageIntoInventory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture is unix-specific")
	}

	l := layout.New(t.TempDir())
	nodeDir := l.ImageDir(layout.Node, "18.17.1")
	require.NoError(t, os.MkdirAll(filepath.Join(nodeDir, "bin"), 0755))
	writeExecutableScript(t, filepath.Join(nodeDir, "bin"), "node", "exit 0")
	fakeNpmInstallerScript(t, filepath.Join(nodeDir, "bin"))

	sess := newTestSessionWithLayout(t, l)
	platform := toolchain.Platform{Node: toolchain.Field{Version: version.MustNew("18.17.1"), Source: toolchain.SourceCommandLine}}

	pi := &PackageInstall{
		Argv:      []string{"npm", "install", "-g", "demo-cli"},
		Name:      "demo-cli",
		Installer: toolchain.ManagerNpm,
		Platform:  platform,
	}

	code, err := pi.Run(sess, fetcher.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	cfg, err := toolchain.ReadPackageConfig(l, "demo-cli")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Contains(t, cfg.Bins, "demo-cli")

	linkPath := filepath.Join(l.ImageDir(layout.Packages, "demo-cli"), "bin", "demo-cli")
	_, err = os.Lstat(linkPath)
	assert.NoError(t, err, "install should symlink the package's declared bin")

	_, err = os.Lstat(l.SharedDir("demo-cli"))
	assert.True(t, os.IsNotExist(err), "a package with no node_modules of its own must not get a shared-lib link")
}

// fakeNpmInstallerScriptWithDeps behaves like fakeNpmInstallerScript but
// also stages a node_modules directory inside the installed package,
// simulating a package that carries its own peer/hoisted dependencies.
func fakeNpmInstallerScriptWithDeps(t *testing.T, dir string) {
	t.Helper()
	script := `#!/bin/sh
prefix=""
while [ "$#" -gt 0 ]; do
  case "$1" in
    --prefix) prefix="$2"; shift 2 ;;
    *) shift ;;
  esac
done
mkdir -p "$prefix/lib/node_modules/demo-cli-deps/bin"
mkdir -p "$prefix/lib/node_modules/demo-cli-deps/node_modules/left-pad"
cat > "$prefix/lib/node_modules/demo-cli-deps/package.json" <<'EOF'
{"name":"demo-cli-deps","version":"2.0.0","bin":"bin/demo-cli-deps.js"}
EOF
cat > "$prefix/lib/node_modules/demo-cli-deps/bin/demo-cli-deps.js" <<'EOF'
#!/usr/bin/env node
EOF
exit 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "npm"), []byte(script), 0755))
}

func TestPackageInstallLinksSharedModulesWhenPackageCarriesNodeModules(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture is unix-specific")
	}

	l := layout.New(t.TempDir())
	nodeDir := l.ImageDir(layout.Node, "18.17.1")
	require.NoError(t, os.MkdirAll(filepath.Join(nodeDir, "bin"), 0755))
	writeExecutableScript(t, filepath.Join(nodeDir, "bin"), "node", "exit 0")
	fakeNpmInstallerScriptWithDeps(t, filepath.Join(nodeDir, "bin"))

	sess := newTestSessionWithLayout(t, l)
	platform := toolchain.Platform{Node: toolchain.Field{Version: version.MustNew("18.17.1"), Source: toolchain.SourceCommandLine}}

	pi := &PackageInstall{
		Argv:      []string{"npm", "install", "-g", "demo-cli-deps"},
		Name:      "demo-cli-deps",
		Installer: toolchain.ManagerNpm,
		Platform:  platform,
	}

	_, err := pi.Run(sess, fetcher.Options{})
	require.NoError(t, err)

	sharedDir := l.SharedDir("demo-cli-deps")
	target, err := os.Readlink(sharedDir)
	require.NoError(t, err, "install should symlink the package's node_modules into the shared-lib root")
	assert.Equal(t, filepath.Join(l.ImageDir(layout.Packages, "demo-cli-deps"), "node_modules"), target)

	_, err = os.Stat(filepath.Join(sharedDir, "left-pad"))
	assert.NoError(t, err)
}

func TestPackageLinkRequiresMatchingInstaller(t *testing.T) {
	l := layout.New(t.TempDir())
	require.NoError(t, toolchain.WritePackageConfig(l, toolchain.PackageConfig{
		Name: "demo-cli", Version: "1.2.3", Manager: toolchain.ManagerNpm, Bins: []string{"demo-cli"},
	}))

	sess := newTestSessionWithLayout(t, l)
	link := &PackageLink{Name: "demo-cli", Installer: toolchain.ManagerYarn}
	_, err := link.Run(sess, fetcher.Options{})
	assert.Error(t, err)
}
