package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jsvm/pkg/fetcher"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/version"
)

func TestUninstallNodeClearsMatchingDefaultPlatform(t *testing.T) {
	l := layout.New(t.TempDir())
	nodeDir := l.ImageDir(layout.Node, "18.17.1")
	require.NoError(t, os.MkdirAll(nodeDir, 0755))
	require.NoError(t, toolchain.WriteDefaultPlatform(l, toolchain.Platform{
		Node: toolchain.Field{Version: version.MustNew("18.17.1"), Source: toolchain.SourceDefault},
	}))

	sess := newTestSessionWithLayout(t, l)
	u := &Uninstall{Family: layout.Node, Name: "18.17.1"}
	code, err := u.Run(sess, fetcher.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	_, statErr := os.Stat(nodeDir)
	assert.True(t, os.IsNotExist(statErr))

	def, err := toolchain.ReadDefaultPlatform(l)
	require.NoError(t, err)
	assert.False(t, def.HasNode(), "removing the default node version must clear the default platform entirely")
}

func TestUninstallNodeRemovesSharedLink(t *testing.T) {
	l := layout.New(t.TempDir())
	nodeDir := l.ImageDir(layout.Node, "18.17.1")
	require.NoError(t, os.MkdirAll(nodeDir, 0755))

	sharedDir := l.SharedDir("node")
	require.NoError(t, os.MkdirAll(filepath.Dir(sharedDir), 0755))
	require.NoError(t, os.Symlink(nodeDir, sharedDir))

	sess := newTestSessionWithLayout(t, l)
	u := &Uninstall{Family: layout.Node, Name: "18.17.1"}
	_, err := u.Run(sess, fetcher.Options{})
	require.NoError(t, err)

	_, statErr := os.Lstat(sharedDir)
	assert.True(t, os.IsNotExist(statErr), "uninstalling node must remove its shared-link")
}

func TestUninstallNodeLeavesUnrelatedDefaultPlatformAlone(t *testing.T) {
	l := layout.New(t.TempDir())
	require.NoError(t, os.MkdirAll(l.ImageDir(layout.Node, "16.0.0"), 0755))
	require.NoError(t, toolchain.WriteDefaultPlatform(l, toolchain.Platform{
		Node: toolchain.Field{Version: version.MustNew("18.17.1"), Source: toolchain.SourceDefault},
	}))

	sess := newTestSessionWithLayout(t, l)
	u := &Uninstall{Family: layout.Node, Name: "16.0.0"}
	_, err := u.Run(sess, fetcher.Options{})
	require.NoError(t, err)

	def, err := toolchain.ReadDefaultPlatform(l)
	require.NoError(t, err)
	assert.True(t, def.Node.Version.Equal(version.MustNew("18.17.1")))
}

func TestUninstallPackageRemovesConfigBinsAndImage(t *testing.T) {
	l := layout.New(t.TempDir())
	require.NoError(t, toolchain.WritePackageConfig(l, toolchain.PackageConfig{
		Name: "demo-cli", Version: "1.2.3", Manager: toolchain.ManagerNpm, Bins: []string{"demo-cli"},
	}))
	require.NoError(t, toolchain.WriteBinConfig(l, toolchain.BinConfig{
		Name: "demo-cli", Package: "demo-cli", Version: "1.2.3", Manager: toolchain.ManagerNpm,
	}))
	require.NoError(t, os.MkdirAll(l.ImageDir(layout.Packages, "demo-cli"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Dir(l.SharedDir("demo-cli")), 0755))
	require.NoError(t, os.Symlink(l.ImageDir(layout.Packages, "demo-cli"), l.SharedDir("demo-cli")))

	sess := newTestSessionWithLayout(t, l)
	u := &Uninstall{Family: layout.Packages, Name: "demo-cli"}
	_, err := u.Run(sess, fetcher.Options{})
	require.NoError(t, err)

	_, err = toolchain.ReadPackageConfig(l, "demo-cli")
	assert.Error(t, err)
	assert.False(t, toolchain.HasBinConfig(l, "demo-cli"))

	_, statErr := os.Stat(l.ImageDir(layout.Packages, "demo-cli"))
	assert.True(t, os.IsNotExist(statErr))

	_, statErr = os.Lstat(l.SharedDir("demo-cli"))
	assert.True(t, os.IsNotExist(statErr), "uninstall must remove the shared-lib link it owns")
}

func TestUninstallUnknownPackageErrors(t *testing.T) {
	l := layout.New(t.TempDir())
	sess := newTestSessionWithLayout(t, l)
	u := &Uninstall{Family: layout.Packages, Name: "never-installed"}
	_, err := u.Run(sess, fetcher.Options{})
	assert.Error(t, err)
}
