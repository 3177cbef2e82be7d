package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/version"
)

func TestCollectEmptyLayout(t *testing.T) {
	l := layout.New(t.TempDir())
	inv, err := Collect(l)
	require.NoError(t, err)
	assert.Empty(t, inv.Node)
	assert.Empty(t, inv.Packages)
}

func TestCollectFindsVersionsAndPackages(t *testing.T) {
	l := layout.New(t.TempDir())

	require.NoError(t, os.MkdirAll(l.ImageDir(layout.Node, "18.17.1"), 0755))
	require.NoError(t, os.MkdirAll(l.ImageDir(layout.Node, "16.20.0"), 0755))
	// A leftover staging-style directory name should be skipped, not fail the scan.
	require.NoError(t, os.MkdirAll(filepath.Join(l.ImageRoot(layout.Node), "staging-abc123"), 0755))

	require.NoError(t, toolchain.WritePackageConfig(l, toolchain.PackageConfig{
		Name: "typescript", Version: "5.2.2", Manager: toolchain.ManagerNpm, Bins: []string{"tsc"},
	}))

	inv, err := Collect(l)
	require.NoError(t, err)
	require.Len(t, inv.Node, 2)
	assert.True(t, inv.Node[0].Equal(version.MustNew("16.20.0")))
	assert.True(t, inv.Node[1].Equal(version.MustNew("18.17.1")))
	assert.True(t, inv.HasNode(version.MustNew("18.17.1")))
	assert.False(t, inv.HasNode(version.MustNew("20.0.0")))

	require.Len(t, inv.Packages, 1)
	assert.Equal(t, "typescript", inv.Packages[0].Name)
}
