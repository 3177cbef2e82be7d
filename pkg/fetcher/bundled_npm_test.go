package fetcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/version"
)

func TestReadBundledNpmVersionFromManifest(t *testing.T) {
	root := t.TempDir()
	npmDir := filepath.Join(root, "lib", "node_modules", "npm")
	require.NoError(t, os.MkdirAll(npmDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(npmDir, "package.json"), []byte(`{"name":"npm","version":"10.2.3"}`), 0644))

	v, ok := readBundledNpmVersion(root)
	require.True(t, ok)
	assert.Equal(t, "10.2.3", v)
}

func TestReadBundledNpmVersionMissing(t *testing.T) {
	_, ok := readBundledNpmVersion(t.TempDir())
	assert.False(t, ok)
}

func TestWriteAndReadBundledNpmVersionRoundTrip(t *testing.T) {
	l := layout.New(t.TempDir())
	nodeV := version.MustNew("18.17.1")
	require.NoError(t, writeBundledNpmVersion(l, nodeV, "9.6.7"))

	got, err := ReadBundledNpmVersion(l, nodeV)
	require.NoError(t, err)
	assert.True(t, got.Equal(version.MustNew("9.6.7")))
}
