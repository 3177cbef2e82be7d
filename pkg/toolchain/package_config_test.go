package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jsvm/pkg/layout"
)

func TestPackageConfigRoundTrip(t *testing.T) {
	l := layout.New(t.TempDir())
	cfg := PackageConfig{
		Name:    "typescript",
		Version: "5.2.2",
		Manager: ManagerNpm,
		Bins:    []string{"tsc", "tsserver"},
	}
	require.NoError(t, WritePackageConfig(l, cfg))

	got, err := ReadPackageConfig(l, "typescript")
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	require.NoError(t, DeletePackageConfig(l, "typescript"))
	require.NoError(t, DeletePackageConfig(l, "typescript"))
}

func TestBinConfigRoundTrip(t *testing.T) {
	l := layout.New(t.TempDir())
	cfg := BinConfig{Name: "tsc", Package: "typescript", Version: "5.2.2", Manager: ManagerNpm}
	require.NoError(t, WriteBinConfig(l, cfg))
	assert.True(t, HasBinConfig(l, "tsc"))

	got, err := ReadBinConfig(l, "tsc")
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	require.NoError(t, DeleteBinConfig(l, "tsc"))
	assert.False(t, HasBinConfig(l, "tsc"))
}
