package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jsvm/pkg/version"
)

func TestParseToolSpecSplitsNameAndVersion(t *testing.T) {
	spec, err := parseToolSpec("node@18.17.1")
	require.NoError(t, err)
	assert.Equal(t, "node", spec.Name)
	assert.Equal(t, version.SpecExact, spec.Spec.Kind)
}

func TestParseToolSpecWithNoVersionIsSpecNone(t *testing.T) {
	spec, err := parseToolSpec("typescript")
	require.NoError(t, err)
	assert.Equal(t, "typescript", spec.Name)
	assert.Equal(t, version.SpecNone, spec.Spec.Kind)
}

func TestParseToolSpecRejectsBareVersion(t *testing.T) {
	_, err := parseToolSpec("12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node@12")
}

func TestParseToolSpecHandlesScopedPackageWithVersion(t *testing.T) {
	name, specStr := splitToolSpec("@scope/name@1.0.0")
	assert.Equal(t, "@scope/name", name)
	assert.Equal(t, "1.0.0", specStr)
}

func TestParseToolSpecHandlesScopedPackageWithNoVersion(t *testing.T) {
	name, specStr := splitToolSpec("@scope/name")
	assert.Equal(t, "@scope/name", name)
	assert.Equal(t, "", specStr)
}

func TestParseToolSpecRejectsInvalidName(t *testing.T) {
	_, err := parseToolSpec("Not_Valid!")
	assert.Error(t, err)
}

func TestIsReservedTool(t *testing.T) {
	for _, name := range []string{"node", "npm", "pnpm", "yarn"} {
		assert.True(t, isReservedTool(name))
	}
	assert.False(t, isReservedTool("typescript"))
}
