package shim

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/platform"
)

func testLayout(t *testing.T) layout.Layout {
	l := layout.New(t.TempDir())
	l.Platform = platform.Platform{OS: "linux", Arch: "amd64"}
	return l
}

func TestCreateReportsCreatedThenAlreadyExists(t *testing.T) {
	l := testLayout(t)

	result, err := CreateOne(l, "node")
	require.NoError(t, err)
	assert.Equal(t, Created, result)

	result, err = CreateOne(l, "node")
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, result)
}

func TestEnumerateListsSymlinksOnly(t *testing.T) {
	l := testLayout(t)
	require.NoError(t, os.MkdirAll(l.BinDir(), 0755))
	require.NoError(t, os.WriteFile(l.BinDir()+"/not-a-shim.txt", []byte("x"), 0644))

	_, err := CreateOne(l, "node")
	require.NoError(t, err)
	_, err = CreateOne(l, "npm")
	require.NoError(t, err)

	names, err := Enumerate(l)
	require.NoError(t, err)
	assert.Equal(t, []string{"node", "npm"}, names)
}

// TestRegenerateDirIdempotent checks that running RegenerateDir twice
// produces the same directory contents as once.
func TestRegenerateDirIdempotent(t *testing.T) {
	l := testLayout(t)
	require.NoError(t, EnsureDefaults(l))

	require.NoError(t, RegenerateDir(l))
	first, err := Enumerate(l)
	require.NoError(t, err)

	require.NoError(t, RegenerateDir(l))
	second, err := Enumerate(l)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDeleteToleratesAlreadyGone(t *testing.T) {
	l := testLayout(t)
	require.NoError(t, Delete(l, "does-not-exist"))
}
