package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultsWhenNoOverlayExists(t *testing.T) {
	root := t.TempDir()
	cwd := t.TempDir()

	settings, err := Load(cwd, root)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), settings)
}

func TestLoadPrefersCwdOverlayOverRoot(t *testing.T) {
	root := t.TempDir()
	cwd := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, FileName),
		[]byte("node_dist_mirror: https://root.example/dist\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(cwd, FileName),
		[]byte("node_dist_mirror: https://cwd.example/dist\n"), 0644))

	settings, err := Load(cwd, root)
	require.NoError(t, err)
	assert.Equal(t, "https://cwd.example/dist", settings.NodeDistMirror)
}

func TestLoadMergesOverlayOntoDefaults(t *testing.T) {
	root := t.TempDir()
	cwd := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(cwd, FileName),
		[]byte("feature_pnpm: true\n"), 0644))

	settings, err := Load(cwd, root)
	require.NoError(t, err)
	assert.True(t, settings.FeaturePnpm)
	assert.Equal(t, Defaults().NodeDistMirror, settings.NodeDistMirror, "unset overlay fields keep their default")
}

func TestLoadFeaturePnpmEnvVarWinsOverOverlay(t *testing.T) {
	root := t.TempDir()
	cwd := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(cwd, FileName),
		[]byte("feature_pnpm: true\n"), 0644))

	t.Setenv(featurePnpmEnvVar, "0")
	settings, err := Load(cwd, root)
	require.NoError(t, err)
	assert.False(t, settings.FeaturePnpm)

	t.Setenv(featurePnpmEnvVar, "1")
	settings, err = Load(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	assert.True(t, settings.FeaturePnpm)
}

func TestLoadExpandsRelativeCacheDirAgainstRoot(t *testing.T) {
	root := t.TempDir()
	cwd := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(cwd, FileName),
		[]byte("cache_dir: cache\n"), 0644))

	settings, err := Load(cwd, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "cache"), settings.CacheDir)
}
