// Package config reads the optional repo-native toolchain.yaml overlay:
// settings a project can set for local-dev ergonomics (dist mirror,
// registry URL, feature gates) that sit alongside, but are never part of,
// the pinned-platform wire format in a project's manifest: YAML in,
// defaulted and path-expanded out.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the overlay file this module looks for in the current
// directory and, failing that, under the managed root.
const FileName = "toolchain.yaml"

// Settings is the parsed toolchain.yaml overlay.
type Settings struct {
	// NodeDistMirror overrides the node distribution mirror base URL.
	NodeDistMirror string `yaml:"node_dist_mirror,omitempty"`
	// PackageRegistry overrides the npm-style metadata endpoint base URL.
	PackageRegistry string `yaml:"package_registry,omitempty"`
	// CacheDir is parsed and path-expanded only; no component reads it,
	// and archives/indices are always cached under the layout's own
	// inventory directory.
	CacheDir string `yaml:"cache_dir,omitempty"`
	// FeaturePnpm gates the pnpm-as-first-class-tool path, mirroring
	// the <ROOT>_FEATURE_PNPM environment variable (the env var wins
	// when both are set).
	FeaturePnpm bool `yaml:"feature_pnpm,omitempty"`
}

const (
	defaultNodeDistMirror  = "https://nodejs.org/dist"
	defaultPackageRegistry = "https://registry.npmjs.org"

	featurePnpmEnvVar = "JSVM_FEATURE_PNPM"
)

// Defaults returns the built-in settings used when no toolchain.yaml is
// present anywhere in the search path.
func Defaults() Settings {
	return Settings{
		NodeDistMirror:  defaultNodeDistMirror,
		PackageRegistry: defaultPackageRegistry,
	}
}

// Load searches cwd and then root for toolchain.yaml, merging whichever
// it finds over Defaults(); an absent file at either location is not an
// error. Relative CacheDir values are expanded against root.
func Load(cwd, root string) (Settings, error) {
	settings := Defaults()

	if path, ok := findOverlay(cwd, root); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return settings, err
		}

		var overlay Settings
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return settings, err
		}
		settings = mergeOverlay(settings, overlay)
	}

	if v, ok := os.LookupEnv(featurePnpmEnvVar); ok {
		settings.FeaturePnpm = v == "1" || strings.EqualFold(v, "true")
	}

	if settings.CacheDir != "" && !filepath.IsAbs(settings.CacheDir) {
		settings.CacheDir = expandPath(settings.CacheDir, root)
	}

	return settings, nil
}

func findOverlay(cwd, root string) (string, bool) {
	for _, dir := range []string{cwd, root} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// mergeOverlay applies overlay's non-zero fields on top of base.
func mergeOverlay(base, overlay Settings) Settings {
	if overlay.NodeDistMirror != "" {
		base.NodeDistMirror = overlay.NodeDistMirror
	}
	if overlay.PackageRegistry != "" {
		base.PackageRegistry = overlay.PackageRegistry
	}
	if overlay.CacheDir != "" {
		base.CacheDir = overlay.CacheDir
	}
	if overlay.FeaturePnpm {
		base.FeaturePnpm = true
	}
	return base
}

func expandPath(path, root string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Join(root, path)
}
