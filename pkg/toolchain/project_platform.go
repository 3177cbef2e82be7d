package toolchain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// manifestName is the project manifest file this module looks for at
// each directory level. Only the top-level "volta" key is read from it;
// everything else in the manifest is the package manager's business.
const manifestName = "package.json"

type pinnedManifest struct {
	Volta *pinnedPlatform `json:"volta,omitempty"`
}

type pinnedPlatform struct {
	PlatformSpec
	Extends string `json:"extends,omitempty"`
}

// DiscoverProjectPlatform walks parent directories from startDir,
// looking for the nearest manifest with a top-level "volta" key. It
// returns false if none is found. volta.extends is followed
// transitively; a cycle is an error.
func DiscoverProjectPlatform(startDir string) (Platform, bool, error) {
	manifestPath, pinned, found, err := findPinnedManifest(startDir)
	if err != nil || !found {
		return Platform{}, false, err
	}

	resolved, err := resolveExtends(manifestPath, pinned, map[string]bool{})
	if err != nil {
		return Platform{}, false, err
	}

	p, err := ToPlatform(resolved.PlatformSpec, SourceProject)
	if err != nil {
		return Platform{}, false, err
	}
	return p, true, nil
}

// ProjectRoot returns the directory of the nearest manifest declaring a
// volta pin, the same directory DiscoverProjectPlatform resolves its
// platform from. Used to locate node_modules relative to the project
// rather than the invocation's cwd.
func ProjectRoot(startDir string) (string, bool, error) {
	manifestPath, _, found, err := findPinnedManifest(startDir)
	if err != nil || !found {
		return "", false, err
	}
	return filepath.Dir(manifestPath), true, nil
}

// NeedsYarnRun reports whether the project rooted at dir expects its
// binaries to be invoked through `yarn run` rather than directly, which
// this module approximates by the presence of a yarn.lock.
func NeedsYarnRun(root string) bool {
	_, err := os.Stat(filepath.Join(root, "yarn.lock"))
	return err == nil
}

// FindProjectBin locates a direct binary under the project's installed
// modules, looking only in root/node_modules/.bin (not startDir or any
// parent: node_modules is resolved relative to the project, not the
// invocation's cwd). A node_modules/.bin
// entry only counts if some package the project's own manifest declares
// as a direct dependency actually owns it; a stale or hoisted .bin entry
// left behind by an unrelated transitive dependency is not a hit.
func FindProjectBin(root, name string) (string, bool) {
	if !hasDirectBin(root, name) {
		return "", false
	}

	binPath := filepath.Join(root, "node_modules", ".bin", name)
	if info, err := os.Stat(binPath); err == nil && !info.IsDir() {
		return binPath, true
	}
	return "", false
}

type projectManifestDeps struct {
	Dependencies         map[string]json.RawMessage `json:"dependencies"`
	DevDependencies      map[string]json.RawMessage `json:"devDependencies"`
	OptionalDependencies map[string]json.RawMessage `json:"optionalDependencies"`
}

type depPackageManifest struct {
	Name string      `json:"name"`
	Bin  interface{} `json:"bin"`
}

// declaresBin reports whether m's own "bin" field (a bare string, which
// names the package's own basename, or a name->path map) names exe.
func (m depPackageManifest) declaresBin(exe string) bool {
	switch b := m.Bin.(type) {
	case string:
		return filepath.Base(m.Name) == exe
	case map[string]interface{}:
		_, ok := b[exe]
		return ok
	}
	return false
}

// hasDirectBin reports whether root's manifest declares, as a
// dependency/devDependency/optionalDependency, some package whose own
// node_modules/<dep>/package.json names exe in its "bin" field. This is
// the guard a node_modules/.bin hit must pass before being trusted: it
// rejects a binary that only exists because some unrelated transitive
// dependency happened to hoist it there.
func hasDirectBin(root, exe string) bool {
	data, err := os.ReadFile(filepath.Join(root, manifestName))
	if err != nil {
		return false
	}

	var deps projectManifestDeps
	if err := json.Unmarshal(data, &deps); err != nil {
		return false
	}

	for name := range deps.Dependencies {
		if depDeclaresBin(root, name, exe) {
			return true
		}
	}
	for name := range deps.DevDependencies {
		if depDeclaresBin(root, name, exe) {
			return true
		}
	}
	for name := range deps.OptionalDependencies {
		if depDeclaresBin(root, name, exe) {
			return true
		}
	}
	return false
}

func depDeclaresBin(root, depName, exe string) bool {
	data, err := os.ReadFile(filepath.Join(root, "node_modules", filepath.FromSlash(depName), "package.json"))
	if err != nil {
		return false
	}

	var m depPackageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return false
	}
	return m.declaresBin(exe)
}

func findPinnedManifest(startDir string) (string, pinnedPlatform, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", pinnedPlatform{}, false, err
	}

	for {
		path := filepath.Join(dir, manifestName)
		if m, ok, err := readManifest(path); err != nil {
			return "", pinnedPlatform{}, false, err
		} else if ok {
			return path, *m.Volta, true, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", pinnedPlatform{}, false, nil
		}
		dir = parent
	}
}

func readManifest(path string) (pinnedManifest, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return pinnedManifest{}, false, nil
	}
	if err != nil {
		return pinnedManifest{}, false, err
	}

	var m pinnedManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return pinnedManifest{}, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.Volta == nil {
		return pinnedManifest{}, false, nil
	}
	return m, true, nil
}

// resolveExtends follows pinned.Extends until a manifest with no
// Extends is reached, rejecting any manifest path visited twice.
func resolveExtends(manifestPath string, pinned pinnedPlatform, visited map[string]bool) (pinnedPlatform, error) {
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return pinnedPlatform{}, err
	}
	if visited[abs] {
		return pinnedPlatform{}, fmt.Errorf("volta.extends cycle detected at %s", manifestPath)
	}
	visited[abs] = true

	if pinned.Extends == "" {
		return pinned, nil
	}

	nextPath := pinned.Extends
	if !filepath.IsAbs(nextPath) {
		nextPath = filepath.Join(filepath.Dir(manifestPath), nextPath)
	}

	m, ok, err := readManifest(nextPath)
	if err != nil {
		return pinnedPlatform{}, err
	}
	if !ok {
		return pinnedPlatform{}, fmt.Errorf("volta.extends target %s has no volta key", nextPath)
	}

	parent, err := resolveExtends(nextPath, *m.Volta, visited)
	if err != nil {
		return pinnedPlatform{}, err
	}

	// The extending manifest's own fields take precedence over the
	// parent's, mirroring the command-line-wins merge rule.
	merged := pinned
	if merged.Node == nil {
		merged.Node = parent.Node
	}
	if merged.Pnpm == "" {
		merged.Pnpm = parent.Pnpm
	}
	if merged.Yarn == "" {
		merged.Yarn = parent.Yarn
	}
	return merged, nil
}
