package fetcher

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/flanksource/jsvm/pkg/atomicfile"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/version"
)

// bundledNpmManifestPath locates npm's own package.json inside an
// unpacked node tree, the only place the bundled version is recorded.
func bundledNpmManifestPath(extractedNodeRoot string) string {
	return filepath.Join(extractedNodeRoot, "lib", "node_modules", "npm", "package.json")
}

// readBundledNpmVersion extracts the npm version bundled inside an
// unpacked node archive. Returns ok=false if the tree doesn't carry one
// (e.g. a node archive variant that ships npm separately).
func readBundledNpmVersion(extractedNodeRoot string) (string, bool) {
	data, err := os.ReadFile(bundledNpmManifestPath(extractedNodeRoot))
	if err != nil {
		return "", false
	}
	var manifest struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil || manifest.Version == "" {
		return "", false
	}
	return manifest.Version, true
}

// writeBundledNpmVersion persists the bundled npm version for node v, so
// later "npm@bundled" lookups don't need to re-read the node image.
func writeBundledNpmVersion(l layout.Layout, v version.Version, npmVersion string) error {
	return atomicfile.Write(l.NodeBundledNpmFile(v.String()), []byte(npmVersion), 0644)
}

// ReadBundledNpmVersion reads the persisted bundled npm version for an
// already-installed node version, written by writeBundledNpmVersion
// during that node's Fetch.
func ReadBundledNpmVersion(l layout.Layout, nodeVersion version.Version) (version.Version, error) {
	data, err := os.ReadFile(l.NodeBundledNpmFile(nodeVersion.String()))
	if err != nil {
		return version.Version{}, err
	}
	return version.New(string(data))
}
