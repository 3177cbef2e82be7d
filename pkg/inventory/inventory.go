// Package inventory enumerates what is actually installed by scanning
// the layout directories. It never trusts a cache of what "should" be
// there, since images are the source of truth once written.
package inventory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/version"
)

// Inventory is a read-only snapshot of installed versions and packages.
type Inventory struct {
	Node     []version.Version
	Npm      []version.Version
	Pnpm     []version.Version
	Yarn     []version.Version
	Packages []toolchain.PackageConfig
}

// Collect scans every image directory under l and every PackageConfig
// file under the user directory. Directories that don't exist yet are
// treated as empty, not an error.
func Collect(l layout.Layout) (Inventory, error) {
	var inv Inventory
	var err error

	if inv.Node, err = scanVersions(l.ImageRoot(layout.Node)); err != nil {
		return inv, err
	}
	if inv.Npm, err = scanVersions(l.ImageRoot(layout.Npm)); err != nil {
		return inv, err
	}
	if inv.Pnpm, err = scanVersions(l.ImageRoot(layout.Pnpm)); err != nil {
		return inv, err
	}
	if inv.Yarn, err = scanVersions(l.ImageRoot(layout.Yarn)); err != nil {
		return inv, err
	}
	if inv.Packages, err = scanPackages(l.PackageConfigDir()); err != nil {
		return inv, err
	}

	return inv, nil
}

// HasNode reports whether v is installed.
func (inv Inventory) HasNode(v version.Version) bool { return contains(inv.Node, v) }

// HasNpm reports whether v is installed.
func (inv Inventory) HasNpm(v version.Version) bool { return contains(inv.Npm, v) }

// HasPnpm reports whether v is installed.
func (inv Inventory) HasPnpm(v version.Version) bool { return contains(inv.Pnpm, v) }

// HasYarn reports whether v is installed.
func (inv Inventory) HasYarn(v version.Version) bool { return contains(inv.Yarn, v) }

func contains(vs []version.Version, v version.Version) bool {
	for _, x := range vs {
		if x.Equal(v) {
			return true
		}
	}
	return false
}

func scanVersions(dir string) ([]version.Version, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []version.Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := version.New(e.Name())
		if err != nil {
			// Not a version-named directory (e.g. leftover staging);
			// skip rather than fail the whole scan.
			continue
		}
		out = append(out, v)
	}
	version.Sort(out)
	return out, nil
}

func scanPackages(dir string) ([]toolchain.PackageConfig, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []toolchain.PackageConfig
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		var cfg toolchain.PackageConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			continue
		}
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
