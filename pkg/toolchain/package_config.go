package toolchain

import (
	"encoding/json"
	"os"

	"github.com/flanksource/jsvm/pkg/atomicfile"
	"github.com/flanksource/jsvm/pkg/layout"
)

// Manager is the package manager that installed a third-party package.
type Manager string

const (
	ManagerNpm  Manager = "npm"
	ManagerPnpm Manager = "pnpm"
	ManagerYarn Manager = "yarn"
)

// PackageConfig is the persisted record for one installed third-party
// package, written by the install interceptor after a successful
// global install and consulted by link/upgrade/uninstall.
type PackageConfig struct {
	Name     string       `json:"name"`
	Version  string       `json:"version"`
	Platform PlatformSpec `json:"platform"`
	Manager  Manager      `json:"manager"`
	Bins     []string     `json:"bins"`
}

// BinConfig is the persisted record for one executable shipped by a
// PackageConfig, keyed by the binary's own filename.
type BinConfig struct {
	Name     string       `json:"name"`
	Package  string       `json:"package"`
	Version  string       `json:"version"`
	Platform PlatformSpec `json:"platform"`
	Manager  Manager      `json:"manager"`
}

// WritePackageConfig persists cfg to user/packages/<name>.json.
func WritePackageConfig(l layout.Layout, cfg PackageConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(l.PackageConfigFile(cfg.Name), data, 0644)
}

// ReadPackageConfig reads user/packages/<name>.json.
func ReadPackageConfig(l layout.Layout, name string) (PackageConfig, error) {
	var cfg PackageConfig
	data, err := os.ReadFile(l.PackageConfigFile(name))
	if err != nil {
		return cfg, err
	}
	err = json.Unmarshal(data, &cfg)
	return cfg, err
}

// DeletePackageConfig removes user/packages/<name>.json, tolerating
// "already gone".
func DeletePackageConfig(l layout.Layout, name string) error {
	err := os.Remove(l.PackageConfigFile(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// WriteBinConfig persists cfg to user/bins/<name>.json.
func WriteBinConfig(l layout.Layout, cfg BinConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(l.BinConfigFile(cfg.Name), data, 0644)
}

// ReadBinConfig reads user/bins/<name>.json.
func ReadBinConfig(l layout.Layout, name string) (BinConfig, error) {
	var cfg BinConfig
	data, err := os.ReadFile(l.BinConfigFile(name))
	if err != nil {
		return cfg, err
	}
	err = json.Unmarshal(data, &cfg)
	return cfg, err
}

// DeleteBinConfig removes user/bins/<name>.json, tolerating "already gone".
func DeleteBinConfig(l layout.Layout, name string) error {
	err := os.Remove(l.BinConfigFile(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// HasBinConfig reports whether a BinConfig exists for name.
func HasBinConfig(l layout.Layout, name string) bool {
	_, err := os.Stat(l.BinConfigFile(name))
	return err == nil
}
