//go:build !windows

package shim

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/flanksource/jsvm/pkg/layout"
)

func createUnix(l layout.Layout, name string) (Result, error) {
	launcher, err := LauncherPath()
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(l.BinDir(), 0755); err != nil {
		return 0, err
	}

	target := filepath.Join(l.BinDir(), name)
	if err := os.Symlink(launcher, target); err == nil {
		return Created, nil
	} else if !errors.Is(err, os.ErrExist) {
		return 0, err
	}

	// Idempotent rewrite: an existing shim (stale launcher path, or a
	// leftover from an older install) is replaced outright.
	if err := os.Remove(target); err != nil {
		return 0, err
	}
	if err := os.Symlink(launcher, target); err != nil {
		return 0, err
	}
	return AlreadyExists, nil
}

func deleteUnix(l layout.Layout, name string) error {
	err := os.Remove(filepath.Join(l.BinDir(), name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func enumerateUnix(l layout.Layout) ([]string, error) {
	entries, err := os.ReadDir(l.BinDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		info, err := os.Lstat(filepath.Join(l.BinDir(), e.Name()))
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
