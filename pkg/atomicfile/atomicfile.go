// Package atomicfile writes files the way every persisted-state component
// in this module must: to a sibling temp file first, then renamed into
// place, so a reader never observes a torn write.
package atomicfile

import (
	"os"
	"path/filepath"
)

// Write creates dir if needed, writes data to a temp file beside path,
// and renames it over path. On most filesystems rename is atomic within
// the same directory, which is why the temp file is created there
// rather than under a shared tmp root.
func Write(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Touch creates path with empty content if it does not already exist,
// leaving any existing content untouched.
func Touch(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return Write(path, nil, 0644)
}
