package shim

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/jsvm/pkg/atomicfile"
	"github.com/flanksource/jsvm/pkg/layout"
)

func createWindows(l layout.Layout, name string) (Result, error) {
	if err := os.MkdirAll(l.BinDir(), 0755); err != nil {
		return 0, err
	}

	cmdPath := filepath.Join(l.BinDir(), name+".cmd")
	scriptPath := filepath.Join(l.BinDir(), name)

	_, statErr := os.Stat(cmdPath)
	existed := statErr == nil

	if err := atomicfile.Write(cmdPath, []byte(cmdScriptTemplate), 0755); err != nil {
		return 0, err
	}
	if err := atomicfile.Write(scriptPath, []byte(companionScript()), 0755); err != nil {
		return 0, err
	}

	if existed {
		return AlreadyExists, nil
	}
	return Created, nil
}

func deleteWindows(l layout.Layout, name string) error {
	cmdErr := os.Remove(filepath.Join(l.BinDir(), name+".cmd"))
	if cmdErr != nil && !os.IsNotExist(cmdErr) {
		return cmdErr
	}
	scriptErr := os.Remove(filepath.Join(l.BinDir(), name))
	if scriptErr != nil && !os.IsNotExist(scriptErr) {
		return scriptErr
	}
	return nil
}

func enumerateWindows(l layout.Layout) ([]string, error) {
	entries, err := os.ReadDir(l.BinDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if strings.EqualFold(filepath.Ext(e.Name()), ".cmd") {
			names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		}
	}
	return names, nil
}
