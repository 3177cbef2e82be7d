package toolchain

import (
	"encoding/json"
	"os"

	"github.com/flanksource/jsvm/pkg/atomicfile"
	"github.com/flanksource/jsvm/pkg/toolerrors"
)

// WriteProjectPin merges updates into manifestPath's top-level "volta"
// key, preserving every other key in the manifest and any existing
// "extends" pointer. Fields absent from updates are left as they were,
// matching the default-platform setter's "leave untouched" contract.
func WriteProjectPin(manifestPath string, updates PlatformSpec) error {
	raw, err := readManifestRaw(manifestPath)
	if err != nil {
		return err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &toolerrors.ConfigurationError{Message: "parsing " + manifestPath + ": " + err.Error()}
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}

	var existing pinnedPlatform
	if v, ok := doc["volta"]; ok {
		_ = json.Unmarshal(v, &existing)
	}

	merged := existing.PlatformSpec
	if updates.Node != nil {
		// Merge node's sub-fields individually: a pin of npm alone must
		// not wipe out an already-pinned runtime.
		node := NodeSpec{}
		if merged.Node != nil {
			node = *merged.Node
		}
		if updates.Node.Runtime != "" {
			node.Runtime = updates.Node.Runtime
		}
		if updates.Node.Npm != "" {
			node.Npm = updates.Node.Npm
		}
		merged.Node = &node
	}
	if updates.Pnpm != "" {
		merged.Pnpm = updates.Pnpm
	}
	if updates.Yarn != "" {
		merged.Yarn = updates.Yarn
	}

	if merged.Node == nil || merged.Node.Runtime == "" {
		return &toolerrors.ConfigurationError{
			Message: "cannot pin a package manager in " + manifestPath + " without a pinned node; pin node first",
		}
	}

	newVolta, err := json.Marshal(pinnedPlatform{PlatformSpec: merged, Extends: existing.Extends})
	if err != nil {
		return err
	}
	doc["volta"] = newVolta

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(manifestPath, out, 0644)
}

func readManifestRaw(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &toolerrors.FileSystemError{Op: "read", Path: path, Err: err}
	}
	if len(data) == 0 {
		return []byte("{}"), nil
	}
	return data, nil
}
