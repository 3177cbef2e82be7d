// Package extract dispatches archive unpacking by file suffix: this
// module picks the right implementation and delegates to it.
package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/flanksource/commons/files"
)

// Unpack extracts archivePath into destDir, creating destDir if needed.
// Supports the two archive kinds a node/npm/pnpm/yarn distribution is
// ever published as: .tar.gz (unix) and .zip (Windows).
func Unpack(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating extract directory: %w", err)
	}

	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz"):
		if err := files.Untar(archivePath, destDir); err != nil {
			return fmt.Errorf("extracting %s: %w", archivePath, err)
		}
	case strings.HasSuffix(lower, ".zip"):
		if err := files.Unzip(archivePath, destDir); err != nil {
			return fmt.Errorf("extracting %s: %w", archivePath, err)
		}
	default:
		return fmt.Errorf("unsupported archive type: %s", archivePath)
	}
	return nil
}
