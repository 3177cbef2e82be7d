// Package fetcher drives the download-to-staging, unpack-to-staging,
// atomic-rename-into-inventory pipeline for node/npm/pnpm/yarn
// archives, plus the double-checked idempotence guard that keeps two
// concurrent invocations from racing to fetch the same image.
package fetcher

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/platform"
	"github.com/flanksource/jsvm/pkg/task"
	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/flanksource/jsvm/pkg/version"
)

// ArchiveExt returns the archive file extension for p: zip on Windows,
// tar.gz everywhere else.
func ArchiveExt(p platform.Platform) string {
	if p.IsWindows() {
		return "zip"
	}
	return "tar.gz"
}

// nodeOSName maps a normalized GOOS to the name node's own archive
// filenames use, where it differs from Go's spelling.
func nodeOSName(os string) string {
	if os == "windows" {
		return "win"
	}
	return os
}

// nodeArchName maps a normalized GOARCH to the name node's own archive
// filenames use, where it differs from Go's spelling.
func nodeArchName(arch string) string {
	if arch == "amd64" {
		return "x64"
	}
	return arch
}

// ArchiveBasename computes the cache/distribution filename for v under
// family on p, e.g. "node-v18.17.1-linux-x64.tar.gz",
// "npm-v10.2.3.tar.gz" (npm ships as a plain tarball, not
// platform-specific), or "yarn-v1.22.19.tar.gz".
func ArchiveBasename(family layout.Family, v version.Version, p platform.Platform) string {
	ext := ArchiveExt(p)
	switch family {
	case layout.Node:
		arch := nodeArchName(p.NodeArchiveArch(v.Major()))
		return fmt.Sprintf("node-v%s-%s-%s.%s", v.String(), nodeOSName(p.Normalize().OS), arch, ext)
	case layout.Npm:
		return fmt.Sprintf("npm-v%s.%s", v.String(), ext)
	case layout.Pnpm:
		return fmt.Sprintf("pnpm-v%s.%s", v.String(), ext)
	case layout.Yarn:
		return fmt.Sprintf("yarn-v%s.%s", v.String(), ext)
	default:
		return fmt.Sprintf("%s-v%s.%s", family, v.String(), ext)
	}
}

// archiveStem is ArchiveBasename without its extension: the name of the
// single top-level directory a well-formed node/npm/yarn archive
// unpacks to.
func archiveStem(basename string) string {
	for _, ext := range []string{".tar.gz", ".tgz", ".zip"} {
		if strings.HasSuffix(basename, ext) {
			return strings.TrimSuffix(basename, ext)
		}
	}
	return basename
}

// DownloadURL builds the URL to fetch an archive from, given a
// distribution mirror base (e.g. "https://nodejs.org/dist").
func DownloadURL(mirror string, family layout.Family, v version.Version, basename string) string {
	mirror = strings.TrimRight(mirror, "/")
	switch family {
	case layout.Node:
		return fmt.Sprintf("%s/v%s/%s", mirror, v.String(), basename)
	default:
		return fmt.Sprintf("%s/%s", mirror, basename)
	}
}

// Options configures a Fetch call.
type Options struct {
	HTTPClient *http.Client
	DistMirror string
	// Hooks overrides the distribution URL for one or more families.
	// Nil means consult DefaultDistributionHooks.
	Hooks *DistributionHooks
}

func (o Options) clientFor(t *task.Task) *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return newDownloadClient(t)
}

// Result describes what Fetch produced.
type Result struct {
	ImageDir    string
	FromNetwork bool
}

// Fetch runs the full archive pipeline for one tool/version: resolve or
// download the archive, unpack it to staging, and atomically rename the
// unpacked tree into its image directory. Callers are expected to hold
// the Lock for the duration of this call (see CheckFetched).
func Fetch(l layout.Layout, family layout.Family, v version.Version, opts Options) (Result, error) {
	basename := ArchiveBasename(family, v, l.Platform)
	cachePath := l.ArchiveFile(family, basename)

	t := task.New(fmt.Sprintf("%s@%s", family, v))

	if err := os.MkdirAll(l.StagingDir(), 0755); err != nil {
		return Result{}, &toolerrors.FileSystemError{Op: "mkdir", Path: l.StagingDir(), Err: err}
	}

	archivePath := cachePath
	fromNetwork := false
	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		downloadURL, err := ResolveDownloadURL(opts.Hooks, opts.DistMirror, family, v, basename)
		if err != nil {
			t.Fail(err)
			return Result{}, err
		}
		t.Infof("downloading %s", downloadURL)
		staged, err := downloadToStaging(opts.clientFor(t), l, downloadURL, basename, t)
		if err != nil {
			t.Fail(err)
			return Result{}, err
		}
		archivePath = staged
		fromNetwork = true
	} else if err != nil {
		return Result{}, err
	} else {
		t.Debugf("using cached archive %s", cachePath)
	}

	stagingDir, err := os.MkdirTemp(l.StagingDir(), "unpack-")
	if err != nil {
		return Result{}, err
	}
	defer os.RemoveAll(stagingDir)

	t.SetDescription("unpacking")
	if err := unpack(archivePath, stagingDir); err != nil {
		t.Fail(err)
		return Result{}, err
	}

	extractedRoot := filepath.Join(stagingDir, archiveStem(basename))
	if _, err := os.Stat(extractedRoot); os.IsNotExist(err) {
		// Some archives (npm, yarn) unpack to a differently-named top
		// level directory; fall back to "the one entry under staging".
		extractedRoot, err = singleSubdir(stagingDir)
		if err != nil {
			return Result{}, err
		}
	}

	if family == layout.Node {
		if npmVersion, ok := readBundledNpmVersion(extractedRoot); ok {
			_ = writeBundledNpmVersion(l, v, npmVersion)
		}
	}

	imageDir := l.ImageDir(family, v.String())
	if err := os.MkdirAll(filepath.Dir(imageDir), 0755); err != nil {
		return Result{}, err
	}
	if err := renameWithBackoff(extractedRoot, imageDir); err != nil {
		return Result{}, err
	}

	if fromNetwork {
		_ = persistArchive(archivePath, cachePath)
	}

	t.Success()
	return Result{ImageDir: imageDir, FromNetwork: fromNetwork}, nil
}

// singleSubdir returns the one entry under dir, erroring if there isn't
// exactly one.
func singleSubdir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	if len(entries) != 1 {
		return "", fmt.Errorf("expected exactly one entry under %s, found %d", dir, len(entries))
	}
	return filepath.Join(dir, entries[0].Name()), nil
}
