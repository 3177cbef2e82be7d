package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/flanksource/jsvm/pkg/extract"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/task"
	"github.com/flanksource/jsvm/pkg/toolerrors"
)

// newDownloadClient builds the client archive downloads stream
// through: no overall timeout (a large archive legitimately outlives
// any fixed deadline), a bounded redirect chain reported through the
// task. Index/metadata fetches use the shared commons-backed client
// instead; this one exists only for long-lived body streams.
func newDownloadClient(t *task.Task) *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects (limit: 10)")
			}
			if t != nil && len(via) > 0 {
				t.Debugf("redirect: %s -> %s", via[len(via)-1].URL, req.URL)
			}
			return nil
		},
	}
}

// progressWriter tees byte counts from an archive download into a task,
// so a long fetch reports how far along it is.
type progressWriter struct {
	task    *task.Task
	written int
	total   int
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += len(p)
	w.task.SetProgress(w.written, w.total)
	return len(p), nil
}

// downloadToStaging streams url's body into a staging file named
// basename under the layout's staging directory, returning its path.
func downloadToStaging(client *http.Client, l layout.Layout, url, basename string, t *task.Task) (string, error) {
	if err := os.MkdirAll(l.StagingDir(), 0755); err != nil {
		return "", &toolerrors.FileSystemError{Op: "mkdir", Path: l.StagingDir(), Err: err}
	}

	resp, err := client.Get(url)
	if err != nil {
		return "", &toolerrors.NetworkError{Tool: basename, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &toolerrors.NetworkError{Tool: basename, URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	stagingPath := filepath.Join(l.StagingDir(), basename)
	out, err := os.Create(stagingPath)
	if err != nil {
		return "", &toolerrors.FileSystemError{Op: "create", Path: stagingPath, Err: err}
	}
	defer out.Close()

	progress := &progressWriter{task: t, total: int(resp.ContentLength)}
	if _, err := io.Copy(io.MultiWriter(out, progress), resp.Body); err != nil {
		os.Remove(stagingPath)
		return "", &toolerrors.NetworkError{Tool: basename, URL: url, Err: err}
	}
	return stagingPath, nil
}

// unpack dispatches to the shared extraction primitive.
func unpack(archivePath, destDir string) error {
	if err := extract.Unpack(archivePath, destDir); err != nil {
		return &toolerrors.FileSystemError{Op: "extract", Path: archivePath, Err: err}
	}
	return nil
}

// persistArchive moves a staged archive into the inventory cache so a
// future fetch of the same version skips the network entirely. Best
// effort: a failure here does not unwind a successful install.
func persistArchive(stagedPath, cachePath string) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return err
	}
	return os.Rename(stagedPath, cachePath)
}
