// Package registry fetches and caches the remote node version index and
// third-party package metadata, using a two-file (body + expiry) cache
// keyed by a self-describing, URL-prefixed body file rather than a
// hashed cache key.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/flanksource/jsvm/pkg/atomicfile"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/flanksource/jsvm/pkg/version"
)

const defaultIndexTTL = 4 * time.Hour

// Entry is one release record from the node distribution index.
type Entry struct {
	Version string          `json:"version"`
	NPM     string          `json:"npm,omitempty"`
	LTS     json.RawMessage `json:"lts"`
}

// IsLTS reports whether this release is an LTS line: the upstream index
// encodes this as either `false` or the LTS codename string.
func (e Entry) IsLTS() bool {
	var name string
	if err := json.Unmarshal(e.LTS, &name); err == nil {
		return name != ""
	}
	return false
}

// ParsedVersion parses e.Version.
func (e Entry) ParsedVersion() (version.Version, error) { return version.New(e.Version) }

// Index is the parsed node distribution index, in the order the
// upstream mirror publishes it (newest first).
type Index []Entry

// Resolve picks the concrete version satisfying spec, per the same
// priority the CLI itself exposes: an exact version, the highest
// version in a range, or a named tag (latest/lts). Index entries are
// assumed newest-first, matching the upstream mirror's own ordering.
func (idx Index) Resolve(spec version.VersionSpec) (version.Version, error) {
	switch spec.Kind {
	case version.SpecExact:
		for _, e := range idx {
			if v, err := e.ParsedVersion(); err == nil && v.Equal(spec.Exact) {
				return v, nil
			}
		}
		return version.Version{}, &version.ErrNoMatch{Tool: "node", Spec: spec.String()}

	case version.SpecRange:
		candidates := lo.FilterMap(idx, func(e Entry, _ int) (version.Version, bool) {
			v, err := e.ParsedVersion()
			if err != nil || !spec.Satisfies(v) {
				return version.Version{}, false
			}
			return v, true
		})
		best := version.Max(candidates)
		if best.IsZero() {
			return version.Version{}, &version.ErrNoMatch{Tool: "node", Spec: spec.String()}
		}
		return best, nil

	case version.SpecTag:
		switch spec.Tag.Kind {
		case version.TagLatest:
			if len(idx) == 0 {
				return version.Version{}, &version.ErrNoMatch{Tool: "node", Spec: spec.String()}
			}
			return idx[0].ParsedVersion()
		case version.TagLTS:
			for _, e := range idx {
				if e.IsLTS() {
					return e.ParsedVersion()
				}
			}
			return version.Version{}, &version.ErrNoMatch{Tool: "node", Spec: spec.String()}
		default:
			return version.Version{}, &version.ErrNoMatch{Tool: "node", Spec: spec.String()}
		}

	default:
		return version.Version{}, &version.ErrNoMatch{Tool: "node", Spec: spec.String()}
	}
}

// FetchIndex returns the node distribution index for indexURL, serving
// a cached copy when the expiry file is still fresh and its recorded
// URL prefix matches, otherwise issuing a GET and atomically refreshing
// the cache.
func FetchIndex(client *http.Client, l layout.Layout, indexURL string, now time.Time) (Index, error) {
	if idx, ok := readCachedIndex(l, indexURL, now); ok {
		return idx, nil
	}
	return fetchAndCacheIndex(client, l, indexURL)
}

func readCachedIndex(l layout.Layout, indexURL string, now time.Time) (Index, bool) {
	expiryData, err := os.ReadFile(l.NodeIndexExpiryFile())
	if err != nil {
		return nil, false
	}
	expiry, err := http.ParseTime(strings.TrimSpace(string(expiryData)))
	if err != nil || !now.Before(expiry) {
		return nil, false
	}

	data, err := os.ReadFile(l.NodeIndexFile())
	if err != nil {
		return nil, false
	}
	cachedURL, body, ok := cutFirstLine(data)
	if !ok || cachedURL != indexURL {
		return nil, false
	}

	var idx Index
	if err := json.Unmarshal(body, &idx); err != nil {
		return nil, false
	}
	return idx, true
}

func fetchAndCacheIndex(client *http.Client, l layout.Layout, indexURL string) (Index, error) {
	resp, err := client.Get(indexURL)
	if err != nil {
		return nil, &toolerrors.NetworkError{Tool: "node", URL: indexURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &toolerrors.NetworkError{Tool: "node", URL: indexURL, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &toolerrors.NetworkError{Tool: "node", URL: indexURL, Err: err}
	}

	var idx Index
	if err := json.Unmarshal(body, &idx); err != nil {
		return nil, &toolerrors.NetworkError{Tool: "node", URL: indexURL, Err: err}
	}

	expiry := expiryFromResponse(resp, time.Now())
	cached := append([]byte(indexURL+"\n"), body...)
	if err := atomicfile.Write(l.NodeIndexFile(), cached, 0644); err != nil {
		return idx, &toolerrors.FileSystemError{Op: "write", Path: l.NodeIndexFile(), Err: err}
	}
	if err := atomicfile.Write(l.NodeIndexExpiryFile(), []byte(expiry.UTC().Format(http.TimeFormat)), 0644); err != nil {
		return idx, &toolerrors.FileSystemError{Op: "write", Path: l.NodeIndexExpiryFile(), Err: err}
	}
	return idx, nil
}

func expiryFromResponse(resp *http.Response, now time.Time) time.Time {
	if exp := resp.Header.Get("Expires"); exp != "" {
		if t, err := http.ParseTime(exp); err == nil {
			return t
		}
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "" {
		if d, ok := parseMaxAge(cc); ok {
			return now.Add(d)
		}
	}
	return now.Add(defaultIndexTTL)
}

func parseMaxAge(cacheControl string) (time.Duration, bool) {
	for _, part := range strings.Split(cacheControl, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "max-age=") {
			continue
		}
		secs, err := strconv.Atoi(strings.TrimPrefix(part, "max-age="))
		if err != nil {
			continue
		}
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

func cutFirstLine(data []byte) (string, []byte, bool) {
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return "", nil, false
	}
	return string(data[:idx]), data[idx+1:], true
}
