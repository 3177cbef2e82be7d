package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/flanksource/jsvm/pkg/version"
)

// packageAcceptHeader requests the lighter npm "install" metadata
// representation first, falling back to full metadata.
const packageAcceptHeader = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8, */*"

// Dist carries the download location and checksum for one published version.
type Dist struct {
	Shasum  string `json:"shasum"`
	Tarball string `json:"tarball"`
}

// VersionInfo is one entry of a package metadata document's "versions" map.
type VersionInfo struct {
	Version string `json:"version"`
	Dist    Dist   `json:"dist"`
}

// PackageMetadata is the deserialised npm-style metadata document for a
// third-party package.
type PackageMetadata struct {
	Name     string                 `json:"name"`
	Versions map[string]VersionInfo `json:"versions"`
	DistTags map[string]string      `json:"dist-tags"`
}

// SortedVersions returns every published version, descending.
func (m *PackageMetadata) SortedVersions() []version.Version {
	var out []version.Version
	for k := range m.Versions {
		v, err := version.New(k)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) > 0 })
	return out
}

// Resolve picks the version satisfying spec: an exact match, the
// highest version in a range, or a dist-tag lookup for a tag spec.
func (m *PackageMetadata) Resolve(spec version.VersionSpec) (version.Version, error) {
	switch spec.Kind {
	case version.SpecExact:
		if _, ok := m.Versions[spec.Exact.String()]; ok {
			return spec.Exact, nil
		}
		return version.Version{}, &version.ErrNoMatch{Tool: m.Name, Spec: spec.String()}

	case version.SpecRange:
		for _, v := range m.SortedVersions() {
			if spec.Satisfies(v) {
				return v, nil
			}
		}
		return version.Version{}, &version.ErrNoMatch{Tool: m.Name, Spec: spec.String()}

	case version.SpecTag:
		tag := spec.Tag.String()
		if raw, ok := m.DistTags[tag]; ok {
			return version.New(raw)
		}
		return version.Version{}, &version.ErrNoMatch{Tool: m.Name, Spec: spec.String()}

	default:
		if raw, ok := m.DistTags["latest"]; ok {
			return version.New(raw)
		}
		return version.Version{}, &version.ErrNoMatch{Tool: m.Name, Spec: spec.String()}
	}
}

// FetchPackageMetadata fetches and parses the metadata document for a
// third-party package from the npm-style registry endpoint baseURL+name.
func FetchPackageMetadata(client *http.Client, baseURL, name string) (*PackageMetadata, error) {
	url := fmt.Sprintf("%s/%s", trimTrailingSlash(baseURL), name)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, &toolerrors.NetworkError{Tool: name, URL: url, Err: err}
	}
	req.Header.Set("Accept", packageAcceptHeader)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &toolerrors.NetworkError{Tool: name, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &toolerrors.NetworkError{Tool: name, URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &toolerrors.NetworkError{Tool: name, URL: url, Err: err}
	}

	var meta PackageMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, &toolerrors.NetworkError{Tool: name, URL: url, Err: err}
	}
	return &meta, nil
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
