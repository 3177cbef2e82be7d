package registry

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/version"
)

const sampleIndex = `[
  {"version":"v20.10.0","npm":"10.2.3","lts":"Iron"},
  {"version":"v18.19.0","npm":"10.2.3","lts":"Hydrogen"},
  {"version":"v21.5.0","npm":"10.2.5","lts":false}
]`

func TestFetchIndexColdFetchWritesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Cache-Control", "max-age=3600")
		w.Write([]byte(sampleIndex))
	}))
	defer srv.Close()

	l := layout.New(t.TempDir())
	idx, err := FetchIndex(srv.Client(), l, srv.URL, time.Now())
	require.NoError(t, err)
	require.Len(t, idx, 3)
	assert.Equal(t, 1, hits)

	data, err := os.ReadFile(l.NodeIndexFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), srv.URL)
}

func TestFetchIndexServesFromCacheWhenFresh(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Cache-Control", "max-age=3600")
		w.Write([]byte(sampleIndex))
	}))
	defer srv.Close()

	l := layout.New(t.TempDir())
	_, err := FetchIndex(srv.Client(), l, srv.URL, time.Now())
	require.NoError(t, err)

	_, err = FetchIndex(srv.Client(), l, srv.URL, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second fetch should be served from cache")
}

// TestFetchIndexCacheMissOnURLChange verifies the concrete scenario
// "Index cache miss on URL change": a present, fresh cache whose
// line-1 URL differs from the requested URL is treated as a miss.
func TestFetchIndexCacheMissOnURLChange(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Cache-Control", "max-age=3600")
		w.Write([]byte(sampleIndex))
	}))
	defer srv.Close()

	l := layout.New(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(l.NodeIndexFile()), 0755))
	require.NoError(t, os.WriteFile(l.NodeIndexFile(), []byte("http://stale-mirror.example\n"+sampleIndex), 0644))
	require.NoError(t, os.WriteFile(l.NodeIndexExpiryFile(), []byte(time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)), 0644))

	_, err := FetchIndex(srv.Client(), l, srv.URL, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "URL mismatch must force a fresh fetch")
}

func TestIndexResolveTagsAndRange(t *testing.T) {
	idx := Index{
		{Version: "21.5.0"},
		{Version: "20.10.0"},
		{Version: "18.19.0"},
	}
	idx[2].LTS = []byte(`"Hydrogen"`)
	idx[1].LTS = []byte(`"Iron"`)
	idx[0].LTS = []byte(`false`)

	v, err := idx.Resolve(mustParseSpec(t, "latest"))
	require.NoError(t, err)
	assert.Equal(t, "21.5.0", v.String())

	v, err = idx.Resolve(mustParseSpec(t, "lts"))
	require.NoError(t, err)
	assert.Equal(t, "20.10.0", v.String())

	v, err = idx.Resolve(mustParseSpec(t, "^18.0.0"))
	require.NoError(t, err)
	assert.Equal(t, "18.19.0", v.String())

	_, err = idx.Resolve(mustParseSpec(t, "99.0.0"))
	assert.Error(t, err)
}

func mustParseSpec(t *testing.T, s string) version.VersionSpec {
	t.Helper()
	spec, err := version.Parse(s)
	require.NoError(t, err)
	return spec
}
