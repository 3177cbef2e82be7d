package registry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePackageMeta = `{
  "name": "typescript",
  "versions": {
    "5.2.2": {"version":"5.2.2","dist":{"shasum":"abc","tarball":"https://registry.npmjs.org/typescript/-/typescript-5.2.2.tgz"}},
    "5.3.3": {"version":"5.3.3","dist":{"shasum":"def","tarball":"https://registry.npmjs.org/typescript/-/typescript-5.3.3.tgz"}}
  },
  "dist-tags": {"latest":"5.3.3", "beta":"5.2.2"}
}`

func TestFetchPackageMetadataSetsAcceptHeader(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(samplePackageMeta))
	}))
	defer srv.Close()

	meta, err := FetchPackageMetadata(srv.Client(), srv.URL, "typescript")
	require.NoError(t, err)
	assert.Equal(t, packageAcceptHeader, gotAccept)
	assert.Equal(t, "typescript", meta.Name)
	assert.Len(t, meta.Versions, 2)
}

func TestPackageMetadataResolveExactRangeAndTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePackageMeta))
	}))
	defer srv.Close()

	meta, err := FetchPackageMetadata(srv.Client(), srv.URL, "typescript")
	require.NoError(t, err)

	v, err := meta.Resolve(mustParseSpec(t, "latest"))
	require.NoError(t, err)
	assert.Equal(t, "5.3.3", v.String())

	v, err = meta.Resolve(mustParseSpec(t, "beta"))
	require.NoError(t, err)
	assert.Equal(t, "5.2.2", v.String())

	v, err = meta.Resolve(mustParseSpec(t, "^5.2.0"))
	require.NoError(t, err)
	assert.Equal(t, "5.3.3", v.String())

	_, err = meta.Resolve(mustParseSpec(t, "9.9.9"))
	assert.Error(t, err)
}
