package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTagsAndExact(t *testing.T) {
	cases := []struct {
		in       string
		wantKind SpecKind
	}{
		{"lts", SpecTag},
		{"latest", SpecTag},
		{"beta", SpecTag},
		{"v1.5", SpecExact},
		{"1.5.0", SpecExact},
		{"^1.2", SpecRange},
		{">=1.2.3 <2.0.0", SpecRange},
		{"", SpecNone},
	}

	for _, c := range cases {
		spec, err := Parse(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.wantKind, spec.Kind, c.in)
	}
}

func TestParseTagKinds(t *testing.T) {
	spec, err := Parse("lts")
	require.NoError(t, err)
	assert.Equal(t, TagLTS, spec.Tag.Kind)

	spec, err = Parse("latest")
	require.NoError(t, err)
	assert.Equal(t, TagLatest, spec.Tag.Kind)

	spec, err = Parse("beta")
	require.NoError(t, err)
	assert.Equal(t, TagCustom, spec.Tag.Kind)
	assert.Equal(t, "beta", spec.Tag.Custom)
}

func TestParseExactResolvesVersion(t *testing.T) {
	spec, err := Parse("v1.5")
	require.NoError(t, err)
	require.Equal(t, SpecExact, spec.Kind)
	assert.Equal(t, "1.5.0", spec.Exact.String())
}

func TestParseStripsLeadingV(t *testing.T) {
	withV, err := Parse("v18.17.1")
	require.NoError(t, err)
	withoutV, err := Parse("18.17.1")
	require.NoError(t, err)
	assert.Equal(t, withoutV.Exact.String(), withV.Exact.String())
}

// TestParseRoundTrip checks that for every s accepted by Parse,
// Display(Parse(s)) parses back to an equal value.
func TestParseRoundTrip(t *testing.T) {
	inputs := []string{"lts", "latest", "beta", "v1.5", "1.2.3", "^1.2", ">=1.2.3"}
	for _, s := range inputs {
		spec, err := Parse(s)
		require.NoError(t, err, s)

		again, err := Parse(Display(spec))
		require.NoError(t, err, s)

		assert.Equal(t, spec.Kind, again.Kind, s)
		switch spec.Kind {
		case SpecExact:
			assert.True(t, spec.Exact.Equal(again.Exact), s)
		case SpecTag:
			assert.Equal(t, spec.Tag, again.Tag, s)
		case SpecRange:
			assert.Equal(t, spec.raw, again.raw, s)
		}
	}
}

func TestVersionCompare(t *testing.T) {
	a := MustNew("1.2.3")
	b := MustNew("1.10.0")
	assert.True(t, a.LessThan(b))
	assert.Equal(t, -1, a.Compare(b))
}
