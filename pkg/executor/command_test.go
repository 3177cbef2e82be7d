package executor

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jsvm/pkg/fetcher"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/version"
)

func writeExecutableScript(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
}

func TestToolCommandRunBypassUsesHostPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture is unix-specific")
	}
	binDir := t.TempDir()
	writeExecutableScript(t, binDir, "fakebin", "exit 0")
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	sess := newTestSession(t)
	c := &ToolCommand{Kind: KindBypass, Name: "fakebin"}
	code, err := c.Run(sess, fetcher.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestPathWithoutDropsShimDir(t *testing.T) {
	sep := string(os.PathListSeparator)
	got := pathWithout("/home/u/.jsvm/bin"+sep+"/usr/bin"+sep+"/bin", "/home/u/.jsvm/bin/")
	assert.Equal(t, "/usr/bin"+sep+"/bin", got)
}

// TestToolCommandRunBypassSkipsShimDir checks that bypass resolution
// never picks the shim out of the managed bin directory: with an
// identically-named entry in bin/, the next match on PATH must win.
func TestToolCommandRunBypassSkipsShimDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture is unix-specific")
	}
	l := layout.New(t.TempDir())
	require.NoError(t, os.MkdirAll(l.BinDir(), 0755))
	writeExecutableScript(t, l.BinDir(), "fakebin", "exit 9")

	hostDir := t.TempDir()
	writeExecutableScript(t, hostDir, "fakebin", "exit 0")
	t.Setenv("PATH", l.BinDir()+string(os.PathListSeparator)+hostDir)

	sess := newTestSessionWithLayout(t, l)
	c := &ToolCommand{Kind: KindBypass, Name: "fakebin"}
	code, err := c.Run(sess, fetcher.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, code, "the shim directory's own entry must be skipped in bypass mode")
}

func TestToolCommandRunWithoutPlatformErrors(t *testing.T) {
	sess := newTestSession(t)
	c := &ToolCommand{Kind: KindNode, Name: "node", Exe: "node"}
	_, err := c.Run(sess, fetcher.Options{})
	assert.Error(t, err)
}

func TestCheckoutAddsOnlyOneChosenPackageManagerBinDir(t *testing.T) {
	l := layout.New(t.TempDir())
	for _, f := range []layout.Family{layout.Node, layout.Npm, layout.Pnpm} {
		require.NoError(t, os.MkdirAll(l.ImageDir(f, "1.0.0"), 0755))
	}

	p := toolchain.Platform{
		Node: toolchain.Field{Version: version.MustNew("1.0.0"), Source: toolchain.SourceCommandLine},
		Npm:  toolchain.Field{Version: version.MustNew("1.0.0"), Source: toolchain.SourceCommandLine},
		Pnpm: toolchain.Field{Version: version.MustNew("1.0.0"), Source: toolchain.SourceCommandLine},
	}

	image, err := Checkout(l, p, fetcher.Options{})
	require.NoError(t, err)

	dirs := strings.Split(image.Path, string(os.PathListSeparator))
	assert.Contains(t, dirs, imageBinDir(l, layout.Pnpm, p.Pnpm.Version))
	assert.NotContains(t, dirs, imageBinDir(l, layout.Npm, p.Npm.Version),
		"only the chosen package manager's bin dir belongs on PATH")
}

func TestToolCommandRunChecksOutPlatformAndExecs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture is unix-specific")
	}
	l := layout.New(t.TempDir())
	nodeDir := l.ImageDir(layout.Node, "18.17.1")
	require.NoError(t, os.MkdirAll(filepath.Join(nodeDir, "bin"), 0755))
	writeExecutableScript(t, filepath.Join(nodeDir, "bin"), "node", "exit 7")

	sess := newTestSessionWithLayout(t, l)
	c := &ToolCommand{
		Kind: KindNode,
		Name: "node",
		Exe:  "node",
		Platform: toolchain.Platform{
			Node: toolchain.Field{Version: version.MustNew("18.17.1"), Source: toolchain.SourceCommandLine},
		},
	}

	code, err := c.Run(sess, fetcher.Options{})
	require.NoError(t, err)
	assert.Equal(t, 7, code, "the image's own node script's exit code must propagate verbatim")
}
