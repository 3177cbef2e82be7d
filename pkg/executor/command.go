package executor

import (
	"os"

	"github.com/flanksource/jsvm/pkg/fetcher"
	"github.com/flanksource/jsvm/pkg/session"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/toolerrors"
)

// ToolCommand is the Tool variant of Executor: Node, Npm, Npx, Pnpm,
// Yarn, a project-local binary, a default (globally installed) binary,
// or a bypassed direct exec of whatever matches on the host PATH.
type ToolCommand struct {
	// Exe is the executable to run once Platform has been checked out:
	// a bare name for reserved tools (resolved against the computed
	// PATH) or an absolute path for a project-local/default binary.
	Exe string
	// Args is the argv to pass, not including Exe itself.
	Args []string
	// Platform is the platform to check out before dispatch. Zero value
	// means "none recorded"; only KindBypass and a platformless
	// KindDefaultBinary are allowed to reach Run with it unset.
	Platform toolchain.Platform
	Kind     ToolKind
	// Name is the original shim name, used for diagnostics and for
	// KindBypass's host-PATH lookup.
	Name string
	// Env carries additional environment variables to set for this
	// invocation (e.g. NODE_PATH for a default binary's siblings).
	Env map[string]string
}

// Run resolves c.Platform to an Image (fetching anything missing) and
// execs c.Exe against the resulting PATH, except for KindBypass, which
// execs directly against the host's own PATH with no resolution at all.
func (c *ToolCommand) Run(sess *session.Session, opts fetcher.Options) (int, error) {
	if c.Kind == KindBypass {
		exe := c.Exe
		if exe == "" {
			exe = c.Name
		}
		// The shim directory must not take part in bypass resolution, or
		// the shim would resolve to itself and respawn forever.
		return runChild(exe, c.Args, pathWithout(os.Getenv("PATH"), sess.Layout.BinDir()), nil)
	}

	if !c.Platform.HasNode() {
		return 0, &toolerrors.EnvironmentError{
			Message: "no platform selected for " + c.Name + "; run `jst pin node@<version>` in a project or `jst install node@<version>` to set a default",
		}
	}

	image, err := Checkout(sess.Layout, c.Platform, opts)
	if err != nil {
		return 0, err
	}

	exe := c.Exe
	if exe == "" {
		exe = c.Name
	}
	return runChild(exe, c.Args, image.Path, c.Env)
}
