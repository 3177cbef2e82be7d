package executor

import (
	"os"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/logging"
	"github.com/flanksource/jsvm/pkg/session"
	"github.com/flanksource/jsvm/pkg/toolchain"
)

// RecursionEnvVar is set to "1" on every child this module spawns. Any
// invocation that sees it already set at startup short-circuits straight
// to Bypass, preventing infinite recursion when a managed tool
// re-invokes another managed shim (yarn running a project binary is the
// common case).
const RecursionEnvVar = "JSVM_SHIM_ACTIVE"

// BypassEnvVar, when set to "1", disables shimming entirely: the shim
// execs the next matching binary already on PATH.
const BypassEnvVar = "JSVM_BYPASS"

// ToolKind discriminates the Tool variant of Executor.
type ToolKind int

const (
	KindNode ToolKind = iota
	KindNpm
	KindNpx
	KindPnpm
	KindYarn
	KindProjectLocalBinary
	KindDefaultBinary
	KindBypass
)

func (k ToolKind) reservedExe() (string, bool) {
	switch k {
	case KindNode:
		return "node", true
	case KindNpm:
		return "npm", true
	case KindNpx:
		return "npx", true
	case KindPnpm:
		return "pnpm", true
	case KindYarn:
		return "yarn", true
	default:
		return "", false
	}
}

var reservedNames = map[string]ToolKind{
	"node":    KindNode,
	"npm":     KindNpm,
	"npx":     KindNpx,
	"pnpm":    KindPnpm,
	"yarn":    KindYarn,
	"yarnpkg": KindYarn,
}

// Resolve implements the dispatch algorithm for a shim invocation named
// name: reserved names go straight to their Tool kind; otherwise a
// project-local binary, a known default binary, or a platformless
// DefaultBinary (which errors at execution time). The recursion sentinel
// and the bypass override both short-circuit to Bypass before any of
// that resolution runs.
func Resolve(name string, args []string, sess *session.Session) (Executor, error) {
	if os.Getenv(RecursionEnvVar) == "1" || os.Getenv(BypassEnvVar) == "1" {
		return &ToolCommand{Kind: KindBypass, Name: name, Args: args}, nil
	}

	if kind, ok := reservedNames[name]; ok {
		platform, err := sess.EffectivePlatform(toolchain.Platform{})
		if err != nil {
			return nil, err
		}
		if ex, ok := interceptGlobal(kind, args, platform); ok {
			logging.Debugf("intercepting global %s invocation", name)
			return ex, nil
		}
		exe, _ := kind.reservedExe()
		return &ToolCommand{Exe: exe, Args: args, Platform: platform, Kind: kind, Name: name}, nil
	}

	return resolveThirdParty(name, args, sess)
}

func resolveThirdParty(name string, args []string, sess *session.Session) (Executor, error) {
	root, inProject, err := toolchain.ProjectRoot(sess.Cwd())
	if err != nil {
		return nil, err
	}

	if inProject {
		if binPath, found := toolchain.FindProjectBin(root, name); found {
			logging.Debugf("found %s in project at %s", name, binPath)
			platform, err := sess.EffectivePlatform(toolchain.Platform{})
			if err != nil {
				return nil, err
			}
			return &ToolCommand{Exe: binPath, Args: args, Platform: platform, Kind: KindProjectLocalBinary, Name: name}, nil
		}

		if toolchain.NeedsYarnRun(root) {
			logging.Debugf("project requires yarn to run commands, invoking yarn for %s", name)
			platform, err := sess.EffectivePlatform(toolchain.Platform{})
			if err != nil {
				return nil, err
			}
			yarnArgs := append([]string{"run", name}, args...)
			return &ToolCommand{Exe: "yarn", Args: yarnArgs, Platform: platform, Kind: KindYarn, Name: name}, nil
		}

		// Neither a direct project binary nor a yarn-run project claims
		// name; fall through to the same default-binary resolution used
		// outside a project, so a globally installed package stays
		// reachable from inside any project directory.
	}

	if toolchain.HasBinConfig(sess.Layout, name) {
		cfg, err := toolchain.ReadBinConfig(sess.Layout, name)
		if err != nil {
			return nil, err
		}
		return defaultBinaryCommand(sess, cfg, args)
	}

	// Unknown to this module; dispatch with no platform, which surfaces
	// a "no platform" error only if it's actually executed.
	return &ToolCommand{Exe: name, Args: args, Kind: KindDefaultBinary, Name: name}, nil
}

func defaultBinaryCommand(sess *session.Session, cfg toolchain.BinConfig, args []string) (Executor, error) {
	binPlatform, err := toolchain.ToPlatform(cfg.Platform, toolchain.SourceBinary)
	if err != nil {
		return nil, err
	}

	// A binary's recorded platform may omit yarn; inherit it from the
	// session default so tools that shell out to `yarn` (e.g. ember-cli
	// with --yarn) still find one.
	if !binPlatform.Yarn.Present() {
		def, err := sess.DefaultPlatform()
		if err != nil {
			return nil, err
		}
		binPlatform.Yarn = def.Yarn
	}

	packageDir := sess.Layout.ImageDir(layout.Packages, cfg.Package)
	bin := cfg.Name
	var binPath string
	if sess.Layout.Platform.IsWindows() {
		binPath = packageDir + string(os.PathSeparator) + bin
	} else {
		binPath = packageDir + string(os.PathSeparator) + "bin" + string(os.PathSeparator) + bin
	}

	return &ToolCommand{
		Exe:      binPath,
		Args:     args,
		Platform: binPlatform,
		Kind:     KindDefaultBinary,
		Name:     cfg.Name,
		Env:      map[string]string{"NODE_PATH": SharedModulePath(sess.Layout, cfg.Package)},
	}, nil
}
