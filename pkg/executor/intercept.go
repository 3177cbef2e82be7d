package executor

import (
	"strings"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/version"
)

// InstallArgv builds the child command line for a global install of
// target (already including any @version qualifier) under manager m.
func InstallArgv(m toolchain.Manager, target string) []string {
	switch m {
	case toolchain.ManagerYarn:
		return []string{"yarn", "global", "add", target}
	case toolchain.ManagerPnpm:
		return []string{"pnpm", "add", "-g", target}
	default:
		return []string{"npm", "install", "-g", target}
	}
}

func managerForKind(kind ToolKind) (toolchain.Manager, bool) {
	switch kind {
	case KindNpm:
		return toolchain.ManagerNpm, true
	case KindPnpm:
		return toolchain.ManagerPnpm, true
	case KindYarn:
		return toolchain.ManagerYarn, true
	default:
		return "", false
	}
}

type globalAction int

const (
	actionInstall globalAction = iota
	actionUninstall
	actionUpgrade
	actionLink
)

// valueFlags are flags whose following token is a value, not a target;
// the naive "non-flag means target" scan has to skip over them.
var valueFlags = map[string]bool{
	"--prefix":        true,
	"--registry":      true,
	"--global-folder": true,
	"--cache":         true,
	"--loglevel":      true,
}

// parseGlobalCommand scans a package manager's argv (minus the manager
// name itself) and reports whether it is a global-scope mutation this
// module must intercept, along with the action and its package targets.
func parseGlobalCommand(m toolchain.Manager, args []string) (globalAction, []string, bool) {
	var (
		global     bool
		positional []string
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-g" || arg == "--global":
			global = true
		case valueFlags[arg]:
			i++
		case strings.HasPrefix(arg, "-"):
			// some other flag; not a subcommand or target
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		return 0, nil, false
	}

	sub, targets := positional[0], positional[1:]

	if m == toolchain.ManagerYarn {
		// yarn spells global scope as a leading "global" subcommand.
		if sub == "global" && len(targets) > 0 {
			inner, innerTargets := targets[0], targets[1:]
			switch inner {
			case "add":
				return actionInstall, innerTargets, len(innerTargets) > 0
			case "remove":
				return actionUninstall, innerTargets, len(innerTargets) > 0
			case "upgrade":
				return actionUpgrade, innerTargets, len(innerTargets) > 0
			}
			return 0, nil, false
		}
		if sub == "link" && len(targets) > 0 {
			return actionLink, targets, true
		}
		return 0, nil, false
	}

	// npm treats link as global by default; everything else needs -g.
	if sub == "link" || sub == "ln" {
		return actionLink, targets, len(targets) > 0
	}
	if !global {
		return 0, nil, false
	}

	switch sub {
	case "install", "i", "add":
		return actionInstall, targets, len(targets) > 0
	case "uninstall", "remove", "rm", "un":
		return actionUninstall, targets, len(targets) > 0
	case "update", "upgrade", "up":
		return actionUpgrade, targets, len(targets) > 0
	default:
		return 0, nil, false
	}
}

// splitPackageSpec splits "<name>[@<versionspec>]" respecting a leading
// "@" in scoped package names ("@scope/name@1.0").
func splitPackageSpec(arg string) (string, string) {
	rest := arg
	offset := 0
	if strings.HasPrefix(arg, "@") {
		rest = arg[1:]
		offset = 1
	}
	if idx := strings.Index(rest, "@"); idx >= 0 {
		return arg[:offset+idx], arg[offset+idx+1:]
	}
	return arg, ""
}

// interceptGlobal rewrites a package manager invocation that mutates the
// global scope into the equivalent managed executor, so its side effects
// land in the inventory rather than the manager's own global location.
// Invocations that are not global-scope mutations pass through untouched.
func interceptGlobal(kind ToolKind, args []string, platform toolchain.Platform) (Executor, bool) {
	m, ok := managerForKind(kind)
	if !ok {
		return nil, false
	}

	action, targets, ok := parseGlobalCommand(m, args)
	if !ok {
		return nil, false
	}

	var execs Multiple
	for _, target := range targets {
		name, specStr := splitPackageSpec(target)
		spec, err := version.Parse(specStr)
		if err != nil {
			spec = version.VersionSpec{}
		}

		switch action {
		case actionInstall:
			execs = append(execs, &PackageInstall{
				Argv: InstallArgv(m, target), Name: name, Spec: spec, Installer: m, Platform: platform,
			})
		case actionUninstall:
			execs = append(execs, &Uninstall{Family: layout.Packages, Name: name})
		case actionUpgrade:
			execs = append(execs, &PackageUpgrade{PackageInstall{
				Argv: InstallArgv(m, target), Name: name, Spec: spec, Installer: m, Platform: platform,
			}})
		case actionLink:
			execs = append(execs, &PackageLink{Name: name, Installer: m})
		}
	}

	if len(execs) == 1 {
		return execs[0], true
	}
	return execs, true
}
