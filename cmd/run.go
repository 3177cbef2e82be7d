package cmd

import (
	"fmt"

	"github.com/flanksource/jsvm/pkg/executor"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/flanksource/jsvm/pkg/version"
	"github.com/spf13/cobra"
)

var runFlags struct {
	node       string
	npm        string
	pnpm       string
	yarn       string
	bundledNpm bool
	noNpm      bool
	noPnpm     bool
	noYarn     bool
}

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <argv...>",
	Short: "Run a command against an explicitly overridden platform",
	Long: `Run resolves a one-off platform from its flags, layering it over
the command line ⊕ project ⊕ default precedence as the highest-priority
source, then dispatches argv[0] as an ordinary shim invocation would.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		commandLine, err := resolveRunPlatform(cmd)
		if err != nil {
			return err
		}

		name := args[0]
		argv := args[1:]

		var tc *executor.ToolCommand
		if kind, ok := reservedKind(name); ok {
			effective, err := sess.EffectivePlatform(commandLine)
			if err != nil {
				return err
			}
			tc = &executor.ToolCommand{Exe: name, Args: argv, Platform: effective, Kind: kind, Name: name}
		} else {
			// Third-party names go through the same dispatch a shim
			// invocation uses, so a BinConfig's recorded platform is the
			// base the command-line overrides merge onto.
			ex, err := executor.Resolve(name, argv, sess)
			if err != nil {
				return err
			}
			resolved, ok := ex.(*executor.ToolCommand)
			if !ok {
				return &toolerrors.InvalidArgumentsError{Message: name + " does not dispatch to a runnable tool"}
			}
			resolved.Platform = toolchain.Merge(commandLine, resolved.Platform)
			tc = resolved
		}

		if runFlags.noNpm || runFlags.bundledNpm {
			tc.Platform.Npm = toolchain.Field{}
		}
		if runFlags.noPnpm {
			tc.Platform.Pnpm = toolchain.Field{}
		}
		if runFlags.noYarn {
			tc.Platform.Yarn = toolchain.Field{}
		}

		code, err := tc.Run(sess, fetcherOptionsFromSettings())
		if err != nil {
			return err
		}
		if code != 0 {
			return &toolerrors.ExecutionError{Command: name, Err: fmt.Errorf("exit %d", code)}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runFlags.node, "node", "", "node version to run against")
	runCmd.Flags().StringVar(&runFlags.npm, "npm", "", "npm version to run against")
	runCmd.Flags().StringVar(&runFlags.pnpm, "pnpm", "", "pnpm version to run against")
	runCmd.Flags().StringVar(&runFlags.yarn, "yarn", "", "yarn version to run against")
	runCmd.Flags().BoolVar(&runFlags.bundledNpm, "bundled-npm", false, "use the npm bundled with node instead of a managed npm")
	runCmd.Flags().BoolVar(&runFlags.noNpm, "no-npm", false, "exclude npm from the checked-out platform")
	runCmd.Flags().BoolVar(&runFlags.noPnpm, "no-pnpm", false, "exclude pnpm from the checked-out platform")
	runCmd.Flags().BoolVar(&runFlags.noYarn, "no-yarn", false, "exclude yarn from the checked-out platform")
	rootCmd.AddCommand(runCmd)
}

func reservedKind(name string) (executor.ToolKind, bool) {
	switch name {
	case "node":
		return executor.KindNode, true
	case "npm":
		return executor.KindNpm, true
	case "npx":
		return executor.KindNpx, true
	case "pnpm":
		return executor.KindPnpm, true
	case "yarn":
		return executor.KindYarn, true
	default:
		return 0, false
	}
}

// resolveRunPlatform resolves and fetches each --node/--npm/--pnpm/--yarn
// flag into a command-line Platform, fetching whatever isn't already on
// disk so Run's subsequent Checkout never has to.
func resolveRunPlatform(cmd *cobra.Command) (toolchain.Platform, error) {
	var p toolchain.Platform

	specs := []struct {
		raw    string
		family layout.Family
	}{
		{runFlags.node, layout.Node},
		{runFlags.npm, layout.Npm},
		{runFlags.pnpm, layout.Pnpm},
		{runFlags.yarn, layout.Yarn},
	}

	for _, s := range specs {
		if s.raw == "" {
			continue
		}
		vspec, err := version.Parse(s.raw)
		if err != nil {
			return toolchain.Platform{}, &toolerrors.InvalidArgumentsError{Message: err.Error()}
		}
		v, err := (&executor.InternalInstall{Family: s.family, Spec: vspec, Registry: registryOptionsFromSettings()}).Resolve(sess)
		if err != nil {
			return toolchain.Platform{}, err
		}
		if _, err := executor.EnsureImage(lay, s.family, v, fetcherOptionsFromSettings()); err != nil {
			return toolchain.Platform{}, err
		}

		field := toolchain.Field{Version: v, Source: toolchain.SourceCommandLine}
		switch s.family {
		case layout.Node:
			p.Node = field
		case layout.Npm:
			p.Npm = field
		case layout.Pnpm:
			p.Pnpm = field
		case layout.Yarn:
			p.Yarn = field
		}
	}

	return p, nil
}
