package cmd

import (
	"fmt"

	"github.com/flanksource/jsvm/pkg/executor"
	"github.com/flanksource/jsvm/pkg/fetcher"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/flanksource/jsvm/pkg/version"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <spec>...",
	Short: "Install a tool or third-party package and set it as the default",
	Long: `Install resolves and fetches one or more tools, then records the
result as the default platform (or, for a third-party package, as an
installed global package with its own shims).

Examples:
  jst install node@18.17.1
  jst install npm@latest
  jst install typescript`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			spec, err := parseToolSpec(arg)
			if err != nil {
				return err
			}
			if err := installOne(cmd, spec); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func installOne(cmd *cobra.Command, spec ToolSpec) error {
	if isReservedTool(spec.Name) {
		return installReservedTool(cmd, spec)
	}
	return installThirdPartyPackage(cmd, spec)
}

func installReservedTool(cmd *cobra.Command, spec ToolSpec) error {
	family, _ := familyForName(spec.Name)

	var resolved version.Version
	inst := &executor.InternalInstall{
		Family:   family,
		Spec:     spec.Spec,
		Registry: registryOptionsFromSettings(),
		OnResolved: func(l layout.Layout, v version.Version) error {
			resolved = v
			return persistDefaultVersion(l, family, v)
		},
	}

	code, err := inst.Run(sess, fetcherOptionsFromSettings())
	if err != nil {
		return err
	}
	if code != 0 {
		return &toolerrors.ExecutionError{Command: spec.Name, Err: fmt.Errorf("exit %d", code)}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "installed %s@%s\n", spec.Name, resolved.String())
	return nil
}

func installThirdPartyPackage(cmd *cobra.Command, spec ToolSpec) error {
	platform, err := sess.EffectivePlatform(toolchain.Platform{})
	if err != nil {
		return err
	}

	manager := pickManager(platform)
	target := spec.Name
	if spec.Spec.Kind != version.SpecNone {
		target = spec.Name + "@" + version.Display(spec.Spec)
	}

	pi := &executor.PackageInstall{
		Argv:      executor.InstallArgv(manager, target),
		Name:      spec.Name,
		Spec:      spec.Spec,
		Installer: manager,
		Platform:  platform,
	}

	code, err := pi.Run(sess, fetcherOptionsFromSettings())
	if err != nil {
		return err
	}
	if code != 0 {
		return &toolerrors.ExecutionError{Command: pi.Argv[0], Err: fmt.Errorf("exit %d", code)}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "installed %s via %s\n", spec.Name, manager)
	return nil
}

// persistDefaultVersion records a newly fetched reserved-tool version
// into the default platform: node sets both node and its bundled npm;
// npm/pnpm/yarn each require an existing default node already recorded.
func persistDefaultVersion(l layout.Layout, family layout.Family, v version.Version) error {
	switch family {
	case layout.Node:
		npmField := toolchain.Field{}
		if bundled, err := fetcher.ReadBundledNpmVersion(l, v); err == nil {
			npmField = toolchain.Field{Version: bundled, Source: toolchain.SourceDefault}
		}
		return toolchain.SetDefaultNode(l, toolchain.Field{Version: v, Source: toolchain.SourceDefault}, npmField)

	case layout.Pnpm:
		return toolchain.SetDefaultPackageManager(l, "pnpm", toolchain.Field{Version: v, Source: toolchain.SourceDefault})

	case layout.Yarn:
		return toolchain.SetDefaultPackageManager(l, "yarn", toolchain.Field{Version: v, Source: toolchain.SourceDefault})

	case layout.Npm:
		current, err := toolchain.ReadDefaultPlatform(l)
		if err != nil {
			return err
		}
		if !current.HasNode() {
			return &toolerrors.ConfigurationError{Message: toolchain.ErrNoDefaultNode.Error()}
		}
		current.Npm = toolchain.Field{Version: v, Source: toolchain.SourceDefault}
		return toolchain.WriteDefaultPlatform(l, current)

	default:
		return &toolerrors.ConfigurationError{Message: "unknown tool family " + string(family)}
	}
}
