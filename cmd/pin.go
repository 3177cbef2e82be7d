package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/jsvm/pkg/executor"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/flanksource/jsvm/pkg/version"
	"github.com/spf13/cobra"
)

var pinCmd = &cobra.Command{
	Use:   "pin <spec>...",
	Short: "Pin a tool version into the current project's manifest",
	Long: `Pin resolves and fetches the given tools, then records them in the
nearest project manifest's "volta" key rather than the user's default
platform.

Examples:
  jst pin node@18.17.1
  jst pin yarn@1.22.19`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectManifestDir()
		if err != nil {
			return err
		}

		var updates toolchain.PlatformSpec
		for _, arg := range args {
			spec, err := parseToolSpec(arg)
			if err != nil {
				return err
			}
			if !isReservedTool(spec.Name) {
				return &toolerrors.InvalidArgumentsError{Message: "pin only accepts node, npm, pnpm, or yarn, not " + spec.Name}
			}

			family, _ := familyForName(spec.Name)
			v, err := (&executor.InternalInstall{Family: family, Spec: spec.Spec, Registry: registryOptionsFromSettings()}).Resolve(sess)
			if err != nil {
				return err
			}
			if _, err := executor.EnsureImage(lay, family, v, fetcherOptionsFromSettings()); err != nil {
				return err
			}

			applyPinField(&updates, family, v)
			fmt.Fprintf(cmd.OutOrStdout(), "pinned %s@%s\n", spec.Name, v.String())
		}

		manifestPath := filepath.Join(root, "package.json")
		return toolchain.WriteProjectPin(manifestPath, updates)
	},
}

func init() {
	rootCmd.AddCommand(pinCmd)
}

// projectManifestDir returns the nearest existing manifest's directory
// to pin into, falling back to a package.json already present in cwd.
func projectManifestDir() (string, error) {
	root, found, err := toolchain.ProjectRoot(sess.Cwd())
	if err != nil {
		return "", err
	}
	if found {
		return root, nil
	}
	if _, err := os.Stat(filepath.Join(sess.Cwd(), "package.json")); err != nil {
		return "", &toolerrors.ConfigurationError{Message: "no package.json found in " + sess.Cwd() + " to pin a platform into"}
	}
	return sess.Cwd(), nil
}

func applyPinField(spec *toolchain.PlatformSpec, family layout.Family, v version.Version) {
	switch family {
	case layout.Node:
		if spec.Node == nil {
			spec.Node = &toolchain.NodeSpec{}
		}
		spec.Node.Runtime = v.String()
	case layout.Npm:
		if spec.Node == nil {
			spec.Node = &toolchain.NodeSpec{}
		}
		spec.Node.Npm = v.String()
	case layout.Pnpm:
		spec.Pnpm = v.String()
	case layout.Yarn:
		spec.Yarn = v.String()
	}
}
