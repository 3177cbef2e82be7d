package cmd

import (
	"fmt"

	"github.com/flanksource/jsvm/pkg/executor"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <tool>",
	Short: "Remove an installed tool or third-party package",
	Long: `Uninstall removes an image from the inventory. Uninstalling node
removes its image directory and shared-link, and clears a default
platform that pointed at it; it does not cascade to third-party
packages installed under that node version. Uninstalling a third-party
package removes its image, PackageConfig, every BinConfig it
registered, and their shims.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		if isReservedTool(name) {
			if name != "node" {
				return &toolerrors.ConfigurationError{
					Message: "uninstall currently only supports removing node directly; npm/pnpm/yarn ride along with it",
				}
			}
			def, err := toolchain.ReadDefaultPlatform(lay)
			if err != nil {
				return err
			}
			if !def.HasNode() {
				return &toolerrors.ConfigurationError{Message: "no default node version to uninstall"}
			}

			u := &executor.Uninstall{Family: layout.Node, Name: def.Node.Version.String()}
			return runUninstall(cmd, u, name)
		}

		u := &executor.Uninstall{Family: layout.Packages, Name: name}
		return runUninstall(cmd, u, name)
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, u *executor.Uninstall, name string) error {
	code, err := u.Run(sess, fetcherOptionsFromSettings())
	if err != nil {
		return err
	}
	if code != 0 {
		return &toolerrors.ExecutionError{Command: "uninstall", Err: fmt.Errorf("exit %d", code)}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "uninstalled %s\n", name)
	return nil
}
