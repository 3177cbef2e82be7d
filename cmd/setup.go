package cmd

import (
	"fmt"

	"github.com/flanksource/jsvm/pkg/shim"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Place the default shims and print the PATH line to add",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := shim.EnsureDefaults(lay); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "shims ready in %s\n", lay.BinDir())
		fmt.Fprintf(cmd.OutOrStdout(), "add this to your shell profile if it isn't already there:\n\n")
		fmt.Fprintf(cmd.OutOrStdout(), "    export PATH=\"%s:$PATH\"\n", lay.BinDir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
