package cmd

import (
	"fmt"
	"io"

	"github.com/flanksource/jsvm/pkg/inventory"
	"github.com/flanksource/jsvm/pkg/toolchain"
	"github.com/flanksource/jsvm/pkg/version"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:       "list [scope]",
	Short:     "List installed tools and packages",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"all", "node", "npm", "pnpm", "yarn", "packages"},
	RunE: func(cmd *cobra.Command, args []string) error {
		scope := "all"
		if len(args) == 1 {
			scope = args[0]
		}

		inv, err := inventory.Collect(lay)
		if err != nil {
			return err
		}

		def, err := sess.DefaultPlatform()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if scope == "all" || scope == "node" {
			printFamily(out, "node", inv.Node, def.Node)
		}
		if scope == "all" || scope == "npm" {
			printFamily(out, "npm", inv.Npm, def.Npm)
		}
		if scope == "all" || scope == "pnpm" {
			printFamily(out, "pnpm", inv.Pnpm, def.Pnpm)
		}
		if scope == "all" || scope == "yarn" {
			printFamily(out, "yarn", inv.Yarn, def.Yarn)
		}

		if (scope == "all" || scope == "packages") && len(inv.Packages) > 0 {
			fmt.Fprintln(out, "packages:")
			for _, p := range inv.Packages {
				fmt.Fprintf(out, "    %s@%s (via %s)\n", p.Name, p.Version, p.Manager)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// printFamily prints every installed version of one family, marking
// the one matching the default platform's field (if any) with "*".
func printFamily(out io.Writer, name string, versions []version.Version, def toolchain.Field) {
	if len(versions) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", name)
	for _, v := range versions {
		marker := " "
		if def.Present() && def.Version.Equal(v) {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %s\n", marker, v.String())
	}
}
