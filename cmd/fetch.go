package cmd

import (
	"fmt"

	"github.com/flanksource/jsvm/pkg/executor"
	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <spec>...",
	Short: "Fetch a tool into the inventory without changing any pin",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			spec, err := parseToolSpec(arg)
			if err != nil {
				return err
			}
			if !isReservedTool(spec.Name) {
				return &toolerrors.InvalidArgumentsError{Message: "fetch only accepts node, npm, pnpm, or yarn, not " + spec.Name}
			}
			family, _ := familyForName(spec.Name)

			inst := &executor.InternalInstall{Family: family, Spec: spec.Spec, Registry: registryOptionsFromSettings()}
			code, err := inst.Run(sess, fetcherOptionsFromSettings())
			if err != nil {
				return err
			}
			if code != 0 {
				return &toolerrors.ExecutionError{Command: spec.Name, Err: fmt.Errorf("exit %d", code)}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %s\n", arg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
