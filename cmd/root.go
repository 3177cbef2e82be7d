// Package cmd is the CLI surface: one file per subcommand plus this
// file's persistent flags and PersistentPreRun wiring.
package cmd

import (
	"fmt"
	"os"

	"github.com/flanksource/jsvm/pkg/config"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/logging"
	"github.com/flanksource/jsvm/pkg/session"
	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/spf13/cobra"
)

var (
	lay      layout.Layout
	sess     *session.Session
	settings config.Settings
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "jst",
	Short:         "A per-project toolchain manager for node, npm, pnpm, and yarn",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logLevel != "" {
			logging.Configure(logLevel)
		}

		var err error
		lay, err = layout.Discover()
		if err != nil {
			return &toolerrors.EnvironmentError{Message: "could not determine managed root: " + err.Error()}
		}

		cwd, err := os.Getwd()
		if err != nil {
			return &toolerrors.EnvironmentError{Message: "could not determine working directory: " + err.Error()}
		}

		settings, err = config.Load(cwd, lay.Root)
		if err != nil {
			return err
		}

		sess = session.New(lay, cwd)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", os.Getenv("JSVM_LOGLEVEL"), "log level: error|warn|info|debug|trace")
}

// Execute runs the CLI, mapping a returned Kinded error to its exit
// code and any other error to UnknownError, and returns that code. It
// does not exit; cmd/jst/main.go passes the result to os.Exit (as
// opposed to a shim invocation, which runs through main.go's argv[0]
// dispatch).
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return int(toolerrors.Success)
	}

	fmt.Fprintln(os.Stderr, "jst:", err)
	if kinded, ok := err.(toolerrors.Kinded); ok {
		return int(kinded.Kind().ExitCode())
	}
	return int(toolerrors.UnknownError)
}
