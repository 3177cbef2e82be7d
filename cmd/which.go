package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/jsvm/pkg/executor"
	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/spf13/cobra"
)

var whichCmd = &cobra.Command{
	Use:   "which <tool>",
	Short: "Print the absolute path this module would dispatch a tool to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		ex, err := executor.Resolve(name, nil, sess)
		if err != nil {
			return err
		}

		tc, ok := ex.(*executor.ToolCommand)
		if !ok {
			return &toolerrors.ExecutableNotFoundError{Name: name}
		}

		if tc.Kind == executor.KindBypass {
			path, ok := lookPath(os.Getenv("PATH"), name)
			if !ok {
				return toolerrors.NewExecutableNotFoundError(name, nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}

		if filepath.IsAbs(tc.Exe) {
			if _, err := os.Stat(tc.Exe); err != nil {
				return toolerrors.NewExecutableNotFoundError(name, nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tc.Exe)
			return nil
		}

		if !tc.Platform.HasNode() {
			return &toolerrors.EnvironmentError{
				Message: "no platform selected for " + name + "; run `jst pin node@<version>` in a project or `jst install node@<version>` to set a default",
			}
		}

		image, err := executor.Checkout(sess.Layout, tc.Platform, fetcherOptionsFromSettings())
		if err != nil {
			return err
		}

		path, ok := lookPath(image.Path, tc.Exe)
		if !ok {
			return toolerrors.NewExecutableNotFoundError(name, nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whichCmd)
}

// lookPath searches each directory of pathList (os.PathListSeparator
// delimited) for exe, applying the platform's executable extensions,
// mirroring the resolution runChild hands to the underlying exec call.
func lookPath(pathList, exe string) (string, bool) {
	exts := []string{""}
	if lay.Platform.IsWindows() {
		exts = []string{".exe", ".cmd", ".bat", ""}
	}
	for _, dir := range strings.Split(pathList, string(os.PathListSeparator)) {
		if dir == "" {
			continue
		}
		for _, ext := range exts {
			candidate := filepath.Join(dir, exe+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}
	return "", false
}
