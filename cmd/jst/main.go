// Command jst is both the toolchain CLI and the universal launcher
// every shim in bin/ points back to: invoked as "jst" it runs the
// cobra command tree, invoked under any other name (a symlink's own
// basename) it dispatches straight to the executor as that tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/jsvm/cmd"
	"github.com/flanksource/jsvm/pkg/config"
	"github.com/flanksource/jsvm/pkg/executor"
	"github.com/flanksource/jsvm/pkg/fetcher"
	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/session"
	"github.com/flanksource/jsvm/pkg/toolerrors"
)

func main() {
	executor.InstallSignalHandler()

	name := filepath.Base(os.Args[0])
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}

	if name == "jst" {
		os.Exit(cmd.Execute())
	}

	os.Exit(runShim(name, os.Args[1:]))
}

// runShim handles a shim invocation: name is the symlink's own
// basename (node, npm, yarn, or a third-party binary), args is
// everything after it.
func runShim(name string, args []string) int {
	l, err := layout.Discover()
	if err != nil {
		return reportAndExit(name, &toolerrors.EnvironmentError{Message: err.Error()})
	}

	cwd, err := os.Getwd()
	if err != nil {
		return reportAndExit(name, &toolerrors.EnvironmentError{Message: err.Error()})
	}

	settings, err := config.Load(cwd, l.Root)
	if err != nil {
		return reportAndExit(name, err)
	}

	sess := session.New(l, cwd)

	ex, err := executor.Resolve(name, args, sess)
	if err != nil {
		return reportAndExit(name, err)
	}

	code, err := ex.Run(sess, fetcher.Options{DistMirror: settings.NodeDistMirror})
	if err != nil {
		return reportAndExit(name, err)
	}
	return code
}

func reportAndExit(name string, err error) int {
	fmt.Fprintln(os.Stderr, name+":", err)
	if kinded, ok := err.(toolerrors.Kinded); ok {
		return int(kinded.Kind().ExitCode())
	}
	return int(toolerrors.UnknownError)
}
