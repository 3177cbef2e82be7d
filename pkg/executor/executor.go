package executor

import (
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/flanksource/jsvm/pkg/fetcher"
	"github.com/flanksource/jsvm/pkg/session"
	"github.com/flanksource/jsvm/pkg/toolerrors"
)

// Executor is the tagged-variant command family dispatch resolves to:
// every concrete kind (a Tool invocation, a package install/link/
// upgrade, a native install/uninstall, or a sequence of the above)
// implements Run and reports the exit code the CLI should propagate.
type Executor interface {
	Run(sess *session.Session, opts fetcher.Options) (int, error)
}

// shimHasControl is set just before every child spawn so the installed
// SIGINT handler steps aside and lets the child receive the signal
// directly.
var shimHasControl atomic.Bool

// InstallSignalHandler intercepts SIGINT at process start: while a
// child is running (shimHasControl set) it does nothing, otherwise it
// exits with code 130, matching a plain interrupted-CLI exit.
func InstallSignalHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		for range ch {
			if shimHasControl.Load() {
				continue
			}
			os.Exit(130)
		}
	}()
}

// runChild execs name with args, env additions merged over the current
// environment, and the recursion sentinel always set. It returns the
// child's exit code verbatim, or a non-nil error only when the process
// itself could not be started. name is resolved against path (not the
// current process's own PATH) before exec.Command ever sees it, since
// exec.Command's own implicit LookPath only ever consults the real
// process environment, never cmd.Env.
func runChild(name string, args []string, path string, extraEnv map[string]string) (int, error) {
	cmd := exec.Command(resolveExecutable(name, path), args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	env := os.Environ()
	env = setEnv(env, "PATH", path)
	env = setEnv(env, RecursionEnvVar, "1")
	for k, v := range extraEnv {
		env = setEnv(env, k, v)
	}
	cmd.Env = env

	shimHasControl.Store(true)
	defer shimHasControl.Store(false)

	if err := cmd.Start(); err != nil {
		return 0, &toolerrors.ExecutionError{Command: name, Err: err}
	}

	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 0, &toolerrors.ExecutionError{Command: name, Err: err}
}

// resolveExecutable finds name's absolute path by searching path (an
// os.PathListSeparator-delimited directory list), applying Windows
// executable extensions where GOOS calls for it. A name that already
// contains a path separator, or that cannot be found in path, is
// returned unchanged and left for exec.Command/the OS to reject.
func resolveExecutable(name, path string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, os.PathSeparator) {
		return name
	}

	exts := []string{""}
	if runtime.GOOS == "windows" {
		exts = []string{".exe", ".cmd", ".bat", ""}
	}
	for _, dir := range strings.Split(path, string(os.PathListSeparator)) {
		if dir == "" {
			continue
		}
		for _, ext := range exts {
			candidate := filepath.Join(dir, name+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return name
}

// pathWithout returns path with every entry naming dir removed.
func pathWithout(path, dir string) string {
	if dir == "" {
		return path
	}
	cleaned := filepath.Clean(dir)
	var kept []string
	for _, entry := range strings.Split(path, string(os.PathListSeparator)) {
		if entry != "" && filepath.Clean(entry) == cleaned {
			continue
		}
		kept = append(kept, entry)
	}
	return strings.Join(kept, string(os.PathListSeparator))
}

// setEnv replaces key's entry in env (KEY=VALUE form) if present,
// otherwise appends it.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if len(kv) >= len(prefix) && kv[:len(prefix)] == prefix {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

// Multiple runs a sequence of Executors in order; the first non-zero
// exit aborts the sequence and is returned, matching the "first
// failure wins" contract for install/link/upgrade post-processing
// chains.
type Multiple []Executor

func (m Multiple) Run(sess *session.Session, opts fetcher.Options) (int, error) {
	for _, e := range m {
		code, err := e.Run(sess, opts)
		if err != nil {
			return code, err
		}
		if code != 0 {
			return code, nil
		}
	}
	return 0, nil
}
