// Package toolerrors defines the closed set of error kinds surfaced to
// the CLI, each carrying a fixed exit code and enough context to render
// a stable user-facing message, as small typed *Error structs.
package toolerrors

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ExitCode is the stable process exit code set this module returns.
type ExitCode int

const (
	Success                ExitCode = 0
	UnknownError           ExitCode = 1
	InvalidArguments       ExitCode = 2
	NoVersionMatch         ExitCode = 3
	ExitNetworkError       ExitCode = 4
	ExitFileSystemError    ExitCode = 5
	ExitConfigurationError ExitCode = 6
	ExitEnvironmentError   ExitCode = 7
	ExecutionFailure       ExitCode = 8
	ExecutableNotFound     ExitCode = 9
)

// Kind is the closed error-kind enum. Every error this module returns
// to a CLI boundary implements Kinded so cmd/ can map it to an exit code
// without inspecting error text.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArguments
	KindNoVersionMatch
	KindNetwork
	KindFileSystem
	KindConfiguration
	KindEnvironment
	KindExecution
	KindExecutableNotFound
)

// ExitCode maps a Kind to its process exit code.
func (k Kind) ExitCode() ExitCode {
	switch k {
	case KindInvalidArguments:
		return InvalidArguments
	case KindNoVersionMatch:
		return NoVersionMatch
	case KindNetwork:
		return ExitNetworkError
	case KindFileSystem:
		return ExitFileSystemError
	case KindConfiguration:
		return ExitConfigurationError
	case KindEnvironment:
		return ExitEnvironmentError
	case KindExecution:
		return ExecutionFailure
	case KindExecutableNotFound:
		return ExecutableNotFound
	default:
		return UnknownError
	}
}

// Kinded is implemented by every error this module returns at a
// boundary that must produce a process exit code.
type Kinded interface {
	error
	Kind() Kind
}

// InvalidArgumentsError reports malformed CLI input, e.g. a bare
// version with no tool name ("install 12").
type InvalidArgumentsError struct {
	Message string
}

func (e *InvalidArgumentsError) Error() string { return e.Message }
func (e *InvalidArgumentsError) Kind() Kind    { return KindInvalidArguments }

// NewBareVersionError reports the canonical diagnostic for
// `install <versionlike>` with no tool name.
func NewBareVersionError(input string) *InvalidArgumentsError {
	return &InvalidArgumentsError{
		Message: fmt.Sprintf("`%s` is not a valid tool spec; did you mean `node@%s`?", input, input),
	}
}

// NoVersionMatchError reports that no installed or discoverable version
// satisfies a requested spec.
type NoVersionMatchError struct {
	Tool string
	Spec string
}

func (e *NoVersionMatchError) Error() string {
	return fmt.Sprintf("no version of %s matching %s found", e.Tool, e.Spec)
}
func (e *NoVersionMatchError) Kind() Kind { return KindNoVersionMatch }

// NetworkError reports an HTTP-layer failure, carrying the tool and
// the URL that failed. Never retried at this layer.
type NetworkError struct {
	Tool string
	URL  string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("failed to fetch %s from %s: %v", e.Tool, e.URL, e.Err)
}
func (e *NetworkError) Kind() Kind    { return KindNetwork }
func (e *NetworkError) Unwrap() error { return e.Err }

// FileSystemError reports a create/read/write/rename/delete failure,
// with the offending path and a permissions call-to-action.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v (check file permissions and available disk space)", e.Op, e.Path, e.Err)
}
func (e *FileSystemError) Kind() Kind    { return KindFileSystem }
func (e *FileSystemError) Unwrap() error { return e.Err }

// ConfigurationError reports a hook, pin, or manager-mismatch failure;
// non-fatal to subsequent invocations.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }
func (e *ConfigurationError) Kind() Kind    { return KindConfiguration }

// EnvironmentError reports a missing lock, malformed PATH, or bad
// environment variable.
type EnvironmentError struct {
	Message string
}

func (e *EnvironmentError) Error() string { return e.Message }
func (e *EnvironmentError) Kind() Kind    { return KindEnvironment }

// ExecutionError reports a child-process spawn failure (not the
// child's own exit code, which propagates verbatim).
type ExecutionError struct {
	Command string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Err)
}
func (e *ExecutionError) Kind() Kind    { return KindExecution }
func (e *ExecutionError) Unwrap() error { return e.Err }

// ExecutableNotFoundError reports that a shim or resolved binary could
// not be located on disk, optionally suggesting a near-miss name.
type ExecutableNotFoundError struct {
	Name      string
	Known     []string
	Suggested string
}

// NewExecutableNotFoundError computes a "did you mean" suggestion from
// known against name using Levenshtein distance.
func NewExecutableNotFoundError(name string, known []string) *ExecutableNotFoundError {
	e := &ExecutableNotFoundError{Name: name, Known: known}
	e.Suggested = closestMatch(name, known)
	return e
}

func (e *ExecutableNotFoundError) Error() string {
	msg := fmt.Sprintf("no executable named %q is known to this toolchain", e.Name)
	if e.Suggested != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggested)
	}
	return msg
}
func (e *ExecutableNotFoundError) Kind() Kind { return KindExecutableNotFound }

// closestMatch returns the candidate with the smallest Levenshtein
// distance to name, provided that distance is small enough to be a
// plausible typo (at most a third of the candidate's length, minimum 1).
func closestMatch(name string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(c))
		threshold := len(c) / 3
		if threshold < 1 {
			threshold = 1
		}
		if d > threshold {
			continue
		}
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}
