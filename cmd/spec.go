package cmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/flanksource/jsvm/pkg/toolerrors"
	"github.com/flanksource/jsvm/pkg/version"
)

// ToolSpec is a parsed `<name>[@<versionspec>]` CLI argument.
type ToolSpec struct {
	Name string
	Spec version.VersionSpec
}

// npmNamePattern follows the npm package-name validity rules closely
// enough for this module's purposes: lowercase, optionally scoped.
var npmNamePattern = regexp.MustCompile(`^(?:@[a-z0-9][a-z0-9._-]*/)?[a-z0-9][a-z0-9._-]*$`)

// parseToolSpec parses arg into a ToolSpec, rejecting a bare version
// (e.g. "install 12") with a diagnostic directing the user to qualify
// it with a tool name.
func parseToolSpec(arg string) (ToolSpec, error) {
	name, specStr := splitToolSpec(arg)

	if specStr == "" && looksLikeBareVersion(name) {
		return ToolSpec{}, toolerrors.NewBareVersionError(arg)
	}
	if !npmNamePattern.MatchString(name) {
		return ToolSpec{}, &toolerrors.InvalidArgumentsError{
			Message: fmt.Sprintf("%q is not a valid tool name", name),
		}
	}

	spec, err := version.Parse(specStr)
	if err != nil {
		return ToolSpec{}, &toolerrors.InvalidArgumentsError{Message: err.Error()}
	}
	return ToolSpec{Name: name, Spec: spec}, nil
}

// splitToolSpec splits "<name>@<versionspec>" into its two halves,
// respecting a leading "@" for scoped package names ("@scope/name@1.0").
func splitToolSpec(arg string) (string, string) {
	if strings.HasPrefix(arg, "@") {
		if idx := strings.Index(arg[1:], "@"); idx >= 0 {
			return arg[:idx+1], arg[idx+2:]
		}
		return arg, ""
	}
	if idx := strings.Index(arg, "@"); idx >= 0 {
		return arg[:idx], arg[idx+1:]
	}
	return arg, ""
}

// looksLikeBareVersion reports whether s is nothing but digits and
// dots, i.e. the user typed a version with no tool name at all.
func looksLikeBareVersion(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// isReservedTool reports whether name is one of the four tools this
// module manages natively (as opposed to a third-party package it
// installs through one of them).
func isReservedTool(name string) bool {
	switch name {
	case "node", "npm", "pnpm", "yarn":
		return true
	default:
		return false
	}
}
