package shim

// cmdScriptTemplate is the body of every Windows <name>.cmd shim. %~n0
// expands to the script's own basename and %* to the forwarded args;
// both must be single percents, since %% in batch is a literal percent
// sign, not an escape for a parameter reference.
const cmdScriptTemplate = "@echo off\r\njst run %~n0 %*\r\n"

// companionScript is the extension-less sibling installed next to each
// .cmd, so bash-style shells on Windows (git-bash, MSYS) dispatch
// through the launcher too.
func companionScript() string {
	return "#!/bin/bash\nexec jst run \"$(basename \"$0\")\" \"$@\"\n"
}
