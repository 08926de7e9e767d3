package workflow

import (
	"strings"

	"github.com/github/gh-pipelines/pkg/logger"
)

var shellLog = logger.New("workflow:shell")

// shellJoinArgs joins command arguments, quoting those that need it.
func shellJoinArgs(args []string) string {
	escaped := make([]string, 0, len(args))
	for _, arg := range args {
		escaped = append(escaped, shellEscapeArg(arg))
	}
	return strings.Join(escaped, " ")
}

// shellEscapeArg wraps arg in single quotes when it contains characters the
// shell would interpret. Arguments that are already quoted are left alone.
func shellEscapeArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"' {
		return arg
	}
	if len(arg) >= 2 && arg[0] == '\'' && arg[len(arg)-1] == '\'' {
		return arg
	}
	if strings.ContainsAny(arg, "()[]{}*?$`\"'\\|&;<> \t\n#~") {
		shellLog.Printf("Quoting argument %q", arg)
		return "'" + strings.ReplaceAll(arg, "'", "'\\''") + "'"
	}
	return arg
}

// shellScript renders a bash script that stops on the first failing line
// and traces every command.
func shellScript(lines []string) string {
	var b strings.Builder
	b.WriteString("set -ex\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
