package console

import (
	"os"

	"golang.org/x/term"
)

// isTTY reports whether stderr, where console output goes, is a terminal.
func isTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// IsInteractive reports whether both stdin and stdout are terminals, which
// interactive prompts require.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// IsAccessibleMode reports whether prompts should render in accessible mode,
// which screen readers and dumb terminals need.
func IsAccessibleMode() bool {
	return os.Getenv("ACCESSIBLE") != "" || os.Getenv("TERM") == "dumb" || os.Getenv("NO_COLOR") != ""
}
