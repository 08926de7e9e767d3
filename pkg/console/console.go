// Package console formats user-facing CLI output.
//
// Messages are styled with lipgloss when stderr is a terminal and fall back to
// plain text otherwise, so CI logs stay readable.
package console

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0EA5E9"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))
	verboseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
	fileStyle     = lipgloss.NewStyle().Bold(true)
	contextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// ErrorPosition locates a diagnostic in a source file.
type ErrorPosition struct {
	File   string
	Line   int
	Column int
}

// CompilerError is a positioned diagnostic, printed like a compiler would.
type CompilerError struct {
	Position ErrorPosition
	Type     string // "error" or "warning"
	Message  string
	Context  []string // source lines surrounding Position.Line, starting at Line-1
	Hint     string
}

func applyStyle(style lipgloss.Style, text string) string {
	if isTTY() {
		return style.Render(text)
	}
	return text
}

// FormatError renders err as "file:line:col: type: message" followed by
// numbered context lines.
func FormatError(err CompilerError) string {
	var sb strings.Builder

	location := fmt.Sprintf("%s:%d:%d:", ToRelativePath(err.Position.File), err.Position.Line, err.Position.Column)
	sb.WriteString(applyStyle(fileStyle, location))
	sb.WriteString(" ")

	kind := err.Type
	if kind == "" {
		kind = "error"
	}
	style := errorStyle
	if kind == "warning" {
		style = warningStyle
	}
	sb.WriteString(applyStyle(style, kind+":"))
	sb.WriteString(" ")
	sb.WriteString(err.Message)
	sb.WriteString("\n")

	if len(err.Context) > 0 {
		first := err.Position.Line - 1
		if first < 1 {
			first = 1
		}
		width := len(fmt.Sprint(first + len(err.Context) - 1))
		for i, line := range err.Context {
			prefix := fmt.Sprintf("%*d |", width, first+i)
			sb.WriteString(applyStyle(contextStyle, prefix))
			sb.WriteString(" ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FormatSuccessMessage prefixes message with a check mark.
func FormatSuccessMessage(message string) string {
	return applyStyle(successStyle, "✓ ") + message
}

// FormatInfoMessage prefixes message with an info icon.
func FormatInfoMessage(message string) string {
	return applyStyle(infoStyle, "ℹ ") + message
}

// FormatWarningMessage prefixes message with a warning icon.
func FormatWarningMessage(message string) string {
	return applyStyle(warningStyle, "⚠ ") + message
}

// FormatErrorMessage prefixes message with a cross.
func FormatErrorMessage(message string) string {
	return applyStyle(errorStyle, "✗ ") + message
}

// FormatVerboseMessage renders low-priority detail.
func FormatVerboseMessage(message string) string {
	return applyStyle(verboseStyle, "🔍 "+message)
}

// FormatLocationMessage renders a message about a file system location.
func FormatLocationMessage(message string) string {
	return applyStyle(locationStyle, "📁 ") + message
}

// FormatErrorWithSuggestions renders an error followed by a bulleted list
// of suggestions. The suggestions block is omitted when empty.
func FormatErrorWithSuggestions(message string, suggestions []string) string {
	var sb strings.Builder
	sb.WriteString(FormatErrorMessage(message))
	if len(suggestions) > 0 {
		sb.WriteString("\n\nSuggestions:\n")
		for _, s := range suggestions {
			sb.WriteString("  • ")
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ToRelativePath converts an absolute path to one relative to the working
// directory. Relative paths and paths that cannot be relativized are
// returned unchanged.
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}
	return rel
}

// FormatFileSize renders a byte count for humans.
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
