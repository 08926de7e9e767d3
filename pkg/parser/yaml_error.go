package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/github/gh-pipelines/pkg/console"
	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/goccy/go-yaml"
)

var yamlErrorLog = logger.New("parser:yaml_error")

// ExtractYAMLError extracts line and column information from a YAML parsing
// error. Line and column are zero when the error carries no position.
func ExtractYAMLError(err error) (line int, column int, message string) {
	var syntaxErr *yaml.SyntaxError
	if errors.As(err, &syntaxErr) && syntaxErr.Token != nil && syntaxErr.Token.Position != nil {
		pos := syntaxErr.Token.Position
		yamlErrorLog.Printf("Extracted error location from token: line=%d, column=%d", pos.Line, pos.Column)
		return pos.Line, pos.Column, syntaxErr.Message
	}

	yamlErrorLog.Print("Falling back to string parsing for error location")
	return extractFromGoccyFormat(err.Error())
}

// extractFromGoccyFormat parses goccy/go-yaml's "[line:column] message" format.
func extractFromGoccyFormat(errStr string) (line int, column int, message string) {
	start := strings.Index(errStr, "[")
	end := strings.Index(errStr, "]")
	if start < 0 || end <= start {
		return 0, 0, strings.TrimSpace(errStr)
	}

	messagePart := strings.TrimSpace(errStr[end+1:])
	// Multi-line errors append an annotated source excerpt after the message.
	if idx := strings.Index(messagePart, "\n"); idx >= 0 {
		messagePart = strings.TrimSpace(messagePart[:idx])
	}

	if _, err := fmt.Sscanf(errStr[start+1:end], "%d:%d", &line, &column); err != nil {
		return 0, 0, strings.TrimSpace(errStr)
	}
	return line, column, messagePart
}

// NewYAMLSyntaxError converts a goccy parse error into a positioned
// diagnostic with surrounding source lines.
func NewYAMLSyntaxError(file string, content []byte, err error) console.CompilerError {
	line, column, message := ExtractYAMLError(err)
	if line == 0 {
		line = 1
	}
	if column == 0 {
		column = 1
	}
	return console.CompilerError{
		Position: console.ErrorPosition{File: file, Line: line, Column: column},
		Type:     "error",
		Message:  message,
		Context:  contextLines(content, line),
	}
}

// contextLines returns the source line at line together with its
// immediate neighbours.
func contextLines(content []byte, line int) []string {
	lines := strings.Split(string(content), "\n")
	first := max(line-1, 1)
	last := min(line+1, len(lines))
	if first > last {
		return nil
	}
	return lines[first-1 : last]
}
