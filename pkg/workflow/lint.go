package workflow

import (
	"fmt"
	"strings"

	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/rhysd/actionlint"
)

var lintLog = logger.New("workflow:lint")

const actionlintChecksURL = "https://github.com/rhysd/actionlint/blob/main/docs/checks.md"

// LintIssue is one structural problem actionlint found in a generated workflow.
type LintIssue struct {
	Line    int
	Column  int
	Kind    string
	Message string
}

// DocsURL links to the actionlint documentation of the issue kind.
func (i LintIssue) DocsURL() string {
	if i.Kind == "" {
		return actionlintChecksURL
	}
	anchor := i.Kind
	switch i.Kind {
	case "expression", "syntax-check":
		anchor = "check-syntax-expression"
	case "runner-label":
		anchor = "check-runner-labels"
	default:
		if !strings.HasPrefix(anchor, "check-") {
			anchor = "check-" + anchor
		}
	}
	return actionlintChecksURL + "#" + anchor
}

// LintError carries every issue found in one workflow file.
type LintError struct {
	Path   string
	Issues []LintIssue
}

func (e *LintError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "workflow %s failed validation with %d issue(s)", e.Path, len(e.Issues))
	for _, issue := range e.Issues {
		fmt.Fprintf(&b, "\n  %s:%d:%d: %s [%s]", e.Path, issue.Line, issue.Column, issue.Message, issue.Kind)
	}
	return b.String()
}

// lintWorkflow parses content with actionlint's workflow parser.
func lintWorkflow(path string, content []byte) error {
	_, errs := actionlint.Parse(content)
	if len(errs) == 0 {
		lintLog.Printf("Workflow %s passed validation", path)
		return nil
	}
	issues := make([]LintIssue, 0, len(errs))
	for _, err := range errs {
		issues = append(issues, LintIssue{Line: err.Line, Column: err.Column, Kind: err.Kind, Message: err.Message})
	}
	lintLog.Printf("Workflow %s has %d issues", path, len(issues))
	return &LintError{Path: path, Issues: issues}
}
