package workflow

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/github/gh-pipelines/pkg/envutil"
	"github.com/github/gh-pipelines/pkg/logger"
)

var workflowFileLog = logger.New("workflow:workflow_file")

const (
	// WorkflowNameEnvVar is set by GitHub to the name of the running workflow.
	WorkflowNameEnvVar = "GITHUB_WORKFLOW"
	// DiffProtectionEnvVar set to false turns WriteOptions.DiffProtection off.
	// It cannot turn the guard on.
	DiffProtectionEnvVar = "GH_PIPELINES_DIFF_PROTECTION"
)

// WorkflowFile is a document bound to its destination, with the patches to
// apply before it is written.
type WorkflowFile struct {
	path    string
	doc     *Document
	patches []PatchOperation
}

// NewWorkflowFile binds doc to path.
func NewWorkflowFile(path string, doc *Document) *WorkflowFile {
	return &WorkflowFile{path: path, doc: doc}
}

// Path returns the destination of the file.
func (f *WorkflowFile) Path() string {
	return f.path
}

// Patch queues operations; they run in the order they were queued.
func (f *WorkflowFile) Patch(ops ...PatchOperation) {
	f.patches = append(f.patches, ops...)
}

// Render serializes the document with all queued patches applied.
func (f *WorkflowFile) Render() (string, error) {
	tree, err := applyPatches(f.doc.Tree(), f.patches)
	if err != nil {
		return "", err
	}
	return marshalWorkflow(tree)
}

// WriteOptions control WorkflowFile.Write.
type WriteOptions struct {
	// DiffProtection fails the write when running inside the workflow named
	// WorkflowName and the committed file differs.
	DiffProtection bool
	WorkflowName   string
	// Validate runs the rendered workflow through actionlint first.
	Validate bool
	// Scripts are written before the workflow itself.
	Scripts []ScriptFile
}

// Write renders the file and persists it along with its scripts. Nothing is
// written when rendering, validation or the drift guard fails.
func (f *WorkflowFile) Write(opts WriteOptions) error {
	content, err := f.Render()
	if err != nil {
		return err
	}
	if opts.Validate {
		if err := lintWorkflow(f.path, []byte(content)); err != nil {
			return err
		}
	}
	if err := f.checkDrift(content, opts); err != nil {
		return err
	}

	for _, script := range opts.Scripts {
		if err := writeFile(script.Path, []byte(script.Content), 0o755); err != nil {
			return err
		}
	}
	if err := writeFile(f.path, []byte(content), 0o644); err != nil {
		return err
	}
	workflowFileLog.Printf("Wrote %s (%d bytes) and %d scripts", f.path, len(content), len(opts.Scripts))
	return nil
}

func (f *WorkflowFile) checkDrift(content string, opts WriteOptions) error {
	protect := opts.DiffProtection
	if v, ok := envutil.GetBoolFromEnv(DiffProtectionEnvVar, workflowFileLog); ok && !v {
		protect = false
	}
	if !protect || opts.WorkflowName == "" || os.Getenv(WorkflowNameEnvVar) != opts.WorkflowName {
		return nil
	}

	workflowFileLog.Printf("Running inside workflow %s, comparing with committed %s", opts.WorkflowName, f.path)
	existing, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &DriftError{Path: f.path, Reason: "the workflow file does not exist"}
	}
	if err != nil {
		return NewOperationError("read", f.path, err)
	}
	if string(existing) != content {
		return &DriftError{Path: f.path, Reason: "the generated workflow differs from the committed one"}
	}
	return nil
}

func writeFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return NewOperationError("create directory for", path, err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return NewOperationError("write", path, err)
	}
	return nil
}

// String implements fmt.Stringer for log messages.
func (f *WorkflowFile) String() string {
	return fmt.Sprintf("WorkflowFile(%s, %d patches)", f.path, len(f.patches))
}
