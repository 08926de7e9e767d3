package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/github/gh-pipelines/pkg/logger"
)

var errorsLog = logger.New("workflow:errors")

// Sentinels for errors.Is over the compile error taxonomy.
var (
	ErrGraphShape     = errors.New("incompatible pipeline graph")
	ErrMissingData    = errors.New("missing required data")
	ErrCrossReference = errors.New("unresolved cross-job reference")
	ErrDuplicateJob   = errors.New("duplicate job id")
	ErrDrift          = errors.New("workflow file is out of date")
)

// ErrorKind classifies a CompileError.
type ErrorKind string

const (
	KindGraphShape     ErrorKind = "graph-shape"
	KindMissingData    ErrorKind = "missing-data"
	KindCrossReference ErrorKind = "cross-reference"
	KindDuplicateJob   ErrorKind = "duplicate-job"
)

var kindSentinels = map[ErrorKind]error{
	KindGraphShape:     ErrGraphShape,
	KindMissingData:    ErrMissingData,
	KindCrossReference: ErrCrossReference,
	KindDuplicateJob:   ErrDuplicateJob,
}

// CompileError aborts a compilation. Node is the unique id of the offending
// graph node, when there is one.
type CompileError struct {
	Kind    ErrorKind
	Node    string
	Message string
}

func (e *CompileError) Error() string {
	if e.Node == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Node, e.Message)
}

// Is matches the sentinel of the error's kind.
func (e *CompileError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func newCompileError(kind ErrorKind, node string, format string, args ...any) *CompileError {
	err := &CompileError{Kind: kind, Node: node, Message: fmt.Sprintf(format, args...)}
	errorsLog.Printf("Compile error (%s): %s", kind, err.Error())
	return err
}

// ValidationError reports an invalid compiler option.
type ValidationError struct {
	Field      string
	Value      string
	Reason     string
	Suggestion string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid %s", e.Field)
	if e.Value != "" {
		value := e.Value
		if len(value) > 100 {
			value = value[:97] + "..."
		}
		fmt.Fprintf(&b, " %q", value)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (%s)", e.Suggestion)
	}
	return b.String()
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, reason, suggestion string) *ValidationError {
	errorsLog.Printf("Creating validation error: field=%s, reason=%s", field, reason)
	return &ValidationError{Field: field, Value: value, Reason: reason, Suggestion: suggestion}
}

// OperationError wraps a failed file system operation.
type OperationError struct {
	Operation string
	Path      string
	Cause     error
	Timestamp time.Time
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("[%s] failed to %s %s: %v", e.Timestamp.Format(time.RFC3339), e.Operation, e.Path, e.Cause)
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// NewOperationError creates an OperationError stamped with the current time.
func NewOperationError(operation, path string, cause error) *OperationError {
	if errorsLog.Enabled() {
		errorsLog.Printf("Creating operation error: operation=%s, path=%s, cause=%v", operation, path, cause)
	}
	return &OperationError{Operation: operation, Path: path, Cause: cause, Timestamp: time.Now()}
}

// DriftError is returned when the committed workflow differs from the one
// just generated while running inside that very workflow.
type DriftError struct {
	Path   string
	Reason string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("%s: %s. Please commit the updated workflow file %s when you change your pipeline definition.",
		ErrDrift, e.Reason, e.Path)
}

func (e *DriftError) Is(target error) bool {
	return target == ErrDrift
}
