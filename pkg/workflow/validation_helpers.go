package workflow

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/github/gh-pipelines/pkg/logger"
)

var validationHelpersLog = logger.New("workflow:validation_helpers")

// ValidateRequired fails when value is blank.
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	validationHelpersLog.Printf("Missing value for %s", field)
	return NewValidationError(field, value, "a value is required",
		fmt.Sprintf("set '%s' in the pipeline definition", field))
}

// ValidateInList fails when value is not one of allowed.
func ValidateInList(field, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	validationHelpersLog.Printf("Value %q of %s is not one of %v", value, field, allowed)
	return NewValidationError(field, value,
		"unsupported value",
		"use one of: "+strings.Join(allowed, ", "))
}

// ValidateWorkflowPath checks that path names a yaml file under a
// .github/workflows directory, the only place GitHub picks workflows up.
func ValidateWorkflowPath(path string) error {
	slashed := filepath.ToSlash(path)
	if !strings.HasSuffix(slashed, ".yml") && !strings.HasSuffix(slashed, ".yaml") {
		return NewValidationError("workflow path", path,
			"workflow file is expected to be a yaml file", "use a .yml or .yaml extension")
	}
	if !strings.Contains(slashed, ".github/workflows/") {
		return NewValidationError("workflow path", path,
			"workflow files must be stored in the '.github/workflows' directory of your repository", "")
	}
	return nil
}
