//go:build !integration

package console

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/github/gh-pipelines/pkg/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		err      CompilerError
		expected []string // substrings that must be present
	}{
		{
			name: "error with position",
			err: CompilerError{
				Position: ErrorPosition{File: "pipeline.yaml", Line: 5, Column: 10},
				Type:     "error",
				Message:  "missing property 'region'",
			},
			expected: []string{"pipeline.yaml:5:10:", "error:", "missing property 'region'"},
		},
		{
			name: "warning",
			err: CompilerError{
				Position: ErrorPosition{File: "pipeline.yaml", Line: 2, Column: 1},
				Type:     "warning",
				Message:  "stage has no stacks",
			},
			expected: []string{"pipeline.yaml:2:1:", "warning:", "stage has no stacks"},
		},
		{
			name: "error with context",
			err: CompilerError{
				Position: ErrorPosition{File: "pipeline.yaml", Line: 3, Column: 5},
				Type:     "error",
				Message:  "expected string",
				Context: []string{
					"stages:",
					"  - id: Prod",
					"    region: 42",
				},
			},
			expected: []string{"pipeline.yaml:3:5:", "error:", "2 |", "3 |", "4 |", "region: 42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := FormatError(tt.err)
			for _, want := range tt.expected {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestFormatErrorWithSuggestions(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		suggestions []string
		expected    []string
	}{
		{
			name:    "with suggestions",
			message: "pipeline definition 'pipeline.yaml' not found",
			suggestions: []string{
				"Run 'gh pipelines init' to create one",
				"Pass the definition path explicitly",
			},
			expected: []string{
				"✗",
				"pipeline definition 'pipeline.yaml' not found",
				"Suggestions:",
				"• Run 'gh pipelines init' to create one",
				"• Pass the definition path explicitly",
			},
		},
		{
			name:        "without suggestions",
			message:     "compilation failed",
			suggestions: nil,
			expected:    []string{"✗", "compilation failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := FormatErrorWithSuggestions(tt.message, tt.suggestions)
			for _, want := range tt.expected {
				assert.Contains(t, output, want)
			}
			if len(tt.suggestions) == 0 {
				assert.NotContains(t, output, "Suggestions:")
			}
		})
	}
}

func TestMessageIcons(t *testing.T) {
	tests := []struct {
		name   string
		format func(string) string
		icon   string
	}{
		{name: "success", format: FormatSuccessMessage, icon: "✓"},
		{name: "info", format: FormatInfoMessage, icon: "ℹ"},
		{name: "warning", format: FormatWarningMessage, icon: "⚠"},
		{name: "error", format: FormatErrorMessage, icon: "✗"},
		{name: "location", format: FormatLocationMessage, icon: "📁"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.format("compiled deploy.yml")
			assert.Contains(t, output, tt.icon)
			assert.Contains(t, output, "compiled deploy.yml")
		})
	}
}

func TestRenderTable(t *testing.T) {
	t.Run("rows and total", func(t *testing.T) {
		output := RenderTable(TableConfig{
			Title:     "Compiled workflows",
			Headers:   []string{"Workflow", "Jobs", "Steps"},
			Rows:      [][]string{{"deploy.yml", "4", "17"}, {"release.yml", "2", "6"}},
			ShowTotal: true,
			TotalRow:  []string{"TOTAL", "6", "23"},
		})
		for _, want := range []string{"Compiled workflows", "Workflow", "deploy.yml", "release.yml", "TOTAL", "23"} {
			assert.Contains(t, output, want)
		}
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, RenderTable(TableConfig{}))
	})
}

func TestToRelativePath(t *testing.T) {
	assert.Equal(t, "pipeline.yaml", ToRelativePath("pipeline.yaml"))
	assert.Equal(t, filepath.Join("infra", "pipeline.yaml"), ToRelativePath(filepath.Join("infra", "pipeline.yaml")))

	tmpDir := testutil.TempDir(t, "test-*")
	rel := ToRelativePath(filepath.Join(tmpDir, "pipeline.yaml"))
	assert.False(t, strings.HasPrefix(rel, "/"), "expected relative path, got %s", rel)
	assert.True(t, strings.HasSuffix(rel, "pipeline.yaml"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2*1024*1024))
}
