//go:build !integration

package workflow

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/github/gh-pipelines/pkg/graph"
	"github.com/github/gh-pipelines/pkg/testutil"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileFile(t *testing.T, dir string, stacks ...string) (*WorkflowFile, *Result) {
	t.Helper()
	p := newTestPipeline(t, stacks...)
	addAssets(t, p, fileAsset("FileAsset1", "abc123"))
	result := mustCompile(t, Options{AssemblyDir: filepath.Join(dir, "cdk.out")}, p.root)
	return NewWorkflowFile(filepath.Join(dir, ".github", "workflows", "deploy.yml"), result.Document), result
}

func TestWriteCreatesWorkflowAndScripts(t *testing.T) {
	t.Setenv(WorkflowNameEnvVar, "")
	dir := testutil.TempDir(t, "test-*")
	file, result := compileFile(t, dir, "App")

	require.NoError(t, file.Write(WriteOptions{DiffProtection: true, WorkflowName: "deploy", Scripts: result.Scripts}))

	content, err := os.ReadFile(file.Path())
	require.NoError(t, err)
	rendered, err := file.Render()
	require.NoError(t, err)
	assert.Equal(t, rendered, string(content))

	script, err := os.ReadFile(filepath.Join(dir, "cdk.out", "publish-Assets-FileAsset1-step.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "set -ex")
}

func TestDriftGuard(t *testing.T) {
	tests := []struct {
		name           string
		stacks         []string
		diffProtection bool
		envOverride    string
		wantDrift      bool
	}{
		{name: "identical", stacks: []string{"App"}, diffProtection: true},
		{name: "changed", stacks: []string{"App", "Web"}, diffProtection: true, wantDrift: true},
		{name: "changed but disabled", stacks: []string{"App", "Web"}, diffProtection: false},
		{name: "changed but disabled by env", stacks: []string{"App", "Web"}, diffProtection: true, envOverride: "false"},
		{name: "env cannot re-enable a disabled guard", stacks: []string{"App", "Web"}, diffProtection: false, envOverride: "true"},
		{name: "env true keeps an enabled guard", stacks: []string{"App", "Web"}, diffProtection: true, envOverride: "true", wantDrift: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.TempDir(t, "test-*")
			t.Setenv(WorkflowNameEnvVar, "")
			t.Setenv(DiffProtectionEnvVar, "")

			committed, _ := compileFile(t, dir, "App")
			require.NoError(t, committed.Write(WriteOptions{DiffProtection: true, WorkflowName: "deploy"}))
			before, err := os.ReadFile(committed.Path())
			require.NoError(t, err)

			t.Setenv(WorkflowNameEnvVar, "deploy")
			t.Setenv(DiffProtectionEnvVar, tt.envOverride)
			regenerated, _ := compileFile(t, dir, tt.stacks...)
			err = regenerated.Write(WriteOptions{DiffProtection: tt.diffProtection, WorkflowName: "deploy"})

			if !tt.wantDrift {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDrift))
			assert.Contains(t, err.Error(), "Please commit the updated workflow file")

			after, readErr := os.ReadFile(committed.Path())
			require.NoError(t, readErr)
			assert.Equal(t, string(before), string(after), "a drifting workflow is not written")
		})
	}
}

func TestDriftGuardOnlyInsideNamedWorkflow(t *testing.T) {
	dir := testutil.TempDir(t, "test-*")
	t.Setenv(DiffProtectionEnvVar, "")
	t.Setenv(WorkflowNameEnvVar, "some-other-workflow")

	file, _ := compileFile(t, dir, "App")
	assert.NoError(t, file.Write(WriteOptions{DiffProtection: true, WorkflowName: "deploy"}),
		"a missing file only drifts inside the deploy workflow")
}

func TestDriftGuardMissingFile(t *testing.T) {
	dir := testutil.TempDir(t, "test-*")
	t.Setenv(DiffProtectionEnvVar, "")
	t.Setenv(WorkflowNameEnvVar, "deploy")

	file, _ := compileFile(t, dir, "App")
	err := file.Write(WriteOptions{DiffProtection: true, WorkflowName: "deploy"})
	require.Error(t, err)
	var drift *DriftError
	require.True(t, errors.As(err, &drift))
	assert.Contains(t, drift.Reason, "does not exist")
}

func TestWriteValidatesWithActionlint(t *testing.T) {
	t.Setenv(WorkflowNameEnvVar, "")
	dir := testutil.TempDir(t, "test-*")

	file, _ := compileFile(t, dir, "App", "Web")
	require.NoError(t, file.Write(WriteOptions{Validate: true}))

	broken := NewWorkflowFile(filepath.Join(dir, "broken.yml"), &Document{
		Name: "broken",
		On:   yaml.MapSlice{{Key: "push", Value: yaml.MapSlice{}}},
		Jobs: yaml.MapSlice{{Key: "job", Value: yaml.MapSlice{
			{Key: "steps", Value: []any{yaml.MapSlice{{Key: "run", Value: "echo hi"}}}},
		}}},
	})
	err := broken.Write(WriteOptions{Validate: true})
	require.Error(t, err)

	var lintErr *LintError
	require.True(t, errors.As(err, &lintErr))
	require.NotEmpty(t, lintErr.Issues)
	assert.Contains(t, lintErr.Issues[0].DocsURL(), "https://github.com/rhysd/actionlint/blob/main/docs/checks.md")
	_, statErr := os.Stat(broken.Path())
	assert.True(t, os.IsNotExist(statErr), "invalid workflows are not written")
}

func TestCompileErrorWritesNothing(t *testing.T) {
	root := graph.NewGraph("pipeline", nil)
	stage := graph.NewGraph("Stage", nil)
	require.NoError(t, stage.Add(graph.NewLeaf("Update", graph.SelfUpdateData{})))
	require.NoError(t, root.Add(stage))

	compiler, err := NewCompiler(Options{})
	require.NoError(t, err)
	result, err := compiler.Compile(root)
	require.Error(t, err)
	assert.Nil(t, result)
}
