//go:build !integration

package workflow

import (
	"strings"
	"testing"

	"github.com/github/gh-pipelines/pkg/testutil"
	"github.com/github/gh-pipelines/pkg/types"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToYAMLIsIdempotent(t *testing.T) {
	p := newTestPipeline(t, "Api", "Web")
	result := mustCompile(t, Options{
		Concurrency: &types.Concurrency{Group: "deploy-${{ github.ref }}"},
	}, p.root)

	first, err := result.Document.ToYAML()
	require.NoError(t, err)
	second, err := result.Document.ToYAML()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestToYAMLLayout(t *testing.T) {
	p := newTestPipeline(t, "App")
	result := mustCompile(t, Options{
		WorkflowName: "release",
		Concurrency:  &types.Concurrency{Group: "release", CancelInProgress: true},
	}, p.root)

	out, err := result.Document.ToYAML()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# This file was generated by gh-pipelines"))
	body := testutil.StripYAMLCommentHeader(out)
	assert.True(t, strings.HasPrefix(body, "name: release\non:\n"), body)
	assert.Contains(t, body, "workflow_dispatch:")
	assert.Contains(t, body, "cancel-in-progress: true")

	order := []string{"\nname:", "\non:", "\nconcurrency:", "\njobs:"}
	last := -1
	for _, key := range order {
		idx := strings.Index("\n"+body, key)
		require.NotEqual(t, -1, idx, key)
		assert.Greater(t, idx, last, "%s out of order", key)
		last = idx
	}
}

func TestPatchesApplyInOrder(t *testing.T) {
	p := newTestPipeline(t, "App")
	result := mustCompile(t, Options{}, p.root)

	file := NewWorkflowFile(DefaultWorkflowPath, result.Document)
	file.Patch(
		PatchReplace("/jobs/Build-Synth/runs-on", "self-hosted"),
		PatchAdd("/jobs/Build-Synth/timeout-minutes", 30),
		PatchAdd("/jobs/Build-Synth/services", yaml.MapSlice{{Key: "redis", Value: yaml.MapSlice{{Key: "image", Value: "redis:7"}}}}),
		PatchRemove("/jobs/Prod-App-Deploy/permissions"),
	)

	out, err := file.Render()
	require.NoError(t, err)

	var parsed struct {
		Name string `yaml:"name"`
		Jobs map[string]map[string]any `yaml:"jobs"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "deploy", parsed.Name)
	assert.Equal(t, "self-hosted", parsed.Jobs["Build-Synth"]["runs-on"])
	assert.EqualValues(t, 30, parsed.Jobs["Build-Synth"]["timeout-minutes"])
	assert.Contains(t, parsed.Jobs["Build-Synth"], "services")
	assert.NotContains(t, parsed.Jobs["Prod-App-Deploy"], "permissions")

	body := testutil.StripYAMLCommentHeader(out)
	assert.True(t, strings.HasPrefix(body, "name: deploy\non:\n"), "patching keeps key order")

	unpatched, err := result.Document.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, unpatched, "runs-on: ubuntu-latest", "patches never modify the document")
}

func TestPatchErrors(t *testing.T) {
	p := newTestPipeline(t, "App")
	result := mustCompile(t, Options{}, p.root)

	tests := []struct {
		name string
		op   PatchOperation
	}{
		{name: "remove missing", op: PatchRemove("/jobs/Nope")},
		{name: "failed test", op: PatchTest("/name", "other")},
		{name: "unknown op", op: PatchOperation{Op: "merge", Path: "/name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := NewWorkflowFile(DefaultWorkflowPath, result.Document)
			file.Patch(tt.op)
			_, err := file.Render()
			assert.Error(t, err)
		})
	}
}

func TestOrderedJSON(t *testing.T) {
	out, err := orderedJSON(yaml.MapSlice{
		{Key: "b", Value: 1},
		{Key: "a", Value: []any{"x", yaml.MapSlice{{Key: "z", Value: true}, {Key: "y", Value: nil}}}},
		{Key: "m", Value: map[string]string{"k2": "v2", "k1": "<v1>"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":1,"a":["x",{"z":true,"y":null}],"m":{"k1":"<v1>","k2":"v2"}}`, string(out))
	assert.True(t, strings.HasPrefix(string(out), `{"b":1,"a":`), "mapping order is kept")
}
