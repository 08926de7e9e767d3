//go:build !integration

package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/github/gh-pipelines/pkg/parser"
	"github.com/github/gh-pipelines/pkg/testutil"
	"github.com/github/gh-pipelines/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	dir := testutil.TempDir(t, "test-*")
	path := filepath.Join(dir, DefaultDefinitionFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeDefinition(t, `name: deploy
path: .github/workflows/release.yml
assemblyDir: build/cdk.out
diffProtection: false
on:
  push:
    branches: [release]
  schedule:
    - cron: "0 4 * * 1"
runner:
  labels: [self-hosted, linux]
dockerAssetJobSettings:
  permissions:
    packages: write
synth:
  commands: [npx cdk synth]
  env:
    NODE_OPTIONS: --max-old-space-size=4096
stages:
  - id: Prod
    account: "111111111111"
    region: us-east-1
    stacks:
      - id: App
        templateUrl: https://example.com/app.json
patches:
  - op: add
    path: /jobs/Build-Synth/timeout-minutes
    value: 30
`)

	p, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, ".github", "workflows", "release.yml"), p.OutputPath)
	assert.Equal(t, filepath.Join(dir, "build", "cdk.out"), p.Options.AssemblyDir)
	assert.False(t, p.DiffProtection)
	assert.Equal(t, []string{"self-hosted", "linux"}, p.Options.Runner.Labels)
	require.NotNil(t, p.Options.Triggers.Push)
	assert.Equal(t, []string{"release"}, p.Options.Triggers.Push.Branches)
	assert.Equal(t, "0 4 * * 1", p.Options.Triggers.Schedule[0].Cron)

	require.NotNil(t, p.Options.DockerAssetJobSettings)
	level, ok := p.Options.DockerAssetJobSettings.Permissions.Get(types.PermissionPackages)
	require.True(t, ok)
	assert.Equal(t, types.PermissionWrite, level)

	require.Len(t, p.Patches, 1)
	assert.Equal(t, "add", p.Patches[0].Op)
	assert.Equal(t, "/jobs/Build-Synth/timeout-minutes", p.Patches[0].Path)
}

func TestLoadSchemaError(t *testing.T) {
	path := writeDefinition(t, "synth:\n  commands: [make]\nstages:\n  - id: Prod\n    stacks: []\n")

	_, err := Load(path)
	require.Error(t, err)

	var schemaErr *parser.SchemaError
	require.True(t, errors.As(err, &schemaErr), "got %T: %v", err, err)
	assert.Equal(t, 5, schemaErr.Errors[0].Position.Line)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(testutil.TempDir(t, "test-*"), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
