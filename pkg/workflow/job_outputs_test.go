//go:build !integration

package workflow

import (
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeJobOutputs(t *testing.T) {
	jobs := yaml.MapSlice{
		{Key: "Prod-App-Deploy", Value: yaml.MapSlice{
			{Key: "name", Value: "Deploy ProdApp"},
			{Key: "steps", Value: []any{}},
		}},
		{Key: "Assets-FileAsset1", Value: yaml.MapSlice{
			{Key: "name", Value: "Publish"},
			{Key: "outputs", Value: yaml.MapSlice{{Key: "asset-hash", Value: "${{ steps.Publish.outputs.asset-hash }}"}}},
			{Key: "steps", Value: []any{}},
		}},
	}
	pending := newPendingOutputs()
	pending.add("Prod-App-Deploy", JobStepOutput{StepID: DeployStepID, OutputName: "ApiUrl"})
	pending.add("Prod-App-Deploy", JobStepOutput{StepID: DeployStepID, OutputName: "ApiUrl"})
	pending.add("Assets-FileAsset1", JobStepOutput{StepID: "Publish", OutputName: "extra"})

	merged, err := mergeJobOutputs(jobs, pending)
	require.NoError(t, err)

	assert.Equal(t, yaml.MapSlice{
		{Key: "name", Value: "Deploy ProdApp"},
		{Key: "outputs", Value: yaml.MapSlice{{Key: "ApiUrl", Value: "${{ steps.Deploy.outputs.ApiUrl }}"}}},
		{Key: "steps", Value: []any{}},
	}, merged[0].Value)
	assert.Equal(t, yaml.MapSlice{
		{Key: "asset-hash", Value: "${{ steps.Publish.outputs.asset-hash }}"},
		{Key: "extra", Value: "${{ steps.Publish.outputs.extra }}"},
	}, merged[1].Value.(yaml.MapSlice)[1].Value)

	assert.Len(t, jobs[0].Value.(yaml.MapSlice), 2, "input jobs are not modified")
}

func TestMergeJobOutputsUnknownJob(t *testing.T) {
	pending := newPendingOutputs()
	pending.add("Missing", JobStepOutput{StepID: DeployStepID, OutputName: "Url"})

	_, err := mergeJobOutputs(yaml.MapSlice{}, pending)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCrossReference)
}
