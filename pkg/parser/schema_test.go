//go:build !integration

package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPipeline = `name: deploy
on:
  push:
    branches: [main]
  workflowDispatch: {}
credentials:
  type: oidc
  gitHubActionRoleArn: arn:aws:iam::111111111111:role/GitHubActionRole
synth:
  installCommands: [npm ci]
  commands: [npx cdk synth]
stages:
  - id: Prod
    account: "111111111111"
    region: us-east-1
    stacks:
      - id: App
        templateUrl: https://cdk-assets.s3.us-east-1.amazonaws.com/app.template.json
`

func TestPipelineSchemaIsValidJSON(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal(PipelineSchema(), &doc))
	assert.Equal(t, "object", doc["type"])
}

func TestValidatePipelineYAML(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  bool
		wantLine int
		contains []string
	}{
		{
			name:    "valid",
			content: validPipeline,
		},
		{
			name:     "unknown top-level property",
			content:  "synth:\n  commands: [make]\nbogus: true\n",
			wantErr:  true,
			wantLine: 3,
			contains: []string{"additional properties", "'bogus'"},
		},
		{
			name:     "missing synth",
			content:  "name: deploy\n",
			wantErr:  true,
			wantLine: 1,
			contains: []string{"synth"},
		},
		{
			name:     "wrong type nested in a stage",
			content:  "synth:\n  commands: [make]\nstages:\n  - id: Prod\n    region: 42\n    stacks:\n      - id: App\n        templateUrl: x\n",
			wantErr:  true,
			wantLine: 5,
			contains: []string{"stages/0/region"},
		},
		{
			name:     "bad credential type",
			content:  "synth:\n  commands: [make]\ncredentials:\n  type: magic\n",
			wantErr:  true,
			wantLine: 4,
			contains: []string{"credentials/type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePipelineYAML([]byte(tt.content), "pipeline.yaml")
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "expected *SchemaError, got %T", err)
			require.NotEmpty(t, schemaErr.Errors)

			var match bool
			for _, ce := range schemaErr.Errors {
				all := true
				for _, want := range tt.contains {
					if !strings.Contains(ce.Message, want) {
						all = false
					}
				}
				if all {
					match = true
					assert.Equal(t, tt.wantLine, ce.Position.Line, "line of %q", ce.Message)
					assert.Equal(t, "pipeline.yaml", ce.Position.File)
				}
			}
			assert.True(t, match, "no diagnostic contains %v in %s", tt.contains, err.Error())
		})
	}
}

func TestValidatePipelineYAMLSyntaxError(t *testing.T) {
	err := ValidatePipelineYAML([]byte("synth:\n  commands: [make\nstages: 1\n"), "broken.yaml")
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Len(t, schemaErr.Errors, 1)
	assert.Positive(t, schemaErr.Errors[0].Position.Line)
	assert.Contains(t, err.Error(), "broken.yaml:")
}
