package workflow

import (
	"github.com/github/gh-pipelines/pkg/types"
	"github.com/goccy/go-yaml"
)

// DeployStepID is the id of the CloudFormation step in every deploy job.
// Stack outputs are read from this step.
const DeployStepID = "Deploy"

// PublishStepID is the id of the cdk-assets step in every publish job.
const PublishStepID = "Publish"

// Job is one compiled job, keyed by the unique id of its graph node.
type Job struct {
	ID         string
	Definition JobDefinition
}

// JobDefinition is the body of a job before key normalization.
type JobDefinition struct {
	Name        string
	If          string
	Needs       []string
	Permissions *types.Permissions
	Environment *types.Environment
	RunsOn      types.Runner
	Container   *types.ContainerOptions
	Outputs     map[string]string
	Env         map[string]string
	Steps       []types.JobStep
}

// Render returns the job as an ordered mapping with camelCase keys. Empty
// optional fields are omitted; GitHub rejects an empty `needs` list.
func (d JobDefinition) Render() yaml.MapSlice {
	out := yaml.MapSlice{{Key: "name", Value: d.Name}}
	if d.If != "" {
		out = append(out, yaml.MapItem{Key: "if", Value: d.If})
	}
	if len(d.Needs) > 0 {
		needs := make([]any, len(d.Needs))
		for i, n := range d.Needs {
			needs[i] = n
		}
		out = append(out, yaml.MapItem{Key: "needs", Value: needs})
	}
	out = append(out, yaml.MapItem{Key: "permissions", Value: d.Permissions.Render()})
	if d.Environment != nil {
		out = append(out, yaml.MapItem{Key: "environment", Value: d.Environment.Render()})
	}
	out = append(out, yaml.MapItem{Key: "runsOn", Value: d.RunsOn.RunsOn()})
	if d.Container != nil {
		out = append(out, yaml.MapItem{Key: "container", Value: d.Container.Render()})
	}
	if len(d.Outputs) > 0 {
		out = append(out, yaml.MapItem{Key: "outputs", Value: types.StringMap(d.Outputs)})
	}
	if len(d.Env) > 0 {
		out = append(out, yaml.MapItem{Key: "env", Value: types.StringMap(d.Env)})
	}
	out = append(out, yaml.MapItem{Key: "steps", Value: types.RenderSteps(d.Steps)})
	return out
}
