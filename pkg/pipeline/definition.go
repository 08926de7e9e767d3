// Package pipeline loads pipeline definition files and turns them into the
// node graph the workflow compiler consumes.
package pipeline

import (
	"github.com/github/gh-pipelines/pkg/types"
	"github.com/github/gh-pipelines/pkg/workflow"
)

// Definition is the decoded form of a pipeline definition file.
type Definition struct {
	Name             string `json:"name,omitempty"`
	Path             string `json:"path,omitempty"`
	AssemblyDir      string `json:"assemblyDir,omitempty"`
	PreSynthed       bool   `json:"preSynthed,omitempty"`
	CDKAssetsVersion string `json:"cdkAssetsVersion,omitempty"`

	On          *types.Triggers    `json:"on,omitempty"`
	Concurrency *types.Concurrency `json:"concurrency,omitempty"`
	Runner      *types.Runner      `json:"runner,omitempty"`
	JobSettings *types.JobSettings `json:"jobSettings,omitempty"`

	Credentials             *CredentialsDef            `json:"credentials,omitempty"`
	DockerCredentials       []DockerCredentialDef      `json:"dockerCredentials,omitempty"`
	DockerAssetJobSettings  *DockerAssetJobSettingsDef `json:"dockerAssetJobSettings,omitempty"`
	PublishAssetsAuthRegion string                     `json:"publishAssetsAuthRegion,omitempty"`
	ContainerAssetMarker    string                     `json:"containerAssetMarker,omitempty"`

	BuildContainer *types.ContainerOptions `json:"buildContainer,omitempty"`
	PreBuildSteps  []types.JobStep         `json:"preBuildSteps,omitempty"`
	PostBuildSteps []types.JobStep         `json:"postBuildSteps,omitempty"`

	// DiffProtection defaults to true.
	DiffProtection *bool             `json:"diffProtection,omitempty"`
	ActionVersions map[string]string `json:"actionVersions,omitempty"`

	Synth   SynthDef                  `json:"synth"`
	Waves   []WaveDef                 `json:"waves,omitempty"`
	Stages  []StageDef                `json:"stages,omitempty"`
	Patches []workflow.PatchOperation `json:"patches,omitempty"`
}

// CredentialsDef selects how jobs authenticate to AWS.
type CredentialsDef struct {
	Type string `json:"type"` // secrets, oidc or none

	AccessKeyID     string `json:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty"`
	SessionToken    string `json:"sessionToken,omitempty"`

	GitHubActionRoleArn string `json:"gitHubActionRoleArn,omitempty"`
	RoleSessionName     string `json:"roleSessionName,omitempty"`
	RoleDurationSeconds int    `json:"roleDurationSeconds,omitempty"`
	MaskAWSAccountID    bool   `json:"maskAwsAccountId,omitempty"`
}

// DockerCredentialDef is one registry login of container publish jobs.
type DockerCredentialDef struct {
	Type        string `json:"type"` // docker, ecr, ghcr or custom
	Registry    string `json:"registry,omitempty"`
	UsernameKey string `json:"usernameKey,omitempty"`
	PasswordKey string `json:"passwordKey,omitempty"`
}

type DockerAssetJobSettingsDef struct {
	SetupSteps  []types.JobStep    `json:"setupSteps,omitempty"`
	Permissions *types.Permissions `json:"permissions,omitempty"`
}

// SynthDef is the build step producing the cloud assembly.
type SynthDef struct {
	InstallCommands []string          `json:"installCommands,omitempty"`
	Commands        []string          `json:"commands"`
	Env             map[string]string `json:"env,omitempty"`
	// Output is the assembly directory inside the build job, cdk.out by default.
	Output string `json:"output,omitempty"`
}

// WaveDef deploys its stages in parallel.
type WaveDef struct {
	ID     string     `json:"id"`
	Pre    []StepDef  `json:"pre,omitempty"`
	Post   []StepDef  `json:"post,omitempty"`
	Stages []StageDef `json:"stages"`
}

// StageDef groups stacks deployed to one environment.
type StageDef struct {
	ID           string             `json:"id"`
	Account      string             `json:"account,omitempty"`
	Region       string             `json:"region,omitempty"`
	Environment  *types.Environment `json:"environment,omitempty"`
	Capabilities []string           `json:"capabilities,omitempty"`
	JobSettings  *types.JobSettings `json:"jobSettings,omitempty"`
	Pre          []StepDef          `json:"pre,omitempty"`
	Post         []StepDef          `json:"post,omitempty"`
	Stacks       []StackDef         `json:"stacks"`
}

// StackDef is one CloudFormation stack of a stage.
type StackDef struct {
	ID               string     `json:"id"`
	StackName        string     `json:"stackName,omitempty"`
	Account          string     `json:"account,omitempty"`
	Region           string     `json:"region,omitempty"`
	TemplateURL      string     `json:"templateUrl"`
	TemplateAsset    *AssetDef  `json:"templateAsset,omitempty"`
	ExecutionRoleArn string     `json:"executionRoleArn,omitempty"`
	AssumeRoleArn    string     `json:"assumeRoleArn,omitempty"`
	DependsOn        []string   `json:"dependsOn,omitempty"`
	Assets           []AssetDef `json:"assets,omitempty"`
}

// AssetDef is an asset of the cloud assembly. Manifest paths are relative
// to the assembly directory.
type AssetDef struct {
	ID       string `json:"id"`
	Manifest string `json:"manifest"`
	Selector string `json:"selector"`
	Type     string `json:"type,omitempty"`
}

// StepDef is either a shell step (Commands) or an action step (Steps).
type StepDef struct {
	ID                  string                    `json:"id"`
	Commands            []string                  `json:"commands,omitempty"`
	InstallCommands     []string                  `json:"installCommands,omitempty"`
	Env                 map[string]string         `json:"env,omitempty"`
	EnvFromStackOutputs map[string]StackOutputDef `json:"envFromStackOutputs,omitempty"`
	Inputs              []FileSetDef              `json:"inputs,omitempty"`
	Outputs             []FileSetDef              `json:"outputs,omitempty"`

	Steps             []types.JobStep    `json:"steps,omitempty"`
	Permissions       *types.Permissions `json:"permissions,omitempty"`
	UseCredentialRole bool               `json:"useCredentialRole,omitempty"`
}

// StackOutputDef names an output of a stack. Stack is a stack id of the
// enclosing stage, or "<stage>-<stack>" anywhere in the pipeline.
type StackOutputDef struct {
	Stack  string `json:"stack"`
	Output string `json:"output"`
}

type FileSetDef struct {
	ID        string `json:"id"`
	Directory string `json:"directory"`
}

// IsActionStep reports whether the step passes workflow steps through
// verbatim.
func (s StepDef) IsActionStep() bool {
	return len(s.Steps) > 0
}
