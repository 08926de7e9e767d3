package workflow

import (
	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/github/gh-pipelines/pkg/types"
)

var optionsLog = logger.New("workflow:options")

const (
	DefaultWorkflowName            = "deploy"
	DefaultWorkflowPath            = ".github/workflows/deploy.yml"
	DefaultPublishAssetsAuthRegion = "us-west-2"
	DefaultContainerAssetMarker    = "DockerAsset"
)

// CloudFormation capabilities a stack deployment may acknowledge.
var knownCapabilities = []string{"CAPABILITY_IAM", "CAPABILITY_NAMED_IAM", "CAPABILITY_AUTO_EXPAND"}

// Options configure a Compiler. Zero values select the defaults.
type Options struct {
	WorkflowName string
	// WorkflowPath must end in .yml or .yaml and live under .github/workflows/.
	WorkflowPath string
	Triggers     *types.Triggers
	Concurrency  *types.Concurrency

	// AssemblyDir is the on-disk cloud assembly directory publish scripts
	// are written to.
	AssemblyDir string
	// PreSynthed means the assembly is committed to source control, so jobs
	// check it out instead of downloading it from the build job.
	PreSynthed bool
	// CDKAssetsVersion pins the cdk-assets npm package.
	CDKAssetsVersion string

	AWSCredentials          AWSCredentialsProvider
	DockerCredentials       []DockerCredential
	DockerAssetJobSettings  *DockerAssetJobSettings
	PublishAssetsAuthRegion string
	// ContainerAssetMarker identifies container publish jobs by their id when
	// their assets carry no type.
	ContainerAssetMarker string

	Runner         *types.Runner
	JobSettings    *types.JobSettings
	BuildContainer *types.ContainerOptions
	PreBuildSteps  []types.JobStep
	PostBuildSteps []types.JobStep

	// StackProperties are per stack artifact id overlays for deploy jobs.
	StackProperties map[string]StackProperties
	// ActionVersions overrides the version of actions used by generated
	// steps, keyed by repository (for example "actions/checkout").
	ActionVersions map[string]string
}

// StackProperties customize the deploy job of one stack.
type StackProperties struct {
	Environment  *types.Environment
	Capabilities []string
	Settings     *types.JobSettings
}

func (o Options) withDefaults() Options {
	if o.WorkflowName == "" {
		o.WorkflowName = DefaultWorkflowName
	}
	if o.WorkflowPath == "" {
		o.WorkflowPath = DefaultWorkflowPath
	}
	if o.Triggers == nil {
		o.Triggers = types.DefaultTriggers()
	}
	if o.AssemblyDir == "" {
		o.AssemblyDir = AssemblyArtifact
	}
	if o.AWSCredentials == nil {
		o.AWSCredentials = NewGitHubSecretsProvider("", "", "")
	}
	if o.PublishAssetsAuthRegion == "" {
		o.PublishAssetsAuthRegion = DefaultPublishAssetsAuthRegion
	}
	if o.ContainerAssetMarker == "" {
		o.ContainerAssetMarker = DefaultContainerAssetMarker
	}
	if o.Runner == nil {
		runner := types.UbuntuLatest
		o.Runner = &runner
	}
	return o
}

// Validate checks options after defaults are applied.
func (o Options) Validate() error {
	optionsLog.Printf("Validating options: workflow=%s, path=%s", o.WorkflowName, o.WorkflowPath)

	if err := ValidateRequired("workflow name", o.WorkflowName); err != nil {
		return err
	}
	if err := ValidateWorkflowPath(o.WorkflowPath); err != nil {
		return err
	}
	if o.CDKAssetsVersion != "" && !isValidPackageVersion(o.CDKAssetsVersion) {
		return NewValidationError("cdk-assets version", o.CDKAssetsVersion,
			"not a semantic version", "use a version such as 2.1.0 or 'latest'")
	}
	if len(o.Runner.Labels) == 0 {
		return NewValidationError("runner", "", "at least one runner label is required", "")
	}
	if o.BuildContainer != nil {
		if err := ValidateRequired("build container image", o.BuildContainer.Image); err != nil {
			return err
		}
	}
	if o.Concurrency != nil {
		if err := ValidateRequired("concurrency group", o.Concurrency.Group); err != nil {
			return err
		}
	}
	for artifactID, props := range o.StackProperties {
		for _, capability := range props.Capabilities {
			if err := ValidateInList("capabilities of "+artifactID, capability, knownCapabilities); err != nil {
				return err
			}
		}
	}
	for _, cred := range o.DockerCredentials {
		if cred.Name != "docker" {
			if err := ValidateRequired(cred.Name+" registry", cred.Registry); err != nil {
				return err
			}
		}
	}
	return nil
}
