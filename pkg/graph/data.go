package graph

import "github.com/github/gh-pipelines/pkg/types"

// Kind discriminates the payload a node carries.
type Kind string

const (
	KindGroup         Kind = "group"
	KindStackGroup    Kind = "stack-group"
	KindSelfUpdate    Kind = "self-update"
	KindPublishAssets Kind = "publish-assets"
	KindPrepare       Kind = "prepare"
	KindExecute       Kind = "execute"
	KindStep          Kind = "step"
	KindActionStep    Kind = "action-step"
)

// NodeData is the payload of a node. The set of implementations is closed.
type NodeData interface {
	Kind() Kind
	isNodeData()
}

// GroupData marks a plain grouping node (pipeline, wave, stage).
type GroupData struct{}

// StackGroupData marks the grouping node of one stack deployment.
type StackGroupData struct {
	Stack *StackDeployment
}

// SelfUpdateData is the pipeline self-mutation step.
type SelfUpdateData struct{}

// PublishAssetsData publishes one or more assets.
type PublishAssetsData struct {
	Assets []StackAsset
}

// PrepareData creates a change set without executing it.
type PrepareData struct {
	Stack *StackDeployment
}

// ExecuteData deploys one stack.
type ExecuteData struct {
	Stack *StackDeployment
}

// StepData runs a shell step. Exactly one step in a pipeline is the build
// step that produces the cloud assembly.
type StepData struct {
	Step        *ShellStep
	IsBuildStep bool
}

// ActionStepData runs user supplied workflow steps verbatim.
type ActionStepData struct {
	Step *ActionStep
}

func (GroupData) Kind() Kind         { return KindGroup }
func (StackGroupData) Kind() Kind    { return KindStackGroup }
func (SelfUpdateData) Kind() Kind    { return KindSelfUpdate }
func (PublishAssetsData) Kind() Kind { return KindPublishAssets }
func (PrepareData) Kind() Kind       { return KindPrepare }
func (ExecuteData) Kind() Kind       { return KindExecute }
func (StepData) Kind() Kind          { return KindStep }
func (ActionStepData) Kind() Kind    { return KindActionStep }

func (GroupData) isNodeData()         {}
func (StackGroupData) isNodeData()    {}
func (SelfUpdateData) isNodeData()    {}
func (PublishAssetsData) isNodeData() {}
func (PrepareData) isNodeData()       {}
func (ExecuteData) isNodeData()       {}
func (StepData) isNodeData()          {}
func (ActionStepData) isNodeData()    {}

// AssetType is the kind of artifact an asset publishes.
type AssetType string

const (
	AssetTypeFile        AssetType = "file"
	AssetTypeDockerImage AssetType = "docker-image"
)

// StackAsset is one asset published through cdk-assets.
type StackAsset struct {
	// AssetID is the content hash of the asset.
	AssetID           string
	AssetManifestPath string
	AssetSelector     string
	Type              AssetType
}

// StackDeployment describes one resolved stack template to deploy.
type StackDeployment struct {
	StackArtifactID string
	StackName       string
	Region          string
	Account         string
	// TemplateURL may hold ${AWS::...} placeholders and the hash of
	// TemplateAsset.
	TemplateURL      string
	TemplateAsset    *StackAsset
	ExecutionRoleArn string
	AssumeRoleArn    string
	Assets           []StackAsset
}

// FileSet is a directory passed between steps as a workflow artifact.
type FileSet struct {
	ID        string
	Directory string
	Primary   bool
}

// StackOutputReference names a CloudFormation output of a deployed stack.
type StackOutputReference struct {
	StackArtifactID string
	OutputName      string
}

// IsProducedBy reports whether stack emits the referenced output.
func (r StackOutputReference) IsProducedBy(stack *StackDeployment) bool {
	return stack != nil && stack.StackArtifactID == r.StackArtifactID
}

// ShellStep runs shell commands in its own job.
type ShellStep struct {
	ID                  string
	Commands            []string
	InstallCommands     []string
	Env                 map[string]string
	EnvFromStackOutputs map[string]StackOutputReference
	Inputs              []FileSet
	Outputs             []FileSet
}

// ActionStep passes fully formed workflow steps through to its job.
type ActionStep struct {
	ID          string
	JobSteps    []types.JobStep
	Env         map[string]string
	Permissions *types.Permissions
	// UseCredentialRole grants the job the id-token permission the AWS
	// credential provider needs.
	UseCredentialRole bool
}
