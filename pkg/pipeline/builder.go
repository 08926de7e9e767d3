package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/github/gh-pipelines/pkg/graph"
	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/github/gh-pipelines/pkg/workflow"
)

var builderLog = logger.New("pipeline:builder")

const (
	buildGraphID  = "Build"
	synthStepID   = "Synth"
	assetsGraphID = "Assets"
	deployLeafID  = "Deploy"
)

// Pipeline is a definition resolved into a graph and compiler options.
type Pipeline struct {
	Root    *graph.Node
	Options workflow.Options
	Patches []workflow.PatchOperation
	// DiffProtection guards the committed workflow against drift.
	DiffProtection bool
	// OutputPath is where the workflow file is written.
	OutputPath string
}

type builder struct {
	def     *Definition
	synth   *graph.Node
	assets  *graph.Node
	nFile   int
	nDocker int
	// publishers are keyed by asset id.
	publishers map[string]*graph.Node
	// producers are keyed by file set id.
	producers  map[string]*graph.Node
	stackProps map[string]workflow.StackProperties
}

// Build resolves def into a pipeline graph. Relative local paths are taken
// relative to baseDir.
func Build(def *Definition, baseDir string) (*Pipeline, error) {
	builderLog.Printf("Building pipeline %q: %d waves, %d stages", def.Name, len(def.Waves), len(def.Stages))

	b := &builder{
		def:        def,
		assets:     graph.NewGraph(assetsGraphID, nil),
		publishers: make(map[string]*graph.Node),
		producers:  make(map[string]*graph.Node),
		stackProps: make(map[string]workflow.StackProperties),
	}

	root := graph.NewGraph("pipeline", nil)
	buildGraph, err := b.buildGraph()
	if err != nil {
		return nil, err
	}

	var phases []*graph.Node
	for _, w := range def.Waves {
		wave, err := b.wave(w)
		if err != nil {
			return nil, err
		}
		phases = append(phases, wave)
	}
	for _, st := range def.Stages {
		stage, err := b.stage(st, "")
		if err != nil {
			return nil, err
		}
		phases = append(phases, stage)
	}
	// Waves and stages deploy one after another, in definition order.
	for i := 1; i < len(phases); i++ {
		phases[i].DependOn(phases[i-1])
	}

	children := []*graph.Node{buildGraph}
	if len(b.assets.Children()) > 0 {
		children = append(children, b.assets)
	}
	children = append(children, phases...)
	if err := root.Add(children...); err != nil {
		return nil, err
	}

	opts, err := b.options(baseDir)
	if err != nil {
		return nil, err
	}

	diffProtection := true
	if def.DiffProtection != nil {
		diffProtection = *def.DiffProtection
	}

	outputPath := opts.WorkflowPath
	if outputPath == "" {
		outputPath = workflow.DefaultWorkflowPath
	}
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(baseDir, filepath.FromSlash(outputPath))
	}

	builderLog.Printf("Built pipeline with %d publish nodes, output=%s", len(b.publishers), outputPath)
	return &Pipeline{
		Root:           root,
		Options:        opts,
		Patches:        def.Patches,
		DiffProtection: diffProtection,
		OutputPath:     outputPath,
	}, nil
}

func (b *builder) buildGraph() (*graph.Node, error) {
	output := b.def.Synth.Output
	if output == "" {
		output = workflow.AssemblyArtifact
	}
	b.synth = graph.NewLeaf(synthStepID, graph.StepData{
		IsBuildStep: true,
		Step: &graph.ShellStep{
			ID:              synthStepID,
			Commands:        b.def.Synth.Commands,
			InstallCommands: b.def.Synth.InstallCommands,
			Env:             b.def.Synth.Env,
			Outputs:         []graph.FileSet{{ID: workflow.AssemblyArtifact, Directory: output, Primary: true}},
		},
	})
	b.producers[workflow.AssemblyArtifact] = b.synth

	g := graph.NewGraph(buildGraphID, nil)
	if err := g.Add(b.synth); err != nil {
		return nil, err
	}
	return g, nil
}

func (b *builder) wave(w WaveDef) (*graph.Node, error) {
	wave := graph.NewGraph(w.ID, nil)
	pre, err := b.steps(wave, w.Pre, "")
	if err != nil {
		return nil, err
	}

	var stages []*graph.Node
	for _, st := range w.Stages {
		stage, err := b.stage(st, w.ID)
		if err != nil {
			return nil, err
		}
		stage.DependOn(pre...)
		if err := wave.Add(stage); err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}

	post, err := b.steps(wave, w.Post, "")
	if err != nil {
		return nil, err
	}
	for _, leaf := range post {
		leaf.DependOn(stages...)
	}
	return wave, nil
}

func (b *builder) stage(st StageDef, waveID string) (*graph.Node, error) {
	builderLog.Printf("Building stage %s (wave %q): %d stacks", st.ID, waveID, len(st.Stacks))
	stage := graph.NewGraph(st.ID, nil)

	pre, err := b.steps(stage, st.Pre, st.ID)
	if err != nil {
		return nil, err
	}

	stackGraphs := make(map[string]*graph.Node, len(st.Stacks))
	var ordered []*graph.Node
	for _, s := range st.Stacks {
		if _, dup := stackGraphs[s.ID]; dup {
			return nil, fmt.Errorf("stage %s: duplicate stack id %q", st.ID, s.ID)
		}
		deployment := b.deployment(st, s)

		deploy := graph.NewLeaf(deployLeafID, graph.ExecuteData{Stack: deployment})
		deploy.DependOn(b.synth)
		for _, asset := range deployment.Assets {
			publisher, err := b.publisher(asset)
			if err != nil {
				return nil, fmt.Errorf("stack %s: %w", deployment.StackArtifactID, err)
			}
			deploy.DependOn(publisher)
		}

		sg := graph.NewGraph(s.ID, graph.StackGroupData{Stack: deployment})
		if err := sg.Add(deploy); err != nil {
			return nil, err
		}
		sg.DependOn(pre...)
		if err := stage.Add(sg); err != nil {
			return nil, err
		}
		stackGraphs[s.ID] = sg
		ordered = append(ordered, sg)

		b.stackProps[deployment.StackArtifactID] = workflow.StackProperties{
			Environment:  st.Environment,
			Capabilities: st.Capabilities,
			Settings:     st.JobSettings,
		}
	}

	for _, s := range st.Stacks {
		for _, dep := range s.DependsOn {
			target, ok := stackGraphs[dep]
			if !ok {
				return nil, fmt.Errorf("stack %s-%s depends on unknown stack %q", st.ID, s.ID, dep)
			}
			stackGraphs[s.ID].DependOn(target)
		}
	}

	post, err := b.steps(stage, st.Post, st.ID)
	if err != nil {
		return nil, err
	}
	for _, leaf := range post {
		leaf.DependOn(ordered...)
	}
	return stage, nil
}

// deployment resolves a stack against the defaults of its stage. The
// template asset is published like any other asset of the stack.
func (b *builder) deployment(st StageDef, s StackDef) *graph.StackDeployment {
	d := &graph.StackDeployment{
		StackArtifactID:  StackArtifactID(st.ID, s.ID),
		StackName:        s.StackName,
		Account:          firstNonEmpty(s.Account, st.Account),
		Region:           firstNonEmpty(s.Region, st.Region),
		TemplateURL:      s.TemplateURL,
		ExecutionRoleArn: s.ExecutionRoleArn,
		AssumeRoleArn:    s.AssumeRoleArn,
	}
	seen := make(map[string]bool)
	for _, a := range s.Assets {
		d.Assets = append(d.Assets, stackAsset(a))
		seen[a.ID] = true
	}
	if s.TemplateAsset != nil {
		asset := stackAsset(*s.TemplateAsset)
		d.TemplateAsset = &asset
		if !seen[asset.AssetID] {
			d.Assets = append(d.Assets, asset)
		}
	}
	return d
}

// publisher returns the publish node of asset, creating it on first use.
// Assets shared between stacks are published once.
func (b *builder) publisher(asset graph.StackAsset) (*graph.Node, error) {
	if leaf, ok := b.publishers[asset.AssetID]; ok {
		return leaf, nil
	}

	var id string
	if asset.Type == graph.AssetTypeDockerImage {
		b.nDocker++
		id = fmt.Sprintf("%s%d", workflow.DefaultContainerAssetMarker, b.nDocker)
	} else {
		b.nFile++
		id = fmt.Sprintf("FileAsset%d", b.nFile)
	}

	leaf := graph.NewLeaf(id, graph.PublishAssetsData{Assets: []graph.StackAsset{asset}})
	leaf.DependOn(b.synth)
	if err := b.assets.Add(leaf); err != nil {
		return nil, err
	}
	b.publishers[asset.AssetID] = leaf
	return leaf, nil
}

// steps adds one leaf per step to parent. stageID scopes bare stack ids in
// stack output references.
func (b *builder) steps(parent *graph.Node, defs []StepDef, stageID string) ([]*graph.Node, error) {
	var leaves []*graph.Node
	for _, def := range defs {
		leaf, err := b.step(def, stageID)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", def.ID, err)
		}
		if err := parent.Add(leaf); err != nil {
			return nil, err
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}

func (b *builder) step(def StepDef, stageID string) (*graph.Node, error) {
	if def.IsActionStep() {
		return graph.NewLeaf(def.ID, graph.ActionStepData{Step: &graph.ActionStep{
			ID:                def.ID,
			JobSteps:          def.Steps,
			Env:               def.Env,
			Permissions:       def.Permissions,
			UseCredentialRole: def.UseCredentialRole,
		}}), nil
	}

	step := &graph.ShellStep{
		ID:              def.ID,
		Commands:        def.Commands,
		InstallCommands: def.InstallCommands,
		Env:             def.Env,
	}
	leaf := graph.NewLeaf(def.ID, graph.StepData{Step: step})

	for _, in := range def.Inputs {
		producer, ok := b.producers[in.ID]
		if !ok {
			return nil, fmt.Errorf("no step produces input %q", in.ID)
		}
		leaf.DependOn(producer)
		step.Inputs = append(step.Inputs, graph.FileSet{ID: in.ID, Directory: in.Directory})
	}
	for _, out := range def.Outputs {
		if _, taken := b.producers[out.ID]; taken {
			return nil, fmt.Errorf("output %q is already produced by another step", out.ID)
		}
		b.producers[out.ID] = leaf
		step.Outputs = append(step.Outputs, graph.FileSet{ID: out.ID, Directory: out.Directory})
	}

	if len(def.EnvFromStackOutputs) > 0 {
		step.EnvFromStackOutputs = make(map[string]graph.StackOutputReference, len(def.EnvFromStackOutputs))
		for name, ref := range def.EnvFromStackOutputs {
			artifactID := ref.Stack
			if !strings.Contains(artifactID, "-") {
				if stageID == "" {
					return nil, fmt.Errorf("stack output %s must name its stack as <stage>-<stack>", name)
				}
				artifactID = StackArtifactID(stageID, ref.Stack)
			}
			step.EnvFromStackOutputs[name] = graph.StackOutputReference{StackArtifactID: artifactID, OutputName: ref.Output}
		}
	}
	return leaf, nil
}

// StackArtifactID names the stack artifact of stack in stage. It doubles as
// the default CloudFormation stack name.
func StackArtifactID(stage, stack string) string {
	return stage + "-" + stack
}

func stackAsset(a AssetDef) graph.StackAsset {
	assetType := graph.AssetTypeFile
	if a.Type == string(graph.AssetTypeDockerImage) {
		assetType = graph.AssetTypeDockerImage
	}
	return graph.StackAsset{
		AssetID:           a.ID,
		AssetManifestPath: a.Manifest,
		AssetSelector:     a.Selector,
		Type:              assetType,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (b *builder) options(baseDir string) (workflow.Options, error) {
	def := b.def

	assemblyDir := def.AssemblyDir
	if assemblyDir == "" {
		assemblyDir = workflow.AssemblyArtifact
	}
	if !filepath.IsAbs(assemblyDir) {
		assemblyDir = filepath.Join(baseDir, assemblyDir)
	}

	creds, err := credentialsProvider(def.Credentials)
	if err != nil {
		return workflow.Options{}, err
	}
	dockerCreds, err := dockerCredentials(def.DockerCredentials)
	if err != nil {
		return workflow.Options{}, err
	}

	var dockerSettings *workflow.DockerAssetJobSettings
	if def.DockerAssetJobSettings != nil {
		dockerSettings = &workflow.DockerAssetJobSettings{
			SetupSteps:  def.DockerAssetJobSettings.SetupSteps,
			Permissions: def.DockerAssetJobSettings.Permissions,
		}
	}

	return workflow.Options{
		WorkflowName:            def.Name,
		WorkflowPath:            def.Path,
		Triggers:                def.On,
		Concurrency:             def.Concurrency,
		AssemblyDir:             assemblyDir,
		PreSynthed:              def.PreSynthed,
		CDKAssetsVersion:        def.CDKAssetsVersion,
		AWSCredentials:          creds,
		DockerCredentials:       dockerCreds,
		DockerAssetJobSettings:  dockerSettings,
		PublishAssetsAuthRegion: def.PublishAssetsAuthRegion,
		ContainerAssetMarker:    def.ContainerAssetMarker,
		Runner:                  def.Runner,
		JobSettings:             def.JobSettings,
		BuildContainer:          def.BuildContainer,
		PreBuildSteps:           def.PreBuildSteps,
		PostBuildSteps:          def.PostBuildSteps,
		StackProperties:         b.stackProps,
		ActionVersions:          def.ActionVersions,
	}, nil
}

func credentialsProvider(def *CredentialsDef) (workflow.AWSCredentialsProvider, error) {
	if def == nil {
		return nil, nil
	}
	switch def.Type {
	case "secrets":
		return workflow.NewGitHubSecretsProvider(def.AccessKeyID, def.SecretAccessKey, def.SessionToken), nil
	case "oidc":
		if def.GitHubActionRoleArn == "" {
			return nil, workflow.NewValidationError("credentials.gitHubActionRoleArn", "",
				"OIDC credentials need the role the workflow assumes", "set gitHubActionRoleArn")
		}
		return &workflow.OpenIDConnectProvider{
			GitHubActionRoleArn: def.GitHubActionRoleArn,
			RoleSessionName:     def.RoleSessionName,
			RoleDurationSeconds: def.RoleDurationSeconds,
			MaskAWSAccountID:    def.MaskAWSAccountID,
		}, nil
	case "none":
		return workflow.NoCredentialsProvider{}, nil
	default:
		return nil, workflow.NewValidationError("credentials.type", def.Type,
			"unknown credentials type", "use secrets, oidc or none")
	}
}

func dockerCredentials(defs []DockerCredentialDef) ([]workflow.DockerCredential, error) {
	var out []workflow.DockerCredential
	for _, d := range defs {
		switch d.Type {
		case "docker":
			out = append(out, workflow.DockerHubCredential(d.UsernameKey, d.PasswordKey))
		case "ecr":
			out = append(out, workflow.ECRCredential(d.Registry))
		case "ghcr":
			out = append(out, workflow.GHCRCredential())
		case "custom":
			if d.UsernameKey == "" || d.PasswordKey == "" {
				return nil, workflow.NewValidationError("dockerCredentials", d.Registry,
					"custom registries need usernameKey and passwordKey", "")
			}
			out = append(out, workflow.CustomRegistryCredential(d.Registry, d.UsernameKey, d.PasswordKey))
		default:
			return nil, workflow.NewValidationError("dockerCredentials.type", d.Type,
				"unknown docker credential type", "use docker, ecr, ghcr or custom")
		}
	}
	return out, nil
}
