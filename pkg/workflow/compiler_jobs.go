package workflow

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/github/gh-pipelines/pkg/graph"
	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/github/gh-pipelines/pkg/types"
)

var compilerJobsLog = logger.New("workflow:compiler_jobs")

func (c *Compiler) baseDefinition(node *graph.Node, name string) JobDefinition {
	return JobDefinition{
		Name:   name,
		If:     c.jobIf(),
		Needs:  needsFor(node),
		RunsOn: *c.opts.Runner,
	}
}

func (c *Compiler) credentialSteps(region, assumeRoleArn string) []types.JobStep {
	return c.opts.AWSCredentials.CredentialSteps(CredentialRequest{
		Region:        region,
		AssumeRoleArn: assumeRoleArn,
		Uses:          actionRef(ConfigureAWSAction, c.opts.ActionVersions),
	})
}

func (c *Compiler) readPermissions() *types.Permissions {
	return types.NewPermissions(map[types.PermissionScope]types.PermissionLevel{
		types.PermissionContents: types.PermissionRead,
		types.PermissionIDToken:  c.opts.AWSCredentials.JobPermission(),
	})
}

func (c *Compiler) installAssetsStep() types.JobStep {
	pkg := "cdk-assets"
	if c.opts.CDKAssetsVersion != "" {
		pkg += "@" + npmVersion(c.opts.CDKAssetsVersion)
	}
	return types.JobStep{Name: "Install", Run: "npm install --no-save " + pkg}
}

// assemblyPath maps a manifest path, absolute or relative to the assembly
// directory, to its location inside the assembly artifact as seen from the
// workspace root of a job.
func (c *Compiler) assemblyPath(manifestPath string) string {
	rel := manifestPath
	if r, err := filepath.Rel(c.opts.AssemblyDir, manifestPath); err == nil && !strings.HasPrefix(r, "..") {
		rel = r
	}
	return path.Join(AssemblyArtifact, filepath.ToSlash(rel))
}

func (c *Compiler) isContainerPublish(id string, assets []graph.StackAsset) bool {
	for _, asset := range assets {
		if asset.Type == graph.AssetTypeDockerImage {
			return true
		}
	}
	return strings.Contains(id, c.opts.ContainerAssetMarker)
}

func (c *Compiler) publishJob(comp *compilation, node *graph.Node, data graph.PublishAssetsData) (Job, error) {
	id := node.UniqueID()
	if len(data.Assets) == 0 {
		return Job{}, newCompileError(KindMissingData, id, "asset publish step must have at least one asset")
	}

	// The job exposes a single hash, so only the first asset is resolvable
	// from templates.
	if err := comp.assetHashes.register(data.Assets[0].AssetID, id); err != nil {
		return Job{}, err
	}

	lines := make([]string, 0, len(data.Assets)+1)
	for _, asset := range data.Assets {
		lines = append(lines, shellJoinArgs([]string{
			"npx", "cdk-assets", "--path", c.assemblyPath(asset.AssetManifestPath), "--verbose", "publish", asset.AssetSelector,
		}))
	}
	lines = append(lines, fmt.Sprintf("echo '%s=%s' >> $GITHUB_OUTPUT", AssetHashOutput, data.Assets[0].AssetID))

	scriptName := fmt.Sprintf("publish-%s-step.sh", id)
	comp.scripts = append(comp.scripts, ScriptFile{
		Path:    filepath.Join(c.opts.AssemblyDir, scriptName),
		Content: shellScript(lines),
	})

	container := c.isContainerPublish(id, data.Assets)
	compilerJobsLog.Printf("Publish job %s: %d assets, container=%t", id, len(data.Assets), container)

	steps := c.assemblySteps()
	permissions := c.readPermissions()
	if container && c.opts.DockerAssetJobSettings != nil {
		steps = append(steps, c.opts.DockerAssetJobSettings.SetupSteps...)
		permissions = permissions.Merge(c.opts.DockerAssetJobSettings.Permissions)
	}
	steps = append(steps, c.installAssetsStep())
	steps = append(steps, c.credentialSteps(c.opts.PublishAssetsAuthRegion, "")...)
	if container {
		steps = append(steps, c.dockerLoginSteps()...)
	}
	steps = append(steps, types.JobStep{
		ID:   PublishStepID,
		Name: "Publish " + id,
		Run:  shellJoinArgs([]string{"/bin/bash", "./" + path.Join(AssemblyArtifact, scriptName)}),
	})

	def := c.baseDefinition(node, "Publish Assets "+id)
	def.Permissions = permissions
	def.Outputs = map[string]string{
		AssetHashOutput: Interpolate(NewStepOutputRef(PublishStepID, AssetHashOutput)),
	}
	def.Steps = steps
	return Job{ID: id, Definition: def}, nil
}

func (c *Compiler) deployJob(comp *compilation, node *graph.Node, data graph.ExecuteData) (Job, error) {
	id := node.UniqueID()
	stack := data.Stack
	if stack == nil {
		return Job{}, newCompileError(KindMissingData, id, "execute node carries no stack deployment")
	}
	if stack.Region == "" || stack.Account == "" {
		return Job{}, newCompileError(KindMissingData, id, "%q stack requires account and region", stack.StackArtifactID)
	}
	if stack.TemplateURL == "" {
		return Job{}, newCompileError(KindMissingData, id, "unable to determine template URL for stack %s", stack.StackArtifactID)
	}

	values := PlaceholderValuesFor(stack.Account, stack.Region)
	template := ResolvePlaceholders(stack.TemplateURL, values)
	if stack.TemplateAsset != nil {
		rewritten, err := comp.assetHashes.rewriteTemplate(id, template, stack.TemplateAsset.AssetID)
		if err != nil {
			return Job{}, err
		}
		template = rewritten
	} else if hash := templateHash(template); hash != "" {
		// A hash-named template must come from a publish job even when the
		// stack does not declare its template asset.
		if _, ok := comp.assetHashes.lookup(hash); ok || assetHashPattern.MatchString(hash) {
			rewritten, err := comp.assetHashes.rewriteTemplate(id, template, hash)
			if err != nil {
				return Job{}, err
			}
			template = rewritten
		}
	}

	props := c.opts.StackProperties[stack.StackArtifactID]
	stackName := stack.StackName
	if stackName == "" {
		stackName = stack.StackArtifactID
	}
	params := map[string]any{
		"name":                       stackName,
		"template":                   template,
		"no-fail-on-empty-changeset": "1",
	}
	if len(props.Capabilities) > 0 {
		params["capabilities"] = strings.Join(props.Capabilities, ",")
	}
	if stack.ExecutionRoleArn != "" {
		params["role-arn"] = ResolvePlaceholders(stack.ExecutionRoleArn, values)
	}

	assumeRole := ""
	if stack.AssumeRoleArn != "" {
		assumeRole = ResolvePlaceholders(stack.AssumeRoleArn, values)
	}
	steps := c.credentialSteps(stack.Region, assumeRole)
	steps = append(steps, types.JobStep{
		ID:   DeployStepID,
		Uses: actionRef(CloudFormationAction, c.opts.ActionVersions),
		With: params,
	})

	def := c.baseDefinition(node, "Deploy "+stack.StackArtifactID)
	def.Permissions = c.readPermissions()
	def.Environment = props.Environment
	if props.Settings != nil && props.Settings.If != "" {
		def.If = props.Settings.If
	}
	def.Steps = steps
	compilerJobsLog.Printf("Deploy job %s: stack=%s, region=%s", id, stackName, stack.Region)
	return Job{ID: id, Definition: def}, nil
}

// assetHashPattern matches the content hashes cdk-assets names files after.
var assetHashPattern = regexp.MustCompile(`^[0-9a-f]{32,}$`)

// templateHash extracts the asset hash from a template location whose file
// name is "<hash>.json".
func templateHash(template string) string {
	base := path.Base(template)
	return strings.TrimSuffix(base, path.Ext(base))
}

func (c *Compiler) buildJob(comp *compilation, node *graph.Node, data graph.StepData) (Job, error) {
	id := node.UniqueID()
	step := data.Step
	if step == nil {
		return Job{}, newCompileError(KindMissingData, id, "build node carries no step")
	}
	if comp.buildNode != "" {
		return Job{}, newCompileError(KindGraphShape, id, "only one build step is allowed; %s is already the build step", comp.buildNode)
	}
	if len(step.Inputs) > 0 {
		return Job{}, newCompileError(KindMissingData, id, "build step cannot have inputs")
	}
	if len(step.Outputs) != 1 {
		return Job{}, newCompileError(KindMissingData, id, "build step must have a single output, got %d", len(step.Outputs))
	}
	output := step.Outputs[0]
	if !output.Primary {
		return Job{}, newCompileError(KindMissingData, id, "build step output must be the primary output")
	}
	comp.buildNode = id

	steps := []types.JobStep{c.checkoutStep()}
	steps = append(steps, c.opts.PreBuildSteps...)
	if len(step.InstallCommands) > 0 {
		steps = append(steps, types.JobStep{Name: "Install", Run: strings.Join(step.InstallCommands, "\n")})
	}
	steps = append(steps, types.JobStep{Name: "Build", Run: strings.Join(step.Commands, "\n")})
	steps = append(steps, c.opts.PostBuildSteps...)
	if !c.opts.PreSynthed {
		steps = append(steps, c.uploadArtifactStep(ArtifactConfig{
			Name:     AssemblyArtifact,
			Path:     output.Directory,
			StepName: "Upload cdk.out",
		}))
	}

	def := c.baseDefinition(node, "Synthesize")
	def.Permissions = c.readPermissions()
	def.Container = c.opts.BuildContainer
	def.Env = step.Env
	def.Steps = steps
	compilerJobsLog.Printf("Build job %s: %d steps", id, len(steps))
	return Job{ID: id, Definition: def}, nil
}

func (c *Compiler) shellJob(comp *compilation, node *graph.Node, data graph.StepData) (Job, error) {
	id := node.UniqueID()
	step := data.Step
	if step == nil {
		return Job{}, newCompileError(KindMissingData, id, "step node carries no step")
	}

	env := make(map[string]string, len(step.Env)+len(step.EnvFromStackOutputs))
	for k, v := range step.Env {
		env[k] = v
	}
	names := make([]string, 0, len(step.EnvFromStackOutputs))
	for name := range step.EnvFromStackOutputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ref := step.EnvFromStackOutputs[name]
		jobID, err := findStackOfOutput(node, ref)
		if err != nil {
			return Job{}, err
		}
		comp.outputs.add(jobID, JobStepOutput{StepID: DeployStepID, OutputName: ref.OutputName})
		env[name] = Interpolate(NewJobOutputRef(jobID, ref.OutputName))
	}

	var steps []types.JobStep
	for _, input := range step.Inputs {
		steps = append(steps, c.downloadArtifactStep(ArtifactConfig{Name: input.ID, Path: input.Directory}))
	}
	if len(step.InstallCommands) > 0 {
		steps = append(steps, types.JobStep{Name: "Install", Run: strings.Join(step.InstallCommands, "\n")})
	}
	steps = append(steps, types.JobStep{Name: "Run", Run: strings.Join(step.Commands, "\n")})
	for _, output := range step.Outputs {
		steps = append(steps, c.uploadArtifactStep(ArtifactConfig{Name: output.ID, Path: output.Directory}))
	}

	name := step.ID
	if name == "" {
		name = node.ID()
	}
	def := c.baseDefinition(node, name)
	def.Permissions = types.NewPermissions(map[types.PermissionScope]types.PermissionLevel{
		types.PermissionContents: types.PermissionRead,
	})
	def.Env = env
	def.Steps = steps
	return Job{ID: id, Definition: def}, nil
}

// findStackOfOutput returns the deploy job among the dependencies of node
// whose stack emits ref.
func findStackOfOutput(node *graph.Node, ref graph.StackOutputReference) (string, error) {
	for _, dep := range node.AllDeps() {
		for _, leaf := range dep.AllLeaves() {
			if exec, ok := leaf.Data().(graph.ExecuteData); ok && ref.IsProducedBy(exec.Stack) {
				return leaf.UniqueID(), nil
			}
		}
	}
	return "", newCompileError(KindCrossReference, node.UniqueID(),
		"the output %s is not referenced by any of the dependent stacks", ref.OutputName)
}

func (c *Compiler) actionJob(node *graph.Node, data graph.ActionStepData) (Job, error) {
	id := node.UniqueID()
	step := data.Step
	if step == nil || len(step.JobSteps) == 0 {
		return Job{}, newCompileError(KindMissingData, id, "action step must define at least one job step")
	}

	permissions := step.Permissions
	if permissions == nil {
		permissions = types.NewPermissions(map[types.PermissionScope]types.PermissionLevel{
			types.PermissionContents: types.PermissionWrite,
		})
	}
	if step.UseCredentialRole {
		permissions = permissions.Merge(types.NewPermissions(map[types.PermissionScope]types.PermissionLevel{
			types.PermissionIDToken: types.PermissionWrite,
		}))
	}

	name := step.ID
	if name == "" {
		name = node.ID()
	}
	def := c.baseDefinition(node, name)
	def.Permissions = permissions
	def.Env = step.Env
	def.Steps = step.JobSteps
	return Job{ID: id, Definition: def}, nil
}
