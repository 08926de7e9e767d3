// Package workflow compiles a pipeline graph into a GitHub Actions workflow.
//
// Every leaf of the graph becomes one job. Leaves are visited tranche by
// tranche in dependency order, so a publish job is always compiled before
// the deploy jobs that read its asset hash.
package workflow

import (
	"github.com/github/gh-pipelines/pkg/graph"
	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/goccy/go-yaml"
)

var compilerLog = logger.New("workflow:compiler")

// Compiler turns pipeline graphs into workflow documents. A Compiler holds
// only options; state of a single pass lives in a compilation.
type Compiler struct {
	opts Options
}

// ScriptFile is a side file written next to the cloud assembly.
type ScriptFile struct {
	Path    string
	Content string
}

// Result is the output of one compilation pass.
type Result struct {
	Document *Document
	Jobs     []Job
	Scripts  []ScriptFile
}

// NewCompiler applies defaults to opts and validates them.
func NewCompiler(opts Options) (*Compiler, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	compilerLog.Printf("Created compiler: workflow=%s, assemblyDir=%s, preSynthed=%t",
		opts.WorkflowName, opts.AssemblyDir, opts.PreSynthed)
	return &Compiler{opts: opts}, nil
}

// Options returns the effective options.
func (c *Compiler) Options() Options {
	return c.opts
}

type compilation struct {
	assetHashes *assetHashRegistry
	outputs     *pendingOutputs
	scripts     []ScriptFile
	jobs        []Job
	jobIndex    map[string]bool
	buildNode   string
}

// Compile compiles root, whose children must all be graphs, into a
// document. Nothing is written to disk.
func (c *Compiler) Compile(root *graph.Node) (*Result, error) {
	if root == nil || !root.IsGraph() {
		return nil, newCompileError(KindGraphShape, "", "the pipeline root must be a graph")
	}
	comp := &compilation{
		assetHashes: newAssetHashRegistry(),
		outputs:     newPendingOutputs(),
		jobIndex:    make(map[string]bool),
	}

	children, err := root.SortedChildren()
	if err != nil {
		return nil, newCompileError(KindGraphShape, root.UniqueID(), "%v", err)
	}
	for _, tranche := range children {
		for _, child := range tranche {
			if !child.IsGraph() {
				return nil, newCompileError(KindGraphShape, child.UniqueID(), "top-level children must be graphs, got a %s leaf", child.Data().Kind())
			}
			if err := c.compileGraph(comp, child); err != nil {
				return nil, err
			}
		}
	}

	if err := verifyNeeds(comp.jobs); err != nil {
		return nil, err
	}

	jobs := make(yaml.MapSlice, 0, len(comp.jobs))
	for _, job := range comp.jobs {
		jobs = append(jobs, yaml.MapItem{Key: job.ID, Value: normalizeKeys(job.Definition.Render(), "-")})
	}
	jobs, err = mergeJobOutputs(jobs, comp.outputs)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Name: c.opts.WorkflowName,
		On:   normalizeTriggerKeys(c.opts.Triggers.Render()),
		Jobs: jobs,
	}
	if c.opts.Concurrency != nil {
		doc.Concurrency = normalizeKeys(c.opts.Concurrency.Render(), "-")
	}

	compilerLog.Printf("Compiled %d jobs and %d scripts", len(comp.jobs), len(comp.scripts))
	return &Result{Document: doc, Jobs: comp.jobs, Scripts: comp.scripts}, nil
}

func (c *Compiler) compileGraph(comp *compilation, g *graph.Node) error {
	tranches, err := g.SortedLeaves()
	if err != nil {
		return newCompileError(KindGraphShape, g.UniqueID(), "%v", err)
	}
	for _, tranche := range tranches {
		for _, leaf := range tranche {
			job, err := c.jobForNode(comp, leaf)
			if err != nil {
				return err
			}
			if err := comp.addJob(job); err != nil {
				return err
			}
		}
	}
	return nil
}

func (comp *compilation) addJob(job Job) error {
	if comp.jobIndex[job.ID] {
		return newCompileError(KindDuplicateJob, job.ID, "duplicate job id; two graph nodes compile to the same job")
	}
	comp.jobIndex[job.ID] = true
	comp.jobs = append(comp.jobs, job)
	return nil
}

// jobForNode dispatches on the kind of node.
func (c *Compiler) jobForNode(comp *compilation, node *graph.Node) (Job, error) {
	id := node.UniqueID()
	switch data := node.Data().(type) {
	case graph.GroupData, graph.StackGroupData:
		return Job{}, newCompileError(KindGraphShape, id, "%s nodes group other nodes and cannot become jobs", data.Kind())
	case graph.SelfUpdateData:
		return Job{}, newCompileError(KindGraphShape, id, "self-mutation is not supported by GitHub workflows")
	case graph.PrepareData:
		return Job{}, newCompileError(KindGraphShape, id, "change set preparation is not supported; changes are prepared and executed in one deploy job")
	case graph.PublishAssetsData:
		return c.publishJob(comp, node, data)
	case graph.ExecuteData:
		return c.deployJob(comp, node, data)
	case graph.StepData:
		if data.IsBuildStep {
			return c.buildJob(comp, node, data)
		}
		return c.shellJob(comp, node, data)
	case graph.ActionStepData:
		return c.actionJob(node, data)
	default:
		return Job{}, newCompileError(KindGraphShape, id, "unknown node data %T", data)
	}
}

func (c *Compiler) jobIf() string {
	if c.opts.JobSettings == nil {
		return ""
	}
	return c.opts.JobSettings.If
}
