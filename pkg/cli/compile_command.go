package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/github/gh-pipelines/pkg/console"
	"github.com/github/gh-pipelines/pkg/envutil"
	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/github/gh-pipelines/pkg/parser"
	"github.com/github/gh-pipelines/pkg/pipeline"
	"github.com/github/gh-pipelines/pkg/workflow"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

var compileLog = logger.New("cli:compile")

// MaxConcurrencyEnvVar bounds how many definitions compile in parallel.
const MaxConcurrencyEnvVar = "GH_PIPELINES_MAX_CONCURRENCY"

const defaultMaxConcurrency = 4

// CompileConfig holds the options of the compile command.
type CompileConfig struct {
	Files []string
	// Output overrides the workflow path of a single definition.
	Output           string
	NoDiffProtection bool
	Validate         bool
	Watch            bool
	Verbose          bool
}

// NewCompileCommand creates the compile command
func NewCompileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [definition...]",
		Short: "Compile pipeline definitions into GitHub Actions workflows",
		Long: `Compile one or more pipeline definitions into GitHub Actions workflow files.

Each definition is validated against the pipeline schema, resolved into a
deployment graph and compiled into one job per graph leaf. The workflow is
written to the path named in the definition along with the asset publishing
scripts, and checked with actionlint unless --validate=false is given.

When running inside the workflow it generated, the compiled output must match
the committed file; this guards against definitions changing without the
workflow being regenerated. Use --no-diff-protection to turn the check off.

Examples:
  gh pipelines compile                          # Compile pipeline.yaml
  gh pipelines compile infra/a.yaml infra/b.yaml # Compile several definitions in parallel
  gh pipelines compile --watch                  # Recompile on every change`,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			output, _ := cmd.Flags().GetString("output")
			noDiff, _ := cmd.Flags().GetBool("no-diff-protection")
			validate, _ := cmd.Flags().GetBool("validate")
			watch, _ := cmd.Flags().GetBool("watch")

			files := args
			if len(files) == 0 {
				files = []string{pipeline.DefaultDefinitionFile}
			}
			config := CompileConfig{
				Files:            files,
				Output:           output,
				NoDiffProtection: noDiff,
				Validate:         validate,
				Watch:            watch,
				Verbose:          verbose,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return RunCompile(ctx, config)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write the workflow to this path instead of the one in the definition")
	cmd.Flags().Bool("no-diff-protection", false, "Do not fail when the committed workflow differs from the compiled one")
	cmd.Flags().Bool("validate", true, "Check the generated workflow with actionlint")
	cmd.Flags().BoolP("watch", "w", false, "Recompile definitions when they change")
	return cmd
}

// RunCompile compiles every definition in config, prints a summary and,
// in watch mode, keeps recompiling until ctx is cancelled.
func RunCompile(ctx context.Context, config CompileConfig) error {
	compileLog.Printf("Compiling %d definitions: watch=%v, validate=%v", len(config.Files), config.Watch, config.Validate)

	if config.Output != "" && len(config.Files) > 1 {
		return errors.New("--output can only be used with a single definition")
	}

	err := compileAndReport(config.Files, config)
	if !config.Watch {
		return err
	}
	return watchAndCompile(ctx, config)
}

type compileOutcome struct {
	file  string
	stats *WorkflowStats
	err   error
}

// compileAndReport compiles files in parallel, prints their diagnostics and
// the summary table, and returns an error when any file failed.
func compileAndReport(files []string, config CompileConfig) error {
	outcomes := compileFiles(files, config)

	var statsList []*WorkflowStats
	var failed int
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			printCompileError(o.file, o.err)
			continue
		}
		statsList = append(statsList, o.stats)
		fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(
			fmt.Sprintf("Compiled %s to %s", console.ToRelativePath(o.file), console.ToRelativePath(o.stats.Workflow))))
	}

	if config.Verbose || len(statsList) > 1 {
		fmt.Fprint(os.Stderr, renderStatsTable(statsList))
	}

	if failed > 0 {
		return fmt.Errorf("compilation failed for %d of %d definitions", failed, len(files))
	}
	return nil
}

func compileFiles(files []string, config CompileConfig) []compileOutcome {
	maxConcurrency := envutil.GetIntFromEnv(MaxConcurrencyEnvVar, defaultMaxConcurrency, 1, 64, compileLog)

	outcomes := make([]compileOutcome, len(files))
	p := pool.New().WithMaxGoroutines(maxConcurrency)
	for i, file := range files {
		p.Go(func() {
			stats, err := compileFile(file, config)
			outcomes[i] = compileOutcome{file: file, stats: stats, err: err}
		})
	}
	p.Wait()
	return outcomes
}

// compileFile loads, compiles and writes a single definition.
func compileFile(file string, config CompileConfig) (*WorkflowStats, error) {
	compileLog.Printf("Compiling definition %s", file)

	p, err := pipeline.Load(file)
	if err != nil {
		return nil, err
	}
	compiler, err := workflow.NewCompiler(p.Options)
	if err != nil {
		return nil, err
	}
	result, err := compiler.Compile(p.Root)
	if err != nil {
		return nil, err
	}

	outputPath := p.OutputPath
	if config.Output != "" {
		outputPath = config.Output
	}
	wf := workflow.NewWorkflowFile(outputPath, result.Document)
	wf.Patch(p.Patches...)

	if config.Verbose {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(
			fmt.Sprintf("%s: %d jobs, %d scripts, %d patches", file, len(result.Jobs), len(result.Scripts), len(p.Patches))))
	}

	err = wf.Write(workflow.WriteOptions{
		DiffProtection: p.DiffProtection && !config.NoDiffProtection,
		WorkflowName:   compiler.Options().WorkflowName,
		Validate:       config.Validate,
		Scripts:        result.Scripts,
	})
	if err != nil {
		return nil, err
	}
	return collectWorkflowStats(file, outputPath, result)
}

func printCompileError(file string, err error) {
	var schemaErr *parser.SchemaError
	var lintErr *workflow.LintError
	var driftErr *workflow.DriftError

	switch {
	case errors.As(err, &schemaErr):
		fmt.Fprintln(os.Stderr, schemaErr.Error())
	case errors.As(err, &lintErr):
		for _, issue := range lintErr.Issues {
			fmt.Fprint(os.Stderr, console.FormatError(console.CompilerError{
				Position: console.ErrorPosition{File: lintErr.Path, Line: issue.Line, Column: issue.Column},
				Type:     "error",
				Message:  fmt.Sprintf("%s [%s] (%s)", issue.Message, issue.Kind, issue.DocsURL()),
			}))
		}
	case errors.As(err, &driftErr):
		fmt.Fprintln(os.Stderr, console.FormatErrorWithSuggestions(
			fmt.Sprintf("%s: %s", console.ToRelativePath(driftErr.Path), driftErr.Reason),
			[]string{
				"Run 'gh pipelines compile " + console.ToRelativePath(file) + "' locally and commit the result",
				"Set diffProtection: false in the definition to turn the check off",
			}))
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(os.Stderr, console.FormatErrorWithSuggestions(
			fmt.Sprintf("pipeline definition '%s' not found", console.ToRelativePath(file)),
			[]string{
				"Run 'gh pipelines init' to create one",
				"Pass the definition path explicitly",
			}))
	default:
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(fmt.Sprintf("%s: %v", console.ToRelativePath(file), err)))
	}
}
