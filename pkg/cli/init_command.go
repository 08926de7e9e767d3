package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/huh"
	"github.com/github/gh-pipelines/pkg/console"
	"github.com/github/gh-pipelines/pkg/gitutil"
	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/github/gh-pipelines/pkg/parser"
	"github.com/github/gh-pipelines/pkg/pipeline"
	"github.com/github/gh-pipelines/pkg/types"
	"github.com/github/gh-pipelines/pkg/workflow"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var initLog = logger.New("cli:init")

var accountPattern = regexp.MustCompile(`^[0-9]{12}$`)

const starterTemplateURL = "https://cdk-hnb659fds-assets-${AWS::AccountId}-${AWS::Region}.s3.${AWS::Region}.amazonaws.com/App.template.json"

// InitConfig holds the options of the init command.
type InitConfig struct {
	Path           string
	NonInteractive bool
	Force          bool
	Verbose        bool
}

// InitAnswers are the values a starter definition is generated from.
type InitAnswers struct {
	Name        string
	StageID     string
	Account     string
	Region      string
	Credentials string // secrets or oidc
	RoleArn     string
}

func defaultInitAnswers() InitAnswers {
	return InitAnswers{
		Name:        workflow.DefaultWorkflowName,
		StageID:     "Prod",
		Account:     "111111111111",
		Region:      "us-east-1",
		Credentials: "secrets",
	}
}

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter pipeline definition",
		Long: `Create a starter pipeline definition with one stage and one stack.

In a terminal the command asks for the workflow name, the target account and
region and how jobs authenticate to AWS. In CI, without a terminal or with
--non-interactive, defaults are written and can be edited afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			path, _ := cmd.Flags().GetString("file")
			nonInteractive, _ := cmd.Flags().GetBool("non-interactive")
			force, _ := cmd.Flags().GetBool("force")
			return RunInit(InitConfig{Path: path, NonInteractive: nonInteractive, Force: force, Verbose: verbose})
		},
	}

	cmd.Flags().StringP("file", "f", pipeline.DefaultDefinitionFile, "Path of the definition to create")
	cmd.Flags().Bool("non-interactive", false, "Write the defaults without prompting")
	cmd.Flags().Bool("force", false, "Overwrite an existing definition")
	return cmd
}

// RunInit writes a starter definition to config.Path.
func RunInit(config InitConfig) error {
	initLog.Printf("Initializing pipeline definition: path=%s, nonInteractive=%v", config.Path, config.NonInteractive)

	if _, err := os.Stat(config.Path); err == nil && !config.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", config.Path)
	}

	answers := defaultInitAnswers()
	if !config.NonInteractive && !IsRunningInCI() && console.IsInteractive() {
		if err := promptInitAnswers(&answers); err != nil {
			return err
		}
	} else if config.Verbose {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage("Non-interactive mode, writing defaults"))
	}

	content, err := renderStarterDefinition(answers, workflowPathFor(config.Path))
	if err != nil {
		return err
	}
	// The starter must pass the same checks as any hand-written definition.
	if err := parser.ValidatePipelineYAML(content, config.Path); err != nil {
		return fmt.Errorf("generated definition is invalid: %w", err)
	}

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return workflow.NewOperationError("create directory", dir, err)
		}
	}
	if err := os.WriteFile(config.Path, content, 0644); err != nil {
		return workflow.NewOperationError("write definition", config.Path, err)
	}

	fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Created %s", console.ToRelativePath(config.Path))))
	fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Run 'gh pipelines compile' to generate the workflow"))
	return nil
}

func promptInitAnswers(answers *InitAnswers) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Workflow name").
				Value(&answers.Name).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("the workflow needs a name")
					}
					return nil
				}),
			huh.NewInput().
				Title("AWS account id").
				Description("The 12 digit account the first stage deploys to").
				Value(&answers.Account).
				Validate(func(s string) error {
					if !accountPattern.MatchString(s) {
						return errors.New("an account id is 12 digits")
					}
					return nil
				}),
			huh.NewInput().
				Title("AWS region").
				Value(&answers.Region),
			huh.NewSelect[string]().
				Title("How do jobs authenticate to AWS?").
				Options(
					huh.NewOption("Access keys stored as repository secrets", "secrets"),
					huh.NewOption("OpenID Connect role", "oidc"),
				).
				Value(&answers.Credentials),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Role assumed through OpenID Connect").
				Description("For example arn:aws:iam::111111111111:role/GitHubActionRole").
				Value(&answers.RoleArn),
		).WithHideFunc(func() bool { return answers.Credentials != "oidc" }),
	).WithAccessible(console.IsAccessibleMode())

	if err := form.Run(); err != nil {
		return fmt.Errorf("failed to read answers: %w", err)
	}
	return nil
}

// workflowPathFor returns the workflow path of a definition created at
// path. Definitions outside the repository root point back at its
// .github/workflows directory.
func workflowPathFor(path string) string {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return ""
	}
	root, err := gitutil.FindGitRoot(dir)
	if err != nil || root == dir {
		return ""
	}
	rel, err := filepath.Rel(dir, filepath.Join(root, filepath.FromSlash(workflow.DefaultWorkflowPath)))
	if err != nil {
		return ""
	}
	initLog.Printf("Definition is below the repository root, workflow path %s", rel)
	return filepath.ToSlash(rel)
}

func renderStarterDefinition(answers InitAnswers, workflowPath string) ([]byte, error) {
	def := pipeline.Definition{
		Name: answers.Name,
		Path: workflowPath,
		On:   types.DefaultTriggers(),
		Synth: pipeline.SynthDef{
			InstallCommands: []string{"npm ci"},
			Commands:        []string{"npx cdk synth"},
		},
		Stages: []pipeline.StageDef{{
			ID:      answers.StageID,
			Account: answers.Account,
			Region:  answers.Region,
			Stacks: []pipeline.StackDef{{
				ID:          "App",
				TemplateURL: starterTemplateURL,
			}},
		}},
	}

	switch answers.Credentials {
	case "oidc":
		def.Credentials = &pipeline.CredentialsDef{Type: "oidc", GitHubActionRoleArn: answers.RoleArn}
	default:
		def.Credentials = &pipeline.CredentialsDef{Type: "secrets"}
	}

	content, err := yaml.MarshalWithOptions(def, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("failed to render definition: %w", err)
	}
	return content, nil
}
