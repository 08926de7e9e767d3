package main

import (
	"fmt"
	"os"

	"github.com/github/gh-pipelines/pkg/cli"
	"github.com/github/gh-pipelines/pkg/console"
	"github.com/spf13/cobra"
)

// Set by the release build with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "gh pipelines",
	Short: "Compile CDK deployment pipelines into GitHub Actions workflows",
	Long: `gh pipelines turns a pipeline definition into a GitHub Actions workflow.

A definition lists how the cloud assembly is synthesized and the waves, stages
and stacks it deploys to. The compiler resolves it into a dependency graph
with one job per asset publication and stack deployment, and writes the
workflow together with the scripts its jobs run.

Common tasks:
  gh pipelines init      # Create a starter pipeline.yaml
  gh pipelines compile   # Generate .github/workflows/deploy.yml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
}

var compileCmd = cli.NewCompileCommand()
var initCmd = cli.NewInitCommand()
var versionCmd = cli.NewVersionCommand()

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print detailed progress")
	rootCmd.AddCommand(compileCmd, initCmd, versionCmd)
}

func main() {
	cli.SetVersionInfo(version)
	rootCmd.Version = cli.GetVersion()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
