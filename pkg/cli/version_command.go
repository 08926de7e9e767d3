package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersionInfo records the version the binary was built with.
func SetVersionInfo(v string) {
	if v != "" {
		version = v
	}
}

// GetVersion returns the version the binary was built with.
func GetVersion() string {
	return version
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the gh-pipelines version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gh-pipelines version %s\n", version)
		},
	}
}
