package cli

import (
	"os"

	"github.com/github/gh-pipelines/pkg/logger"
)

var ciLog = logger.New("cli:ci")

// ciEnvVars are checked in order; the first one set names the provider.
var ciEnvVars = []struct {
	name     string
	provider string
}{
	{"GITHUB_ACTIONS", "GitHub Actions"},
	{"CONTINUOUS_INTEGRATION", "generic CI"},
	{"CI", "generic CI"},
}

// CIProvider returns the CI system the process runs under, or "" outside CI.
func CIProvider() string {
	for _, v := range ciEnvVars {
		if os.Getenv(v.name) != "" {
			ciLog.Printf("Running under %s (%s is set)", v.provider, v.name)
			return v.provider
		}
	}
	return ""
}

// IsRunningInCI reports whether prompts must be skipped because nobody is
// there to answer them.
func IsRunningInCI() bool {
	return CIProvider() != ""
}
