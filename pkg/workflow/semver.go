package workflow

import (
	"strings"

	"github.com/github/gh-pipelines/pkg/logger"
	"golang.org/x/mod/semver"
)

var semverLog = logger.New("workflow:semver")

// isValidPackageVersion accepts npm dist-tags we pin to ("latest") and
// semantic versions with or without a leading "v".
func isValidPackageVersion(version string) bool {
	if version == "latest" {
		return true
	}
	valid := semver.IsValid(canonicalVersion(version))
	semverLog.Printf("Version %q valid=%t", version, valid)
	return valid
}

// npmVersion strips the "v" prefix npm does not expect.
func npmVersion(version string) string {
	return strings.TrimPrefix(version, "v")
}

func canonicalVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
