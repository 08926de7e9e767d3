package workflow

import "fmt"

// Actions used by generated jobs.
const (
	CheckoutAction         = "actions/checkout"
	DownloadArtifactAction = "actions/download-artifact"
	UploadArtifactAction   = "actions/upload-artifact"
	ConfigureAWSAction     = "aws-actions/configure-aws-credentials"
	CloudFormationAction   = "aws-actions/aws-cloudformation-github-deploy"
	DockerLoginAction      = "docker/login-action"
)

var defaultActionVersions = map[string]string{
	CheckoutAction:         "v4",
	DownloadArtifactAction: "v4",
	UploadArtifactAction:   "v4",
	ConfigureAWSAction:     "v4",
	CloudFormationAction:   "v1",
	DockerLoginAction:      "v3",
}

// actionRef returns repo@version, preferring overrides.
func actionRef(repo string, overrides map[string]string) string {
	if v, ok := overrides[repo]; ok && v != "" {
		return fmt.Sprintf("%s@%s", repo, v)
	}
	return fmt.Sprintf("%s@%s", repo, defaultActionVersions[repo])
}
