//go:build !integration

package workflow

import (
	"testing"

	"github.com/github/gh-pipelines/pkg/graph"
	"github.com/github/gh-pipelines/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigureAWS = "aws-actions/configure-aws-credentials@v4"

func TestGitHubSecretsProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider *GitHubSecretsProvider
		req      CredentialRequest
		want     map[string]any
	}{
		{
			name:     "default secrets",
			provider: NewGitHubSecretsProvider("", "", ""),
			req:      CredentialRequest{Region: "us-west-2", Uses: testConfigureAWS},
			want: map[string]any{
				"aws-region":                "us-west-2",
				"role-duration-seconds":     1800,
				"role-skip-session-tagging": true,
				"aws-access-key-id":         "${{ secrets.AWS_ACCESS_KEY_ID }}",
				"aws-secret-access-key":     "${{ secrets.AWS_SECRET_ACCESS_KEY }}",
			},
		},
		{
			name:     "session token and assumed role",
			provider: NewGitHubSecretsProvider("KEY", "SECRET", "TOKEN"),
			req:      CredentialRequest{Region: "eu-west-1", AssumeRoleArn: "arn:aws:iam::111111111111:role/deploy", Uses: testConfigureAWS},
			want: map[string]any{
				"aws-region":                "eu-west-1",
				"role-duration-seconds":     1800,
				"role-skip-session-tagging": true,
				"aws-access-key-id":         "${{ secrets.KEY }}",
				"aws-secret-access-key":     "${{ secrets.SECRET }}",
				"aws-session-token":         "${{ secrets.TOKEN }}",
				"role-to-assume":            "arn:aws:iam::111111111111:role/deploy",
				"role-external-id":          "Pipeline",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := tt.provider.CredentialSteps(tt.req)
			require.Len(t, steps, 1)
			assert.Equal(t, "Authenticate Via GitHub Secrets", steps[0].Name)
			assert.Equal(t, testConfigureAWS, steps[0].Uses)
			assert.Equal(t, tt.want, steps[0].With)
		})
	}
	assert.Equal(t, types.PermissionNone, NewGitHubSecretsProvider("", "", "").JobPermission())
}

func TestOpenIDConnectProvider(t *testing.T) {
	provider := &OpenIDConnectProvider{
		GitHubActionRoleArn: "arn:aws:iam::111111111111:role/GitHubActionRole",
		RoleSessionName:     "gh-pipelines",
	}
	assert.Equal(t, types.PermissionWrite, provider.JobPermission())

	steps := provider.CredentialSteps(CredentialRequest{
		Region:        "us-east-1",
		AssumeRoleArn: "arn:aws:iam::111111111111:role/cdk-hnb659fds-cfn-exec-role-111111111111-us-east-1",
		Uses:          testConfigureAWS,
	})
	require.Len(t, steps, 2)

	assert.Equal(t, "Authenticate Via OIDC Role", steps[0].Name)
	assert.Equal(t, "arn:aws:iam::111111111111:role/GitHubActionRole", steps[0].With["role-to-assume"])
	assert.Equal(t, "gh-pipelines", steps[0].With["role-session-name"])
	assert.NotContains(t, steps[0].With, "aws-access-key-id")

	assert.Equal(t, "Assume CDK Deploy Role", steps[1].Name)
	assert.Equal(t, "arn:aws:iam::111111111111:role/cdk-hnb659fds-deploy-role-111111111111-us-east-1", steps[1].With["role-to-assume"])
	assert.Equal(t, "${{ env.AWS_ACCESS_KEY_ID }}", steps[1].With["aws-access-key-id"])
	assert.Equal(t, "${{ env.AWS_SESSION_TOKEN }}", steps[1].With["aws-session-token"])
	assert.Equal(t, "Pipeline", steps[1].With["role-external-id"])

	single := provider.CredentialSteps(CredentialRequest{Region: "us-east-1", Uses: testConfigureAWS})
	assert.Len(t, single, 1, "no deploy role is assumed without an assume role arn")
}

func TestNoCredentialsProvider(t *testing.T) {
	var provider AWSCredentialsProvider = NoCredentialsProvider{}
	assert.Empty(t, provider.CredentialSteps(CredentialRequest{Region: "us-east-1"}))
	assert.Equal(t, types.PermissionNone, provider.JobPermission())
}

func TestOIDCDeployJob(t *testing.T) {
	p := newTestPipeline(t, "App")
	stack := p.deploys["App"].Data().(graph.ExecuteData).Stack
	stack.AssumeRoleArn = "arn:${AWS::Partition}:iam::${AWS::AccountId}:role/cdk-hnb659fds-cfn-exec-role"

	result := mustCompile(t, Options{
		AWSCredentials: &OpenIDConnectProvider{GitHubActionRoleArn: "arn:aws:iam::111111111111:role/GitHubActionRole"},
	}, p.root)

	deploy := findJob(t, result, "Prod-App-Deploy")
	level, ok := deploy.Definition.Permissions.Get(types.PermissionIDToken)
	require.True(t, ok)
	assert.Equal(t, types.PermissionWrite, level)

	require.Len(t, deploy.Definition.Steps, 3)
	assert.Equal(t, "Authenticate Via OIDC Role", deploy.Definition.Steps[0].Name)
	assert.Equal(t, testRegion, deploy.Definition.Steps[0].With["aws-region"])
	assert.Equal(t, "arn:aws:iam::111111111111:role/cdk-hnb659fds-deploy-role", deploy.Definition.Steps[1].With["role-to-assume"])
	assert.Equal(t, DeployStepID, deploy.Definition.Steps[2].ID)
}
