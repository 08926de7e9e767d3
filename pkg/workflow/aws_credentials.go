package workflow

import (
	"strings"

	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/github/gh-pipelines/pkg/types"
)

var awsCredentialsLog = logger.New("workflow:aws_credentials")

const (
	defaultRoleDurationSeconds = 30 * 60
	roleExternalID             = "Pipeline"
)

// CredentialRequest asks a provider for the steps that authenticate a job.
type CredentialRequest struct {
	Region string
	// AssumeRoleArn is a bootstrap role to assume after authenticating.
	AssumeRoleArn string
	// Uses is the pinned configure-aws-credentials action.
	Uses string
}

// AWSCredentialsProvider authenticates jobs to AWS.
type AWSCredentialsProvider interface {
	// JobPermission is the id-token level jobs need for the provider to work.
	JobPermission() types.PermissionLevel
	CredentialSteps(req CredentialRequest) []types.JobStep
}

// GitHubSecretsProvider reads long-lived access keys from repository secrets.
type GitHubSecretsProvider struct {
	AccessKeyID     string // secret name, defaults to AWS_ACCESS_KEY_ID
	SecretAccessKey string // secret name, defaults to AWS_SECRET_ACCESS_KEY
	SessionToken    string // optional secret name
}

// NewGitHubSecretsProvider applies the default secret names.
func NewGitHubSecretsProvider(accessKeyID, secretAccessKey, sessionToken string) *GitHubSecretsProvider {
	if accessKeyID == "" {
		accessKeyID = "AWS_ACCESS_KEY_ID"
	}
	if secretAccessKey == "" {
		secretAccessKey = "AWS_SECRET_ACCESS_KEY"
	}
	return &GitHubSecretsProvider{AccessKeyID: accessKeyID, SecretAccessKey: secretAccessKey, SessionToken: sessionToken}
}

func (p *GitHubSecretsProvider) JobPermission() types.PermissionLevel {
	return types.PermissionNone
}

func (p *GitHubSecretsProvider) CredentialSteps(req CredentialRequest) []types.JobStep {
	params := awsCredentialParams{
		Region:          req.Region,
		AccessKeyID:     Interpolate(NewSecretRef(p.AccessKeyID)),
		SecretAccessKey: Interpolate(NewSecretRef(p.SecretAccessKey)),
	}
	if p.SessionToken != "" {
		params.SessionToken = Interpolate(NewSecretRef(p.SessionToken))
	}
	if req.AssumeRoleArn != "" {
		params.RoleToAssume = req.AssumeRoleArn
		params.RoleExternalID = roleExternalID
	}
	return []types.JobStep{awsCredentialStep("Authenticate Via GitHub Secrets", req.Uses, params)}
}

// OpenIDConnectProvider exchanges the job's OIDC token for a role session.
type OpenIDConnectProvider struct {
	GitHubActionRoleArn string
	RoleSessionName     string
	RoleDurationSeconds int
	MaskAWSAccountID    bool
}

func (p *OpenIDConnectProvider) JobPermission() types.PermissionLevel {
	return types.PermissionWrite
}

func (p *OpenIDConnectProvider) CredentialSteps(req CredentialRequest) []types.JobStep {
	steps := []types.JobStep{awsCredentialStep("Authenticate Via OIDC Role", req.Uses, awsCredentialParams{
		Region:              req.Region,
		RoleToAssume:        p.GitHubActionRoleArn,
		RoleSessionName:     p.RoleSessionName,
		RoleDurationSeconds: p.RoleDurationSeconds,
		MaskAWSAccountID:    p.MaskAWSAccountID,
	})}

	if req.AssumeRoleArn != "" {
		// The first step exports the GitHub action role session as AWS_* env vars.
		steps = append(steps, awsCredentialStep("Assume CDK Deploy Role", req.Uses, awsCredentialParams{
			Region:          req.Region,
			AccessKeyID:     Interpolate(NewEnvRef("AWS_ACCESS_KEY_ID")),
			SecretAccessKey: Interpolate(NewEnvRef("AWS_SECRET_ACCESS_KEY")),
			SessionToken:    Interpolate(NewEnvRef("AWS_SESSION_TOKEN")),
			RoleToAssume:    deployRoleArn(req.AssumeRoleArn),
			RoleExternalID:  roleExternalID,
		}))
	}
	return steps
}

// deployRoleArn maps a bootstrap CloudFormation execution role to the deploy
// role of the same bootstrap stack.
func deployRoleArn(arn string) string {
	return strings.Replace(arn, "cfn-exec", "deploy", 1)
}

// NoCredentialsProvider is for runners that already carry AWS credentials.
type NoCredentialsProvider struct{}

func (NoCredentialsProvider) JobPermission() types.PermissionLevel { return types.PermissionNone }

func (NoCredentialsProvider) CredentialSteps(CredentialRequest) []types.JobStep { return nil }

type awsCredentialParams struct {
	Region              string
	AccessKeyID         string
	SecretAccessKey     string
	SessionToken        string
	RoleToAssume        string
	RoleExternalID      string
	RoleSessionName     string
	RoleDurationSeconds int
	MaskAWSAccountID    bool
}

func awsCredentialStep(name, uses string, p awsCredentialParams) types.JobStep {
	duration := p.RoleDurationSeconds
	if duration == 0 {
		duration = defaultRoleDurationSeconds
	}
	// CDK bootstrap roles lack sts:TagSession, so session tagging stays off.
	with := map[string]any{
		"aws-region":                p.Region,
		"role-duration-seconds":     duration,
		"role-skip-session-tagging": true,
	}
	setIfNotEmpty(with, "aws-access-key-id", p.AccessKeyID)
	setIfNotEmpty(with, "aws-secret-access-key", p.SecretAccessKey)
	setIfNotEmpty(with, "aws-session-token", p.SessionToken)
	setIfNotEmpty(with, "role-to-assume", p.RoleToAssume)
	setIfNotEmpty(with, "role-external-id", p.RoleExternalID)
	setIfNotEmpty(with, "role-session-name", p.RoleSessionName)
	if p.MaskAWSAccountID {
		with["mask-aws-account-id"] = true
	}
	awsCredentialsLog.Printf("Credential step %q for region %s", name, p.Region)
	return types.JobStep{Name: name, Uses: uses, With: with}
}

func setIfNotEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
