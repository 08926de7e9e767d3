package workflow

import (
	"github.com/github/gh-pipelines/pkg/types"
)

// DockerCredential logs a publish job in to a container registry.
type DockerCredential struct {
	// Name identifies the credential kind: docker, ecr, ghcr or custom.
	Name     string
	Registry string
	Username string
	Password string
}

// DockerHubCredential reads Docker Hub credentials from secrets, defaulting
// to DOCKERHUB_USERNAME and DOCKERHUB_TOKEN.
func DockerHubCredential(usernameKey, tokenKey string) DockerCredential {
	if usernameKey == "" {
		usernameKey = "DOCKERHUB_USERNAME"
	}
	if tokenKey == "" {
		tokenKey = "DOCKERHUB_TOKEN"
	}
	return DockerCredential{
		Name:     "docker",
		Username: Interpolate(NewSecretRef(usernameKey)),
		Password: Interpolate(NewSecretRef(tokenKey)),
	}
}

// ECRCredential logs in to an ECR registry with the job's AWS credentials.
func ECRCredential(registry string) DockerCredential {
	return DockerCredential{Name: "ecr", Registry: registry}
}

// GHCRCredential logs in to the GitHub container registry as the workflow actor.
func GHCRCredential() DockerCredential {
	return DockerCredential{
		Name:     "ghcr",
		Registry: "ghcr.io",
		Username: Interpolate(NewContextRef("github.actor")),
		Password: Interpolate(NewSecretRef("GITHUB_TOKEN")),
	}
}

// CustomRegistryCredential reads credentials for registry from secrets.
func CustomRegistryCredential(registry, usernameKey, passwordKey string) DockerCredential {
	return DockerCredential{
		Name:     "custom",
		Registry: registry,
		Username: Interpolate(NewSecretRef(usernameKey)),
		Password: Interpolate(NewSecretRef(passwordKey)),
	}
}

// DockerAssetJobSettings customize publish jobs of container image assets.
type DockerAssetJobSettings struct {
	// SetupSteps run before the image is built, for example to set up QEMU.
	SetupSteps  []types.JobStep
	Permissions *types.Permissions
}

func (c *Compiler) dockerLoginSteps() []types.JobStep {
	steps := make([]types.JobStep, 0, len(c.opts.DockerCredentials))
	for _, cred := range c.opts.DockerCredentials {
		with := map[string]any{}
		if cred.Name == "ecr" {
			with["registry"] = cred.Registry
		} else {
			setIfNotEmpty(with, "registry", cred.Registry)
			with["username"] = cred.Username
			with["password"] = cred.Password
		}
		steps = append(steps, types.JobStep{
			Uses: actionRef(DockerLoginAction, c.opts.ActionVersions),
			With: with,
		})
	}
	return steps
}
