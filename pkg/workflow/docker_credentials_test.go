//go:build !integration

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDockerLoginSteps(t *testing.T) {
	compiler, err := NewCompiler(Options{
		DockerCredentials: []DockerCredential{
			DockerHubCredential("", ""),
			ECRCredential("111111111111.dkr.ecr.us-east-1.amazonaws.com"),
			GHCRCredential(),
			CustomRegistryCredential("registry.example.com", "REG_USER", "REG_PASS"),
		},
	})
	require.NoError(t, err)

	steps := compiler.dockerLoginSteps()
	require.Len(t, steps, 4)
	for _, s := range steps {
		assert.Equal(t, "docker/login-action@v3", s.Uses)
	}

	assert.Equal(t, map[string]any{
		"username": "${{ secrets.DOCKERHUB_USERNAME }}",
		"password": "${{ secrets.DOCKERHUB_TOKEN }}",
	}, steps[0].With)
	assert.Equal(t, map[string]any{"registry": "111111111111.dkr.ecr.us-east-1.amazonaws.com"}, steps[1].With)
	assert.Equal(t, map[string]any{
		"registry": "ghcr.io",
		"username": "${{ github.actor }}",
		"password": "${{ secrets.GITHUB_TOKEN }}",
	}, steps[2].With)
	assert.Equal(t, "${{ secrets.REG_USER }}", steps[3].With["username"])
}

func TestDockerCredentialRequiresRegistry(t *testing.T) {
	_, err := NewCompiler(Options{DockerCredentials: []DockerCredential{ECRCredential("")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ecr registry")
}
