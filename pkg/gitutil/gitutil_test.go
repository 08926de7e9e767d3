//go:build !integration

package gitutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/github/gh-pipelines/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindGitRoot(t *testing.T) {
	root := testutil.TempDir(t, "test-*")
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "infra", "pipelines")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindGitRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)

	rel, err := RelativeToRoot(found, filepath.Join(nested, "pipeline.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "infra/pipelines/pipeline.yaml", rel)
}
