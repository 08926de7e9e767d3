package workflow

import (
	"fmt"

	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/github/gh-pipelines/pkg/types"
)

var artifactsLog = logger.New("workflow:artifacts")

// AssemblyArtifact is the artifact and directory name of the cloud assembly
// inside CI jobs.
const AssemblyArtifact = "cdk.out"

// ArtifactConfig describes a workflow artifact transfer.
type ArtifactConfig struct {
	Name     string // artifact name
	Path     string // directory to upload from or download to
	StepName string // defaults to "Download <name>" or "Upload <name>"
}

func (c *Compiler) downloadArtifactStep(config ArtifactConfig) types.JobStep {
	name := config.StepName
	if name == "" {
		name = fmt.Sprintf("Download %s", config.Name)
	}
	artifactsLog.Printf("Building download step: artifact=%s, path=%s", config.Name, config.Path)
	return types.JobStep{
		Name: name,
		Uses: actionRef(DownloadArtifactAction, c.opts.ActionVersions),
		With: map[string]any{"name": config.Name, "path": config.Path},
	}
}

func (c *Compiler) uploadArtifactStep(config ArtifactConfig) types.JobStep {
	name := config.StepName
	if name == "" {
		name = fmt.Sprintf("Upload %s", config.Name)
	}
	artifactsLog.Printf("Building upload step: artifact=%s, path=%s", config.Name, config.Path)
	return types.JobStep{
		Name: name,
		Uses: actionRef(UploadArtifactAction, c.opts.ActionVersions),
		With: map[string]any{"name": config.Name, "path": config.Path},
	}
}

func (c *Compiler) checkoutStep() types.JobStep {
	return types.JobStep{
		Name: "Checkout",
		Uses: actionRef(CheckoutAction, c.opts.ActionVersions),
	}
}

// assemblySteps makes the cloud assembly available to a job: checked out
// from source when pre-synthesized, downloaded from the build job otherwise.
func (c *Compiler) assemblySteps() []types.JobStep {
	if c.opts.PreSynthed {
		return []types.JobStep{c.checkoutStep()}
	}
	return []types.JobStep{c.downloadArtifactStep(ArtifactConfig{
		Name:     AssemblyArtifact,
		Path:     AssemblyArtifact,
		StepName: "Download cdk.out",
	})}
}
