package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/github/gh-pipelines/pkg/console"
	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/github/gh-pipelines/pkg/workflow"
)

var compileStatsLog = logger.New("cli:compile_stats")

// WorkflowStats holds statistics about a compiled workflow
type WorkflowStats struct {
	Definition string
	Workflow   string
	FileSize   int64
	Jobs       int
	Steps      int
	Scripts    int
}

// collectWorkflowStats summarizes a compilation result and the file it was
// written to.
func collectWorkflowStats(definition, workflowPath string, result *workflow.Result) (*WorkflowStats, error) {
	compileStatsLog.Printf("Collecting workflow stats: file=%s", workflowPath)
	fileInfo, err := os.Stat(workflowPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	stats := &WorkflowStats{
		Definition: definition,
		Workflow:   workflowPath,
		FileSize:   fileInfo.Size(),
		Jobs:       len(result.Jobs),
		Scripts:    len(result.Scripts),
	}
	for _, job := range result.Jobs {
		stats.Steps += len(job.Definition.Steps)
	}

	compileStatsLog.Printf("Stats collected: jobs=%d, steps=%d, scripts=%d, size=%d bytes",
		stats.Jobs, stats.Steps, stats.Scripts, stats.FileSize)
	return stats, nil
}

// renderStatsTable renders workflow statistics sorted by workflow path,
// with a total row when more than one workflow was compiled.
func renderStatsTable(statsList []*WorkflowStats) string {
	if len(statsList) == 0 {
		return ""
	}

	sorted := make([]*WorkflowStats, len(statsList))
	copy(sorted, statsList)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Workflow < sorted[j].Workflow
	})

	var totalSize int64
	var totalJobs, totalSteps, totalScripts int
	rows := make([][]string, 0, len(sorted))
	for _, stats := range sorted {
		totalSize += stats.FileSize
		totalJobs += stats.Jobs
		totalSteps += stats.Steps
		totalScripts += stats.Scripts
		rows = append(rows, []string{
			filepath.Base(stats.Definition),
			console.ToRelativePath(stats.Workflow),
			console.FormatFileSize(stats.FileSize),
			fmt.Sprintf("%d", stats.Jobs),
			fmt.Sprintf("%d", stats.Steps),
			fmt.Sprintf("%d", stats.Scripts),
		})
	}

	return console.RenderTable(console.TableConfig{
		Headers:   []string{"DEFINITION", "WORKFLOW", "FILE SIZE", "JOBS", "STEPS", "SCRIPTS"},
		Rows:      rows,
		ShowTotal: len(sorted) > 1,
		TotalRow: []string{
			"TOTAL",
			fmt.Sprintf("%d workflows", len(sorted)),
			console.FormatFileSize(totalSize),
			fmt.Sprintf("%d", totalJobs),
			fmt.Sprintf("%d", totalSteps),
			fmt.Sprintf("%d", totalScripts),
		},
	})
}
