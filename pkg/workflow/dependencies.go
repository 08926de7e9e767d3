package workflow

import (
	"github.com/github/gh-pipelines/pkg/graph"
	"github.com/github/gh-pipelines/pkg/logger"
)

var dependenciesLog = logger.New("workflow:dependencies")

// needsFor flattens the dependencies of node, including those inherited
// from its ancestors, into the unique ids of the leaves it waits on. Graph
// dependencies expand to every leaf inside them.
func needsFor(node *graph.Node) []string {
	var needs []string
	seen := make(map[string]bool)
	for _, dep := range node.AllDeps() {
		for _, leaf := range dep.AllLeaves() {
			id := leaf.UniqueID()
			if seen[id] {
				continue
			}
			seen[id] = true
			needs = append(needs, id)
		}
	}
	dependenciesLog.Printf("Job %s needs %v", node.UniqueID(), needs)
	return needs
}

// verifyNeeds checks that every job only waits on compiled jobs. A miss
// means a dependency points outside the traversed graph.
func verifyNeeds(jobs []Job) error {
	compiled := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		compiled[job.ID] = true
	}
	for _, job := range jobs {
		for _, need := range job.Definition.Needs {
			if !compiled[need] {
				return newCompileError(KindCrossReference, job.ID,
					"depends on %s, which did not compile into a job", need)
			}
		}
	}
	return nil
}
