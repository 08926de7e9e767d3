//go:build !integration

package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.UniqueID()
	}
	return out
}

func trancheIDs(tranches [][]*Node) [][]string {
	out := make([][]string, len(tranches))
	for i, t := range tranches {
		out[i] = ids(t)
	}
	return out
}

// samplePipeline builds Build/Build, Assets/FileAsset1 and a wave with two
// stacks where StackB depends on StackA.
func samplePipeline(t *testing.T) (root, build, asset, deployA, deployB *Node) {
	t.Helper()
	root = NewGraph("pipeline", nil)

	buildGraph := NewGraph("Build", nil)
	build = NewLeaf("Build", StepData{Step: &ShellStep{ID: "Build"}, IsBuildStep: true})
	require.NoError(t, buildGraph.Add(build))

	assets := NewGraph("Assets", nil)
	asset = NewLeaf("FileAsset1", PublishAssetsData{Assets: []StackAsset{{AssetID: "abc"}}})
	require.NoError(t, assets.Add(asset))
	asset.DependOn(build)

	wave := NewGraph("Prod", nil)
	stackA := NewGraph("StackA", StackGroupData{})
	deployA = NewLeaf("Deploy", ExecuteData{Stack: &StackDeployment{StackArtifactID: "ProdStackA"}})
	require.NoError(t, stackA.Add(deployA))
	stackB := NewGraph("StackB", StackGroupData{})
	deployB = NewLeaf("Deploy", ExecuteData{Stack: &StackDeployment{StackArtifactID: "ProdStackB"}})
	require.NoError(t, stackB.Add(deployB))
	require.NoError(t, wave.Add(stackA, stackB))
	deployA.DependOn(asset, build)
	stackB.DependOn(stackA)
	deployB.DependOn(build)

	require.NoError(t, root.Add(buildGraph, assets, wave))
	return root, build, asset, deployA, deployB
}

func TestUniqueID(t *testing.T) {
	_, build, asset, deployA, _ := samplePipeline(t)

	assert.Equal(t, "Build-Build", build.UniqueID())
	assert.Equal(t, "Assets-FileAsset1", asset.UniqueID())
	assert.Equal(t, "Prod-StackA-Deploy", deployA.UniqueID())
}

func TestAllDepsIncludesAncestors(t *testing.T) {
	_, build, _, deployA, deployB := samplePipeline(t)

	deps := deployB.AllDeps()
	require.Len(t, deps, 2)
	assert.Equal(t, build, deps[0], "own deps come first")
	assert.Equal(t, "Prod-StackA", deps[1].UniqueID(), "parent graph dependency is inherited")
	assert.Equal(t, []*Node{deployA}, deps[1].AllLeaves())
}

func TestAddRejectsDuplicateChild(t *testing.T) {
	g := NewGraph("Stage", nil)
	require.NoError(t, g.Add(NewLeaf("Deploy", ExecuteData{})))
	err := g.Add(NewLeaf("Deploy", ExecuteData{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has a child")

	leaf := NewLeaf("x", StepData{})
	assert.Error(t, leaf.Add(NewLeaf("y", StepData{})))
}

func TestSortedChildren(t *testing.T) {
	root, _, _, _, _ := samplePipeline(t)

	tranches, err := root.SortedChildren()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Build"}, {"Assets"}, {"Prod"}}, trancheIDs(tranches))
}

func TestSortedLeaves(t *testing.T) {
	root, _, _, _, _ := samplePipeline(t)

	wave, ok := root.Child("Prod")
	require.True(t, ok)

	tranches, err := wave.SortedLeaves()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Prod-StackA-Deploy"}, {"Prod-StackB-Deploy"}}, trancheIDs(tranches),
		"dependencies outside the wave are ignored; the StackB graph dependency expands to StackA's leaves")
}

func TestSortedLeavesDetectsCycles(t *testing.T) {
	g := NewGraph("Stage", nil)
	a := NewLeaf("A", StepData{})
	b := NewLeaf("B", StepData{})
	c := NewLeaf("C", StepData{})
	require.NoError(t, g.Add(a, b, c))
	root := NewGraph("root", nil)
	require.NoError(t, root.Add(g))
	a.DependOn(b)
	b.DependOn(a)

	_, err := g.SortedLeaves()
	require.Error(t, err)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"Stage-A", "Stage-B"}, cycleErr.Nodes)
}

func TestDependOnIgnoresSelfAndDuplicates(t *testing.T) {
	a := NewLeaf("A", StepData{})
	b := NewLeaf("B", StepData{})
	a.DependOn(a, b, b, nil)
	assert.Equal(t, []*Node{b}, a.Deps())
}

func TestKinds(t *testing.T) {
	tests := []struct {
		data NodeData
		want Kind
	}{
		{GroupData{}, KindGroup},
		{StackGroupData{}, KindStackGroup},
		{SelfUpdateData{}, KindSelfUpdate},
		{PublishAssetsData{}, KindPublishAssets},
		{PrepareData{}, KindPrepare},
		{ExecuteData{}, KindExecute},
		{StepData{}, KindStep},
		{ActionStepData{}, KindActionStep},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.data.Kind())
		})
	}
}

func TestStackOutputReference(t *testing.T) {
	ref := StackOutputReference{StackArtifactID: "ProdStackA", OutputName: "BucketName"}
	assert.True(t, ref.IsProducedBy(&StackDeployment{StackArtifactID: "ProdStackA"}))
	assert.False(t, ref.IsProducedBy(&StackDeployment{StackArtifactID: "ProdStackB"}))
	assert.False(t, ref.IsProducedBy(nil))
}
