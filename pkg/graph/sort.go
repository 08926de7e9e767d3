package graph

import (
	"fmt"
	"strings"

	"github.com/github/gh-pipelines/pkg/logger"
)

var sortLog = logger.New("graph:sort")

// CycleError reports nodes whose dependencies could not be ordered.
type CycleError struct {
	Graph string
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle in graph %q between: %s", e.Graph, strings.Join(e.Nodes, ", "))
}

// SortedChildren orders the direct children of n into tranches. A child
// depends on a sibling when any node inside the child depends on any node
// inside the sibling.
func (n *Node) SortedChildren() ([][]*Node, error) {
	edges := make(map[*Node][]*Node, len(n.children))
	for _, child := range n.children {
		for _, member := range descendantsAndSelf(child) {
			for _, dep := range member.deps {
				sibling := n.childContaining(dep)
				if sibling == nil || sibling == child || containsNode(edges[child], sibling) {
					continue
				}
				edges[child] = append(edges[child], sibling)
			}
		}
	}
	return tranches(n, n.children, edges)
}

// SortedLeaves orders every leaf below n into tranches. Dependencies of a
// leaf's ancestors inside n apply to the leaf, and dependencies on graphs
// stand for all of their leaves. Dependencies outside n are ignored.
func (n *Node) SortedLeaves() ([][]*Node, error) {
	leaves := n.AllLeaves()
	inScope := make(map[*Node]bool, len(leaves))
	for _, l := range leaves {
		inScope[l] = true
	}

	edges := make(map[*Node][]*Node, len(leaves))
	for _, leaf := range leaves {
		for cur := leaf; cur != nil && cur != n; cur = cur.parent {
			for _, dep := range cur.deps {
				for _, target := range dep.AllLeaves() {
					if !inScope[target] || target == leaf || containsNode(edges[leaf], target) {
						continue
					}
					edges[leaf] = append(edges[leaf], target)
				}
			}
		}
	}
	return tranches(n, leaves, edges)
}

// childContaining returns the direct child of n that is or contains m.
func (n *Node) childContaining(m *Node) *Node {
	for cur := m; cur != nil; cur = cur.parent {
		if cur.parent == n {
			return cur
		}
	}
	return nil
}

func descendantsAndSelf(n *Node) []*Node {
	out := []*Node{n}
	for _, c := range n.children {
		out = append(out, descendantsAndSelf(c)...)
	}
	return out
}

// tranches layers nodes with Kahn's algorithm. Order inside a tranche
// follows the input order, which keeps the output deterministic.
func tranches(scope *Node, nodes []*Node, edges map[*Node][]*Node) ([][]*Node, error) {
	remaining := make([]*Node, len(nodes))
	copy(remaining, nodes)
	done := make(map[*Node]bool, len(nodes))

	var out [][]*Node
	for len(remaining) > 0 {
		var ready, blocked []*Node
		for _, node := range remaining {
			if allDone(edges[node], done) {
				ready = append(ready, node)
			} else {
				blocked = append(blocked, node)
			}
		}
		if len(ready) == 0 {
			ids := make([]string, len(blocked))
			for i, b := range blocked {
				ids[i] = b.UniqueID()
			}
			return nil, &CycleError{Graph: scope.UniqueID(), Nodes: ids}
		}
		for _, node := range ready {
			done[node] = true
		}
		out = append(out, ready)
		remaining = blocked
	}
	sortLog.Printf("Sorted %d nodes of %q into %d tranches", len(nodes), scope.UniqueID(), len(out))
	return out, nil
}

func allDone(deps []*Node, done map[*Node]bool) bool {
	for _, d := range deps {
		if !done[d] {
			return false
		}
	}
	return true
}
