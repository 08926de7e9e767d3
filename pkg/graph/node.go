// Package graph models a resolved deployment pipeline as a tree of nodes
// with dependency edges between them.
//
// Interior nodes are graphs that group other nodes; leaves carry the work.
// Dependencies may point at graphs, in which case they stand for every leaf
// inside that graph.
package graph

import (
	"fmt"
	"strings"
)

// Node is a graph or a leaf of the pipeline.
type Node struct {
	id       string
	data     NodeData
	isGraph  bool
	parent   *Node
	children []*Node
	byID     map[string]*Node
	deps     []*Node
}

// NewGraph creates a grouping node. A nil data defaults to GroupData.
func NewGraph(id string, data NodeData) *Node {
	if data == nil {
		data = GroupData{}
	}
	return &Node{id: id, data: data, isGraph: true, byID: make(map[string]*Node)}
}

// NewLeaf creates a leaf carrying data.
func NewLeaf(id string, data NodeData) *Node {
	return &Node{id: id, data: data}
}

func (n *Node) ID() string        { return n.id }
func (n *Node) Data() NodeData    { return n.data }
func (n *Node) IsGraph() bool     { return n.isGraph }
func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

// Deps returns the direct dependencies of n.
func (n *Node) Deps() []*Node { return n.deps }

// Add appends children to the graph n. Child ids must be unique within n.
func (n *Node) Add(children ...*Node) error {
	if !n.isGraph {
		return fmt.Errorf("cannot add children to leaf %q", n.id)
	}
	for _, c := range children {
		if _, dup := n.byID[c.id]; dup {
			return fmt.Errorf("graph %q already has a child %q", n.UniqueID(), c.id)
		}
		if c.parent != nil {
			return fmt.Errorf("node %q already belongs to %q", c.id, c.parent.UniqueID())
		}
		c.parent = n
		n.children = append(n.children, c)
		n.byID[c.id] = c
	}
	return nil
}

// Child returns the direct child with id.
func (n *Node) Child(id string) (*Node, bool) {
	c, ok := n.byID[id]
	return c, ok
}

// DependOn records that n must run after every dep. Duplicates and self
// references are ignored.
func (n *Node) DependOn(deps ...*Node) {
	for _, d := range deps {
		if d == nil || d == n || containsNode(n.deps, d) {
			continue
		}
		n.deps = append(n.deps, d)
	}
}

// UniqueID joins the ids on the path from the root's children down to n
// with "-". The root itself has an empty unique id.
func (n *Node) UniqueID() string {
	var parts []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		parts = append(parts, cur.id)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "-")
}

// AllDeps returns the dependencies of n and of every ancestor of n, nearest
// first, without duplicates.
func (n *Node) AllDeps() []*Node {
	var out []*Node
	for cur := n; cur != nil; cur = cur.parent {
		for _, d := range cur.deps {
			if !containsNode(out, d) {
				out = append(out, d)
			}
		}
	}
	return out
}

// AllLeaves returns the leaves below n in insertion order. A leaf returns
// itself.
func (n *Node) AllLeaves() []*Node {
	if !n.isGraph {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.children {
		out = append(out, c.AllLeaves()...)
	}
	return out
}

// Contains reports whether m is n or a descendant of n.
func (n *Node) Contains(m *Node) bool {
	for cur := m; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Root walks up to the top of the tree.
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.UniqueID(), n.data.Kind())
}

func containsNode(nodes []*Node, n *Node) bool {
	for _, x := range nodes {
		if x == n {
			return true
		}
	}
	return false
}
