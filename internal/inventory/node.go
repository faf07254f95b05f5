package inventory

import (
	"strings"

	"github.com/temirov/inventory/internal/types"
)

const relativePathSeparator = "."

// Node is one entry of the inventory tree: a directory, module, class or function.
type Node struct {
	Name         string         `json:"name"`
	RelativePath string         `json:"relativePath"`
	Kind         types.NodeKind `json:"type"`
	Statistics   Statistics     `json:"statistics"`
	Children     []*Node        `json:"children,omitempty"`
}

// Visit walks the subtree rooted at node in pre-order, passing each node's depth
// relative to node. Returning false from visitor skips the node's children.
func (node *Node) Visit(visitor func(current *Node, depth int) bool) {
	node.visit(visitor, 0)
}

func (node *Node) visit(visitor func(current *Node, depth int) bool, depth int) {
	if node == nil {
		return
	}
	if !visitor(node, depth) {
		return
	}
	for _, child := range node.Children {
		child.visit(visitor, depth+1)
	}
}

// Count returns the number of nodes of the given kind below node, excluding node itself.
func (node *Node) Count(kind types.NodeKind) int {
	total := 0
	node.Visit(func(current *Node, depth int) bool {
		if depth > 0 && current.Kind == kind {
			total++
		}
		return true
	})
	return total
}

// joinRelativePath appends name to the dot-joined ancestor chain prefix.
func joinRelativePath(prefix string, name string) string {
	if prefix == "" {
		return name
	}
	return strings.Join([]string{prefix, name}, relativePathSeparator)
}
