package treestore

import (
	"time"

	"github.com/temirov/dirtree/internal/types"
)

// Node is one materialized entry. Its parent pointer is a back-reference used
// for upward navigation only; children are owned through the children slice.
type Node struct {
	name        string
	path        string
	isDirectory bool
	size        int64
	modified    time.Time
	depth       int
	children    []*Node
	parent      *Node
	expanded    bool
	stale       bool
}

func newNode(entry types.Entry, depth int) *Node {
	return &Node{
		name:        entry.Name,
		path:        entry.FullPath,
		isDirectory: entry.IsDirectory(),
		size:        entry.Size,
		modified:    entry.Modified,
		depth:       depth,
	}
}

func (node *Node) appendChild(child *Node) {
	child.parent = node
	node.children = append(node.children, child)
}

// Name returns the entry name shown in views.
func (node *Node) Name() string { return node.name }

// Path returns the absolute filesystem path.
func (node *Node) Path() string { return node.path }

// IsDirectory reports whether the node is a directory.
func (node *Node) IsDirectory() bool { return node.isDirectory }

// Size returns the file size in bytes. Directories report zero.
func (node *Node) Size() int64 { return node.size }

// Modified returns the last modification time read during the walk.
func (node *Node) Modified() time.Time { return node.modified }

// Depth returns the distance from the walk root.
func (node *Node) Depth() int { return node.depth }

// ChildCount returns the number of materialized children.
func (node *Node) ChildCount() int { return len(node.children) }

// Child returns the child at index or nil when index is out of range.
func (node *Node) Child(index int) *Node {
	if index < 0 || index >= len(node.children) {
		return nil
	}
	return node.children[index]
}

// Children returns a copy of the child list in display order.
func (node *Node) Children() []*Node {
	return append([]*Node(nil), node.children...)
}

// Parent returns the containing directory, or nil for the root.
func (node *Node) Parent() *Node { return node.parent }

// Row returns the position of the node among its parent's children. The root is row 0.
func (node *Node) Row() int {
	if node.parent == nil {
		return 0
	}
	for index, sibling := range node.parent.children {
		if sibling == node {
			return index
		}
	}
	return 0
}

// Expanded reports whether a view should show the node's children.
func (node *Node) Expanded() bool { return node.expanded }

// SetExpanded toggles child visibility for directories. Files are never expanded.
func (node *Node) SetExpanded(expanded bool) {
	node.expanded = expanded && node.isDirectory
}

// Stale reports whether the last refresh of this node failed.
func (node *Node) Stale() bool { return node.stale }

// Ancestors returns the chain from the root down to the node's parent.
func (node *Node) Ancestors() []*Node {
	var chain []*Node
	for current := node.parent; current != nil; current = current.parent {
		chain = append(chain, current)
	}
	for left, right := 0, len(chain)-1; left < right; left, right = left+1, right-1 {
		chain[left], chain[right] = chain[right], chain[left]
	}
	return chain
}

// Entry converts the node back into the walker's entry record.
func (node *Node) Entry() types.Entry {
	kind := types.KindFile
	if node.isDirectory {
		kind = types.KindDirectory
	}
	return types.Entry{Name: node.name, FullPath: node.path, Kind: kind, Size: node.size, Modified: node.modified}
}

func (node *Node) root() *Node {
	current := node
	for current.parent != nil {
		current = current.parent
	}
	return current
}

func (node *Node) visit(visitor func(*Node)) {
	visitor(node)
	for _, child := range node.children {
		child.visit(visitor)
	}
}
