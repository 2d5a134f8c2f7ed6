package tree

import (
	"sync"

	"ptc/internal/domain"
)

// Node is a test item: a file node owning case nodes, or a case node
// for one declaration.
type Node struct {
	Key   string
	Label string
	File  string // filesystem path of the owning test file
	Range domain.Range

	// CanResolveChildren is set on file nodes
	CanResolveChildren bool

	tree     *Tree
	parent   *Node
	children []*Node

	mu       sync.Mutex
	status   domain.Status
	message  string
	location *domain.Location
}

// NewCase creates a detached case node. It joins a tree through ReplaceChildren.
func NewCase(key, label string, rng domain.Range) *Node {
	return &Node{Key: key, Label: label, Range: rng}
}

// Parent returns the owning file node, or nil for file nodes.
func (n *Node) Parent() *Node {
	if n.tree == nil {
		return n.parent
	}
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.parent
}

// IsFile reports whether n is a file node.
func (n *Node) IsFile() bool {
	return n.CanResolveChildren
}

// Children returns a snapshot of the node's children in insertion order.
func (n *Node) Children() []*Node {
	if n.tree == nil {
		return append([]*Node(nil), n.children...)
	}
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return append([]*Node(nil), n.children...)
}

// Location returns where the node is declared.
func (n *Node) Location() domain.Location {
	return domain.Location{File: n.File, Range: n.Range}
}

// Status returns the last run status.
func (n *Node) Status() domain.Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}

// Result returns the last run status with its message and failure location.
func (n *Node) Result() (domain.Status, string, *domain.Location) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status, n.message, n.location
}

// SetResult records a run status. Message and location are cleared unless given.
func (n *Node) SetResult(status domain.Status, message string, location *domain.Location) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.status = status
	n.message = message
	n.location = location
}
