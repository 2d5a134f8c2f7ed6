// Package tree holds the test items discovered in a workspace: file nodes
// keyed by file locator, each owning the case nodes declared in it.
package tree

import (
	"slices"
	"sort"
	"sync"
)

// Tree maps identity keys to file nodes. Structure changes and reads are
// serialized by one lock so a run never sees a half-reconciled file.
type Tree struct {
	mu    sync.RWMutex
	files map[string]*Node
}

// New creates an empty Tree
func New() *Tree {
	return &Tree{files: make(map[string]*Node)}
}

// GetOrCreateFileNode returns the file node registered under key, creating
// and registering an empty one when absent.
func (t *Tree) GetOrCreateFileNode(key, label, file string) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.getOrCreateLocked(key, label, file)
}

func (t *Tree) getOrCreateLocked(key, label, file string) *Node {
	if existing, ok := t.files[key]; ok {
		return existing
	}
	node := &Node{
		Key:                key,
		Label:              label,
		File:               file,
		CanResolveChildren: true,
		tree:               t,
	}
	t.files[key] = node
	return node
}

// ReplaceChildren drops every child of file and adds cases instead. With no
// cases the file node is removed from the tree.
func (t *Tree) ReplaceChildren(file *Node, cases []*Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replaceLocked(file, cases)
}

func (t *Tree) replaceLocked(file *Node, cases []*Node) {
	for _, old := range file.children {
		old.parent = nil
	}
	file.children = nil

	if len(cases) == 0 {
		if t.files[file.Key] == file {
			delete(t.files, file.Key)
		}
		return
	}

	seen := make(map[string]bool, len(cases))
	for _, c := range cases {
		if seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		c.tree = t
		c.parent = file
		c.File = file.File
		file.children = append(file.children, c)
	}
	file.tree = t
	// a pruned node is registered again only if nothing took its key since
	if current, ok := t.files[file.Key]; !ok || current == file {
		t.files[file.Key] = file
	}
}

// Reconcile gets or creates the file node for key and replaces its children
// in one step. It returns nil when the file node was pruned.
func (t *Tree) Reconcile(key, label, file string, cases []*Node) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.getOrCreateLocked(key, label, file)
	t.replaceLocked(node, cases)
	if len(cases) == 0 {
		return nil
	}
	return node
}

// Remove drops the file node registered under key. Unknown keys are ignored.
func (t *Tree) Remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if node, ok := t.files[key]; ok {
		t.replaceLocked(node, nil)
	}
}

// Get returns the file node registered under key
func (t *Tree) Get(key string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	node, ok := t.files[key]
	return node, ok
}

// Case returns the case with caseKey inside the file registered under fileKey
func (t *Tree) Case(fileKey, caseKey string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	file, ok := t.files[fileKey]
	if !ok {
		return nil, false
	}
	for _, c := range file.children {
		if c.Key == caseKey {
			return c, true
		}
	}
	return nil, false
}

// Files returns the file nodes ordered by key
func (t *Tree) Files() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	files := make([]*Node, 0, len(t.files))
	for _, f := range t.files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files
}

// Len returns the number of file nodes
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.files)
}

// Expand resolves requested nodes into case nodes: file nodes contribute
// their children in insertion order, case nodes themselves. Requested order
// is kept and each case appears once. Nodes no longer in the tree
// contribute nothing.
func (t *Tree) Expand(requested []*Node) []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var cases []*Node
	seen := make(map[*Node]bool)
	add := func(n *Node) {
		if !seen[n] {
			seen[n] = true
			cases = append(cases, n)
		}
	}

	for _, n := range requested {
		if n.CanResolveChildren {
			if t.files[n.Key] != n {
				continue
			}
			for _, c := range n.children {
				add(c)
			}
			continue
		}
		if n.parent != nil && t.files[n.parent.Key] == n.parent {
			add(n)
		}
	}
	return slices.Clip(cases)
}
