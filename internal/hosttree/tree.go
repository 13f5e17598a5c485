// Package hosttree holds the in-memory host tree and the operations that
// reshape it: drag and drop moves, subtree copies, soft removal and the
// expansion bookkeeping that has to survive those edits.
//
// All methods must be called from a single goroutine. Nothing here locks.
package hosttree

import (
	"errors"

	"github.com/artpar/hostdeck/internal/core"
)

// NodeID addresses a node in a Tree's arena.
type NodeID int

// NoNode is the parent of the root and of detached nodes.
const NoNode NodeID = -1

// Structural errors returned by Insert and SetHost.
var (
	ErrUnknownNode     = errors.New("unknown node")
	ErrAttached        = errors.New("node already has a parent")
	ErrCycle           = errors.New("node cannot be inserted below itself")
	ErrNotFolder       = errors.New("parent is not a folder")
	ErrIndexOutOfRange = errors.New("child index out of range")
	ErrOrderViolation  = errors.New("folders must precede hosts")
)

// Path is a root-first sequence of nodes.
type Path []NodeID

// Last returns the node the path points at, or NoNode for an empty path.
func (p Path) Last() NodeID {
	if len(p) == 0 {
		return NoNode
	}
	return p[len(p)-1]
}

type node struct {
	host        core.Host
	parent      NodeID
	children    []NodeID
	folderCount int
}

// Tree is an arena of host nodes. Detached nodes stay in the arena so a move
// can reinsert them; they are simply unreachable from the root.
type Tree struct {
	nodes     []node
	index     map[string]NodeID
	root      NodeID
	listeners []listenerEntry
	nextID    int
}

// New creates a tree whose root wraps the given folder host.
func New(root core.Host) *Tree {
	t := &Tree{index: make(map[string]NodeID)}
	t.root = t.NewNode(root)
	return t
}

// NewTree creates a tree with the synthetic root folder.
func NewTree() *Tree {
	return New(core.Root())
}

// NewNode registers a detached node for host and returns its id.
func (t *Tree) NewNode(host core.Host) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{host: host, parent: NoNode})
	t.index[host.ID] = id
	return id
}

// forget unregisters the host id of a node that never made it into the tree.
// The arena slot stays; Lookup no longer finds it.
func (t *Tree) forget(n NodeID) {
	if !t.valid(n) || t.Attached(n) {
		return
	}
	if id := t.nodes[n].host.ID; t.index[id] == n {
		delete(t.index, id)
	}
}

func (t *Tree) valid(n NodeID) bool {
	return n >= 0 && int(n) < len(t.nodes)
}

// Root returns the root node.
func (t *Tree) Root() NodeID { return t.root }

// Lookup finds the node registered for a host id.
func (t *Tree) Lookup(hostID string) (NodeID, bool) {
	n, ok := t.index[hostID]
	return n, ok
}

// Host returns the host wrapped by n.
func (t *Tree) Host(n NodeID) core.Host {
	if !t.valid(n) {
		return core.Host{}
	}
	return t.nodes[n].host
}

// IsFolder reports whether n wraps a folder.
func (t *Tree) IsFolder(n NodeID) bool {
	return t.valid(n) && t.nodes[n].host.IsFolder()
}

// Parent returns the parent of n, or NoNode.
func (t *Tree) Parent(n NodeID) NodeID {
	if !t.valid(n) {
		return NoNode
	}
	return t.nodes[n].parent
}

// Children returns a copy of n's ordered children.
func (t *Tree) Children(n NodeID) []NodeID {
	if !t.valid(n) {
		return nil
	}
	return append([]NodeID(nil), t.nodes[n].children...)
}

// ChildAt returns the i-th child of n, or NoNode.
func (t *Tree) ChildAt(n NodeID, i int) NodeID {
	if !t.valid(n) || i < 0 || i >= len(t.nodes[n].children) {
		return NoNode
	}
	return t.nodes[n].children[i]
}

// ChildCount returns the number of children of n.
func (t *Tree) ChildCount(n NodeID) int {
	if !t.valid(n) {
		return 0
	}
	return len(t.nodes[n].children)
}

// FolderCount returns the number of folder children of n, which is also the
// index of its first non-folder child.
func (t *Tree) FolderCount(n NodeID) int {
	if !t.valid(n) {
		return 0
	}
	return t.nodes[n].folderCount
}

// IndexOf returns the position of child under parent, or -1.
func (t *Tree) IndexOf(parent, child NodeID) int {
	if !t.valid(parent) {
		return -1
	}
	for i, c := range t.nodes[parent].children {
		if c == child {
			return i
		}
	}
	return -1
}

// IsAncestor reports whether ancestor lies strictly above n.
func (t *Tree) IsAncestor(ancestor, n NodeID) bool {
	if !t.valid(n) {
		return false
	}
	for cur := t.nodes[n].parent; cur != NoNode; cur = t.nodes[cur].parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Attached reports whether n is reachable from the root.
func (t *Tree) Attached(n NodeID) bool {
	if !t.valid(n) {
		return false
	}
	for cur := n; cur != NoNode; cur = t.nodes[cur].parent {
		if cur == t.root {
			return true
		}
	}
	return false
}

// PathToRoot returns the ancestors of n from the top down, ending with n.
func (t *Tree) PathToRoot(n NodeID) Path {
	if !t.valid(n) {
		return nil
	}
	var path Path
	for cur := n; cur != NoNode; cur = t.nodes[cur].parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Descendants returns every node below n, breadth first.
func (t *Tree) Descendants(n NodeID) []NodeID {
	if !t.valid(n) {
		return nil
	}
	var out []NodeID
	queue := append([]NodeID(nil), t.nodes[n].children...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		queue = append(queue, t.nodes[cur].children...)
	}
	return out
}

// Walk visits n and its subtree depth first. Returning false from fn skips
// the children of the visited node.
func (t *Tree) Walk(n NodeID, fn func(id NodeID, depth int) bool) {
	if !t.valid(n) {
		return
	}
	t.walk(n, 0, fn)
}

func (t *Tree) walk(n NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range t.nodes[n].children {
		t.walk(c, depth+1, fn)
	}
}

// Insert places the detached node n under parent at index.
// Folders may only land inside the folder prefix, other hosts only after it.
func (t *Tree) Insert(n, parent NodeID, index int) error {
	if !t.valid(n) || !t.valid(parent) {
		return ErrUnknownNode
	}
	if n == t.root || t.nodes[n].parent != NoNode {
		return ErrAttached
	}
	if n == parent || t.IsAncestor(n, parent) {
		return ErrCycle
	}

	p := &t.nodes[parent]
	if !p.host.IsFolder() {
		return ErrNotFolder
	}
	if index < 0 || index > len(p.children) {
		return ErrIndexOutOfRange
	}

	folder := t.nodes[n].host.IsFolder()
	if folder && index > p.folderCount || !folder && index < p.folderCount {
		return ErrOrderViolation
	}

	p.children = append(p.children, NoNode)
	copy(p.children[index+1:], p.children[index:])
	p.children[index] = n
	if folder {
		p.folderCount++
	}
	t.nodes[n].parent = parent

	if t.Attached(parent) {
		t.emit(Event{Kind: NodeInserted, Parent: parent, Node: n, Index: index})
	}
	return nil
}

// Remove detaches n from its parent. Detached nodes are left alone.
func (t *Tree) Remove(n NodeID) {
	if !t.valid(n) {
		return
	}
	parent := t.nodes[n].parent
	if parent == NoNode {
		return
	}

	idx := t.IndexOf(parent, n)
	p := &t.nodes[parent]
	p.children = append(p.children[:idx], p.children[idx+1:]...)
	if t.nodes[n].host.IsFolder() {
		p.folderCount--
	}
	t.nodes[n].parent = NoNode

	if t.Attached(parent) {
		t.emit(Event{Kind: NodeRemoved, Parent: parent, Node: n, Index: idx})
	}
}

// Reload announces that the subtree under n was replaced wholesale.
func (t *Tree) Reload(n NodeID) {
	if !t.valid(n) {
		return
	}
	t.emit(Event{Kind: StructureChanged, Parent: t.nodes[n].parent, Node: n, Index: -1})
}

// SetHost replaces the host wrapped by n. A node cannot switch between folder
// and non-folder while it has a parent or children.
func (t *Tree) SetHost(n NodeID, host core.Host) error {
	if !t.valid(n) {
		return ErrUnknownNode
	}
	cur := &t.nodes[n]
	if cur.host.IsFolder() != host.IsFolder() && (cur.parent != NoNode || len(cur.children) > 0) {
		return ErrOrderViolation
	}

	if cur.host.ID != host.ID {
		if t.index[cur.host.ID] == n {
			delete(t.index, cur.host.ID)
		}
		t.index[host.ID] = n
	}
	cur.host = host

	if t.Attached(n) {
		idx := -1
		if cur.parent != NoNode {
			idx = t.IndexOf(cur.parent, n)
		}
		t.emit(Event{Kind: NodeChanged, Parent: cur.parent, Node: n, Index: idx})
	}
	return nil
}
