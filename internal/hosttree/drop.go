package hosttree

// AppendIndex as a drop index means "append to the container".
const AppendIndex = -1

// DragPayload carries dragged nodes between gestures of the same tree.
// It only has meaning for the tree that created it.
type DragPayload struct {
	tree  *Tree
	nodes []NodeID
}

// NewDragPayload builds a payload from the selected nodes. Nodes whose
// ancestor is also selected are dropped since the ancestor carries them.
// Returns nil if nothing can be dragged or the root is selected.
func NewDragPayload(t *Tree, selected []NodeID) *DragPayload {
	var nodes []NodeID
	for _, n := range selected {
		if n == t.Root() {
			return nil
		}
		if !t.Attached(n) {
			continue
		}
		nodes = append(nodes, n)
	}

	kept := nodes[:0:0]
	for _, n := range nodes {
		covered := false
		for _, other := range nodes {
			if other != n && t.IsAncestor(other, n) {
				covered = true
				break
			}
		}
		if !covered && !containsNode(kept, n) {
			kept = append(kept, n)
		}
	}

	if len(kept) == 0 {
		return nil
	}
	return &DragPayload{tree: t, nodes: kept}
}

// Nodes returns the dragged nodes in selection order.
func (p *DragPayload) Nodes() []NodeID {
	if p == nil {
		return nil
	}
	return append([]NodeID(nil), p.nodes...)
}

// DropTarget is a drop location: a container and a child index, or
// AppendIndex.
type DropTarget struct {
	Container NodeID
	Index     int
}

// CanDrop reports whether p may be dropped at target. It only reads the
// current tree state.
func (t *Tree) CanDrop(p *DragPayload, target DropTarget) bool {
	if p == nil || p.tree != t || len(p.nodes) == 0 {
		return false
	}
	c := target.Container
	if !t.Attached(c) || !t.IsFolder(c) {
		return false
	}
	if target.Index < AppendIndex || target.Index > t.ChildCount(c) {
		return false
	}

	folderCount := t.FolderCount(c)
	for _, e := range p.nodes {
		if !t.Attached(e) {
			return false
		}
		if c == e || t.IsAncestor(e, c) {
			return false
		}

		if t.IsFolder(e) {
			if target.Index > folderCount {
				return false
			}
		} else if target.Index != AppendIndex && target.Index < folderCount {
			return false
		}

		// Dropping right above or below itself would not change the order.
		if t.Parent(e) == c && target.Index != AppendIndex {
			idx := t.IndexOf(c, e)
			if target.Index == idx || target.Index == idx+1 {
				return false
			}
		}
	}
	return true
}

func containsNode(list []NodeID, n NodeID) bool {
	for _, cur := range list {
		if cur == n {
			return true
		}
	}
	return false
}
