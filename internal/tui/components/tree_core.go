package components

import "github.com/artpar/hostdeck/internal/hosttree"

// This file contains pure functions for tree operations.
// These functions take values and return values - no mutation, no side effects.

// MoveCursor computes new cursor position within bounds.
func MoveCursor(cursor, delta, itemCount int) int {
	if itemCount == 0 {
		return 0
	}
	newCursor := cursor + delta
	if newCursor < 0 {
		return 0
	}
	if newCursor >= itemCount {
		return itemCount - 1
	}
	return newCursor
}

// AdjustOffset ensures cursor is visible within viewport.
func AdjustOffset(cursor, offset, visibleHeight int) int {
	if visibleHeight < 1 {
		visibleHeight = 1
	}
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+visibleHeight {
		return cursor - visibleHeight + 1
	}
	return offset
}

// RowIndex returns the row showing n, or -1.
func RowIndex(rows []hosttree.Row, n hosttree.NodeID) int {
	for i, r := range rows {
		if r.Node == n {
			return i
		}
	}
	return -1
}

// ParentRow returns the index of the row holding the parent of the row at
// cursor, or -1 for top-level rows.
func ParentRow(rows []hosttree.Row, cursor int) int {
	if cursor < 0 || cursor >= len(rows) {
		return -1
	}
	depth := rows[cursor].Depth
	for i := cursor - 1; i >= 0; i-- {
		if rows[i].Depth < depth {
			return i
		}
	}
	return -1
}

// ActionNodes returns the nodes a key acts on: the selection when there is
// one, otherwise the node under the cursor.
func ActionNodes(selected []hosttree.NodeID, current hosttree.NodeID) []hosttree.NodeID {
	if len(selected) > 0 {
		return selected
	}
	if current == hosttree.NoNode {
		return nil
	}
	return []hosttree.NodeID{current}
}

// DropTargetFor returns where a drop relative to n lands. Without before, a
// folder receives the drop itself and a host hands it to its parent, both
// appending. With before, the drop goes into n's parent at n's position.
func DropTargetFor(t *hosttree.Tree, n hosttree.NodeID, before bool) hosttree.DropTarget {
	if n == hosttree.NoNode {
		return hosttree.DropTarget{Container: t.Root(), Index: hosttree.AppendIndex}
	}
	if before {
		parent := t.Parent(n)
		return hosttree.DropTarget{Container: parent, Index: t.IndexOf(parent, n)}
	}
	if t.IsFolder(n) {
		return hosttree.DropTarget{Container: n, Index: hosttree.AppendIndex}
	}
	return hosttree.DropTarget{Container: t.Parent(n), Index: hosttree.AppendIndex}
}
