package hosttree

import (
	"sort"

	"github.com/artpar/hostdeck/internal/core"
)

// Build loads a tree from repository rows.
//
// Deleted hosts are skipped along with everything below them. Children are
// ordered folders first, then by sort key. Live hosts whose parent does not
// exist, is not a folder, or is part of a parent cycle are attached to the
// root; their corrected copies are returned so the caller can persist them.
func Build(list []core.Host) (*Tree, []core.Host) {
	t := NewTree()

	deleted := make(map[string]bool)
	byID := make(map[string]core.Host, len(list))
	for _, h := range list {
		if h.IsRoot() {
			continue
		}
		if h.Deleted {
			deleted[h.ID] = true
			continue
		}
		byID[h.ID] = h
	}

	children := make(map[string][]core.Host)
	for _, h := range byID {
		children[h.ParentID] = append(children[h.ParentID], h)
	}
	for _, group := range children {
		sortSiblings(group)
	}

	attached := make(map[string]bool, len(byID))
	var attach func(parent NodeID, parentID string)
	attach = func(parent NodeID, parentID string) {
		if !t.IsFolder(parent) {
			return
		}
		for _, h := range children[parentID] {
			if attached[h.ID] {
				continue
			}
			attached[h.ID] = true
			n := t.NewNode(h)
			t.Insert(n, parent, insertIndex(t, parent, h.IsFolder()))
			attach(n, h.ID)
		}
	}
	attach(t.root, core.RootID)

	var repaired []core.Host
	pending := make([]core.Host, 0)
	for _, h := range byID {
		if !attached[h.ID] && !underDeleted(h, byID, deleted) {
			pending = append(pending, h)
		}
	}
	sortSiblings(pending)

	for _, h := range pending {
		if attached[h.ID] {
			continue
		}
		// Climb to the topmost unattached ancestor so whole orphaned
		// branches move to the root together.
		top := h
		seen := map[string]bool{h.ID: true}
		for {
			p, ok := byID[top.ParentID]
			if !ok || !p.IsFolder() || seen[p.ID] || attached[p.ID] {
				break
			}
			seen[p.ID] = true
			top = p
		}

		fixed := top.Clone()
		fixed.ParentID = core.RootID
		repaired = append(repaired, fixed)

		attached[fixed.ID] = true
		n := t.NewNode(fixed)
		t.Insert(n, t.root, insertIndex(t, t.root, fixed.IsFolder()))
		attach(n, fixed.ID)
	}

	return t, repaired
}

// underDeleted reports whether h sits somewhere below a soft-deleted folder.
func underDeleted(h core.Host, byID map[string]core.Host, deleted map[string]bool) bool {
	seen := map[string]bool{h.ID: true}
	for cur := h; ; {
		if deleted[cur.ParentID] {
			return true
		}
		p, ok := byID[cur.ParentID]
		if !ok || seen[p.ID] {
			return false
		}
		seen[p.ID] = true
		cur = p
	}
}

func sortSiblings(list []core.Host) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		if a.Sort != b.Sort {
			return a.Sort < b.Sort
		}
		return a.ID < b.ID
	})
}

// insertIndex is the append position for a new child of parent.
func insertIndex(t *Tree, parent NodeID, folder bool) int {
	if folder {
		return t.FolderCount(parent)
	}
	return t.ChildCount(parent)
}
