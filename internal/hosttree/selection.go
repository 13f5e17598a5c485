package hosttree

import "github.com/artpar/hostdeck/internal/core"

// Resolve turns selected paths into nodes. Without include it returns the
// selected nodes themselves; with include it also returns every descendant,
// breadth first, so ancestors always precede their descendants. Paths that
// point at unknown or detached nodes are skipped.
func Resolve(t *Tree, paths []Path, include bool) []NodeID {
	seen := make(map[NodeID]bool)
	var queue []NodeID
	for _, p := range paths {
		n := p.Last()
		if !t.Attached(n) || seen[n] {
			continue
		}
		seen[n] = true
		queue = append(queue, n)
	}
	if !include {
		return queue
	}

	// Nodes reached through a selected ancestor are visited from it.
	top := queue[:0:0]
	for _, n := range queue {
		covered := false
		for _, other := range queue {
			if t.IsAncestor(other, n) {
				covered = true
				break
			}
		}
		if covered {
			delete(seen, n)
		} else {
			top = append(top, n)
		}
	}
	queue = top

	var out []NodeID
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		out = append(out, n)
		for _, c := range t.Children(n) {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	return out
}

// PathsOf returns the root paths of the given nodes.
func PathsOf(t *Tree, nodes ...NodeID) []Path {
	paths := make([]Path, 0, len(nodes))
	for _, n := range nodes {
		paths = append(paths, t.PathToRoot(n))
	}
	return paths
}

// Selection is the set of selected nodes, in selection order.
type Selection struct {
	nodes []NodeID
}

// Set replaces the selection.
func (s *Selection) Set(nodes ...NodeID) {
	s.nodes = append(s.nodes[:0], nodes...)
}

// Toggle adds n to the selection or removes it.
func (s *Selection) Toggle(n NodeID) {
	for i, cur := range s.nodes {
		if cur == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
	s.nodes = append(s.nodes, n)
}

// Contains reports whether n is selected.
func (s *Selection) Contains(n NodeID) bool {
	for _, cur := range s.nodes {
		if cur == n {
			return true
		}
	}
	return false
}

// Clear empties the selection.
func (s *Selection) Clear() { s.nodes = s.nodes[:0] }

// Nodes returns the selected nodes.
func (s *Selection) Nodes() []NodeID {
	return append([]NodeID(nil), s.nodes...)
}

// Len returns the number of selected nodes.
func (s *Selection) Len() int { return len(s.nodes) }

// OpenTargets returns the connectable hosts in and below the selection.
func OpenTargets(t *Tree, paths []Path) []core.Host {
	var out []core.Host
	for _, n := range Resolve(t, paths, true) {
		if h := t.Host(n); !h.IsFolder() {
			out = append(out, h)
		}
	}
	return out
}

// SFTPTargets returns the SSH hosts in and below the selection. With asPty
// set they are rewritten to the SFTP PTY protocol for the command variant.
func SFTPTargets(t *Tree, paths []Path, asPty bool) []core.Host {
	var out []core.Host
	for _, n := range Resolve(t, paths, true) {
		h := t.Host(n)
		if h.Protocol != core.ProtocolSSH {
			continue
		}
		if asPty {
			h = h.Clone()
			h.Protocol = core.ProtocolSFTPPty
		}
		out = append(out, h)
	}
	return out
}
