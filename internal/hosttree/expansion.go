package hosttree

// Expander is the presentation layer's expansion state. Paths behave like a
// tree widget's: a path counts as expanded only if all of its nodes are.
type Expander interface {
	IsExpanded(p Path) bool
	Expand(p Path)
	Collapse(p Path)
}

// ExpansionSet is an in-memory Expander bound to one tree. The root is
// always expanded. Like a tree widget it forgets the expansion of nodes that
// are removed or whose structure is reloaded.
type ExpansionSet struct {
	tree        *Tree
	expanded    map[NodeID]bool
	unsubscribe func()
}

var _ Expander = (*ExpansionSet)(nil)

// NewExpansionSet creates an expansion set that tracks t's change events.
func NewExpansionSet(t *Tree) *ExpansionSet {
	s := &ExpansionSet{tree: t, expanded: make(map[NodeID]bool)}
	s.unsubscribe = t.Subscribe(s.onChange)
	return s
}

// Close stops tracking tree events.
func (s *ExpansionSet) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *ExpansionSet) onChange(e Event) {
	switch e.Kind {
	case NodeRemoved:
		s.forget(e.Node, true)
	case StructureChanged:
		s.forget(e.Node, e.Node != s.tree.Root())
	}
}

func (s *ExpansionSet) forget(n NodeID, self bool) {
	if self {
		delete(s.expanded, n)
	}
	for _, d := range s.tree.Descendants(n) {
		delete(s.expanded, d)
	}
}

func (s *ExpansionSet) isOpen(n NodeID) bool {
	return n == s.tree.Root() || s.expanded[n]
}

// IsExpanded reports whether every node on p is expanded.
func (s *ExpansionSet) IsExpanded(p Path) bool {
	if len(p) == 0 {
		return false
	}
	for _, n := range p {
		if !s.isOpen(n) {
			return false
		}
	}
	return true
}

// Expand expands p and all of its ancestors. Leaves cannot be expanded.
func (s *ExpansionSet) Expand(p Path) {
	for i, n := range p {
		if i == len(p)-1 && !s.tree.IsFolder(n) {
			return
		}
		if n != s.tree.Root() {
			s.expanded[n] = true
		}
	}
}

// Collapse collapses the last node of p.
func (s *ExpansionSet) Collapse(p Path) {
	if n := p.Last(); n != NoNode {
		delete(s.expanded, n)
	}
}

// Row is one visible line of the tree.
type Row struct {
	Node  NodeID
	Depth int
}

// VisibleRows lists the nodes below the root that are visible under exp, in
// display order. Depth 0 is a direct child of the root.
func VisibleRows(t *Tree, exp Expander) []Row {
	var rows []Row
	t.Walk(t.Root(), func(n NodeID, depth int) bool {
		if n == t.Root() {
			return true
		}
		rows = append(rows, Row{Node: n, Depth: depth - 1})
		return t.IsFolder(n) && exp.IsExpanded(t.PathToRoot(n))
	})
	return rows
}

// captureExpanded records which of the given nodes (and, when deep is set,
// their descendants) are expanded, keyed by host id so the set survives
// reparenting.
func captureExpanded(t *Tree, exp Expander, nodes []NodeID, deep bool) map[string]bool {
	ids := make(map[string]bool)
	check := func(n NodeID) {
		if t.IsFolder(n) && exp.IsExpanded(t.PathToRoot(n)) {
			ids[t.Host(n).ID] = true
		}
	}
	for _, n := range nodes {
		check(n)
		if deep {
			for _, d := range t.Descendants(n) {
				check(d)
			}
		}
	}
	return ids
}

// restoreExpanded expands container, then every node below it whose host id
// was captured.
func restoreExpanded(t *Tree, exp Expander, container NodeID, ids map[string]bool) {
	exp.Expand(t.PathToRoot(container))
	for _, d := range t.Descendants(container) {
		if ids[t.Host(d).ID] {
			exp.Expand(t.PathToRoot(d))
		}
	}
}
