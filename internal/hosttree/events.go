package hosttree

// ChangeKind describes a structural change to the tree.
type ChangeKind int

const (
	NodeInserted ChangeKind = iota
	NodeRemoved
	NodeChanged
	StructureChanged
)

func (k ChangeKind) String() string {
	switch k {
	case NodeInserted:
		return "inserted"
	case NodeRemoved:
		return "removed"
	case NodeChanged:
		return "changed"
	case StructureChanged:
		return "structure-changed"
	default:
		return "unknown"
	}
}

// Event identifies which node changed. Index is the child position for
// inserts and removals, -1 otherwise.
type Event struct {
	Kind   ChangeKind
	Parent NodeID
	Node   NodeID
	Index  int
}

// Listener receives tree change events synchronously.
type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// Subscribe registers l and returns a function that unregisters it.
func (t *Tree) Subscribe(l Listener) func() {
	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, listenerEntry{id: id, fn: l})
	return func() {
		for i, e := range t.listeners {
			if e.id == id {
				t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
				return
			}
		}
	}
}

func (t *Tree) emit(e Event) {
	for _, l := range append([]listenerEntry(nil), t.listeners...) {
		l.fn(e)
	}
}
