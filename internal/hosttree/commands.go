package hosttree

import "github.com/artpar/hostdeck/internal/core"

// Command is a user gesture translated into a tree edit.
type Command interface {
	Kind() string
}

// Move drops a drag payload onto a container.
type Move struct {
	Payload *DragPayload
	Target  DropTarget
}

// Reorder moves a single node to a new index within its current parent.
type Reorder struct {
	Node  NodeID
	Index int
}

// Copy duplicates each node next to itself.
type Copy struct {
	Nodes []NodeID
}

// Remove soft-deletes the nodes after confirmation.
type Remove struct {
	Nodes []NodeID
}

// Rename changes a node's name. Blank or unchanged names are ignored.
type Rename struct {
	Node NodeID
	Name string
}

// NewFolder creates a folder inside Parent. An empty Name uses the default.
type NewFolder struct {
	Parent NodeID
	Name   string
}

// NewHost adds Host inside Parent.
type NewHost struct {
	Parent NodeID
	Host   core.Host
}

// UpdateHost replaces the connection settings of a non-folder node.
type UpdateHost struct {
	Node NodeID
	Host core.Host
}

// Refresh reloads a folder while keeping its expanded subfolders open.
type Refresh struct {
	Node NodeID
}

// ExpandAll expands the nodes and everything below them.
type ExpandAll struct {
	Nodes []NodeID
}

// CollapseAll collapses the nodes and everything below them.
type CollapseAll struct {
	Nodes []NodeID
}

func (Move) Kind() string        { return "move" }
func (Reorder) Kind() string     { return "reorder" }
func (Copy) Kind() string        { return "copy" }
func (Remove) Kind() string      { return "remove" }
func (Rename) Kind() string      { return "rename" }
func (NewFolder) Kind() string   { return "new-folder" }
func (NewHost) Kind() string     { return "new-host" }
func (UpdateHost) Kind() string  { return "update-host" }
func (Refresh) Kind() string     { return "refresh" }
func (ExpandAll) Kind() string   { return "expand-all" }
func (CollapseAll) Kind() string { return "collapse-all" }

// Result describes what a command did. Applied is false when the command was
// rejected or had nothing to do. Nodes lists the nodes created or changed.
type Result struct {
	Applied bool
	Nodes   []NodeID
}
