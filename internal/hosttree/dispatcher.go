package hosttree

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/artpar/hostdeck/internal/core"
)

// DefaultFolderName names folders created without an explicit name.
const DefaultFolderName = "New Folder"

// Options holds the collaborators of a Dispatcher.
type Options struct {
	Repository    Repository
	Expander      Expander   // defaults to an ExpansionSet on the tree
	Confirmer     Confirmer  // defaults to AlwaysConfirm
	Selection     *Selection // defaults to an empty selection
	Now           func() time.Time
	NewID         func() string
	CopySuffix    string
	NewFolderName string
	Logger        *slog.Logger
}

// Dispatcher validates and applies commands against one tree.
type Dispatcher struct {
	tree       *Tree
	repo       Repository
	expander   Expander
	selection  *Selection
	now        func() time.Time
	newID      func() string
	folderName string
	log        *slog.Logger

	mover   *Mover
	copier  *Copier
	remover *Remover
}

// NewDispatcher wires the executors for t.
func NewDispatcher(t *Tree, opts Options) *Dispatcher {
	if opts.Expander == nil {
		opts.Expander = NewExpansionSet(t)
	}
	if opts.Selection == nil {
		opts.Selection = &Selection{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = core.NewID
	}
	if opts.NewFolderName == "" {
		opts.NewFolderName = DefaultFolderName
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Dispatcher{
		tree:       t,
		repo:       opts.Repository,
		expander:   opts.Expander,
		selection:  opts.Selection,
		now:        opts.Now,
		newID:      opts.NewID,
		folderName: opts.NewFolderName,
		log:        opts.Logger,
		mover:      NewMover(t, opts.Repository, opts.Expander, opts.Selection, opts.Now),
		copier:     NewCopier(t, opts.Repository, opts.Now, opts.NewID, opts.CopySuffix),
		remover:    NewRemover(t, opts.Repository, opts.Confirmer, opts.Now),
	}
}

// Tree returns the tree the dispatcher edits.
func (d *Dispatcher) Tree() *Tree { return d.tree }

// Expander returns the expansion state commands act on.
func (d *Dispatcher) Expander() Expander { return d.expander }

// Selection returns the selection that follows moved and created nodes.
func (d *Dispatcher) Selection() *Selection { return d.selection }

// Apply runs cmd. Rejected commands return a Result with Applied false and a
// nil error; repository failures are returned as errors.
func (d *Dispatcher) Apply(ctx context.Context, cmd Command) (Result, error) {
	var (
		res Result
		err error
	)

	switch c := cmd.(type) {
	case Move:
		res, err = d.move(ctx, c.Payload, c.Target)
	case Reorder:
		res, err = d.reorder(ctx, c)
	case Copy:
		res, err = d.copy(ctx, c)
	case Remove:
		res, err = d.remove(ctx, c)
	case Rename:
		res, err = d.rename(ctx, c)
	case NewFolder:
		res, err = d.newFolder(ctx, c)
	case NewHost:
		res, err = d.newHost(ctx, c)
	case UpdateHost:
		res, err = d.updateHost(ctx, c)
	case Refresh:
		res = d.refresh(c)
	case ExpandAll:
		res = d.expandAll(c)
	case CollapseAll:
		res = d.collapseAll(c)
	default:
		return Result{}, fmt.Errorf("unsupported command %T", cmd)
	}

	switch {
	case err != nil:
		d.log.Error("command failed", "command", cmd.Kind(), "error", err)
	case res.Applied:
		d.log.Debug("command applied", "command", cmd.Kind(), "nodes", len(res.Nodes))
	default:
		d.log.Debug("command rejected", "command", cmd.Kind())
	}
	return res, err
}

func (d *Dispatcher) move(ctx context.Context, p *DragPayload, target DropTarget) (Result, error) {
	moved, err := d.mover.Move(ctx, p, target)
	if !moved {
		return Result{}, nil
	}
	return Result{Applied: err == nil, Nodes: p.Nodes()}, err
}

func (d *Dispatcher) reorder(ctx context.Context, c Reorder) (Result, error) {
	parent := d.tree.Parent(c.Node)
	if parent == NoNode {
		return Result{}, nil
	}
	p := NewDragPayload(d.tree, []NodeID{c.Node})
	return d.move(ctx, p, DropTarget{Container: parent, Index: c.Index})
}

func (d *Dispatcher) copy(ctx context.Context, c Copy) (Result, error) {
	nodes := Resolve(d.tree, PathsOf(d.tree, c.Nodes...), false)
	for _, n := range nodes {
		if n == d.tree.Root() {
			return Result{}, nil
		}
	}

	var res Result
	for _, n := range nodes {
		copied, err := d.copier.Copy(ctx, n)
		if err != nil {
			return res, err
		}
		if copied == NoNode {
			continue
		}
		d.selection.Set(copied)
		res.Applied = true
		res.Nodes = append(res.Nodes, copied)
	}
	return res, nil
}

func (d *Dispatcher) remove(ctx context.Context, c Remove) (Result, error) {
	nodes := Resolve(d.tree, PathsOf(d.tree, c.Nodes...), false)
	for _, n := range nodes {
		if n == d.tree.Root() {
			return Result{}, nil
		}
	}

	removed, err := d.remover.Remove(ctx, nodes)
	if removed > 0 {
		d.selection.Clear()
	}
	if removed == 0 {
		return Result{}, err
	}
	return Result{Applied: err == nil, Nodes: nodes}, err
}

func (d *Dispatcher) rename(ctx context.Context, c Rename) (Result, error) {
	t := d.tree
	name := strings.TrimSpace(c.Name)
	if !t.Attached(c.Node) || c.Node == t.Root() || name == "" || name == t.Host(c.Node).Name {
		return Result{}, nil
	}

	host := t.Host(c.Node).Touched(d.now())
	host.Name = name
	if err := d.repo.AddOrUpdate(ctx, host); err != nil {
		return Result{}, fmt.Errorf("failed to rename host %s: %w", host.ID, err)
	}
	if err := t.SetHost(c.Node, host); err != nil {
		return Result{}, err
	}
	return Result{Applied: true, Nodes: []NodeID{c.Node}}, nil
}

func (d *Dispatcher) newFolder(ctx context.Context, c NewFolder) (Result, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = d.folderName
	}
	now := d.now().UnixMilli()
	host := core.NewFolder(name, "")
	host.ID = d.newID()
	host.Sort = now
	host.CreateDate = now
	host.UpdateDate = now
	return d.add(ctx, c.Parent, host)
}

func (d *Dispatcher) newHost(ctx context.Context, c NewHost) (Result, error) {
	host := c.Host.Clone()
	if host.ID == "" {
		host.ID = d.newID()
	}
	if _, taken := d.tree.Lookup(host.ID); taken {
		return Result{}, fmt.Errorf("host %s already exists", host.ID)
	}
	now := d.now().UnixMilli()
	if host.Sort == 0 {
		host.Sort = now
	}
	if host.CreateDate == 0 {
		host.CreateDate = now
	}
	host.UpdateDate = now
	host.Deleted = false
	return d.add(ctx, c.Parent, host)
}

func (d *Dispatcher) add(ctx context.Context, parent NodeID, host core.Host) (Result, error) {
	t := d.tree
	if !t.Attached(parent) || !t.IsFolder(parent) {
		return Result{}, nil
	}
	host.ParentID = t.Host(parent).ID
	// Hosts created within the same millisecond still sort after their
	// older siblings.
	index := insertIndex(t, parent, host.IsFolder())
	host.Sort = sortAt(t, parent, index, host.IsFolder(), host.Sort)

	if err := d.repo.AddOrUpdate(ctx, host); err != nil {
		return Result{}, fmt.Errorf("failed to save host %s: %w", host.ID, err)
	}
	n := t.NewNode(host)
	if err := t.Insert(n, parent, index); err != nil {
		return Result{}, err
	}
	d.selection.Set(n)
	return Result{Applied: true, Nodes: []NodeID{n}}, nil
}

func (d *Dispatcher) updateHost(ctx context.Context, c UpdateHost) (Result, error) {
	t := d.tree
	if !t.Attached(c.Node) || t.IsFolder(c.Node) || c.Host.IsFolder() {
		return Result{}, nil
	}

	cur := t.Host(c.Node)
	host := c.Host.Clone()
	host.ID = cur.ID
	host.ParentID = cur.ParentID
	host.Sort = cur.Sort
	host.CreateDate = cur.CreateDate
	host.UpdateDate = d.now().UnixMilli()
	host.Deleted = false
	if strings.TrimSpace(host.Name) == "" {
		host.Name = cur.Name
	}

	if err := d.repo.AddOrUpdate(ctx, host); err != nil {
		return Result{}, fmt.Errorf("failed to update host %s: %w", host.ID, err)
	}
	if err := t.SetHost(c.Node, host); err != nil {
		return Result{}, err
	}
	t.Reload(c.Node)
	return Result{Applied: true, Nodes: []NodeID{c.Node}}, nil
}

func (d *Dispatcher) refresh(c Refresh) Result {
	t := d.tree
	if !t.Attached(c.Node) || !t.IsFolder(c.Node) {
		return Result{}
	}
	expanded := captureExpanded(t, d.expander, t.Descendants(c.Node), false)
	t.Reload(c.Node)
	restoreExpanded(t, d.expander, c.Node, expanded)
	return Result{Applied: true, Nodes: []NodeID{c.Node}}
}

func (d *Dispatcher) expandAll(c ExpandAll) Result {
	nodes := Resolve(d.tree, PathsOf(d.tree, c.Nodes...), true)
	for _, n := range nodes {
		d.expander.Expand(d.tree.PathToRoot(n))
	}
	return Result{Applied: len(nodes) > 0, Nodes: nodes}
}

func (d *Dispatcher) collapseAll(c CollapseAll) Result {
	nodes := Resolve(d.tree, PathsOf(d.tree, c.Nodes...), true)
	for i := len(nodes) - 1; i >= 0; i-- {
		d.expander.Collapse(d.tree.PathToRoot(nodes[i]))
	}
	return Result{Applied: len(nodes) > 0, Nodes: nodes}
}
