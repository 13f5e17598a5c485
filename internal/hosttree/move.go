package hosttree

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/hostdeck/internal/core"
)

// Repository is the write-through persistence the executors need.
type Repository interface {
	AddOrUpdate(ctx context.Context, host core.Host) error
}

// Mover reparents dragged nodes.
type Mover struct {
	tree      *Tree
	repo      Repository
	expander  Expander
	selection *Selection
	now       func() time.Time
}

// NewMover creates a move executor. selection may be nil.
func NewMover(t *Tree, repo Repository, exp Expander, sel *Selection, now func() time.Time) *Mover {
	if now == nil {
		now = time.Now
	}
	if sel == nil {
		sel = &Selection{}
	}
	return &Mover{tree: t, repo: repo, expander: exp, selection: sel, now: now}
}

// Move drops p at target. It returns false without touching anything when
// the drop is rejected. Each moved node gets a Sort between its new
// neighbours so the drop position survives a reload. On a repository failure
// the failing node is put back where it was and the error is returned; nodes
// moved before it stay moved.
func (m *Mover) Move(ctx context.Context, p *DragPayload, target DropTarget) (bool, error) {
	t := m.tree
	if !t.CanDrop(p, target) {
		return false, nil
	}
	c := target.Container

	expanded := captureExpanded(t, m.expander, p.nodes, true)
	expanded[t.Host(c).ID] = true

	for _, e := range p.nodes {
		oldParent := t.Parent(e)
		oldIndex := t.IndexOf(oldParent, e)
		oldHost := t.Host(e)

		t.Remove(e)
		folder := t.IsFolder(e)
		index := m.dropIndex(e, c, target.Index)

		host := oldHost.Touched(m.now())
		host.ParentID = t.Host(c).ID
		host.Sort = sortAt(t, c, index, folder, host.Sort)
		if err := m.repo.AddOrUpdate(ctx, host); err != nil {
			err = fmt.Errorf("failed to move host %s: %w", oldHost.ID, err)
			if rerr := t.Insert(e, oldParent, oldIndex); rerr != nil {
				err = errors.Join(err, fmt.Errorf("failed to restore host %s: %w", oldHost.ID, rerr))
			}
			restoreExpanded(t, m.expander, c, expanded)
			return true, err
		}
		if err := t.SetHost(e, host); err != nil {
			return true, err
		}

		if err := t.Insert(e, c, index); err != nil {
			return true, fmt.Errorf("failed to insert host %s: %w", host.ID, err)
		}
		if err := restamp(ctx, t, m.repo, c, folder); err != nil {
			restoreExpanded(t, m.expander, c, expanded)
			return true, err
		}
		m.selection.Set(e)
	}

	restoreExpanded(t, m.expander, c, expanded)
	return true, nil
}

func (m *Mover) dropIndex(e, c NodeID, index int) int {
	t := m.tree
	if index == AppendIndex {
		return insertIndex(t, c, t.IsFolder(e))
	}
	if t.IsFolder(e) {
		return min(index, t.FolderCount(c))
	}
	// Folders dropped earlier in the same gesture grow the prefix.
	return max(min(index, t.ChildCount(c)), t.FolderCount(c))
}
