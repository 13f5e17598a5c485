package hosttree

import (
	"context"
	"fmt"
	"time"

	"github.com/artpar/hostdeck/internal/core"
)

// Confirmer asks the user to approve a destructive operation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm approves every prompt.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

// Remover soft-deletes nodes.
type Remover struct {
	tree    *Tree
	repo    Repository
	confirm Confirmer
	now     func() time.Time
}

// NewRemover creates a removal executor.
func NewRemover(t *Tree, repo Repository, confirm Confirmer, now func() time.Time) *Remover {
	if now == nil {
		now = time.Now
	}
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	return &Remover{tree: t, repo: repo, confirm: confirm, now: now}
}

// Remove marks the nodes and everything below them deleted, persists them
// and detaches the nodes. Nothing happens if the root is among them or the
// user declines. It returns the number of detached nodes.
func (r *Remover) Remove(ctx context.Context, nodes []NodeID) (int, error) {
	t := r.tree
	var targets []NodeID
	for _, n := range nodes {
		if n == t.Root() {
			return 0, nil
		}
		if t.Attached(n) {
			targets = append(targets, n)
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	prompt := fmt.Sprintf("Delete %d selected item(s)?", len(targets))
	if len(targets) == 1 {
		prompt = fmt.Sprintf("Delete %q?", t.Host(targets[0]).Name)
	}
	if !r.confirm.Confirm(prompt) {
		return 0, nil
	}

	removed := 0
	for _, n := range targets {
		if !t.Attached(n) {
			// Already gone with an ancestor earlier in the list.
			continue
		}
		now := r.now()
		subtree := append([]NodeID{n}, t.Descendants(n)...)
		deleted := make([]core.Host, len(subtree))
		for i, d := range subtree {
			host := t.Host(d).Touched(now)
			host.Deleted = true
			if err := r.repo.AddOrUpdate(ctx, host); err != nil {
				return removed, fmt.Errorf("failed to delete host %s: %w", host.ID, err)
			}
			deleted[i] = host
		}
		t.Remove(n)
		for i, d := range subtree {
			t.SetHost(d, deleted[i])
		}
		removed++
	}
	return removed, nil
}
