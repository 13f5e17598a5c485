package hosttree

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/hostdeck/internal/core"
)

// DefaultCopySuffix is appended to the name of a copied top-level node.
const DefaultCopySuffix = "copy"

// CopyError reports a copy that failed part way. Persisted lists the ids
// already written to the repository; they are not rolled back.
type CopyError struct {
	Persisted []string
	Err       error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy failed after %d hosts were saved: %v", len(e.Persisted), e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// Copier deep-copies subtrees with fresh identities.
type Copier struct {
	tree   *Tree
	repo   Repository
	now    func() time.Time
	newID  func() string
	suffix string
}

// NewCopier creates a copy executor. Zero values select time.Now,
// core.NewID and DefaultCopySuffix.
func NewCopier(t *Tree, repo Repository, now func() time.Time, newID func() string, suffix string) *Copier {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = core.NewID
	}
	if suffix == "" {
		suffix = DefaultCopySuffix
	}
	return &Copier{tree: t, repo: repo, now: now, newID: newID, suffix: suffix}
}

// Copy duplicates n and its subtree and inserts the copy right after n.
// The root and detached nodes cannot be copied.
func (c *Copier) Copy(ctx context.Context, n NodeID) (NodeID, error) {
	t := c.tree
	parent := t.Parent(n)
	if n == t.Root() || !t.Attached(n) {
		return NoNode, nil
	}

	copied, err := c.CopyInto(ctx, n, t.Host(parent).ID)
	if err != nil {
		return NoNode, err
	}

	if err := t.Insert(copied, parent, t.IndexOf(parent, n)+1); err != nil {
		return NoNode, fmt.Errorf("failed to insert copy of %s: %w", t.Host(n).ID, err)
	}
	if err := restamp(ctx, t, c.repo, parent, t.IsFolder(copied)); err != nil {
		return copied, err
	}
	return copied, nil
}

// CopyInto builds a detached copy of n's subtree whose top node has parentID.
// Every copy is persisted as soon as it is created. When a save fails the
// half-built copy is dropped from the tree; what was already saved stays
// in the repository and is listed in the CopyError.
func (c *Copier) CopyInto(ctx context.Context, n NodeID, parentID string) (NodeID, error) {
	run := &copyRun{}
	copied, err := c.copyNode(ctx, n, parentID, 0, run)
	if err != nil {
		for _, ghost := range run.created {
			c.tree.forget(ghost)
		}
		return NoNode, &CopyError{Persisted: run.persisted, Err: err}
	}
	return copied, nil
}

type copyRun struct {
	persisted []string
	created   []NodeID
}

func (c *Copier) copyNode(ctx context.Context, n NodeID, parentID string, level int, run *copyRun) (NodeID, error) {
	t := c.tree
	src := t.Host(n)
	now := c.now().UnixMilli()

	host := src.Clone()
	host.ID = c.newID()
	host.ParentID = parentID
	host.Sort = src.Sort + 1
	host.CreateDate = now
	host.UpdateDate = now
	if level == 0 {
		host.Name = strings.TrimSpace(src.Name + " " + c.suffix)
	}

	if err := c.repo.AddOrUpdate(ctx, host); err != nil {
		return NoNode, fmt.Errorf("failed to save copy of %s: %w", src.ID, err)
	}
	run.persisted = append(run.persisted, host.ID)

	copied := t.NewNode(host)
	run.created = append(run.created, copied)
	if !src.IsFolder() {
		return copied, nil
	}

	for _, child := range t.Children(n) {
		cc, err := c.copyNode(ctx, child, host.ID, level+1, run)
		if err != nil {
			return NoNode, err
		}
		if err := t.Insert(cc, copied, insertIndex(t, copied, t.IsFolder(cc))); err != nil {
			return NoNode, err
		}
	}
	return copied, nil
}
