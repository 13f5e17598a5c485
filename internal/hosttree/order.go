package hosttree

import (
	"context"
	"fmt"
)

// kindSpan returns the index range of parent's children that share a kind
// with folder: the folder prefix or the hosts after it.
func kindSpan(t *Tree, parent NodeID, folder bool) (lo, hi int) {
	if folder {
		return 0, t.FolderCount(parent)
	}
	return t.FolderCount(parent), t.ChildCount(parent)
}

// sortAt picks a Sort for a node about to be inserted under parent at index.
// cur is kept when it already falls between the neighbours of the same kind.
func sortAt(t *Tree, parent NodeID, index int, folder bool, cur int64) int64 {
	lo, hi := kindSpan(t, parent, folder)
	hasPrev, hasNext := index > lo, index < hi

	var prev, next int64
	if hasPrev {
		prev = t.Host(t.ChildAt(parent, index-1)).Sort
	}
	if hasNext {
		next = t.Host(t.ChildAt(parent, index)).Sort
	}

	switch {
	case hasPrev && hasNext:
		if cur > prev && cur < next {
			return cur
		}
		if next-prev > 1 {
			return prev + (next-prev)/2
		}
		return prev + 1
	case hasPrev:
		if cur > prev {
			return cur
		}
		return prev + 1
	case hasNext:
		if cur < next {
			return cur
		}
		return next - 1
	}
	return cur
}

// restamp makes the Sort of parent's children of one kind strictly increasing
// in display order, so a rebuild from storage lists them the same way.
// Every host it changes is saved.
func restamp(ctx context.Context, t *Tree, repo Repository, parent NodeID, folder bool) error {
	lo, hi := kindSpan(t, parent, folder)
	var prev int64
	for i := lo; i < hi; i++ {
		n := t.ChildAt(parent, i)
		host := t.Host(n)
		if i > lo && host.Sort <= prev {
			host.Sort = prev + 1
			if err := repo.AddOrUpdate(ctx, host); err != nil {
				return fmt.Errorf("failed to reorder host %s: %w", host.ID, err)
			}
			if err := t.SetHost(n, host); err != nil {
				return err
			}
		}
		prev = host.Sort
	}
	return nil
}
