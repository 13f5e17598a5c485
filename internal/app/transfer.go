package app

import (
	"context"
	"fmt"

	"github.com/artpar/hostdeck/internal/core"
	"github.com/artpar/hostdeck/internal/storage/filesystem"
)

// Export writes every live host to a YAML document at path.
func (a *App) Export(ctx context.Context, path string) (int, error) {
	list, err := a.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list hosts: %w", err)
	}
	if err := filesystem.WriteDocument(path, list); err != nil {
		return 0, err
	}
	return len(list), nil
}

// Import upserts the hosts of a YAML document and reloads the tree. Hosts
// keep their ids, so importing the same file twice is idempotent.
func (a *App) Import(ctx context.Context, path string) (int, error) {
	list, err := filesystem.ReadDocument(path)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, h := range list {
		if h.IsRoot() {
			continue
		}
		if h.ID == "" {
			h.ID = a.newID()
		}
		if h.ParentID == "" {
			h.ParentID = core.RootID
		}
		if err := a.store.AddOrUpdate(ctx, h); err != nil {
			return n, fmt.Errorf("failed to import host %s: %w", h.ID, err)
		}
		n++
	}
	a.logger.Info("imported hosts", "path", path, "count", n)
	return n, a.Reload(ctx)
}

// Purge permanently deletes soft-deleted hosts.
func (a *App) Purge(ctx context.Context) (int64, error) {
	n, err := a.store.Purge(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge hosts: %w", err)
	}
	a.logger.Info("purged deleted hosts", "count", n)
	return n, nil
}
