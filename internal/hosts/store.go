package hosts

import (
	"context"
	"errors"

	"github.com/artpar/hostdeck/internal/core"
)

// Common errors.
var (
	ErrNotFound    = errors.New("host not found")
	ErrInvalidID   = errors.New("invalid host ID")
	ErrStoreClosed = errors.New("host store is closed")
)

// Store defines the interface for host persistence.
// Removal is soft: callers set Deleted and upsert. Purge erases soft-deleted rows.
type Store interface {
	// AddOrUpdate inserts or replaces a host by ID.
	AddOrUpdate(ctx context.Context, host core.Host) error

	// Get retrieves a host by ID, including soft-deleted ones.
	Get(ctx context.Context, id string) (core.Host, error)

	// List returns all live (non-deleted) hosts.
	List(ctx context.Context) ([]core.Host, error)

	// ListDeleted returns all soft-deleted hosts.
	ListDeleted(ctx context.Context) ([]core.Host, error)

	// Purge permanently removes soft-deleted hosts and returns how many were removed.
	Purge(ctx context.Context) (int64, error)

	// Close closes the store.
	Close() error
}
