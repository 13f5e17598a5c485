package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/artpar/hostdeck/internal/core"
	"github.com/artpar/hostdeck/internal/hosts"
	"github.com/artpar/hostdeck/internal/hosts/sqlite"
	"github.com/artpar/hostdeck/internal/hosttree"
	"github.com/artpar/hostdeck/internal/storage/filesystem"
)

// ErrAmbiguous is returned when a host reference matches several nodes.
var ErrAmbiguous = errors.New("ambiguous host reference")

// App is the main application container with dependency injection.
type App struct {
	config    Config
	store     hosts.Store
	logger    *slog.Logger
	confirmer hosttree.Confirmer
	now       func() time.Time
	newID     func() string

	tree       *hosttree.Tree
	expansion  *hosttree.ExpansionSet
	dispatcher *hosttree.Dispatcher
}

// Option is a function that configures the App.
type Option func(*App)

// WithConfig sets the application configuration.
func WithConfig(cfg Config) Option {
	return func(a *App) {
		a.config = cfg
	}
}

// WithStore uses store instead of opening one from the config.
func WithStore(store hosts.Store) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithConfirmer sets how removals are confirmed. It is ignored when the
// config disables confirmation.
func WithConfirmer(c hosttree.Confirmer) Option {
	return func(a *App) {
		a.confirmer = c
	}
}

// WithClock sets the time source for update dates.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithIDGenerator sets the generator for new host ids.
func WithIDGenerator(newID func() string) Option {
	return func(a *App) {
		a.newID = newID
	}
}

// New creates the App, opening the store unless one was given, and loads
// the host tree.
func New(ctx context.Context, opts ...Option) (*App, error) {
	a := &App{
		config:    DefaultConfig(),
		confirmer: hosttree.AlwaysConfirm,
		now:       time.Now,
		newID:     core.NewID,
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.config.Validate(); err != nil {
		return nil, err
	}
	if a.logger == nil {
		a.logger = NewLogger(os.Stderr, a.config.LogLevel)
	}
	if !a.config.ConfirmRemoval {
		a.confirmer = hosttree.AlwaysConfirm
	}

	if a.store == nil {
		store, err := OpenStore(a.config)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	if err := a.Reload(ctx); err != nil {
		a.store.Close()
		return nil, err
	}
	return a, nil
}

// NewLogger returns a text logger at the named level. Unknown levels fall
// back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := parseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// OpenStore opens the repository selected by cfg.Storage.
func OpenStore(cfg Config) (hosts.Store, error) {
	dir := cfg.ResolvedDataDir()
	switch cfg.Storage {
	case StorageYAML:
		return filesystem.NewHostStore(dir)
	case StorageSQLite, "":
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		return sqlite.New(cfg.DatabasePath())
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

// Reload rebuilds the tree from the store. Hosts whose parent is missing are
// moved to the root and saved back.
func (a *App) Reload(ctx context.Context) error {
	live, err := a.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list hosts: %w", err)
	}
	deleted, err := a.store.ListDeleted(ctx)
	if err != nil {
		return fmt.Errorf("failed to list deleted hosts: %w", err)
	}

	tree, repaired := hosttree.Build(append(live, deleted...))
	for _, h := range repaired {
		a.logger.Warn("reattached orphaned host to root", "id", h.ID, "name", h.Name)
		if err := a.store.AddOrUpdate(ctx, h); err != nil {
			return fmt.Errorf("failed to save repaired host %s: %w", h.ID, err)
		}
	}

	if a.expansion != nil {
		a.expansion.Close()
	}
	a.tree = tree
	a.expansion = hosttree.NewExpansionSet(tree)
	a.dispatcher = hosttree.NewDispatcher(tree, hosttree.Options{
		Repository:    a.store,
		Expander:      a.expansion,
		Confirmer:     a.confirmer,
		Now:           a.now,
		NewID:         a.newID,
		CopySuffix:    a.config.CopySuffix,
		NewFolderName: a.config.NewFolderName,
		Logger:        a.logger,
	})
	a.logger.Debug("host tree loaded", "hosts", len(live), "deleted", len(deleted))
	return nil
}

// Config returns the application configuration.
func (a *App) Config() Config { return a.config }

// Store returns the host repository.
func (a *App) Store() hosts.Store { return a.store }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Tree returns the loaded host tree.
func (a *App) Tree() *hosttree.Tree { return a.tree }

// Expansion returns the expansion state of the tree.
func (a *App) Expansion() *hosttree.ExpansionSet { return a.expansion }

// Dispatcher returns the command dispatcher bound to the tree.
func (a *App) Dispatcher() *hosttree.Dispatcher { return a.dispatcher }

// Apply runs cmd through the dispatcher.
func (a *App) Apply(ctx context.Context, cmd hosttree.Command) (hosttree.Result, error) {
	return a.dispatcher.Apply(ctx, cmd)
}

// Find resolves a host reference. The reference is matched against host ids
// first, then against names of attached hosts. "/" and the root id name the
// root.
func (a *App) Find(ref string) (hosttree.NodeID, error) {
	t := a.tree
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "/" || ref == core.RootID {
		return t.Root(), nil
	}
	if n, ok := t.Lookup(ref); ok && t.Attached(n) {
		return n, nil
	}

	found := hosttree.NoNode
	var err error
	t.Walk(t.Root(), func(n hosttree.NodeID, _ int) bool {
		if n != t.Root() && t.Host(n).Name == ref {
			if found != hosttree.NoNode {
				err = fmt.Errorf("%w: %q", ErrAmbiguous, ref)
				return false
			}
			found = n
		}
		return err == nil
	})
	if err != nil {
		return hosttree.NoNode, err
	}
	if found == hosttree.NoNode {
		return hosttree.NoNode, fmt.Errorf("%w: %q", hosts.ErrNotFound, ref)
	}
	return found, nil
}

// FindAll resolves every reference or fails on the first unknown one.
func (a *App) FindAll(refs []string) ([]hosttree.NodeID, error) {
	nodes := make([]hosttree.NodeID, 0, len(refs))
	for _, ref := range refs {
		n, err := a.Find(ref)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.expansion != nil {
		a.expansion.Close()
	}
	return a.store.Close()
}
