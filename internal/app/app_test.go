package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/hostdeck/internal/core"
	"github.com/artpar/hostdeck/internal/hosts"
	"github.com/artpar/hostdeck/internal/hosts/sqlite"
	"github.com/artpar/hostdeck/internal/hosttree"
	"github.com/artpar/hostdeck/internal/storage/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() Option {
	return WithLogger(NewLogger(io.Discard, "error"))
}

func newTestApp(t *testing.T, seed ...core.Host) *App {
	t.Helper()
	store, err := sqlite.NewInMemory()
	require.NoError(t, err)
	for _, h := range seed {
		require.NoError(t, store.AddOrUpdate(context.Background(), h))
	}

	a, err := New(context.Background(), WithStore(store), quietLogger(),
		WithClock(func() time.Time { return time.UnixMilli(5000) }))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func host(id, name string, protocol core.Protocol, parent string, sort int64) core.Host {
	return core.Host{ID: id, Name: name, Protocol: protocol, ParentID: parent, Sort: sort}
}

func TestNew(t *testing.T) {
	t.Run("builds the tree from the store", func(t *testing.T) {
		a := newTestApp(t,
			host("f1", "prod", core.ProtocolFolder, core.RootID, 1),
			host("h1", "web", core.ProtocolSSH, "f1", 1),
			host("h2", "db", core.ProtocolSSH, core.RootID, 2),
		)

		tree := a.Tree()
		require.Equal(t, 2, tree.ChildCount(tree.Root()))
		prod, ok := tree.Lookup("f1")
		require.True(t, ok)
		assert.Equal(t, 1, tree.ChildCount(prod))
		assert.Same(t, tree, a.Dispatcher().Tree())
	})

	t.Run("persists repaired orphans", func(t *testing.T) {
		a := newTestApp(t, host("h1", "lost", core.ProtocolSSH, "gone", 1))

		saved, err := a.Store().Get(context.Background(), "h1")
		require.NoError(t, err)
		assert.Equal(t, core.RootID, saved.ParentID)
	})

	t.Run("hides deleted subtrees", func(t *testing.T) {
		gone := host("f1", "old", core.ProtocolFolder, core.RootID, 1)
		gone.Deleted = true
		a := newTestApp(t, gone, host("h1", "web", core.ProtocolSSH, "f1", 1))

		assert.Zero(t, a.Tree().ChildCount(a.Tree().Root()))
	})

	t.Run("opens a sqlite store in the data dir", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DataDir = t.TempDir()
		a, err := New(context.Background(), WithConfig(cfg), quietLogger())
		require.NoError(t, err)
		defer a.Close()

		assert.FileExists(t, filepath.Join(cfg.DataDir, "hosts.db"))
	})

	t.Run("opens a yaml store", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DataDir = t.TempDir()
		cfg.Storage = StorageYAML
		a, err := New(context.Background(), WithConfig(cfg), quietLogger())
		require.NoError(t, err)
		defer a.Close()

		_, isYAML := a.Store().(*filesystem.HostStore)
		assert.True(t, isYAML)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Storage = "postgres"
		_, err := New(context.Background(), WithConfig(cfg), quietLogger())
		assert.Error(t, err)
	})
}

func TestApp_ConfirmRemoval(t *testing.T) {
	ctx := context.Background()
	decline := hosttree.ConfirmFunc(func(string) bool { return false })

	newApp := func(t *testing.T, confirm bool) *App {
		store, err := sqlite.NewInMemory()
		require.NoError(t, err)
		require.NoError(t, store.AddOrUpdate(ctx, host("h1", "web", core.ProtocolSSH, core.RootID, 1)))

		cfg := DefaultConfig()
		cfg.ConfirmRemoval = confirm
		a, err := New(ctx, WithConfig(cfg), WithStore(store), WithConfirmer(decline), quietLogger())
		require.NoError(t, err)
		t.Cleanup(func() { a.Close() })
		return a
	}

	t.Run("declined confirmation keeps the host", func(t *testing.T) {
		a := newApp(t, true)
		n, err := a.Find("h1")
		require.NoError(t, err)

		res, err := a.Apply(ctx, hosttree.Remove{Nodes: []hosttree.NodeID{n}})
		require.NoError(t, err)
		assert.False(t, res.Applied)
	})

	t.Run("disabled confirmation removes directly", func(t *testing.T) {
		a := newApp(t, false)
		n, err := a.Find("h1")
		require.NoError(t, err)

		res, err := a.Apply(ctx, hosttree.Remove{Nodes: []hosttree.NodeID{n}})
		require.NoError(t, err)
		assert.True(t, res.Applied)

		deleted, err := a.Store().ListDeleted(ctx)
		require.NoError(t, err)
		require.Len(t, deleted, 1)
		assert.Equal(t, "h1", deleted[0].ID)
		assert.Zero(t, a.Tree().ChildCount(a.Tree().Root()))
	})
}

func TestApp_Find(t *testing.T) {
	a := newTestApp(t,
		host("f1", "prod", core.ProtocolFolder, core.RootID, 1),
		host("f2", "dev", core.ProtocolFolder, core.RootID, 2),
		host("h1", "web", core.ProtocolSSH, "f1", 1),
		host("h2", "web", core.ProtocolSSH, "f2", 1),
		host("h3", "db", core.ProtocolSSH, "f2", 2),
	)

	t.Run("by id", func(t *testing.T) {
		n, err := a.Find("h3")
		require.NoError(t, err)
		assert.Equal(t, "db", a.Tree().Host(n).Name)
	})

	t.Run("by unique name", func(t *testing.T) {
		n, err := a.Find("prod")
		require.NoError(t, err)
		assert.Equal(t, "f1", a.Tree().Host(n).ID)
	})

	t.Run("root", func(t *testing.T) {
		for _, ref := range []string{"", "/", core.RootID} {
			n, err := a.Find(ref)
			require.NoError(t, err)
			assert.Equal(t, a.Tree().Root(), n)
		}
	})

	t.Run("ambiguous name", func(t *testing.T) {
		_, err := a.Find("web")
		assert.ErrorIs(t, err, ErrAmbiguous)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := a.FindAll([]string{"h1", "nope"})
		assert.ErrorIs(t, err, hosts.ErrNotFound)
	})
}

func TestApp_ExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestApp(t,
		host("f1", "prod", core.ProtocolFolder, core.RootID, 1),
		host("h1", "web", core.ProtocolSSH, "f1", 1),
	)
	path := filepath.Join(t.TempDir(), "export.yaml")

	n, err := src.Export(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dst := newTestApp(t)
	n, err = dst.Import(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	web, err := dst.Find("h1")
	require.NoError(t, err)
	assert.Equal(t, "f1", dst.Tree().Host(dst.Tree().Parent(web)).ID)

	n, err = dst.Import(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	list, err := dst.Store().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestApp_Purge(t *testing.T) {
	ctx := context.Background()
	gone := host("h1", "old", core.ProtocolSSH, core.RootID, 1)
	gone.Deleted = true
	a := newTestApp(t, gone, host("h2", "web", core.ProtocolSSH, core.RootID, 2))

	n, err := a.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = a.Store().Get(ctx, "h1")
	assert.ErrorIs(t, err, hosts.ErrNotFound)
}
