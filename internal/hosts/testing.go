package hosts

import (
	"context"
	"testing"

	"github.com/artpar/hostdeck/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreTests runs the standard store test suite against any Store implementation.
func RunStoreTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("AddOrUpdate", func(t *testing.T) {
		runAddOrUpdateTests(t, newStore)
	})
	t.Run("Get", func(t *testing.T) {
		runGetTests(t, newStore)
	})
	t.Run("List", func(t *testing.T) {
		runListTests(t, newStore)
	})
	t.Run("Purge", func(t *testing.T) {
		runPurgeTests(t, newStore)
	})
	t.Run("Close", func(t *testing.T) {
		runCloseTests(t, newStore)
	})
}

func runAddOrUpdateTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("stores all fields", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		h := core.NewHost("web-1", core.ProtocolSSH, core.RootID)
		h.Address = "10.0.0.1"
		h.Port = 22
		h.Username = "root"
		h.Remark = "primary"
		h.Options = map[string]string{"env": "prod"}

		require.NoError(t, store.AddOrUpdate(ctx, h))

		got, err := store.Get(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, h, got)
	})

	t.Run("stores serial payload", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		h := core.NewHost("console", core.ProtocolSerial, core.RootID)
		h.SerialPort = "/dev/ttyUSB0"
		h.BaudRate = 115200

		require.NoError(t, store.AddOrUpdate(ctx, h))

		got, err := store.Get(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, "/dev/ttyUSB0", got.SerialPort)
		assert.Equal(t, 115200, got.BaudRate)
	})

	t.Run("replaces existing host", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		h := core.NewFolder("prod", core.RootID)
		require.NoError(t, store.AddOrUpdate(ctx, h))

		h.Name = "production"
		h.ParentID = "other"
		require.NoError(t, store.AddOrUpdate(ctx, h))

		got, err := store.Get(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, "production", got.Name)
		assert.Equal(t, "other", got.ParentID)

		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("rejects empty id", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		err := store.AddOrUpdate(context.Background(), core.Host{Name: "nameless"})
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func runGetTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("returns ErrNotFound for unknown id", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		_, err := store.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returns soft-deleted host", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		h := core.NewHost("old", core.ProtocolSSH, core.RootID)
		h.Deleted = true
		require.NoError(t, store.AddOrUpdate(ctx, h))

		got, err := store.Get(ctx, h.ID)
		require.NoError(t, err)
		assert.True(t, got.Deleted)
	})
}

func runListTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("empty store", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		all, err := store.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("separates live and deleted hosts", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		live := core.NewHost("live", core.ProtocolSSH, core.RootID)
		gone := core.NewHost("gone", core.ProtocolSSH, core.RootID)
		gone.Deleted = true
		require.NoError(t, store.AddOrUpdate(ctx, live))
		require.NoError(t, store.AddOrUpdate(ctx, gone))

		all, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, live.ID, all[0].ID)

		deleted, err := store.ListDeleted(ctx)
		require.NoError(t, err)
		require.Len(t, deleted, 1)
		assert.Equal(t, gone.ID, deleted[0].ID)
	})

	t.Run("orders by sort key", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		a := core.NewHost("a", core.ProtocolSSH, core.RootID)
		b := core.NewHost("b", core.ProtocolSSH, core.RootID)
		a.Sort, b.Sort = 20, 10
		require.NoError(t, store.AddOrUpdate(ctx, a))
		require.NoError(t, store.AddOrUpdate(ctx, b))

		all, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "b", all[0].Name)
		assert.Equal(t, "a", all[1].Name)
	})
}

func runPurgeTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("removes only deleted hosts", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		live := core.NewHost("live", core.ProtocolSSH, core.RootID)
		gone := core.NewHost("gone", core.ProtocolSSH, core.RootID)
		gone.Deleted = true
		require.NoError(t, store.AddOrUpdate(ctx, live))
		require.NoError(t, store.AddOrUpdate(ctx, gone))

		n, err := store.Purge(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = store.Get(ctx, gone.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Get(ctx, live.ID)
		assert.NoError(t, err)
	})

	t.Run("nothing to purge", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		n, err := store.Purge(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}

func runCloseTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("operations fail after close", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		require.NoError(t, store.Close())

		err := store.AddOrUpdate(ctx, core.NewHost("x", core.ProtocolSSH, core.RootID))
		assert.ErrorIs(t, err, ErrStoreClosed)
		_, err = store.List(ctx)
		assert.ErrorIs(t, err, ErrStoreClosed)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		require.NoError(t, store.Close())
		assert.NoError(t, store.Close())
	})
}
