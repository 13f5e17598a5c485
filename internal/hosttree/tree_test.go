package hosttree

import (
	"testing"

	"github.com/artpar/hostdeck/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_Insert(t *testing.T) {
	t.Run("keeps folders before hosts", func(t *testing.T) {
		tree, _ := scenarioTree(t)
		assert.Equal(t, []string{"FolderA", "FolderB", "HostC"}, names(tree, tree.Root()))
		assert.Equal(t, 2, tree.FolderCount(tree.Root()))
		assertPrefixInvariant(t, tree)
	})

	t.Run("folder at k+1 is rejected, at k accepted", func(t *testing.T) {
		tree, _ := scenarioTree(t)
		k := tree.FolderCount(tree.Root())

		f := tree.NewNode(folderHost("FolderX"))
		assert.ErrorIs(t, tree.Insert(f, tree.Root(), k+1), ErrOrderViolation)
		require.NoError(t, tree.Insert(f, tree.Root(), k))
		assert.Equal(t, []string{"FolderA", "FolderB", "FolderX", "HostC"}, names(tree, tree.Root()))
	})

	t.Run("host at k-1 is rejected, at k accepted", func(t *testing.T) {
		tree, _ := scenarioTree(t)
		k := tree.FolderCount(tree.Root())

		h := tree.NewNode(sshHost("HostD"))
		assert.ErrorIs(t, tree.Insert(h, tree.Root(), k-1), ErrOrderViolation)
		require.NoError(t, tree.Insert(h, tree.Root(), k))
		assert.Equal(t, []string{"FolderA", "FolderB", "HostD", "HostC"}, names(tree, tree.Root()))
	})

	t.Run("rejects attached node", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		assert.ErrorIs(t, tree.Insert(ids["HostC"], ids["FolderA"], 0), ErrAttached)
	})

	t.Run("rejects inserting the root", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		assert.ErrorIs(t, tree.Insert(tree.Root(), ids["FolderA"], 0), ErrAttached)
	})

	t.Run("rejects non-folder parent", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		h := tree.NewNode(sshHost("HostD"))
		assert.ErrorIs(t, tree.Insert(h, ids["HostC"], 0), ErrNotFolder)
	})

	t.Run("rejects index out of range", func(t *testing.T) {
		tree, _ := scenarioTree(t)
		h := tree.NewNode(sshHost("HostD"))
		assert.ErrorIs(t, tree.Insert(h, tree.Root(), 4), ErrIndexOutOfRange)
		assert.ErrorIs(t, tree.Insert(h, tree.Root(), -1), ErrIndexOutOfRange)
	})

	t.Run("rejects cycles", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		inner := add(t, tree, ids["FolderA"], folderHost("Inner"))
		tree.Remove(ids["FolderA"])

		assert.ErrorIs(t, tree.Insert(ids["FolderA"], inner, 0), ErrCycle)
		assert.ErrorIs(t, tree.Insert(ids["FolderA"], ids["FolderA"], 0), ErrCycle)
	})

	t.Run("rejects unknown nodes", func(t *testing.T) {
		tree := NewTree()
		assert.ErrorIs(t, tree.Insert(42, tree.Root(), 0), ErrUnknownNode)
	})
}

func TestTree_Remove(t *testing.T) {
	t.Run("detaches node and updates folder count", func(t *testing.T) {
		tree, ids := scenarioTree(t)

		tree.Remove(ids["FolderA"])

		assert.Equal(t, []string{"FolderB", "HostC"}, names(tree, tree.Root()))
		assert.Equal(t, 1, tree.FolderCount(tree.Root()))
		assert.Equal(t, NoNode, tree.Parent(ids["FolderA"]))
		assert.False(t, tree.Attached(ids["FolderA"]))
	})

	t.Run("detached subtree keeps its children", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		x := add(t, tree, ids["FolderA"], sshHost("HostX"))

		tree.Remove(ids["FolderA"])

		assert.Equal(t, ids["FolderA"], tree.Parent(x))
		assert.False(t, tree.Attached(x))
	})

	t.Run("no-op when already detached", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		tree.Remove(ids["HostC"])
		tree.Remove(ids["HostC"])
		assert.Equal(t, []string{"FolderA", "FolderB"}, names(tree, tree.Root()))
	})
}

func TestTree_Queries(t *testing.T) {
	tree, ids := scenarioTree(t)
	inner := add(t, tree, ids["FolderA"], folderHost("Inner"))
	deep := add(t, tree, inner, sshHost("Deep"))

	t.Run("path to root", func(t *testing.T) {
		assert.Equal(t, Path{tree.Root(), ids["FolderA"], inner, deep}, tree.PathToRoot(deep))
		assert.Equal(t, Path{tree.Root()}, tree.PathToRoot(tree.Root()))
		assert.Equal(t, deep, tree.PathToRoot(deep).Last())
	})

	t.Run("ancestors", func(t *testing.T) {
		assert.True(t, tree.IsAncestor(ids["FolderA"], deep))
		assert.True(t, tree.IsAncestor(tree.Root(), deep))
		assert.False(t, tree.IsAncestor(deep, deep))
		assert.False(t, tree.IsAncestor(ids["FolderB"], deep))
	})

	t.Run("descendants are breadth first", func(t *testing.T) {
		assert.Equal(t, []NodeID{inner, deep}, tree.Descendants(ids["FolderA"]))
	})

	t.Run("lookup by host id", func(t *testing.T) {
		n, ok := tree.Lookup("Deep")
		require.True(t, ok)
		assert.Equal(t, deep, n)

		_, ok = tree.Lookup("missing")
		assert.False(t, ok)
	})

	t.Run("child accessors", func(t *testing.T) {
		assert.Equal(t, ids["FolderB"], tree.ChildAt(tree.Root(), 1))
		assert.Equal(t, NoNode, tree.ChildAt(tree.Root(), 9))
		assert.Equal(t, 2, tree.IndexOf(tree.Root(), ids["HostC"]))
		assert.Equal(t, -1, tree.IndexOf(ids["FolderB"], ids["HostC"]))
	})

	t.Run("walk can prune", func(t *testing.T) {
		var visited []string
		tree.Walk(tree.Root(), func(n NodeID, depth int) bool {
			visited = append(visited, tree.Host(n).Name)
			return n != ids["FolderA"]
		})
		assert.Equal(t, []string{"Hosts", "FolderA", "FolderB", "HostC"}, visited)
	})
}

func TestTree_SetHost(t *testing.T) {
	t.Run("replaces host and reindexes id", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		h := tree.Host(ids["HostC"])
		h.ID = "renamed"
		h.Name = "Renamed"

		require.NoError(t, tree.SetHost(ids["HostC"], h))

		n, ok := tree.Lookup("renamed")
		require.True(t, ok)
		assert.Equal(t, ids["HostC"], n)
		_, ok = tree.Lookup("HostC")
		assert.False(t, ok)
	})

	t.Run("attached node cannot change kind", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		h := tree.Host(ids["HostC"])
		h.Protocol = core.ProtocolFolder
		assert.ErrorIs(t, tree.SetHost(ids["HostC"], h), ErrOrderViolation)
	})
}

func TestTree_Events(t *testing.T) {
	tree, ids := scenarioTree(t)

	var events []Event
	unsubscribe := tree.Subscribe(func(e Event) { events = append(events, e) })

	h := tree.NewNode(sshHost("HostD"))
	require.NoError(t, tree.Insert(h, tree.Root(), 2))
	tree.Remove(ids["FolderB"])
	tree.Reload(ids["FolderA"])
	require.NoError(t, tree.SetHost(h, sshHost("HostD")))

	require.Len(t, events, 4)
	assert.Equal(t, Event{Kind: NodeInserted, Parent: tree.Root(), Node: h, Index: 2}, events[0])
	assert.Equal(t, Event{Kind: NodeRemoved, Parent: tree.Root(), Node: ids["FolderB"], Index: 1}, events[1])
	assert.Equal(t, StructureChanged, events[2].Kind)
	assert.Equal(t, ids["FolderA"], events[2].Node)
	assert.Equal(t, NodeChanged, events[3].Kind)
	assert.Equal(t, "changed", events[3].Kind.String())

	t.Run("detached edits are silent", func(t *testing.T) {
		before := len(events)
		x := tree.NewNode(sshHost("HostX"))
		require.NoError(t, tree.Insert(x, ids["FolderB"], 0))
		assert.Len(t, events, before)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		unsubscribe()
		before := len(events)
		tree.Remove(h)
		assert.Len(t, events, before)
	})
}
