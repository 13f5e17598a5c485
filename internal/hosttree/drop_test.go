package hosttree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDragPayload(t *testing.T) {
	tree, ids := scenarioTree(t)
	x := add(t, tree, ids["FolderA"], sshHost("HostX"))

	t.Run("drops nodes covered by a selected ancestor", func(t *testing.T) {
		p := NewDragPayload(tree, []NodeID{x, ids["FolderA"], ids["HostC"]})
		require.NotNil(t, p)
		assert.Equal(t, []NodeID{ids["FolderA"], ids["HostC"]}, p.Nodes())
	})

	t.Run("root selection yields nothing", func(t *testing.T) {
		assert.Nil(t, NewDragPayload(tree, []NodeID{ids["HostC"], tree.Root()}))
	})

	t.Run("empty selection yields nothing", func(t *testing.T) {
		assert.Nil(t, NewDragPayload(tree, nil))
		assert.Nil(t, (*DragPayload)(nil).Nodes())
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		p := NewDragPayload(tree, []NodeID{x, x})
		assert.Equal(t, []NodeID{x}, p.Nodes())
	})
}

func TestTree_CanDrop(t *testing.T) {
	t.Run("host above the folder prefix is rejected", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		d := add(t, tree, ids["FolderA"], sshHost("HostD"))
		p := NewDragPayload(tree, []NodeID{d})

		assert.False(t, tree.CanDrop(p, DropTarget{Container: tree.Root(), Index: 1}))
		assert.True(t, tree.CanDrop(p, DropTarget{Container: tree.Root(), Index: 2}))
		assert.True(t, tree.CanDrop(p, DropTarget{Container: tree.Root(), Index: AppendIndex}))
	})

	t.Run("folder below the folder prefix is rejected", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		f := add(t, tree, ids["FolderA"], folderHost("FolderX"))
		p := NewDragPayload(tree, []NodeID{f})
		k := tree.FolderCount(tree.Root())

		assert.True(t, tree.CanDrop(p, DropTarget{Container: tree.Root(), Index: k - 1}))
		assert.True(t, tree.CanDrop(p, DropTarget{Container: tree.Root(), Index: k}))
		assert.False(t, tree.CanDrop(p, DropTarget{Container: tree.Root(), Index: k + 1}))
	})

	t.Run("dropping next to itself is a no-op", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		p := NewDragPayload(tree, []NodeID{ids["FolderB"]})

		assert.False(t, tree.CanDrop(p, DropTarget{Container: tree.Root(), Index: 1}))
		assert.False(t, tree.CanDrop(p, DropTarget{Container: tree.Root(), Index: 2}))
		assert.True(t, tree.CanDrop(p, DropTarget{Container: tree.Root(), Index: 0}))
		assert.True(t, tree.CanDrop(p, DropTarget{Container: tree.Root(), Index: AppendIndex}))
	})

	t.Run("cycles are rejected at any depth", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		inner := add(t, tree, ids["FolderA"], folderHost("Inner"))
		deeper := add(t, tree, inner, folderHost("Deeper"))
		p := NewDragPayload(tree, []NodeID{ids["FolderA"]})

		for _, c := range []NodeID{ids["FolderA"], inner, deeper} {
			assert.False(t, tree.CanDrop(p, DropTarget{Container: c, Index: AppendIndex}))
		}
		assert.True(t, tree.CanDrop(p, DropTarget{Container: ids["FolderB"], Index: AppendIndex}))
	})

	t.Run("non-folder container is rejected", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		p := NewDragPayload(tree, []NodeID{ids["FolderA"]})
		assert.False(t, tree.CanDrop(p, DropTarget{Container: ids["HostC"], Index: AppendIndex}))
	})

	t.Run("index out of range is rejected", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		p := NewDragPayload(tree, []NodeID{ids["HostC"]})
		assert.False(t, tree.CanDrop(p, DropTarget{Container: ids["FolderA"], Index: 1}))
		assert.False(t, tree.CanDrop(p, DropTarget{Container: ids["FolderA"], Index: -2}))
		assert.True(t, tree.CanDrop(p, DropTarget{Container: ids["FolderA"], Index: 0}))
	})

	t.Run("payload from another tree is rejected", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		other, _ := scenarioTree(t)
		p := NewDragPayload(other, []NodeID{ids["HostC"]})
		assert.False(t, tree.CanDrop(p, DropTarget{Container: tree.Root(), Index: AppendIndex}))
		assert.False(t, tree.CanDrop(nil, DropTarget{Container: tree.Root(), Index: AppendIndex}))
	})

	t.Run("any rejected node rejects the whole payload", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		add(t, tree, ids["FolderB"], folderHost("Sub"))
		p := NewDragPayload(tree, []NodeID{ids["FolderA"], ids["HostC"]})
		// The folder fits at 0, the host does not.
		assert.False(t, tree.CanDrop(p, DropTarget{Container: ids["FolderB"], Index: 0}))
		assert.True(t, tree.CanDrop(p, DropTarget{Container: ids["FolderB"], Index: 1}))
		assert.True(t, tree.CanDrop(p, DropTarget{Container: ids["FolderB"], Index: AppendIndex}))
	})

	t.Run("does not mutate the tree", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		var events []Event
		tree.Subscribe(func(e Event) { events = append(events, e) })

		p := NewDragPayload(tree, []NodeID{ids["HostC"]})
		tree.CanDrop(p, DropTarget{Container: ids["FolderA"], Index: AppendIndex})

		assert.Empty(t, events)
		assert.Equal(t, []string{"FolderA", "FolderB", "HostC"}, names(tree, tree.Root()))
	})
}
