package hosttree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpansionSet(t *testing.T) {
	t.Run("root is always expanded", func(t *testing.T) {
		tree := NewTree()
		exp := NewExpansionSet(tree)
		assert.True(t, exp.IsExpanded(tree.PathToRoot(tree.Root())))
		assert.False(t, exp.IsExpanded(nil))
	})

	t.Run("expand opens ancestors", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		inner := add(t, tree, ids["FolderA"], folderHost("Inner"))
		exp := NewExpansionSet(tree)

		exp.Expand(tree.PathToRoot(inner))

		assert.True(t, exp.IsExpanded(tree.PathToRoot(ids["FolderA"])))
		assert.True(t, exp.IsExpanded(tree.PathToRoot(inner)))
	})

	t.Run("collapsed ancestor hides expanded child", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		inner := add(t, tree, ids["FolderA"], folderHost("Inner"))
		exp := NewExpansionSet(tree)
		exp.Expand(tree.PathToRoot(inner))

		exp.Collapse(tree.PathToRoot(ids["FolderA"]))

		assert.False(t, exp.IsExpanded(tree.PathToRoot(inner)))
		exp.Expand(tree.PathToRoot(ids["FolderA"]))
		assert.True(t, exp.IsExpanded(tree.PathToRoot(inner)))
	})

	t.Run("leaves cannot be expanded", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		exp := NewExpansionSet(tree)
		exp.Expand(tree.PathToRoot(ids["HostC"]))
		assert.False(t, exp.IsExpanded(tree.PathToRoot(ids["HostC"])))
	})

	t.Run("removal forgets the subtree", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		inner := add(t, tree, ids["FolderA"], folderHost("Inner"))
		exp := NewExpansionSet(tree)
		exp.Expand(tree.PathToRoot(inner))

		tree.Remove(ids["FolderA"])
		assert.NoError(t, tree.Insert(ids["FolderA"], ids["FolderB"], 0))

		assert.False(t, exp.IsExpanded(tree.PathToRoot(ids["FolderA"])))
		assert.False(t, exp.IsExpanded(tree.PathToRoot(inner)))
	})

	t.Run("reload forgets descendants", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		inner := add(t, tree, ids["FolderA"], folderHost("Inner"))
		exp := NewExpansionSet(tree)
		exp.Expand(tree.PathToRoot(inner))

		tree.Reload(tree.Root())
		assert.False(t, exp.IsExpanded(tree.PathToRoot(ids["FolderA"])))
		assert.True(t, exp.IsExpanded(tree.PathToRoot(tree.Root())))
	})

	t.Run("close stops tracking", func(t *testing.T) {
		tree, ids := scenarioTree(t)
		exp := NewExpansionSet(tree)
		exp.Expand(tree.PathToRoot(ids["FolderA"]))
		exp.Close()

		tree.Reload(tree.Root())
		assert.True(t, exp.IsExpanded(tree.PathToRoot(ids["FolderA"])))
	})
}

func TestVisibleRows(t *testing.T) {
	tree, ids := scenarioTree(t)
	x := add(t, tree, ids["FolderA"], sshHost("HostX"))
	exp := NewExpansionSet(tree)

	assert.Equal(t, []Row{
		{Node: ids["FolderA"], Depth: 0},
		{Node: ids["FolderB"], Depth: 0},
		{Node: ids["HostC"], Depth: 0},
	}, VisibleRows(tree, exp))

	exp.Expand(tree.PathToRoot(ids["FolderA"]))
	assert.Equal(t, []Row{
		{Node: ids["FolderA"], Depth: 0},
		{Node: x, Depth: 1},
		{Node: ids["FolderB"], Depth: 0},
		{Node: ids["HostC"], Depth: 0},
	}, VisibleRows(tree, exp))
}
