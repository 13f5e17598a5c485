package hosttree

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/artpar/hostdeck/internal/core"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("disk full")

var testNow = time.UnixMilli(1_700_000_000_000)

func fixedNow() time.Time { return testNow }

// fakeRepo records upserts. failOn makes the n-th call (1-based) fail.
type fakeRepo struct {
	saved  map[string]core.Host
	order  []string
	calls  int
	failOn int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{saved: make(map[string]core.Host)}
}

func (r *fakeRepo) AddOrUpdate(ctx context.Context, h core.Host) error {
	r.calls++
	if r.failOn > 0 && r.calls == r.failOn {
		return errBoom
	}
	r.saved[h.ID] = h
	r.order = append(r.order, h.ID)
	return nil
}

func folderHost(name string) core.Host {
	return core.Host{ID: name, Name: name, Protocol: core.ProtocolFolder, Sort: 100, CreateDate: 100, UpdateDate: 100}
}

func sshHost(name string) core.Host {
	return core.Host{ID: name, Name: name, Protocol: core.ProtocolSSH, Sort: 100, CreateDate: 100, UpdateDate: 100, Address: name + ".example.com"}
}

// add appends h under parent at its natural position.
func add(tb testing.TB, t *Tree, parent NodeID, h core.Host) NodeID {
	tb.Helper()
	h.ParentID = t.Host(parent).ID
	n := t.NewNode(h)
	require.NoError(tb, t.Insert(n, parent, insertIndex(t, parent, h.IsFolder())))
	return n
}

// names lists the names of parent's children.
func names(t *Tree, parent NodeID) []string {
	var out []string
	for _, c := range t.Children(parent) {
		out = append(out, t.Host(c).Name)
	}
	return out
}

// assertPrefixInvariant checks that folders form a prefix of every child list
// and that the cached folder count matches.
func assertPrefixInvariant(tb testing.TB, t *Tree) {
	tb.Helper()
	t.Walk(t.Root(), func(n NodeID, _ int) bool {
		seenLeaf := false
		folders := 0
		for i, c := range t.Children(n) {
			if t.IsFolder(c) {
				folders++
				if seenLeaf {
					tb.Fatalf("folder %q at index %d follows a host under %q", t.Host(c).Name, i, t.Host(n).Name)
				}
			} else {
				seenLeaf = true
			}
			if t.Parent(c) != n {
				tb.Fatalf("child %q of %q has wrong parent", t.Host(c).Name, t.Host(n).Name)
			}
		}
		if folders != t.FolderCount(n) {
			tb.Fatalf("folder count of %q is %d, want %d", t.Host(n).Name, t.FolderCount(n), folders)
		}
		return true
	})
}

// scenarioTree builds R: [FolderA, FolderB, HostC] where the root plays R.
func scenarioTree(tb testing.TB) (*Tree, map[string]NodeID) {
	tb.Helper()
	t := NewTree()
	ids := map[string]NodeID{}
	ids["FolderA"] = add(tb, t, t.Root(), folderHost("FolderA"))
	ids["FolderB"] = add(tb, t, t.Root(), folderHost("FolderB"))
	ids["HostC"] = add(tb, t, t.Root(), sshHost("HostC"))
	return t, ids
}

// storedHosts lists every host below the root the way storage returns them.
func storedHosts(t *Tree) []core.Host {
	var out []core.Host
	for _, n := range t.Descendants(t.Root()) {
		out = append(out, t.Host(n))
	}
	return out
}

// layout maps each folder id to its ordered child ids.
func layout(t *Tree) map[string][]string {
	out := map[string][]string{}
	t.Walk(t.Root(), func(n NodeID, _ int) bool {
		for _, c := range t.Children(n) {
			out[t.Host(n).ID] = append(out[t.Host(n).ID], t.Host(c).ID)
		}
		return true
	})
	return out
}

// assertSurvivesReload rebuilds t from its hosts and checks nothing moved.
func assertSurvivesReload(tb testing.TB, t *Tree) {
	tb.Helper()
	rebuilt, repaired := Build(storedHosts(t))
	require.Empty(tb, repaired)
	require.Equal(tb, layout(t), layout(rebuilt))
}

func sequentialIDs(prefix string) func() string {
	i := 0
	return func() string {
		i++
		return fmt.Sprintf("%s-%d", prefix, i)
	}
}
