package kind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

func newLeaf(t *testing.T) (*tree.Tree, *Registry, tree.NodeID) {
	t.Helper()
	tr := tree.New()
	a, err := tr.Add(tree.None, "A")
	require.NoError(t, err)
	return tr, NewRegistry(tr), a
}

func TestNextSuppressesSelfLoops(t *testing.T) {
	tests := []struct {
		from    State
		ev      Event
		to      State
		changed bool
	}{
		{Leaf, AddChildClicked, Parent, true},
		{Leaf, ChildAdded, Parent, true},
		{Leaf, MakeParallelClicked, Parallel, true},
		{Leaf, MakeLeafClicked, Leaf, false},
		{Leaf, AllChildrenRemoved, Leaf, false},
		{Parent, AddChildClicked, Parent, false},
		{Parent, MakeParentClicked, Parent, false},
		{Parent, MakeParallelClicked, Parallel, true},
		{Parent, AllChildrenRemoved, Leaf, true},
		{Parallel, MakeParallelClicked, Parallel, false},
		{Parallel, ChildAdded, Parallel, false},
		{Parallel, MakeParentClicked, Parent, true},
		{Parallel, MakeLeafClicked, Leaf, true},
	}
	for _, tc := range tests {
		t.Run(tc.from.String()+"/"+tc.ev.String(), func(t *testing.T) {
			to, changed := Next(tc.from, tc.ev)
			assert.Equal(t, tc.to, to)
			assert.Equal(t, tc.changed, changed)
		})
	}
}

func TestAddChildOnLeafCreatesInitialChild(t *testing.T) {
	tr, reg, a := newLeaf(t)

	changed, err := reg.Fire(a, AddChildClicked)
	require.NoError(t, err)
	assert.True(t, changed)

	st, _ := reg.State(a)
	assert.Equal(t, Parent, st)

	kids := tr.ChildrenOf(a)
	require.Len(t, kids, 1)
	assert.Equal(t, kids[0], tr.InitialChild(a))

	// Firing again must not add a second child
	changed, err = reg.Fire(a, AddChildClicked)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, tr.ChildrenOf(a), 1)
	assert.Equal(t, kids[0], tr.InitialChild(a))
}

func TestMakeParallelIsIdempotent(t *testing.T) {
	tr, reg, a := newLeaf(t)

	_, err := reg.Fire(a, MakeParallelClicked)
	require.NoError(t, err)
	assert.True(t, tr.IsParallel(a))
	assert.Equal(t, tree.None, tr.InitialChild(a))
	count := len(tr.ChildrenOf(a))
	assert.Equal(t, 1, count)

	changed, err := reg.Fire(a, MakeParallelClicked)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, tr.ChildrenOf(a), count)
	assert.Equal(t, tree.None, tr.InitialChild(a))
	assert.True(t, tr.IsParallel(a))
}

func TestParallelToParentAssignsInitial(t *testing.T) {
	tr, reg, a := newLeaf(t)
	b, err := tr.Add(a, "B")
	require.NoError(t, err)
	_, err = tr.Add(a, "C")
	require.NoError(t, err)
	require.NoError(t, tr.SetParallel(a, true))

	st, _ := reg.State(a)
	require.Equal(t, Parallel, st, "state is inferred from the parallel flag")

	_, err = reg.Fire(a, MakeParentClicked)
	require.NoError(t, err)
	assert.False(t, tr.IsParallel(a))
	assert.Equal(t, b, tr.InitialChild(a))
	assert.Len(t, tr.ChildrenOf(a), 2, "existing children are reused")
}

func TestAllChildrenRemovedDemotesToLeaf(t *testing.T) {
	tr := tree.New()
	a, _ := tr.Add(tree.None, "A")
	b, _ := tr.Add(a, "B")
	c, _ := tr.Add(a, "C")
	require.NoError(t, tr.SetInitialChild(a, b))

	reg := NewRegistry(tr)
	st, _ := reg.State(a)
	require.Equal(t, Parent, st)

	require.NoError(t, tr.Delete(b))
	require.NoError(t, tr.Delete(c))

	changed, err := reg.Fire(a, AllChildrenRemoved)
	require.NoError(t, err)
	assert.True(t, changed)

	st, _ = reg.State(a)
	assert.Equal(t, Leaf, st)
	assert.False(t, tr.HasChildren(a))
	assert.Equal(t, tree.None, tr.InitialChild(a))
}

func TestMakeLeafRemovesChildren(t *testing.T) {
	tr, reg, a := newLeaf(t)
	_, err := reg.Fire(a, AddChildClicked)
	require.NoError(t, err)
	child := tr.ChildrenOf(a)[0]
	grandchild, err := tr.Add(child, "G")
	require.NoError(t, err)

	_, err = reg.Fire(a, MakeLeafClicked)
	require.NoError(t, err)

	assert.False(t, tr.Has(child))
	assert.True(t, tr.Has(grandchild), "grandchildren are detached, not deleted")
	assert.Contains(t, tr.Roots(), grandchild)
	assert.Equal(t, tree.None, tr.InitialChild(a))
}

func TestHooksSeeTransitions(t *testing.T) {
	_, reg, a := newLeaf(t)

	var seen []string
	reg.OnTransition(func(id tree.NodeID, from, to State, ev Event) {
		assert.Equal(t, a, id)
		seen = append(seen, from.String()+"->"+to.String()+":"+ev.String())
	})

	_, _ = reg.Fire(a, AddChildClicked)
	_, _ = reg.Fire(a, AddChildClicked)
	_, _ = reg.Fire(a, MakeParallelClicked)

	assert.Equal(t, []string{
		"Leaf->Parent:AddChildClicked",
		"Parent->Parallel:MakeParallelClicked",
	}, seen)
}

func TestMissingNode(t *testing.T) {
	_, reg, _ := newLeaf(t)

	_, err := reg.Fire(99, AddChildClicked)
	assert.ErrorIs(t, err, tree.ErrMissingNode)

	_, ok := reg.State(99)
	assert.False(t, ok)
}

func TestCompactDropsDeletedNodes(t *testing.T) {
	tr, reg, a := newLeaf(t)
	b, _ := tr.Add(tree.None, "B")
	_, _ = reg.State(a)
	_, _ = reg.State(b)
	require.Equal(t, 2, reg.Len())

	require.NoError(t, tr.Delete(b))
	assert.Equal(t, 1, reg.Compact())
	assert.Equal(t, 1, reg.Len())
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent("MakeLeafClicked")
	require.NoError(t, err)
	assert.Equal(t, MakeLeafClicked, ev)

	_, err = ParseEvent("Explode")
	assert.Error(t, err)
}
