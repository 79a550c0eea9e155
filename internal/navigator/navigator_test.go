package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fioncat/otree/internal/tree"
	"github.com/fioncat/otree/internal/value"
)

func newTree() *tree.Tree {
	return tree.Build(value.NewObject(
		value.Field{Key: "name", Value: value.NewString("otree")},
		value.Field{Key: "items", Value: value.NewArray(
			value.NewObject(
				value.Field{Key: "id", Value: value.NewNumber(1)},
				value.Field{Key: "tags", Value: value.NewArray(value.NewString("a"), value.NewString("b"))},
			),
			value.NewNumber(2),
		)},
		value.Field{Key: "empty", Value: value.NewObject()},
		value.Field{Key: "last", Value: value.NewBool(false)},
	))
}

func resolve(t *testing.T, tr *tree.Tree, path string) tree.NodeID {
	t.Helper()
	p, err := tree.ParsePath(path)
	require.NoError(t, err)
	id, err := tr.Resolve(p)
	require.NoError(t, err)
	return id
}

func TestNewStartsAtRoot(t *testing.T) {
	tr := newTree()
	n := New(tr, 0)
	assert.Equal(t, tr.Root(), n.Cursor())
	assert.Equal(t, DefaultPageSize, n.PageSize())
}

func TestMoveUpDownBoundaries(t *testing.T) {
	tr := newTree()
	n := New(tr, 3)

	assert.False(t, n.MoveUp(), "top boundary")
	require.True(t, n.MoveDown())
	assert.Equal(t, "name", tr.Label(n.Cursor()))
	require.True(t, n.MoveDown())
	assert.Equal(t, "items", tr.Label(n.Cursor()))

	assert.True(t, n.SelectLast())
	assert.Equal(t, "last", tr.Label(n.Cursor()))
	assert.False(t, n.MoveDown(), "bottom boundary")
	assert.False(t, n.SelectLast())
	assert.True(t, n.SelectFirst())
	assert.Equal(t, tr.Root(), n.Cursor())
}

func TestMoveRightExpandsAndEnters(t *testing.T) {
	tr := newTree()
	n := New(tr, 3)
	items := resolve(t, tr, "items")
	require.True(t, n.Select(items))
	require.False(t, tr.IsExpanded(items))

	require.True(t, n.MoveRight())
	assert.True(t, tr.IsExpanded(items))
	assert.Equal(t, resolve(t, tr, "items[0]"), n.Cursor())

	t.Run("primitive", func(t *testing.T) {
		require.True(t, n.Select(resolve(t, tr, "name")))
		assert.False(t, n.MoveRight())
	})
	t.Run("empty composite", func(t *testing.T) {
		empty := resolve(t, tr, "empty")
		require.True(t, n.Select(empty))
		assert.False(t, n.MoveRight())
		assert.Equal(t, empty, n.Cursor())
		assert.False(t, tr.IsExpanded(empty))
	})
}

func TestMoveLeftAndSelectParent(t *testing.T) {
	tr := newTree()
	tr.ExpandAll()
	n := New(tr, 3)
	tag := resolve(t, tr, "items[0].tags[1]")
	require.True(t, n.Select(tag))

	require.True(t, n.MoveLeft())
	assert.Equal(t, resolve(t, tr, "items[0].tags"), n.Cursor())
	require.True(t, n.SelectParent())
	assert.Equal(t, resolve(t, tr, "items[0]"), n.Cursor())

	n.SelectFirst()
	assert.False(t, n.MoveLeft(), "active root boundary")
	assert.False(t, n.SelectParent())
}

func TestCloseParent(t *testing.T) {
	tr := newTree()
	tr.ExpandAll()
	n := New(tr, 3)
	tags := resolve(t, tr, "items[0].tags")
	require.True(t, n.Select(resolve(t, tr, "items[0].tags[0]")))

	require.True(t, n.CloseParent())
	assert.Equal(t, tags, n.Cursor())
	assert.False(t, tr.IsExpanded(tags))

	require.True(t, n.Select(resolve(t, tr, "name")))
	require.True(t, n.CloseParent())
	assert.Equal(t, tr.Root(), n.Cursor())
	assert.True(t, tr.IsExpanded(tr.Root()), "active root stays open")
	assert.False(t, n.CloseParent())
}

func TestPageMovesClamp(t *testing.T) {
	tr := newTree()
	tr.ExpandAll()
	n := New(tr, 3)
	rows := n.Rows()

	require.True(t, n.PageDown())
	assert.Equal(t, rows[3], n.Cursor())
	for n.PageDown() {
	}
	assert.Equal(t, rows[len(rows)-1], n.Cursor())
	require.True(t, n.PageUp())
	assert.Equal(t, rows[len(rows)-4], n.Cursor())
	for n.PageUp() {
	}
	assert.Equal(t, rows[0], n.Cursor())
	assert.False(t, n.PageUp())
}

func TestRepairAfterCollapse(t *testing.T) {
	tr := newTree()
	tr.ExpandAll()
	n := New(tr, 3)
	require.True(t, n.Select(resolve(t, tr, "items[0].tags[1]")))

	tr.SetExpanded(resolve(t, tr, "items"), false)
	require.True(t, n.Repair())
	assert.Equal(t, resolve(t, tr, "items"), n.Cursor())
	assert.False(t, n.Repair())
}

func TestRepairAfterRootChange(t *testing.T) {
	tr := newTree()
	n := New(tr, 3)
	require.True(t, n.Select(resolve(t, tr, "name")))

	require.NoError(t, tr.ChangeRoot(resolve(t, tr, "items")))
	require.True(t, n.Repair())
	assert.Equal(t, tr.Root(), n.Cursor())
}

func TestVisibilityPredicate(t *testing.T) {
	tr := newTree()
	tr.ExpandAll()
	n := New(tr, 3)
	tags := resolve(t, tr, "items[0].tags")
	b := resolve(t, tr, "items[0].tags[1]")
	require.True(t, n.Select(resolve(t, tr, "name")))

	// keep only the path to tags[1]
	keep := func(id tree.NodeID) bool { return id == b || tr.IsAncestor(id, b) }
	n.SetVisibility(keep)
	assert.Equal(t, tr.Root(), n.Cursor(), "hidden cursor falls back to the root")
	assert.Len(t, n.Rows(), 5)

	require.True(t, n.Select(tags))
	require.True(t, n.MoveRight())
	assert.Equal(t, b, n.Cursor(), "hidden first child is skipped")

	require.True(t, n.Select(resolve(t, tr, "items[0]")))
	tr.SetExpanded(tags, false)
	require.True(t, n.Select(tags))
	n.SetVisibility(func(id tree.NodeID) bool { return id != b && id != resolve(t, tr, "items[0].tags[0]") })
	assert.False(t, n.MoveRight(), "no visible child")
	assert.False(t, tr.IsExpanded(tags))
}

func TestSelectRejectsHiddenNodes(t *testing.T) {
	tr := newTree()
	n := New(tr, 3)
	assert.False(t, n.Select(resolve(t, tr, "items[0]")), "collapsed parent")
	assert.False(t, n.Select(tree.NodeID(999)))
}

func TestResetSwapsTree(t *testing.T) {
	tr := newTree()
	n := New(tr, 3)
	next := newTree()
	n.Reset(next, resolve(t, next, "items[0].id"), nil)
	assert.Equal(t, resolve(t, next, "items"), n.Cursor())
}
