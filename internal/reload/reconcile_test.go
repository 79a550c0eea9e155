package reload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fioncat/otree/internal/tree"
	"github.com/fioncat/otree/internal/value"
	"github.com/fioncat/otree/pkg/loader"
)

const baseDoc = `{
  "name": "x",
  "items": [{"id": 1, "tags": ["a", "b"]}, 2],
  "cfg": {"deep": {"k": 1}}
}`

func parse(t *testing.T, doc string) value.Value {
	t.Helper()
	v, err := loader.Parse([]byte(doc), loader.JSON)
	require.NoError(t, err)
	return v
}

func resolve(t *testing.T, tr *tree.Tree, path string) tree.NodeID {
	t.Helper()
	p, err := tree.ParsePath(path)
	require.NoError(t, err)
	id, err := tr.Resolve(p)
	require.NoError(t, err)
	return id
}

func TestReconcileKeepsCursorPath(t *testing.T) {
	old := tree.Build(parse(t, baseDoc))
	cursor := resolve(t, old, "items[0].tags[1]")

	out := Reconcile(old, cursor, parse(t, `{"added": true, "items": [{"tags": ["a", "b", "c"], "id": 7}]}`))
	require.True(t, out.CursorResolved)
	assert.Equal(t, "items[0].tags[1]", out.Tree.PathString(out.Cursor))
	n, ok := out.Tree.Node(out.Cursor)
	require.True(t, ok)
	assert.Equal(t, "b", n.Value.Text())
}

func TestReconcileTransfersExpandFlags(t *testing.T) {
	old := tree.Build(parse(t, baseDoc))
	old.SetExpanded(resolve(t, old, "items"), true)
	old.SetExpanded(resolve(t, old, "items[0].tags"), true)
	old.SetExpanded(old.DocumentRoot(), false)

	out := Reconcile(old, old.DocumentRoot(), parse(t, baseDoc))
	next := out.Tree
	assert.False(t, next.IsExpanded(next.DocumentRoot()))
	assert.True(t, next.IsExpanded(resolve(t, next, "items")))
	assert.False(t, next.IsExpanded(resolve(t, next, "items[0]")))
	assert.True(t, next.IsExpanded(resolve(t, next, "items[0].tags")))
	assert.False(t, next.IsExpanded(resolve(t, next, "cfg")))
}

func TestReconcileNewNodesStartCollapsed(t *testing.T) {
	old := tree.Build(parse(t, baseDoc))
	out := Reconcile(old, old.DocumentRoot(), parse(t, `{"fresh": {"a": [1]}}`))
	assert.True(t, out.Tree.IsExpanded(out.Tree.DocumentRoot()))
	assert.False(t, out.Tree.IsExpanded(resolve(t, out.Tree, "fresh")))
}

func TestReconcileTruncatesHistory(t *testing.T) {
	old := tree.Build(parse(t, baseDoc))
	cfg := resolve(t, old, "cfg")
	require.NoError(t, old.ChangeRoot(cfg))
	require.NoError(t, old.ChangeRoot(resolve(t, old, "cfg.deep")))

	out := Reconcile(old, old.Root(), parse(t, `{"cfg": {"other": 1}}`))
	next := out.Tree
	assert.Equal(t, 2, out.HistoryKept)
	assert.Equal(t, 1, out.HistoryDropped)
	assert.Equal(t, resolve(t, next, "cfg"), next.Root())
	assert.Equal(t, []tree.NodeID{next.DocumentRoot()}, next.History())
	assert.False(t, out.CursorResolved)
	assert.Equal(t, next.DocumentRoot(), out.Cursor)
}

func TestReconcileDeletedChainFallsBackToDocumentRoot(t *testing.T) {
	old := tree.Build(parse(t, baseDoc))
	require.NoError(t, old.ChangeRoot(resolve(t, old, "cfg")))
	require.NoError(t, old.ChangeRoot(resolve(t, old, "cfg.deep")))
	cursor := resolve(t, old, "cfg.deep.k")

	out := Reconcile(old, cursor, parse(t, `{"name": "y"}`))
	next := out.Tree
	assert.False(t, out.CursorResolved)
	assert.Equal(t, next.DocumentRoot(), out.Cursor)
	assert.Equal(t, next.DocumentRoot(), next.Root())
	assert.Empty(t, next.History())
	assert.Equal(t, 1, out.HistoryKept)
	assert.Equal(t, 2, out.HistoryDropped)
}

func TestReconcileKindChangeStopsMatching(t *testing.T) {
	old := tree.Build(parse(t, baseDoc))
	old.SetExpanded(resolve(t, old, "items"), true)
	cursor := resolve(t, old, "items[0]")

	out := Reconcile(old, cursor, parse(t, `{"items": {"0": {"id": 1}}}`))
	assert.False(t, out.CursorResolved)
	// the container itself still matches by path
	assert.True(t, out.Tree.IsExpanded(resolve(t, out.Tree, "items")))
}

func TestReconcileScalarDocument(t *testing.T) {
	old := tree.Build(parse(t, baseDoc))
	require.NoError(t, old.ChangeRoot(resolve(t, old, "cfg")))

	out := Reconcile(old, old.DocumentRoot(), parse(t, `42`))
	assert.Equal(t, 0, out.HistoryKept)
	assert.Equal(t, out.Tree.DocumentRoot(), out.Tree.Root())
	assert.True(t, out.CursorResolved)
	assert.Equal(t, "42", out.Tree.Summary(out.Cursor))
}

func TestReconcileLeavesOldTreeUntouched(t *testing.T) {
	old := tree.Build(parse(t, baseDoc))
	require.NoError(t, old.ChangeRoot(resolve(t, old, "cfg")))
	before := old.History()

	_ = Reconcile(old, old.Root(), parse(t, `{}`))
	assert.Equal(t, before, old.History())
	assert.Equal(t, "cfg", old.Label(old.Root()))
}
