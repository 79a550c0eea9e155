// Package navigator moves a cursor over the visible rows of a tree.
package navigator

import (
	"github.com/fioncat/otree/internal/tree"
)

// DefaultPageSize is used when New receives a non-positive page size.
const DefaultPageSize = 10

// Navigator owns the cursor. The cursor always refers to a visible node
// under the active root; Repair restores that after external changes.
type Navigator struct {
	tree     *tree.Tree
	keep     func(tree.NodeID) bool
	cursor   tree.NodeID
	pageSize int
}

// New places the cursor on the active root of t.
func New(t *tree.Tree, pageSize int) *Navigator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Navigator{tree: t, cursor: t.Root(), pageSize: pageSize}
}

// Cursor returns the selected node.
func (n *Navigator) Cursor() tree.NodeID {
	return n.cursor
}

// PageSize returns the number of rows a page move skips.
func (n *Navigator) PageSize() int {
	return n.pageSize
}

// SetPageSize changes the page size; non-positive values are ignored.
func (n *Navigator) SetPageSize(size int) {
	if size > 0 {
		n.pageSize = size
	}
}

// SetVisibility installs the predicate hiding filtered-out nodes. A nil
// predicate shows every node. The cursor is repaired afterwards.
func (n *Navigator) SetVisibility(keep func(tree.NodeID) bool) {
	n.keep = keep
	n.Repair()
}

// Reset swaps in a new tree and cursor at once, then repairs the cursor.
func (n *Navigator) Reset(t *tree.Tree, cursor tree.NodeID, keep func(tree.NodeID) bool) {
	n.tree = t
	n.keep = keep
	n.cursor = cursor
	n.Repair()
}

// Rows returns the visible rows in display order.
func (n *Navigator) Rows() []tree.NodeID {
	return n.tree.Visible(n.keep)
}

// IsVisible reports whether id is currently a visible row.
func (n *Navigator) IsVisible(id tree.NodeID) bool {
	return n.tree.IsVisible(id, n.keep)
}

// Repair moves the cursor to its nearest visible ancestor, or to the
// active root when none is visible. It reports whether the cursor moved.
func (n *Navigator) Repair() bool {
	if n.IsVisible(n.cursor) {
		return false
	}
	for cur := n.tree.Parent(n.cursor); cur != tree.NoNode; cur = n.tree.Parent(cur) {
		if n.IsVisible(cur) {
			n.cursor = cur
			return true
		}
	}
	n.cursor = n.tree.Root()
	return true
}

// Select moves the cursor to id if it is visible.
func (n *Navigator) Select(id tree.NodeID) bool {
	if id == n.cursor || !n.IsVisible(id) {
		return false
	}
	n.cursor = id
	return true
}

// RowIndex returns the position of the cursor among the visible rows.
func (n *Navigator) RowIndex() int {
	return indexOf(n.Rows(), n.cursor)
}

func indexOf(rows []tree.NodeID, id tree.NodeID) int {
	for i, row := range rows {
		if row == id {
			return i
		}
	}
	return -1
}

// moveBy shifts the cursor by delta rows, clamped to the visible range.
func (n *Navigator) moveBy(delta int) bool {
	rows := n.Rows()
	i := indexOf(rows, n.cursor)
	if i < 0 {
		return n.Repair()
	}
	target := i + delta
	if target < 0 {
		target = 0
	}
	if target > len(rows)-1 {
		target = len(rows) - 1
	}
	if target == i {
		return false
	}
	n.cursor = rows[target]
	return true
}

// MoveUp selects the previous visible row.
func (n *Navigator) MoveUp() bool {
	return n.moveBy(-1)
}

// MoveDown selects the next visible row.
func (n *Navigator) MoveDown() bool {
	return n.moveBy(1)
}

// PageUp moves up by the page size.
func (n *Navigator) PageUp() bool {
	return n.moveBy(-n.pageSize)
}

// PageDown moves down by the page size.
func (n *Navigator) PageDown() bool {
	return n.moveBy(n.pageSize)
}

// SelectFirst selects the first visible row, the active root.
func (n *Navigator) SelectFirst() bool {
	return n.Select(n.tree.Root())
}

// SelectLast selects the last visible row.
func (n *Navigator) SelectLast() bool {
	rows := n.Rows()
	return n.Select(rows[len(rows)-1])
}

// MoveLeft steps to the parent. It stops at the active root.
func (n *Navigator) MoveLeft() bool {
	return n.SelectParent()
}

// SelectParent selects the parent regardless of its expand state.
func (n *Navigator) SelectParent() bool {
	if n.cursor == n.tree.Root() {
		return false
	}
	n.cursor = n.tree.Parent(n.cursor)
	return true
}

// MoveRight steps into the first visible child, expanding the node first.
// Primitives, empty composites and nodes whose children are all filtered
// out are left untouched.
func (n *Navigator) MoveRight() bool {
	for _, child := range n.tree.ChildrenOf(n.cursor) {
		if n.keep != nil && !n.keep(child) {
			continue
		}
		n.tree.SetExpanded(n.cursor, true)
		n.cursor = child
		return true
	}
	return false
}

// ToggleExpand flips the expand flag of the cursor node.
func (n *Navigator) ToggleExpand() bool {
	return n.tree.ToggleExpand(n.cursor)
}

// CloseParent selects the parent and collapses it. On the active root it
// collapses nothing.
func (n *Navigator) CloseParent() bool {
	if n.cursor == n.tree.Root() {
		return false
	}
	parent := n.tree.Parent(n.cursor)
	n.cursor = parent
	if parent != n.tree.Root() {
		n.tree.SetExpanded(parent, false)
	}
	return true
}
