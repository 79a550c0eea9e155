// Package tree holds the node arena built from a canonical value, together
// with its expand flags and root history.
package tree

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/fioncat/otree/internal/value"
)

// RootLabel is the label of the document root.
const RootLabel = "root"

var (
	// ErrRootOnLeaf is returned when re-rooting on a primitive node.
	ErrRootOnLeaf = errors.New("cannot change root to a primitive node")
	// ErrUnknownNode is returned for identifiers outside the arena.
	ErrUnknownNode = errors.New("unknown node")
	// ErrPathNotFound is returned when a structural path does not resolve.
	ErrPathNotFound = errors.New("path not found")
)

// NodeID identifies a node inside one Tree. Identifiers are assigned in
// depth-first document order and are not meaningful across trees.
type NodeID int

// NoNode is the parent of the document root.
const NoNode NodeID = -1

// Node is one entry of the arena. Callers receive copies.
type Node struct {
	ID       NodeID
	Label    string
	Kind     value.Kind
	Value    value.Value
	Children []NodeID
	Parent   NodeID
	Expanded bool
	// Index is the position among the parent's children.
	Index int

	// end is one past the last identifier of the subtree rooted here.
	end NodeID
}

// IsComposite reports whether the node is an Array or Object.
func (n Node) IsComposite() bool {
	return n.Kind == value.Array || n.Kind == value.Object
}

// Expandable reports whether the node has children to show.
func (n Node) Expandable() bool {
	return n.IsComposite() && len(n.Children) > 0
}

// Tree owns every node. Other components refer to nodes by NodeID only.
type Tree struct {
	nodes   []Node
	root    NodeID
	history []NodeID
}

// Build creates the arena for v. The document root is labelled RootLabel
// and starts expanded.
func Build(v value.Value) *Tree {
	t := &Tree{}
	t.add(v, RootLabel, NoNode, 0)
	t.nodes[0].Expanded = t.nodes[0].Expandable()
	return t
}

func (t *Tree) add(v value.Value, label string, parent NodeID, index int) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		ID:     id,
		Label:  label,
		Kind:   v.Kind,
		Value:  v,
		Parent: parent,
		Index:  index,
	})
	var children []NodeID
	switch v.Kind {
	case value.Array:
		children = make([]NodeID, 0, len(v.Items))
		for i, item := range v.Items {
			children = append(children, t.add(item, strconv.Itoa(i), id, i))
		}
	case value.Object:
		children = make([]NodeID, 0, len(v.Fields))
		for i, f := range v.Fields {
			children = append(children, t.add(f.Value, f.Key, id, i))
		}
	}
	t.nodes[id].Children = children
	t.nodes[id].end = NodeID(len(t.nodes))
	return id
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Node returns a copy of the node.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if !t.valid(id) {
		return Node{}, false
	}
	n := t.nodes[id]
	n.Children = append([]NodeID(nil), n.Children...)
	return n, true
}

// Root returns the active root.
func (t *Tree) Root() NodeID {
	return t.root
}

// DocumentRoot returns the root of the whole document.
func (t *Tree) DocumentRoot() NodeID {
	return 0
}

// History returns the stack of previous roots, oldest first.
func (t *Tree) History() []NodeID {
	return append([]NodeID(nil), t.history...)
}

// ChildrenOf returns the children of id in document order. Primitives,
// empty composites and unknown identifiers yield an empty slice.
func (t *Tree) ChildrenOf(id NodeID) []NodeID {
	if !t.valid(id) {
		return []NodeID{}
	}
	return append([]NodeID{}, t.nodes[id].Children...)
}

// Parent returns the parent of id, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].Parent
}

// Label returns the display label of id.
func (t *Tree) Label(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	return t.nodes[id].Label
}

// IsExpanded reports the expand flag of id.
func (t *Tree) IsExpanded(id NodeID) bool {
	return t.valid(id) && t.nodes[id].Expanded
}

// ToggleExpand flips the expand flag. Primitives and empty composites are
// left untouched and report false.
func (t *Tree) ToggleExpand(id NodeID) bool {
	if !t.valid(id) || !t.nodes[id].Expandable() {
		return false
	}
	t.nodes[id].Expanded = !t.nodes[id].Expanded
	return true
}

// SetExpanded sets the expand flag and reports whether it changed.
func (t *Tree) SetExpanded(id NodeID, expanded bool) bool {
	if !t.valid(id) || !t.nodes[id].Expandable() || t.nodes[id].Expanded == expanded {
		return false
	}
	t.nodes[id].Expanded = expanded
	return true
}

// ExpandAll expands every composite under the active root.
func (t *Tree) ExpandAll() {
	for id := t.root; id < t.nodes[t.root].end; id++ {
		if t.nodes[id].Expandable() {
			t.nodes[id].Expanded = true
		}
	}
}

// CollapseAll collapses every composite under the active root, except the
// active root itself.
func (t *Tree) CollapseAll() {
	for id := t.root + 1; id < t.nodes[t.root].end; id++ {
		t.nodes[id].Expanded = false
	}
}

// ExpandTo expands every ancestor of id so it becomes reachable.
func (t *Tree) ExpandTo(id NodeID) {
	if !t.valid(id) {
		return
	}
	for p := t.nodes[id].Parent; p != NoNode; p = t.nodes[p].Parent {
		t.nodes[p].Expanded = true
	}
}

// ChangeRoot makes id the active root, pushing the current one onto the
// history. The new root is expanded.
func (t *Tree) ChangeRoot(id NodeID) error {
	if !t.valid(id) {
		return fmt.Errorf("change root to %d: %w", id, ErrUnknownNode)
	}
	if !t.nodes[id].IsComposite() {
		return fmt.Errorf("change root to %q: %w", t.nodes[id].Label, ErrRootOnLeaf)
	}
	if id == t.root {
		return nil
	}
	t.history = append(t.history, t.root)
	t.root = id
	if t.nodes[id].Expandable() {
		t.nodes[id].Expanded = true
	}
	return nil
}

// Reset restores the document root and clears the history. It reports
// false when the document root was already active.
func (t *Tree) Reset() bool {
	if t.root == 0 && len(t.history) == 0 {
		return false
	}
	t.root = 0
	t.history = nil
	return true
}

// RestoreRoots installs chain as history plus active root, the last entry
// becoming the active root. Every entry must be a composite.
func (t *Tree) RestoreRoots(chain []NodeID) error {
	if len(chain) == 0 {
		t.Reset()
		return nil
	}
	for _, id := range chain {
		if !t.valid(id) {
			return fmt.Errorf("restore root %d: %w", id, ErrUnknownNode)
		}
		if !t.nodes[id].IsComposite() {
			return fmt.Errorf("restore root %q: %w", t.nodes[id].Label, ErrRootOnLeaf)
		}
	}
	t.history = append([]NodeID(nil), chain[:len(chain)-1]...)
	t.root = chain[len(chain)-1]
	return nil
}

// IsAncestor reports whether a is a strict ancestor of b.
func (t *Tree) IsAncestor(a, b NodeID) bool {
	if !t.valid(a) || !t.valid(b) {
		return false
	}
	return a < b && b < t.nodes[a].end
}

// Contains reports whether id lies in the active subtree.
func (t *Tree) Contains(id NodeID) bool {
	return id == t.root || t.IsAncestor(t.root, id)
}

// Depth returns the distance from the active root, or -1 outside of it.
func (t *Tree) Depth(id NodeID) int {
	if !t.Contains(id) {
		return -1
	}
	depth := 0
	for cur := id; cur != t.root; cur = t.nodes[cur].Parent {
		depth++
	}
	return depth
}

// Walk visits the active subtree in depth-first document order until fn
// returns false.
func (t *Tree) Walk(fn func(id NodeID) bool) {
	for id := t.root; id < t.nodes[t.root].end; id++ {
		if !fn(id) {
			return
		}
	}
}

// Visible flattens the active subtree into display rows: the active root
// first, then the children of expanded composites. Nodes rejected by keep
// are hidden together with their subtree. A nil keep shows everything.
func (t *Tree) Visible(keep func(id NodeID) bool) []NodeID {
	var rows []NodeID
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if keep != nil && id != t.root && !keep(id) {
			continue
		}
		rows = append(rows, id)
		n := &t.nodes[id]
		if !n.Expanded {
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return rows
}

// IsVisible reports whether id would appear in Visible(keep).
func (t *Tree) IsVisible(id NodeID, keep func(id NodeID) bool) bool {
	if !t.Contains(id) {
		return false
	}
	for cur := id; cur != t.root; {
		if keep != nil && !keep(cur) {
			return false
		}
		cur = t.nodes[cur].Parent
		if !t.nodes[cur].Expanded {
			return false
		}
	}
	return true
}

// Summary describes a node in one line: item or field counts for
// composites, the plain text for primitives.
func (t *Tree) Summary(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	n := t.nodes[id]
	switch n.Kind {
	case value.Array:
		return countSummary("[", "]", len(n.Children), "item")
	case value.Object:
		return countSummary("{", "}", len(n.Children), "field")
	default:
		return n.Value.Text()
	}
}

func countSummary(open, closing string, n int, noun string) string {
	if n != 1 {
		noun += "s"
	}
	return fmt.Sprintf("%s %d %s %s", open, n, noun, closing)
}
