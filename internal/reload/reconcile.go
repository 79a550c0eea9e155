// Package reload carries navigation state from one tree onto a freshly
// parsed one and watches the source file for changes.
package reload

import (
	"github.com/fioncat/otree/internal/tree"
	"github.com/fioncat/otree/internal/value"
)

// Outcome is the result of rebasing state onto a new tree.
type Outcome struct {
	Tree *tree.Tree
	// Cursor is the node at the old cursor's path, or the document root.
	Cursor         tree.NodeID
	CursorResolved bool
	// HistoryKept counts the entries of history plus active root that
	// survived; HistoryDropped the ones cut off after the first miss.
	HistoryKept    int
	HistoryDropped int
	ExpandedKept   int
}

// Reconcile builds a tree for v and transfers expand flags, the root
// history and the cursor from old by structural path. Misses are dropped
// silently. old is not modified.
func Reconcile(old *tree.Tree, cursor tree.NodeID, v value.Value) *Outcome {
	next := tree.Build(v)
	mapping := matchPaths(old, next)

	out := &Outcome{Tree: next, Cursor: next.DocumentRoot()}

	for oldID, newID := range mapping {
		oldNode, _ := old.Node(oldID)
		newNode, _ := next.Node(newID)
		if !oldNode.IsComposite() || !newNode.IsComposite() {
			continue
		}
		next.SetExpanded(newID, oldNode.Expanded)
		out.ExpandedKept++
	}

	chain := append(old.History(), old.Root())
	var kept []tree.NodeID
	for _, oldID := range chain {
		newID, ok := mapping[oldID]
		if !ok {
			break
		}
		if n, _ := next.Node(newID); !n.IsComposite() {
			break
		}
		kept = append(kept, newID)
	}
	// kept holds composites only
	_ = next.RestoreRoots(kept)
	out.HistoryKept = len(kept)
	out.HistoryDropped = len(chain) - len(kept)

	if newID, ok := mapping[cursor]; ok {
		out.Cursor = newID
		out.CursorResolved = true
	}
	return out
}

// matchPaths pairs every node of old with the node at the same structural
// path in next, walking both trees together.
func matchPaths(old, next *tree.Tree) map[tree.NodeID]tree.NodeID {
	mapping := make(map[tree.NodeID]tree.NodeID, old.Len())
	type pair struct{ old, next tree.NodeID }
	stack := []pair{{old.DocumentRoot(), next.DocumentRoot()}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		mapping[p.old] = p.next

		oldNode, _ := old.Node(p.old)
		newNode, _ := next.Node(p.next)
		if len(oldNode.Children) == 0 || len(newNode.Children) == 0 || oldNode.Kind != newNode.Kind {
			continue
		}
		byLabel := make(map[string]tree.NodeID, len(newNode.Children))
		for _, c := range newNode.Children {
			byLabel[next.Label(c)] = c
		}
		for _, c := range oldNode.Children {
			if match, ok := byLabel[old.Label(c)]; ok {
				stack = append(stack, pair{c, match})
			}
		}
	}
	return mapping
}
