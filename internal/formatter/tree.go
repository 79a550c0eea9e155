package formatter

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/fioncat/otree/internal/tree"
	"github.com/fioncat/otree/internal/value"
)

// TreeOptions controls tree output formatting.
type TreeOptions struct {
	// NoValues hides values at leaf nodes (structure only).
	NoValues bool
	// MaxDepth limits tree depth (0 = unlimited).
	MaxDepth int
	// MaxStringLen is the max display width of inline values.
	// 0 or negative = no truncation (unlimited).
	MaxStringLen int
	// ArrayStyle controls how array indices are displayed:
	// "index" = [0], [1]; "numbered" = 1, 2; "bullet" = •; "none" = skip index.
	ArrayStyle string
}

// ValidArrayStyles contains all valid array style values.
var ValidArrayStyles = []string{"index", "numbered", "bullet", "none"}

// ValidateArrayStyle returns an error if the style is invalid.
func ValidateArrayStyle(style string) error {
	if style == "" {
		return nil // empty means use default
	}
	for _, valid := range ValidArrayStyles {
		if style == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid array-style %q: valid values are index, numbered, bullet, none", style)
}

// FormatArrayIndex formats an array index based on style.
func FormatArrayIndex(i int, style string) string {
	switch style {
	case "numbered":
		return fmt.Sprintf("%d", i+1)
	case "bullet":
		return "•"
	case "none":
		return ""
	default: // "index" or empty
		return fmt.Sprintf("[%d]", i)
	}
}

// formatKeyValue formats a key-value pair for display.
// If key is empty (e.g., from array-style none), returns just the value.
func formatKeyValue(key, value string) string {
	if key == "" {
		return value
	}
	return key + ": " + value
}

// formatKeyOnly returns the key or a placeholder if empty.
func formatKeyOnly(key string) string {
	if key == "" {
		return "(item)"
	}
	return key
}

// FormatAsTree renders the visible part of t as an ASCII tree: expanded
// composites become branches, collapsed ones show their summary and
// primitives their value. Nodes rejected by keep are left out.
func FormatAsTree(t *tree.Tree, keep func(tree.NodeID) bool, opts TreeOptions) string {
	p := &treePrinter{tree: t, keep: keep, opts: opts}
	out := treeprint.New()

	root, _ := t.Node(t.Root())
	label := root.Label
	if t.Root() != t.DocumentRoot() {
		label = t.PathString(t.Root())
	}
	if !root.IsComposite() {
		out.SetValue(formatKeyValue(label, p.leafText(root)))
		return out.String()
	}
	out.SetValue(label)
	if root.Expanded {
		p.addChildren(out, root.ID, 0)
	}
	return out.String()
}

type treePrinter struct {
	tree *tree.Tree
	keep func(tree.NodeID) bool
	opts TreeOptions
}

func (p *treePrinter) addChildren(branch treeprint.Tree, id tree.NodeID, depth int) {
	for _, child := range p.tree.ChildrenOf(id) {
		if p.keep != nil && !p.keep(child) {
			continue
		}
		p.addNode(branch, child, depth)
	}
}

func (p *treePrinter) addNode(branch treeprint.Tree, id tree.NodeID, depth int) {
	n, _ := p.tree.Node(id)
	key := n.Label
	if parent, _ := p.tree.Node(n.Parent); parent.Kind == value.Array {
		key = FormatArrayIndex(n.Index, p.opts.ArrayStyle)
	}

	switch {
	case p.opts.MaxDepth > 0 && depth >= p.opts.MaxDepth:
		branch.AddNode(formatKeyValue(key, "..."))
	case n.Expanded:
		p.addChildren(branch.AddBranch(formatKeyOnly(key)), id, depth+1)
	case p.opts.NoValues:
		branch.AddNode(formatKeyOnly(key))
	default:
		branch.AddNode(formatKeyValue(key, p.leafText(n)))
	}
}

func (p *treePrinter) leafText(n tree.Node) string {
	text := Stringify(n.Value)
	if n.IsComposite() {
		text = p.tree.Summary(n.ID)
	}
	return Truncate(text, p.opts.MaxStringLen)
}
