package ui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/fioncat/otree/internal/config"
)

// Line counts of the fixed screen parts.
const (
	HeaderLineCount = 1
	StatusLineCount = 1
	LegendLineCount = 1
	FilterLineCount = 1
)

const (
	DefaultTreeSize = 40
	TreeSizeStep    = 5
	// MinSplitWidth is the narrowest screen that still gets a preview pane.
	MinSplitWidth = 40
	// MinPaneHeight fits both borders and one content line.
	MinPaneHeight = 3
)

// Layout splits the screen between the tree and the preview pane.
type Layout struct {
	Width     int
	Height    int
	Filtering bool
	Preview   bool
	// TreeSize is the percentage of Width used by the tree.
	TreeSize int
}

// BodyHeight is the number of lines between the header and the bars below.
func (l Layout) BodyHeight() int {
	h := l.Height - HeaderLineCount - StatusLineCount - LegendLineCount
	if l.Filtering {
		h -= FilterLineCount
	}
	return max(1, h)
}

// Split reports whether the preview pane is drawn.
func (l Layout) Split() bool {
	return l.Preview && l.Width >= MinSplitWidth && l.BodyHeight() >= MinPaneHeight
}

// Columns returns the tree width and the outer pane width. The pane width
// is zero when the tree takes the whole screen.
func (l Layout) Columns() (tree, pane int) {
	if !l.Split() {
		return l.Width, 0
	}
	tree = l.Width * l.TreeSize / 100
	return tree, l.Width - tree
}

// PaneInner returns the pane size inside its border.
func (l Layout) PaneInner() (width, height int) {
	_, pane := l.Columns()
	if pane == 0 {
		return 0, 0
	}
	return pane - 2, l.BodyHeight() - 2
}

// clampTreeSize keeps size inside the configured bounds.
func clampTreeSize(size int) int {
	if size == 0 {
		return DefaultTreeSize
	}
	return min(config.MaxTreeSize, max(config.MinTreeSize, size))
}

// joinColumns pads the tree lines to treeWidth and places pane beside them.
func joinColumns(treeLines []string, treeWidth int, pane string) string {
	padded := make([]string, len(treeLines))
	for i, line := range treeLines {
		padded[i] = line
		if w := lipgloss.Width(line); w < treeWidth {
			padded[i] += strings.Repeat(" ", treeWidth-w)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(padded, "\n"), pane)
}
