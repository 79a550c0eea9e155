package core

import (
	"github.com/fioncat/otree/internal/filter"
	"github.com/fioncat/otree/internal/tree"
	"github.com/fioncat/otree/internal/value"
)

// Row is the render projection of one visible node. It holds values only.
type Row struct {
	ID         tree.NodeID
	Depth      int
	Label      string
	Kind       value.Kind
	Summary    string
	Expandable bool
	Expanded   bool
	IsMatch    bool
	// IsCurrentMatch marks the match n/N cycle to.
	IsCurrentMatch bool
	LabelSpans     []filter.Span
	ValueSpans     []filter.Span
	IsCursor       bool
}

// Rows projects the visible rows in display order.
func (e *Engine) Rows() []Row {
	ids := e.nav.Rows()
	cursor := e.nav.Cursor()
	current, _ := e.filter.Current()

	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		node, _ := e.tree.Node(id)
		rows = append(rows, Row{
			ID:             id,
			Depth:          e.tree.Depth(id),
			Label:          node.Label,
			Kind:           node.Kind,
			Summary:        e.tree.Summary(id),
			Expandable:     node.Expandable(),
			Expanded:       node.Expanded,
			IsMatch:        e.filter.IsMatch(id),
			IsCurrentMatch: id == current,
			LabelSpans:     e.filter.LabelSpans(id),
			ValueSpans:     e.filter.ValueSpans(id),
			IsCursor:       id == cursor,
		})
	}
	return rows
}

// CursorRow returns the index of the cursor within Rows.
func (e *Engine) CursorRow() int {
	return e.nav.RowIndex()
}
