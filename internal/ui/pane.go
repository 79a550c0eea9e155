package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/fioncat/otree/internal/formatter"
	"github.com/fioncat/otree/internal/tree"
)

// paneSource identifies the payload a pane shows.
type paneSource struct {
	node       tree.NodeID
	generation int
}

// dataPane holds the serialized cursor value and its scroll offsets.
type dataPane struct {
	source paneSource
	loaded bool
	title  string
	lines  []string
	// widest line in display columns
	longest int
	top     int
	left    int
}

func (p *dataPane) setPayload(src paneSource, payload formatter.Payload) {
	p.reset(src)
	p.title = fmt.Sprintf("%s %s", payload.Format, displayPath(payload.Path))
	p.lines = strings.Split(strings.TrimRight(payload.Content, "\n"), "\n")
	for i, line := range p.lines {
		p.lines[i] = sanitize(line)
		p.longest = max(p.longest, runewidth.StringWidth(p.lines[i]))
	}
}

func (p *dataPane) setError(src paneSource, err error) {
	p.reset(src)
	p.title = "error"
	p.lines = []string{sanitize(err.Error())}
	p.longest = runewidth.StringWidth(p.lines[0])
}

func (p *dataPane) reset(src paneSource) {
	*p = dataPane{source: src, loaded: true}
}

// scroll moves the view by dy lines and dx columns inside a width x
// height window, stopping at the content edges.
func (p *dataPane) scroll(dy, dx, width, height int) {
	p.top = min(max(0, p.top+dy), max(0, len(p.lines)-height))
	p.left = min(max(0, p.left+dx), max(0, p.longest-width))
}

// view draws the pane with its border at the given outer size.
func (p *dataPane) view(width, height int, focused bool, st styles) string {
	inner := max(1, width-2)
	rows := max(1, height-2)

	border := lipgloss.RoundedBorder()
	paint := st.paneBorder
	if focused {
		border = lipgloss.ThickBorder()
		paint = st.paneFocus
	}

	title := runewidth.Truncate(" "+p.title+" ", inner, "")
	fill := inner - runewidth.StringWidth(title)
	lines := make([]string, 0, rows+2)
	lines = append(lines, paint.Render(border.TopLeft)+st.header.Render(title)+paint.Render(strings.Repeat(border.Top, fill)+border.TopRight))
	for i := range rows {
		text := ""
		if idx := p.top + i; idx < len(p.lines) {
			text = sliceColumns(p.lines[idx], p.left, inner)
		}
		if pad := inner - runewidth.StringWidth(text); pad > 0 {
			text += strings.Repeat(" ", pad)
		}
		lines = append(lines, paint.Render(border.Left)+st.value.Render(text)+paint.Render(border.Right))
	}
	lines = append(lines, paint.Render(border.BottomLeft+strings.Repeat(border.Bottom, inner)+border.BottomRight))
	return strings.Join(lines, "\n")
}

// sliceColumns returns the part of s that starts at display column left
// and fits in width columns. A wide rune cut by either edge is dropped.
func sliceColumns(s string, left, width int) string {
	var b strings.Builder
	col, used := 0, 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if col < left {
			col += w
			continue
		}
		if used+w > width {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String()
}
