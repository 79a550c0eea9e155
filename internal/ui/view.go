package ui

import (
	"fmt"
	"strings"
	"unicode"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/fioncat/otree/internal/filter"
	"github.com/fioncat/otree/internal/value"
	"github.com/fioncat/otree/pkg/core"
	"github.com/fioncat/otree/pkg/settings"
)

const ellipsis = "…"

// View renders the full screen.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderHeader())

	rows := m.engine.Rows()
	l := m.layout()
	h := l.BodyHeight()
	treeWidth, paneWidth := l.Columns()
	body := make([]string, 0, h)
	start := min(m.offset, len(rows))
	end := min(len(rows), start+h)
	for _, row := range rows[start:end] {
		body = append(body, m.renderRow(row, treeWidth))
	}
	for i := end - start; i < h; i++ {
		body = append(body, "")
	}
	if paneWidth > 0 {
		body = []string{joinColumns(body, treeWidth, m.pane.view(paneWidth, h, m.paneFocused, m.styles))}
	}
	lines = append(lines, body...)

	if m.filtering {
		lines = append(lines, m.filterInput.View())
	}
	lines = append(lines, m.renderStatus(), m.styles.summary.Render(clipText(keyLegend, m.width)))
	return strings.Join(lines, "\n")
}

func (m *Model) renderHeader() string {
	text := fmt.Sprintf("%s  %s  [%s]", settings.CliBinaryName, displayPath(m.engine.RootPath()), m.engine.Format())
	return m.styles.header.Render(clipText(text, m.width))
}

func (m *Model) renderStatus() string {
	parts := []string{displayPath(m.engine.CursorPath())}

	state := m.engine.Filter()
	if state.Active() {
		flags := []string{"mode:" + state.Mode.String()}
		if state.IgnoreCase {
			flags = append(flags, "ic")
		}
		if state.Exclude {
			flags = append(flags, "ex")
		}
		if state.Regex {
			flags = append(flags, "re")
		}
		match := "0/0"
		if n := m.engine.MatchCount(); n > 0 {
			match = fmt.Sprintf("%d/%d", m.engine.MatchIndex()+1, n)
		}
		parts = append(parts, fmt.Sprintf("/%s [%s] %s", sanitize(state.Query), strings.Join(flags, " "), match))
	}

	text := strings.Join(parts, "  ")
	if m.status == "" {
		return m.styles.status.Render(clipText(text, m.width))
	}
	style := m.styles.status
	if m.statusErr {
		style = m.styles.err
	}
	return style.Render(clipText(text+"  "+sanitize(m.status), m.width))
}

// segment is a piece of a row drawn in one base style, with optional
// highlight spans counted in runes.
type segment struct {
	text  string
	spans []filter.Span
	style lipgloss.Style
}

func (m *Model) renderRow(row core.Row, width int) string {
	st := m.styles
	marker := "  "
	if row.Expandable {
		marker = "▸ "
		if row.Expanded {
			marker = "▾ "
		}
	}

	segs := []segment{
		{text: strings.Repeat("  ", row.Depth) + marker, style: lipgloss.NewStyle()},
		{text: row.Label, spans: row.LabelSpans, style: st.key},
	}
	if m.showTypes {
		segs = append(segs, segment{text: " " + row.Kind.String(), style: st.summary})
	}
	segs = append(segs, segment{text: ": ", style: lipgloss.NewStyle()})
	if row.Kind == value.Array || row.Kind == value.Object {
		segs = append(segs, segment{text: row.Summary, style: st.summary})
	} else {
		segs = append(segs, segment{text: row.Summary, spans: row.ValueSpans, style: st.value})
	}

	matchStyle := st.match
	if row.IsCurrentMatch {
		matchStyle = st.currentMatch
	}
	return m.renderSegments(segs, matchStyle, row.IsCursor, width)
}

// renderSegments draws segs clipped to width. Spans are
// measured on the sanitized text, which keeps one rune per input rune.
func (m *Model) renderSegments(segs []segment, matchStyle lipgloss.Style, cursor bool, width int) string {
	total := 0
	for i := range segs {
		segs[i].text = sanitize(segs[i].text)
		total += runewidth.StringWidth(segs[i].text)
	}
	room := total
	clipped := total > width
	if clipped {
		room = max(0, width-runewidth.StringWidth(ellipsis))
	}

	var b strings.Builder
	used := 0
	for _, seg := range segs {
		if used >= room {
			break
		}
		var run []rune
		runMatch := false
		flush := func() {
			if len(run) == 0 {
				return
			}
			style := seg.style
			if runMatch {
				style = matchStyle
			}
			b.WriteString(m.styles.onCursor(style, cursor).Render(string(run)))
			run = run[:0]
		}
		for i, r := range []rune(seg.text) {
			w := runewidth.RuneWidth(r)
			if used+w > room {
				break
			}
			matched := inSpans(i, seg.spans)
			if matched != runMatch {
				flush()
				runMatch = matched
			}
			run = append(run, r)
			used += w
		}
		flush()
	}
	if clipped {
		b.WriteString(m.styles.onCursor(lipgloss.NewStyle(), cursor).Render(ellipsis))
		used += runewidth.StringWidth(ellipsis)
	}
	if cursor && used < width {
		b.WriteString(m.styles.onCursor(lipgloss.NewStyle(), cursor).Render(strings.Repeat(" ", width-used)))
	}
	return b.String()
}

func inSpans(i int, spans []filter.Span) bool {
	for _, sp := range spans {
		if i >= sp.Start && i < sp.End {
			return true
		}
	}
	return false
}

// sanitize replaces control runes one for one so span offsets stay valid.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r':
			return '↵'
		case '\t':
			return '→'
		}
		if unicode.IsControl(r) {
			return '·'
		}
		return r
	}, s)
}

func clipText(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, ellipsis)
}
