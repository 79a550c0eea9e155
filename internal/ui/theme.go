package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/fioncat/otree/internal/config"
)

// Theme defines colors used across the UI.
type Theme struct {
	KeyColor          color.Color // Labels
	ValueColor        color.Color // Primitive values
	SummaryColor      color.Color // Composite summaries and type hints
	MatchColor        color.Color // Filter matches
	CurrentMatchColor color.Color // The match n/N points at
	CursorBG          color.Color // Selected row background
	StatusColor       color.Color // Normal status bar text
	ErrorColor        color.Color // Error status bar text
}

// ThemeFromColors converts configured color strings into a theme.
func ThemeFromColors(c config.Colors) Theme {
	return Theme{
		KeyColor:          lipgloss.Color(c.Key),
		ValueColor:        lipgloss.Color(c.Value),
		SummaryColor:      lipgloss.Color(c.Summary),
		MatchColor:        lipgloss.Color(c.Match),
		CurrentMatchColor: lipgloss.Color(c.CurrentMatch),
		CursorBG:          lipgloss.Color(c.Cursor),
		StatusColor:       lipgloss.Color(c.Status),
		ErrorColor:        lipgloss.Color(c.Error),
	}
}

// styles are the lipgloss styles derived from a theme.
type styles struct {
	key          lipgloss.Style
	value        lipgloss.Style
	summary      lipgloss.Style
	match        lipgloss.Style
	currentMatch lipgloss.Style
	cursor       lipgloss.Style
	header       lipgloss.Style
	status       lipgloss.Style
	err          lipgloss.Style
	paneBorder   lipgloss.Style
	paneFocus    lipgloss.Style
}

func newStyles(th Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			key:          plain,
			value:        plain,
			summary:      plain,
			match:        plain.Underline(true),
			currentMatch: plain.Underline(true).Bold(true),
			cursor:       plain.Reverse(true),
			header:       plain.Bold(true),
			status:       plain,
			err:          plain.Bold(true),
			paneBorder:   plain,
			paneFocus:    plain.Bold(true),
		}
	}
	return styles{
		key:          lipgloss.NewStyle().Foreground(th.KeyColor),
		value:        lipgloss.NewStyle().Foreground(th.ValueColor),
		summary:      lipgloss.NewStyle().Foreground(th.SummaryColor).Italic(true),
		match:        lipgloss.NewStyle().Foreground(th.MatchColor).Bold(true),
		currentMatch: lipgloss.NewStyle().Foreground(th.CurrentMatchColor).Bold(true).Underline(true),
		cursor:       lipgloss.NewStyle().Background(th.CursorBG),
		header:       lipgloss.NewStyle().Foreground(th.StatusColor).Bold(true),
		status:       lipgloss.NewStyle().Foreground(th.StatusColor),
		err:          lipgloss.NewStyle().Foreground(th.ErrorColor).Bold(true),
		paneBorder:   lipgloss.NewStyle().Foreground(th.SummaryColor),
		paneFocus:    lipgloss.NewStyle().Foreground(th.StatusColor).Bold(true),
	}
}

// onCursor layers the cursor background under s.
func (st styles) onCursor(s lipgloss.Style, cursor bool) lipgloss.Style {
	if !cursor {
		return s
	}
	if st.cursor.GetReverse() {
		return s.Reverse(true)
	}
	return s.Background(st.cursor.GetBackground())
}
