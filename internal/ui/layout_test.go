package ui

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestLayoutColumns(t *testing.T) {
	tests := []struct {
		name     string
		layout   Layout
		wantTree int
		wantPane int
	}{
		{"split", Layout{Width: 100, Height: 20, Preview: true, TreeSize: 40}, 40, 60},
		{"preview off", Layout{Width: 100, Height: 20, TreeSize: 40}, 100, 0},
		{"too narrow", Layout{Width: MinSplitWidth - 1, Height: 20, Preview: true, TreeSize: 40}, MinSplitWidth - 1, 0},
		{"too short", Layout{Width: 100, Height: 5, Preview: true, TreeSize: 40}, 100, 0},
		{"filter line", Layout{Width: 100, Height: 6, Filtering: true, Preview: true, TreeSize: 40}, 100, 0},
		{"wide tree", Layout{Width: 90, Height: 20, Preview: true, TreeSize: 80}, 72, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, pane := tt.layout.Columns()
			if tree != tt.wantTree || pane != tt.wantPane {
				t.Fatalf("Columns() = %d, %d; want %d, %d", tree, pane, tt.wantTree, tt.wantPane)
			}
		})
	}
}

func TestLayoutBodyHeight(t *testing.T) {
	l := Layout{Width: 80, Height: 24}
	if got := l.BodyHeight(); got != 21 {
		t.Fatalf("BodyHeight() = %d, want 21", got)
	}
	l.Filtering = true
	if got := l.BodyHeight(); got != 20 {
		t.Fatalf("BodyHeight() while filtering = %d, want 20", got)
	}
	l.Height = 1
	if got := l.BodyHeight(); got != 1 {
		t.Fatalf("BodyHeight() on a tiny screen = %d, want 1", got)
	}
}

func TestLayoutPaneInner(t *testing.T) {
	w, h := Layout{Width: 100, Height: 20, Preview: true, TreeSize: 40}.PaneInner()
	if w != 58 || h != 15 {
		t.Fatalf("PaneInner() = %d, %d; want 58, 15", w, h)
	}
	w, h = Layout{Width: 100, Height: 20, TreeSize: 40}.PaneInner()
	if w != 0 || h != 0 {
		t.Fatalf("PaneInner() without pane = %d, %d", w, h)
	}
}

func TestClampTreeSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultTreeSize},
		{5, 20},
		{55, 55},
		{95, 80},
	}
	for _, tt := range tests {
		if got := clampTreeSize(tt.in); got != tt.want {
			t.Errorf("clampTreeSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestJoinColumns(t *testing.T) {
	out := joinColumns([]string{"ab", "abcd"}, 6, "|x|\n|y|")
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	for i, want := range []string{"ab    |x|", "abcd  |y|"} {
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
		if lipgloss.Width(lines[i]) != 9 {
			t.Errorf("line %d width = %d", i, lipgloss.Width(lines[i]))
		}
	}
}
