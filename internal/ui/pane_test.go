package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/fioncat/otree/internal/formatter"
	"github.com/fioncat/otree/pkg/loader"
)

func testPane(content string) *dataPane {
	p := &dataPane{}
	p.setPayload(paneSource{node: 1}, formatter.Payload{Path: "spec", Format: loader.YAML, Content: content})
	return p
}

func TestDataPaneSetPayload(t *testing.T) {
	p := testPane("a: 1\nlong:\twide\n")
	if p.title != "yaml spec" {
		t.Fatalf("title = %q", p.title)
	}
	if len(p.lines) != 2 {
		t.Fatalf("lines = %q, trailing newline must not add a line", p.lines)
	}
	if strings.Contains(p.lines[1], "\t") {
		t.Fatalf("tab left in %q", p.lines[1])
	}
	if want := runewidth.StringWidth(p.lines[1]); p.longest != want {
		t.Fatalf("longest = %d, want %d", p.longest, want)
	}

	p.top, p.left = 3, 3
	p.setPayload(paneSource{node: 2}, formatter.Payload{Content: "x"})
	if p.top != 0 || p.left != 0 || p.title != "json root" {
		t.Fatalf("new payload kept state: top=%d left=%d title=%q", p.top, p.left, p.title)
	}
}

func TestDataPaneSetError(t *testing.T) {
	p := &dataPane{}
	p.setError(paneSource{}, errors.New("payload spec: broken"))
	if !p.loaded || p.title != "error" || p.lines[0] != "payload spec: broken" {
		t.Fatalf("pane = %+v", p)
	}
}

func TestDataPaneScrollClamps(t *testing.T) {
	p := testPane("1\n2\n3\n4\n5\n" + strings.Repeat("x", 30))
	tests := []struct {
		name             string
		dy, dx           int
		wantTop, wantLft int
	}{
		{"down", 2, 0, 2, 0},
		{"past end", 10, 0, 3, 0},
		{"right", 0, 25, 3, 20},
		{"back to start", -10, -40, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.scroll(tt.dy, tt.dx, 10, 3)
			if p.top != tt.wantTop || p.left != tt.wantLft {
				t.Fatalf("offset = %d,%d; want %d,%d", p.top, p.left, tt.wantTop, tt.wantLft)
			}
		})
	}

	short := testPane("a")
	short.scroll(5, 5, 10, 3)
	if short.top != 0 || short.left != 0 {
		t.Fatalf("content that fits must not scroll: %d,%d", short.top, short.left)
	}
}

func TestDataPaneView(t *testing.T) {
	p := testPane("first\nsecond\nthird")
	p.top = 1
	out := p.view(12, 4, false, newStyles(Theme{}, true))
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "╭") || !strings.Contains(lines[3], "╰") {
		t.Fatalf("rounded border expected:\n%s", out)
	}
	if !strings.Contains(lines[1], "second") || !strings.Contains(lines[2], "third") {
		t.Fatalf("scrolled content expected:\n%s", out)
	}
	if strings.Contains(out, "first") {
		t.Fatalf("scrolled-off line drawn:\n%s", out)
	}

	focused := p.view(12, 4, true, newStyles(Theme{}, true))
	if !strings.Contains(focused, "┏") {
		t.Fatalf("thick border expected:\n%s", focused)
	}
}

func TestSliceColumns(t *testing.T) {
	tests := []struct {
		s           string
		left, width int
		want        string
	}{
		{"abcdef", 2, 3, "cde"},
		{"abc", 5, 3, ""},
		{"abc", 0, 10, "abc"},
		{"日本語", 1, 4, "本語"},
		{"日本語", 0, 3, "日"},
	}
	for _, tt := range tests {
		got := sliceColumns(tt.s, tt.left, tt.width)
		if got != tt.want {
			t.Errorf("sliceColumns(%q, %d, %d) = %q, want %q", tt.s, tt.left, tt.width, got, tt.want)
		}
		if w := runewidth.StringWidth(got); w > tt.width {
			t.Errorf("sliceColumns(%q) width %d exceeds %d", tt.s, w, tt.width)
		}
	}
}
