package tui

import (
	"github.com/go-logr/logr"

	"github.com/fioncat/otree/internal/config"
	"github.com/fioncat/otree/internal/filter"
	"github.com/fioncat/otree/internal/formatter"
	"github.com/fioncat/otree/internal/limiter"
	"github.com/fioncat/otree/internal/ui"
)

// Colors are lipgloss color strings: ANSI numbers or "#rrggbb".
type Colors = config.Colors

// TreeOptions controls RenderTree output.
type TreeOptions = formatter.TreeOptions

// Config holds host-provided settings for embedding the browser.
type Config struct {
	PageSize  int
	NoColor   bool
	ShowTypes bool
	Colors    Colors
	// Preview shows the selected value beside the tree; TreeSize is the
	// tree's percentage of the width.
	Preview  bool
	TreeSize int

	// Initial filter. FilterMode is all, key or value.
	Filter     string
	FilterMode string
	IgnoreCase bool
	Regex      bool
	Exclude    bool

	// Root is the path of the node to start at, e.g. "items[0].spec".
	Root      string
	ExpandAll bool

	// Record limiting over a top-level array or object.
	Limit  int
	Offset int
	Tail   int

	// Clipboard receives copied text; nil uses the system clipboard.
	Clipboard func(string) error
	Logger    logr.Logger
}

// DefaultConfig returns a baseline config with the same defaults as the CLI.
func DefaultConfig() Config {
	cfg, _ := config.Default()
	return Config{
		PageSize:   cfg.UI.PageSize,
		NoColor:    cfg.UI.NoColor,
		ShowTypes:  cfg.UI.ShowTypes,
		Colors:     cfg.UI.Colors,
		Preview:    cfg.UI.Preview.Enabled,
		TreeSize:   cfg.UI.Preview.TreeSize,
		FilterMode: cfg.Filter.Mode,
		IgnoreCase: cfg.Filter.IgnoreCase,
		Regex:      cfg.Filter.Regex,
		Exclude:    cfg.Filter.Exclude,
		Logger:     logr.Discard(),
	}
}

func (c Config) filterState() (filter.State, error) {
	mode, err := filter.ParseMode(c.FilterMode)
	if err != nil {
		return filter.State{}, err
	}
	return filter.State{
		Query:      c.Filter,
		Mode:       mode,
		IgnoreCase: c.IgnoreCase,
		Exclude:    c.Exclude,
		Regex:      c.Regex,
	}, nil
}

func (c Config) limiter() limiter.Config {
	return limiter.Config{Limit: c.Limit, Offset: c.Offset, Tail: c.Tail}
}

func (c Config) uiOptions() ui.Options {
	log := c.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return ui.Options{
		Theme:     ui.ThemeFromColors(c.Colors),
		NoColor:   c.NoColor,
		ShowTypes: c.ShowTypes,
		Preview:   c.Preview,
		TreeSize:  c.TreeSize,
		Logger:    log,
		Clipboard: c.Clipboard,
	}
}
