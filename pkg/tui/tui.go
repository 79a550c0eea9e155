// Package tui embeds the otree browser in other programs.
package tui

import (
	"context"
	"io"
	"os"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/fioncat/otree/internal/formatter"
	"github.com/fioncat/otree/internal/ui"
	"github.com/fioncat/otree/pkg/core"
	"github.com/fioncat/otree/pkg/loader"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// DetectTerminalSize returns the best-effort terminal width and height by probing
// stdout, stderr, and stdin, then falling back to the COLUMNS environment variable.
// If detection fails completely, returns generous defaults (120, 24).
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

// NewEngine parses data and prepares an engine the way cfg describes:
// limiter, initial filter, start root and expansion.
func NewEngine(data []byte, format loader.Format, cfg Config) (*core.Engine, error) {
	limits := cfg.limiter()
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	state, err := cfg.filterState()
	if err != nil {
		return nil, err
	}
	opts := []core.Option{core.WithLimiter(limits), core.WithFilter(state)}
	if cfg.PageSize > 0 {
		opts = append(opts, core.WithPageSize(cfg.PageSize))
	}
	if cfg.Logger.GetSink() != nil {
		opts = append(opts, core.WithLogger(cfg.Logger))
	}

	engine, err := core.New(data, format, opts...)
	if err != nil {
		return nil, err
	}
	if cfg.Root != "" {
		if err := engine.ChangeRootTo(cfg.Root); err != nil {
			return nil, err
		}
	}
	if cfg.ExpandAll {
		engine.ExpandAll()
	}
	return engine, nil
}

// Run starts the interactive browser over data. Host applications can pass
// optional tea.ProgramOption values to control IO.
func Run(ctx context.Context, data []byte, format loader.Format, cfg Config, opts ...tea.ProgramOption) error {
	engine, err := NewEngine(data, format, cfg)
	if err != nil {
		return err
	}
	return ui.Run(ctx, engine, cfg.uiOptions(), opts...)
}

// RenderTree prints the visible tree of data without starting a program.
func RenderTree(data []byte, format loader.Format, cfg Config, opts TreeOptions) (string, error) {
	if err := formatter.ValidateArrayStyle(opts.ArrayStyle); err != nil {
		return "", err
	}
	engine, err := NewEngine(data, format, cfg)
	if err != nil {
		return "", err
	}
	return formatter.FormatAsTree(engine.Tree(), engine.Visibility(), opts), nil
}

// WithIO returns tea.ProgramOptions to set custom input/output.
func WithIO(in io.Reader, out io.Writer) []tea.ProgramOption {
	opts := []tea.ProgramOption{}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}
