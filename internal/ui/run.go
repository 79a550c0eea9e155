package ui

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/fioncat/otree/pkg/core"
)

// Run starts the TUI over engine and blocks until the user quits or ctx
// is cancelled. Extra ProgramOptions (e.g., custom IO) are passed through
// to tea.NewProgram.
func Run(ctx context.Context, engine *core.Engine, opts Options, progOpts ...tea.ProgramOption) error {
	m := NewModel(engine, opts)
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		m.resize(w, h)
	}

	all := append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)
	_, err := tea.NewProgram(m, all...).Run()
	return err
}
