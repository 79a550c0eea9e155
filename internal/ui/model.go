// Package ui is the interactive terminal view over a core.Engine.
package ui

import (
	"errors"
	"fmt"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/go-logr/logr"

	"github.com/fioncat/otree/internal/config"
	"github.com/fioncat/otree/internal/filter"
	"github.com/fioncat/otree/internal/reload"
	"github.com/fioncat/otree/pkg/core"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// columns a focused pane moves per h/l
	paneColumnStep = 4
)

// Options configures the model.
type Options struct {
	Theme     Theme
	NoColor   bool
	ShowTypes bool
	// Preview shows the selected value beside the tree.
	Preview bool
	// TreeSize is the percentage of the width used by the tree while
	// the preview is shown.
	TreeSize int
	// Events delivers live reload contents; nil disables live reload.
	Events <-chan reload.Event
	Logger logr.Logger
	// Clipboard receives copied text; defaults to the system clipboard.
	Clipboard func(string) error
}

// DefaultOptions builds options from the loaded configuration.
func DefaultOptions(cfg config.Config) Options {
	return Options{
		Theme:     ThemeFromColors(cfg.UI.Colors),
		NoColor:   cfg.UI.NoColor,
		ShowTypes: cfg.UI.ShowTypes,
		Preview:   cfg.UI.Preview.Enabled,
		TreeSize:  cfg.UI.Preview.TreeSize,
		Logger:    logr.Discard(),
	}
}

type reloadMsg reload.Event

type watcherClosedMsg struct{}

// Model renders the engine rows and routes keys to it.
type Model struct {
	engine      *core.Engine
	opts        Options
	styles      styles
	showTypes   bool
	width       int
	height      int
	offset      int
	filterInput textinput.Model
	filtering   bool
	status      string
	statusErr   bool

	preview     bool
	treeSize    int
	paneFocused bool
	pane        dataPane
	// generation changes on every applied reload
	generation int
}

// NewModel creates a model over engine.
func NewModel(engine *core.Engine, opts Options) *Model {
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}

	fi := textinput.New()
	fi.Placeholder = "filter"
	fi.CharLimit = 500
	fi.SetWidth(defaultWidth - 4)
	fi.Prompt = "/ "

	m := &Model{
		engine:      engine,
		opts:        opts,
		styles:      newStyles(opts.Theme, opts.NoColor),
		showTypes:   opts.ShowTypes,
		width:       defaultWidth,
		height:      defaultHeight,
		filterInput: fi,
		preview:     opts.Preview,
		treeSize:    clampTreeSize(opts.TreeSize),
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Init starts listening for reload events.
func (m *Model) Init() tea.Cmd {
	return waitForEvent(m.opts.Events)
}

func waitForEvent(events <-chan reload.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watcherClosedMsg{}
		}
		return reloadMsg(ev)
	}
}

// Update handles window, key and reload messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyPressMsg:
		if m.filtering {
			return m.updateFilterInput(msg)
		}
		return m.handleKey(msg.String())
	case reloadMsg:
		m.handleReload(reload.Event(msg))
		return m, waitForEvent(m.opts.Events)
	case watcherClosedMsg:
		m.opts.Logger.V(1).Info("live reload stopped")
		return m, nil
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.filterInput.SetWidth(max(10, width-4))
	m.engine.SetPageSize(m.bodyHeight())
	m.scroll()
}

func (m *Model) handleKey(key string) (tea.Model, tea.Cmd) {
	m.clearStatus()
	if action, ok := NavigationBindings[key]; ok {
		if m.paneFocused && m.scrollPane(action) {
			return m, nil
		}
		if _, err := m.engine.Do(action); err != nil {
			m.setError(err)
		}
		if action == core.ActionNextMatch || action == core.ActionPrevMatch {
			m.matchStatus()
		}
		m.scroll()
		return m, nil
	}

	switch CommandBindings[key] {
	case CommandQuit:
		return m, tea.Quit
	case CommandFilter:
		query := m.engine.Filter().Query
		m.filtering = true
		m.filterInput.SetValue(query)
		m.filterInput.SetCursor(len(query))
		m.engine.SetPageSize(m.bodyHeight())
		return m, m.filterInput.Focus()
	case CommandClearFilter:
		m.engine.ClearFilter()
	case CommandToggleIgnoreCase:
		m.updateFilter(func(s *filter.State) { s.IgnoreCase = !s.IgnoreCase })
	case CommandToggleExclude:
		m.updateFilter(func(s *filter.State) { s.Exclude = !s.Exclude })
	case CommandToggleRegex:
		m.updateFilter(func(s *filter.State) { s.Regex = !s.Regex })
	case CommandCycleMode:
		m.updateFilter(func(s *filter.State) { s.Mode = s.Mode.Next() })
	case CommandCopyValue:
		m.copyValue()
	case CommandCopyPath:
		m.copyPath()
	case CommandToggleTypes:
		m.showTypes = !m.showTypes
	case CommandSwitchFocus:
		if !m.layout().Split() {
			m.status = "preview hidden"
			break
		}
		m.paneFocused = !m.paneFocused
	case CommandTogglePreview:
		m.preview = !m.preview
	case CommandGrowTree:
		m.treeSize = clampTreeSize(m.treeSize + TreeSizeStep)
	case CommandShrinkTree:
		m.treeSize = clampTreeSize(m.treeSize - TreeSizeStep)
	}
	m.scroll()
	return m, nil
}

// scrollPane applies a navigation action to the focused pane. Actions a
// pane has no use for report false and go to the tree.
func (m *Model) scrollPane(action core.Action) bool {
	w, h := m.layout().PaneInner()
	switch action {
	case core.ActionMoveUp:
		m.pane.scroll(-1, 0, w, h)
	case core.ActionMoveDown:
		m.pane.scroll(1, 0, w, h)
	case core.ActionMoveLeft:
		m.pane.scroll(0, -paneColumnStep, w, h)
	case core.ActionMoveRight:
		m.pane.scroll(0, paneColumnStep, w, h)
	case core.ActionPageUp:
		m.pane.scroll(-h, 0, w, h)
	case core.ActionPageDown:
		m.pane.scroll(h, 0, w, h)
	case core.ActionSelectFirst:
		m.pane.scroll(-m.pane.top, -m.pane.left, w, h)
	case core.ActionSelectLast:
		m.pane.scroll(len(m.pane.lines), 0, w, h)
	default:
		return false
	}
	return true
}

// syncPane loads the cursor payload into the pane when the cursor or the
// document changed, and drops pane focus once the pane is not drawn.
func (m *Model) syncPane() {
	l := m.layout()
	if !l.Split() {
		m.paneFocused = false
		return
	}
	src := paneSource{node: m.engine.Cursor(), generation: m.generation}
	if !m.pane.loaded || m.pane.source != src {
		payload, err := m.engine.Payload()
		if err != nil {
			m.opts.Logger.V(1).Info("preview failed", "error", err.Error())
			m.pane.setError(src, err)
		} else {
			m.pane.setPayload(src, payload)
		}
	}
	w, h := l.PaneInner()
	m.pane.scroll(0, 0, w, h)
}

func (m *Model) updateFilterInput(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.closeFilterInput()
		state := m.engine.Filter()
		state.Query = m.filterInput.Value()
		if err := m.engine.SetFilter(state); err != nil {
			m.setError(err)
		} else {
			m.matchStatus()
		}
		m.scroll()
		return m, nil
	case "esc":
		m.closeFilterInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) closeFilterInput() {
	m.filtering = false
	m.filterInput.Blur()
	m.engine.SetPageSize(m.bodyHeight())
}

// updateFilter re-applies the current filter with one flag changed.
func (m *Model) updateFilter(change func(*filter.State)) {
	state := m.engine.Filter()
	change(&state)
	if err := m.engine.SetFilter(state); err != nil {
		m.setError(err)
		return
	}
	m.matchStatus()
}

func (m *Model) matchStatus() {
	state := m.engine.Filter()
	if !state.Active() {
		m.status = "filter cleared"
		return
	}
	count := m.engine.MatchCount()
	if count == 0 {
		m.status = fmt.Sprintf("no match for %q", state.Query)
		return
	}
	m.status = fmt.Sprintf("match %d/%d", m.engine.MatchIndex()+1, count)
}

func (m *Model) copyValue() {
	payload, err := m.engine.Payload()
	if err != nil {
		m.setError(err)
		return
	}
	if err := m.opts.Clipboard(payload.Content); err != nil {
		m.setError(fmt.Errorf("copy to clipboard: %w", err))
		return
	}
	m.status = fmt.Sprintf("copied %s as %s", displayPath(payload.Path), payload.Format)
}

func (m *Model) copyPath() {
	path := m.engine.CursorPath()
	if err := m.opts.Clipboard(path); err != nil {
		m.setError(fmt.Errorf("copy to clipboard: %w", err))
		return
	}
	m.status = fmt.Sprintf("copied path %s", displayPath(path))
}

func (m *Model) handleReload(ev reload.Event) {
	m.clearStatus()
	if ev.Err != nil {
		m.setError(fmt.Errorf("reload: %w", ev.Err))
		return
	}
	result, err := m.engine.Reload(ev.Data)
	if err != nil {
		m.setError(err)
		return
	}
	m.generation++
	m.status = fmt.Sprintf("reloaded, %d nodes", result.Nodes)
	if !result.CursorResolved {
		m.status += ", cursor moved to root"
	}
	m.scroll()
}

func (m *Model) setError(err error) {
	m.opts.Logger.V(1).Info("ui error", "error", err.Error())
	var perr *filter.InvalidPatternError
	if errors.As(err, &perr) {
		m.status = fmt.Sprintf("invalid pattern %q", perr.Pattern)
	} else {
		m.status = err.Error()
	}
	m.statusErr = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m *Model) layout() Layout {
	return Layout{
		Width:     m.width,
		Height:    m.height,
		Filtering: m.filtering,
		Preview:   m.preview,
		TreeSize:  m.treeSize,
	}
}

// bodyHeight is the number of tree rows that fit on screen.
func (m *Model) bodyHeight() int {
	return m.layout().BodyHeight()
}

// scroll keeps the cursor row inside the viewport and the preview pane in
// step with the cursor.
func (m *Model) scroll() {
	h := m.bodyHeight()
	idx := m.engine.CursorRow()
	total := len(m.engine.Rows())
	if idx < m.offset {
		m.offset = idx
	}
	if idx >= m.offset+h {
		m.offset = idx - h + 1
	}
	m.offset = min(m.offset, max(0, total-h))
	m.offset = max(m.offset, 0)
	m.syncPane()
}

func displayPath(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
