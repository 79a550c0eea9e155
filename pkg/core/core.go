// Package core ties the tree, navigator, filter and reload reconciler
// together behind one value owned by a single goroutine.
package core

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/fioncat/otree/internal/filter"
	"github.com/fioncat/otree/internal/formatter"
	"github.com/fioncat/otree/internal/limiter"
	"github.com/fioncat/otree/internal/navigator"
	"github.com/fioncat/otree/internal/reload"
	"github.com/fioncat/otree/internal/tree"
	"github.com/fioncat/otree/internal/value"
	"github.com/fioncat/otree/pkg/loader"
	"github.com/fioncat/otree/pkg/logger"
)

// Formatter serializes a node value for the payload boundary.
type Formatter interface {
	Format(v value.Value, format loader.Format) (string, error)
}

// Engine is the single owner of the tree, cursor and filter state. It is
// not safe for concurrent use.
type Engine struct {
	format    loader.Format
	tree      *tree.Tree
	nav       *navigator.Navigator
	filter    *filter.Engine
	limiter   limiter.Config
	pageSize  int
	initial   filter.State
	formatter Formatter
	log       logr.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithPageSize sets the number of rows page moves skip.
func WithPageSize(size int) Option {
	return func(e *Engine) {
		e.pageSize = size
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(log logr.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithLimiter trims the top-level records of every loaded document.
func WithLimiter(cfg limiter.Config) Option {
	return func(e *Engine) {
		e.limiter = cfg
	}
}

// WithFilter applies an initial filter state.
func WithFilter(state filter.State) Option {
	return func(e *Engine) {
		e.initial = state
	}
}

// WithFormatter sets a custom payload formatter.
func WithFormatter(f Formatter) Option {
	return func(e *Engine) {
		e.formatter = f
	}
}

// New parses data in the given format and builds an engine over it.
func New(data []byte, format loader.Format, opts ...Option) (*Engine, error) {
	v, err := loader.Parse(data, format)
	if err != nil {
		return nil, err
	}
	return NewFromValue(v, format, opts...)
}

// NewFromValue builds an engine over an already parsed value. format is
// the source format and selects the payload serialization.
func NewFromValue(v value.Value, format loader.Format, opts ...Option) (*Engine, error) {
	e := &Engine{
		format: format,
		filter: filter.New(),
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.limiter.Validate(); err != nil {
		return nil, err
	}
	if e.formatter == nil {
		e.formatter = defaultFormatter{}
	}

	e.tree = tree.Build(e.limiter.Apply(v))
	e.nav = navigator.New(e.tree, e.pageSize)
	if err := e.filter.Apply(e.tree, e.initial); err != nil {
		return nil, err
	}
	e.nav.SetVisibility(e.filter.Predicate())
	if e.initial.Active() {
		e.jumpToCurrentMatch()
	}
	e.log.V(1).Info("engine ready", logger.FormatKey, format.String(), "nodes", e.tree.Len())
	return e, nil
}

// Tree exposes the underlying tree for read-only rendering.
func (e *Engine) Tree() *tree.Tree {
	return e.tree
}

// Format returns the source format.
func (e *Engine) Format() loader.Format {
	return e.format
}

// Cursor returns the selected node.
func (e *Engine) Cursor() tree.NodeID {
	return e.nav.Cursor()
}

// CursorPath renders the structural path of the cursor.
func (e *Engine) CursorPath() string {
	return e.tree.PathString(e.nav.Cursor())
}

// RootPath renders the structural path of the active root.
func (e *Engine) RootPath() string {
	return e.tree.PathString(e.tree.Root())
}

// PageSize returns the page move distance.
func (e *Engine) PageSize() int {
	return e.nav.PageSize()
}

// SetPageSize changes the page move distance, e.g. to the view height.
func (e *Engine) SetPageSize(size int) {
	e.nav.SetPageSize(size)
}

// ChangeRoot makes the cursor node the active root.
func (e *Engine) ChangeRoot() error {
	return e.changeRoot(e.nav.Cursor())
}

// ChangeRootTo makes the node at path the active root. The path uses the
// dotted notation of CursorPath.
func (e *Engine) ChangeRootTo(path string) error {
	p, err := tree.ParsePath(path)
	if err != nil {
		return err
	}
	id, err := e.tree.Resolve(p)
	if err != nil {
		return err
	}
	return e.changeRoot(id)
}

func (e *Engine) changeRoot(id tree.NodeID) error {
	if id == e.tree.Root() {
		return nil
	}
	if err := e.tree.ChangeRoot(id); err != nil {
		return err
	}
	e.afterRootChange()
	e.nav.Select(id)
	e.log.V(1).Info("root changed", logger.PathKey, e.RootPath(), "depth", len(e.tree.History()))
	return nil
}

// ResetRoot restores the document root. It reports false when nothing
// changed.
func (e *Engine) ResetRoot() bool {
	if !e.tree.Reset() {
		return false
	}
	e.afterRootChange()
	e.log.V(1).Info("root reset")
	return true
}

func (e *Engine) afterRootChange() {
	e.filter.Refresh(e.tree)
	e.nav.SetVisibility(e.filter.Predicate())
}

// ExpandAll expands every composite under the active root.
func (e *Engine) ExpandAll() {
	e.tree.ExpandAll()
	e.nav.Repair()
}

// CollapseAll collapses everything under the active root.
func (e *Engine) CollapseAll() {
	e.tree.CollapseAll()
	e.nav.Repair()
}

// ToggleExpand flips the cursor node.
func (e *Engine) ToggleExpand() bool {
	changed := e.nav.ToggleExpand()
	e.nav.Repair()
	return changed
}

// Filter returns the applied filter state.
func (e *Engine) Filter() filter.State {
	return e.filter.State()
}

// SetFilter applies a new filter state and moves to the first match. On
// an invalid pattern the previous filter stays in place.
func (e *Engine) SetFilter(state filter.State) error {
	if err := e.filter.Apply(e.tree, state); err != nil {
		return err
	}
	e.nav.SetVisibility(e.filter.Predicate())
	e.jumpToCurrentMatch()
	e.log.V(1).Info("filter applied", "query", state.Query, "mode", state.Mode.String(), "matches", e.filter.Count())
	return nil
}

// ClearFilter drops the query, keeping the mode and flags.
func (e *Engine) ClearFilter() {
	e.filter.Clear()
	e.nav.SetVisibility(nil)
}

// Visibility returns the predicate the filter uses to hide nodes; nil
// when every node is shown.
func (e *Engine) Visibility() func(tree.NodeID) bool {
	return e.filter.Predicate()
}

// MatchCount returns the number of matches.
func (e *Engine) MatchCount() int {
	return e.filter.Count()
}

// MatchIndex returns the 0-based index of the current match, or -1.
func (e *Engine) MatchIndex() int {
	return e.filter.CurrentIndex()
}

// NextMatch moves to the next match, wrapping around.
func (e *Engine) NextMatch() bool {
	if _, ok := e.filter.Next(); !ok {
		return false
	}
	return e.jumpToCurrentMatch()
}

// PrevMatch moves to the previous match, wrapping around.
func (e *Engine) PrevMatch() bool {
	if _, ok := e.filter.Prev(); !ok {
		return false
	}
	return e.jumpToCurrentMatch()
}

func (e *Engine) jumpToCurrentMatch() bool {
	id, ok := e.filter.Current()
	if !ok {
		return false
	}
	e.tree.ExpandTo(id)
	e.nav.Select(id)
	return true
}

// Payload serializes the cursor node.
func (e *Engine) Payload() (formatter.Payload, error) {
	node, ok := e.tree.Node(e.nav.Cursor())
	if !ok {
		return formatter.Payload{}, fmt.Errorf("payload: %w", tree.ErrUnknownNode)
	}
	format := formatter.PayloadFormat(e.format, node.Value)
	content, err := e.formatter.Format(node.Value, format)
	if errors.Is(err, formatter.ErrNotTOML) {
		format = loader.JSON
		content, err = e.formatter.Format(node.Value, format)
	}
	if err != nil {
		return formatter.Payload{}, fmt.Errorf("payload %s: %w", e.CursorPath(), err)
	}
	return formatter.Payload{
		Name:    node.Label,
		Path:    e.CursorPath(),
		Content: content,
		Format:  format,
	}, nil
}

// ReloadResult describes a successful reload.
type ReloadResult struct {
	// ID correlates the reload in logs.
	ID             string
	Nodes          int
	CursorResolved bool
	HistoryKept    int
	HistoryDropped int
}

// Reload parses data and rebases the current state onto it. On a parse
// error nothing changes.
func (e *Engine) Reload(data []byte) (ReloadResult, error) {
	id := uuid.NewString()
	log := e.log.WithValues(logger.ReloadIDKey, id)

	v, err := loader.Parse(data, e.format)
	if err != nil {
		log.V(1).Info("reload rejected", "error", err.Error())
		return ReloadResult{ID: id}, fmt.Errorf("reload: %w", err)
	}
	out := reload.Reconcile(e.tree, e.nav.Cursor(), e.limiter.Apply(v))

	e.tree = out.Tree
	e.filter.Refresh(e.tree)
	e.nav.Reset(e.tree, out.Cursor, e.filter.Predicate())

	result := ReloadResult{
		ID:             id,
		Nodes:          e.tree.Len(),
		CursorResolved: out.CursorResolved,
		HistoryKept:    out.HistoryKept,
		HistoryDropped: out.HistoryDropped,
	}
	log.V(1).Info("reloaded",
		"nodes", result.Nodes,
		"cursor_resolved", result.CursorResolved,
		"history_kept", result.HistoryKept,
		"history_dropped", result.HistoryDropped)
	return result, nil
}

type defaultFormatter struct{}

func (defaultFormatter) Format(v value.Value, format loader.Format) (string, error) {
	return formatter.Format(v, format)
}
