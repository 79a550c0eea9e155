// Package filter computes match sets and highlight spans over a tree.
package filter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fioncat/otree/internal/tree"
)

// Mode selects which text of a node is matched.
type Mode int

const (
	ModeAll Mode = iota
	ModeKey
	ModeValue
)

func (m Mode) String() string {
	switch m {
	case ModeKey:
		return "key"
	case ModeValue:
		return "value"
	default:
		return "all"
	}
}

// Next cycles all -> key -> value -> all.
func (m Mode) Next() Mode {
	return (m + 1) % 3
}

// ParseMode resolves a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ModeAll, nil
	case "key", "keys":
		return ModeKey, nil
	case "value", "values":
		return ModeValue, nil
	}
	return ModeAll, fmt.Errorf("unknown filter mode %q", s)
}

// State is the user-facing filter configuration. An empty Query disables
// filtering.
type State struct {
	Query      string
	Mode       Mode
	IgnoreCase bool
	Exclude    bool
	Regex      bool
}

// Active reports whether the state filters anything.
func (s State) Active() bool {
	return s.Query != ""
}

// Compile builds the matcher for s. Literal queries are quoted so only
// regex mode can fail.
func (s State) Compile() (*regexp.Regexp, error) {
	pattern := s.Query
	if !s.Regex {
		pattern = regexp.QuoteMeta(pattern)
	}
	if s.IgnoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &InvalidPatternError{Pattern: s.Query, Err: err}
	}
	return re, nil
}

// InvalidPatternError is returned when a regex query does not compile.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid filter pattern %q: %v", e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error {
	return e.Err
}

// Span is a half-open range of rune offsets inside a label or value text.
type Span struct {
	Start int
	End   int
}

type nodeMatch struct {
	label []Span
	value []Span
}

// Engine holds the state, the ordered match list and the current match.
type Engine struct {
	state   State
	re      *regexp.Regexp
	tree    *tree.Tree
	matches []tree.NodeID
	spans   map[tree.NodeID]nodeMatch
	visible map[tree.NodeID]bool
	current int
}

// New returns an inactive engine.
func New() *Engine {
	return &Engine{current: -1}
}

// State returns the applied filter state.
func (e *Engine) State() State {
	return e.state
}

// Active reports whether a non-empty query is applied.
func (e *Engine) Active() bool {
	return e.state.Active()
}

// Apply validates s and recomputes the matches over the active subtree of
// t. On error the previous state and matches are kept.
func (e *Engine) Apply(t *tree.Tree, s State) error {
	var re *regexp.Regexp
	if s.Active() {
		compiled, err := s.Compile()
		if err != nil {
			return err
		}
		re = compiled
	}
	e.state = s
	e.re = re
	e.tree = t
	e.recompute()
	if len(e.matches) > 0 {
		e.current = 0
	}
	return nil
}

// Refresh recomputes the matches with the current state, e.g. after a root
// change or a reload. The current match is kept when it still matches on
// the same tree, otherwise the first match becomes current.
func (e *Engine) Refresh(t *tree.Tree) {
	var prev tree.NodeID = tree.NoNode
	if e.tree == t {
		prev, _ = e.Current()
	}
	e.tree = t
	e.recompute()
	if len(e.matches) == 0 {
		return
	}
	e.current = 0
	for i, id := range e.matches {
		if id == prev {
			e.current = i
			return
		}
	}
}

// Clear drops the query and every match, keeping the flags.
func (e *Engine) Clear() {
	e.state.Query = ""
	e.re = nil
	e.recompute()
}

func (e *Engine) recompute() {
	e.matches = nil
	e.spans = nil
	e.visible = nil
	e.current = -1
	if e.re == nil || e.tree == nil {
		return
	}
	e.spans = make(map[tree.NodeID]nodeMatch)
	docRoot := e.tree.DocumentRoot()
	e.tree.Walk(func(id tree.NodeID) bool {
		node, _ := e.tree.Node(id)
		var m nodeMatch
		matched := false
		if e.state.Mode != ModeValue && id != docRoot && e.re.MatchString(node.Label) {
			matched = true
			m.label = findSpans(e.re, node.Label)
		}
		if e.state.Mode != ModeKey && !node.IsComposite() {
			text := node.Value.Text()
			if e.re.MatchString(text) {
				matched = true
				m.value = findSpans(e.re, text)
			}
		}
		if matched {
			e.matches = append(e.matches, id)
			e.spans[id] = m
		}
		return true
	})

	e.visible = make(map[tree.NodeID]bool, len(e.matches)*2)
	e.visible[e.tree.Root()] = true
	for _, id := range e.matches {
		for cur := id; cur != tree.NoNode && !e.visible[cur]; cur = e.tree.Parent(cur) {
			e.visible[cur] = true
		}
	}
}

// findSpans converts non-empty match ranges from byte to rune offsets.
func findSpans(re *regexp.Regexp, s string) []Span {
	var spans []Span
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if loc[0] == loc[1] {
			continue
		}
		start := utf8.RuneCountInString(s[:loc[0]])
		spans = append(spans, Span{
			Start: start,
			End:   start + utf8.RuneCountInString(s[loc[0]:loc[1]]),
		})
	}
	return spans
}

// Matches returns the matching nodes in document order.
func (e *Engine) Matches() []tree.NodeID {
	return append([]tree.NodeID(nil), e.matches...)
}

// Count returns the number of matches.
func (e *Engine) Count() int {
	return len(e.matches)
}

// IsMatch reports whether id matched.
func (e *Engine) IsMatch(id tree.NodeID) bool {
	_, ok := e.spans[id]
	return ok
}

// LabelSpans returns the highlight spans within the label of id.
func (e *Engine) LabelSpans(id tree.NodeID) []Span {
	return e.spans[id].label
}

// ValueSpans returns the highlight spans within the value text of id.
func (e *Engine) ValueSpans(id tree.NodeID) []Span {
	return e.spans[id].value
}

// Visible reports whether id survives exclude mode: the active root,
// every match and every ancestor of a match. Without an active exclude
// filter everything is visible.
func (e *Engine) Visible(id tree.NodeID) bool {
	if !e.Active() || !e.state.Exclude {
		return true
	}
	return e.visible[id]
}

// Predicate returns the row predicate for the navigator, or nil when
// nothing is hidden.
func (e *Engine) Predicate() func(tree.NodeID) bool {
	if !e.Active() || !e.state.Exclude {
		return nil
	}
	return e.Visible
}

// Current returns the current match.
func (e *Engine) Current() (tree.NodeID, bool) {
	if e.current < 0 || e.current >= len(e.matches) {
		return tree.NoNode, false
	}
	return e.matches[e.current], true
}

// CurrentIndex returns the 0-based position of the current match, or -1.
func (e *Engine) CurrentIndex() int {
	return e.current
}

// Next advances the current match, wrapping to the first one.
func (e *Engine) Next() (tree.NodeID, bool) {
	return e.step(1)
}

// Prev moves the current match back, wrapping to the last one.
func (e *Engine) Prev() (tree.NodeID, bool) {
	return e.step(-1)
}

func (e *Engine) step(delta int) (tree.NodeID, bool) {
	n := len(e.matches)
	if n == 0 {
		return tree.NoNode, false
	}
	if e.current < 0 {
		e.current = 0
		if delta < 0 {
			e.current = n - 1
		}
	} else {
		e.current = ((e.current+delta)%n + n) % n
	}
	return e.matches[e.current], true
}
