package core

import "fmt"

// Action is a navigation command bound to a key.
type Action int

const (
	ActionMoveUp Action = iota
	ActionMoveDown
	ActionPageUp
	ActionPageDown
	ActionMoveLeft
	ActionMoveRight
	ActionSelectParent
	ActionCloseParent
	ActionSelectFirst
	ActionSelectLast
	ActionToggleExpand
	ActionExpandAll
	ActionCollapseAll
	ActionChangeRoot
	ActionResetRoot
	ActionNextMatch
	ActionPrevMatch
)

var actionNames = map[Action]string{
	ActionMoveUp:       "move_up",
	ActionMoveDown:     "move_down",
	ActionPageUp:       "page_up",
	ActionPageDown:     "page_down",
	ActionMoveLeft:     "move_left",
	ActionMoveRight:    "move_right",
	ActionSelectParent: "select_parent",
	ActionCloseParent:  "close_parent",
	ActionSelectFirst:  "select_first",
	ActionSelectLast:   "select_last",
	ActionToggleExpand: "toggle_expand",
	ActionExpandAll:    "expand_all",
	ActionCollapseAll:  "collapse_all",
	ActionChangeRoot:   "change_root",
	ActionResetRoot:    "reset_root",
	ActionNextMatch:    "next_match",
	ActionPrevMatch:    "prev_match",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction resolves an action by its String name.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// Do runs a navigation action and reports whether the view changed.
// Only ActionChangeRoot can fail.
func (e *Engine) Do(a Action) (bool, error) {
	switch a {
	case ActionMoveUp:
		return e.nav.MoveUp(), nil
	case ActionMoveDown:
		return e.nav.MoveDown(), nil
	case ActionPageUp:
		return e.nav.PageUp(), nil
	case ActionPageDown:
		return e.nav.PageDown(), nil
	case ActionMoveLeft:
		return e.nav.MoveLeft(), nil
	case ActionMoveRight:
		return e.nav.MoveRight(), nil
	case ActionSelectParent:
		return e.nav.SelectParent(), nil
	case ActionCloseParent:
		return e.nav.CloseParent(), nil
	case ActionSelectFirst:
		return e.nav.SelectFirst(), nil
	case ActionSelectLast:
		return e.nav.SelectLast(), nil
	case ActionToggleExpand:
		return e.ToggleExpand(), nil
	case ActionExpandAll:
		e.ExpandAll()
		return true, nil
	case ActionCollapseAll:
		e.CollapseAll()
		return true, nil
	case ActionChangeRoot:
		before := e.tree.Root()
		if err := e.ChangeRoot(); err != nil {
			return false, err
		}
		return e.tree.Root() != before, nil
	case ActionResetRoot:
		return e.ResetRoot(), nil
	case ActionNextMatch:
		return e.NextMatch(), nil
	case ActionPrevMatch:
		return e.PrevMatch(), nil
	}
	return false, fmt.Errorf("unknown action %s", a)
}
