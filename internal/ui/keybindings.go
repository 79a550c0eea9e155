package ui

import (
	"github.com/fioncat/otree/pkg/core"
)

// Command is a UI-level key action that is not a navigation move.
type Command string

const (
	CommandNone             Command = ""
	CommandQuit             Command = "quit"
	CommandFilter           Command = "filter"
	CommandClearFilter      Command = "clear_filter"
	CommandToggleIgnoreCase Command = "toggle_ignore_case"
	CommandToggleExclude    Command = "toggle_exclude"
	CommandToggleRegex      Command = "toggle_regex"
	CommandCycleMode        Command = "cycle_mode"
	CommandCopyValue        Command = "copy_value"
	CommandCopyPath         Command = "copy_path"
	CommandToggleTypes      Command = "toggle_types"
	CommandSwitchFocus      Command = "switch_focus"
	CommandTogglePreview    Command = "toggle_preview"
	CommandGrowTree         Command = "grow_tree"
	CommandShrinkTree       Command = "shrink_tree"
)

// NavigationBindings maps keys to engine actions.
var NavigationBindings = map[string]core.Action{
	"k":      core.ActionMoveUp,
	"up":     core.ActionMoveUp,
	"j":      core.ActionMoveDown,
	"down":   core.ActionMoveDown,
	"pgup":   core.ActionPageUp,
	"ctrl+u": core.ActionPageUp,
	"pgdown": core.ActionPageDown,
	"ctrl+d": core.ActionPageDown,
	"h":      core.ActionMoveLeft,
	"left":   core.ActionMoveLeft,
	"l":      core.ActionMoveRight,
	"right":  core.ActionMoveRight,
	"p":      core.ActionSelectParent,
	"c":      core.ActionCloseParent,
	"g":      core.ActionSelectFirst,
	"home":   core.ActionSelectFirst,
	"G":      core.ActionSelectLast,
	"end":    core.ActionSelectLast,
	"enter":  core.ActionToggleExpand,
	"space":  core.ActionToggleExpand,
	" ":      core.ActionToggleExpand,
	"e":      core.ActionExpandAll,
	"E":      core.ActionCollapseAll,
	"r":      core.ActionChangeRoot,
	"R":      core.ActionResetRoot,
	"n":      core.ActionNextMatch,
	"N":      core.ActionPrevMatch,
}

// CommandBindings maps keys to UI commands.
var CommandBindings = map[string]Command{
	"q":      CommandQuit,
	"ctrl+c": CommandQuit,
	"/":      CommandFilter,
	"esc":    CommandClearFilter,
	"i":      CommandToggleIgnoreCase,
	"x":      CommandToggleExclude,
	"X":      CommandToggleRegex,
	"m":      CommandCycleMode,
	"y":      CommandCopyValue,
	"Y":      CommandCopyPath,
	"t":      CommandToggleTypes,
	"tab":    CommandSwitchFocus,
	"v":      CommandTogglePreview,
	"]":      CommandGrowTree,
	"[":      CommandShrinkTree,
}

// keyLegend is the one-line help shown under the tree.
const keyLegend = "j/k move  h/l out/in  enter toggle  r root  R reset  / filter  n/N match  i/x/X/m flags  y/Y copy  tab pane  v preview  [/] resize  q quit"
