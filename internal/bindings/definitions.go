package bindings

const (
	ActionStepPrev          ActionID = "step_prev"
	ActionStepNext          ActionID = "step_next"
	ActionStepReset         ActionID = "step_reset"
	ActionStepResult        ActionID = "step_result"
	ActionTypeFirst         ActionID = "type_first"
	ActionTypeFollow        ActionID = "type_follow"
	ActionTypePredict       ActionID = "type_predict"
	ActionTypeLL1           ActionID = "type_ll1"
	ActionTypeNext          ActionID = "type_next"
	ActionTypePrev          ActionID = "type_prev"
	ActionSubmit            ActionID = "submit"
	ActionToggleFocus       ActionID = "toggle_focus"
	ActionToggleTheme       ActionID = "toggle_theme"
	ActionToggleTransformed ActionID = "toggle_transformed"
	ActionToggleDiff        ActionID = "toggle_diff"
	ActionCopyResult        ActionID = "copy_result"
	ActionReloadFile        ActionID = "reload_file"
	ActionSplitGrow         ActionID = "split_grow"
	ActionSplitShrink       ActionID = "split_shrink"
	ActionToggleHelp        ActionID = "toggle_help"
	ActionQuit              ActionID = "quit"
)

type definition struct {
	id          ActionID
	description string
	defaults    []string
}

var definitions = []definition{
	{id: ActionStepPrev, description: "Previous step", defaults: []string{"left", "h"}},
	{id: ActionStepNext, description: "Next step", defaults: []string{"right", "l"}},
	{id: ActionStepReset, description: "First step", defaults: []string{"r", "g g"}},
	{id: ActionStepResult, description: "Final result", defaults: []string{"e", "shift+g"}},
	{id: ActionTypeFirst, description: "FIRST sets", defaults: []string{"1"}},
	{id: ActionTypeFollow, description: "FOLLOW sets", defaults: []string{"2"}},
	{id: ActionTypePredict, description: "PREDICT sets", defaults: []string{"3"}},
	{id: ActionTypeLL1, description: "LL(1) table", defaults: []string{"4"}},
	{id: ActionTypeNext, description: "Next analysis", defaults: []string{"n"}},
	{id: ActionTypePrev, description: "Previous analysis", defaults: []string{"shift+n"}},
	{id: ActionSubmit, description: "Analyze now", defaults: []string{"ctrl+s", "ctrl+enter"}},
	{id: ActionToggleFocus, description: "Switch editor/results", defaults: []string{"tab", "esc"}},
	{id: ActionToggleTheme, description: "Toggle theme", defaults: []string{"t"}},
	{id: ActionToggleTransformed, description: "Show transformed BNF", defaults: []string{"b"}},
	{id: ActionToggleDiff, description: "Diff EBNF against BNF", defaults: []string{"d"}},
	{id: ActionCopyResult, description: "Copy result", defaults: []string{"y"}},
	{id: ActionReloadFile, description: "Reload grammar file", defaults: []string{"ctrl+r"}},
	{id: ActionSplitGrow, description: "Widen editor", defaults: []string{"]"}},
	{id: ActionSplitShrink, description: "Narrow editor", defaults: []string{"["}},
	{id: ActionToggleHelp, description: "Help", defaults: []string{"shift+/", "f1"}},
	{id: ActionQuit, description: "Quit", defaults: []string{"q", "ctrl+c"}},
}

var definitionLookup = func() map[ActionID]definition {
	out := make(map[ActionID]definition, len(definitions))
	for _, def := range definitions {
		out[def.id] = def
	}
	return out
}()

// Describe returns the help text of an action.
func Describe(action ActionID) string {
	return definitionLookup[action].description
}

// HelpOrder lists actions in the order the help overlay shows them.
func HelpOrder() []ActionID {
	ids := make([]ActionID, 0, len(definitions))
	for _, def := range definitions {
		ids = append(ids, def.id)
	}
	return ids
}
