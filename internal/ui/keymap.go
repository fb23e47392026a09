package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/unkn0wn-root/grammarviz/internal/bindings"
)

// keyMap adapts the shortcut table to the bubbles help widget.
type keyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

var shortHelpActions = []bindings.ActionID{
	bindings.ActionStepPrev,
	bindings.ActionStepNext,
	bindings.ActionTypeNext,
	bindings.ActionSubmit,
	bindings.ActionToggleFocus,
	bindings.ActionToggleHelp,
	bindings.ActionQuit,
}

const helpColumnSize = 6

func newKeyMap(m *bindings.Map) keyMap {
	var km keyMap
	for _, action := range shortHelpActions {
		if b, ok := helpBinding(m, action); ok {
			km.short = append(km.short, b)
		}
	}
	var column []key.Binding
	for _, action := range bindings.HelpOrder() {
		b, ok := helpBinding(m, action)
		if !ok {
			continue
		}
		column = append(column, b)
		if len(column) == helpColumnSize {
			km.full = append(km.full, column)
			column = nil
		}
	}
	if len(column) > 0 {
		km.full = append(km.full, column)
	}
	return km
}

func helpBinding(m *bindings.Map, action bindings.ActionID) (key.Binding, bool) {
	label := m.Label(action)
	if label == "" {
		return key.Binding{}, false
	}
	var keys []string
	for _, b := range m.Bindings(action) {
		if len(b.Steps) == 1 {
			keys = append(keys, b.Steps[0])
		}
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(label, bindings.Describe(action)),
	), true
}

func (k keyMap) ShortHelp() []key.Binding {
	return k.short
}

func (k keyMap) FullHelp() [][]key.Binding {
	return k.full
}
