package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/grammarviz/internal/bindings"
	"github.com/unkn0wn-root/grammarviz/internal/session"
	"github.com/unkn0wn-root/grammarviz/internal/watcher"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.ready = true
		m.applyLayout()
	case tea.KeyMsg:
		if cmd := m.handleKey(typed); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case tea.MouseMsg:
		if m.focus == focusResults {
			var cmd tea.Cmd
			m.results, cmd = m.results.Update(typed)
			cmds = append(cmds, cmd)
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(typed)
		cmds = append(cmds, cmd)
	case stateMsg:
		// Deliveries may reorder under load, so the latest snapshot wins.
		state := typed.state
		if m.ctrl != nil {
			state = m.ctrl.Snapshot()
		}
		m.applyState(state)
		cmds = append(cmds, m.nextInboxCmd())
	case grammarCommittedMsg:
		m.status = statusMsg{}
		cmds = append(cmds, m.submitCmd(typed.text), m.nextInboxCmd())
	case fileChangedMsg:
		m.handleFileChange(typed.event)
		cmds = append(cmds, m.nextInboxCmd())
	case fileLoadedMsg:
		m.handleFileLoaded(typed)
	case outcomeMsg:
		m.handleOutcome(typed)
	default:
		if m.focus == focusEditor {
			var cmd tea.Cmd
			m.editor, cmd = m.editor.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func canonicalKey(msg tea.KeyMsg) string {
	return bindings.NormalizeKeyString(msg.String())
}

// editorKey reports whether the key belongs to the editor outright. While
// typing only modified keys and focus keys are looked up as shortcuts, and
// unbound ones still reach the editor.
func editorKey(key string) bool {
	if strings.HasPrefix(key, "ctrl+") || strings.HasPrefix(key, "alt+") {
		return false
	}
	switch key {
	case "tab", "esc", "f1":
		return false
	}
	return true
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := canonicalKey(msg)

	if m.showHelp {
		binding, ok := m.keys.MatchSingle(key)
		switch {
		case key == "esc" || key == "q" || (ok && binding.Action == bindings.ActionToggleHelp):
			m.showHelp = false
		case ok && binding.Action == bindings.ActionQuit:
			return m.quit()
		}
		return nil
	}

	if m.pendingChord != "" {
		prefix := m.pendingChord
		m.pendingChord = ""
		if binding, ok := m.keys.ResolveChord(prefix, key); ok {
			return m.runAction(binding.Action)
		}
	}

	if m.focus == focusEditor {
		if !editorKey(key) {
			if binding, ok := m.keys.MatchSingle(key); ok {
				return m.runAction(binding.Action)
			}
		}
		return m.updateEditor(msg)
	}

	if binding, ok := m.keys.MatchSingle(key); ok {
		return m.runAction(binding.Action)
	}
	if m.keys.HasChordPrefix(key) {
		m.pendingChord = key
		return nil
	}
	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return cmd
}

func (m *Model) updateEditor(msg tea.KeyMsg) tea.Cmd {
	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	raw := m.editor.Value()
	if raw == before {
		return cmd
	}
	if norm := m.input.Change(raw); norm != raw {
		m.editor.SetValue(norm)
	}
	return cmd
}

func (m *Model) runAction(action bindings.ActionID) tea.Cmd {
	switch action {
	case bindings.ActionStepPrev:
		return m.stepAction(targetPrev)
	case bindings.ActionStepNext:
		return m.stepAction(targetNext)
	case bindings.ActionStepReset:
		return m.stepAction(targetReset)
	case bindings.ActionStepResult:
		return m.stepAction(targetResult)
	case bindings.ActionTypeFirst, bindings.ActionTypeFollow,
		bindings.ActionTypePredict, bindings.ActionTypeLL1:
		return m.typeAction(typeForAction[action])
	case bindings.ActionTypeNext:
		return m.typeAction(cycleType(m.state.Type, 1))
	case bindings.ActionTypePrev:
		return m.typeAction(cycleType(m.state.Type, -1))
	case bindings.ActionSubmit:
		if !m.input.Flush() {
			return m.submitCmd(m.editor.Value())
		}
		return nil
	case bindings.ActionToggleFocus:
		m.toggleFocus()
	case bindings.ActionToggleTheme:
		m.cycleTheme()
	case bindings.ActionToggleTransformed:
		m.showTransformed = !m.showTransformed
		if !m.showTransformed {
			m.showDiff = false
		}
		m.applyLayout()
	case bindings.ActionToggleDiff:
		m.showDiff = !m.showDiff
		if m.showDiff {
			m.showTransformed = true
		}
		m.applyLayout()
	case bindings.ActionCopyResult:
		m.copyResult()
	case bindings.ActionReloadFile:
		if m.grammarPath == "" {
			m.status = statusMsg{text: "No grammar file loaded", level: statusWarn}
			return nil
		}
		return loadFileCmd(m.grammarPath)
	case bindings.ActionSplitGrow:
		m.nudgeSplit(1)
	case bindings.ActionSplitShrink:
		m.nudgeSplit(-1)
	case bindings.ActionToggleHelp:
		m.showHelp = true
	case bindings.ActionQuit:
		return m.quit()
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	m.Close()
	return tea.Quit
}

func (m *Model) toggleFocus() {
	if m.focus == focusEditor {
		m.focus = focusResults
		m.editor.Blur()
		return
	}
	m.focus = focusEditor
	m.editor.Focus()
}

func (m *Model) cycleTheme() {
	next := m.themes.Next(m.themeKey)
	def, ok := m.themes.Get(next)
	if !ok {
		return
	}
	m.themeKey = next
	m.th = def.Theme
	m.settings.Theme = next
	m.persist()
	m.applyLayout()
	m.status = statusMsg{text: "Theme: " + def.DisplayName, level: statusInfo}
}

func (m *Model) nudgeSplit(steps int) {
	m.settings.Layout = m.settings.Layout.Nudge(steps)
	m.persist()
	m.applyLayout()
}

func (m *Model) persist() {
	if m.save == nil {
		return
	}
	if err := m.save(m.settings); err != nil {
		m.log.Warn("save settings", zap.Error(err))
		m.status = statusMsg{text: fmt.Sprintf("Could not save settings: %v", err), level: statusWarn}
	}
}

func (m *Model) applyState(s session.State) {
	grammarChanged := s.Normalized() != m.state.Normalized()
	m.state = s
	if grammarChanged {
		m.showDiff = m.showDiff && s.TransformedGrammar != ""
	}
	m.applyLayout()
}

func (m *Model) handleOutcome(msg outcomeMsg) {
	if msg.outcome == session.OutcomeCancelled {
		m.log.Debug("request cancelled", zap.Int("op", int(msg.op)))
		return
	}
	if !msg.outcome.Rejected() {
		return
	}
	switch msg.outcome {
	case session.RejectedRateLimited, session.RejectedLoading, session.RejectedEmptyGrammar:
		return
	case session.RejectedError:
		m.status = statusMsg{text: "Fix the grammar to continue", level: statusWarn}
	case session.RejectedNoStepping:
		m.status = statusMsg{text: "LL(1) has no steps", level: statusInfo}
	default:
		m.status = statusMsg{text: "Ignored: " + msg.outcome.String(), level: statusInfo}
	}
}

func (m *Model) copyResult() {
	text := m.plainResult()
	if strings.TrimSpace(text) == "" {
		m.status = statusMsg{text: "Nothing to copy", level: statusWarn}
		return
	}
	if err := m.copy(text); err != nil {
		m.status = statusMsg{text: fmt.Sprintf("Copy failed: %v", err), level: statusError}
		return
	}
	m.status = statusMsg{text: "Result copied", level: statusSuccess}
}

func (m *Model) handleFileLoaded(msg fileLoadedMsg) {
	if msg.err != nil {
		m.status = statusMsg{text: fmt.Sprintf("Load %s: %v", msg.path, msg.err), level: statusError}
		return
	}
	text := m.input.Replace(string(msg.data))
	m.editor.SetValue(text)
	if msg.path != "" {
		if m.watcher != nil {
			m.watcher.Track(msg.path, msg.data)
		}
		m.status = statusMsg{text: "Loaded " + filepath.Base(msg.path), level: statusInfo}
	}
}

func (m *Model) handleFileChange(evt watcher.Event) {
	if m.grammarPath == "" || !samePath(evt.Path, m.grammarPath) {
		return
	}
	name := filepath.Base(evt.Path)
	if evt.Kind == watcher.EventMissing {
		m.status = statusMsg{text: name + " removed on disk. Using current buffer.", level: statusWarn}
		return
	}
	text := m.input.Replace(string(evt.Data))
	m.editor.SetValue(text)
	m.status = statusMsg{text: name + " reloaded", level: statusInfo}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
