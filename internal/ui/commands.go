package ui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/bindings"
	"github.com/unkn0wn-root/grammarviz/internal/errdef"
)

var (
	targetPrev   = analysis.Prev()
	targetNext   = analysis.Next()
	targetReset  = analysis.Reset()
	targetResult = analysis.Result()
)

var typeForAction = map[bindings.ActionID]analysis.Type{
	bindings.ActionTypeFirst:   analysis.TypeFirst,
	bindings.ActionTypeFollow:  analysis.TypeFollow,
	bindings.ActionTypePredict: analysis.TypePredict,
	bindings.ActionTypeLL1:     analysis.TypeLL1,
}

func cycleType(current analysis.Type, delta int) analysis.Type {
	n := len(analysis.Types)
	for i, t := range analysis.Types {
		if t == current {
			return analysis.Types[((i+delta)%n+n)%n]
		}
	}
	return analysis.Types[0]
}

// Controller calls block until the service answers, so each runs in its
// own command. State changes reach the model through the subscription.
func (m *Model) submitCmd(text string) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return outcomeMsg{op: opSubmit, outcome: ctrl.SubmitGrammar(ctx, text)}
	}
}

func (m *Model) stepAction(target analysis.Target) tea.Cmd {
	if m.ctrl == nil || !m.stepEnabled(target) {
		return nil
	}
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return outcomeMsg{op: opStep, target: target, outcome: ctrl.Step(ctx, target)}
	}
}

func (m *Model) stepEnabled(target analysis.Target) bool {
	switch target.Kind {
	case analysis.TargetPrev:
		return m.state.CanPrev()
	case analysis.TargetNext:
		return m.state.CanNext()
	case analysis.TargetReset:
		return m.state.CanReset()
	case analysis.TargetResult:
		return m.state.CanResult()
	}
	return true
}

func (m *Model) typeAction(t analysis.Type) tea.Cmd {
	if m.ctrl == nil || t == m.state.Type {
		return nil
	}
	if !m.state.CanSwitchType() {
		if !m.state.HasGrammar() {
			m.status = statusMsg{text: "Enter a grammar first", level: statusInfo}
		}
		return nil
	}
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return outcomeMsg{op: opType, typ: t, outcome: ctrl.ChangeAnalysisType(ctx, t)}
	}
}

func loadFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return fileLoadedMsg{path: path, err: errdef.Wrap(errdef.CodeFilesystem, err, "read grammar")}
		}
		return fileLoadedMsg{path: path, data: data}
	}
}
