package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/bindings"
	"github.com/unkn0wn-root/grammarviz/internal/errclass"
	"github.com/unkn0wn-root/grammarviz/internal/input"
	"github.com/unkn0wn-root/grammarviz/internal/render"
	"github.com/unkn0wn-root/grammarviz/internal/theme"
)

func (m Model) View() string {
	if !m.ready {
		return "Starting " + brandLabel + "…"
	}
	if m.showHelp {
		return m.helpView()
	}
	sz := m.computeSizes()
	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.editorColumn(sz),
		m.resultsPane(sz),
	)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		body,
		m.statusView(),
		m.help.View(m.keyHelp),
	)
}

func (m Model) headerView() string {
	th := m.th
	parts := []string{th.HeaderBrand.Render(brandLabel)}
	enabled := m.state.CanSwitchType()
	for i, t := range analysis.Types {
		label := fmt.Sprintf("%d %s", i+1, t.Label())
		switch {
		case t == m.state.Type:
			parts = append(parts, th.TabActive.Render(label))
		case !enabled:
			parts = append(parts, th.TabDisabled.Render(label))
		default:
			parts = append(parts, th.TabInactive.Render(label))
		}
	}
	if def, ok := m.themes.Get(m.themeKey); ok {
		parts = append(parts, th.HeaderValue.Render(def.DisplayName))
	}
	return render.Fit(th.Header.Render(strings.Join(parts, " ")), m.width)
}

func (m Model) editorColumn(sz paneSizes) string {
	border := m.th.EditorBorder
	if m.focus == focusEditor {
		border = m.th.EditorBorderFocused
	}
	inner := max(sz.leftWidth-paneBorder, 1)

	title := "Grammar"
	if m.grammarPath != "" {
		title += " · " + filepath.Base(m.grammarPath)
	}
	rows := []string{m.th.PaneTitle.Render(render.Fit(title, inner)), m.editor.View()}
	if sz.errorLines > 0 {
		rows = append(rows, m.errorView(inner, sz.errorLines))
	}
	editor := border.Width(inner).Render(strings.Join(rows, "\n"))
	if !m.showTransformed {
		return editor
	}
	return lipgloss.JoinVertical(lipgloss.Left, editor, m.transformedPane(sz, inner))
}

func (m Model) errorView(width, limit int) string {
	lines := m.state.Err.Lines()
	if len(lines) > limit {
		lines = append(lines[:limit-1:limit-1], fmt.Sprintf("… %d more", len(m.state.Err.Lines())-limit+1))
	}
	return m.th.Error.Render(render.Fit(strings.Join(lines, "\n"), width))
}

func (m Model) transformedPane(sz paneSizes, inner int) string {
	height := max(sz.transformedHeight-paneBorder-1, 1)
	var title, content string
	switch {
	case m.showDiff:
		title = "Diff EBNF → BNF"
		content = render.Diff(m.state.Grammar, m.transformedGrammar(), &m.th)
	default:
		title = "Transformed BNF"
		content = render.Grammar(m.transformedGrammar(), &m.th)
	}
	content = clipLines(render.Fit(strings.TrimRight(content, "\n"), inner), height)
	body := m.th.PaneTitle.Render(title) + "\n" + content
	return m.th.EditorBorder.Width(inner).Render(body)
}

// transformedGrammar falls back to the grammar itself when the service
// reported no rewrite.
func (m Model) transformedGrammar() string {
	if m.state.TransformedGrammar != "" {
		return m.state.TransformedGrammar
	}
	return m.state.Grammar
}

func (m Model) resultsPane(sz paneSizes) string {
	border := m.th.ResultBorder
	if m.focus == focusResults {
		border = m.th.ResultBorderFocused
	}
	inner := max(sz.rightWidth-paneBorder, 1)
	header := render.Fit(m.resultsTitle(), inner)
	controls := render.Fit(m.controlsView(), inner)
	return border.Width(inner).Render(header + "\n" + controls + "\n" + m.results.View())
}

func (m Model) resultsTitle() string {
	title := m.th.PaneTitle.Render(m.state.Type.Label())
	if m.state.Type.Steppable() && m.state.Current != nil {
		counter := fmt.Sprintf("Step %d / %d", m.state.StepIndex+1, max(m.state.TotalSteps, 1))
		title += "  " + m.th.StatusBarValue.Render(counter)
	}
	if m.state.Loading {
		title += "  " + m.spin.View()
	}
	return title
}

type control struct {
	label   string
	action  bindings.ActionID
	enabled bool
}

func (m Model) controlsView() string {
	if !m.state.Type.Steppable() {
		return m.th.ControlDisabled.Render("No steps for this analysis")
	}
	controls := []control{
		{label: "◀ PREV", action: bindings.ActionStepPrev, enabled: m.state.CanPrev()},
		{label: "NEXT ▶", action: bindings.ActionStepNext, enabled: m.state.CanNext()},
		{label: "RESET", action: bindings.ActionStepReset, enabled: m.state.CanReset()},
		{label: "RESULT", action: bindings.ActionStepResult, enabled: m.state.CanResult()},
	}
	parts := make([]string, 0, len(controls))
	for _, c := range controls {
		label := c.label
		if keys := m.firstKey(c.action); keys != "" {
			label += " (" + keys + ")"
		}
		if c.enabled {
			parts = append(parts, m.th.ControlEnabled.Render(label))
			continue
		}
		parts = append(parts, m.th.ControlDisabled.Render(label))
	}
	return strings.Join(parts, "  ")
}

func (m Model) firstKey(action bindings.ActionID) string {
	bs := m.keys.Bindings(action)
	if len(bs) == 0 {
		return ""
	}
	return strings.Join(bs[0].Steps, " ")
}

// resultBody is the copyable part of the results pane.
func resultBody(state resultState, th *theme.Theme) string {
	if state.err != nil && state.err.Category != errclass.CategoryEmptyGrammar {
		return render.NoData
	}
	if state.current == nil {
		return render.NoData
	}
	if state.typ == analysis.TypeLL1 {
		return render.LL1(state.current, th)
	}
	out := render.Result(state.typ, state.current, th)
	if narrative := render.Narrative(state.current, th); narrative != "" {
		out = narrative + "\n\n" + out
	}
	return out
}

type resultState struct {
	typ     analysis.Type
	current *analysis.StepResult
	err     *errclass.Failure
}

func (m Model) resultState() resultState {
	return resultState{typ: m.state.Type, current: m.state.Current, err: m.state.Err}
}

func (m *Model) refreshResults() {
	body := resultBody(m.resultState(), &m.th)
	if pseudo := render.PseudoCode(m.state.Type, m.state.HighlightLine(), &m.th); pseudo != "" {
		body += "\n\n" + pseudo
	}
	m.results.SetContent(render.Fit(body, m.results.Width))
}

func (m Model) plainResult() string {
	if m.state.Current == nil {
		return ""
	}
	return render.Plain(resultBody(m.resultState(), nil))
}

func (m Model) statusView() string {
	th := m.th
	text := m.status.text
	style := th.StatusBarValue
	switch m.status.level {
	case statusWarn:
		style = th.Notification
	case statusError:
		style = th.Error
	case statusSuccess:
		style = th.Success
	}
	if text == "" {
		text = m.phaseText()
	}
	left := th.StatusBarKey.Render(strings.ToUpper(m.state.Phase.String())) + " " + style.Render(text)
	return render.Fit(th.StatusBar.Render(left), m.width)
}

func (m Model) phaseText() string {
	switch {
	case !m.state.HasGrammar():
		return "Type a grammar to start"
	case m.state.Loading:
		return "Analyzing…"
	case m.state.Err != nil:
		return m.state.Err.First().Text()
	default:
		return fmt.Sprintf("%s ready", m.state.Type.Label())
	}
}

var grammarRules = [][2]string{
	{"Non-terminals", "capitalized names without quotes, e.g. S, Expr"},
	{"Terminals", "wrapped in single quotes, e.g. 'a', '+'"},
	{"Separators", "exactly one space between all symbols"},
	{"Arrows", "-> denotes a production"},
	{"Alternatives", "| separates production options"},
	{"Empty string", "epsilon"},
	{"EBNF", "[x] optional, {x} repetition, (x | y) grouping"},
}

var helperNonTerminals = [][2]string{
	{"_optN", "optional part, e.g. [expr]"},
	{"_repN", "repeated part, e.g. {expr}"},
	{"_altN", "alternatives, e.g. (A | B)"},
}

func (m Model) helpView() string {
	th := m.th
	var b strings.Builder
	section := func(title string) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(th.PaneTitle.Render(title))
		b.WriteString("\n")
	}
	row := func(key, text string, width int) {
		b.WriteString("  ")
		b.WriteString(th.HelpKey.Render(runewidth.FillRight(key, width)))
		b.WriteString("  ")
		b.WriteString(th.HelpText.Render(text))
		b.WriteString("\n")
	}

	section("Shortcuts")
	order := bindings.HelpOrder()
	width := 0
	for _, action := range order {
		width = max(width, runewidth.StringWidth(m.keys.Label(action)))
	}
	for _, action := range order {
		if label := m.keys.Label(action); label != "" {
			row(label, bindings.Describe(action), width)
		}
	}

	section("Grammar syntax")
	for _, r := range grammarRules {
		row(r[0], r[1], 13)
	}

	section("TeX shorthands")
	for _, sh := range input.Shorthands {
		row(sh.Command, "→ "+sh.Text, 5)
	}

	section("Generated non-terminals")
	for _, r := range helperNonTerminals {
		row(r[0], r[1], 6)
	}

	b.WriteString("\n")
	b.WriteString(th.HeaderValue.Render("esc or q closes this help"))
	out := render.Fit(b.String(), max(m.width-paneBorder, 1))
	return th.AppFrame.Width(max(m.width-paneBorder, 1)).Render(clipLines(out, max(m.height-paneBorder, 1)))
}

func clipLines(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}
