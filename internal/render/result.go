package render

import (
	"strings"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/theme"
)

// Groups renders grouped partial results as `TYPE(A) = { x, y }` lines.
// Helper non-terminals introduced by the EBNF rewrite are dimmed.
func Groups(t analysis.Type, groups []analysis.Group, th *theme.Theme) string {
	if len(groups) == 0 {
		return NoData
	}
	s := styler{th: th}
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		label := string(t) + "(" + g.NonTerminal + ")"
		set := "{ " + strings.Join(g.Symbols, ", ") + " }"
		if g.Helper() {
			b.WriteString(s.apply(roleHelper, label+" = "+set))
			continue
		}
		b.WriteString(s.apply(roleGroup, label))
		b.WriteString(" = ")
		b.WriteString(s.apply(roleSymbols, set))
	}
	return b.String()
}

// Result renders the partial result of a stepping analysis.
func Result(t analysis.Type, res *analysis.StepResult, th *theme.Theme) string {
	if res == nil {
		return NoData
	}
	return Groups(t, analysis.GroupByLHS(res.Partial), th)
}

// Narrative renders the step details, or nothing when the step has none.
func Narrative(res *analysis.StepResult, th *theme.Theme) string {
	if res == nil || strings.TrimSpace(res.Details) == "" {
		return ""
	}
	return styler{th: th}.apply(roleNarrative, res.Details)
}
