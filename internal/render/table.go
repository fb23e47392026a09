package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/theme"
)

const (
	VerdictLL1    = "Grammar is LL(1): No conflicts in the table."
	VerdictNotLL1 = "Grammar is NOT LL(1): Conflicts found in the table."

	cornerLabel = "Non-terminal"
	emptyCell   = "-"
	columnGap   = "  "
)

// Verdict returns the one-line LL(1) verdict, preferring the description
// the service sent.
func Verdict(res *analysis.StepResult, th *theme.Theme) string {
	if res == nil {
		return ""
	}
	s := styler{th: th}
	text := strings.TrimSpace(res.LL1Description)
	if text == "" {
		text = VerdictNotLL1
		if res.LL1 {
			text = VerdictLL1
		}
	}
	if res.LL1 {
		return s.apply(roleSuccess, "✓ "+text)
	}
	return s.apply(roleError, "✗ "+text)
}

// LL1 renders the verdict, the parse table grid and the numbered rule list.
func LL1(res *analysis.StepResult, th *theme.Theme) string {
	if res == nil || res.Table.Empty() {
		return NoData
	}
	parts := []string{Verdict(res, th), Grid(res.Table, res.RuleNumbers, th)}
	if rules := RuleList(res.Rules, th); rules != "" {
		parts = append(parts, rules)
	}
	return strings.Join(parts, "\n\n")
}

// Grid lays the table out in fixed-width columns. Cells show R<n> labels
// for numbered rules; conflicting cells are highlighted.
func Grid(table analysis.Table, numbers map[string]int, th *theme.Theme) string {
	s := styler{th: th}
	terminals := table.Terminals()

	header := append([]string{cornerLabel}, terminals...)
	rows := make([][]string, 0, len(table.Rows))
	conflict := make([][]bool, 0, len(table.Rows))
	for _, row := range table.Rows {
		cells := []string{row.NonTerminal}
		flags := []bool{false}
		for _, term := range terminals {
			cell := table.Lookup(row.NonTerminal, term)
			cells = append(cells, cellLabel(cell, numbers))
			flags = append(flags, cell.Conflict())
		}
		rows = append(rows, cells)
		conflict = append(conflict, flags)
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, cells := range rows {
		for i, c := range cells {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	lines := make([]string, 0, len(rows)+1)
	var b strings.Builder
	for i, h := range header {
		if i > 0 {
			b.WriteString(columnGap)
		}
		b.WriteString(s.apply(roleHeader, runewidth.FillRight(h, widths[i])))
	}
	lines = append(lines, strings.TrimRight(b.String(), " "))
	for r, cells := range rows {
		b.Reset()
		for i, c := range cells {
			if i > 0 {
				b.WriteString(columnGap)
			}
			padded := runewidth.FillRight(c, widths[i])
			switch {
			case i == 0:
				b.WriteString(s.apply(roleHeader, padded))
			case conflict[r][i]:
				b.WriteString(s.apply(roleConflict, padded))
			default:
				b.WriteString(s.apply(roleCell, padded))
			}
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(lines, "\n")
}

func cellLabel(cell analysis.Cell, numbers map[string]int) string {
	if cell.Empty() {
		return emptyCell
	}
	labels := make([]string, len(cell.Rules))
	for i, rule := range cell.Rules {
		labels[i] = analysis.ShortLabel(rule, numbers)
	}
	return strings.Join(labels, ", ")
}

// RuleList numbers the production rules R1..Rn in service order.
func RuleList(rules []string, th *theme.Theme) string {
	if len(rules) == 0 {
		return ""
	}
	s := styler{th: th}
	lines := make([]string, 0, len(rules)+1)
	lines = append(lines, "Grammar Rules:")
	for i, rule := range rules {
		lines = append(lines, s.apply(roleRule, fmt.Sprintf("R%d", i+1))+": "+rule)
	}
	return strings.Join(lines, "\n")
}
