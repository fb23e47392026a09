package analysis

import (
	"strconv"
	"strings"
)

const (
	EndMarker     = "$"
	ruleSeparator = ", "
)

// Table is an LL(1) parse table with the row and column order reported by
// the service preserved.
type Table struct {
	Rows []Row
}

type Row struct {
	NonTerminal string
	Cells       []Cell
}

type Cell struct {
	Terminal string
	Rules    []string
}

func (c Cell) Conflict() bool {
	return len(c.Rules) > 1
}

func (c Cell) Empty() bool {
	return len(c.Rules) == 0
}

// ParseCell splits a raw cell value; several rules in one cell are joined
// with ", " by the service.
func ParseCell(terminal, raw string) Cell {
	cell := Cell{Terminal: terminal}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return cell
	}
	for _, part := range strings.Split(raw, ruleSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			cell.Rules = append(cell.Rules, part)
		}
	}
	return cell
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Terminals returns the column headers in first-seen order with the end
// marker moved to the last column.
func (t Table) Terminals() []string {
	seen := make(map[string]struct{})
	var out []string
	hasEnd := false
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			if _, ok := seen[cell.Terminal]; ok {
				continue
			}
			seen[cell.Terminal] = struct{}{}
			if cell.Terminal == EndMarker {
				hasEnd = true
				continue
			}
			out = append(out, cell.Terminal)
		}
	}
	if hasEnd {
		out = append(out, EndMarker)
	}
	return out
}

func (t Table) Lookup(nonTerminal, terminal string) Cell {
	for _, row := range t.Rows {
		if row.NonTerminal != nonTerminal {
			continue
		}
		for _, cell := range row.Cells {
			if cell.Terminal == terminal {
				return cell
			}
		}
		break
	}
	return Cell{Terminal: terminal}
}

func (t Table) Conflicts() int {
	n := 0
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			if cell.Conflict() {
				n++
			}
		}
	}
	return n
}

// ShortLabel maps a rule to its "R<n>" label when the rule is numbered.
func ShortLabel(rule string, numbers map[string]int) string {
	if n, ok := numbers[rule]; ok && n > 0 {
		return "R" + strconv.Itoa(n)
	}
	return rule
}
