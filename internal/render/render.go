// Package render turns analysis results into terminal text. Every renderer
// accepts a nil theme, in which case it emits plain text suitable for
// reports and clipboard copies.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/unkn0wn-root/grammarviz/internal/theme"
)

const (
	NoData   = "No data available"
	ellipsis = "…"
)

type role int

const (
	roleGroup role = iota
	roleHelper
	roleSymbols
	roleNarrative
	roleHeader
	roleCell
	roleConflict
	roleRule
	roleSuccess
	roleError
	rolePseudo
	rolePseudoActive
	roleDiffAdd
	roleDiffRemove
	roleDiffContext
)

type styler struct {
	th *theme.Theme
}

func (s styler) style(r role) lipgloss.Style {
	t := s.th
	switch r {
	case roleGroup:
		return t.GroupLabel
	case roleHelper:
		return t.HelperLabel
	case roleSymbols:
		return t.SymbolSet
	case roleNarrative:
		return t.Narrative
	case roleHeader:
		return t.TableHeader
	case roleConflict:
		return t.TableConflict
	case roleRule:
		return t.RuleNumber
	case roleSuccess:
		return t.Success
	case roleError:
		return t.Error
	case rolePseudo:
		return t.PseudoCode
	case rolePseudoActive:
		return t.PseudoCodeActive
	case roleDiffAdd:
		return t.DiffAdd
	case roleDiffRemove:
		return t.DiffRemove
	case roleDiffContext:
		return t.DiffContext
	default:
		return t.TableCell
	}
}

func (s styler) apply(r role, text string) string {
	if s.th == nil || text == "" {
		return text
	}
	return s.style(r).Render(text)
}

// Fit truncates every line of s to width cells, keeping ANSI sequences
// intact.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if ansi.StringWidth(line) > width {
			lines[i] = ansi.Truncate(line, width, ellipsis)
		}
	}
	return strings.Join(lines, "\n")
}

// Plain strips ANSI sequences, used when copying rendered output.
func Plain(s string) string {
	return ansi.Strip(s)
}
