package render

import (
	"strings"

	"github.com/alecthomas/chroma/quick"
	"github.com/aymanbagabas/go-udiff"

	"github.com/unkn0wn-root/grammarviz/internal/theme"
)

const (
	originalLabel    = "grammar (EBNF)"
	transformedLabel = "transformed (BNF)"
	NoDifference     = "Grammar is already in BNF"
)

// Grammar highlights a grammar listing with the theme's chroma style. Plain
// text is returned for a nil theme or when highlighting fails.
func Grammar(src string, th *theme.Theme) string {
	if th == nil || strings.TrimSpace(src) == "" {
		return src
	}
	var b strings.Builder
	if err := quick.Highlight(&b, src, "ebnf", "terminal256", th.SyntaxStyle); err != nil {
		return src
	}
	return strings.TrimRight(b.String(), "\n")
}

// Diff renders a unified diff from the submitted grammar to its BNF
// rewrite.
func Diff(original, transformed string, th *theme.Theme) string {
	left := withTrailingNewline(original)
	right := withTrailingNewline(transformed)
	if left == right {
		return NoDifference
	}
	diff := strings.TrimRight(udiff.Unified(originalLabel, transformedLabel, left, right), "\n")
	if th == nil {
		return diff
	}
	s := styler{th: th}
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---"):
			lines[i] = s.apply(roleHeader, line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = s.apply(roleRule, line)
		case strings.HasPrefix(line, "+"):
			lines[i] = s.apply(roleDiffAdd, line)
		case strings.HasPrefix(line, "-"):
			lines[i] = s.apply(roleDiffRemove, line)
		default:
			lines[i] = s.apply(roleDiffContext, line)
		}
	}
	return strings.Join(lines, "\n")
}

func withTrailingNewline(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return s + "\n"
}
