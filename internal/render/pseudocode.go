package render

import (
	"strings"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/theme"
)

const (
	activeMarker   = "▶ "
	inactiveMarker = "  "
)

// PseudoCode renders the listing for t with the line at highlight marked.
// A negative highlight marks nothing.
func PseudoCode(t analysis.Type, highlight int, th *theme.Theme) string {
	lines := analysis.PseudoCode(t)
	if len(lines) == 0 {
		return ""
	}
	s := styler{th: th}
	out := make([]string, len(lines))
	for i, line := range lines {
		if i == highlight {
			out[i] = activeMarker + s.apply(rolePseudoActive, line)
			continue
		}
		out[i] = inactiveMarker + s.apply(rolePseudo, line)
	}
	return strings.Join(out, "\n")
}
