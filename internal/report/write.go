package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/render"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text, json or yaml)", raw)
	}
}

func Write(w io.Writer, r Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		_, err := io.WriteString(w, Text(r))
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Text renders r the way the interactive view lays out each step.
func Text(r Report) string {
	var b strings.Builder
	b.WriteString("Grammar:\n")
	b.WriteString(indent(r.Grammar))
	b.WriteByte('\n')
	if r.Transformed != "" {
		b.WriteString("\nTransformed (BNF):\n")
		b.WriteString(indent(r.Transformed))
		b.WriteByte('\n')
	}
	for _, sec := range r.Sections {
		t := analysis.Type(sec.Type)
		fmt.Fprintf(&b, "\n== %s ==\n", t.Label())
		if sec.Table != nil {
			b.WriteString(render.LL1(tableResult(sec.Table), nil))
			b.WriteByte('\n')
			continue
		}
		listing := analysis.PseudoCode(t)
		for _, st := range sec.Steps {
			fmt.Fprintf(&b, "\nStep %d/%d\n", st.Index+1, st.Total)
			if st.Details != "" {
				b.WriteString(indent(st.Details))
				b.WriteByte('\n')
			}
			if n := st.PseudoCodeLine; n > 0 && n <= len(listing) {
				fmt.Fprintf(&b, "  at: %s\n", strings.TrimSpace(listing[n-1]))
			}
			b.WriteString(indent(render.Groups(t, groupsOf(st.Groups), nil)))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func tableResult(t *Table) *analysis.StepResult {
	res := &analysis.StepResult{
		LL1:            t.LL1,
		LL1Description: t.Description,
		Rules:          t.Rules,
		RuleNumbers:    t.RuleNumbers,
	}
	for _, row := range t.Rows {
		out := analysis.Row{NonTerminal: row.NonTerminal}
		for i, term := range t.Terminals {
			cell := analysis.Cell{Terminal: term}
			if i < len(row.Cells) {
				cell.Rules = row.Cells[i]
			}
			out.Cells = append(out.Cells, cell)
		}
		res.Table.Rows = append(res.Table.Rows, out)
	}
	return res
}

func groupsOf(in []Group) []analysis.Group {
	out := make([]analysis.Group, len(in))
	for i, g := range in {
		out[i] = analysis.Group{NonTerminal: g.NonTerminal, Symbols: g.Symbols}
	}
	return out
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
