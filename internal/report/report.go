// Package report walks every step of one or more analyses without a
// terminal UI and prints the result.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/errclass"
	"github.com/unkn0wn-root/grammarviz/internal/session"
)

const DefaultMaxSteps = 10000

type Report struct {
	Session     string    `json:"session"               yaml:"session"`
	Grammar     string    `json:"grammar"               yaml:"grammar"`
	Transformed string    `json:"transformed,omitempty" yaml:"transformed,omitempty"`
	Sections    []Section `json:"sections"              yaml:"sections"`
}

type Section struct {
	Type  string `json:"type"            yaml:"type"`
	Steps []Step `json:"steps"           yaml:"steps"`
	Table *Table `json:"table,omitempty" yaml:"table,omitempty"`
}

type Step struct {
	Index          int     `json:"index"                      yaml:"index"`
	Total          int     `json:"total"                      yaml:"total"`
	Details        string  `json:"details,omitempty"          yaml:"details,omitempty"`
	PseudoCodeLine int     `json:"pseudo_code_line,omitempty" yaml:"pseudo_code_line,omitempty"`
	Groups         []Group `json:"groups,omitempty"           yaml:"groups,omitempty"`
}

type Group struct {
	NonTerminal string   `json:"non_terminal"     yaml:"non_terminal"`
	Symbols     []string `json:"symbols"          yaml:"symbols"`
	Helper      bool     `json:"helper,omitempty" yaml:"helper,omitempty"`
}

type Table struct {
	LL1         bool           `json:"ll1"                    yaml:"ll1"`
	Description string         `json:"description,omitempty"  yaml:"description,omitempty"`
	Terminals   []string       `json:"terminals"              yaml:"terminals"`
	Rows        []TableRow     `json:"rows"                   yaml:"rows"`
	Rules       []string       `json:"rules,omitempty"        yaml:"rules,omitempty"`
	RuleNumbers map[string]int `json:"rule_numbers,omitempty" yaml:"rule_numbers,omitempty"`
	Conflicts   int            `json:"conflicts"              yaml:"conflicts"`
}

type TableRow struct {
	NonTerminal string     `json:"non_terminal" yaml:"non_terminal"`
	Cells       [][]string `json:"cells"        yaml:"cells"`
}

type Options struct {
	Types    []analysis.Type
	MaxSteps int
}

// Collect submits grammar to c and records every step of each requested
// analysis type. c should be built without a step interval. A failure
// stops the walk; the partial report is returned together with the
// classified *errclass.Failure.
func Collect(ctx context.Context, c *session.Controller, grammar string, opts Options) (Report, error) {
	types := opts.Types
	if len(types) == 0 {
		types = analysis.Types
	}
	limit := opts.MaxSteps
	if limit <= 0 {
		limit = DefaultMaxSteps
	}

	rep := Report{Session: c.ID(), Grammar: analysis.NormalizeGrammar(grammar)}
	if out := c.ChangeAnalysisType(ctx, types[0]); out.Rejected() {
		return rep, fmt.Errorf("select %s: %s", types[0], out)
	}
	if out := c.SubmitGrammar(ctx, grammar); !out.Accepted() {
		return rep, outcomeError(c.Snapshot(), "submit grammar", out)
	}
	rep.Transformed = c.Snapshot().TransformedGrammar

	for i, t := range types {
		if i > 0 {
			if out := c.ChangeAnalysisType(ctx, t); !out.Accepted() && out != session.OutcomeUnchanged {
				return rep, outcomeError(c.Snapshot(), "select "+string(t), out)
			}
		}
		section, err := walk(ctx, c, limit)
		rep.Sections = append(rep.Sections, section)
		if err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func walk(ctx context.Context, c *session.Controller, limit int) (Section, error) {
	s := c.Snapshot()
	section := Section{Type: string(s.Type)}
	if s.Type == analysis.TypeLL1 {
		section.Table = tableOf(s.Current)
		return section, nil
	}
	if s.StepIndex > 0 {
		if out := c.Step(ctx, analysis.Reset()); !out.Accepted() {
			return section, outcomeError(c.Snapshot(), "rewind", out)
		}
		s = c.Snapshot()
	}
	section.Steps = append(section.Steps, stepOf(s))
	for s.CanNext() && len(section.Steps) < limit {
		if out := c.Step(ctx, analysis.Next()); !out.Accepted() {
			return section, outcomeError(c.Snapshot(), "step", out)
		}
		s = c.Snapshot()
		section.Steps = append(section.Steps, stepOf(s))
	}
	return section, nil
}

func outcomeError(s session.State, op string, out session.Outcome) error {
	if s.Err != nil {
		return s.Err
	}
	if out == session.RejectedEmptyGrammar {
		return errclass.EmptyGrammar()
	}
	return fmt.Errorf("%s: %s", op, out)
}

func stepOf(s session.State) Step {
	st := Step{Index: s.StepIndex, Total: s.TotalSteps}
	res := s.Current
	if res == nil {
		return st
	}
	st.Details = strings.TrimSpace(res.Details)
	st.PseudoCodeLine = analysis.HighlightIndex(res.PseudoCodeLine) + 1
	for _, g := range analysis.GroupByLHS(res.Partial) {
		st.Groups = append(st.Groups, Group{
			NonTerminal: g.NonTerminal,
			Symbols:     g.Symbols,
			Helper:      g.Helper(),
		})
	}
	return st
}

func tableOf(res *analysis.StepResult) *Table {
	if res == nil {
		return nil
	}
	terminals := res.Table.Terminals()
	t := &Table{
		LL1:         res.LL1,
		Description: res.LL1Description,
		Terminals:   terminals,
		Rules:       res.Rules,
		RuleNumbers: res.RuleNumbers,
		Conflicts:   res.Table.Conflicts(),
	}
	for _, row := range res.Table.Rows {
		out := TableRow{NonTerminal: row.NonTerminal, Cells: make([][]string, len(terminals))}
		for i, term := range terminals {
			out.Cells[i] = res.Table.Lookup(row.NonTerminal, term).Rules
			if out.Cells[i] == nil {
				out.Cells[i] = []string{}
			}
		}
		t.Rows = append(t.Rows, out)
	}
	return t
}
