package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/errclass"
	"github.com/unkn0wn-root/grammarviz/internal/gateway"
	"github.com/unkn0wn-root/grammarviz/internal/session"
)

type stubGateway struct {
	total int
	err   error
}

func (g stubGateway) Analyze(ctx context.Context, grammar string) (gateway.AnalyzeResult, error) {
	if g.err != nil {
		return gateway.AnalyzeResult{}, g.err
	}
	return gateway.AnalyzeResult{TransformedGrammar: grammar + "\n_opt1 -> b | epsilon"}, nil
}

func (g stubGateway) FetchStep(
	ctx context.Context,
	t analysis.Type,
	grammar string,
	index int,
) (*analysis.StepResult, error) {
	if t == analysis.TypeLL1 {
		return &analysis.StepResult{
			Table: analysis.Table{Rows: []analysis.Row{{
				NonTerminal: "S",
				Cells: []analysis.Cell{
					analysis.ParseCell("a", "S -> a"),
					analysis.ParseCell("$", ""),
				},
			}}},
			LL1:         true,
			Rules:       []string{"S -> a"},
			RuleNumbers: map[string]int{"S -> a": 1},
			TotalSteps:  1,
		}, nil
	}
	return &analysis.StepResult{
		Partial:        []analysis.Entry{{Key: "S -> a", Symbols: []string{fmt.Sprintf("s%d", index)}}},
		Details:        fmt.Sprintf("%s step %d", t, index),
		PseudoCodeLine: index + 1,
		StepIndex:      index,
		TotalSteps:     g.total,
	}, nil
}

func newController(t *testing.T, gw gateway.Gateway) *session.Controller {
	return session.New(gw,
		session.WithStepInterval(0),
		session.WithLogger(zaptest.NewLogger(t)),
	)
}

func TestCollectWalksEveryStep(t *testing.T) {
	c := newController(t, stubGateway{total: 3})
	rep, err := Collect(context.Background(), c, "  S -> a  ", Options{
		Types: []analysis.Type{analysis.TypeFollow, analysis.TypeLL1},
	})
	require.NoError(t, err)
	require.Equal(t, "S -> a", rep.Grammar)
	require.Equal(t, c.ID(), rep.Session)
	require.Contains(t, rep.Transformed, "_opt1")
	require.Len(t, rep.Sections, 2)

	follow := rep.Sections[0]
	require.Equal(t, "FOLLOW", follow.Type)
	require.Len(t, follow.Steps, 3)
	for i, st := range follow.Steps {
		require.Equal(t, i, st.Index)
		require.Equal(t, 3, st.Total)
		require.Equal(t, fmt.Sprintf("FOLLOW step %d", i), st.Details)
		require.Equal(t, i+1, st.PseudoCodeLine)
		require.Equal(t, []string{fmt.Sprintf("s%d", i)}, st.Groups[0].Symbols)
	}

	ll1 := rep.Sections[1]
	require.Empty(t, ll1.Steps)
	require.NotNil(t, ll1.Table)
	require.True(t, ll1.Table.LL1)
	require.Equal(t, []string{"a", "$"}, ll1.Table.Terminals)
	require.Equal(t, [][]string{{"S -> a"}, {}}, ll1.Table.Rows[0].Cells)
}

func TestCollectRespectsMaxSteps(t *testing.T) {
	c := newController(t, stubGateway{total: 50})
	rep, err := Collect(context.Background(), c, "S -> a", Options{
		Types:    []analysis.Type{analysis.TypeFirst},
		MaxSteps: 4,
	})
	require.NoError(t, err)
	require.Len(t, rep.Sections[0].Steps, 4)
}

func TestCollectReturnsClassifiedFailure(t *testing.T) {
	remote := &gateway.RemoteError{Status: 400, Errors: []string{"Invalid syntax: each rule must contain '->'. Rule: S A"}}
	c := newController(t, stubGateway{total: 2, err: remote})
	_, err := Collect(context.Background(), c, "S A", Options{})
	require.Error(t, err)

	var failure *errclass.Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, errclass.CategoryValidation, failure.Category)
}

func TestCollectRejectsEmptyGrammar(t *testing.T) {
	c := newController(t, stubGateway{total: 2})
	_, err := Collect(context.Background(), c, "   ", Options{})
	var failure *errclass.Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, errclass.EmptyGrammarText, failure.Error())
}

func TestWriteFormats(t *testing.T) {
	c := newController(t, stubGateway{total: 2})
	rep, err := Collect(context.Background(), c, "S -> a", Options{
		Types: []analysis.Type{analysis.TypeFirst, analysis.TypeLL1},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rep, FormatJSON))
	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Sections, 2)
	require.Equal(t, 1, decoded.Sections[1].Table.RuleNumbers["S -> a"])

	buf.Reset()
	require.NoError(t, Write(&buf, rep, FormatYAML))
	var fromYAML Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	require.Equal(t, rep.Sections[0].Steps[1].Details, fromYAML.Sections[0].Steps[1].Details)

	buf.Reset()
	require.NoError(t, Write(&buf, rep, FormatText))
	text := buf.String()
	require.Contains(t, text, "== FIRST ==")
	require.Contains(t, text, "Step 2/2")
	require.Contains(t, text, "FIRST(S) = { s1 }")
	require.Contains(t, text, "== LL(1) ==")
	require.Contains(t, text, "R1: S -> a")
	require.True(t, strings.HasPrefix(text, "Grammar:\n  S -> a\n"))
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatText, "JSON": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	require.Error(t, err)
}
