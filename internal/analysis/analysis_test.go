package analysis

import (
	"reflect"
	"testing"
)

func TestHighlightIndexNeverNegative(t *testing.T) {
	cases := []struct {
		line int
		want int
	}{
		{line: -3, want: 0},
		{line: 0, want: 0},
		{line: 1, want: 0},
		{line: 2, want: 1},
		{line: 15, want: 14},
	}
	for _, tc := range cases {
		if got := HighlightIndex(tc.line); got != tc.want {
			t.Fatalf("HighlightIndex(%d) = %d, want %d", tc.line, got, tc.want)
		}
	}
}

func TestParseTypeAcceptsLabels(t *testing.T) {
	cases := map[string]Type{
		"first":   TypeFirst,
		" Follow": TypeFollow,
		"PREDICT": TypePredict,
		"LL(1)":   TypeLL1,
		"ll1":     TypeLL1,
	}
	for raw, want := range cases {
		got, err := ParseType(raw)
		if err != nil {
			t.Fatalf("ParseType(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseType(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParseType("LR0"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestLL1IsNotSteppable(t *testing.T) {
	if TypeLL1.Steppable() {
		t.Fatalf("expected LL1 to have no step timeline")
	}
	for _, typ := range []Type{TypeFirst, TypeFollow, TypePredict} {
		if !typ.Steppable() {
			t.Fatalf("expected %s to be steppable", typ)
		}
	}
}

func TestTargetResolve(t *testing.T) {
	cases := []struct {
		name    string
		target  Target
		current int
		total   int
		want    int
		ok      bool
	}{
		{"prev from middle", Prev(), 3, 8, 2, true},
		{"prev at start", Prev(), 0, 8, 0, false},
		{"next from middle", Next(), 3, 8, 4, true},
		{"next at end", Next(), 7, 8, 0, false},
		{"next unknown total", Next(), 0, 0, 1, true},
		{"reset", Reset(), 5, 8, 0, true},
		{"result known total", Result(), 2, 8, 7, true},
		{"result single step", Result(), 0, 1, 0, true},
		{"result unknown total", Result(), 0, 0, ResultSentinel, true},
		{"index clamps", Index(40), 0, 8, 7, true},
		{"index negative", Index(-1), 0, 8, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.target.Resolve(tc.current, tc.total)
			if ok != tc.ok || (ok && got != tc.want) {
				t.Fatalf("Resolve(%d, %d) = (%d, %v), want (%d, %v)",
					tc.current, tc.total, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestResultResolvesToLastStepFromAnyIndex(t *testing.T) {
	for total := 1; total <= 12; total++ {
		for current := 0; current < total; current++ {
			got, ok := Result().Resolve(current, total)
			if !ok || got != total-1 {
				t.Fatalf("Result from %d/%d resolved to %d (ok=%v)", current, total, got, ok)
			}
		}
	}
}

func TestGroupByLHSMergesProductions(t *testing.T) {
	entries := []Entry{
		{Key: "S -> 'a' A", Symbols: []string{"a"}},
		{Key: "S -> 'b' B", Symbols: []string{"b", "a"}},
		{Key: "A -> 'c'", Symbols: []string{"c"}},
		{Key: "_opt1", Symbols: []string{"epsilon"}},
	}
	got := GroupByLHS(entries)
	want := []Group{
		{NonTerminal: "S", Symbols: []string{"a", "b"}},
		{NonTerminal: "A", Symbols: []string{"c"}},
		{NonTerminal: "_opt1", Symbols: []string{"epsilon"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected groups:\n got %#v\nwant %#v", got, want)
	}
	if !got[2].Helper() || got[0].Helper() {
		t.Fatalf("expected only _opt1 to be a helper non-terminal")
	}
}

func TestTableTerminalsMoveEndMarkerLast(t *testing.T) {
	table := Table{Rows: []Row{
		{NonTerminal: "S", Cells: []Cell{
			ParseCell("$", ""),
			ParseCell("a", "S -> a A"),
			ParseCell("b", "S -> b B, S -> b"),
		}},
		{NonTerminal: "A", Cells: []Cell{
			ParseCell("c", "A -> c"),
		}},
	}}
	if got, want := table.Terminals(), []string{"a", "b", "c", "$"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("terminals = %v, want %v", got, want)
	}
	if n := table.Conflicts(); n != 1 {
		t.Fatalf("expected 1 conflict, got %d", n)
	}
	cell := table.Lookup("S", "b")
	if !cell.Conflict() || len(cell.Rules) != 2 {
		t.Fatalf("expected conflicting cell, got %#v", cell)
	}
	if !table.Lookup("A", "a").Empty() {
		t.Fatalf("expected missing cell to be empty")
	}
}

func TestShortLabel(t *testing.T) {
	numbers := map[string]int{"S -> a A": 1}
	if got := ShortLabel("S -> a A", numbers); got != "R1" {
		t.Fatalf("expected R1, got %q", got)
	}
	if got := ShortLabel("A -> c", numbers); got != "A -> c" {
		t.Fatalf("expected unnumbered rule verbatim, got %q", got)
	}
}

func TestPseudoCodeCopies(t *testing.T) {
	lines := PseudoCode(TypeFollow)
	if len(lines) != 11 {
		t.Fatalf("expected 11 FOLLOW lines, got %d", len(lines))
	}
	lines[0] = "mutated"
	if PseudoCode(TypeFollow)[0] == "mutated" {
		t.Fatalf("expected PseudoCode to return a copy")
	}
	if len(PseudoCode(TypeLL1)) != 0 {
		t.Fatalf("expected no listing for LL1")
	}
}
