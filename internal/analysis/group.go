package analysis

import "strings"

const helperPrefix = "_"

// Group collects the symbols of every production sharing a left-hand side.
type Group struct {
	NonTerminal string
	Symbols     []string
}

// Helper reports whether the non-terminal was generated while rewriting
// EBNF into BNF (_opt1, _rep2, _alt3, ...).
func (g Group) Helper() bool {
	return IsHelperNonTerminal(g.NonTerminal)
}

func IsHelperNonTerminal(name string) bool {
	return len(name) > len(helperPrefix) && strings.HasPrefix(name, helperPrefix)
}

// LeftHandSide extracts "A" from "A -> α"; keys without an arrow are
// returned trimmed.
func LeftHandSide(key string) string {
	lhs, _, _ := strings.Cut(key, "->")
	return strings.TrimSpace(lhs)
}

// GroupByLHS merges partial-result entries by left-hand side keeping the
// first-seen order of both groups and symbols.
func GroupByLHS(entries []Entry) []Group {
	index := make(map[string]int)
	var groups []Group
	seen := make(map[string]map[string]struct{})
	for _, entry := range entries {
		lhs := LeftHandSide(entry.Key)
		pos, ok := index[lhs]
		if !ok {
			pos = len(groups)
			index[lhs] = pos
			groups = append(groups, Group{NonTerminal: lhs})
			seen[lhs] = make(map[string]struct{})
		}
		for _, sym := range entry.Symbols {
			if _, dup := seen[lhs][sym]; dup {
				continue
			}
			seen[lhs][sym] = struct{}{}
			groups[pos].Symbols = append(groups[pos].Symbols, sym)
		}
	}
	return groups
}
