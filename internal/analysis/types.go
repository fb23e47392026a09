package analysis

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeFirst   Type = "FIRST"
	TypeFollow  Type = "FOLLOW"
	TypePredict Type = "PREDICT"
	TypeLL1     Type = "LL1"
)

// Types lists every analysis in tab order.
var Types = []Type{TypeFirst, TypeFollow, TypePredict, TypeLL1}

func ParseType(raw string) (Type, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.NewReplacer("(", "", ")", "", "-", "", "_", "").Replace(key)
	for _, t := range Types {
		if string(t) == key {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown analysis type %q", raw)
}

func (t Type) Valid() bool {
	switch t {
	case TypeFirst, TypeFollow, TypePredict, TypeLL1:
		return true
	}
	return false
}

// Steppable reports whether the analysis exposes a step timeline. LL(1)
// materializes a single table instead.
func (t Type) Steppable() bool {
	return t.Valid() && t != TypeLL1
}

func (t Type) Label() string {
	if t == TypeLL1 {
		return "LL(1)"
	}
	return string(t)
}

// NormalizeGrammar returns the identity form of a grammar. Two grammars are
// the same grammar iff their normalized forms are byte-equal.
func NormalizeGrammar(text string) string {
	return strings.TrimSpace(text)
}

// Entry is one row of a partial result: a production key (rule or
// left-hand side) and its ordered symbol set.
type Entry struct {
	Key     string
	Symbols []string
}

// StepResult is one materialized snapshot of an algorithm's progress.
// Values are shared between caches and the session and must not be mutated.
type StepResult struct {
	Partial        []Entry
	Details        string
	Table          Table
	LL1            bool
	LL1Description string
	Rules          []string
	RuleNumbers    map[string]int
	PseudoCodeLine int
	StepIndex      int
	TotalSteps     int
}

func (r *StepResult) Last() bool {
	if r == nil {
		return true
	}
	return r.StepIndex >= r.TotalSteps-1
}
