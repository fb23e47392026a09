package errclass

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/unkn0wn-root/grammarviz/internal/errdef"
	"github.com/unkn0wn-root/grammarviz/internal/gateway"
)

type Category int

const (
	CategoryEmptyGrammar Category = iota + 1
	CategoryValidation
	CategoryUnrecognizedRemote
	CategoryTransport
)

func (c Category) String() string {
	switch c {
	case CategoryEmptyGrammar:
		return "empty-grammar"
	case CategoryValidation:
		return "validation"
	case CategoryUnrecognizedRemote:
		return "remote"
	case CategoryTransport:
		return "transport"
	default:
		return "unknown"
	}
}

type Kind int

const (
	KindGeneric Kind = iota
	KindMissingArrow
	KindMultipleArrows
	KindInvalidLHS
	KindEmptyAlternative
	KindUndefinedNonTerminals
	KindPassthrough
	KindEmptyGrammar
	KindTransport
)

const (
	ruleSeparator  = "Rule: "
	termsSeparator = ": "

	GenericText      = "Analysis error. Check your grammar or try again."
	EmptyGrammarText = "Grammar cannot be empty!"
)

type pattern struct {
	prefix string
	kind   Kind
	sep    string
}

var patterns = []pattern{
	{"Invalid syntax: each rule must contain '->'", KindMissingArrow, ruleSeparator},
	{"Invalid syntax: exactly one '->'", KindMultipleArrows, ruleSeparator},
	{"Invalid syntax: left-hand side", KindInvalidLHS, ruleSeparator},
	{"Empty alternative is not allowed", KindEmptyAlternative, ruleSeparator},
	{"Undefined non-terminal(s):", KindUndefinedNonTerminals, termsSeparator},
}

// Message is one displayable error. Rule or Terms hold the context
// extracted from the raw text, Raw keeps the text as received.
type Message struct {
	Kind  Kind
	Rule  string
	Terms string
	Raw   string
}

func (m Message) Validation() bool {
	switch m.Kind {
	case KindMissingArrow, KindMultipleArrows, KindInvalidLHS,
		KindEmptyAlternative, KindUndefinedNonTerminals:
		return true
	}
	return false
}

func (m Message) Text() string {
	switch m.Kind {
	case KindMissingArrow:
		return withRule("Each rule must contain '->'.", m.Rule)
	case KindMultipleArrows:
		return withRule("Each rule must contain exactly one '->'.", m.Rule)
	case KindInvalidLHS:
		return withRule("The left-hand side must be a single non-terminal.", m.Rule)
	case KindEmptyAlternative:
		return withRule("Empty alternative is not allowed, use epsilon.", m.Rule)
	case KindUndefinedNonTerminals:
		if m.Terms == "" {
			return "Undefined non-terminal(s)."
		}
		return "Undefined non-terminal(s): " + m.Terms
	case KindPassthrough, KindTransport:
		return m.Raw
	case KindEmptyGrammar:
		return EmptyGrammarText
	default:
		return GenericText
	}
}

func withRule(text, rule string) string {
	if rule == "" {
		return text
	}
	return text + " Rule: " + rule
}

// Classify maps raw service messages to display messages. An empty list
// yields the generic message.
func Classify(raw []string) []Message {
	var out []Message
	for _, msg := range raw {
		if strings.TrimSpace(msg) == "" {
			continue
		}
		out = append(out, classifyOne(msg))
	}
	if len(out) == 0 {
		return []Message{{Kind: KindGeneric}}
	}
	return out
}

func classifyOne(raw string) Message {
	for _, p := range patterns {
		if !strings.HasPrefix(raw, p.prefix) {
			continue
		}
		ctx := segment(raw, p.sep)
		m := Message{Kind: p.kind, Raw: raw}
		if p.kind == KindUndefinedNonTerminals {
			m.Terms = ctx
		} else {
			m.Rule = ctx
		}
		return m
	}
	return Message{Kind: KindPassthrough, Raw: raw}
}

// segment returns the text between the first and the second occurrence of
// sep, or "" when sep is absent.
func segment(raw, sep string) string {
	_, rest, ok := strings.Cut(raw, sep)
	if !ok {
		return ""
	}
	if before, _, found := strings.Cut(rest, sep); found {
		rest = before
	}
	return strings.TrimSpace(rest)
}

// Failure is the error state of a session.
type Failure struct {
	Category Category
	Messages []Message
	Cause    error
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return strings.Join(f.Lines(), "\n")
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Cause
}

func (f *Failure) Lines() []string {
	if f == nil {
		return nil
	}
	lines := make([]string, 0, len(f.Messages))
	for _, m := range f.Messages {
		lines = append(lines, m.Text())
	}
	return lines
}

// First returns the leading message, which the UI shows inline.
func (f *Failure) First() Message {
	if f == nil || len(f.Messages) == 0 {
		return Message{Kind: KindGeneric}
	}
	return f.Messages[0]
}

func EmptyGrammar() *Failure {
	return &Failure{
		Category: CategoryEmptyGrammar,
		Messages: []Message{{Kind: KindEmptyGrammar}},
	}
}

// FromError classifies a gateway failure. A structured rejection is a
// validation failure when any message matched a known pattern and an
// unrecognized remote failure otherwise.
func FromError(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	var remote *gateway.RemoteError
	if errors.As(err, &remote) {
		msgs := Classify(remote.Errors)
		cat := CategoryUnrecognizedRemote
		for _, m := range msgs {
			if m.Validation() {
				cat = CategoryValidation
				break
			}
		}
		return &Failure{Category: cat, Messages: msgs, Cause: err}
	}
	return &Failure{
		Category: CategoryTransport,
		Messages: []Message{{Kind: KindTransport, Raw: transportText(err)}},
		Cause:    err,
	}
}

func transportText(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Analysis service timed out. Try again."
	case errdef.CodeOf(err) == errdef.CodeParse:
		return fmt.Sprintf("Unexpected response from analysis service: %s", errdef.Message(err))
	default:
		return fmt.Sprintf("%s (%s)", GenericText, errdef.Message(err))
	}
}
