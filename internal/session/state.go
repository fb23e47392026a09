package session

import (
	"time"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/errclass"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// State is a value snapshot of one visualization session. Current is shared
// with the caches and must be treated as read-only.
type State struct {
	Grammar            string
	Type               analysis.Type
	StepIndex          int
	TotalSteps         int
	Loading            bool
	Err                *errclass.Failure
	LastTransition     time.Time
	Phase              Phase
	Generation         uint64
	Current            *analysis.StepResult
	TransformedGrammar string
}

func initialState(t analysis.Type) State {
	return State{Type: t}
}

func (s State) Normalized() string {
	return analysis.NormalizeGrammar(s.Grammar)
}

func (s State) HasGrammar() bool {
	return s.Normalized() != ""
}

func (s State) navigable() bool {
	return s.HasGrammar() && !s.Loading && s.Err == nil && s.Type.Steppable() && s.Current != nil
}

func (s State) CanPrev() bool {
	return s.navigable() && s.StepIndex > 0
}

func (s State) CanNext() bool {
	return s.navigable() && s.StepIndex < s.TotalSteps-1
}

func (s State) CanReset() bool {
	return s.navigable()
}

func (s State) CanResult() bool {
	return s.CanNext()
}

// CanSwitchType reports whether the type tabs accept input. A remote
// failure locks them until the grammar is edited.
func (s State) CanSwitchType() bool {
	if !s.HasGrammar() {
		return false
	}
	return s.Err == nil || s.Err.Category == errclass.CategoryEmptyGrammar
}

// HighlightLine is the zero-based pseudo-code line of the current step, -1
// when nothing is displayed.
func (s State) HighlightLine() int {
	if s.Current == nil {
		return -1
	}
	return analysis.HighlightIndex(s.Current.PseudoCodeLine)
}
