package session

import (
	"time"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/errclass"
	"github.com/unkn0wn-root/grammarviz/internal/stepcache"
)

// Event is an input to Reduce. Events that answer a request carry the
// generation the request was issued under.
type Event interface {
	isEvent()
}

// GrammarCleared records the submission of a blank grammar.
type GrammarCleared struct {
	Grammar string
	Gen     uint64
}

type GrammarSubmitted struct {
	Grammar string
	Gen     uint64
}

// TypeSelected switches the analysis type. Loading is set when a fetch for
// the new type follows.
type TypeSelected struct {
	Type    analysis.Type
	Gen     uint64
	Loading bool
}

type SnapshotRestored struct {
	Type     analysis.Type
	Snapshot stepcache.Snapshot
	Gen      uint64
}

type StepRequested struct {
	Gen uint64
	At  time.Time
}

// StepLoaded applies a step result. Transformed is nil when the event does
// not carry analyze output. At is zero for loads that are not user
// transitions.
type StepLoaded struct {
	Gen         uint64
	Result      *analysis.StepResult
	At          time.Time
	Transformed *string
}

type RequestFailed struct {
	Gen     uint64
	Failure *errclass.Failure
}

type RequestCancelled struct {
	Gen uint64
}

func (GrammarCleared) isEvent() {}
func (GrammarSubmitted) isEvent() {}
func (TypeSelected) isEvent() {}
func (SnapshotRestored) isEvent() {}
func (StepRequested) isEvent() {}
func (StepLoaded) isEvent() {}
func (RequestFailed) isEvent() {}
func (RequestCancelled) isEvent() {}

// Stale reports whether e answers a request issued under an older
// generation than s.
func Stale(s State, e Event) bool {
	switch ev := e.(type) {
	case StepLoaded:
		return ev.Gen != s.Generation
	case RequestFailed:
		return ev.Gen != s.Generation
	case RequestCancelled:
		return ev.Gen != s.Generation
	case StepRequested:
		return ev.Gen != s.Generation
	}
	return false
}

// Reduce is the session state machine. It never mutates s and ignores
// stale responses.
func Reduce(s State, e Event) State {
	if Stale(s, e) {
		return s
	}
	switch ev := e.(type) {
	case GrammarCleared:
		s.Grammar = ev.Grammar
		s.Generation = ev.Gen
		s.Current = nil
		s.StepIndex = 0
		s.TotalSteps = 0
		s.TransformedGrammar = ""
		s.Loading = false
		s.Err = errclass.EmptyGrammar()

	case GrammarSubmitted:
		if analysis.NormalizeGrammar(ev.Grammar) != s.Normalized() {
			s.TransformedGrammar = ""
		}
		s.Grammar = ev.Grammar
		s.Generation = ev.Gen
		s.StepIndex = 0
		s.Loading = true
		s.Err = nil

	case TypeSelected:
		s.Type = ev.Type
		s.Generation = ev.Gen
		s.Current = nil
		s.StepIndex = 0
		s.TotalSteps = 0
		s.Loading = ev.Loading
		if s.Err != nil && s.Err.Category == errclass.CategoryEmptyGrammar && s.HasGrammar() {
			s.Err = nil
		}

	case SnapshotRestored:
		s.Type = ev.Type
		s.Generation = ev.Gen
		s.Current = ev.Snapshot.Result
		s.StepIndex = ev.Snapshot.StepIndex
		s.TotalSteps = ev.Snapshot.TotalSteps
		s.Loading = false
		s.Err = nil

	case StepRequested:
		s.Loading = true
		s.LastTransition = ev.At

	case StepLoaded:
		s.Current = ev.Result
		s.TotalSteps = 1
		s.StepIndex = 0
		if ev.Result != nil {
			s.TotalSteps = max(ev.Result.TotalSteps, 1)
			s.StepIndex = min(max(ev.Result.StepIndex, 0), s.TotalSteps-1)
		}
		if ev.Transformed != nil {
			s.TransformedGrammar = *ev.Transformed
		}
		if !ev.At.IsZero() {
			s.LastTransition = ev.At
		}
		s.Loading = false
		s.Err = nil

	case RequestFailed:
		s.Loading = false
		s.Err = ev.Failure

	case RequestCancelled:
		s.Loading = false
	}
	s.Phase = phaseOf(s)
	return s
}

func phaseOf(s State) Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Err != nil:
		return PhaseError
	case s.Current != nil:
		return PhaseReady
	default:
		return PhaseIdle
	}
}
