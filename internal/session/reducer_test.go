package session

import (
	"testing"
	"time"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/errclass"
	"github.com/unkn0wn-root/grammarviz/internal/stepcache"
)

func TestReduceIgnoresStaleResponses(t *testing.T) {
	s := Reduce(initialState(analysis.TypeFirst), GrammarSubmitted{Grammar: "S -> a", Gen: 2})
	for _, ev := range []Event{
		StepLoaded{Gen: 1, Result: &analysis.StepResult{TotalSteps: 3}},
		RequestFailed{Gen: 1, Failure: errclass.EmptyGrammar()},
		RequestCancelled{Gen: 1},
		StepRequested{Gen: 1, At: time.Now()},
	} {
		if !Stale(s, ev) {
			t.Fatalf("expected %T to be stale", ev)
		}
		if got := Reduce(s, ev); got != s {
			t.Fatalf("stale %T changed state: %+v", ev, got)
		}
	}
}

func TestReduceLifecycle(t *testing.T) {
	s := initialState(analysis.TypeFirst)
	if s.Phase != PhaseIdle || s.StepIndex != 0 || s.TotalSteps != 0 {
		t.Fatalf("unexpected initial state %+v", s)
	}

	s = Reduce(s, GrammarSubmitted{Grammar: " S -> a ", Gen: 1})
	if s.Phase != PhaseLoading || !s.Loading || s.Generation != 1 {
		t.Fatalf("expected loading, got %+v", s)
	}

	res := &analysis.StepResult{StepIndex: 0, TotalSteps: 4}
	transformed := "S -> a"
	s = Reduce(s, StepLoaded{Gen: 1, Result: res, Transformed: &transformed})
	if s.Phase != PhaseReady || s.TotalSteps != 4 || s.Current != res {
		t.Fatalf("expected ready, got %+v", s)
	}

	at := time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)
	s = Reduce(s, StepRequested{Gen: 1, At: at})
	if s.Phase != PhaseLoading || !s.LastTransition.Equal(at) {
		t.Fatalf("expected loading step, got %+v", s)
	}

	fail := &errclass.Failure{Category: errclass.CategoryTransport}
	s = Reduce(s, RequestFailed{Gen: 1, Failure: fail})
	if s.Phase != PhaseError || s.Current != res {
		t.Fatalf("expected error keeping display, got %+v", s)
	}

	snap := stepcache.Snapshot{Result: &analysis.StepResult{StepIndex: 2, TotalSteps: 5}, StepIndex: 2, TotalSteps: 5}
	s = Reduce(s, SnapshotRestored{Type: analysis.TypeFollow, Snapshot: snap, Gen: 2})
	if s.Phase != PhaseReady || s.StepIndex != 2 || s.Type != analysis.TypeFollow || s.Err != nil {
		t.Fatalf("expected restored state, got %+v", s)
	}
}

func TestReduceClampsIndex(t *testing.T) {
	s := Reduce(initialState(analysis.TypeFirst), GrammarSubmitted{Grammar: "S -> a", Gen: 1})
	s = Reduce(s, StepLoaded{Gen: 1, Result: &analysis.StepResult{StepIndex: 12, TotalSteps: 0}})
	if s.TotalSteps != 1 || s.StepIndex != 0 {
		t.Fatalf("expected index clamped into a single-step timeline, got %d/%d", s.StepIndex, s.TotalSteps)
	}
}

func TestReduceEmptyGrammarClearsDisplay(t *testing.T) {
	s := Reduce(initialState(analysis.TypeFirst), GrammarSubmitted{Grammar: "S -> a", Gen: 1})
	s = Reduce(s, StepLoaded{Gen: 1, Result: &analysis.StepResult{TotalSteps: 2}})
	s = Reduce(s, GrammarCleared{Grammar: "  ", Gen: 2})
	if s.Current != nil || s.TotalSteps != 0 || s.Err == nil || s.Phase != PhaseError {
		t.Fatalf("expected cleared error state, got %+v", s)
	}
}
