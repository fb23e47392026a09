package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/errclass"
	"github.com/unkn0wn-root/grammarviz/internal/gateway"
	"github.com/unkn0wn-root/grammarviz/internal/sched"
)

const exampleGrammar = "S -> 'a' A | 'b' B\nA -> 'c' | epsilon\nB -> 'd'"

func newTestController(t *testing.T, gw gateway.Gateway, opts ...Option) (*Controller, *sched.ManualClock) {
	t.Helper()
	clock := sched.NewManualClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	opts = append([]Option{WithClock(clock), WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(gw, opts...), clock
}

func TestSubmitEmptyGrammarMakesNoCalls(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		gw := newFakeGateway(3)
		c, _ := newTestController(t, gw)
		out := c.SubmitGrammar(context.Background(), text)
		require.Equal(t, RejectedEmptyGrammar, out)

		st := c.Snapshot()
		require.NotNil(t, st.Err)
		require.Equal(t, errclass.CategoryEmptyGrammar, st.Err.Category)
		require.Equal(t, PhaseError, st.Phase)
		require.False(t, st.Loading)

		analyze, steps := gw.counts()
		require.Zero(t, analyze)
		require.Zero(t, steps)
	}
}

func TestSubmitShowsFirstStepAndResetIsNoop(t *testing.T) {
	gw := newFakeGateway(5)
	c, clock := newTestController(t, gw)

	require.Equal(t, OutcomeApplied, c.SubmitGrammar(context.Background(), exampleGrammar))
	st := c.Snapshot()
	require.Equal(t, 0, st.StepIndex)
	require.Equal(t, 5, st.TotalSteps)
	require.Equal(t, PhaseReady, st.Phase)
	require.Nil(t, st.Err)
	analyze, steps := gw.counts()
	require.Equal(t, 1, analyze)
	require.Equal(t, 1, steps)

	clock.Advance(time.Second)
	require.Equal(t, OutcomeFromCache, c.Step(context.Background(), analysis.Reset()))
	after := c.Snapshot()
	require.Equal(t, 0, after.StepIndex)
	require.Same(t, st.Current, after.Current)
	require.Equal(t, st.TotalSteps, after.TotalSteps)
	_, steps = gw.counts()
	require.Equal(t, 1, steps)
}

func TestResultResolvesToLastStep(t *testing.T) {
	for total := 1; total <= 5; total++ {
		for start := 0; start < total; start++ {
			gw := newFakeGateway(total)
			c, _ := newTestController(t, gw, WithStepInterval(0))
			require.Equal(t, OutcomeApplied, c.SubmitGrammar(context.Background(), exampleGrammar))
			if start > 0 {
				require.True(t, c.Step(context.Background(), analysis.Index(start)).Accepted())
			}
			out := c.Step(context.Background(), analysis.Result())
			require.True(t, out.Accepted(), "total=%d start=%d outcome=%s", total, start, out)
			require.Equal(t, total-1, c.Snapshot().StepIndex, "total=%d start=%d", total, start)
		}
	}
}

func TestStepRateLimit(t *testing.T) {
	gw := newFakeGateway(5)
	c, clock := newTestController(t, gw)
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(context.Background(), exampleGrammar))

	require.Equal(t, OutcomeApplied, c.Step(context.Background(), analysis.Next()))
	before := c.Snapshot()
	_, stepsBefore := gw.counts()

	clock.Advance(100 * time.Millisecond)
	require.Equal(t, RejectedRateLimited, c.Step(context.Background(), analysis.Next()))
	require.Equal(t, before, c.Snapshot())
	_, steps := gw.counts()
	require.Equal(t, stepsBefore, steps)

	clock.Advance(199 * time.Millisecond)
	require.Equal(t, RejectedRateLimited, c.Step(context.Background(), analysis.Next()))

	clock.Advance(time.Millisecond)
	require.Equal(t, OutcomeApplied, c.Step(context.Background(), analysis.Next()))
	require.Equal(t, 2, c.Snapshot().StepIndex)
}

func TestRateLimitMeasuredFromAcceptedTransition(t *testing.T) {
	gw := newFakeGateway(5)
	c, clock := newTestController(t, gw)
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(context.Background(), exampleGrammar))

	require.Equal(t, RejectedOutOfRange, c.Step(context.Background(), analysis.Prev()))
	require.Equal(t, OutcomeApplied, c.Step(context.Background(), analysis.Next()))
	for i := 0; i < 5; i++ {
		clock.Advance(50 * time.Millisecond)
		require.Equal(t, RejectedRateLimited, c.Step(context.Background(), analysis.Prev()))
	}
	clock.Advance(50 * time.Millisecond)
	require.Equal(t, OutcomeFromCache, c.Step(context.Background(), analysis.Prev()))
}

func TestTypeSwitchRestoresSnapshot(t *testing.T) {
	gw := newFakeGateway(6)
	c, clock := newTestController(t, gw)
	ctx := context.Background()
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(ctx, exampleGrammar))
	for i := 0; i < 2; i++ {
		clock.Advance(300 * time.Millisecond)
		require.True(t, c.Step(ctx, analysis.Next()).Accepted())
	}
	leaving := c.Snapshot()
	require.Equal(t, 2, leaving.StepIndex)

	require.Equal(t, OutcomeApplied, c.ChangeAnalysisType(ctx, analysis.TypeFollow))
	follow := c.Snapshot()
	require.Equal(t, analysis.TypeFollow, follow.Type)
	require.Equal(t, 0, follow.StepIndex)
	analyze, steps := gw.counts()

	require.Equal(t, OutcomeRestored, c.ChangeAnalysisType(ctx, analysis.TypeFirst))
	back := c.Snapshot()
	require.Equal(t, analysis.TypeFirst, back.Type)
	require.Same(t, leaving.Current, back.Current)
	require.Equal(t, leaving.StepIndex, back.StepIndex)
	require.Equal(t, leaving.TotalSteps, back.TotalSteps)
	analyze2, steps2 := gw.counts()
	require.Equal(t, analyze, analyze2)
	require.Equal(t, steps, steps2)

	require.Equal(t, OutcomeRestored, c.ChangeAnalysisType(ctx, analysis.TypeFollow))
	require.Same(t, follow.Current, c.Snapshot().Current)
}

func TestSameTypeIsUnchanged(t *testing.T) {
	c, _ := newTestController(t, newFakeGateway(2))
	require.Equal(t, OutcomeUnchanged, c.ChangeAnalysisType(context.Background(), analysis.TypeFirst))
	require.Equal(t, RejectedUnknownType, c.ChangeAnalysisType(context.Background(), analysis.Type("LR0")))
}

func TestChangeTypeWithoutGrammar(t *testing.T) {
	gw := newFakeGateway(2)
	c, _ := newTestController(t, gw)
	require.Equal(t, OutcomeApplied, c.ChangeAnalysisType(context.Background(), analysis.TypePredict))
	require.Equal(t, analysis.TypePredict, c.Snapshot().Type)
	analyze, steps := gw.counts()
	require.Zero(t, analyze+steps)
}

func TestNewGrammarResetsSnapshots(t *testing.T) {
	gw := newFakeGateway(3)
	c, _ := newTestController(t, gw)
	ctx := context.Background()
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(ctx, exampleGrammar))
	require.Equal(t, OutcomeApplied, c.ChangeAnalysisType(ctx, analysis.TypeFollow))
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(ctx, "S -> 'x'"))
	require.Equal(t, OutcomeApplied, c.ChangeAnalysisType(ctx, analysis.TypeFirst))
	require.Contains(t, c.Snapshot().Current.Details, "S -> 'x'")
}

func TestFirstExampleHighlightLine(t *testing.T) {
	gw := newFakeGateway(4)
	c, clock := newTestController(t, gw)
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(context.Background(), exampleGrammar))
	clock.Advance(time.Second)
	require.True(t, c.Step(context.Background(), analysis.Reset()).Accepted())
	st := c.Snapshot()
	require.Equal(t, 0, st.StepIndex)
	require.GreaterOrEqual(t, st.HighlightLine(), 0)
	require.Equal(t, max(1, st.Current.PseudoCodeLine)-1, st.HighlightLine())
}

func TestValidationFailureLocksNavigation(t *testing.T) {
	gw := newFakeGateway(3)
	gw.analyzeErr = &gateway.RemoteError{
		Status: 400,
		Errors: []string{"Invalid syntax: each rule must contain '->'. Rule: S A"},
	}
	c, clock := newTestController(t, gw)
	ctx := context.Background()

	require.Equal(t, OutcomeFailed, c.SubmitGrammar(ctx, "S A"))
	st := c.Snapshot()
	require.Equal(t, PhaseError, st.Phase)
	require.Equal(t, errclass.CategoryValidation, st.Err.Category)
	msg := st.Err.First()
	require.Equal(t, errclass.KindMissingArrow, msg.Kind)
	require.Equal(t, "S A", msg.Rule)

	clock.Advance(time.Second)
	require.Equal(t, RejectedError, c.Step(ctx, analysis.Next()))
	require.Equal(t, RejectedError, c.ChangeAnalysisType(ctx, analysis.TypeFollow))
	require.False(t, st.CanSwitchType())
	_, steps := gw.counts()
	require.Zero(t, steps)

	gw.mu.Lock()
	gw.analyzeErr = nil
	gw.mu.Unlock()
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(ctx, "S -> A"))
	require.Nil(t, c.Snapshot().Err)
}

func TestFailureKeepsPreviousDisplay(t *testing.T) {
	gw := newFakeGateway(3)
	c, _ := newTestController(t, gw)
	ctx := context.Background()
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(ctx, exampleGrammar))
	shown := c.Snapshot().Current

	gw.mu.Lock()
	gw.analyzeErr = &gateway.RemoteError{Status: 400, Errors: []string{"Undefined non-terminal(s): C"}}
	gw.mu.Unlock()
	require.Equal(t, OutcomeFailed, c.SubmitGrammar(ctx, exampleGrammar+"\nC -> D"))
	st := c.Snapshot()
	require.Same(t, shown, st.Current)
	require.Equal(t, "C", st.Err.First().Terms)
}

func TestStaleStepIsDiscarded(t *testing.T) {
	gw := newFakeGateway(4)
	gw.block = make(chan struct{})
	gw.entered = make(chan stepCall, 1)
	gw.hold = func(call stepCall) bool {
		return call.Grammar == "S -> a" && call.Index == 1
	}
	c, _ := newTestController(t, gw)
	ctx := context.Background()
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(ctx, "S -> a"))

	var (
		wg      sync.WaitGroup
		outcome Outcome
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		outcome = c.Step(ctx, analysis.Next())
	}()
	<-gw.entered
	require.True(t, c.Snapshot().Loading)

	require.Equal(t, OutcomeApplied, c.SubmitGrammar(ctx, "S -> b"))
	fresh := c.Snapshot()
	close(gw.block)
	wg.Wait()

	require.Equal(t, OutcomeDiscarded, outcome)
	st := c.Snapshot()
	require.Equal(t, fresh, st)
	require.Equal(t, "S -> b", st.Grammar)
	require.Equal(t, 0, st.StepIndex)
	require.False(t, st.Loading)
}

func TestStepWhileLoadingIsRejected(t *testing.T) {
	gw := newFakeGateway(4)
	gw.block = make(chan struct{})
	gw.entered = make(chan stepCall, 1)
	gw.hold = func(call stepCall) bool { return call.Index == 1 }
	c, clock := newTestController(t, gw)
	ctx := context.Background()
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(ctx, exampleGrammar))

	done := make(chan Outcome, 1)
	go func() { done <- c.Step(ctx, analysis.Next()) }()
	<-gw.entered
	clock.Advance(time.Second)
	require.Equal(t, RejectedLoading, c.Step(ctx, analysis.Next()))
	close(gw.block)
	require.Equal(t, OutcomeApplied, <-done)
	require.Equal(t, 1, c.Snapshot().StepIndex)
}

func TestCancelledRequestClearsLoading(t *testing.T) {
	gw := newFakeGateway(3)
	c, _ := newTestController(t, gw)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, OutcomeCancelled, c.SubmitGrammar(ctx, exampleGrammar))
	st := c.Snapshot()
	require.False(t, st.Loading)
	require.Nil(t, st.Err)
	require.Equal(t, PhaseIdle, st.Phase)
}

func TestLL1HasNoStepping(t *testing.T) {
	gw := newFakeGateway(3)
	c, _ := newTestController(t, gw, WithInitialType(analysis.TypeLL1))
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(context.Background(), exampleGrammar))
	require.Equal(t, RejectedNoStepping, c.Step(context.Background(), analysis.Next()))
	st := c.Snapshot()
	require.Equal(t, 1, st.TotalSteps)
	require.False(t, st.CanNext())
}

func TestTransformedGrammarRecordedWhenDifferent(t *testing.T) {
	gw := newFakeGateway(2)
	gw.transformed["S -> [a]"] = "S -> _opt1\n_opt1 -> a | epsilon"
	gw.transformed["S -> a"] = "S -> a"
	c, _ := newTestController(t, gw)
	ctx := context.Background()

	require.Equal(t, OutcomeApplied, c.SubmitGrammar(ctx, "S -> [a]"))
	require.Equal(t, "S -> _opt1\n_opt1 -> a | epsilon", c.Snapshot().TransformedGrammar)

	require.Equal(t, OutcomeApplied, c.SubmitGrammar(ctx, "S -> a"))
	require.Empty(t, c.Snapshot().TransformedGrammar)
}

func TestSubscribeReceivesChanges(t *testing.T) {
	gw := newFakeGateway(2)
	c, _ := newTestController(t, gw)
	var (
		mu     sync.Mutex
		phases []Phase
	)
	c.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, s.Phase)
	})
	require.Equal(t, OutcomeApplied, c.SubmitGrammar(context.Background(), exampleGrammar))
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []Phase{PhaseLoading, PhaseReady}, phases)
}

func TestControlEnablement(t *testing.T) {
	gw := newFakeGateway(3)
	c, _ := newTestController(t, gw, WithStepInterval(0))
	ctx := context.Background()

	st := c.Snapshot()
	require.False(t, st.CanPrev() || st.CanNext() || st.CanReset() || st.CanResult() || st.CanSwitchType())

	require.Equal(t, OutcomeApplied, c.SubmitGrammar(ctx, exampleGrammar))
	st = c.Snapshot()
	require.False(t, st.CanPrev())
	require.True(t, st.CanNext())
	require.True(t, st.CanResult())
	require.True(t, st.CanSwitchType())

	require.True(t, c.Step(ctx, analysis.Result()).Accepted())
	st = c.Snapshot()
	require.True(t, st.CanPrev())
	require.False(t, st.CanNext())
	require.False(t, st.CanResult())
	require.Equal(t, RejectedOutOfRange, c.Step(ctx, analysis.Next()))
}
