package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/gateway"
)

type stepCall struct {
	Type    analysis.Type
	Grammar string
	Index   int
}

// fakeGateway serves a fixed-length timeline per grammar. Calls matching
// hold block until it is closed.
type fakeGateway struct {
	mu           sync.Mutex
	total        int
	transformed  map[string]string
	analyzeErr   error
	analyzeCalls int
	steps        []stepCall

	hold    func(stepCall) bool
	block   chan struct{}
	entered chan stepCall
}

func newFakeGateway(total int) *fakeGateway {
	return &fakeGateway{total: total, transformed: map[string]string{}}
}

func (f *fakeGateway) Analyze(ctx context.Context, grammar string) (gateway.AnalyzeResult, error) {
	f.mu.Lock()
	f.analyzeCalls++
	err := f.analyzeErr
	transformed := f.transformed[grammar]
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return gateway.AnalyzeResult{}, err
	}
	if err != nil {
		return gateway.AnalyzeResult{}, err
	}
	return gateway.AnalyzeResult{TransformedGrammar: transformed}, nil
}

func (f *fakeGateway) FetchStep(
	ctx context.Context,
	t analysis.Type,
	grammar string,
	index int,
) (*analysis.StepResult, error) {
	call := stepCall{Type: t, Grammar: grammar, Index: index}
	f.mu.Lock()
	f.steps = append(f.steps, call)
	total := f.total
	hold := f.hold != nil && f.hold(call)
	f.mu.Unlock()

	if hold {
		if f.entered != nil {
			f.entered <- call
		}
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t == analysis.TypeLL1 {
		total = 1
	}
	idx := min(index, total-1)
	return &analysis.StepResult{
		Partial: []analysis.Entry{
			{Key: "S", Symbols: []string{fmt.Sprintf("%s-%d", t, idx)}},
		},
		Details:        fmt.Sprintf("%s step %d of %q", t, idx, grammar),
		PseudoCodeLine: idx,
		StepIndex:      idx,
		TotalSteps:     total,
	}, nil
}

func (f *fakeGateway) counts() (analyze, steps int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.analyzeCalls, len(f.steps)
}
