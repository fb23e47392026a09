// Package session owns the state of one visualization session and drives
// the analysis service through it.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/errclass"
	"github.com/unkn0wn-root/grammarviz/internal/gateway"
	"github.com/unkn0wn-root/grammarviz/internal/sched"
	"github.com/unkn0wn-root/grammarviz/internal/stepcache"
)

const DefaultStepInterval = 300 * time.Millisecond

// Controller serializes state changes behind a mutex that is released while
// the gateway is called. Every method blocks until its request completes
// and is safe for concurrent use.
type Controller struct {
	mu    sync.Mutex
	state State

	gw    gateway.Gateway
	steps *stepcache.Steps
	snaps *stepcache.Snapshots
	gate  *sched.Gate
	log   *zap.Logger
	id    string

	notifyMu sync.Mutex
	subs     []func(State)
}

type Option func(*config)

type config struct {
	clock    sched.Clock
	interval time.Duration
	log      *zap.Logger
	steps    *stepcache.Steps
	initial  analysis.Type
}

func WithClock(c sched.Clock) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithStepInterval sets the minimum spacing between accepted step
// transitions. Zero disables the limit.
func WithStepInterval(d time.Duration) Option {
	return func(cfg *config) {
		if d >= 0 {
			cfg.interval = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.log = l
		}
	}
}

func WithStepCache(s *stepcache.Steps) Option {
	return func(cfg *config) {
		if s != nil {
			cfg.steps = s
		}
	}
}

func WithInitialType(t analysis.Type) Option {
	return func(cfg *config) {
		if t.Valid() {
			cfg.initial = t
		}
	}
}

func New(gw gateway.Gateway, opts ...Option) *Controller {
	cfg := config{
		clock:    sched.RealClock(),
		interval: DefaultStepInterval,
		log:      zap.NewNop(),
		initial:  analysis.TypeFirst,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.steps == nil {
		cfg.steps = stepcache.NewSteps()
	}
	id := uuid.NewString()
	return &Controller{
		state: initialState(cfg.initial),
		gw:    gw,
		steps: cfg.steps,
		snaps: stepcache.NewSnapshots(),
		gate:  sched.NewGate(cfg.interval, cfg.clock),
		log:   cfg.log.With(zap.String("session", id)),
		id:    id,
	}
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive the state after every change. Calls
// are serialized and each delivers the state current at delivery time.
func (c *Controller) Subscribe(fn func(State)) {
	if fn == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.subs = append(c.subs, fn)
}

func (c *Controller) publish() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if len(c.subs) == 0 {
		return
	}
	st := c.Snapshot()
	for _, fn := range c.subs {
		fn(st)
	}
}

// dispatch applies e under the lock. It reports false when e was stale.
func (c *Controller) dispatch(e Event) bool {
	c.mu.Lock()
	stale := Stale(c.state, e)
	if !stale {
		c.state = Reduce(c.state, e)
	}
	c.mu.Unlock()
	if !stale {
		c.publish()
	}
	return !stale
}

// SubmitGrammar analyzes text under the current type and shows its first
// step. A blank grammar is rejected locally.
func (c *Controller) SubmitGrammar(ctx context.Context, text string) Outcome {
	norm := analysis.NormalizeGrammar(text)

	c.mu.Lock()
	gen := c.state.Generation + 1
	if norm == "" {
		c.steps.Clear()
		c.snaps.Reset()
		c.state = Reduce(c.state, GrammarCleared{Grammar: text, Gen: gen})
		c.mu.Unlock()
		c.publish()
		c.log.Debug("empty grammar submitted")
		return RejectedEmptyGrammar
	}
	if norm != c.state.Normalized() {
		c.snaps.Reset()
	}
	c.steps.Clear()
	c.state = Reduce(c.state, GrammarSubmitted{Grammar: text, Gen: gen})
	typ := c.state.Type
	c.mu.Unlock()
	c.publish()

	c.log.Debug("grammar submitted",
		zap.Uint64("gen", gen),
		zap.String("type", string(typ)),
		zap.Int("bytes", len(norm)),
	)
	return c.analyze(ctx, gen, typ, norm)
}

// ChangeAnalysisType switches tabs. The outgoing type's display is kept so
// switching back is instant; an unseen type is analyzed from scratch.
func (c *Controller) ChangeAnalysisType(ctx context.Context, t analysis.Type) Outcome {
	if !t.Valid() {
		return RejectedUnknownType
	}

	c.mu.Lock()
	s := c.state
	if t == s.Type {
		c.mu.Unlock()
		return OutcomeUnchanged
	}
	if s.Err != nil && s.Err.Category != errclass.CategoryEmptyGrammar {
		c.mu.Unlock()
		return RejectedError
	}
	if s.Phase == PhaseReady && s.Current != nil {
		c.snaps.Put(s.Type, s.Current, s.StepIndex, s.TotalSteps)
	}
	gen := s.Generation + 1
	norm := s.Normalized()

	if snap, ok := c.snaps.Get(t); ok && norm != "" {
		c.state = Reduce(c.state, SnapshotRestored{Type: t, Snapshot: snap, Gen: gen})
		c.mu.Unlock()
		c.publish()
		c.log.Debug("type restored", zap.String("type", string(t)), zap.Int("step", snap.StepIndex))
		return OutcomeRestored
	}

	c.state = Reduce(c.state, TypeSelected{Type: t, Gen: gen, Loading: norm != ""})
	c.mu.Unlock()
	c.publish()
	if norm == "" {
		return OutcomeApplied
	}
	c.log.Debug("type selected", zap.String("type", string(t)), zap.Uint64("gen", gen))
	return c.analyze(ctx, gen, t, norm)
}

// Step moves through the current type's timeline.
func (c *Controller) Step(ctx context.Context, target analysis.Target) Outcome {
	c.mu.Lock()
	s := c.state
	norm := s.Normalized()
	switch {
	case norm == "":
		c.mu.Unlock()
		return RejectedEmptyGrammar
	case s.Loading:
		c.mu.Unlock()
		return RejectedLoading
	case s.Err != nil:
		c.mu.Unlock()
		return RejectedError
	case !s.Type.Steppable():
		c.mu.Unlock()
		return RejectedNoStepping
	}
	index, ok := target.Resolve(s.StepIndex, s.TotalSteps)
	if !ok {
		c.mu.Unlock()
		return RejectedOutOfRange
	}
	at, ok := c.gate.Allow()
	if !ok {
		c.mu.Unlock()
		return RejectedRateLimited
	}

	gen := s.Generation
	if res, hit := c.steps.Get(s.Type, norm, index); hit {
		c.state = Reduce(c.state, StepLoaded{Gen: gen, Result: res, At: at})
		c.mu.Unlock()
		c.publish()
		return OutcomeFromCache
	}
	c.state = Reduce(c.state, StepRequested{Gen: gen, At: at})
	typ := s.Type
	c.mu.Unlock()
	c.publish()

	c.log.Debug("step requested",
		zap.Stringer("target", target),
		zap.Int("index", index),
		zap.Uint64("gen", gen),
	)
	res, hit, err := c.load(ctx, typ, norm, index)
	if err != nil {
		return c.fail(gen, err)
	}
	if !c.dispatch(StepLoaded{Gen: gen, Result: res, At: at}) {
		return OutcomeDiscarded
	}
	if hit {
		return OutcomeFromCache
	}
	return OutcomeApplied
}

func (c *Controller) analyze(ctx context.Context, gen uint64, typ analysis.Type, grammar string) Outcome {
	ar, err := c.gw.Analyze(ctx, grammar)
	if err != nil {
		return c.fail(gen, err)
	}
	if !c.current(gen) {
		return OutcomeDiscarded
	}
	res, _, err := c.load(ctx, typ, grammar, 0)
	if err != nil {
		return c.fail(gen, err)
	}

	transformed := ""
	if t := strings.TrimSpace(ar.TransformedGrammar); t != "" && t != grammar {
		transformed = ar.TransformedGrammar
	}
	if !c.dispatch(StepLoaded{Gen: gen, Result: res, Transformed: &transformed}) {
		c.log.Debug("stale analysis discarded", zap.Uint64("gen", gen))
		return OutcomeDiscarded
	}
	return OutcomeApplied
}

func (c *Controller) load(
	ctx context.Context,
	typ analysis.Type,
	grammar string,
	index int,
) (*analysis.StepResult, bool, error) {
	return c.steps.Load(ctx, typ, grammar, index, func(ctx context.Context) (*analysis.StepResult, error) {
		return c.gw.FetchStep(ctx, typ, grammar, index)
	})
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Generation == gen
}

func (c *Controller) fail(gen uint64, err error) Outcome {
	if errors.Is(err, context.Canceled) {
		if !c.dispatch(RequestCancelled{Gen: gen}) {
			return OutcomeDiscarded
		}
		return OutcomeCancelled
	}
	failure := errclass.FromError(err)
	if !c.dispatch(RequestFailed{Gen: gen, Failure: failure}) {
		c.log.Debug("stale failure discarded", zap.Uint64("gen", gen), zap.Error(err))
		return OutcomeDiscarded
	}
	c.log.Info("analysis request failed",
		zap.Stringer("category", failure.Category),
		zap.Error(err),
	)
	return OutcomeFailed
}
