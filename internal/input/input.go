package input

import (
	"strings"
	"sync"
	"time"

	"github.com/unkn0wn-root/grammarviz/internal/sched"
)

const DefaultDebounce = 500 * time.Millisecond

// Shorthand is a TeX command the editor rewrites while typing.
type Shorthand struct {
	Command string
	Text    string
}

var Shorthands = []Shorthand{
	{Command: `\eps`, Text: "epsilon"},
	{Command: `\to`, Text: "->"},
	{Command: `\mid`, Text: "|"},
}

var shorthands = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(Shorthands))
	for _, sh := range Shorthands {
		pairs = append(pairs, sh.Command, sh.Text)
	}
	return strings.NewReplacer(pairs...)
}()

// Normalize expands the TeX shorthands accepted in the grammar editor.
func Normalize(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	return shorthands.Replace(raw)
}

// Input holds the locally edited grammar and forwards it to commit once
// typing has paused.
type Input struct {
	mu       sync.Mutex
	value    string
	commit   func(string)
	debounce *sched.Debouncer
}

type Option func(*options)

type options struct {
	delay time.Duration
	clock sched.Clock
}

func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.delay = d
		}
	}
}

func WithClock(c sched.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func New(commit func(string), opts ...Option) *Input {
	o := options{delay: DefaultDebounce, clock: sched.RealClock()}
	for _, opt := range opts {
		opt(&o)
	}
	if commit == nil {
		commit = func(string) {}
	}
	return &Input{
		commit:   commit,
		debounce: sched.NewDebouncer(o.delay, o.clock),
	}
}

// Change records an edit and re-arms the pending commit. The normalized
// text is returned so the editor can reflect expanded shorthands.
func (in *Input) Change(raw string) string {
	val := Normalize(raw)
	in.mu.Lock()
	in.value = val
	in.mu.Unlock()
	in.debounce.Trigger(func() { in.commit(val) })
	return val
}

// Replace sets the value and commits without waiting, as when the grammar
// is loaded from a file.
func (in *Input) Replace(text string) string {
	val := Normalize(text)
	in.debounce.Cancel()
	in.mu.Lock()
	in.value = val
	in.mu.Unlock()
	in.commit(val)
	return val
}

// Flush commits a pending edit immediately. It reports false when nothing
// was pending.
func (in *Input) Flush() bool {
	if !in.debounce.Cancel() {
		return false
	}
	in.commit(in.Value())
	return true
}

func (in *Input) Value() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.value
}

func (in *Input) Pending() bool {
	return in.debounce.Pending()
}

// Close drops a pending commit. Later edits are not committed.
func (in *Input) Close() {
	in.debounce.Close()
}
