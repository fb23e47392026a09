// Package stepcache memoizes analysis steps per (type, grammar, index) and
// keeps the last displayed result of every analysis type.
package stepcache

import (
	"container/list"
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
)

type Key struct {
	Type    analysis.Type
	Grammar string
	Index   int
}

func NewKey(t analysis.Type, grammar string, index int) Key {
	return Key{Type: t, Grammar: analysis.NormalizeGrammar(grammar), Index: index}
}

func (k Key) flight() string {
	return string(k.Type) + "\x00" + strconv.Itoa(k.Index) + "\x00" + k.Grammar
}

type entry struct {
	key Key
	res *analysis.StepResult
}

// Steps is safe for concurrent use. Without a limit it grows for the life of
// the session; entries for an edited grammar are simply never looked up
// again.
type Steps struct {
	mu      sync.Mutex
	limit   int
	order   *list.List
	entries map[Key]*list.Element
	group   singleflight.Group
}

type Option func(*Steps)

// WithLimit bounds the cache to n entries, evicting the least recently used.
// n <= 0 means unbounded.
func WithLimit(n int) Option {
	return func(s *Steps) {
		if n > 0 {
			s.limit = n
		}
	}
}

func NewSteps(opts ...Option) *Steps {
	s := &Steps{
		order:   list.New(),
		entries: make(map[Key]*list.Element),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Steps) Get(t analysis.Type, grammar string, index int) (*analysis.StepResult, bool) {
	return s.get(NewKey(t, grammar, index))
}

func (s *Steps) get(key Key) (*analysis.StepResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	return el.Value.(*entry).res, true
}

func (s *Steps) Put(t analysis.Type, grammar string, index int, res *analysis.StepResult) {
	if res == nil {
		return
	}
	s.put(NewKey(t, grammar, index), res)
}

func (s *Steps) put(key Key, res *analysis.StepResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[key]; ok {
		el.Value.(*entry).res = res
		s.order.MoveToFront(el)
		return
	}
	s.entries[key] = s.order.PushFront(&entry{key: key, res: res})
	for s.limit > 0 && s.order.Len() > s.limit {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*entry).key)
	}
}

// Load returns the cached step or calls fetch once for concurrent callers
// asking for the same key. The fetched result is stored under the requested
// index and, when the service clamped the request, under the index it
// reports as well. hit is true when no fetch was needed.
func (s *Steps) Load(
	ctx context.Context,
	t analysis.Type,
	grammar string,
	index int,
	fetch func(context.Context) (*analysis.StepResult, error),
) (res *analysis.StepResult, hit bool, err error) {
	key := NewKey(t, grammar, index)
	if res, ok := s.get(key); ok {
		return res, true, nil
	}
	v, err, _ := s.group.Do(key.flight(), func() (any, error) {
		if res, ok := s.get(key); ok {
			return res, nil
		}
		res, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = &analysis.StepResult{}
		}
		s.put(key, res)
		if res.StepIndex != index {
			s.put(NewKey(t, grammar, res.StepIndex), res)
		}
		return res, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*analysis.StepResult), false, nil
}

func (s *Steps) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Init()
	s.entries = make(map[Key]*list.Element)
}

func (s *Steps) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
