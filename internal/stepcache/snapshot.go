package stepcache

import (
	"sync"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
)

// Snapshot is what was on screen for an analysis type when the user left it.
type Snapshot struct {
	Result     *analysis.StepResult
	StepIndex  int
	TotalSteps int
}

// Snapshots holds at most one Snapshot per analysis type.
type Snapshots struct {
	mu    sync.Mutex
	items map[analysis.Type]Snapshot
}

func NewSnapshots() *Snapshots {
	return &Snapshots{items: make(map[analysis.Type]Snapshot, len(analysis.Types))}
}

func (s *Snapshots) Get(t analysis.Type) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.items[t]
	return snap, ok
}

// Put overwrites the snapshot for t. A nil result is ignored.
func (s *Snapshots) Put(t analysis.Type, res *analysis.StepResult, stepIndex, totalSteps int) {
	if res == nil || !t.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[t] = Snapshot{Result: res, StepIndex: stepIndex, TotalSteps: totalSteps}
}

func (s *Snapshots) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.items)
}

func (s *Snapshots) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
