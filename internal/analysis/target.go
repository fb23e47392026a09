package analysis

import "fmt"

// ResultSentinel is sent to the service when the last step is requested
// before the timeline length is known; the service clamps it.
const ResultSentinel = 9999

type TargetKind int

const (
	TargetIndex TargetKind = iota
	TargetPrev
	TargetNext
	TargetReset
	TargetResult
)

type Target struct {
	Kind  TargetKind
	Index int
}

func Prev() Target { return Target{Kind: TargetPrev} }
func Next() Target { return Target{Kind: TargetNext} }
func Reset() Target { return Target{Kind: TargetReset} }
func Result() Target { return Target{Kind: TargetResult} }
func Index(n int) Target { return Target{Kind: TargetIndex, Index: n} }

func (t Target) String() string {
	switch t.Kind {
	case TargetPrev:
		return "PREV"
	case TargetNext:
		return "NEXT"
	case TargetReset:
		return "RESET"
	case TargetResult:
		return "RESULT"
	default:
		return fmt.Sprintf("STEP %d", t.Index)
	}
}

// Resolve maps a target onto a concrete step index given the current
// position. total is zero while the timeline length is unknown. ok is false
// when the target falls outside the timeline.
func (t Target) Resolve(current, total int) (int, bool) {
	last := total - 1
	switch t.Kind {
	case TargetPrev:
		if current-1 < 0 {
			return 0, false
		}
		return current - 1, true
	case TargetNext:
		if total > 0 && current+1 > last {
			return 0, false
		}
		return current + 1, true
	case TargetReset:
		return 0, true
	case TargetResult:
		if total > 0 {
			return last, true
		}
		return ResultSentinel, true
	default:
		if t.Index < 0 {
			return 0, false
		}
		if total > 0 && t.Index > last {
			return last, true
		}
		return t.Index, true
	}
}
