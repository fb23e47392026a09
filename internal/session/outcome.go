package session

// Outcome reports what a controller call did. Rejections leave the state
// untouched.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeFromCache
	OutcomeRestored
	OutcomeUnchanged
	OutcomeDiscarded
	OutcomeFailed
	OutcomeCancelled
	RejectedEmptyGrammar
	RejectedLoading
	RejectedError
	RejectedRateLimited
	RejectedOutOfRange
	RejectedNoStepping
	RejectedUnknownType
)

var outcomeNames = map[Outcome]string{
	OutcomeApplied:       "applied",
	OutcomeFromCache:     "from-cache",
	OutcomeRestored:      "restored",
	OutcomeUnchanged:     "unchanged",
	OutcomeDiscarded:     "discarded",
	OutcomeFailed:        "failed",
	OutcomeCancelled:     "cancelled",
	RejectedEmptyGrammar: "empty-grammar",
	RejectedLoading:      "busy",
	RejectedError:        "error-locked",
	RejectedRateLimited:  "rate-limited",
	RejectedOutOfRange:   "out-of-range",
	RejectedNoStepping:   "no-stepping",
	RejectedUnknownType:  "unknown-type",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Accepted reports whether the call changed what is displayed.
func (o Outcome) Accepted() bool {
	switch o {
	case OutcomeApplied, OutcomeFromCache, OutcomeRestored:
		return true
	}
	return false
}

func (o Outcome) Rejected() bool {
	return o >= RejectedEmptyGrammar
}
