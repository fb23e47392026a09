package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
)

// Gateway is the boundary to the remote analysis service. Both calls are
// idempotent; callers decide whether to retry.
type Gateway interface {
	Analyze(ctx context.Context, grammar string) (AnalyzeResult, error)
	FetchStep(ctx context.Context, t analysis.Type, grammar string, index int) (*analysis.StepResult, error)
}

// AnalyzeResult is the part of the analyze response the session uses.
type AnalyzeResult struct {
	TransformedGrammar string
	LL1                bool
	Rules              []string
}

// RemoteError is a structured rejection from the service. Errors may be
// empty when the body carried an empty list.
type RemoteError struct {
	Status int
	Errors []string
}

func (e *RemoteError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Errors) == 0 {
		return fmt.Sprintf("analysis service rejected request (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("analysis service: %s", strings.Join(e.Errors, "; "))
}
