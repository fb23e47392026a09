package telemetry

import (
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/grammarviz/internal/errdef"
)

const (
	attrOperation    = attribute.Key("grammarviz.operation")
	attrRequestID    = attribute.Key("grammarviz.request.id")
	attrAnalysisType = attribute.Key("grammarviz.analysis.type")
	attrStepIndex    = attribute.Key("grammarviz.step.index")
	attrStepTotal    = attribute.Key("grammarviz.step.total")
	attrGrammarBytes = attribute.Key("grammarviz.grammar.bytes")
	attrElapsedMS    = attribute.Key("grammarviz.duration_ms")
	attrErrorCode    = attribute.Key("grammarviz.error.code")
	attrHost         = attribute.Key("http.host")
)

// Call describes one request to the analysis service. AnalysisType is empty
// for analyze calls, which carry no step.
type Call struct {
	Operation    string
	Method       string
	URL          *url.URL
	RequestID    string
	AnalysisType string
	StepIndex    int
	GrammarBytes int
}

type Outcome struct {
	Err        error
	StatusCode int
	TotalSteps int
	Elapsed    time.Duration
}

func (c Call) spanName() string {
	if c.Operation != "" {
		return "grammar." + c.Operation
	}
	if c.URL != nil {
		return c.Method + " " + c.URL.Path
	}
	return "grammar.request"
}

func (c Call) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{attrOperation.String(c.Operation)}
	if c.Method != "" {
		attrs = append(attrs, semconv.HTTPMethodKey.String(c.Method))
	}
	if u := c.URL; u != nil {
		if u.Scheme != "" {
			attrs = append(attrs, semconv.HTTPSchemeKey.String(u.Scheme))
		}
		if u.Host != "" {
			attrs = append(attrs, attrHost.String(u.Host))
		}
		attrs = append(attrs, semconv.HTTPTargetKey.String(u.RequestURI()))
	}
	if c.RequestID != "" {
		attrs = append(attrs, attrRequestID.String(c.RequestID))
	}
	if c.AnalysisType != "" {
		attrs = append(attrs, attrAnalysisType.String(c.AnalysisType), attrStepIndex.Int(c.StepIndex))
	}
	if c.GrammarBytes > 0 {
		attrs = append(attrs, attrGrammarBytes.Int(c.GrammarBytes))
	}
	return attrs
}

type callSpan struct {
	span trace.Span
}

func (s callSpan) End(out Outcome) {
	if out.StatusCode > 0 {
		s.span.SetAttributes(semconv.HTTPStatusCodeKey.Int(out.StatusCode))
	}
	if out.TotalSteps > 0 {
		s.span.SetAttributes(attrStepTotal.Int(out.TotalSteps))
	}
	if out.Elapsed > 0 {
		s.span.SetAttributes(attrElapsedMS.Int64(out.Elapsed.Milliseconds()))
	}
	switch {
	case out.Err != nil:
		s.span.RecordError(out.Err)
		s.span.SetAttributes(attrErrorCode.String(string(errdef.CodeOf(out.Err))))
		s.span.SetStatus(codes.Error, out.Err.Error())
	case out.StatusCode >= 400:
		s.span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", out.StatusCode))
	default:
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
