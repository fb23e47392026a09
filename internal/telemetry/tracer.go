package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/unkn0wn-root/grammarviz/internal/telemetry"

// Tracer opens one span per analysis service call.
type Tracer interface {
	StartCall(ctx context.Context, call Call) (context.Context, Span)
	Shutdown(ctx context.Context) error
}

type Span interface {
	End(out Outcome)
}

type Option func(*setup)

type setup struct {
	exporter   sdktrace.SpanExporter
	processors []sdktrace.SpanProcessor
}

// WithSpanProcessor attaches proc synchronously. Tests use it with a
// tracetest.SpanRecorder.
func WithSpanProcessor(proc sdktrace.SpanProcessor) Option {
	return func(s *setup) {
		if proc != nil {
			s.processors = append(s.processors, proc)
		}
	}
}

// WithExporter replaces the OTLP exporter built from Config.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(s *setup) { s.exporter = exp }
}

// New returns a no-op tracer unless cfg names an endpoint or an option
// supplies somewhere to send spans.
func New(cfg Config, opts ...Option) (Tracer, error) {
	var s setup
	for _, opt := range opts {
		opt(&s)
	}
	if !cfg.Enabled() && s.exporter == nil && len(s.processors) == 0 {
		return Noop(), nil
	}

	res, err := resource.New(context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(serviceAttributes(cfg)...),
	)
	if err != nil {
		return nil, err
	}
	if s.exporter == nil && cfg.Enabled() {
		if s.exporter, err = dialExporter(cfg); err != nil {
			return nil, err
		}
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.sampleRatio()))),
	}
	if s.exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(s.exporter))
	}
	for _, p := range s.processors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(p))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &otelTracer{provider: tp, tracer: tp.Tracer(scopeName)}, nil
}

type otelTracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	once     sync.Once
	err      error
}

func (t *otelTracer) StartCall(ctx context.Context, call Call) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, call.spanName(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(call.attributes()...),
	)
	return ctx, callSpan{span: span}
}

// Shutdown flushes pending spans once; later calls return the first result.
func (t *otelTracer) Shutdown(ctx context.Context) error {
	t.once.Do(func() { t.err = t.provider.Shutdown(ctx) })
	return t.err
}

func dialExporter(cfg Config) (sdktrace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("telemetry endpoint is required")
	}
	wait := cfg.DialTimeout
	if wait <= 0 {
		wait = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		grpcOpts = append(grpcOpts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	return otlptrace.New(ctx, otlptracegrpc.NewClient(grpcOpts...))
}

func serviceAttributes(cfg Config) []attribute.KeyValue {
	name := cfg.ServiceName
	if name == "" {
		name = DefaultServiceName
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(name)}
	if cfg.Version != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}
	return attrs
}

func Noop() Tracer { return noopTracer{} }

type noopTracer struct{}

func (noopTracer) StartCall(ctx context.Context, _ Call) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (noopTracer) Shutdown(context.Context) error { return nil }

type noopSpan struct{}

func (noopSpan) End(Outcome) {}
