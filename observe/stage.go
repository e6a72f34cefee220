package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Pipeline stage names.
const (
	StageImage    = "validate_image"
	StageInput    = "validate_input"
	StageLimit    = "rate_limit"
	StageEnv      = "env_check"
	StageCache    = "cache"
	StageGenerate = "generate"
	StageResponse = "validate_response"
	StageAnalyze  = "analyze"
)

// StageMeta describes one pipeline stage for telemetry.
type StageMeta struct {
	Name      string // stage name (required)
	Component string // package that implements the stage (optional)

	// Identity is the request identity. It is logged but never used as a
	// metric attribute.
	Identity string
}

// SpanName returns recipeguard.<stage>.
func (m StageMeta) SpanName() string {
	return "recipeguard." + m.Name
}

// Validate reports whether the metadata can be recorded.
func (m StageMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingStageName
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with stage spans.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	StartSpan(ctx context.Context, meta StageMeta) (context.Context, trace.Span)
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer. A nil tracer yields a no-op.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		t = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta StageMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("stage.name", meta.Name),
		attribute.Bool("stage.error", false),
	}
	if meta.Component != "" {
		attrs = append(attrs, attribute.String("stage.component", meta.Component))
	}
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("stage.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
