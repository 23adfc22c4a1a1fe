package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ScanMeta identifies a detector instance for telemetry purposes.
type ScanMeta struct {
	Detector string // detector name (required)
	Store    string // backing store kind, e.g. memory or badger (optional)
}

// SpanName returns the deterministic span name for this detector.
// Format: dna.scan.<detector>
func (m ScanMeta) SpanName() string {
	return "dna.scan." + m.Detector
}

// Tracer wraps OpenTelemetry tracing with scan-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a grid scan.
	StartSpan(ctx context.Context, meta ScanMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with detector metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta ScanMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("detector.name", meta.Detector),
		attribute.Bool("scan.error", false), // Updated in EndSpan on error
	}
	if meta.Store != "" {
		attrs = append(attrs, attribute.String("store.kind", meta.Store))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("scan.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ScanMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
