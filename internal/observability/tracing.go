package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"task-assistant/internal/logging"
)

const traceScope = "task-assistant"

// Span names and attribute keys used across the pipeline.
const (
	SpanChatProcess = "ta.chat.process"
	SpanClassify    = "ta.classifier.classify"
	SpanExecute     = "ta.tasks.execute"

	AttrIntent    = "ta.intent"
	AttrRule      = "ta.rule"
	AttrOperation = "ta.operation"
	AttrRequestID = "ta.request_id"
	attrStatus    = "ta.status"
)

// StartSpan opens a span on the global tracer provider. Without a
// configured provider the span is a no-op.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if id := logging.RequestID(ctx); id != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, id))
	}
	return otel.Tracer(traceScope).Start(ctx, name, trace.WithAttributes(attrs...))
}

// MarkSpanResult records err, or success when err is nil.
func MarkSpanResult(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(attrStatus, "error"))
		return
	}
	span.SetStatus(codes.Ok, "")
	span.SetAttributes(attribute.String(attrStatus, "success"))
}
