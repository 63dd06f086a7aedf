package instrumentation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for gapidemo spans.
const TracerName = "github.com/teemow/gapidemo"

// Span attribute keys.
const (
	SpanAttrTool      = "mcp.tool"
	SpanAttrAccount   = "mcp.account"
	SpanAttrReadOnly  = "mcp.read_only"
	SpanAttrService   = "google.service"
	SpanAttrOperation = "google.operation"
)

// StartToolSpan starts a server span named tool.<name>.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return otel.Tracer(TracerName).Start(ctx, "tool."+toolName,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartGoogleAPISpan starts a client span named google.<service>.<operation>.
func StartGoogleAPISpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "google."+service+"."+operation,
		trace.WithAttributes(
			attribute.String(SpanAttrService, service),
			attribute.String(SpanAttrOperation, operation),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records err on the span and marks it failed. A nil err is ignored.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks the span OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID of the span in ctx, or "".
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// TrackGoogleAPI runs fn inside a Google API span and records its duration
// and status on m.
func TrackGoogleAPI(ctx context.Context, m *Metrics, service, operation string, fn func(ctx context.Context) error) error {
	ctx, span := StartGoogleAPISpan(ctx, service, operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	m.RecordGoogleAPIOperation(ctx, service, operation, StatusOf(err), time.Since(start))

	if err != nil {
		SetSpanError(span, err)
	} else {
		SetSpanSuccess(span)
	}
	return err
}
