package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestStartToolSpan(t *testing.T) {
	rec := newRecorder(t)

	ctx, span := StartToolSpan(context.Background(), "gmail_send_email")
	if GetTraceID(ctx) == "" {
		t.Error("expected a trace ID inside the span")
	}
	SetSpanSuccess(span)
	span.End()

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "tool.gmail_send_email" {
		t.Errorf("name = %q", s.Name())
	}
	if s.SpanKind() != trace.SpanKindServer {
		t.Errorf("kind = %v, want server", s.SpanKind())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}
}

func TestTrackGoogleAPI(t *testing.T) {
	rec := newRecorder(t)
	m, reader := newTestMetrics(t, false)
	boom := errors.New("quota exceeded")

	err := TrackGoogleAPI(context.Background(), m, ServiceDrive, OperationSearch, func(ctx context.Context) error {
		if GetTraceID(ctx) == "" {
			t.Error("fn must run inside the span")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("TrackGoogleAPI() error = %v, want %v", err, boom)
	}

	spans := rec.Ended()
	if len(spans) != 1 || spans[0].Name() != "google.drive.search" {
		t.Fatalf("unexpected spans: %v", spans)
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status().Code)
	}
	if spans[0].SpanKind() != trace.SpanKindClient {
		t.Errorf("kind = %v, want client", spans[0].SpanKind())
	}

	points := sumPoints(t, reader, "google_api_operations_total")
	if got := attrValue(points[0].Attributes, attrStatus); got != StatusError {
		t.Errorf("status label = %q, want %q", got, StatusError)
	}
}

func TestTrackGoogleAPI_NilMetrics(t *testing.T) {
	called := false
	err := TrackGoogleAPI(context.Background(), nil, ServiceSheets, OperationAppend, func(context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Errorf("err = %v, called = %v", err, called)
	}
}

func TestSetSpanError_Nil(t *testing.T) {
	rec := newRecorder(t)
	_, span := StartGoogleAPISpan(context.Background(), ServiceGmail, OperationSend)
	SetSpanError(span, nil)
	span.End()

	if got := rec.Ended()[0].Status().Code; got != codes.Unset {
		t.Errorf("status = %v, want Unset", got)
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if got := GetTraceID(context.Background()); got != "" {
		t.Errorf("GetTraceID() = %q, want empty", got)
	}
}
