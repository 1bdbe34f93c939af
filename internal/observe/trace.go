package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for the agent's tracer.
const tracerName = "github.com/in2theCODE/MyCODEagent"

// Tracer returns the agent's [trace.Tracer] from the globally registered
// [trace.TracerProvider].
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span named after a pipeline stage, such as
// "session.utterance" or "session.command". The caller must call span.End()
// when the stage finishes.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// CorrelationID returns the trace ID of the active span in ctx, or the empty
// string when there is none. The HTTP middleware echoes it back to clients as
// X-Correlation-ID.
func CorrelationID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// Logger returns an [slog.Logger] carrying the trace_id and span_id of the
// active span in ctx, so a log line written while handling an utterance can
// be matched to its trace. Without an active span it is just slog.Default.
func Logger(ctx context.Context) *slog.Logger {
	l := slog.Default()
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		l = l.With(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}
