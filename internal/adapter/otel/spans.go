// Package otel provides OpenTelemetry span helpers, metric instruments, and
// exporter setup for the AppLoom generation core.
package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "apploom"

// StartSessionSpan starts a span covering one generation session.
func StartSessionSpan(ctx context.Context, sessionID, docID, orgID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "session",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("doc.id", docID),
			attribute.String("organization.id", orgID),
		),
	)
}

// StartToolCallSpan starts a span for a single tool invocation.
func StartToolCallSpan(ctx context.Context, callID, tool string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "toolcall",
		trace.WithAttributes(
			attribute.String("toolcall.id", callID),
			attribute.String("toolcall.tool", tool),
		),
	)
}
