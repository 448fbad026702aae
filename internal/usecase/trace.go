package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("hockey-predictor/internal/usecase")

// startUsecaseSpan only creates child spans. Background work without a
// traced parent, such as settler sweeps, stays untraced.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
