package httpapi

import (
	"context"

	"github.com/riskibarqy/hockey-predictor/internal/domain/user"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("hockey-predictor/internal/interfaces/httpapi")

// startSpan opens a child span for a handler. Requests the tracing middleware
// filtered out have no parent and get no span either.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return apiTracer.Start(ctx, name)
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}
