package source

import (
	"context"

	"github.com/agentuity/go-paramcache/cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/agentuity/go-paramcache/source"

type tracing struct {
	next   cache.Fetcher
	tracer trace.Tracer
	source string
}

// WithTracing returns a Fetcher that records a span around each call to next.
// A nil tracer uses the global tracer provider.
func WithTracing(next cache.Fetcher, tracer trace.Tracer, sourceName string) cache.Fetcher {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &tracing{next: next, tracer: tracer, source: sourceName}
}

func (t *tracing) GetParameter(ctx context.Context, name string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "paramcache.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("parameter.name", name),
			attribute.String("parameter.source", t.source),
		),
	)
	defer span.End()

	val, err := t.next.GetParameter(ctx, name)
	if err != nil {
		span.SetAttributes(attribute.Bool("parameter.not_found", cache.IsNotFound(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetStatus(codes.Ok, "")
	return val, nil
}
