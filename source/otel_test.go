package source

import (
	"context"
	"testing"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestWithTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	f := WithTracing(NewMemory(map[string]string{"a": "1"}), tp.Tracer("test"), "memory")

	val, err := f.GetParameter(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "1", val)

	_, err = f.GetParameter(context.Background(), "missing")
	assert.True(t, cache.IsNotFound(err))

	spans := sr.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "paramcache.fetch", ok.Name())
	assert.Equal(t, trace.SpanKindClient, ok.SpanKind())
	assert.Equal(t, codes.Ok, ok.Status().Code)
	name, found := spanAttr(ok, "parameter.name")
	require.True(t, found)
	assert.Equal(t, "a", name.AsString())
	src, found := spanAttr(ok, "parameter.source")
	require.True(t, found)
	assert.Equal(t, "memory", src.AsString())

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
	notFound, found := spanAttr(failed, "parameter.not_found")
	require.True(t, found)
	assert.True(t, notFound.AsBool())
	assert.NotEmpty(t, failed.Events())
}
