package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordedTracer(t *testing.T) (*TraceLayer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewTraceLayer(tp.Tracer("test")), recorder
}

func TestTraceLayerSpanNames(t *testing.T) {
	layer, recorder := recordedTracer(t)
	ctx := context.Background()

	_, span := layer.TraceRepositoryMethod(ctx, "List", "blogs")
	span.End()
	_, span = layer.TraceRedisOperation(ctx, "get")
	span.End()
	_, span = layer.TraceStorageOperation(ctx, "put", "blog-images/abc.jpg")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "repository.List", spans[0].Name())
	assert.Equal(t, "redis.get", spans[1].Name())
	assert.Equal(t, "storage.put", spans[2].Name())
}

func TestTraceRepositoryMethodAttributes(t *testing.T) {
	layer, recorder := recordedTracer(t)

	_, span := layer.TraceRepositoryMethod(context.Background(), "GetByID", "blogs")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String("db.operation", "GetByID"))
	assert.Contains(t, attrs, attribute.String("db.table", "blogs"))
}

func TestSpanWrapperRecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	orig := Tracer
	Tracer = tp.Tracer("test")
	t.Cleanup(func() { Tracer = orig })

	span, _ := NewSpan(context.Background(), "work")
	span.SetError(errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "work", spans[0].Name())
	require.Len(t, spans[0].Events(), 1)
}
