package ctxmeta_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Gunvolt24/voltcart/pkg/ctxmeta"
)

func TestRequestID(t *testing.T) {
	parent := context.Background()
	ctx := ctxmeta.WithRequestID(parent, "req-123")

	id, ok := ctxmeta.RequestIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "req-123", id)

	_, ok = ctxmeta.RequestIDFromContext(parent)
	assert.False(t, ok, "parent must stay clean")

	assert.Equal(t, parent, ctxmeta.WithRequestID(parent, ""), "empty id is a no-op")

	var nilCtx context.Context
	assert.Nil(t, ctxmeta.WithRequestID(nilCtx, "req-1"))
	_, ok = ctxmeta.RequestIDFromContext(nilCtx)
	assert.False(t, ok)
}

func TestRequestID_ForeignKeyIgnored(t *testing.T) {
	ctx := context.WithValue(context.Background(), "request_id", "req-xyz") //nolint:staticcheck // проверяем именно строковый ключ
	_, ok := ctxmeta.RequestIDFromContext(ctx)
	assert.False(t, ok)
}

func TestTraceAndSpanIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "order.place")
	defer span.End()

	traceID, ok := ctxmeta.TraceIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	spanID, ok := ctxmeta.SpanIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, span.SpanContext().SpanID().String(), spanID)

	_, ok = ctxmeta.TraceIDFromContext(context.Background())
	assert.False(t, ok, "no span, no trace id")
}
