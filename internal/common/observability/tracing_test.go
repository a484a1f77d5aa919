package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"move-improve-workers/internal/common/config"
	apperrors "move-improve-workers/internal/common/errors"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func attrs(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestJobSpan_Success(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartJobSpan(context.Background(), "compute-score", 42, 420)
	EndJobSpan(span, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "compute-score", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	a := attrs(spans[0].Attributes())
	assert.Equal(t, int64(42), a["job.key"].AsInt64())
	assert.Equal(t, int64(420), a["process.instance_key"].AsInt64())
}

func TestJobSpan_Error(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartJobSpan(context.Background(), "render-report", 7, 70)
	EndJobSpan(span, apperrors.NewResultNotFoundError("s-1"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "RESULT_NOT_FOUND", attrs(spans[0].Attributes())["error.code"].AsString())
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := InitTracing(context.Background(), config.TracingConfig{
		Enabled:     true,
		Endpoint:    "127.0.0.1:4318",
		Insecure:    true,
		SampleRatio: 1,
	}, "test")
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)
	assert.NoError(t, shutdown(context.Background()))
}
