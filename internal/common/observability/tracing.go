package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"move-improve-workers/internal/common/config"
	apperrors "move-improve-workers/internal/common/errors"
)

const tracerName = "move-improve-workers"

// InitTracing installs a global tracer provider exporting over OTLP/HTTP.
// With tracing disabled it installs nothing and the returned shutdown is a
// no-op; spans then go to the default non-recording provider.
func InitTracing(ctx context.Context, cfg config.TracingConfig, serviceName string) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

// StartJobSpan opens the span covering one Zeebe job.
func StartJobSpan(ctx context.Context, taskType string, jobKey, processInstanceKey int64) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, taskType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("job.type", taskType),
			attribute.Int64("job.key", jobKey),
			attribute.Int64("process.instance_key", processInstanceKey),
		),
	)
}

// EndJobSpan records err, if any, with its error code and ends the span.
func EndJobSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.code", string(apperrors.CodeOf(err))))
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
