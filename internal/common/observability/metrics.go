package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"move-improve-workers/internal/common/logger"
)

// Observability records job outcomes through an OpenTelemetry meter that is
// exported on the Prometheus registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	decisionIndex otelmetric.Float64Histogram
}

// New builds the meter. Failing to create the exporter is logged and yields
// an Observability whose recorders do nothing.
func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{}
	}
	return newWithReader(serviceName, exporter)
}

func newWithReader(serviceName string, reader metric.Reader) *Observability {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	decisionIndex, _ := meter.Float64Histogram(
		"scoring.decision_index",
		otelmetric.WithDescription("Decision index of computed score results"),
	)

	return &Observability{
		meterProvider: provider,
		jobCounter:    jobCounter,
		jobDuration:   jobDuration,
		decisionIndex: decisionIndex,
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

// RecordDecisionIndex observes one computed decision index, tagged with the
// decision it produced.
func (o *Observability) RecordDecisionIndex(ctx context.Context, index float64, decision string) {
	if o == nil || o.decisionIndex == nil {
		return
	}
	o.decisionIndex.Record(ctx, index, otelmetric.WithAttributes(
		attribute.String("decision", decision),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
