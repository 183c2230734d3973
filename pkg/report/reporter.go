package report

import (
	"context"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// InstrumentationName is the default scope name of everything the reporter emits.
const InstrumentationName = "otk.kto"

// Reporter emits synthetic telemetry to an OTLP receiver.
type Reporter interface {
	// ReportTraces returns the hex trace ids of the emitted spans.
	ReportTraces(ctx context.Context, opts TraceOptions) ([]string, error)
	// ReportMetrics returns the number of recorded measurements.
	ReportMetrics(ctx context.Context, opts MetricOptions) (int, error)
	// ReportLogs returns the number of emitted records.
	ReportLogs(ctx context.Context, opts LogOptions) (int, error)
}

type ReporterImpl struct {
	logger *zap.Logger
}

func NewReporterImpl(logger *zap.Logger) *ReporterImpl {
	return &ReporterImpl{logger: logger}
}

func newResource(tags []KeyValue) *resource.Resource {
	return resource.NewSchemaless(toAttributes(tags)...)
}

// newLimiter paces batches at perSecond items per second. Zero means unlimited.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func attributeSet(kvs []KeyValue) attribute.Set {
	return attribute.NewSet(toAttributes(kvs)...)
}
