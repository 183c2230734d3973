package report

import (
	"context"
	"errors"
	"fmt"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkMetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
	"google.golang.org/grpc/credentials"
	"strconv"
	"strings"
	"time"
)

const DefaultMetricName = "otk_test_metric"

var DefaultHistogramBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90}

type DataType int

const (
	DataTypeInt64 DataType = iota
	DataTypeFloat64
)

func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(s) {
	case "i64", "int64", "int":
		return DataTypeInt64, nil
	case "f64", "float64", "double":
		return DataTypeFloat64, nil
	}
	return DataTypeInt64, fmt.Errorf("unknown data type %q (expect i64 or f64)", s)
}

type InstrumentKind int

const (
	InstrumentCounter InstrumentKind = iota
	InstrumentUpDownCounter
	InstrumentHistogram
	InstrumentGauge
)

func ParseInstrumentKind(s string) (InstrumentKind, error) {
	switch strings.ToLower(s) {
	case "counter":
		return InstrumentCounter, nil
	case "updown", "up_down_counter":
		return InstrumentUpDownCounter, nil
	case "histogram":
		return InstrumentHistogram, nil
	case "gauge":
		return InstrumentGauge, nil
	}
	return InstrumentCounter, fmt.Errorf("unknown metric type %q (expect counter, updown, histogram or gauge)", s)
}

type MetricOptions struct {
	Endpoint     Endpoint
	ResourceTags []KeyValue
	LibraryName  string
	DataType     DataType
	Kind         InstrumentKind
	Name         string
	// Values are recorded in order, Times times over.
	Values     []string
	Times      int
	Attributes []KeyValue
	Buckets    []float64
	// Wait is how long to keep the provider alive after the last measurement.
	Wait time.Duration
}

var errNegativeCounter = errors.New("counter values must not be negative")

func (r *ReporterImpl) ReportMetrics(ctx context.Context, opts MetricOptions) (int, error) {
	if err := opts.Endpoint.Validate(); err != nil {
		return 0, err
	}
	name := opts.Name
	if name == "" {
		name = DefaultMetricName
	}
	library := opts.LibraryName
	if library == "" {
		library = InstrumentationName
	}
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = DefaultHistogramBuckets
	}
	values := make([]string, 0, len(opts.Values)*max(opts.Times, 1))
	for i := 0; i < max(opts.Times, 1); i++ {
		values = append(values, opts.Values...)
	}

	exporter, err := newMetricExporter(ctx, opts.Endpoint)
	if err != nil {
		return 0, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	mp := sdkMetric.NewMeterProvider(
		sdkMetric.WithReader(sdkMetric.NewPeriodicReader(exporter, sdkMetric.WithInterval(100*time.Millisecond))),
		sdkMetric.WithResource(newResource(opts.ResourceTags)),
	)
	meter := mp.Meter(library)
	attrs := metric.WithAttributeSet(attributeSet(opts.Attributes))

	var recorded int
	switch opts.DataType {
	case DataTypeFloat64:
		recorded, err = recordValues(ctx, values, opts.Kind, parseFloat, func(kind InstrumentKind) (func(context.Context, float64), error) {
			return float64Recorder(meter, kind, name, buckets, attrs)
		})
	default:
		recorded, err = recordValues(ctx, values, opts.Kind, parseInt, func(kind InstrumentKind) (func(context.Context, int64), error) {
			return int64Recorder(meter, kind, name, buckets, attrs)
		})
	}
	if err != nil {
		_ = mp.Shutdown(context.Background())
		return 0, err
	}

	select {
	case <-time.After(opts.Wait):
	case <-ctx.Done():
	}
	if err := mp.Shutdown(ctx); err != nil {
		return recorded, fmt.Errorf("failed to flush metrics: %w", err)
	}
	r.logger.Info("Reported metric",
		zap.String("name", name),
		zap.Int("measurements", recorded),
		zap.String("endpoint", opts.Endpoint.Address()),
	)
	return recorded, nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// recordValues parses every value before recording any of them so that a bad
// value does not leave a partial export behind.
func recordValues[N int64 | float64](
	ctx context.Context,
	raw []string,
	kind InstrumentKind,
	parse func(string) (N, error),
	newRecorder func(InstrumentKind) (func(context.Context, N), error),
) (int, error) {
	values := make([]N, len(raw))
	for i, s := range raw {
		v, err := parse(s)
		if err != nil {
			return 0, fmt.Errorf("parse metric value %q failed: %w", s, err)
		}
		if kind == InstrumentCounter && v < 0 {
			return 0, fmt.Errorf("%s: %w", s, errNegativeCounter)
		}
		values[i] = v
	}
	record, err := newRecorder(kind)
	if err != nil {
		return 0, fmt.Errorf("failed to create instrument: %w", err)
	}
	for _, v := range values {
		record(ctx, v)
	}
	return len(values), nil
}

func int64Recorder(
	meter metric.Meter,
	kind InstrumentKind,
	name string,
	buckets []float64,
	attrs metric.MeasurementOption,
) (func(context.Context, int64), error) {
	switch kind {
	case InstrumentUpDownCounter:
		c, err := meter.Int64UpDownCounter(name)
		return func(ctx context.Context, v int64) { c.Add(ctx, v, attrs) }, err
	case InstrumentHistogram:
		h, err := meter.Int64Histogram(name, metric.WithExplicitBucketBoundaries(buckets...))
		return func(ctx context.Context, v int64) { h.Record(ctx, v, attrs) }, err
	case InstrumentGauge:
		g, err := meter.Int64Gauge(name)
		return func(ctx context.Context, v int64) { g.Record(ctx, v, attrs) }, err
	default:
		c, err := meter.Int64Counter(name)
		return func(ctx context.Context, v int64) { c.Add(ctx, v, attrs) }, err
	}
}

func float64Recorder(
	meter metric.Meter,
	kind InstrumentKind,
	name string,
	buckets []float64,
	attrs metric.MeasurementOption,
) (func(context.Context, float64), error) {
	switch kind {
	case InstrumentUpDownCounter:
		c, err := meter.Float64UpDownCounter(name)
		return func(ctx context.Context, v float64) { c.Add(ctx, v, attrs) }, err
	case InstrumentHistogram:
		h, err := meter.Float64Histogram(name, metric.WithExplicitBucketBoundaries(buckets...))
		return func(ctx context.Context, v float64) { h.Record(ctx, v, attrs) }, err
	case InstrumentGauge:
		g, err := meter.Float64Gauge(name)
		return func(ctx context.Context, v float64) { g.Record(ctx, v, attrs) }, err
	default:
		c, err := meter.Float64Counter(name)
		return func(ctx context.Context, v float64) { c.Add(ctx, v, attrs) }, err
	}
}

func newMetricExporter(ctx context.Context, e Endpoint) (sdkMetric.Exporter, error) {
	switch e.Protocol {
	case ProtocolHTTP:
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(e.Address()),
			otlpmetrichttp.WithTimeout(e.timeout()),
		}
		if e.TLS {
			cfg, err := e.tlsConfig()
			if err != nil {
				return nil, err
			}
			opts = append(opts, otlpmetrichttp.WithTLSClientConfig(cfg))
		} else {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	default:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(e.Address()),
			otlpmetricgrpc.WithTimeout(e.timeout()),
			otlpmetricgrpc.WithHeaders(toHeaders(e.Metadata)),
		}
		if e.TLS {
			cfg, err := e.tlsConfig()
			if err != nil {
				return nil, err
			}
			opts = append(opts, otlpmetricgrpc.WithTLSCredentials(credentials.NewTLS(cfg)))
		} else {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	}
}
