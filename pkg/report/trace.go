package report

import (
	"context"
	"fmt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc/credentials"
	"strings"
	"time"
)

const (
	DefaultSpanName   = "otk_test_span"
	longLengthTagName = "ll"
)

type TraceOptions struct {
	Endpoint     Endpoint
	ResourceTags []KeyValue
	Name         string
	Attributes   []KeyValue
	// LongLengthTag k=n adds attribute "ll" holding k repeated n times.
	LongLengthTag *KeyValue
	// A non-empty StatusMessage marks spans as errors, otherwise they are OK.
	StatusMessage string
	Duration      time.Duration
	Batch         int
	// Rate in spans per second, 0 is unlimited.
	Rate float64
}

func (r *ReporterImpl) ReportTraces(ctx context.Context, opts TraceOptions) ([]string, error) {
	if err := opts.Endpoint.Validate(); err != nil {
		return nil, err
	}
	attrs := toAttributes(opts.Attributes)
	if opts.LongLengthTag != nil {
		ll, err := longLengthValue(*opts.LongLengthTag)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attribute.String(longLengthTagName, ll))
	}
	name := opts.Name
	if name == "" {
		name = DefaultSpanName
	}
	batch := max(opts.Batch, 1)

	exporter, err := newTraceExporter(ctx, opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tp := sdkTrace.NewTracerProvider(
		sdkTrace.WithSampler(sdkTrace.AlwaysSample()),
		sdkTrace.WithBatcher(exporter),
		sdkTrace.WithResource(newResource(opts.ResourceTags)),
	)
	tracer := tp.Tracer(InstrumentationName)
	limiter := newLimiter(opts.Rate)

	traceIDs := make([]string, 0, batch)
	for i := 0; i < batch; i++ {
		if err := limiter.Wait(ctx); err != nil {
			_ = tp.Shutdown(context.Background())
			return traceIDs, fmt.Errorf("interrupted after %d spans: %w", i, err)
		}
		start := time.Now()
		_, span := tracer.Start(ctx, name, trace.WithTimestamp(start), trace.WithAttributes(attrs...))
		if opts.StatusMessage != "" {
			span.SetStatus(codes.Error, opts.StatusMessage)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End(trace.WithTimestamp(start.Add(opts.Duration)))
		traceIDs = append(traceIDs, span.SpanContext().TraceID().String())
	}

	if err := tp.Shutdown(ctx); err != nil {
		return traceIDs, fmt.Errorf("failed to flush spans: %w", err)
	}
	r.logger.Info("Reported spans",
		zap.Int("count", len(traceIDs)),
		zap.String("endpoint", opts.Endpoint.Address()),
		zap.Stringer("protocol", opts.Endpoint.Protocol),
	)
	return traceIDs, nil
}

func longLengthValue(kv KeyValue) (string, error) {
	var n uint32
	if _, err := fmt.Sscan(kv.Value, &n); err != nil {
		return "", fmt.Errorf("invalid long length tag count %q: %w", kv.Value, err)
	}
	return strings.Repeat(kv.Key, int(n)), nil
}

func newTraceExporter(ctx context.Context, e Endpoint) (sdkTrace.SpanExporter, error) {
	switch e.Protocol {
	case ProtocolHTTP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(e.Address()),
			otlptracehttp.WithTimeout(e.timeout()),
		}
		if e.TLS {
			cfg, err := e.tlsConfig()
			if err != nil {
				return nil, err
			}
			opts = append(opts, otlptracehttp.WithTLSClientConfig(cfg))
		} else {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(e.Address()),
			otlptracegrpc.WithTimeout(e.timeout()),
			otlptracegrpc.WithHeaders(toHeaders(e.Metadata)),
		}
		if e.TLS {
			cfg, err := e.tlsConfig()
			if err != nil {
				return nil, err
			}
			opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(cfg)))
		} else {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	}
}
