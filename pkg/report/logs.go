package report

import (
	"context"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otelLog "go.opentelemetry.io/otel/log"
	sdkLog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"google.golang.org/grpc/credentials"
	"time"
)

const DefaultSeverity = "INFO"

type LogOptions struct {
	Endpoint     Endpoint
	ResourceTags []KeyValue
	Body         string
	// Severity is sent as severity text. Known names also set the number.
	Severity   string
	Attributes []KeyValue
	Batch      int
	Rate       float64
}

func (r *ReporterImpl) ReportLogs(ctx context.Context, opts LogOptions) (int, error) {
	if err := opts.Endpoint.Validate(); err != nil {
		return 0, err
	}
	severityText := opts.Severity
	if severityText == "" {
		severityText = DefaultSeverity
	}
	severity, _ := model.ParseSeverityNumber(severityText)
	attrs := toLogAttributes(opts.Attributes)
	batch := max(opts.Batch, 1)

	exporter, err := newLogExporter(ctx, opts.Endpoint)
	if err != nil {
		return 0, fmt.Errorf("failed to create log exporter: %w", err)
	}
	lp := sdkLog.NewLoggerProvider(
		sdkLog.WithResource(newResource(opts.ResourceTags)),
		sdkLog.WithProcessor(sdkLog.NewBatchProcessor(exporter)),
	)
	logger := lp.Logger(InstrumentationName)
	limiter := newLimiter(opts.Rate)

	for i := 0; i < batch; i++ {
		if err := limiter.Wait(ctx); err != nil {
			_ = lp.Shutdown(context.Background())
			return i, fmt.Errorf("interrupted after %d records: %w", i, err)
		}
		var rec otelLog.Record
		now := time.Now()
		rec.SetTimestamp(now)
		rec.SetObservedTimestamp(now)
		rec.SetBody(otelLog.StringValue(opts.Body))
		rec.SetSeverityText(severityText)
		rec.SetSeverity(otelLog.Severity(severity))
		rec.AddAttributes(attrs...)
		logger.Emit(ctx, rec)
	}

	if err := lp.Shutdown(ctx); err != nil {
		return batch, fmt.Errorf("failed to flush logs: %w", err)
	}
	r.logger.Info("Reported log records",
		zap.Int("count", batch),
		zap.String("endpoint", opts.Endpoint.Address()),
	)
	return batch, nil
}

func newLogExporter(ctx context.Context, e Endpoint) (sdkLog.Exporter, error) {
	switch e.Protocol {
	case ProtocolHTTP:
		opts := []otlploghttp.Option{
			otlploghttp.WithEndpoint(e.Address()),
			otlploghttp.WithTimeout(e.timeout()),
		}
		if e.TLS {
			cfg, err := e.tlsConfig()
			if err != nil {
				return nil, err
			}
			opts = append(opts, otlploghttp.WithTLSClientConfig(cfg))
		} else {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		return otlploghttp.New(ctx, opts...)
	default:
		opts := []otlploggrpc.Option{
			otlploggrpc.WithEndpoint(e.Address()),
			otlploggrpc.WithTimeout(e.timeout()),
			otlploggrpc.WithHeaders(toHeaders(e.Metadata)),
		}
		if e.TLS {
			cfg, err := e.tlsConfig()
			if err != nil {
				return nil, err
			}
			opts = append(opts, otlploggrpc.WithTLSCredentials(credentials.NewTLS(cfg)))
		} else {
			opts = append(opts, otlploggrpc.WithInsecure())
		}
		return otlploggrpc.New(ctx, opts...)
	}
}
