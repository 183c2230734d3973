package server

import (
	"context"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	protoMetrics "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	protoTrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	_ "google.golang.org/grpc/encoding/gzip"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

const Transport = "grpc"

// NewGRPCServer registers the three OTLP collector services. Requests are
// re-encoded so the toolkit's own decoder sees the same bytes a collector would.
func NewGRPCServer(ingestService service.IngestService, logger *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	srv := grpc.NewServer(opts...)
	protoTrace.RegisterTraceServiceServer(srv, NewTraceServiceServerImpl(ingestService, logger))
	protoMetrics.RegisterMetricsServiceServer(srv, NewMetricsServiceServerImpl(ingestService, logger))
	protoLogs.RegisterLogsServiceServer(srv, NewLogServiceServerImpl(ingestService, logger))
	return srv
}

func ingest(ctx context.Context, ingestService service.IngestService, signal capture.Signal, req proto.Message) error {
	payload, err := proto.Marshal(req)
	if err != nil {
		return status.Errorf(codes.Internal, "failed to encode request: %v", err)
	}
	if _, err := ingestService.Ingest(ctx, signal, Transport, payload); err != nil {
		if service.IsDecodeError(err) {
			return status.Error(codes.InvalidArgument, err.Error())
		}
		return status.Error(codes.Internal, err.Error())
	}
	return nil
}
