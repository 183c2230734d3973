package server

import (
	"context"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	protoTrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"go.uber.org/zap"
)

type TraceServiceServerImpl struct {
	protoTrace.UnimplementedTraceServiceServer
	ingestService service.IngestService
	logger        *zap.Logger
}

func NewTraceServiceServerImpl(
	ingestService service.IngestService,
	logger *zap.Logger,
) *TraceServiceServerImpl {
	logger.Info("Creating new TraceServiceServerImpl")
	return &TraceServiceServerImpl{
		ingestService: ingestService,
		logger:        logger,
	}
}

func (tss *TraceServiceServerImpl) Export(
	ctx context.Context,
	req *protoTrace.ExportTraceServiceRequest,
) (*protoTrace.ExportTraceServiceResponse, error) {
	if err := ingest(ctx, tss.ingestService, capture.SignalTraces, req); err != nil {
		return nil, err
	}
	return &protoTrace.ExportTraceServiceResponse{}, nil
}
