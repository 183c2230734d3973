package server

import (
	"context"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"go.uber.org/zap"
)

type LogServiceServerImpl struct {
	protoLogs.UnimplementedLogsServiceServer
	ingestService service.IngestService
	logger        *zap.Logger
}

func NewLogServiceServerImpl(
	ingestService service.IngestService,
	logger *zap.Logger,
) *LogServiceServerImpl {
	logger.Info("Creating new LogServiceServerImpl")
	return &LogServiceServerImpl{
		ingestService: ingestService,
		logger:        logger,
	}
}

func (lss *LogServiceServerImpl) Export(
	ctx context.Context,
	req *protoLogs.ExportLogsServiceRequest,
) (*protoLogs.ExportLogsServiceResponse, error) {
	if err := ingest(ctx, lss.ingestService, capture.SignalLogs, req); err != nil {
		return nil, err
	}
	return &protoLogs.ExportLogsServiceResponse{}, nil
}
