package server

import (
	"context"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	protoMetrics "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	"go.uber.org/zap"
)

type MetricsServiceServerImpl struct {
	protoMetrics.UnimplementedMetricsServiceServer
	ingestService service.IngestService
	logger        *zap.Logger
}

func NewMetricsServiceServerImpl(
	ingestService service.IngestService,
	logger *zap.Logger,
) *MetricsServiceServerImpl {
	logger.Info("Creating new MetricsServiceServerImpl")
	return &MetricsServiceServerImpl{
		ingestService: ingestService,
		logger:        logger,
	}
}

func (mss *MetricsServiceServerImpl) Export(
	ctx context.Context,
	req *protoMetrics.ExportMetricsServiceRequest,
) (*protoMetrics.ExportMetricsServiceResponse, error) {
	if err := ingest(ctx, mss.ingestService, capture.SignalMetrics, req); err != nil {
		return nil, err
	}
	return &protoMetrics.ExportMetricsServiceResponse{}, nil
}
