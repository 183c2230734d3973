package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/event_bus"
	"github.com/Frefreak/otlp-toolkit/pkg/metrics"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/decoder"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// IngestService decodes received payloads, stores them as captures and
// announces them on the event bus.
type IngestService interface {
	Ingest(ctx context.Context, signal capture.Signal, transport string, payload []byte) (*capture.Capture, error)
}

type IngestServiceImpl struct {
	decoder *decoder.Decoder
	store   capture.Store
	bus     event_bus.Bus[capture.Summary, capture.Summary]
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewIngestServiceImpl(
	dec *decoder.Decoder,
	store capture.Store,
	bus event_bus.Bus[capture.Summary, capture.Summary],
	m *metrics.Metrics,
	logger *zap.Logger,
) *IngestServiceImpl {
	return &IngestServiceImpl{
		decoder: dec,
		store:   store,
		bus:     bus,
		metrics: m,
		logger:  logger,
	}
}

func (is *IngestServiceImpl) Ingest(
	ctx context.Context,
	signal capture.Signal,
	transport string,
	payload []byte,
) (*capture.Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := &capture.Capture{Signal: signal, Transport: transport, Size: len(payload)}
	var err error
	switch signal {
	case capture.SignalTraces:
		c.Traces, err = is.decoder.DecodeTraces(payload)
	case capture.SignalMetrics:
		c.Metrics, err = is.decoder.DecodeMetrics(payload)
	case capture.SignalLogs:
		c.Logs, err = is.decoder.DecodeLogs(payload)
	default:
		return nil, fmt.Errorf("unknown signal %q", signal)
	}
	if err != nil {
		is.metrics.DecodeFailures.WithLabelValues(string(signal), failureReason(err)).Inc()
		is.logger.Warn("Failed to decode payload",
			zap.String("signal", string(signal)),
			zap.String("transport", transport),
			zap.String("size", humanize.Bytes(uint64(len(payload)))),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to decode %s payload: %w", signal, err)
	}

	if _, err := is.store.Put(c); err != nil {
		return nil, fmt.Errorf("failed to store capture: %w", err)
	}
	is.metrics.ReceivedPayloads.WithLabelValues(string(signal), transport).Inc()
	is.metrics.ReceivedBytes.WithLabelValues(string(signal)).Add(float64(len(payload)))

	if err := is.bus.Publish(event_bus.TopicCapture, c.Summary()); err != nil {
		is.logger.Error("Failed to publish capture", zap.String("id", c.ID), zap.Error(err))
	}
	is.logger.Info("Received payload",
		zap.String("id", c.ID),
		zap.String("signal", string(signal)),
		zap.String("transport", transport),
		zap.String("size", humanize.Bytes(uint64(len(payload)))),
		zap.Int("items", c.Items()),
	)
	return c, nil
}

func failureReason(err error) string {
	var decodeErr *decoder.DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Reason.String()
	}
	return "other"
}

// IsDecodeError reports whether an Ingest error was caused by a malformed
// payload rather than by the receiver itself.
func IsDecodeError(err error) bool {
	var decodeErr *decoder.DecodeError
	return errors.As(err, &decodeErr)
}
