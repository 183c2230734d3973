package kafka

import (
	"context"
	"errors"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"time"
)

const Transport = "kafka"

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewReader reads from the newest offset of the group's topic, like a
// collector exporter tail.
func NewReader(cfg ReaderConfig, logger *zap.Logger) *kafka.Reader {
	sugar := logger.Sugar()
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    10e3,
		MaxBytes:    10e6,
		MaxWait:     1 * time.Second,
		Logger:      kafka.LoggerFunc(sugar.Debugf),
		ErrorLogger: kafka.LoggerFunc(sugar.Errorf),
	})
}

// Consumer feeds OTLP protobuf messages from a topic into the ingest service.
type Consumer struct {
	reader        MessageReader
	ingestService service.IngestService
	signal        capture.Signal
	logger        *zap.Logger
}

func NewConsumer(
	reader MessageReader,
	ingestService service.IngestService,
	signal capture.Signal,
	logger *zap.Logger,
) *Consumer {
	return &Consumer{
		reader:        reader,
		ingestService: ingestService,
		signal:        signal,
		logger:        logger,
	}
}

// Start consumes until ctx is cancelled. Offsets are committed once a
// message has been ingested; undecodable messages are logged and committed so
// they are not redelivered.
func (c *Consumer) Start(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Error("Failed to close kafka reader", zap.Error(err))
		}
	}()

	c.logger.Info("Starting kafka consumer", zap.String("signal", string(c.signal)))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Consumer context cancelled, shutting down")
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		if err := c.processMessage(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Warn("Failed to process message",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to commit offset %d: %w", msg.Offset, err)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	_, err := c.ingestService.Ingest(ctx, c.signal, Transport, msg.Value)
	return err
}
