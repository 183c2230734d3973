package cli

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/kafka"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func consumeKafkaCommand() *cli.Command {
	return &cli.Command{
		Name:  "consume-kafka",
		Usage: "decode OTLP protobuf messages from a kafka topic",
		Flags: append([]cli.Flag{
			&cli.StringSliceFlag{
				Name:  "broker",
				Usage: "broker address, repeatable (kafka.brokers)",
			},
			&cli.StringFlag{
				Name:  "topic",
				Usage: "topic to read (kafka.topic)",
			},
			&cli.StringFlag{
				Name:  "group-id",
				Usage: "consumer group (kafka.group_id)",
			},
			&cli.StringFlag{
				Name:  "signal",
				Usage: "traces, metrics or logs (kafka.signal)",
			},
		}, captureFlags()...),
		Action: func(c *cli.Context) error {
			s := fromContext(c)
			cfg := kafka.ReaderConfig{
				Brokers: s.cfg.Kafka.Brokers,
				Topic:   s.cfg.Kafka.Topic,
				GroupID: s.cfg.Kafka.GroupID,
			}
			if c.IsSet("broker") {
				cfg.Brokers = c.StringSlice("broker")
			}
			if c.IsSet("topic") {
				cfg.Topic = c.String("topic")
			}
			if c.IsSet("group-id") {
				cfg.GroupID = c.String("group-id")
			}
			signalName := s.cfg.Kafka.Signal
			if c.IsSet("signal") {
				signalName = c.String("signal")
			}
			sig, err := capture.ParseSignal(signalName)
			if err != nil {
				return err
			}
			if len(cfg.Brokers) == 0 || cfg.Topic == "" {
				return fmt.Errorf("kafka brokers and topic are required")
			}

			ctx, stop := signalContext(c)
			defer stop()
			stack, err := newIngestStack(ctx, c, s)
			if err != nil {
				return err
			}

			s.logger.Info("Consuming kafka topic",
				zap.Strings("brokers", cfg.Brokers),
				zap.String("topic", cfg.Topic),
				zap.String("group_id", cfg.GroupID),
			)
			consumer := kafka.NewConsumer(kafka.NewReader(cfg, s.logger), stack.ingest, sig, s.logger)
			runErr := consumer.Start(ctx)
			if err := stack.Close(); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
}
