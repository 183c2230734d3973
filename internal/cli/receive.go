package cli

import (
	"context"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/elasticsearch/bootstrapper"
	"github.com/Frefreak/otlp-toolkit/pkg/elasticsearch/client"
	esModel "github.com/Frefreak/otlp-toolkit/pkg/elasticsearch/model"
	"github.com/Frefreak/otlp-toolkit/pkg/event_bus"
	"github.com/Frefreak/otlp-toolkit/pkg/metrics"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	"github.com/Frefreak/otlp-toolkit/pkg/search"
	"github.com/Frefreak/otlp-toolkit/pkg/write_buffer"
	"github.com/asaskevich/EventBus"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const flushTimeout = 10 * time.Second

func captureFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "only print and index spans matching this query; other signals are not printed",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "do not print received telemetry",
		},
		&cli.StringSliceFlag{
			Name:  "es-address",
			Usage: "elasticsearch URL, repeatable; enables the span sink (elasticsearch.addresses)",
		},
		&cli.StringFlag{
			Name:  "es-index",
			Usage: "span index name (elasticsearch.index)",
		},
	}, modeFlags()...)
}

// ingestStack is the receive side shared by the receiver and the kafka
// consumer: decode, store, announce, then filter, print and index.
type ingestStack struct {
	store   *capture.StoreImpl
	bus     *event_bus.BusImpl[capture.Summary, capture.Summary]
	metrics *metrics.Metrics
	ingest  *service.IngestServiceImpl
	sink    *write_buffer.DatabaseWriteBufferImpl[esModel.SpanDocument]
	logger  *zap.Logger
}

func newIngestStack(ctx context.Context, c *cli.Context, s *session) (*ingestStack, error) {
	dec, err := s.decoder()
	if err != nil {
		return nil, err
	}
	mode, err := outputMode(c)
	if err != nil {
		return nil, err
	}
	var predicate search.Predicate
	if q := c.String("query"); q != "" {
		if predicate, err = search.Parse(q); err != nil {
			return nil, err
		}
	}

	store, err := capture.NewStoreImpl(s.cfg.Receiver.CaptureCapacity, s.logger)
	if err != nil {
		return nil, err
	}
	stack := &ingestStack{
		store:   store,
		bus:     event_bus.NewBusImpl[capture.Summary, capture.Summary](EventBus.New(), s.logger),
		metrics: metrics.New(),
		logger:  s.logger,
	}
	stack.ingest = service.NewIngestServiceImpl(dec, store, stack.bus, stack.metrics, s.logger)

	var out io.Writer
	if !c.Bool("quiet") {
		out = c.App.Writer
	}
	var sink write_buffer.DatabaseWriteBuffer[esModel.SpanDocument]
	if stack.sink, err = newSpanSink(ctx, c, s, stack.metrics); err != nil {
		store.Close()
		return nil, err
	}
	if stack.sink != nil {
		sink = stack.sink
	}

	pipeline := service.NewCapturePipeline(store, predicate, sink, out, mode, stack.metrics, s.logger)
	if err := pipeline.Start(stack.bus); err != nil {
		store.Close()
		return nil, err
	}
	return stack, nil
}

func newSpanSink(
	ctx context.Context,
	c *cli.Context,
	s *session,
	m *metrics.Metrics,
) (*write_buffer.DatabaseWriteBufferImpl[esModel.SpanDocument], error) {
	addresses := s.cfg.Elasticsearch.Addresses
	if c.IsSet("es-address") {
		addresses = c.StringSlice("es-address")
	}
	if len(addresses) == 0 {
		return nil, nil
	}
	index := s.cfg.Elasticsearch.Index
	if c.IsSet("es-index") {
		index = c.String("es-index")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	if err := bootstrapper.NewBootstrapper(es, s.logger).BootstrapElasticsearch(ctx, index); err != nil {
		return nil, err
	}
	s.logger.Info("Indexing matched spans", zap.Strings("addresses", addresses), zap.String("index", index))
	return write_buffer.NewDatabaseWriteBufferImpl[esModel.SpanDocument](
		client.NewClientImpl(es, client.Async),
		index,
		s.cfg.Elasticsearch.FlushSize,
		m.IndexedDocuments,
		s.logger,
	), nil
}

// Close drains pending events and flushes the span sink.
func (st *ingestStack) Close() error {
	st.bus.WaitAsync()
	defer st.store.Close()
	if st.sink == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := st.sink.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush span sink: %w", err)
	}
	return nil
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func receiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "receive",
		Usage: "run an OTLP gRPC and HTTP receiver that prints and stores what it gets",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "grpc-address",
				Usage: "OTLP/gRPC listen address (receiver.grpc_address)",
			},
			&cli.StringFlag{
				Name:  "http-address",
				Usage: "OTLP/HTTP, capture API and /metrics listen address (receiver.http_address)",
			},
		}, captureFlags()...),
		Action: func(c *cli.Context) error {
			s := fromContext(c)
			ctx, stop := signalContext(c)
			defer stop()

			stack, err := newIngestStack(ctx, c, s)
			if err != nil {
				return err
			}
			r := receiver.New(
				stack.ingest,
				service.NewSearchServiceImpl(stack.store, s.logger),
				stack.store,
				stack.metrics,
				s.logger,
			)

			grpcAddress := s.cfg.Receiver.GRPCAddress
			if c.IsSet("grpc-address") {
				grpcAddress = c.String("grpc-address")
			}
			httpAddress := s.cfg.Receiver.HTTPAddress
			if c.IsSet("http-address") {
				httpAddress = c.String("http-address")
			}

			runErr := r.Run(ctx, grpcAddress, httpAddress)
			if err := stack.Close(); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
}
