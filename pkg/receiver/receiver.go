package receiver

import (
	"context"
	"errors"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/metrics"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/router"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/server"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Receiver serves OTLP over gRPC and HTTP. The HTTP listener also carries the
// capture query API and /metrics.
type Receiver struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	logger     *zap.Logger
}

func New(
	ingestService service.IngestService,
	searchService service.SearchService,
	store capture.Store,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Receiver {
	return &Receiver{
		grpcServer: server.NewGRPCServer(ingestService, logger),
		httpServer: &http.Server{
			Handler:           router.CreateRouter(ingestService, searchService, store, m, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Serve blocks until ctx is cancelled or either server fails, then stops both.
func (r *Receiver) Serve(ctx context.Context, grpcLis, httpLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("OTLP gRPC receiver listening", zap.String("address", grpcLis.Addr().String()))
		if err := r.grpcServer.Serve(grpcLis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		r.logger.Info("OTLP HTTP receiver listening", zap.String("address", httpLis.Addr().String()))
		if err := r.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		r.logger.Info("Shutting down receiver")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		r.grpcServer.GracefulStop()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Run listens on the given addresses and serves until ctx is cancelled.
func (r *Receiver) Run(ctx context.Context, grpcAddress, httpAddress string) error {
	grpcLis, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	httpLis, err := net.Listen("tcp", httpAddress)
	if err != nil {
		grpcLis.Close()
		return fmt.Errorf("failed to listen on %s: %w", httpAddress, err)
	}
	return r.Serve(ctx, grpcLis, httpLis)
}
