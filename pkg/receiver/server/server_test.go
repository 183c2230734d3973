package server

import (
	"context"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/decoder"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	protoMetrics "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	protoTrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	v1 "go.opentelemetry.io/proto/otlp/trace/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding/gzip"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"net"
	"sync"
	"testing"
)

type ingestCall struct {
	signal    capture.Signal
	transport string
	payload   []byte
}

type fakeIngestService struct {
	mu    sync.Mutex
	calls []ingestCall
	err   error
}

func (f *fakeIngestService) Ingest(_ context.Context, signal capture.Signal, transport string, payload []byte) (*capture.Capture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ingestCall{signal: signal, transport: transport, payload: payload})
	if f.err != nil {
		return nil, f.err
	}
	return &capture.Capture{ID: "id", Signal: signal}, nil
}

func startServer(t *testing.T, ingestService *fakeIngestService) *grpc.ClientConn {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := NewGRPCServer(ingestService, zap.NewNop())
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServers(t *testing.T) {
	t.Run("Trace export hands the encoded request to ingest", func(t *testing.T) {
		ingestService := &fakeIngestService{}
		conn := startServer(t, ingestService)
		req := &protoTrace.ExportTraceServiceRequest{ResourceSpans: []*v1.ResourceSpans{{
			ScopeSpans: []*v1.ScopeSpans{{Spans: []*v1.Span{{Name: "a"}}}},
		}}}

		_, err := protoTrace.NewTraceServiceClient(conn).Export(
			context.Background(), req, grpc.UseCompressor(gzip.Name),
		)
		require.NoError(t, err)

		require.Len(t, ingestService.calls, 1)
		assert.Equal(t, capture.SignalTraces, ingestService.calls[0].signal)
		assert.Equal(t, Transport, ingestService.calls[0].transport)
		var got protoTrace.ExportTraceServiceRequest
		require.NoError(t, proto.Unmarshal(ingestService.calls[0].payload, &got))
		assert.True(t, proto.Equal(req, &got))
	})

	t.Run("Metrics and logs route to their signals", func(t *testing.T) {
		ingestService := &fakeIngestService{}
		conn := startServer(t, ingestService)

		_, err := protoMetrics.NewMetricsServiceClient(conn).Export(context.Background(), &protoMetrics.ExportMetricsServiceRequest{})
		require.NoError(t, err)
		_, err = protoLogs.NewLogsServiceClient(conn).Export(context.Background(), &protoLogs.ExportLogsServiceRequest{})
		require.NoError(t, err)

		require.Len(t, ingestService.calls, 2)
		assert.Equal(t, capture.SignalMetrics, ingestService.calls[0].signal)
		assert.Equal(t, capture.SignalLogs, ingestService.calls[1].signal)
	})

	t.Run("Decode failures become InvalidArgument", func(t *testing.T) {
		decodeErr := &decoder.DecodeError{Reason: wire.ReasonTruncated, Offset: 3, Detail: "bad payload"}
		ingestService := &fakeIngestService{err: fmt.Errorf("failed to decode logs payload: %w", decodeErr)}
		conn := startServer(t, ingestService)

		_, err := protoLogs.NewLogsServiceClient(conn).Export(context.Background(), &protoLogs.ExportLogsServiceRequest{})
		require.Error(t, err)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "bad payload")
	})

	t.Run("Store failures become Internal", func(t *testing.T) {
		ingestService := &fakeIngestService{err: fmt.Errorf("failed to store capture: %w", capture.ErrSetFailed)}
		conn := startServer(t, ingestService)

		_, err := protoLogs.NewLogsServiceClient(conn).Export(context.Background(), &protoLogs.ExportLogsServiceRequest{})
		require.Error(t, err)
		assert.Equal(t, codes.Internal, status.Code(err))
	})
}
