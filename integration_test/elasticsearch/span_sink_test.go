//go:build integration

package elasticsearch

import (
	"bytes"
	"context"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/elasticsearch/client"
	esModel "github.com/Frefreak/otlp-toolkit/pkg/elasticsearch/model"
	"github.com/Frefreak/otlp-toolkit/pkg/event_bus"
	"github.com/Frefreak/otlp-toolkit/pkg/format"
	"github.com/Frefreak/otlp-toolkit/pkg/metrics"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/decoder"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	"github.com/Frefreak/otlp-toolkit/pkg/search"
	"github.com/Frefreak/otlp-toolkit/pkg/write_buffer"
	"github.com/asaskevich/EventBus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	collectorTrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	protoCommon "go.opentelemetry.io/proto/otlp/common/v1"
	protoResource "go.opentelemetry.io/proto/otlp/resource/v1"
	protoTrace "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/protobuf/proto"
	"testing"
	"time"
)

func tracePayload(t *testing.T) []byte {
	payload, err := proto.Marshal(&collectorTrace.ExportTraceServiceRequest{
		ResourceSpans: []*protoTrace.ResourceSpans{{
			Resource: &protoResource.Resource{Attributes: []*protoCommon.KeyValue{{
				Key:   "service.name",
				Value: &protoCommon.AnyValue{Value: &protoCommon.AnyValue_StringValue{StringValue: "checkout"}},
			}}},
			ScopeSpans: []*protoTrace.ScopeSpans{{Spans: []*protoTrace.Span{
				{
					TraceId:           bytes.Repeat([]byte{1}, 16),
					SpanId:            bytes.Repeat([]byte{2}, 8),
					Name:              "GET /cart",
					StartTimeUnixNano: uint64(time.Now().UnixNano()),
					EndTimeUnixNano:   uint64(time.Now().Add(time.Second).UnixNano()),
					Status:            &protoTrace.Status{Code: protoTrace.Status_STATUS_CODE_ERROR, Message: "boom"},
				},
				{
					TraceId:           bytes.Repeat([]byte{1}, 16),
					SpanId:            bytes.Repeat([]byte{3}, 8),
					ParentSpanId:      bytes.Repeat([]byte{2}, 8),
					Name:              "SELECT",
					StartTimeUnixNano: uint64(time.Now().UnixNano()),
					EndTimeUnixNano:   uint64(time.Now().UnixNano()),
				},
			}}},
		}},
	})
	require.NoError(t, err)
	return payload
}

func TestSpanSink(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() {
		require.NoError(t, clearIndex(context.Background(), es, indexName))
	})

	store, err := capture.NewStoreImpl(16, logger)
	require.NoError(t, err)
	defer store.Close()
	bus := event_bus.NewBusImpl[capture.Summary, capture.Summary](EventBus.New(), logger)
	m := metrics.New()
	ac := client.NewClientImpl(es, client.Wait)
	buffer := write_buffer.NewDatabaseWriteBufferImpl[esModel.SpanDocument](ac, indexName, 100, m.IndexedDocuments, logger)
	predicate, err := search.Parse("status == error")
	require.NoError(t, err)
	pipeline := service.NewCapturePipeline(store, predicate, buffer, nil, format.ModeCompact, m, logger)
	require.NoError(t, pipeline.Start(bus))
	ingest := service.NewIngestServiceImpl(decoder.NewDecoder(), store, bus, m, logger)

	t.Run("Matching spans are indexed once per span id", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			_, err := ingest.Ingest(ctx, capture.SignalTraces, "grpc", tracePayload(t))
			require.NoError(t, err)
		}
		bus.WaitAsync()
		require.NoError(t, buffer.Flush(ctx))

		count, err := ac.Count(ctx, termQuery("trace_id", "01010101010101010101010101010101"), []string{indexName})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.Equal(t, float64(2), testutil.ToFloat64(m.IndexedDocuments))
	})

	t.Run("Indexed documents carry the flattened span", func(t *testing.T) {
		hits, err := ac.Search(ctx, termQuery("service", "checkout"), []string{indexName}, nil)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "010101010101010101010101010101010202020202020202", hits[0].ID)

		docs, err := client.DecodeHits[esModel.SpanDocument](hits)
		require.NoError(t, err)
		assert.Equal(t, "GET /cart", docs[0].Name)
		assert.Equal(t, "error", docs[0].StatusCode)
		assert.Equal(t, "boom", docs[0].StatusMessage)
		assert.Equal(t, hits[0].ID, docs[0].DocumentID())
	})
}
