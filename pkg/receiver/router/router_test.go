package router

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/event_bus"
	"github.com/Frefreak/otlp-toolkit/pkg/metrics"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/decoder"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/handler"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	collectorTrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	protoTrace "go.opentelemetry.io/proto/otlp/trace/v1"
	"go.uber.org/zap"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/proto"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestRouter(t *testing.T) (http.Handler, *capture.StoreImpl) {
	store, err := capture.NewStoreImpl(8, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	bus := event_bus.NewBusImpl[capture.Summary, capture.Summary](EventBus.New(), zap.NewNop())
	m := metrics.New()
	ingest := service.NewIngestServiceImpl(decoder.NewDecoder(), store, bus, m, zap.NewNop())
	return CreateRouter(ingest, service.NewSearchServiceImpl(store, zap.NewNop()), store, m, zap.NewNop()), store
}

func tracePayload(t *testing.T) []byte {
	payload, err := proto.Marshal(&collectorTrace.ExportTraceServiceRequest{
		ResourceSpans: []*protoTrace.ResourceSpans{{
			ScopeSpans: []*protoTrace.ScopeSpans{{Spans: []*protoTrace.Span{
				{TraceId: bytes.Repeat([]byte{2}, 16), SpanId: bytes.Repeat([]byte{3}, 8), Name: "checkout", Kind: protoTrace.Span_SPAN_KIND_SERVER},
				{TraceId: bytes.Repeat([]byte{2}, 16), SpanId: bytes.Repeat([]byte{4}, 8), Name: "db"},
			}}},
		}},
	})
	require.NoError(t, err)
	return payload
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter(t *testing.T) {
	protobuf := map[string]string{"Content-Type": handler.ProtobufContentType}

	t.Run("OTLP/HTTP export is captured and listed", func(t *testing.T) {
		h, _ := newTestRouter(t)
		rec := do(t, h, http.MethodPost, "/v1/traces", bytes.NewReader(tracePayload(t)), protobuf)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, handler.ProtobufContentType, rec.Header().Get("Content-Type"))

		rec = do(t, h, http.MethodGet, "/captures", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list handler.CapturesResponseDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
		require.Len(t, list.Captures, 1)
		assert.Equal(t, "traces", list.Captures[0].Signal)
		assert.Equal(t, "http", list.Captures[0].Transport)
		assert.Equal(t, 2, list.Captures[0].Items)

		rec = do(t, h, http.MethodGet, "/captures/"+list.Captures[0].Id+"?mode=compact", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, strings.Count(rec.Body.String(), "\n"))
		assert.Contains(t, rec.Body.String(), "\tcheckout\t")
	})

	t.Run("Gzip bodies are accepted", func(t *testing.T) {
		h, store := newTestRouter(t)
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, err := gz.Write(tracePayload(t))
		require.NoError(t, err)
		require.NoError(t, gz.Close())

		rec := do(t, h, http.MethodPost, "/v1/traces", &buf, map[string]string{
			"Content-Type":     handler.ProtobufContentType,
			"Content-Encoding": "gzip",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, store.List(), 1)
	})

	t.Run("JSON exports are unsupported", func(t *testing.T) {
		h, _ := newTestRouter(t)
		rec := do(t, h, http.MethodPost, "/v1/logs", strings.NewReader("{}"), map[string]string{"Content-Type": "application/json"})
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("Malformed payloads answer with a status message", func(t *testing.T) {
		h, _ := newTestRouter(t)
		rec := do(t, h, http.MethodPost, "/v1/metrics", bytes.NewReader([]byte{0x0a, 0x09, 0x01}), protobuf)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var st spb.Status
		require.NoError(t, proto.Unmarshal(rec.Body.Bytes(), &st))
		assert.Equal(t, int32(codes.InvalidArgument), st.Code)
		assert.Contains(t, st.Message, "truncated")

		rec = do(t, h, http.MethodGet, "/metrics", nil, nil)
		assert.Contains(t, rec.Body.String(), `otk_receiver_decode_failures_total{reason="truncated",signal="metrics"} 1`)
	})

	t.Run("Search returns matching spans", func(t *testing.T) {
		h, _ := newTestRouter(t)
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/v1/traces", bytes.NewReader(tracePayload(t)), protobuf).Code)

		rec := do(t, h, http.MethodPost, "/search", strings.NewReader(`{"query":"kind == server"}`), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var res handler.SearchResponseDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		require.Len(t, res.Spans, 1)
		assert.Equal(t, "checkout", res.Spans[0].Name)
		assert.Equal(t, "0303030303030303", res.Spans[0].SpanId)
		assert.Equal(t, "server", res.Spans[0].Kind)
	})

	t.Run("Search and capture errors map to status codes", func(t *testing.T) {
		h, _ := newTestRouter(t)
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/search", strings.NewReader(`{"query":"name =="}`), nil).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/search", strings.NewReader(`nope`), nil).Code)
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/search", strings.NewReader(`{"capture_id":"x"}`), nil).Code)
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/captures/x", nil, nil).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/captures/x?mode=json", nil, nil).Code)
		assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/v1/traces", nil, nil).Code)
	})
}
