package capture

import (
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"testing"
)

func traceCapture(spans ...string) *Capture {
	ss := model.ScopeSpans{}
	for _, name := range spans {
		ss.Spans = append(ss.Spans, model.Span{Name: name})
	}
	return &Capture{
		Signal:    SignalTraces,
		Transport: "grpc",
		Traces:    &model.TraceExport{ResourceSpans: []model.ResourceSpans{{ScopeSpans: []model.ScopeSpans{ss}}}},
	}
}

func getNewStoreImpl(t *testing.T, capacity int64) *StoreImpl {
	store, err := NewStoreImpl(capacity, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestStoreImpl_Get(t *testing.T) {
	t.Run("Returns error if id is not found", func(t *testing.T) {
		store := getNewStoreImpl(t, 8)
		_, err := store.Get("missing")
		assert.ErrorIs(t, err, ErrCaptureNotFound)
	})

	t.Run("Returns the capture that was put", func(t *testing.T) {
		store := getNewStoreImpl(t, 8)
		c := traceCapture("a", "b")
		id, err := store.Put(c)
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		got, err := store.Get(id)
		require.NoError(t, err)
		assert.Same(t, c, got)
		assert.Equal(t, 2, got.Items())
		assert.False(t, got.ReceivedAt.IsZero())
	})
}

func TestStoreImpl_List(t *testing.T) {
	t.Run("Lists summaries in insertion order", func(t *testing.T) {
		store := getNewStoreImpl(t, 8)
		first, err := store.Put(traceCapture("a"))
		require.NoError(t, err)
		second, err := store.Put(&Capture{Signal: SignalLogs, Transport: "http", Logs: &model.LogsExport{}})
		require.NoError(t, err)

		summaries := store.List()
		require.Len(t, summaries, 2)
		assert.Equal(t, first, summaries[0].ID)
		assert.Equal(t, SignalTraces, summaries[0].Signal)
		assert.Equal(t, 1, summaries[0].Items)
		assert.Equal(t, second, summaries[1].ID)
		assert.Equal(t, "http", summaries[1].Transport)
	})

	t.Run("Ids are unique", func(t *testing.T) {
		store := getNewStoreImpl(t, 64)
		seen := map[string]bool{}
		for i := 0; i < 20; i++ {
			id, err := store.Put(traceCapture("x"))
			require.NoError(t, err)
			assert.False(t, seen[id])
			seen[id] = true
		}
	})
}

func TestParseSignal(t *testing.T) {
	sig, err := ParseSignal("Metrics")
	require.NoError(t, err)
	assert.Equal(t, SignalMetrics, sig)
	_, err = ParseSignal("profiles")
	assert.Error(t, err)
}

func TestNewStoreImpl(t *testing.T) {
	_, err := NewStoreImpl(0, zap.NewNop())
	assert.Error(t, err)
}
