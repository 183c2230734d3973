package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

const namespace = "otk"

// Metrics instruments the receiver. Each instance owns its registry so that
// several receivers, or tests, never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// ReceivedPayloads counts decoded payloads by signal and transport.
	ReceivedPayloads *prometheus.CounterVec
	// ReceivedBytes counts raw payload bytes by signal.
	ReceivedBytes *prometheus.CounterVec
	// DecodeFailures counts rejected payloads by signal and failure reason.
	DecodeFailures *prometheus.CounterVec
	// MatchedSpans counts spans selected by the receiver's query.
	MatchedSpans prometheus.Counter
	// IndexedDocuments counts documents flushed to the search sink.
	IndexedDocuments prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		ReceivedPayloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "receiver",
			Name:      "payloads_total",
			Help:      "Total OTLP payloads decoded",
		}, []string{"signal", "transport"}),
		ReceivedBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "receiver",
			Name:      "bytes_total",
			Help:      "Total OTLP payload bytes received",
		}, []string{"signal"}),
		DecodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "receiver",
			Name:      "decode_failures_total",
			Help:      "Total OTLP payloads rejected by the decoder",
		}, []string{"signal", "reason"}),
		MatchedSpans: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "matched_spans_total",
			Help:      "Total spans matched by the receiver query",
		}),
		IndexedDocuments: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "indexed_documents_total",
			Help:      "Total span documents bulk indexed",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
