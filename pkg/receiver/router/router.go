package router

import (
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/metrics"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/handler"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
)

func CreateRouter(
	ingestService service.IngestService,
	searchService service.SearchService,
	store capture.Store,
	m *metrics.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.Handle("/v1/traces", handler.OTLPHandler(ingestService, capture.SignalTraces, logger)).Methods("POST")
	r.Handle("/v1/metrics", handler.OTLPHandler(ingestService, capture.SignalMetrics, logger)).Methods("POST")
	r.Handle("/v1/logs", handler.OTLPHandler(ingestService, capture.SignalLogs, logger)).Methods("POST")

	r.Handle("/captures", handler.CapturesHandler(store, logger)).Methods("GET")
	r.Handle("/captures/{id}", handler.CaptureHandler(store, logger)).Methods("GET")
	r.Handle("/search", handler.SearchHandler(searchService, logger)).Methods("POST")

	r.Handle("/metrics", m.Handler()).Methods("GET")

	return r
}
