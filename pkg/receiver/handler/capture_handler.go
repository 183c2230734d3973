package handler

import (
	"encoding/json"
	"errors"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/format"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
	"github.com/Frefreak/otlp-toolkit/pkg/search"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"io"
	"net/http"
)

// CapturesHandler lists the stored captures.
// @Summary List captures.
// @Tags captures
// @Produce json
// @Success 200 {object} CapturesResponseDTO "Captures oldest first"
// @Router /captures [get]
func CapturesHandler(
	store capture.Store,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries := store.List()
		res := CapturesResponseDTO{Captures: make([]CaptureSummaryDTO, len(summaries))}
		for i, s := range summaries {
			res.Captures[i] = toCaptureSummaryDTO(s)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
		}
	}
}

// CaptureHandler renders one capture with the formatter.
// @Summary Render a capture.
// @Tags captures
// @Produce plain
// @Param id path string true "Capture id"
// @Param mode query string false "pretty (default) or compact"
// @Success 200 {string} string "Formatted capture"
// @Failure 400 {object} ErrorMessage "Unknown mode"
// @Failure 404 {object} ErrorMessage "Capture not found"
// @Router /captures/{id} [get]
func CaptureHandler(
	store capture.Store,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		mode := format.ModePretty
		if raw := r.URL.Query().Get("mode"); raw != "" {
			var err error
			if mode, err = format.ParseMode(raw); err != nil {
				HttpError(w, err.Error(), http.StatusBadRequest, logger)
				return
			}
		}

		c, err := store.Get(id)
		if errors.Is(err, capture.ErrCaptureNotFound) {
			HttpError(w, err.Error(), http.StatusNotFound, logger)
			return
		}
		if err != nil {
			logger.Error("Error encountered when loading capture", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}

		text, err := format.Any(c.Export(), mode)
		if err != nil {
			logger.Error("Error encountered when formatting capture", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := io.WriteString(w, text); err != nil {
			logger.Error("Error encountered when writing response", zap.Error(err))
		}
	}
}

// SearchHandler runs a query over the stored trace captures.
// @Summary Search spans.
// @Tags captures
// @Accept json
// @Produce json
// @Param search body SearchRequestDTO true "Query and optional capture id"
// @Success 200 {object} SearchResponseDTO "Matching spans"
// @Failure 400 {object} ErrorMessage "Invalid query or capture"
// @Failure 404 {object} ErrorMessage "Capture not found"
// @Router /search [post]
func SearchHandler(
	ss service.SearchService,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer closeBody(r.Body, logger)

		var req SearchRequestDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("Error encountered when decoding request body", zap.Error(err))
			HttpError(w, ErrNoQueryBody.Error(), http.StatusBadRequest, logger)
			return
		}

		results, err := ss.Search(r.Context(), req.Query, req.CaptureId)
		if err != nil {
			var predicateErr *search.PredicateError
			switch {
			case errors.As(err, &predicateErr), errors.Is(err, service.ErrNotTraceCapture):
				HttpError(w, err.Error(), http.StatusBadRequest, logger)
			case errors.Is(err, capture.ErrCaptureNotFound):
				HttpError(w, err.Error(), http.StatusNotFound, logger)
			default:
				logger.Error("Error encountered when searching captures", zap.Error(err))
				HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			}
			return
		}

		res := SearchResponseDTO{Spans: make([]SpanDTO, len(results))}
		for i, cm := range results {
			res.Spans[i] = toSpanDTO(cm)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
		}
	}
}
