package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/search"
	"go.uber.org/zap"
)

var ErrNotTraceCapture = errors.New("capture does not hold traces")

type CaptureMatch struct {
	CaptureID string
	Match     search.Match
}

type SearchService interface {
	// Search runs query over one capture, or over every trace capture still
	// held when captureID is empty.
	Search(ctx context.Context, query string, captureID string) ([]CaptureMatch, error)
}

type SearchServiceImpl struct {
	store  capture.Store
	logger *zap.Logger
}

func NewSearchServiceImpl(store capture.Store, logger *zap.Logger) *SearchServiceImpl {
	return &SearchServiceImpl{store: store, logger: logger}
}

func (ss *SearchServiceImpl) Search(ctx context.Context, query string, captureID string) ([]CaptureMatch, error) {
	predicate, err := search.Parse(query)
	if err != nil {
		return nil, err
	}

	var ids []string
	if captureID != "" {
		c, err := ss.store.Get(captureID)
		if err != nil {
			return nil, err
		}
		if c.Traces == nil {
			return nil, fmt.Errorf("%s: %w", captureID, ErrNotTraceCapture)
		}
		ids = []string{captureID}
	} else {
		for _, summary := range ss.store.List() {
			if summary.Signal == capture.SignalTraces {
				ids = append(ids, summary.ID)
			}
		}
	}

	results := []CaptureMatch{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := ss.store.Get(id)
		if errors.Is(err, capture.ErrCaptureNotFound) {
			// evicted since List
			continue
		}
		if err != nil {
			return nil, err
		}
		for m := range search.Search(c.Traces, predicate) {
			results = append(results, CaptureMatch{CaptureID: id, Match: m})
		}
	}
	ss.logger.Debug("Searched captures",
		zap.String("query", predicate.String()),
		zap.Int("captures", len(ids)),
		zap.Int("matches", len(results)),
	)
	return results, nil
}
