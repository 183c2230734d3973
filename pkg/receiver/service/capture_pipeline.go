package service

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	esModel "github.com/Frefreak/otlp-toolkit/pkg/elasticsearch/model"
	"github.com/Frefreak/otlp-toolkit/pkg/event_bus"
	"github.com/Frefreak/otlp-toolkit/pkg/format"
	"github.com/Frefreak/otlp-toolkit/pkg/metrics"
	"github.com/Frefreak/otlp-toolkit/pkg/search"
	"github.com/Frefreak/otlp-toolkit/pkg/write_buffer"
	"go.uber.org/zap"
	"io"
	"slices"
	"sync"
	"time"
)

// CapturePipeline consumes capture announcements. Trace captures are filtered
// by the configured query, counted, printed and sent to the span sink.
// Without a query every capture is printed in full.
type CapturePipeline struct {
	store     capture.Store
	predicate search.Predicate
	sink      write_buffer.DatabaseWriteBuffer[esModel.SpanDocument]
	out       io.Writer
	mode      format.Mode
	metrics   *metrics.Metrics
	logger    *zap.Logger
	outMu     sync.Mutex
}

// NewCapturePipeline builds a pipeline. predicate, sink and out may each be nil.
func NewCapturePipeline(
	store capture.Store,
	predicate search.Predicate,
	sink write_buffer.DatabaseWriteBuffer[esModel.SpanDocument],
	out io.Writer,
	mode format.Mode,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CapturePipeline {
	return &CapturePipeline{
		store:     store,
		predicate: predicate,
		sink:      sink,
		out:       out,
		mode:      mode,
		metrics:   m,
		logger:    logger,
	}
}

func (cp *CapturePipeline) Start(bus event_bus.Bus[capture.Summary, capture.Summary]) error {
	err := bus.Subscribe(event_bus.TopicCapture, cp.Process, true)
	if err != nil {
		return fmt.Errorf("failed to subscribe capture pipeline: %w", err)
	}
	return nil
}

func (cp *CapturePipeline) Process(summary capture.Summary) error {
	c, err := cp.store.Get(summary.ID)
	if err != nil {
		return fmt.Errorf("failed to load capture: %w", err)
	}

	if c.Traces == nil {
		if cp.predicate != nil {
			cp.logger.Debug("Skipping non trace capture", zap.String("id", c.ID), zap.String("signal", string(c.Signal)))
			return nil
		}
		return cp.print(c)
	}

	predicate := cp.predicate
	if predicate == nil {
		predicate = search.All()
	}
	var matches []search.Match
	for m := range search.Search(c.Traces, predicate) {
		matches = append(matches, m)
	}
	cp.metrics.MatchedSpans.Add(float64(len(matches)))

	if cp.sink != nil && len(matches) > 0 {
		createdAt := time.Now().UTC()
		docs := make([]esModel.SpanDocument, len(matches))
		for i, m := range matches {
			docs[i] = esModel.NewSpanDocument(c.ID, m, createdAt)
		}
		cp.sink.WriteToBuffer(docs)
	}

	if cp.predicate == nil {
		return cp.print(c)
	}
	if len(matches) == 0 {
		return nil
	}
	return cp.write(c.ID, format.Matches(slices.Values(matches), cp.mode))
}

func (cp *CapturePipeline) print(c *capture.Capture) error {
	text, err := format.Any(c.Export(), cp.mode)
	if err != nil {
		return err
	}
	return cp.write(c.ID, text)
}

func (cp *CapturePipeline) write(id string, text string) error {
	if cp.out == nil || text == "" {
		return nil
	}
	cp.outMu.Lock()
	defer cp.outMu.Unlock()
	if cp.mode == format.ModePretty {
		if _, err := fmt.Fprintf(cp.out, "# capture %s\n", id); err != nil {
			return err
		}
	}
	_, err := io.WriteString(cp.out, text)
	return err
}
