package capture

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"strings"
	"time"
)

type Signal string

const (
	SignalTraces  Signal = "traces"
	SignalMetrics Signal = "metrics"
	SignalLogs    Signal = "logs"
)

func ParseSignal(s string) (Signal, error) {
	switch sig := Signal(strings.ToLower(s)); sig {
	case SignalTraces, SignalMetrics, SignalLogs:
		return sig, nil
	}
	return "", fmt.Errorf("unknown signal %q (expect traces, metrics or logs)", s)
}

// Capture is one received payload after decoding. Exactly one of Traces,
// Metrics and Logs is set, matching Signal.
type Capture struct {
	ID         string
	Signal     Signal
	Transport  string
	ReceivedAt time.Time
	Size       int
	Traces     *model.TraceExport
	Metrics    *model.MetricsExport
	Logs       *model.LogsExport
}

// Items counts spans, metrics or log records depending on the signal.
func (c *Capture) Items() int {
	switch {
	case c.Traces != nil:
		return c.Traces.SpanCount()
	case c.Metrics != nil:
		return c.Metrics.MetricCount()
	case c.Logs != nil:
		return c.Logs.RecordCount()
	}
	return 0
}

func (c *Capture) Export() any {
	switch c.Signal {
	case SignalMetrics:
		return c.Metrics
	case SignalLogs:
		return c.Logs
	default:
		return c.Traces
	}
}

func (c *Capture) Summary() Summary {
	return Summary{
		ID:         c.ID,
		Signal:     c.Signal,
		Transport:  c.Transport,
		ReceivedAt: c.ReceivedAt,
		Size:       c.Size,
		Items:      c.Items(),
	}
}

// Summary is the serialisable description of a capture published on the
// event bus and listed by the query API.
type Summary struct {
	ID         string    `json:"id"`
	Signal     Signal    `json:"signal"`
	Transport  string    `json:"transport"`
	ReceivedAt time.Time `json:"received_at"`
	Size       int       `json:"size"`
	Items      int       `json:"items"`
}
