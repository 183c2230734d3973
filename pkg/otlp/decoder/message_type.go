package decoder

import (
	"errors"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/wire"
	"strings"
)

// MessageType selects the schema a payload is decoded against.
type MessageType int

const (
	MessageTypeDirect MessageType = iota
	MessageTypeSpan
	MessageTypeMetric
	MessageTypeLogRecord
	MessageTypeScopeSpans
	MessageTypeScopeMetrics
	MessageTypeScopeLogs
	MessageTypeResource
	MessageTypeResourceSpans
	MessageTypeResourceMetrics
	MessageTypeResourceLogs
	MessageTypeExportTraceServiceRequest
	MessageTypeExportMetricsServiceRequest
	MessageTypeExportLogsServiceRequest
)

var messageTypeNames = []string{
	"Direct",
	"Span",
	"Metric",
	"LogRecord",
	"ScopeSpans",
	"ScopeMetrics",
	"ScopeLogs",
	"Resource",
	"ResourceSpans",
	"ResourceMetrics",
	"ResourceLogs",
	"ExportTraceServiceRequest",
	"ExportMetricsServiceRequest",
	"ExportLogsServiceRequest",
}

func (t MessageType) String() string {
	if t >= 0 && int(t) < len(messageTypeNames) {
		return messageTypeNames[t]
	}
	return fmt.Sprintf("MessageType(%d)", int(t))
}

// MessageTypes returns every supported type in listing order.
func MessageTypes() []MessageType {
	types := make([]MessageType, len(messageTypeNames))
	for i := range types {
		types[i] = MessageType(i)
	}
	return types
}

func ParseMessageType(name string) (MessageType, error) {
	for i, n := range messageTypeNames {
		if strings.EqualFold(n, name) {
			return MessageType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMessageType, name)
}

// Decode decodes b as a message of type t. The concrete result is a pointer
// to the matching model type, or []wire.RawField for MessageTypeDirect.
func (d *Decoder) Decode(t MessageType, b []byte) (any, error) {
	switch t {
	case MessageTypeDirect:
		return d.DecodeRaw(b)
	case MessageTypeExportTraceServiceRequest:
		return d.DecodeTraces(b)
	case MessageTypeExportMetricsServiceRequest:
		return d.DecodeMetrics(b)
	case MessageTypeExportLogsServiceRequest:
		return d.DecodeLogs(b)
	case MessageTypeSpan:
		return decodeRoot(d, b, d.readSpan)
	case MessageTypeMetric:
		return decodeRoot(d, b, d.readMetric)
	case MessageTypeLogRecord:
		return decodeRoot(d, b, d.readLogRecord)
	case MessageTypeScopeSpans:
		return decodeRoot(d, b, d.readScopeSpans)
	case MessageTypeScopeMetrics:
		return decodeRoot(d, b, d.readScopeMetrics)
	case MessageTypeScopeLogs:
		return decodeRoot(d, b, d.readScopeLogs)
	case MessageTypeResource:
		res, err := d.readResource(d.reader(b))
		if err != nil {
			return nil, err
		}
		return res, nil
	case MessageTypeResourceSpans:
		return decodeRoot(d, b, d.readResourceSpans)
	case MessageTypeResourceMetrics:
		return decodeRoot(d, b, d.readResourceMetrics)
	case MessageTypeResourceLogs:
		return decodeRoot(d, b, d.readResourceLogs)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownMessageType, int(t))
}

func decodeRoot[T any](d *Decoder, b []byte, read func(*wire.Reader) (T, error)) (*T, error) {
	v, err := read(d.reader(b))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

var ErrUnknownMessageType = errors.New("unknown message type")
