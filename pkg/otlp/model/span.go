package model

import (
	"math"
	"strings"
	"time"
)

type SpanKind int32

const (
	SpanKindUnspecified SpanKind = iota
	SpanKindInternal
	SpanKindServer
	SpanKindClient
	SpanKindProducer
	SpanKindConsumer
)

var spanKindNames = map[SpanKind]string{
	SpanKindUnspecified: "unspecified",
	SpanKindInternal:    "internal",
	SpanKindServer:      "server",
	SpanKindClient:      "client",
	SpanKindProducer:    "producer",
	SpanKindConsumer:    "consumer",
}

func (k SpanKind) String() string {
	if name, ok := spanKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseSpanKind accepts the short names as well as the SPAN_KIND_* enum names.
func ParseSpanKind(s string) (SpanKind, bool) {
	s = strings.TrimPrefix(strings.ToLower(s), "span_kind_")
	for kind, name := range spanKindNames {
		if name == s {
			return kind, true
		}
	}
	return SpanKindUnspecified, false
}

type StatusCode int32

const (
	StatusCodeUnset StatusCode = iota
	StatusCodeOk
	StatusCodeError
)

func (c StatusCode) String() string {
	switch c {
	case StatusCodeUnset:
		return "unset"
	case StatusCodeOk:
		return "ok"
	case StatusCodeError:
		return "error"
	default:
		return "unknown"
	}
}

func ParseStatusCode(s string) (StatusCode, bool) {
	switch strings.TrimPrefix(strings.ToLower(s), "status_code_") {
	case "unset":
		return StatusCodeUnset, true
	case "ok":
		return StatusCodeOk, true
	case "error":
		return StatusCodeError, true
	}
	return StatusCodeUnset, false
}

type Status struct {
	Code    StatusCode
	Message string
}

type Span struct {
	TraceID                TraceID
	SpanID                 SpanID
	TraceState             string
	ParentSpanID           SpanID
	Flags                  uint32
	Name                   string
	Kind                   SpanKind
	StartTimeUnixNano      uint64
	EndTimeUnixNano        uint64
	Attributes             Attributes
	DroppedAttributesCount uint32
	Events                 []Event
	DroppedEventsCount     uint32
	Links                  []Link
	DroppedLinksCount      uint32
	Status                 Status
}

func (s *Span) HasParent() bool {
	return !s.ParentSpanID.IsEmpty()
}

// Duration is zero when the end precedes the start and saturates at the
// largest representable time.Duration.
func (s *Span) Duration() time.Duration {
	if s.EndTimeUnixNano <= s.StartTimeUnixNano {
		return 0
	}
	d := s.EndTimeUnixNano - s.StartTimeUnixNano
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

func (s *Span) StartTime() time.Time {
	return UnixNano(s.StartTimeUnixNano)
}

func (s *Span) EndTime() time.Time {
	return UnixNano(s.EndTimeUnixNano)
}

type Event struct {
	TimeUnixNano           uint64
	Name                   string
	Attributes             Attributes
	DroppedAttributesCount uint32
}

type Link struct {
	TraceID                TraceID
	SpanID                 SpanID
	TraceState             string
	Attributes             Attributes
	DroppedAttributesCount uint32
	Flags                  uint32
}

// UnixNano converts an OTLP timestamp, clamping values past the int64 range.
func UnixNano(ns uint64) time.Time {
	if ns > math.MaxInt64 {
		ns = math.MaxInt64
	}
	return time.Unix(0, int64(ns)).UTC()
}
