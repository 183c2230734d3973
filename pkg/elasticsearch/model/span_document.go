package model

import (
	"github.com/Frefreak/otlp-toolkit/pkg/format"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/Frefreak/otlp-toolkit/pkg/search"
	"time"
)

const serviceNameKey = "service.name"

// SpanDocument is the flattened form of a matched span in the span index.
// Attribute values are rendered with the formatter so their type stays visible.
type SpanDocument struct {
	CaptureId          string            `json:"capture_id"`
	CreatedAt          time.Time         `json:"created_at"`
	TraceId            string            `json:"trace_id"`
	SpanId             string            `json:"span_id"`
	ParentSpanId       string            `json:"parent_span_id,omitempty"`
	Service            string            `json:"service,omitempty"`
	Scope              string            `json:"scope,omitempty"`
	Name               string            `json:"name"`
	Kind               string            `json:"kind"`
	StartTime          time.Time         `json:"start_time"`
	EndTime            time.Time         `json:"end_time"`
	DurationNanos      int64             `json:"duration_nanos"`
	StatusCode         string            `json:"status_code"`
	StatusMessage      string            `json:"status_message,omitempty"`
	Attributes         map[string]string `json:"attributes,omitempty"`
	ResourceAttributes map[string]string `json:"resource_attributes,omitempty"`
}

// NewSpanDocument flattens a search match.
func NewSpanDocument(captureID string, m search.Match, createdAt time.Time) SpanDocument {
	s := m.Span
	doc := SpanDocument{
		CaptureId:     captureID,
		CreatedAt:     createdAt,
		TraceId:       s.TraceID.String(),
		SpanId:        s.SpanID.String(),
		Name:          s.Name,
		Kind:          s.Kind.String(),
		StartTime:     s.StartTime(),
		EndTime:       s.EndTime(),
		DurationNanos: int64(s.Duration()),
		StatusCode:    s.Status.Code.String(),
		StatusMessage: s.Status.Message,
		Attributes:    flatten(s.Attributes),
	}
	if s.HasParent() {
		doc.ParentSpanId = s.ParentSpanID.String()
	}
	if m.Scope != nil {
		doc.Scope = m.Scope.Name
	}
	if m.Resource != nil {
		doc.ResourceAttributes = flatten(m.Resource.Attributes)
		if v, ok := m.Resource.Attributes.Get(serviceNameKey); ok {
			if name, ok := v.AsString(); ok {
				doc.Service = name
			}
		}
	}
	return doc
}

// DocumentID is the trace and span id pair, so indexing the same span twice
// overwrites the first document.
func (d SpanDocument) DocumentID() string {
	return d.TraceId + d.SpanId
}

func flatten(attrs model.Attributes) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		if s, ok := kv.Value.AsString(); ok {
			out[kv.Key] = s
		} else {
			out[kv.Key] = format.Value(kv.Value)
		}
	}
	return out
}
