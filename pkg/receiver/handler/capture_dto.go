package handler

import "time"

// CaptureSummaryDTO describes a stored capture
// @swagger:model CaptureSummaryDTO
type CaptureSummaryDTO struct {
	// The capture id, used by /captures/{id} and /search
	Id string `json:"id"`
	// traces, metrics or logs
	Signal string `json:"signal"`
	// grpc, http or kafka
	Transport  string    `json:"transport"`
	ReceivedAt time.Time `json:"received_at"`
	// Payload size in bytes
	Size int `json:"size"`
	// Spans, metrics or log records in the capture
	Items int `json:"items"`
}

// CapturesResponseDTO lists the captures still held by the receiver
// @swagger:model CapturesResponseDTO
type CapturesResponseDTO struct {
	Captures []CaptureSummaryDTO `json:"captures"`
}

// SearchRequestDTO selects spans with a query expression
// @swagger:model SearchRequestDTO
type SearchRequestDTO struct {
	// The query, empty matches every span
	Query string `json:"query"`
	// Restricts the search to one capture when set
	CaptureId string `json:"capture_id,omitempty"`
}

// SpanDTO is a matched span with its resource and scope context
// @swagger:model SpanDTO
type SpanDTO struct {
	CaptureId          string            `json:"capture_id"`
	TraceId            string            `json:"trace_id"`
	SpanId             string            `json:"span_id"`
	ParentSpanId       string            `json:"parent_span_id,omitempty"`
	Name               string            `json:"name"`
	Kind               string            `json:"kind"`
	StartTime          time.Time         `json:"start_time"`
	EndTime            time.Time         `json:"end_time"`
	DurationNanos      int64             `json:"duration_nanos"`
	StatusCode         string            `json:"status_code"`
	StatusMessage      string            `json:"status_message,omitempty"`
	Scope              string            `json:"scope,omitempty"`
	Attributes         map[string]string `json:"attributes,omitempty"`
	ResourceAttributes map[string]string `json:"resource_attributes,omitempty"`
}

// SearchResponseDTO holds the matching spans in capture order
// @swagger:model SearchResponseDTO
type SearchResponseDTO struct {
	Spans []SpanDTO `json:"spans"`
}
