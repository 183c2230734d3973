package handler

import (
	"errors"
	"github.com/Frefreak/otlp-toolkit/pkg/capture"
	"github.com/Frefreak/otlp-toolkit/pkg/format"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/Frefreak/otlp-toolkit/pkg/receiver/service"
)

var ErrNoQueryBody = errors.New("request body must be a JSON object")

func toCaptureSummaryDTO(s capture.Summary) CaptureSummaryDTO {
	return CaptureSummaryDTO{
		Id:         s.ID,
		Signal:     string(s.Signal),
		Transport:  s.Transport,
		ReceivedAt: s.ReceivedAt,
		Size:       s.Size,
		Items:      s.Items,
	}
}

func toSpanDTO(cm service.CaptureMatch) SpanDTO {
	s := cm.Match.Span
	dto := SpanDTO{
		CaptureId:     cm.CaptureID,
		TraceId:       s.TraceID.String(),
		SpanId:        s.SpanID.String(),
		Name:          s.Name,
		Kind:          s.Kind.String(),
		StartTime:     s.StartTime(),
		EndTime:       s.EndTime(),
		DurationNanos: int64(s.Duration()),
		StatusCode:    s.Status.Code.String(),
		StatusMessage: s.Status.Message,
		Attributes:    attributeStrings(s.Attributes),
	}
	if s.HasParent() {
		dto.ParentSpanId = s.ParentSpanID.String()
	}
	if cm.Match.Scope != nil {
		dto.Scope = cm.Match.Scope.Name
	}
	if cm.Match.Resource != nil {
		dto.ResourceAttributes = attributeStrings(cm.Match.Resource.Attributes)
	}
	return dto
}

func attributeStrings(attrs model.Attributes) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		out[kv.Key] = format.Value(kv.Value)
	}
	return out
}
