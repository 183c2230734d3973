package model

// TraceExport is the decoded form of an ExportTraceServiceRequest.
type TraceExport struct {
	ResourceSpans []ResourceSpans
}

type ResourceSpans struct {
	Resource   *Resource
	ScopeSpans []ScopeSpans
	SchemaURL  string
}

type ScopeSpans struct {
	Scope     *InstrumentationScope
	Spans     []Span
	SchemaURL string
}

func (t *TraceExport) SpanCount() int {
	count := 0
	for _, rs := range t.ResourceSpans {
		for _, ss := range rs.ScopeSpans {
			count += len(ss.Spans)
		}
	}
	return count
}
