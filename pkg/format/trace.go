package format

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/Frefreak/otlp-toolkit/pkg/search"
	"iter"
	"strconv"
	"strings"
	"unicode"
)

// CompactHeader names the tab separated columns of compact span lines.
const CompactHeader = "trace_id\tspan_id\tname\tstart\tduration\tstatus"

// Traces renders a decoded export. Compact mode prints one line per span.
func Traces(export *model.TraceExport, mode Mode) string {
	if mode == ModeCompact {
		var sb strings.Builder
		for _, rs := range export.ResourceSpans {
			for _, ss := range rs.ScopeSpans {
				for i := range ss.Spans {
					sb.WriteString(SpanLine(&ss.Spans[i]))
					sb.WriteByte('\n')
				}
			}
		}
		return sb.String()
	}

	w := &writer{}
	for i, rs := range export.ResourceSpans {
		w.nest(fmt.Sprintf("resource_spans[%d]:", i), func() {
			w.schemaURL(rs.SchemaURL)
			w.resource(rs.Resource)
			for j, ss := range rs.ScopeSpans {
				w.nest(fmt.Sprintf("scope_spans[%d]:", j), func() {
					w.schemaURL(ss.SchemaURL)
					w.scope(ss.Scope)
					for k := range ss.Spans {
						w.nest(fmt.Sprintf("span[%d]:", k), func() {
							w.span(&ss.Spans[k])
						})
					}
				})
			}
		})
	}
	return w.String()
}

// SpanLine is the compact single line form of a span.
func SpanLine(s *model.Span) string {
	return strings.Join([]string{
		s.TraceID.String(),
		s.SpanID.String(),
		CompactField(s.Name),
		Timestamp(s.StartTimeUnixNano),
		s.Duration().String(),
		s.Status.Code.String(),
	}, "\t")
}

// CompactField keeps s on one tab separated column. Text with tabs,
// newlines, quotes, backslashes or other unprintable runes is quoted.
func CompactField(s string) string {
	for _, r := range s {
		if r == '\t' || r == '"' || r == '\\' || !unicode.IsPrint(r) {
			return strconv.Quote(s)
		}
	}
	return s
}

// Matches renders search results. Pretty mode shows each span with the
// resource and scope it was found under.
func Matches(matches iter.Seq[search.Match], mode Mode) string {
	if mode == ModeCompact {
		var sb strings.Builder
		for m := range matches {
			sb.WriteString(SpanLine(m.Span))
			sb.WriteByte('\n')
		}
		return sb.String()
	}

	w := &writer{}
	i := 0
	for m := range matches {
		w.nest(fmt.Sprintf("match[%d]:", i), func() {
			w.resource(m.Resource)
			w.scope(m.Scope)
			w.nest("span:", func() {
				w.span(m.Span)
			})
		})
		i++
	}
	return w.String()
}

func (w *writer) span(s *model.Span) {
	w.line("name: %q", s.Name)
	w.line("trace_id: %s", s.TraceID)
	w.line("span_id: %s", s.SpanID)
	if s.HasParent() {
		w.line("parent_span_id: %s", s.ParentSpanID)
	}
	if s.TraceState != "" {
		w.line("trace_state: %q", s.TraceState)
	}
	if s.Flags != 0 {
		w.line("flags: 0x%08x", s.Flags)
	}
	w.line("kind: %s", s.Kind)
	w.line("start: %s", Timestamp(s.StartTimeUnixNano))
	w.line("end: %s", Timestamp(s.EndTimeUnixNano))
	w.line("duration: %s", s.Duration())
	if s.Status.Message != "" {
		w.line("status: %s %q", s.Status.Code, s.Status.Message)
	} else {
		w.line("status: %s", s.Status.Code)
	}
	w.attributes("attributes", s.Attributes, s.DroppedAttributesCount)
	if len(s.Events) > 0 {
		w.nest("events:", func() {
			for _, ev := range s.Events {
				w.nest(fmt.Sprintf("- %s %q", Timestamp(ev.TimeUnixNano), ev.Name), func() {
					w.attributes("attributes", ev.Attributes, ev.DroppedAttributesCount)
				})
			}
		})
	}
	if s.DroppedEventsCount > 0 {
		w.line("dropped_events_count: %d", s.DroppedEventsCount)
	}
	if len(s.Links) > 0 {
		w.nest("links:", func() {
			for _, link := range s.Links {
				w.nest(fmt.Sprintf("- %s/%s", link.TraceID, link.SpanID), func() {
					if link.TraceState != "" {
						w.line("trace_state: %q", link.TraceState)
					}
					if link.Flags != 0 {
						w.line("flags: 0x%08x", link.Flags)
					}
					w.attributes("attributes", link.Attributes, link.DroppedAttributesCount)
				})
			}
		})
	}
	if s.DroppedLinksCount > 0 {
		w.line("dropped_links_count: %d", s.DroppedLinksCount)
	}
}
