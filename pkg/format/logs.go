package format

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"strings"
)

// Logs renders a decoded logs export. Compact lines are time, severity,
// trace id, span id and body.
func Logs(export *model.LogsExport, mode Mode) string {
	if mode == ModeCompact {
		var sb strings.Builder
		for _, rl := range export.ResourceLogs {
			for _, sl := range rl.ScopeLogs {
				for _, rec := range sl.LogRecords {
					sb.WriteString(strings.Join([]string{
						Timestamp(rec.TimeUnixNano),
						severity(&rec),
						rec.TraceID.String(),
						rec.SpanID.String(),
						Value(rec.Body),
					}, "\t"))
					sb.WriteByte('\n')
				}
			}
		}
		return sb.String()
	}

	w := &writer{}
	for i, rl := range export.ResourceLogs {
		w.nest(fmt.Sprintf("resource_logs[%d]:", i), func() {
			w.schemaURL(rl.SchemaURL)
			w.resource(rl.Resource)
			for j, sl := range rl.ScopeLogs {
				w.nest(fmt.Sprintf("scope_logs[%d]:", j), func() {
					w.schemaURL(sl.SchemaURL)
					w.scope(sl.Scope)
					for k := range sl.LogRecords {
						w.nest(fmt.Sprintf("log_record[%d]:", k), func() {
							w.logRecord(&sl.LogRecords[k])
						})
					}
				})
			}
		})
	}
	return w.String()
}

func severity(rec *model.LogRecord) string {
	if rec.SeverityText != "" {
		return CompactField(rec.SeverityText)
	}
	return rec.SeverityNumber.String()
}

func (w *writer) logRecord(rec *model.LogRecord) {
	w.line("time: %s", Timestamp(rec.TimeUnixNano))
	w.line("observed_time: %s", Timestamp(rec.ObservedTimeUnixNano))
	w.line("severity: %s (%d) %q", rec.SeverityNumber, int32(rec.SeverityNumber), rec.SeverityText)
	if rec.EventName != "" {
		w.line("event_name: %q", rec.EventName)
	}
	w.line("body: %s", Value(rec.Body))
	if !rec.TraceID.IsEmpty() {
		w.line("trace_id: %s", rec.TraceID)
	}
	if !rec.SpanID.IsEmpty() {
		w.line("span_id: %s", rec.SpanID)
	}
	if rec.Flags != 0 {
		w.line("flags: 0x%08x", rec.Flags)
	}
	w.attributes("attributes", rec.Attributes, rec.DroppedAttributesCount)
}
