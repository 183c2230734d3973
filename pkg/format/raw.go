package format

import (
	"encoding/hex"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/wire"
	"google.golang.org/protobuf/encoding/protowire"
	"math"
	"strconv"
)

// Raw renders a schema-less dump in the style of protoc --decode_raw.
// Compact mode is not distinct for raw dumps.
func Raw(fields []wire.RawField) string {
	w := &writer{}
	w.rawFields(fields)
	return w.String()
}

func (w *writer) rawFields(fields []wire.RawField) {
	for _, f := range fields {
		switch {
		case f.Type == protowire.StartGroupType:
			w.nest(fmt.Sprintf("%d {", f.Number), func() {
				w.rawFields(f.Group)
			})
			w.line("}")
		case f.Type == protowire.BytesType && f.Message != nil:
			w.nest(fmt.Sprintf("%d {", f.Number), func() {
				w.rawFields(f.Message)
			})
			w.line("}")
		case f.Type == protowire.BytesType && f.Text:
			w.line("%d: %s", f.Number, strconv.Quote(string(f.Bytes)))
		case f.Type == protowire.BytesType:
			w.line("%d: bytes:%s", f.Number, hex.EncodeToString(f.Bytes))
		case f.Type == protowire.VarintType:
			w.line("%d: %d", f.Number, f.Varint)
		case f.Type == protowire.Fixed64Type:
			w.line("%d: 0x%016x (%s)", f.Number, f.Fixed, formatDouble(math.Float64frombits(f.Fixed)))
		case f.Type == protowire.Fixed32Type:
			w.line("%d: 0x%08x (%s)", f.Number, f.Fixed, strconv.FormatFloat(float64(math.Float32frombits(uint32(f.Fixed))), 'g', -1, 32))
		}
	}
}

// Any renders the result of decoder.Decode.
func Any(v any, mode Mode) (string, error) {
	switch t := v.(type) {
	case *model.TraceExport:
		return Traces(t, mode), nil
	case *model.MetricsExport:
		return Metrics(t, mode), nil
	case *model.LogsExport:
		return Logs(t, mode), nil
	case []wire.RawField:
		return Raw(t), nil
	case *model.Span:
		return Traces(&model.TraceExport{ResourceSpans: []model.ResourceSpans{{
			ScopeSpans: []model.ScopeSpans{{Spans: []model.Span{*t}}},
		}}}, mode), nil
	case *model.ScopeSpans:
		return Traces(&model.TraceExport{ResourceSpans: []model.ResourceSpans{{ScopeSpans: []model.ScopeSpans{*t}}}}, mode), nil
	case *model.ResourceSpans:
		return Traces(&model.TraceExport{ResourceSpans: []model.ResourceSpans{*t}}, mode), nil
	case *model.Metric:
		return Metrics(&model.MetricsExport{ResourceMetrics: []model.ResourceMetrics{{
			ScopeMetrics: []model.ScopeMetrics{{Metrics: []model.Metric{*t}}},
		}}}, mode), nil
	case *model.ScopeMetrics:
		return Metrics(&model.MetricsExport{ResourceMetrics: []model.ResourceMetrics{{ScopeMetrics: []model.ScopeMetrics{*t}}}}, mode), nil
	case *model.ResourceMetrics:
		return Metrics(&model.MetricsExport{ResourceMetrics: []model.ResourceMetrics{*t}}, mode), nil
	case *model.LogRecord:
		return Logs(&model.LogsExport{ResourceLogs: []model.ResourceLogs{{
			ScopeLogs: []model.ScopeLogs{{LogRecords: []model.LogRecord{*t}}},
		}}}, mode), nil
	case *model.ScopeLogs:
		return Logs(&model.LogsExport{ResourceLogs: []model.ResourceLogs{{ScopeLogs: []model.ScopeLogs{*t}}}}, mode), nil
	case *model.ResourceLogs:
		return Logs(&model.LogsExport{ResourceLogs: []model.ResourceLogs{*t}}, mode), nil
	case *model.Resource:
		w := &writer{}
		w.resource(t)
		return w.String(), nil
	}
	return "", fmt.Errorf("cannot format %T", v)
}
