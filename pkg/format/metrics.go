package format

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"strconv"
	"strings"
)

// Metrics renders a decoded metrics export. Compact mode prints one line per
// data point: name, type, timestamp, value.
func Metrics(export *model.MetricsExport, mode Mode) string {
	if mode == ModeCompact {
		var sb strings.Builder
		for _, rm := range export.ResourceMetrics {
			for _, sm := range rm.ScopeMetrics {
				for i := range sm.Metrics {
					writeMetricLines(&sb, &sm.Metrics[i])
				}
			}
		}
		return sb.String()
	}

	w := &writer{}
	for i, rm := range export.ResourceMetrics {
		w.nest(fmt.Sprintf("resource_metrics[%d]:", i), func() {
			w.schemaURL(rm.SchemaURL)
			w.resource(rm.Resource)
			for j, sm := range rm.ScopeMetrics {
				w.nest(fmt.Sprintf("scope_metrics[%d]:", j), func() {
					w.schemaURL(sm.SchemaURL)
					w.scope(sm.Scope)
					for k := range sm.Metrics {
						w.nest(fmt.Sprintf("metric[%d]:", k), func() {
							w.metric(&sm.Metrics[k])
						})
					}
				})
			}
		})
	}
	return w.String()
}

func writeMetricLines(sb *strings.Builder, m *model.Metric) {
	line := func(ts uint64, value string) {
		sb.WriteString(strings.Join([]string{CompactField(m.Name), m.Type.String(), Timestamp(ts), value}, "\t"))
		sb.WriteByte('\n')
	}
	for _, dp := range m.NumberDataPoints {
		line(dp.TimeUnixNano, Value(dp.Value))
	}
	for _, dp := range m.HistogramDataPoints {
		line(dp.TimeUnixNano, fmt.Sprintf("count=%d sum=%s", dp.Count, optionalDouble(dp.Sum)))
	}
	for _, dp := range m.ExponentialHistogramDataPoints {
		line(dp.TimeUnixNano, fmt.Sprintf("count=%d sum=%s scale=%d", dp.Count, optionalDouble(dp.Sum), dp.Scale))
	}
	for _, dp := range m.SummaryDataPoints {
		line(dp.TimeUnixNano, fmt.Sprintf("count=%d sum=%s", dp.Count, formatDouble(dp.Sum)))
	}
}

func optionalDouble(f *float64) string {
	if f == nil {
		return "-"
	}
	return formatDouble(*f)
}

func doubles(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatDouble(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func counts(values []uint64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (w *writer) metric(m *model.Metric) {
	w.line("name: %q", m.Name)
	if m.Description != "" {
		w.line("description: %q", m.Description)
	}
	if m.Unit != "" {
		w.line("unit: %q", m.Unit)
	}
	w.line("type: %s", m.Type)
	switch m.Type {
	case model.MetricTypeSum:
		w.line("aggregation_temporality: %s", m.AggregationTemporality)
		w.line("monotonic: %t", m.IsMonotonic)
	case model.MetricTypeHistogram, model.MetricTypeExponentialHistogram:
		w.line("aggregation_temporality: %s", m.AggregationTemporality)
	}
	w.attributes("metadata", m.Metadata, 0)

	for i, dp := range m.NumberDataPoints {
		w.nest(fmt.Sprintf("data_point[%d]:", i), func() {
			w.pointTimes(dp.StartTimeUnixNano, dp.TimeUnixNano)
			w.line("value: %s", Value(dp.Value))
			w.attributes("attributes", dp.Attributes, 0)
			w.exemplars(dp.Exemplars)
		})
	}
	for i, dp := range m.HistogramDataPoints {
		w.nest(fmt.Sprintf("data_point[%d]:", i), func() {
			w.pointTimes(dp.StartTimeUnixNano, dp.TimeUnixNano)
			w.line("count: %d", dp.Count)
			w.line("sum: %s", optionalDouble(dp.Sum))
			w.line("min: %s", optionalDouble(dp.Min))
			w.line("max: %s", optionalDouble(dp.Max))
			w.line("bucket_counts: %s", counts(dp.BucketCounts))
			w.line("explicit_bounds: %s", doubles(dp.ExplicitBounds))
			w.attributes("attributes", dp.Attributes, 0)
			w.exemplars(dp.Exemplars)
		})
	}
	for i, dp := range m.ExponentialHistogramDataPoints {
		w.nest(fmt.Sprintf("data_point[%d]:", i), func() {
			w.pointTimes(dp.StartTimeUnixNano, dp.TimeUnixNano)
			w.line("count: %d", dp.Count)
			w.line("sum: %s", optionalDouble(dp.Sum))
			w.line("min: %s", optionalDouble(dp.Min))
			w.line("max: %s", optionalDouble(dp.Max))
			w.line("scale: %d", dp.Scale)
			w.line("zero_count: %d", dp.ZeroCount)
			w.line("zero_threshold: %s", formatDouble(dp.ZeroThreshold))
			w.line("positive: offset=%d counts=%s", dp.Positive.Offset, counts(dp.Positive.BucketCounts))
			w.line("negative: offset=%d counts=%s", dp.Negative.Offset, counts(dp.Negative.BucketCounts))
			w.attributes("attributes", dp.Attributes, 0)
			w.exemplars(dp.Exemplars)
		})
	}
	for i, dp := range m.SummaryDataPoints {
		w.nest(fmt.Sprintf("data_point[%d]:", i), func() {
			w.pointTimes(dp.StartTimeUnixNano, dp.TimeUnixNano)
			w.line("count: %d", dp.Count)
			w.line("sum: %s", formatDouble(dp.Sum))
			for _, q := range dp.QuantileValues {
				w.line("quantile %s: %s", formatDouble(q.Quantile), formatDouble(q.Value))
			}
			w.attributes("attributes", dp.Attributes, 0)
		})
	}
}

func (w *writer) pointTimes(start, ts uint64) {
	if start != 0 {
		w.line("start: %s", Timestamp(start))
	}
	w.line("time: %s", Timestamp(ts))
}

func (w *writer) exemplars(exemplars []model.Exemplar) {
	for i, ex := range exemplars {
		w.nest(fmt.Sprintf("exemplar[%d]:", i), func() {
			w.line("time: %s", Timestamp(ex.TimeUnixNano))
			w.line("value: %s", Value(ex.Value))
			if !ex.TraceID.IsEmpty() {
				w.line("trace_id: %s", ex.TraceID)
			}
			if !ex.SpanID.IsEmpty() {
				w.line("span_id: %s", ex.SpanID)
			}
			w.attributes("filtered_attributes", ex.FilteredAttributes, 0)
		})
	}
}
