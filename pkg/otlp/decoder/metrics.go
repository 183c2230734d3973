package decoder

import (
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/wire"
	"math"
)

func (d *Decoder) resourceMetrics(r *wire.Reader, f wire.Field) (model.ResourceMetrics, error) {
	return nested(r, f, d.readResourceMetrics)
}

func (d *Decoder) readResourceMetrics(r *wire.Reader) (model.ResourceMetrics, error) {
	var rm model.ResourceMetrics
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return rm, err
		}
		switch f.Number {
		case 1:
			rm.Resource, err = nested(r, f, d.readResource)
		case 2:
			var sm model.ScopeMetrics
			if sm, err = nested(r, f, d.readScopeMetrics); err == nil {
				rm.ScopeMetrics = append(rm.ScopeMetrics, sm)
			}
		case 3:
			rm.SchemaURL, err = r.String(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return rm, err
		}
	}
	return rm, nil
}

func (d *Decoder) readScopeMetrics(r *wire.Reader) (model.ScopeMetrics, error) {
	var sm model.ScopeMetrics
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return sm, err
		}
		switch f.Number {
		case 1:
			sm.Scope, err = nested(r, f, d.readScope)
		case 2:
			var m model.Metric
			if m, err = nested(r, f, d.readMetric); err == nil {
				sm.Metrics = append(sm.Metrics, m)
			}
		case 3:
			sm.SchemaURL, err = r.String(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return sm, err
		}
	}
	return sm, nil
}

// readMetric decodes a Metric. When several data variants are present the
// last one on the wire wins, matching protobuf oneof semantics.
func (d *Decoder) readMetric(r *wire.Reader) (model.Metric, error) {
	var m model.Metric
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return m, err
		}
		switch f.Number {
		case 1:
			m.Name, err = r.String(f)
		case 2:
			m.Description, err = r.String(f)
		case 3:
			m.Unit, err = r.String(f)
		case 5, 7, 9, 10, 11:
			resetData(&m)
			err = d.metricData(r, f, &m)
		case 12:
			m.Metadata, err = d.appendKeyValue(m.Metadata, r, f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return m, err
		}
	}
	return m, nil
}

func resetData(m *model.Metric) {
	m.AggregationTemporality = model.AggregationTemporalityUnspecified
	m.IsMonotonic = false
	m.NumberDataPoints = nil
	m.HistogramDataPoints = nil
	m.ExponentialHistogramDataPoints = nil
	m.SummaryDataPoints = nil
}

func (d *Decoder) metricData(parent *wire.Reader, field wire.Field, m *model.Metric) error {
	r, err := parent.Message(field)
	if err != nil {
		return err
	}
	switch field.Number {
	case 5:
		m.Type = model.MetricTypeGauge
	case 7:
		m.Type = model.MetricTypeSum
	case 9:
		m.Type = model.MetricTypeHistogram
	case 10:
		m.Type = model.MetricTypeExponentialHistogram
	case 11:
		m.Type = model.MetricTypeSummary
	}
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return err
		}
		switch {
		case f.Number == 1:
			err = d.appendDataPoint(r, f, m)
		case f.Number == 2 && m.Type != model.MetricTypeGauge && m.Type != model.MetricTypeSummary:
			var t int32
			t, err = r.Int32(f)
			m.AggregationTemporality = model.AggregationTemporality(t)
		case f.Number == 3 && m.Type == model.MetricTypeSum:
			m.IsMonotonic, err = r.Bool(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) appendDataPoint(r *wire.Reader, f wire.Field, m *model.Metric) error {
	switch m.Type {
	case model.MetricTypeGauge, model.MetricTypeSum:
		dp, err := nested(r, f, d.readNumberDataPoint)
		if err != nil {
			return err
		}
		m.NumberDataPoints = append(m.NumberDataPoints, dp)
	case model.MetricTypeHistogram:
		dp, err := nested(r, f, d.readHistogramDataPoint)
		if err != nil {
			return err
		}
		m.HistogramDataPoints = append(m.HistogramDataPoints, dp)
	case model.MetricTypeExponentialHistogram:
		dp, err := nested(r, f, d.readExponentialHistogramDataPoint)
		if err != nil {
			return err
		}
		m.ExponentialHistogramDataPoints = append(m.ExponentialHistogramDataPoints, dp)
	case model.MetricTypeSummary:
		dp, err := nested(r, f, d.readSummaryDataPoint)
		if err != nil {
			return err
		}
		m.SummaryDataPoints = append(m.SummaryDataPoints, dp)
	}
	return nil
}

func (d *Decoder) readNumberDataPoint(r *wire.Reader) (model.NumberDataPoint, error) {
	var dp model.NumberDataPoint
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return dp, err
		}
		switch f.Number {
		case 2:
			dp.StartTimeUnixNano, err = r.Fixed64(f)
		case 3:
			dp.TimeUnixNano, err = r.Fixed64(f)
		case 4:
			var v float64
			if v, err = d.double(r, f); err == nil {
				dp.Value = model.DoubleValue(v)
			}
		case 5:
			var ex model.Exemplar
			if ex, err = nested(r, f, d.readExemplar); err == nil {
				dp.Exemplars = append(dp.Exemplars, ex)
			}
		case 6:
			var v uint64
			if v, err = r.Fixed64(f); err == nil {
				dp.Value = model.IntValue(int64(v))
			}
		case 7:
			dp.Attributes, err = d.appendKeyValue(dp.Attributes, r, f)
		case 8:
			dp.Flags, err = r.Uint32(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return dp, err
		}
	}
	return dp, nil
}

func (d *Decoder) readHistogramDataPoint(r *wire.Reader) (model.HistogramDataPoint, error) {
	var dp model.HistogramDataPoint
	var bounds []uint64
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return dp, err
		}
		switch f.Number {
		case 2:
			dp.StartTimeUnixNano, err = r.Fixed64(f)
		case 3:
			dp.TimeUnixNano, err = r.Fixed64(f)
		case 4:
			dp.Count, err = r.Fixed64(f)
		case 5:
			dp.Sum, err = d.optionalDouble(r, f)
		case 6:
			dp.BucketCounts, err = r.PackedFixed64(f, dp.BucketCounts)
		case 7:
			bounds, err = r.PackedFixed64(f, bounds)
		case 8:
			var ex model.Exemplar
			if ex, err = nested(r, f, d.readExemplar); err == nil {
				dp.Exemplars = append(dp.Exemplars, ex)
			}
		case 9:
			dp.Attributes, err = d.appendKeyValue(dp.Attributes, r, f)
		case 10:
			dp.Flags, err = r.Uint32(f)
		case 11:
			dp.Min, err = d.optionalDouble(r, f)
		case 12:
			dp.Max, err = d.optionalDouble(r, f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return dp, err
		}
	}
	dp.ExplicitBounds = float64s(bounds)
	return dp, nil
}

func (d *Decoder) readExponentialHistogramDataPoint(r *wire.Reader) (model.ExponentialHistogramDataPoint, error) {
	var dp model.ExponentialHistogramDataPoint
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return dp, err
		}
		switch f.Number {
		case 1:
			dp.Attributes, err = d.appendKeyValue(dp.Attributes, r, f)
		case 2:
			dp.StartTimeUnixNano, err = r.Fixed64(f)
		case 3:
			dp.TimeUnixNano, err = r.Fixed64(f)
		case 4:
			dp.Count, err = r.Fixed64(f)
		case 5:
			dp.Sum, err = d.optionalDouble(r, f)
		case 6:
			dp.Scale, err = r.Sint32(f)
		case 7:
			dp.ZeroCount, err = r.Fixed64(f)
		case 8:
			dp.Positive, err = nested(r, f, d.readBuckets)
		case 9:
			dp.Negative, err = nested(r, f, d.readBuckets)
		case 10:
			dp.Flags, err = r.Uint32(f)
		case 11:
			var ex model.Exemplar
			if ex, err = nested(r, f, d.readExemplar); err == nil {
				dp.Exemplars = append(dp.Exemplars, ex)
			}
		case 12:
			dp.Min, err = d.optionalDouble(r, f)
		case 13:
			dp.Max, err = d.optionalDouble(r, f)
		case 14:
			dp.ZeroThreshold, err = d.double(r, f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return dp, err
		}
	}
	return dp, nil
}

func (d *Decoder) readBuckets(r *wire.Reader) (model.Buckets, error) {
	var b model.Buckets
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return b, err
		}
		switch f.Number {
		case 1:
			b.Offset, err = r.Sint32(f)
		case 2:
			b.BucketCounts, err = r.PackedVarints(f, b.BucketCounts)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return b, err
		}
	}
	return b, nil
}

func (d *Decoder) readSummaryDataPoint(r *wire.Reader) (model.SummaryDataPoint, error) {
	var dp model.SummaryDataPoint
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return dp, err
		}
		switch f.Number {
		case 2:
			dp.StartTimeUnixNano, err = r.Fixed64(f)
		case 3:
			dp.TimeUnixNano, err = r.Fixed64(f)
		case 4:
			dp.Count, err = r.Fixed64(f)
		case 5:
			dp.Sum, err = d.double(r, f)
		case 6:
			var q model.ValueAtQuantile
			if q, err = nested(r, f, d.readQuantile); err == nil {
				dp.QuantileValues = append(dp.QuantileValues, q)
			}
		case 7:
			dp.Attributes, err = d.appendKeyValue(dp.Attributes, r, f)
		case 8:
			dp.Flags, err = r.Uint32(f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return dp, err
		}
	}
	return dp, nil
}

func (d *Decoder) readQuantile(r *wire.Reader) (model.ValueAtQuantile, error) {
	var q model.ValueAtQuantile
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return q, err
		}
		switch f.Number {
		case 1:
			q.Quantile, err = d.double(r, f)
		case 2:
			q.Value, err = d.double(r, f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return q, err
		}
	}
	return q, nil
}

func (d *Decoder) readExemplar(r *wire.Reader) (model.Exemplar, error) {
	var ex model.Exemplar
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return ex, err
		}
		switch f.Number {
		case 2:
			ex.TimeUnixNano, err = r.Fixed64(f)
		case 3:
			var v float64
			if v, err = d.double(r, f); err == nil {
				ex.Value = model.DoubleValue(v)
			}
		case 4:
			ex.SpanID, err = d.spanID(r, f)
		case 5:
			ex.TraceID, err = d.traceID(r, f)
		case 6:
			var v uint64
			if v, err = r.Fixed64(f); err == nil {
				ex.Value = model.IntValue(int64(v))
			}
		case 7:
			ex.FilteredAttributes, err = d.appendKeyValue(ex.FilteredAttributes, r, f)
		default:
			err = r.Skip(f)
		}
		if err != nil {
			return ex, err
		}
	}
	return ex, nil
}

func float64s(bits []uint64) []float64 {
	if len(bits) == 0 {
		return nil
	}
	out := make([]float64, len(bits))
	for i, b := range bits {
		out[i] = math.Float64frombits(b)
	}
	return out
}
