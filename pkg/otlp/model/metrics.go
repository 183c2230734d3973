package model

type MetricsExport struct {
	ResourceMetrics []ResourceMetrics
}

type ResourceMetrics struct {
	Resource     *Resource
	ScopeMetrics []ScopeMetrics
	SchemaURL    string
}

type ScopeMetrics struct {
	Scope     *InstrumentationScope
	Metrics   []Metric
	SchemaURL string
}

func (m *MetricsExport) MetricCount() int {
	count := 0
	for _, rm := range m.ResourceMetrics {
		for _, sm := range rm.ScopeMetrics {
			count += len(sm.Metrics)
		}
	}
	return count
}

type MetricType int

const (
	MetricTypeEmpty MetricType = iota
	MetricTypeGauge
	MetricTypeSum
	MetricTypeHistogram
	MetricTypeExponentialHistogram
	MetricTypeSummary
)

func (t MetricType) String() string {
	switch t {
	case MetricTypeGauge:
		return "gauge"
	case MetricTypeSum:
		return "sum"
	case MetricTypeHistogram:
		return "histogram"
	case MetricTypeExponentialHistogram:
		return "exponential_histogram"
	case MetricTypeSummary:
		return "summary"
	default:
		return "empty"
	}
}

type AggregationTemporality int32

const (
	AggregationTemporalityUnspecified AggregationTemporality = iota
	AggregationTemporalityDelta
	AggregationTemporalityCumulative
)

func (a AggregationTemporality) String() string {
	switch a {
	case AggregationTemporalityDelta:
		return "delta"
	case AggregationTemporalityCumulative:
		return "cumulative"
	default:
		return "unspecified"
	}
}

// Metric carries exactly one data variant, selected by Type. Gauge and Sum
// share NumberDataPoints.
type Metric struct {
	Name        string
	Description string
	Unit        string
	Metadata    Attributes
	Type        MetricType

	AggregationTemporality AggregationTemporality
	IsMonotonic            bool

	NumberDataPoints               []NumberDataPoint
	HistogramDataPoints            []HistogramDataPoint
	ExponentialHistogramDataPoints []ExponentialHistogramDataPoint
	SummaryDataPoints              []SummaryDataPoint
}

func (m *Metric) DataPointCount() int {
	switch m.Type {
	case MetricTypeGauge, MetricTypeSum:
		return len(m.NumberDataPoints)
	case MetricTypeHistogram:
		return len(m.HistogramDataPoints)
	case MetricTypeExponentialHistogram:
		return len(m.ExponentialHistogramDataPoints)
	case MetricTypeSummary:
		return len(m.SummaryDataPoints)
	}
	return 0
}

type NumberDataPoint struct {
	Attributes        Attributes
	StartTimeUnixNano uint64
	TimeUnixNano      uint64
	// Value is ValueInt, ValueDouble or ValueEmpty.
	Value     AttributeValue
	Exemplars []Exemplar
	Flags     uint32
}

type HistogramDataPoint struct {
	Attributes        Attributes
	StartTimeUnixNano uint64
	TimeUnixNano      uint64
	Count             uint64
	Sum               *float64
	BucketCounts      []uint64
	ExplicitBounds    []float64
	Exemplars         []Exemplar
	Flags             uint32
	Min               *float64
	Max               *float64
}

type ExponentialHistogramDataPoint struct {
	Attributes        Attributes
	StartTimeUnixNano uint64
	TimeUnixNano      uint64
	Count             uint64
	Sum               *float64
	Scale             int32
	ZeroCount         uint64
	Positive          Buckets
	Negative          Buckets
	Flags             uint32
	Exemplars         []Exemplar
	Min               *float64
	Max               *float64
	ZeroThreshold     float64
}

type Buckets struct {
	Offset       int32
	BucketCounts []uint64
}

type SummaryDataPoint struct {
	Attributes        Attributes
	StartTimeUnixNano uint64
	TimeUnixNano      uint64
	Count             uint64
	Sum               float64
	QuantileValues    []ValueAtQuantile
	Flags             uint32
}

type ValueAtQuantile struct {
	Quantile float64
	Value    float64
}

type Exemplar struct {
	FilteredAttributes Attributes
	TimeUnixNano       uint64
	Value              AttributeValue
	SpanID             SpanID
	TraceID            TraceID
}
