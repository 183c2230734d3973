package decoder

import (
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/google/go-cmp/cmp"
	protoTrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	protoCommon "go.opentelemetry.io/proto/otlp/common/v1"
	protoResource "go.opentelemetry.io/proto/otlp/resource/v1"
	traceV1 "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"testing"
)

var valueComparer = cmp.Comparer(func(a, b model.AttributeValue) bool {
	return a.Equal(b)
})

var (
	traceIDBytes  = []byte{0x5b, 0x8e, 0xff, 0xf7, 0x98, 0x03, 0x81, 0x03, 0xd2, 0x69, 0xb6, 0x33, 0x81, 0x3f, 0xc6, 0x0c}
	spanIDBytesA  = []byte{0xee, 0xe1, 0x9b, 0x7e, 0xc3, 0xc1, 0xb1, 0x74}
	spanIDBytesB  = []byte{0xee, 0xe1, 0x9b, 0x7e, 0xc3, 0xc1, 0xb1, 0x73}
	spanIDBytesC  = []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	linkedTraceID = []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
)

func strAttr(key, value string) *protoCommon.KeyValue {
	return &protoCommon.KeyValue{
		Key:   key,
		Value: &protoCommon.AnyValue{Value: &protoCommon.AnyValue_StringValue{StringValue: value}},
	}
}

func intAttr(key string, value int64) *protoCommon.KeyValue {
	return &protoCommon.KeyValue{
		Key:   key,
		Value: &protoCommon.AnyValue{Value: &protoCommon.AnyValue_IntValue{IntValue: value}},
	}
}

func anyAttr(key string, value *protoCommon.AnyValue) *protoCommon.KeyValue {
	return &protoCommon.KeyValue{Key: key, Value: value}
}

func sampleTraceRequest() *protoTrace.ExportTraceServiceRequest {
	return &protoTrace.ExportTraceServiceRequest{
		ResourceSpans: []*traceV1.ResourceSpans{
			{
				Resource: &protoResource.Resource{
					Attributes: []*protoCommon.KeyValue{
						strAttr("service.name", "checkout"),
						strAttr("env", "staging"),
					},
					DroppedAttributesCount: 2,
				},
				ScopeSpans: []*traceV1.ScopeSpans{
					{
						Scope: &protoCommon.InstrumentationScope{
							Name:       "otk.kto",
							Version:    "1.0.0",
							Attributes: []*protoCommon.KeyValue{strAttr("scope.attr", "x")},
						},
						Spans: []*traceV1.Span{
							{
								TraceId:           traceIDBytes,
								SpanId:            spanIDBytesA,
								Name:              "a",
								Kind:              traceV1.Span_SPAN_KIND_SERVER,
								StartTimeUnixNano: 1_700_000_000_000_000_000,
								EndTimeUnixNano:   1_700_000_000_150_000_000,
								Attributes: []*protoCommon.KeyValue{
									strAttr("env", "prod"),
									intAttr("http.status_code", 200),
									anyAttr("ratio", &protoCommon.AnyValue{Value: &protoCommon.AnyValue_DoubleValue{DoubleValue: 0.25}}),
									anyAttr("ok", &protoCommon.AnyValue{Value: &protoCommon.AnyValue_BoolValue{BoolValue: true}}),
									anyAttr("raw", &protoCommon.AnyValue{Value: &protoCommon.AnyValue_BytesValue{BytesValue: []byte{0xde, 0xad, 0xbe, 0xef}}}),
									anyAttr("list", &protoCommon.AnyValue{Value: &protoCommon.AnyValue_ArrayValue{ArrayValue: &protoCommon.ArrayValue{
										Values: []*protoCommon.AnyValue{
											{Value: &protoCommon.AnyValue_StringValue{StringValue: "x"}},
											{Value: &protoCommon.AnyValue_IntValue{IntValue: -3}},
										},
									}}}),
									anyAttr("map", &protoCommon.AnyValue{Value: &protoCommon.AnyValue_KvlistValue{KvlistValue: &protoCommon.KeyValueList{
										Values: []*protoCommon.KeyValue{strAttr("inner", "v")},
									}}}),
									strAttr("env", "prod-dup"),
								},
								DroppedAttributesCount: 1,
								Events: []*traceV1.Span_Event{
									{
										TimeUnixNano: 1_700_000_000_100_000_000,
										Name:         "exception",
										Attributes:   []*protoCommon.KeyValue{strAttr("exception.type", "io")},
									},
								},
								Links: []*traceV1.Span_Link{
									{
										TraceId:    linkedTraceID,
										SpanId:     spanIDBytesC,
										TraceState: "k=v",
										Attributes: []*protoCommon.KeyValue{intAttr("n", 1)},
										Flags:      0x101,
									},
								},
								Status: &traceV1.Status{Code: traceV1.Status_STATUS_CODE_OK, Message: "fine"},
								Flags:  0x301,
							},
							{
								TraceId:           traceIDBytes,
								SpanId:            spanIDBytesB,
								ParentSpanId:      spanIDBytesA,
								TraceState:        "rojo=00f067aa0ba902b7",
								Name:              "b",
								Kind:              traceV1.Span_SPAN_KIND_CLIENT,
								StartTimeUnixNano: 1_700_000_000_200_000_000,
								EndTimeUnixNano:   1_700_000_000_100_000_000,
								Status:            &traceV1.Status{Code: traceV1.Status_STATUS_CODE_ERROR, Message: "boom"},
							},
						},
						SchemaUrl: "https://opentelemetry.io/schemas/1.21.0",
					},
				},
				SchemaUrl: "https://opentelemetry.io/schemas/1.20.0",
			},
		},
	}
}

func sampleTraceExport() *model.TraceExport {
	var traceID model.TraceID
	copy(traceID[:], traceIDBytes)
	var linked model.TraceID
	copy(linked[:], linkedTraceID)
	var spanA, spanB, spanC model.SpanID
	copy(spanA[:], spanIDBytesA)
	copy(spanB[:], spanIDBytesB)
	copy(spanC[:], spanIDBytesC)

	return &model.TraceExport{
		ResourceSpans: []model.ResourceSpans{
			{
				Resource: &model.Resource{
					Attributes: model.Attributes{
						{Key: "service.name", Value: model.StringValue("checkout")},
						{Key: "env", Value: model.StringValue("staging")},
					},
					DroppedAttributesCount: 2,
				},
				ScopeSpans: []model.ScopeSpans{
					{
						Scope: &model.InstrumentationScope{
							Name:       "otk.kto",
							Version:    "1.0.0",
							Attributes: model.Attributes{{Key: "scope.attr", Value: model.StringValue("x")}},
						},
						Spans: []model.Span{
							{
								TraceID:           traceID,
								SpanID:            spanA,
								Name:              "a",
								Kind:              model.SpanKindServer,
								StartTimeUnixNano: 1_700_000_000_000_000_000,
								EndTimeUnixNano:   1_700_000_000_150_000_000,
								Attributes: model.Attributes{
									{Key: "env", Value: model.StringValue("prod")},
									{Key: "http.status_code", Value: model.IntValue(200)},
									{Key: "ratio", Value: model.DoubleValue(0.25)},
									{Key: "ok", Value: model.BoolValue(true)},
									{Key: "raw", Value: model.BytesValue([]byte{0xde, 0xad, 0xbe, 0xef})},
									{Key: "list", Value: model.ArrayValue(model.StringValue("x"), model.IntValue(-3))},
									{Key: "map", Value: model.KvListValue(model.KeyValue{Key: "inner", Value: model.StringValue("v")})},
									{Key: "env", Value: model.StringValue("prod-dup")},
								},
								DroppedAttributesCount: 1,
								Events: []model.Event{
									{
										TimeUnixNano: 1_700_000_000_100_000_000,
										Name:         "exception",
										Attributes:   model.Attributes{{Key: "exception.type", Value: model.StringValue("io")}},
									},
								},
								Links: []model.Link{
									{
										TraceID:    linked,
										SpanID:     spanC,
										TraceState: "k=v",
										Attributes: model.Attributes{{Key: "n", Value: model.IntValue(1)}},
										Flags:      0x101,
									},
								},
								Status: model.Status{Code: model.StatusCodeOk, Message: "fine"},
								Flags:  0x301,
							},
							{
								TraceID:           traceID,
								SpanID:            spanB,
								ParentSpanID:      spanA,
								TraceState:        "rojo=00f067aa0ba902b7",
								Name:              "b",
								Kind:              model.SpanKindClient,
								StartTimeUnixNano: 1_700_000_000_200_000_000,
								EndTimeUnixNano:   1_700_000_000_100_000_000,
								Status:            model.Status{Code: model.StatusCodeError, Message: "boom"},
							},
						},
						SchemaURL: "https://opentelemetry.io/schemas/1.21.0",
					},
				},
				SchemaURL: "https://opentelemetry.io/schemas/1.20.0",
			},
		},
	}
}

func marshal(t *testing.T, m proto.Message) []byte {
	t.Helper()
	b, err := proto.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

// paddedEncoder writes every length prefix as a five byte varint and records
// where each prefix starts, so tests can corrupt lengths in place.
type paddedEncoder struct {
	buf           []byte
	lengthOffsets []int
}

func putPaddedVarint(dst []byte, v uint64) {
	for i := 0; i < 4; i++ {
		dst[i] = byte(v&0x7f) | 0x80
		v >>= 7
	}
	dst[4] = byte(v & 0x7f)
}

func (e *paddedEncoder) message(num protowire.Number, body func()) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	at := len(e.buf)
	e.lengthOffsets = append(e.lengthOffsets, at)
	e.buf = append(e.buf, 0, 0, 0, 0, 0)
	start := len(e.buf)
	body()
	putPaddedVarint(e.buf[at:at+5], uint64(len(e.buf)-start))
}

func (e *paddedEncoder) bytes(num protowire.Number, b []byte) {
	e.message(num, func() {
		e.buf = append(e.buf, b...)
	})
}

func (e *paddedEncoder) varint(num protowire.Number, v uint64) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, v)
}

func (e *paddedEncoder) fixed64(num protowire.Number, v uint64) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.Fixed64Type)
	e.buf = protowire.AppendFixed64(e.buf, v)
}

func (e *paddedEncoder) stringAttr(num protowire.Number, key, value string) {
	e.message(num, func() {
		e.bytes(1, []byte(key))
		e.message(2, func() {
			e.bytes(1, []byte(value))
		})
	})
}

func (e *paddedEncoder) span(name string, spanID []byte) {
	e.message(2, func() {
		e.bytes(1, traceIDBytes)
		e.bytes(2, spanID)
		e.bytes(5, []byte(name))
		e.varint(6, 2)
		e.fixed64(7, 10)
		e.fixed64(8, 20)
		e.stringAttr(9, "env", "prod")
		e.message(9, func() {
			e.bytes(1, []byte("list"))
			e.message(2, func() {
				e.message(5, func() {
					e.message(1, func() {
						e.bytes(1, []byte("nested"))
					})
				})
			})
		})
		e.message(15, func() {
			e.bytes(2, []byte("msg"))
			e.varint(3, 1)
		})
	})
}

// paddedTrace encodes a multi-span ExportTraceServiceRequest.
func paddedTrace() *paddedEncoder {
	e := &paddedEncoder{}
	e.message(1, func() {
		e.message(1, func() {
			e.stringAttr(1, "service.name", "checkout")
		})
		e.message(2, func() {
			e.message(1, func() {
				e.bytes(1, []byte("scope"))
			})
			e.span("a", spanIDBytesA)
			e.span("b", spanIDBytesB)
			e.span("c", spanIDBytesC)
		})
	})
	return e
}
