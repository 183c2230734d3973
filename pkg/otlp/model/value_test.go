package model

import (
	"github.com/stretchr/testify/assert"
	"math"
	"testing"
	"time"
)

func TestAttributeValue_Accessors(t *testing.T) {
	t.Run("Typed accessors report the variant", func(t *testing.T) {
		s, ok := StringValue("x").AsString()
		assert.True(t, ok)
		assert.Equal(t, "x", s)

		_, ok = StringValue("1").AsInt()
		assert.False(t, ok)

		n, ok := IntValue(3).AsNumber()
		assert.True(t, ok)
		assert.Equal(t, 3.0, n)

		_, ok = BoolValue(true).AsNumber()
		assert.False(t, ok)
		assert.True(t, AttributeValue{}.IsEmpty())
	})
}

func TestAttributeValue_Equal(t *testing.T) {
	t.Run("Different variants are never equal", func(t *testing.T) {
		assert.False(t, IntValue(1).Equal(DoubleValue(1)))
		assert.False(t, StringValue("").Equal(AttributeValue{}))
	})

	t.Run("Nested values compare structurally", func(t *testing.T) {
		a := ArrayValue(StringValue("x"), KvListValue(KeyValue{Key: "k", Value: BytesValue([]byte{1})}))
		b := ArrayValue(StringValue("x"), KvListValue(KeyValue{Key: "k", Value: BytesValue([]byte{1})}))
		c := ArrayValue(StringValue("x"), KvListValue(KeyValue{Key: "k", Value: BytesValue([]byte{2})}))
		assert.True(t, a.Equal(b))
		assert.False(t, a.Equal(c))
	})

	t.Run("NaN equals itself", func(t *testing.T) {
		assert.True(t, DoubleValue(math.NaN()).Equal(DoubleValue(math.NaN())))
	})
}

func TestAttributes_Get(t *testing.T) {
	attrs := Attributes{
		{Key: "env", Value: StringValue("a")},
		{Key: "other", Value: IntValue(1)},
		{Key: "env", Value: StringValue("b")},
	}

	t.Run("Last duplicate wins", func(t *testing.T) {
		v, ok := attrs.Get("env")
		assert.True(t, ok)
		s, _ := v.AsString()
		assert.Equal(t, "b", s)
	})

	t.Run("GetAll keeps arrival order", func(t *testing.T) {
		assert.Len(t, attrs.GetAll("env"), 2)
		assert.Empty(t, attrs.GetAll("missing"))
	})
}

func TestSpan_Duration(t *testing.T) {
	t.Run("End before start is zero", func(t *testing.T) {
		s := Span{StartTimeUnixNano: 200, EndTimeUnixNano: 100}
		assert.Equal(t, time.Duration(0), s.Duration())
	})

	t.Run("Saturates instead of wrapping", func(t *testing.T) {
		s := Span{StartTimeUnixNano: 0, EndTimeUnixNano: math.MaxUint64}
		assert.Equal(t, time.Duration(math.MaxInt64), s.Duration())
	})

	t.Run("Regular span", func(t *testing.T) {
		s := Span{StartTimeUnixNano: 100, EndTimeUnixNano: 250}
		assert.Equal(t, 150*time.Nanosecond, s.Duration())
	})
}

func TestParseIDs(t *testing.T) {
	t.Run("Short hex is left-padded", func(t *testing.T) {
		id, err := ParseSpanID("abc")
		assert.NoError(t, err)
		assert.Equal(t, "0000000000000abc", id.String())
	})

	t.Run("Rejects ids that are too long", func(t *testing.T) {
		_, err := ParseSpanID("00112233445566778899")
		assert.Error(t, err)
	})

	t.Run("Rejects non-hex input", func(t *testing.T) {
		_, err := ParseTraceID("zz")
		assert.Error(t, err)
	})
}

func TestParseSpanKind(t *testing.T) {
	kind, ok := ParseSpanKind("SPAN_KIND_SERVER")
	assert.True(t, ok)
	assert.Equal(t, SpanKindServer, kind)

	kind, ok = ParseSpanKind("client")
	assert.True(t, ok)
	assert.Equal(t, SpanKindClient, kind)

	_, ok = ParseSpanKind("nope")
	assert.False(t, ok)
}

func TestParseSeverityNumber(t *testing.T) {
	sev, ok := ParseSeverityNumber("warn")
	assert.True(t, ok)
	assert.Equal(t, SeverityNumber(13), sev)

	sev, ok = ParseSeverityNumber("SEVERITY_NUMBER_ERROR2")
	assert.True(t, ok)
	assert.Equal(t, SeverityNumber(18), sev)

	_, ok = ParseSeverityNumber("LOUD")
	assert.False(t, ok)
}
