package decoder

import (
	"errors"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"testing"
)

func TestParseMessageType(t *testing.T) {
	t.Run("Parses names case-insensitively", func(t *testing.T) {
		mt, err := ParseMessageType("exporttraceservicerequest")
		require.NoError(t, err)
		assert.Equal(t, MessageTypeExportTraceServiceRequest, mt)

		mt, err = ParseMessageType("LOGRECORD")
		require.NoError(t, err)
		assert.Equal(t, MessageTypeLogRecord, mt)
	})

	t.Run("Every listed type parses back to itself", func(t *testing.T) {
		for _, mt := range MessageTypes() {
			parsed, err := ParseMessageType(mt.String())
			require.NoError(t, err)
			assert.Equal(t, mt, parsed)
		}
	})

	t.Run("Rejects unknown names", func(t *testing.T) {
		_, err := ParseMessageType("Trace")
		assert.True(t, errors.Is(err, ErrUnknownMessageType))
	})
}

func TestDecoder_Decode(t *testing.T) {
	d := NewDecoder()

	t.Run("Decodes a bare span", func(t *testing.T) {
		req := sampleTraceRequest()
		payload := marshal(t, req.ResourceSpans[0].ScopeSpans[0].Spans[1])
		got, err := d.Decode(MessageTypeSpan, payload)
		require.NoError(t, err)
		span := got.(*model.Span)
		assert.Equal(t, "b", span.Name)
		assert.True(t, span.HasParent())
	})

	t.Run("Decodes a bare resource", func(t *testing.T) {
		payload := marshal(t, sampleTraceRequest().ResourceSpans[0].Resource)
		got, err := d.Decode(MessageTypeResource, payload)
		require.NoError(t, err)
		res := got.(*model.Resource)
		name, ok := res.Attributes.Get("service.name")
		require.True(t, ok)
		s, _ := name.AsString()
		assert.Equal(t, "checkout", s)
	})

	t.Run("Dispatches export requests to the signal decoders", func(t *testing.T) {
		got, err := d.Decode(MessageTypeExportLogsServiceRequest, marshal(t, sampleLogsRequest()))
		require.NoError(t, err)
		assert.IsType(t, &model.LogsExport{}, got)
	})

	t.Run("Direct dumps fields without a schema", func(t *testing.T) {
		var inner []byte
		inner = protowire.AppendTag(inner, 1, protowire.VarintType)
		inner = protowire.AppendVarint(inner, 150)
		var b []byte
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, "hello")

		got, err := d.Decode(MessageTypeDirect, b)
		require.NoError(t, err)
		fields := got.([]wire.RawField)
		require.Len(t, fields, 2)
		require.Len(t, fields[0].Message, 1)
		assert.Equal(t, uint64(150), fields[0].Message[0].Varint)
		assert.Equal(t, []byte("hello"), fields[1].Bytes)
		assert.True(t, fields[1].Text)
	})
}
