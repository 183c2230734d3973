package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
	"unicode"
	"unicode/utf8"
)

// RawField is one field of a schema-less dump. Exactly one of the value
// fields is set depending on Type; length-delimited values that parse as a
// message populate Message instead of Bytes.
type RawField struct {
	Number  protowire.Number
	Type    protowire.Type
	Offset  int
	Varint  uint64
	Fixed   uint64
	Bytes   []byte
	Text    bool
	Message []RawField
	Group   []RawField
}

// Dump decodes b without a schema, the way protoc --decode_raw does.
func Dump(b []byte, limits Limits) ([]RawField, error) {
	r := NewReader(b, limits)
	return dumpMessage(r, 0)
}

func dumpMessage(r *Reader, endGroup protowire.Number) ([]RawField, error) {
	var fields []RawField
	for !r.Done() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		if err := r.CountNode(f.Offset); err != nil {
			return nil, err
		}
		raw := RawField{Number: f.Number, Type: f.Type, Offset: f.Offset}
		switch f.Type {
		case protowire.VarintType:
			raw.Varint, err = r.consumeVarint()
		case protowire.Fixed64Type:
			raw.Fixed, err = r.consumeFixed64()
		case protowire.Fixed32Type:
			var v uint32
			v, err = r.consumeFixed32()
			raw.Fixed = uint64(v)
		case protowire.BytesType:
			err = dumpBytes(r, f, &raw)
		case protowire.StartGroupType:
			if r.depth+1 > r.budget.limits.MaxDepth {
				return nil, newError(ReasonDepthExceeded, f.Offset, "group nesting deeper than %d", r.budget.limits.MaxDepth)
			}
			r.depth++
			raw.Group, err = dumpMessage(r, f.Number)
			r.depth--
		case protowire.EndGroupType:
			if f.Number != endGroup {
				return nil, newError(ReasonGroupMismatch, f.Offset, "end of group %d", f.Number)
			}
			return fields, nil
		}
		if err != nil {
			return nil, err
		}
		fields = append(fields, raw)
	}
	if endGroup != 0 {
		return nil, newError(ReasonTruncated, r.Offset(), "group %d not closed", endGroup)
	}
	return fields, nil
}

func dumpBytes(r *Reader, f Field, raw *RawField) error {
	b, start, err := r.consumeBytes()
	if err != nil {
		return err
	}
	if len(b) > 0 && r.depth+1 <= r.budget.limits.MaxDepth {
		// Parse speculatively; only a clean parse of the whole value counts.
		trial := &budget{limits: r.budget.limits, nodes: r.budget.nodes}
		nested := &Reader{buf: b, base: start, depth: r.depth + 1, budget: trial}
		if msg, err := dumpMessage(nested, 0); err == nil {
			r.budget.nodes = trial.nodes
			raw.Message = msg
			return nil
		}
	}
	raw.Bytes = b
	raw.Text = isPrintable(b)
	return nil
}

func isPrintable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, c := range string(b) {
		if !unicode.IsPrint(c) && !unicode.IsSpace(c) {
			return false
		}
	}
	return true
}
