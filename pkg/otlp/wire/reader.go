package wire

import (
	"errors"
	"google.golang.org/protobuf/encoding/protowire"
	"io"
)

const (
	DefaultMaxDepth = 64
	DefaultMaxNodes = 1 << 20
)

// Limits bound the work a single decode may do. Zero fields take defaults.
type Limits struct {
	MaxDepth int
	MaxNodes int
}

func (l Limits) withDefaults() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxNodes <= 0 {
		l.MaxNodes = DefaultMaxNodes
	}
	return l
}

type budget struct {
	limits Limits
	nodes  int
}

// Field is a decoded tag. Offset is the absolute offset of the tag and
// ValueOffset the absolute offset of the first byte after it.
type Field struct {
	Number      protowire.Number
	Type        protowire.Type
	Offset      int
	ValueOffset int
}

// Reader walks the fields of one message. Nested messages get their own
// Reader sharing the depth and node budget of the root.
type Reader struct {
	buf    []byte
	base   int
	pos    int
	depth  int
	budget *budget
}

func NewReader(b []byte, limits Limits) *Reader {
	return &Reader{
		buf:    b,
		budget: &budget{limits: limits.withDefaults()},
	}
}

func (r *Reader) Done() bool {
	return r.pos >= len(r.buf)
}

func (r *Reader) Depth() int {
	return r.depth
}

func (r *Reader) Offset() int {
	return r.base + r.pos
}

// Nodes returns how many nodes the decode has produced so far.
func (r *Reader) Nodes() int {
	return r.budget.nodes
}

// CountNode charges one output node against the budget.
func (r *Reader) CountNode(offset int) error {
	r.budget.nodes++
	if r.budget.nodes > r.budget.limits.MaxNodes {
		return newError(ReasonNodeLimitExceeded, offset, "more than %d nodes", r.budget.limits.MaxNodes)
	}
	return nil
}

func (r *Reader) Next() (Field, error) {
	start := r.Offset()
	num, typ, n := protowire.ConsumeTag(r.buf[r.pos:])
	if n < 0 {
		return Field{}, r.tagError(start, n)
	}
	if typ > protowire.Fixed32Type {
		return Field{}, newError(ReasonInvalidWireType, start, "wire type %d for field %d", typ, num)
	}
	r.pos += n
	return Field{Number: num, Type: typ, Offset: start, ValueOffset: r.Offset()}, nil
}

func (r *Reader) tagError(offset, n int) error {
	if errors.Is(protowire.ParseError(n), io.ErrUnexpectedEOF) {
		return newError(ReasonTruncated, offset, "field tag")
	}
	if _, m := protowire.ConsumeVarint(r.buf[r.pos:]); m < 0 {
		return newError(ReasonVarintOverflow, offset, "field tag")
	}
	return newError(ReasonInvalidTag, offset, "field number out of range")
}

func (r *Reader) expect(f Field, typ protowire.Type) error {
	if f.Type != typ {
		return newError(ReasonWrongWireType, f.Offset, "field %d has wire type %d, want %d", f.Number, f.Type, typ)
	}
	return nil
}

func (r *Reader) consumeVarint() (uint64, error) {
	start := r.Offset()
	v, n := protowire.ConsumeVarint(r.buf[r.pos:])
	if n < 0 {
		if errors.Is(protowire.ParseError(n), io.ErrUnexpectedEOF) {
			return 0, newError(ReasonTruncated, start, "varint")
		}
		return 0, newError(ReasonVarintOverflow, start, "varint longer than 10 bytes")
	}
	r.pos += n
	return v, nil
}

func (r *Reader) consumeFixed64() (uint64, error) {
	v, n := protowire.ConsumeFixed64(r.buf[r.pos:])
	if n < 0 {
		return 0, newError(ReasonTruncated, r.Offset(), "fixed64 needs 8 bytes, %d left", len(r.buf)-r.pos)
	}
	r.pos += n
	return v, nil
}

func (r *Reader) consumeFixed32() (uint32, error) {
	v, n := protowire.ConsumeFixed32(r.buf[r.pos:])
	if n < 0 {
		return 0, newError(ReasonTruncated, r.Offset(), "fixed32 needs 4 bytes, %d left", len(r.buf)-r.pos)
	}
	r.pos += n
	return v, nil
}

func (r *Reader) consumeBytes() ([]byte, int, error) {
	start := r.Offset()
	length, err := r.consumeVarint()
	if err != nil {
		return nil, start, err
	}
	if length > uint64(len(r.buf)-r.pos) {
		return nil, start, newError(ReasonTruncated, start, "length %d exceeds remaining %d bytes", length, len(r.buf)-r.pos)
	}
	valueStart := r.Offset()
	v := r.buf[r.pos : r.pos+int(length)]
	r.pos += int(length)
	return v, valueStart, nil
}

func (r *Reader) Varint(f Field) (uint64, error) {
	if err := r.expect(f, protowire.VarintType); err != nil {
		return 0, err
	}
	return r.consumeVarint()
}

func (r *Reader) Bool(f Field) (bool, error) {
	v, err := r.Varint(f)
	return v != 0, err
}

func (r *Reader) Uint32(f Field) (uint32, error) {
	v, err := r.Varint(f)
	return uint32(v), err
}

func (r *Reader) Int32(f Field) (int32, error) {
	v, err := r.Varint(f)
	return int32(v), err
}

func (r *Reader) Int64(f Field) (int64, error) {
	v, err := r.Varint(f)
	return int64(v), err
}

func (r *Reader) Sint32(f Field) (int32, error) {
	v, err := r.Varint(f)
	return int32(protowire.DecodeZigZag(v & 0xffffffff)), err
}

func (r *Reader) Fixed64(f Field) (uint64, error) {
	if err := r.expect(f, protowire.Fixed64Type); err != nil {
		return 0, err
	}
	return r.consumeFixed64()
}

func (r *Reader) Fixed32(f Field) (uint32, error) {
	if err := r.expect(f, protowire.Fixed32Type); err != nil {
		return 0, err
	}
	return r.consumeFixed32()
}

func (r *Reader) Bytes(f Field) ([]byte, error) {
	if err := r.expect(f, protowire.BytesType); err != nil {
		return nil, err
	}
	b, _, err := r.consumeBytes()
	return b, err
}

// CopyBytes returns a copy so the decoded tree does not alias the input.
func (r *Reader) CopyBytes(f Field) ([]byte, error) {
	b, err := r.Bytes(f)
	if err != nil || len(b) == 0 {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (r *Reader) String(f Field) (string, error) {
	b, err := r.Bytes(f)
	return string(b), err
}

// Message opens a length-delimited submessage one level deeper and charges
// it as a node.
func (r *Reader) Message(f Field) (*Reader, error) {
	if err := r.expect(f, protowire.BytesType); err != nil {
		return nil, err
	}
	if r.depth+1 > r.budget.limits.MaxDepth {
		return nil, newError(ReasonDepthExceeded, f.Offset, "nesting deeper than %d", r.budget.limits.MaxDepth)
	}
	b, start, err := r.consumeBytes()
	if err != nil {
		return nil, err
	}
	if err := r.CountNode(f.Offset); err != nil {
		return nil, err
	}
	return &Reader{
		buf:    b,
		base:   start,
		depth:  r.depth + 1,
		budget: r.budget,
	}, nil
}

// PackedVarints reads a repeated varint field in packed or unpacked form.
// Every element is charged as a node.
func (r *Reader) PackedVarints(f Field, dst []uint64) ([]uint64, error) {
	if f.Type == protowire.VarintType {
		if err := r.CountNode(f.Offset); err != nil {
			return dst, err
		}
		v, err := r.consumeVarint()
		return append(dst, v), err
	}
	if err := r.expect(f, protowire.BytesType); err != nil {
		return dst, err
	}
	b, start, err := r.consumeBytes()
	if err != nil {
		return dst, err
	}
	packed := &Reader{buf: b, base: start, depth: r.depth, budget: r.budget}
	for !packed.Done() {
		if err := packed.CountNode(packed.Offset()); err != nil {
			return dst, err
		}
		v, err := packed.consumeVarint()
		if err != nil {
			return dst, err
		}
		dst = append(dst, v)
	}
	return dst, nil
}

// PackedFixed64 reads a repeated fixed64/double field in packed or unpacked
// form. Every element is charged as a node.
func (r *Reader) PackedFixed64(f Field, dst []uint64) ([]uint64, error) {
	if f.Type == protowire.Fixed64Type {
		if err := r.CountNode(f.Offset); err != nil {
			return dst, err
		}
		v, err := r.consumeFixed64()
		return append(dst, v), err
	}
	if err := r.expect(f, protowire.BytesType); err != nil {
		return dst, err
	}
	b, start, err := r.consumeBytes()
	if err != nil {
		return dst, err
	}
	if len(b)%8 != 0 {
		return dst, newError(ReasonTruncated, start+len(b)-len(b)%8, "packed fixed64 length %d is not a multiple of 8", len(b))
	}
	packed := &Reader{buf: b, base: start, depth: r.depth, budget: r.budget}
	for !packed.Done() {
		if err := packed.CountNode(packed.Offset()); err != nil {
			return dst, err
		}
		v, err := packed.consumeFixed64()
		if err != nil {
			return dst, err
		}
		dst = append(dst, v)
	}
	return dst, nil
}

// Skip discards the value of an unknown field. Groups are walked iteratively
// and count against the depth limit.
func (r *Reader) Skip(f Field) error {
	switch f.Type {
	case protowire.VarintType:
		_, err := r.consumeVarint()
		return err
	case protowire.Fixed64Type:
		_, err := r.consumeFixed64()
		return err
	case protowire.Fixed32Type:
		_, err := r.consumeFixed32()
		return err
	case protowire.BytesType:
		_, _, err := r.consumeBytes()
		return err
	case protowire.StartGroupType:
		return r.skipGroup(f)
	case protowire.EndGroupType:
		return newError(ReasonGroupMismatch, f.Offset, "end of group %d without start", f.Number)
	}
	return newError(ReasonInvalidWireType, f.Offset, "wire type %d", f.Type)
}

func (r *Reader) skipGroup(start Field) error {
	open := []protowire.Number{start.Number}
	for len(open) > 0 {
		if r.depth+len(open) > r.budget.limits.MaxDepth {
			return newError(ReasonDepthExceeded, start.Offset, "group nesting deeper than %d", r.budget.limits.MaxDepth)
		}
		if r.Done() {
			return newError(ReasonTruncated, r.Offset(), "group %d not closed", open[len(open)-1])
		}
		f, err := r.Next()
		if err != nil {
			return err
		}
		switch f.Type {
		case protowire.StartGroupType:
			open = append(open, f.Number)
		case protowire.EndGroupType:
			if f.Number != open[len(open)-1] {
				return newError(ReasonGroupMismatch, f.Offset, "end of group %d inside group %d", f.Number, open[len(open)-1])
			}
			open = open[:len(open)-1]
		default:
			if err := r.Skip(f); err != nil {
				return err
			}
		}
	}
	return nil
}
