package wire

import "fmt"

type Reason int

const (
	ReasonTruncated Reason = iota + 1
	ReasonVarintOverflow
	ReasonInvalidTag
	ReasonInvalidWireType
	ReasonWrongWireType
	ReasonDepthExceeded
	ReasonNodeLimitExceeded
	ReasonInvalidID
	ReasonGroupMismatch
)

func (r Reason) String() string {
	switch r {
	case ReasonTruncated:
		return "truncated"
	case ReasonVarintOverflow:
		return "varint overflow"
	case ReasonInvalidTag:
		return "invalid tag"
	case ReasonInvalidWireType:
		return "invalid wire type"
	case ReasonWrongWireType:
		return "wrong wire type"
	case ReasonDepthExceeded:
		return "recursion depth exceeded"
	case ReasonNodeLimitExceeded:
		return "node limit exceeded"
	case ReasonInvalidID:
		return "invalid id"
	case ReasonGroupMismatch:
		return "group mismatch"
	default:
		return "unknown"
	}
}

// DecodeError reports the first malformed element of a payload. Offset is the
// absolute position, in the input buffer, of the first byte of the element
// that could not be decoded.
type DecodeError struct {
	Reason Reason
	Offset int
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("decode error at byte %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("decode error at byte %d: %s: %s", e.Offset, e.Reason, e.Detail)
}

func newError(reason Reason, offset int, format string, args ...any) *DecodeError {
	return &DecodeError{
		Reason: reason,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}
