package model

import (
	"encoding/hex"
	"fmt"
)

const (
	TraceIDSize = 16
	SpanIDSize  = 8
)

// TraceID is all zeroes when the id was absent on the wire.
type TraceID [TraceIDSize]byte

type SpanID [SpanIDSize]byte

func (t TraceID) IsEmpty() bool {
	return t == TraceID{}
}

func (t TraceID) String() string {
	return hex.EncodeToString(t[:])
}

func (s SpanID) IsEmpty() bool {
	return s == SpanID{}
}

func (s SpanID) String() string {
	return hex.EncodeToString(s[:])
}

// ParseTraceID accepts 32 hex characters, or fewer which are left-padded.
func ParseTraceID(s string) (TraceID, error) {
	var id TraceID
	err := parseHexID(s, id[:])
	return id, err
}

func ParseSpanID(s string) (SpanID, error) {
	var id SpanID
	err := parseHexID(s, id[:])
	return id, err
}

func parseHexID(s string, dst []byte) error {
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex id %q: %w", s, err)
	}
	if len(raw) > len(dst) {
		return fmt.Errorf("id %q is longer than %d bytes", s, len(dst))
	}
	copy(dst[len(dst)-len(raw):], raw)
	return nil
}
