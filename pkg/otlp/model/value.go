package model

import (
	"bytes"
	"math"
)

type ValueType int

const (
	ValueEmpty ValueType = iota
	ValueString
	ValueBool
	ValueInt
	ValueDouble
	ValueBytes
	ValueArray
	ValueKvList
)

func (t ValueType) String() string {
	switch t {
	case ValueString:
		return "string"
	case ValueBool:
		return "bool"
	case ValueInt:
		return "int"
	case ValueDouble:
		return "double"
	case ValueBytes:
		return "bytes"
	case ValueArray:
		return "array"
	case ValueKvList:
		return "kvlist"
	default:
		return "empty"
	}
}

// AttributeValue is the tagged union carried by OTLP AnyValue. Only the field
// matching Type is meaningful. The zero value is an empty value.
type AttributeValue struct {
	Type   ValueType
	str    string
	num    int64
	double float64
	raw    []byte
	array  []AttributeValue
	kvlist []KeyValue
}

func StringValue(s string) AttributeValue {
	return AttributeValue{Type: ValueString, str: s}
}

func BoolValue(b bool) AttributeValue {
	v := AttributeValue{Type: ValueBool}
	if b {
		v.num = 1
	}
	return v
}

func IntValue(i int64) AttributeValue {
	return AttributeValue{Type: ValueInt, num: i}
}

func DoubleValue(f float64) AttributeValue {
	return AttributeValue{Type: ValueDouble, double: f}
}

func BytesValue(b []byte) AttributeValue {
	return AttributeValue{Type: ValueBytes, raw: b}
}

func ArrayValue(values ...AttributeValue) AttributeValue {
	return AttributeValue{Type: ValueArray, array: values}
}

func KvListValue(values ...KeyValue) AttributeValue {
	return AttributeValue{Type: ValueKvList, kvlist: values}
}

func (v AttributeValue) IsEmpty() bool {
	return v.Type == ValueEmpty
}

func (v AttributeValue) AsString() (string, bool) {
	return v.str, v.Type == ValueString
}

func (v AttributeValue) AsBool() (bool, bool) {
	return v.num != 0, v.Type == ValueBool
}

func (v AttributeValue) AsInt() (int64, bool) {
	return v.num, v.Type == ValueInt
}

func (v AttributeValue) AsDouble() (float64, bool) {
	return v.double, v.Type == ValueDouble
}

func (v AttributeValue) AsBytes() ([]byte, bool) {
	return v.raw, v.Type == ValueBytes
}

func (v AttributeValue) AsArray() ([]AttributeValue, bool) {
	return v.array, v.Type == ValueArray
}

func (v AttributeValue) AsKvList() ([]KeyValue, bool) {
	return v.kvlist, v.Type == ValueKvList
}

// AsNumber widens int and double variants to float64.
func (v AttributeValue) AsNumber() (float64, bool) {
	switch v.Type {
	case ValueInt:
		return float64(v.num), true
	case ValueDouble:
		return v.double, true
	default:
		return 0, false
	}
}

// Equal compares variant and payload. Doubles compare bitwise so that NaN
// equals itself, which keeps decoded trees comparable.
func (v AttributeValue) Equal(o AttributeValue) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case ValueEmpty:
		return true
	case ValueString:
		return v.str == o.str
	case ValueBool, ValueInt:
		return v.num == o.num
	case ValueDouble:
		return math.Float64bits(v.double) == math.Float64bits(o.double)
	case ValueBytes:
		return bytes.Equal(v.raw, o.raw)
	case ValueArray:
		if len(v.array) != len(o.array) {
			return false
		}
		for i := range v.array {
			if !v.array[i].Equal(o.array[i]) {
				return false
			}
		}
		return true
	case ValueKvList:
		return Attributes(v.kvlist).Equal(o.kvlist)
	}
	return false
}

type KeyValue struct {
	Key   string
	Value AttributeValue
}

// Attributes keeps wire order and duplicates. Lookups resolve duplicates by
// taking the last occurrence.
type Attributes []KeyValue

func (a Attributes) Get(key string) (AttributeValue, bool) {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Key == key {
			return a[i].Value, true
		}
	}
	return AttributeValue{}, false
}

func (a Attributes) GetAll(key string) []AttributeValue {
	var values []AttributeValue
	for _, kv := range a {
		if kv.Key == key {
			values = append(values, kv.Value)
		}
	}
	return values
}

func (a Attributes) Equal(o Attributes) bool {
	if len(a) != len(o) {
		return false
	}
	for i := range a {
		if a[i].Key != o[i].Key || !a[i].Value.Equal(o[i].Value) {
			return false
		}
	}
	return true
}
