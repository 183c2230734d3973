package format

import (
	"encoding/hex"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"strconv"
	"strings"
)

type Mode int

const (
	ModePretty Mode = iota
	ModeCompact
)

func (m Mode) String() string {
	if m == ModeCompact {
		return "compact"
	}
	return "pretty"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "pretty":
		return ModePretty, nil
	case "compact":
		return ModeCompact, nil
	}
	return ModePretty, fmt.Errorf("unknown output mode %q (expect pretty or compact)", s)
}

// Value renders an attribute value so that every variant is distinguishable:
// strings are quoted, bytes, arrays and kvlists carry a type tag.
func Value(v model.AttributeValue) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

func writeValue(sb *strings.Builder, v model.AttributeValue) {
	switch v.Type {
	case model.ValueString:
		s, _ := v.AsString()
		sb.WriteString(strconv.Quote(s))
	case model.ValueBool:
		b, _ := v.AsBool()
		sb.WriteString(strconv.FormatBool(b))
	case model.ValueInt:
		i, _ := v.AsInt()
		sb.WriteString(strconv.FormatInt(i, 10))
	case model.ValueDouble:
		f, _ := v.AsDouble()
		sb.WriteString(formatDouble(f))
	case model.ValueBytes:
		b, _ := v.AsBytes()
		sb.WriteString("bytes:")
		sb.WriteString(hex.EncodeToString(b))
	case model.ValueArray:
		elems, _ := v.AsArray()
		sb.WriteString("array:[")
		for i, e := range elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, e)
		}
		sb.WriteString("]")
	case model.ValueKvList:
		kvs, _ := v.AsKvList()
		sb.WriteString("kvlist:{")
		for i, kv := range kvs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(kv.Key))
			sb.WriteString(": ")
			writeValue(sb, kv.Value)
		}
		sb.WriteString("}")
	default:
		sb.WriteString("empty")
	}
}

// formatDouble keeps a decimal point so doubles never read as ints.
func formatDouble(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}
