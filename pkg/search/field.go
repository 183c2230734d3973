package search

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"math"
	"strconv"
	"strings"
	"time"
)

type fieldKind int

const (
	fieldSpanName fieldKind = iota
	fieldSpanKind
	fieldStatusCode
	fieldStatusMessage
	fieldDuration
	fieldTraceID
	fieldSpanID
	fieldParentSpanID
	fieldStart
	fieldEnd
	fieldScopeName
	fieldScopeVersion
	fieldAttribute
	fieldSpanAttribute
	fieldScopeAttribute
	fieldResourceAttribute
)

var scalarFields = map[string]fieldKind{
	"span.name":           fieldSpanName,
	"name":                fieldSpanName,
	"span.kind":           fieldSpanKind,
	"kind":                fieldSpanKind,
	"span.status.code":    fieldStatusCode,
	"status":              fieldStatusCode,
	"span.status.message": fieldStatusMessage,
	"span.duration":       fieldDuration,
	"duration":            fieldDuration,
	"span.trace_id":       fieldTraceID,
	"trace_id":            fieldTraceID,
	"span.span_id":        fieldSpanID,
	"span_id":             fieldSpanID,
	"span.parent_span_id": fieldParentSpanID,
	"parent_span_id":      fieldParentSpanID,
	"span.start":          fieldStart,
	"span.end":            fieldEnd,
	"scope.name":          fieldScopeName,
	"scope.version":       fieldScopeVersion,
}

var attributeFields = map[string]fieldKind{
	"attribute":          fieldAttribute,
	"attr":               fieldAttribute,
	"span.attribute":     fieldSpanAttribute,
	"scope.attribute":    fieldScopeAttribute,
	"resource.attribute": fieldResourceAttribute,
}

// Field is a resolved reference to a value reachable from a span.
type Field struct {
	name string
	kind fieldKind
	key  string
}

func (f Field) String() string {
	return f.name
}

// ParseField resolves a field name such as span.name or attribute["http.method"].
func ParseField(name string) (Field, error) {
	trimmed := strings.TrimSpace(name)
	if kind, ok := scalarFields[strings.ToLower(trimmed)]; ok {
		return Field{name: trimmed, kind: kind}, nil
	}
	open := strings.IndexByte(trimmed, '[')
	if open < 0 || !strings.HasSuffix(trimmed, "]") {
		return Field{}, &PredicateError{Field: name, Reason: "unknown field"}
	}
	kind, ok := attributeFields[strings.ToLower(trimmed[:open])]
	if !ok {
		return Field{}, &PredicateError{Field: name, Reason: "unknown field"}
	}
	key, err := unquoteKey(trimmed[open+1 : len(trimmed)-1])
	if err != nil {
		return Field{}, &PredicateError{Field: name, Reason: err.Error()}
	}
	return Field{name: trimmed, kind: kind, key: key}, nil
}

func unquoteKey(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty attribute key")
	}
	if raw[0] == '"' || raw[0] == '\'' {
		if len(raw) < 2 || raw[len(raw)-1] != raw[0] {
			return "", fmt.Errorf("unterminated attribute key")
		}
		if raw[0] == '\'' {
			return raw[1 : len(raw)-1], nil
		}
		return strconv.Unquote(raw)
	}
	return raw, nil
}

func (f Field) isAttribute() bool {
	return f.kind >= fieldAttribute
}

// value extracts the field from a candidate. The boolean is false when the
// value is absent.
func (f Field) value(m *Match) (model.AttributeValue, bool) {
	s := m.Span
	switch f.kind {
	case fieldSpanName:
		return model.StringValue(s.Name), true
	case fieldSpanKind:
		return model.IntValue(int64(s.Kind)), true
	case fieldStatusCode:
		return model.IntValue(int64(s.Status.Code)), true
	case fieldStatusMessage:
		return model.StringValue(s.Status.Message), true
	case fieldDuration:
		return model.IntValue(int64(s.Duration())), true
	case fieldTraceID:
		if s.TraceID.IsEmpty() {
			return model.AttributeValue{}, false
		}
		return model.StringValue(s.TraceID.String()), true
	case fieldSpanID:
		if s.SpanID.IsEmpty() {
			return model.AttributeValue{}, false
		}
		return model.StringValue(s.SpanID.String()), true
	case fieldParentSpanID:
		if !s.HasParent() {
			return model.AttributeValue{}, false
		}
		return model.StringValue(s.ParentSpanID.String()), true
	case fieldStart:
		return model.IntValue(clampNanos(s.StartTimeUnixNano)), true
	case fieldEnd:
		return model.IntValue(clampNanos(s.EndTimeUnixNano)), true
	case fieldScopeName:
		if m.Scope == nil {
			return model.AttributeValue{}, false
		}
		return model.StringValue(m.Scope.Name), true
	case fieldScopeVersion:
		if m.Scope == nil {
			return model.AttributeValue{}, false
		}
		return model.StringValue(m.Scope.Version), true
	case fieldAttribute:
		return m.Attribute(f.key)
	case fieldSpanAttribute:
		return s.Attributes.Get(f.key)
	case fieldScopeAttribute:
		if m.Scope == nil {
			return model.AttributeValue{}, false
		}
		return m.Scope.Attributes.Get(f.key)
	case fieldResourceAttribute:
		if m.Resource == nil {
			return model.AttributeValue{}, false
		}
		return m.Resource.Attributes.Get(f.key)
	}
	return model.AttributeValue{}, false
}

func clampNanos(ns uint64) int64 {
	if ns > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(ns)
}

// literal converts a user supplied value into the representation value
// produces for this field.
func (f Field) literal(v model.AttributeValue) (model.AttributeValue, error) {
	if f.isAttribute() {
		return v, nil
	}
	switch f.kind {
	case fieldSpanKind:
		return enumLiteral(v, func(s string) (int64, bool) {
			k, ok := model.ParseSpanKind(s)
			return int64(k), ok
		})
	case fieldStatusCode:
		return enumLiteral(v, func(s string) (int64, bool) {
			c, ok := model.ParseStatusCode(s)
			return int64(c), ok
		})
	case fieldDuration:
		return durationLiteral(v)
	case fieldStart, fieldEnd:
		return timestampLiteral(v)
	case fieldTraceID:
		return idLiteral(v, func(s string) (string, error) {
			id, err := model.ParseTraceID(s)
			return id.String(), err
		})
	case fieldSpanID, fieldParentSpanID:
		return idLiteral(v, func(s string) (string, error) {
			id, err := model.ParseSpanID(s)
			return id.String(), err
		})
	}
	if s, ok := v.AsString(); ok {
		return model.StringValue(s), nil
	}
	return model.AttributeValue{}, fmt.Errorf("expected a string, got %s", v.Type)
}

func enumLiteral(v model.AttributeValue, parse func(string) (int64, bool)) (model.AttributeValue, error) {
	if i, ok := v.AsInt(); ok {
		return model.IntValue(i), nil
	}
	if s, ok := v.AsString(); ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return model.IntValue(n), nil
		}
		if n, ok := parse(s); ok {
			return model.IntValue(n), nil
		}
		return model.AttributeValue{}, fmt.Errorf("unknown value %q", s)
	}
	return model.AttributeValue{}, fmt.Errorf("expected a name or number, got %s", v.Type)
}

func durationLiteral(v model.AttributeValue) (model.AttributeValue, error) {
	if i, ok := v.AsInt(); ok {
		return model.IntValue(i), nil
	}
	if s, ok := v.AsString(); ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return model.IntValue(n), nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return model.AttributeValue{}, fmt.Errorf("invalid duration %q", s)
		}
		return model.IntValue(int64(d)), nil
	}
	return model.AttributeValue{}, fmt.Errorf("expected a duration, got %s", v.Type)
}

func timestampLiteral(v model.AttributeValue) (model.AttributeValue, error) {
	if i, ok := v.AsInt(); ok {
		return model.IntValue(i), nil
	}
	if s, ok := v.AsString(); ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return model.IntValue(n), nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return model.AttributeValue{}, fmt.Errorf("invalid timestamp %q (expect RFC3339 or unix nanoseconds)", s)
		}
		return model.IntValue(t.UnixNano()), nil
	}
	return model.AttributeValue{}, fmt.Errorf("expected a timestamp, got %s", v.Type)
}

func idLiteral(v model.AttributeValue, normalize func(string) (string, error)) (model.AttributeValue, error) {
	s, ok := v.AsString()
	if !ok {
		if i, isInt := v.AsInt(); isInt && i >= 0 {
			s, ok = strconv.FormatInt(i, 10), true
		}
	}
	if !ok {
		return model.AttributeValue{}, fmt.Errorf("expected a hex id, got %s", v.Type)
	}
	id, err := normalize(s)
	if err != nil {
		return model.AttributeValue{}, err
	}
	return model.StringValue(id), nil
}
