package search

import (
	"errors"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func span(name string, attrs ...model.KeyValue) model.Span {
	return model.Span{
		Name:              name,
		StartTimeUnixNano: 1_000,
		EndTimeUnixNano:   2_000,
		Attributes:        attrs,
	}
}

func kv(key string, value model.AttributeValue) model.KeyValue {
	return model.KeyValue{Key: key, Value: value}
}

func abcTree() *model.TraceExport {
	return &model.TraceExport{
		ResourceSpans: []model.ResourceSpans{
			{
				Resource: &model.Resource{Attributes: model.Attributes{
					kv("env", model.StringValue("staging")),
					kv("service.name", model.StringValue("checkout")),
				}},
				ScopeSpans: []model.ScopeSpans{
					{
						Scope: &model.InstrumentationScope{Name: "lib", Attributes: model.Attributes{kv("tier", model.StringValue("scope"))}},
						Spans: []model.Span{
							span("a", kv("env", model.StringValue("prod"))),
							span("b", kv("http.status_code", model.IntValue(503))),
						},
					},
				},
			},
			{
				ScopeSpans: []model.ScopeSpans{
					{Spans: []model.Span{span("c", kv("ratio", model.DoubleValue(0.5)))}},
				},
			},
		},
	}
}

func names(t *testing.T, tree *model.TraceExport, p Predicate) []string {
	t.Helper()
	var out []string
	for m := range Search(tree, p) {
		out = append(out, m.Span.Name)
	}
	return out
}

func mustLeaf(t *testing.T, field string, op Op, lit model.AttributeValue) Predicate {
	t.Helper()
	p, err := NewLeaf(field, op, lit)
	require.NoError(t, err)
	return p
}

func TestSearch_BooleanComposition(t *testing.T) {
	tree := abcTree()
	isA := mustLeaf(t, "span.name", OpEq, model.StringValue("a"))
	isB := mustLeaf(t, "span.name", OpEq, model.StringValue("b"))
	isC := mustLeaf(t, "span.name", OpEq, model.StringValue("c"))

	t.Run("Eq selects exactly one span", func(t *testing.T) {
		assert.Equal(t, []string{"b"}, names(t, tree, isB))
	})

	t.Run("Or yields matches in arrival order", func(t *testing.T) {
		assert.Equal(t, []string{"b", "c"}, names(t, tree, Or(isC, isB)))
	})

	t.Run("Not inverts", func(t *testing.T) {
		assert.Equal(t, []string{"b", "c"}, names(t, tree, Not(isA)))
	})

	t.Run("And of disjoint names is empty", func(t *testing.T) {
		assert.Empty(t, names(t, tree, And(isA, isB)))
	})

	t.Run("Empty composites", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, names(t, tree, All()))
		assert.Empty(t, names(t, tree, Or()))
	})
}

func TestSearch_Sequence(t *testing.T) {
	tree := abcTree()

	t.Run("Is restartable", func(t *testing.T) {
		seq := Search(tree, All())
		var first, second []string
		for m := range seq {
			first = append(first, m.Span.Name)
		}
		for m := range seq {
			second = append(second, m.Span.Name)
		}
		assert.Equal(t, first, second)
	})

	t.Run("Stops when the consumer stops", func(t *testing.T) {
		count := 0
		for range Search(tree, All()) {
			count++
			break
		}
		assert.Equal(t, 1, count)
	})

	t.Run("Matches carry their resource and scope", func(t *testing.T) {
		for m := range Search(tree, mustLeaf(t, "name", OpEq, model.StringValue("b"))) {
			assert.Equal(t, "lib", m.Scope.Name)
			require.NotNil(t, m.Resource)
		}
	})

	t.Run("Nil tree yields nothing", func(t *testing.T) {
		assert.Empty(t, names(t, nil, All()))
	})
}

func TestSearch_AttributePrecedence(t *testing.T) {
	tree := abcTree()

	t.Run("Span attribute wins over resource attribute", func(t *testing.T) {
		p := mustLeaf(t, "attribute[env]", OpEq, model.StringValue("prod"))
		assert.Equal(t, []string{"a"}, names(t, tree, p))
	})

	t.Run("Falls back to resource attribute", func(t *testing.T) {
		p := mustLeaf(t, "attribute[env]", OpEq, model.StringValue("staging"))
		assert.Equal(t, []string{"b"}, names(t, tree, p))
	})

	t.Run("Falls back to scope attribute before resource", func(t *testing.T) {
		p := mustLeaf(t, "attr[tier]", OpEq, model.StringValue("scope"))
		assert.Equal(t, []string{"a", "b"}, names(t, tree, p))
	})

	t.Run("Resource attribute field ignores the span level", func(t *testing.T) {
		p := mustLeaf(t, "resource.attribute[env]", OpEq, model.StringValue("staging"))
		assert.Equal(t, []string{"a", "b"}, names(t, tree, p))
	})

	t.Run("Last duplicate wins within a level", func(t *testing.T) {
		dup := &model.TraceExport{ResourceSpans: []model.ResourceSpans{{ScopeSpans: []model.ScopeSpans{{
			Spans: []model.Span{span("d", kv("k", model.StringValue("first")), kv("k", model.StringValue("last")))},
		}}}}}
		assert.Equal(t, []string{"d"}, names(t, dup, mustLeaf(t, "attribute[k]", OpEq, model.StringValue("last"))))
		assert.Empty(t, names(t, dup, mustLeaf(t, "attribute[k]", OpEq, model.StringValue("first"))))
	})
}

func TestSearch_TypedComparison(t *testing.T) {
	tree := abcTree()

	t.Run("Numeric ops compare int against double", func(t *testing.T) {
		p := mustLeaf(t, "attribute[http.status_code]", OpGte, model.DoubleValue(500.0))
		assert.Equal(t, []string{"b"}, names(t, tree, p))
		p = mustLeaf(t, "attribute[ratio]", OpLt, model.IntValue(1))
		assert.Equal(t, []string{"c"}, names(t, tree, p))
	})

	t.Run("Type mismatch is a non-match", func(t *testing.T) {
		p := mustLeaf(t, "attribute[http.status_code]", OpEq, model.StringValue("503"))
		assert.Empty(t, names(t, tree, p))
	})

	t.Run("Ne requires a present comparable value", func(t *testing.T) {
		p := mustLeaf(t, "attribute[http.status_code]", OpNe, model.IntValue(200))
		assert.Equal(t, []string{"b"}, names(t, tree, p))
		p = mustLeaf(t, "attribute[http.status_code]", OpNe, model.StringValue("x"))
		assert.Empty(t, names(t, tree, p))
	})

	t.Run("Exists tests presence", func(t *testing.T) {
		p := mustLeaf(t, "attribute[ratio]", OpExists, model.AttributeValue{})
		assert.Equal(t, []string{"c"}, names(t, tree, p))
		assert.Equal(t, []string{"a", "b"}, names(t, tree, Not(p)))
	})

	t.Run("Contains on strings arrays and kvlists", func(t *testing.T) {
		tree := &model.TraceExport{ResourceSpans: []model.ResourceSpans{{ScopeSpans: []model.ScopeSpans{{
			Spans: []model.Span{
				span("s", kv("v", model.StringValue("hello world"))),
				span("arr", kv("v", model.ArrayValue(model.IntValue(1), model.StringValue("world")))),
				span("map", kv("v", model.KvListValue(kv("world", model.BoolValue(true))))),
				span("int", kv("v", model.IntValue(7))),
			},
		}}}}}
		p := mustLeaf(t, "attribute[v]", OpContains, model.StringValue("world"))
		assert.Equal(t, []string{"s", "arr", "map"}, names(t, tree, p))
		p = mustLeaf(t, "attribute[v]", OpContains, model.IntValue(1))
		assert.Equal(t, []string{"arr"}, names(t, tree, p))
	})

	t.Run("Ordering operators never match strings", func(t *testing.T) {
		for _, op := range []Op{OpGt, OpLt, OpGte, OpLte} {
			p := mustLeaf(t, "name", op, model.StringValue("b"))
			assert.Empty(t, names(t, tree, p), op.String())
		}
		strAttr := &model.TraceExport{ResourceSpans: []model.ResourceSpans{{ScopeSpans: []model.ScopeSpans{{
			Spans: []model.Span{span("s", kv("v", model.StringValue("9")))},
		}}}}}
		assert.Empty(t, names(t, strAttr, mustLeaf(t, "attribute[v]", OpGt, model.IntValue(1))))
	})

	t.Run("Bytes compare against hex text", func(t *testing.T) {
		tree := &model.TraceExport{ResourceSpans: []model.ResourceSpans{{ScopeSpans: []model.ScopeSpans{{
			Spans: []model.Span{span("raw", kv("b", model.BytesValue([]byte{0xde, 0xad})))},
		}}}}}
		p := mustLeaf(t, "attribute[b]", OpEq, model.StringValue("dead"))
		assert.Equal(t, []string{"raw"}, names(t, tree, p))
		p = mustLeaf(t, "attribute[b]", OpGt, model.StringValue("00"))
		assert.Empty(t, names(t, tree, p))
	})
}

func TestSearch_SpanFields(t *testing.T) {
	var traceID model.TraceID
	traceID[15] = 0xab
	var parent model.SpanID
	parent[7] = 1
	tree := &model.TraceExport{ResourceSpans: []model.ResourceSpans{{ScopeSpans: []model.ScopeSpans{{
		Spans: []model.Span{
			{Name: "root", TraceID: traceID, Kind: model.SpanKindServer, StartTimeUnixNano: 100, EndTimeUnixNano: 200_000_100},
			{
				Name: "child", TraceID: traceID, ParentSpanID: parent, Kind: model.SpanKindClient,
				StartTimeUnixNano: 500, EndTimeUnixNano: 100,
				Status: model.Status{Code: model.StatusCodeError, Message: "connection refused"},
			},
		},
	}}}}}

	t.Run("Duration compares with duration text", func(t *testing.T) {
		p := mustLeaf(t, "span.duration", OpGt, model.StringValue("150ms"))
		assert.Equal(t, []string{"root"}, names(t, tree, p))
	})

	t.Run("Negative intervals have zero duration", func(t *testing.T) {
		p := mustLeaf(t, "duration", OpEq, model.IntValue(0))
		assert.Equal(t, []string{"child"}, names(t, tree, p))
	})

	t.Run("Kind and status accept enum names", func(t *testing.T) {
		assert.Equal(t, []string{"root"}, names(t, tree, mustLeaf(t, "span.kind", OpEq, model.StringValue("SPAN_KIND_SERVER"))))
		assert.Equal(t, []string{"child"}, names(t, tree, mustLeaf(t, "span.status.code", OpEq, model.StringValue("error"))))
		assert.Equal(t, []string{"child"}, names(t, tree, mustLeaf(t, "span.status.message", OpContains, model.StringValue("refused"))))
	})

	t.Run("Trace id accepts short hex", func(t *testing.T) {
		p := mustLeaf(t, "span.trace_id", OpEq, model.StringValue("AB"))
		assert.Equal(t, []string{"root", "child"}, names(t, tree, p))
	})

	t.Run("Parent id is absent on roots", func(t *testing.T) {
		p := mustLeaf(t, "parent_span_id", OpExists, model.AttributeValue{})
		assert.Equal(t, []string{"child"}, names(t, tree, p))
	})

	t.Run("Start accepts RFC3339 timestamps", func(t *testing.T) {
		p := mustLeaf(t, "span.start", OpGte, model.StringValue("1970-01-01T00:00:00.0000004Z"))
		assert.Equal(t, []string{"child"}, names(t, tree, p))
	})
}

func TestNewLeaf_Errors(t *testing.T) {
	cases := []struct {
		name  string
		field string
		op    Op
		lit   model.AttributeValue
	}{
		{"Unknown field", "span.colour", OpEq, model.StringValue("x")},
		{"Unknown attribute scope", "link.attribute[x]", OpEq, model.StringValue("x")},
		{"Empty attribute key", "attribute[]", OpEq, model.StringValue("x")},
		{"Bad duration", "span.duration", OpGt, model.StringValue("fast")},
		{"Bad kind", "span.kind", OpEq, model.StringValue("sideways")},
		{"Bad trace id", "span.trace_id", OpEq, model.StringValue("xyz")},
		{"Name against a number", "span.name", OpEq, model.IntValue(3)},
		{"Missing literal", "span.name", OpEq, model.AttributeValue{}},
		{"Contains on a numeric field", "span.duration", OpContains, model.IntValue(3)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewLeaf(c.field, c.op, c.lit)
			var predErr *PredicateError
			assert.True(t, errors.As(err, &predErr), "got %v", err)
		})
	}
}

func TestParseOp(t *testing.T) {
	for text, want := range map[string]Op{"==": OpEq, "ne": OpNe, "~": OpContains, ">=": OpGte, "LTE": OpLte, "exists": OpExists} {
		op, err := ParseOp(text)
		assert.NoError(t, err)
		assert.Equal(t, want, op)
	}
	_, err := ParseOp("=>")
	assert.Error(t, err)
}
