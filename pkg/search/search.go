package search

import (
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"iter"
)

// Match is a span together with the resource and scope it was found under.
// All pointers refer into the searched tree.
type Match struct {
	Resource *model.Resource
	Scope    *model.InstrumentationScope
	Span     *model.Span
}

// Attribute resolves key with span attributes taking precedence over scope
// attributes, and scope attributes over resource attributes.
func (m *Match) Attribute(key string) (model.AttributeValue, bool) {
	if v, ok := m.Span.Attributes.Get(key); ok {
		return v, true
	}
	if m.Scope != nil {
		if v, ok := m.Scope.Attributes.Get(key); ok {
			return v, true
		}
	}
	if m.Resource != nil {
		if v, ok := m.Resource.Attributes.Get(key); ok {
			return v, true
		}
	}
	return model.AttributeValue{}, false
}

// Search yields the spans of tree matching p, depth first in wire order.
// The sequence can be iterated any number of times.
func Search(tree *model.TraceExport, p Predicate) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		if tree == nil {
			return
		}
		for i := range tree.ResourceSpans {
			rs := &tree.ResourceSpans[i]
			for j := range rs.ScopeSpans {
				ss := &rs.ScopeSpans[j]
				for k := range ss.Spans {
					m := Match{Resource: rs.Resource, Scope: ss.Scope, Span: &ss.Spans[k]}
					if p.Eval(&m) && !yield(m) {
						return
					}
				}
			}
		}
	}
}

type PredicateError struct {
	Field   string
	Literal string
	Reason  string
}

func (e *PredicateError) Error() string {
	switch {
	case e.Field == "":
		return fmt.Sprintf("invalid query: %s", e.Reason)
	case e.Literal == "":
		return fmt.Sprintf("invalid predicate on %q: %s", e.Field, e.Reason)
	default:
		return fmt.Sprintf("invalid predicate on %q with value %s: %s", e.Field, e.Literal, e.Reason)
	}
}
