package search

import (
	"errors"
	"github.com/Frefreak/otlp-toolkit/pkg/otlp/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func mustParse(t *testing.T, query string) Predicate {
	t.Helper()
	p, err := Parse(query)
	require.NoError(t, err)
	return p
}

func TestParse(t *testing.T) {
	tree := abcTree()

	t.Run("Simple equality", func(t *testing.T) {
		assert.Equal(t, []string{"b"}, names(t, tree, mustParse(t, `name eq "b"`)))
		assert.Equal(t, []string{"b"}, names(t, tree, mustParse(t, `span.name == b`)))
	})

	t.Run("Or keeps arrival order", func(t *testing.T) {
		assert.Equal(t, []string{"b", "c"}, names(t, tree, mustParse(t, `name eq "c" or name eq "b"`)))
	})

	t.Run("Not with parentheses", func(t *testing.T) {
		assert.Equal(t, []string{"b", "c"}, names(t, tree, mustParse(t, `not (name eq "a")`)))
	})

	t.Run("And binds tighter than or", func(t *testing.T) {
		q := `name == "a" or name == "b" and attribute[http.status_code] >= 500`
		assert.Equal(t, []string{"a", "b"}, names(t, tree, mustParse(t, q)))
		q = `(name == "a" or name == "b") and attribute[http.status_code] >= 500`
		assert.Equal(t, []string{"b"}, names(t, tree, mustParse(t, q)))
	})

	t.Run("Keywords are case-insensitive", func(t *testing.T) {
		assert.Equal(t, []string{"a"}, names(t, tree, mustParse(t, `NOT name != "a" AND name EXISTS`)))
	})

	t.Run("Quoted attribute keys", func(t *testing.T) {
		assert.Equal(t, []string{"b"}, names(t, tree, mustParse(t, `attribute["http.status_code"] == 503`)))
		assert.Equal(t, []string{"a", "b"}, names(t, tree, mustParse(t, `resource.attribute['service.name'] ~ check`)))
	})

	t.Run("Bare numbers against attributes are numeric", func(t *testing.T) {
		assert.Equal(t, []string{"c"}, names(t, tree, mustParse(t, `attr[ratio] < 0.75`)))
		assert.Empty(t, names(t, tree, mustParse(t, `attr[http.status_code] == "503"`)))
	})

	t.Run("Exists takes no value", func(t *testing.T) {
		assert.Equal(t, []string{"c"}, names(t, tree, mustParse(t, `attribute[ratio] exists`)))
	})

	t.Run("Empty query matches everything", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, names(t, tree, mustParse(t, "  ")))
	})

	t.Run("Duration literals", func(t *testing.T) {
		tree := &model.TraceExport{ResourceSpans: []model.ResourceSpans{{ScopeSpans: []model.ScopeSpans{{
			Spans: []model.Span{
				{Name: "slow", StartTimeUnixNano: 0, EndTimeUnixNano: 2_000_000_000},
				{Name: "fast", StartTimeUnixNano: 0, EndTimeUnixNano: 1_000},
			},
		}}}}}
		assert.Equal(t, []string{"slow"}, names(t, tree, mustParse(t, `duration > 1.5s`)))
		assert.Equal(t, []string{"fast"}, names(t, tree, mustParse(t, `duration <= 1000`)))
	})
}

func TestParse_Errors(t *testing.T) {
	queries := []string{
		`name`,
		`name ==`,
		`name == "unterminated`,
		`(name == "a"`,
		`name == "a" name == "b"`,
		`colour == red`,
		`attribute[x == 1`,
		`kind == sideways`,
		`name => "a"`,
		`name == "a" and`,
		`!name`,
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			_, err := Parse(q)
			var predErr *PredicateError
			assert.True(t, errors.As(err, &predErr), "query %q gave %v", q, err)
		})
	}
}
