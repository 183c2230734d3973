package client

import (
	"context"
	"github.com/Frefreak/otlp-toolkit/pkg/elasticsearch/model"
	"github.com/elastic/go-elasticsearch/v8"
)

// DefaultSearchSize is the number of hits returned when Search is given no size.
const DefaultSearchSize = 10

// RefreshRate is the refresh parameter sent with bulk requests.
type RefreshRate string

const (
	// Wait blocks the request until a refresh makes the documents searchable.
	Wait RefreshRate = "wait_for"
	// Immediate forces a refresh of the affected shards.
	Immediate RefreshRate = "true"
	Async     RefreshRate = "false"
)

type Client interface {
	// BulkIndex writes docs to index in a single _bulk request.
	// https://www.elastic.co/guide/en/elasticsearch/reference/current/docs-bulk.html
	BulkIndex(ctx context.Context, index string, docs []BulkDocument) error
	// Search returns the raw hits of a query. A nil size selects DefaultSearchSize.
	// https://www.elastic.co/guide/en/elasticsearch/reference/current/search-search.html
	Search(ctx context.Context, query string, indices []string, size *int) ([]model.Hit, error)
	// https://www.elastic.co/guide/en/elasticsearch/reference/current/search-count.html
	Count(ctx context.Context, query string, indices []string) (int64, error)
}

type ClientImpl struct {
	es      *elasticsearch.Client
	refresh RefreshRate
}

func NewClientImpl(es *elasticsearch.Client, refresh RefreshRate) *ClientImpl {
	return &ClientImpl{es: es, refresh: refresh}
}
