package client

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/elasticsearch/model"
	"strings"
)

func (c *ClientImpl) Search(ctx context.Context, query string, indices []string, size *int) ([]model.Hit, error) {
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(indices...),
		c.es.Search.WithBody(strings.NewReader(query)),
		c.es.Search.WithSize(searchSize(size)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search rejected: %s", res.String())
	}

	var searchResponse model.SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&searchResponse); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return searchResponse.Hits.Hits, nil
}

func (c *ClientImpl) Count(ctx context.Context, query string, indices []string) (int64, error) {
	res, err := c.es.Count(
		c.es.Count.WithContext(ctx),
		c.es.Count.WithIndex(indices...),
		c.es.Count.WithBody(strings.NewReader(query)),
	)
	if err != nil {
		return 0, fmt.Errorf("count request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("count rejected: %s", res.String())
	}

	var countResponse model.CountResponse
	if err := json.NewDecoder(res.Body).Decode(&countResponse); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}
	return countResponse.Count, nil
}

func searchSize(size *int) int {
	if size == nil || *size < 0 {
		return DefaultSearchSize
	}
	return *size
}
