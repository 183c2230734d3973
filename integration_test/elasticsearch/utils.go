//go:build integration

package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/elastic/go-elasticsearch/v8"
	"strings"
)

const matchAll = `{"query":{"match_all":{}}}`

// clearIndex removes every document and refreshes so counts start at zero.
func clearIndex(ctx context.Context, es *elasticsearch.Client, index string) error {
	res, err := es.DeleteByQuery(
		[]string{index},
		strings.NewReader(matchAll),
		es.DeleteByQuery.WithContext(ctx),
		es.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to clear %s: %s", index, res.String())
	}
	return nil
}

func termQuery(field string, value interface{}) string {
	query, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{field: value},
		},
	})
	return string(query)
}
