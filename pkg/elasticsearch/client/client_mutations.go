package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/elasticsearch/model"
	"strings"
)

type indexAction struct {
	Index struct {
		ID string `json:"_id,omitempty"`
	} `json:"index"`
}

func (c *ClientImpl) BulkIndex(ctx context.Context, index string, docs []BulkDocument) error {
	if len(docs) == 0 {
		return nil
	}
	body, err := bulkBody(docs)
	if err != nil {
		return err
	}

	res, err := c.es.Bulk(
		bytes.NewReader(body),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(index),
		c.es.Bulk.WithRefresh(string(c.refresh)),
	)
	if err != nil {
		return fmt.Errorf("bulk request to %s failed: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk request to %s rejected: %s", index, res.String())
	}

	var bulkResponse model.BulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	return bulkFailures(bulkResponse)
}

// bulkBody renders the ndjson action and source pairs of a bulk request.
func bulkBody(docs []BulkDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, doc := range docs {
		var action indexAction
		action.Index.ID = doc.ID
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("failed to encode action %d: %w", i, err)
		}
		if err := json.Compact(&buf, doc.Source); err != nil {
			return nil, fmt.Errorf("document %d is not valid JSON: %w", i, err)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func bulkFailures(res model.BulkResponse) error {
	if !res.Errors {
		return nil
	}
	var msgs []string
	for _, item := range res.Items {
		for action, result := range item {
			if result.Error != nil {
				msgs = append(msgs, fmt.Sprintf("%s %s: %s (%s)", action, result.ID, result.Error.Reason, result.Error.Type))
			}
		}
	}
	return errors.New("bulk index failures: " + strings.Join(msgs, "; "))
}
