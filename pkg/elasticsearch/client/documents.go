package client

import (
	"encoding/json"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/elasticsearch/model"
)

// Document is a value that can be written with the bulk API. An empty
// DocumentID lets Elasticsearch generate the id.
type Document interface {
	DocumentID() string
}

// BulkDocument is a single index action of a bulk request.
type BulkDocument struct {
	ID     string
	Source json.RawMessage
}

func ToBulkDocuments[T Document](values []T) ([]BulkDocument, error) {
	docs := make([]BulkDocument, len(values))
	for i, v := range values {
		source, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document %d: %w", i, err)
		}
		docs[i] = BulkDocument{ID: v.DocumentID(), Source: source}
	}
	return docs, nil
}

// DecodeHits unmarshals the _source of every hit into T.
func DecodeHits[T any](hits []model.Hit) ([]T, error) {
	out := make([]T, len(hits))
	for i, hit := range hits {
		if len(hit.Source) == 0 {
			continue
		}
		if err := json.Unmarshal(hit.Source, &out[i]); err != nil {
			return nil, fmt.Errorf("failed to decode hit %s: %w", hit.ID, err)
		}
	}
	return out, nil
}
