package bootstrapper

const DefaultSpanIndexName = "otk_spans"

var spanIndex = map[string]interface{}{
	"settings": map[string]interface{}{
		"number_of_shards":   1,
		"number_of_replicas": 0,
	},
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"capture_id":     map[string]interface{}{"type": "keyword"},
			"created_at":     map[string]interface{}{"type": "date"},
			"trace_id":       map[string]interface{}{"type": "keyword"},
			"span_id":        map[string]interface{}{"type": "keyword"},
			"parent_span_id": map[string]interface{}{"type": "keyword"},
			"service":        map[string]interface{}{"type": "keyword"},
			"scope":          map[string]interface{}{"type": "keyword"},
			"name":           map[string]interface{}{"type": "keyword"},
			"kind":           map[string]interface{}{"type": "keyword"},
			"start_time":     map[string]interface{}{"type": "date_nanos"},
			"end_time":       map[string]interface{}{"type": "date_nanos"},
			"duration_nanos": map[string]interface{}{"type": "long"},
			"status_code":    map[string]interface{}{"type": "keyword"},
			"status_message": map[string]interface{}{"type": "text"},
			"attributes": map[string]interface{}{
				"type": "flattened",
			},
			"resource_attributes": map[string]interface{}{
				"type": "flattened",
			},
		},
	},
}
