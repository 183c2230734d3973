package model

// BulkResponse is the body of a _bulk call. Errors is true when at least one
// item failed; the failing items carry an Error.
type BulkResponse struct {
	Took   int                         `json:"took"`
	Errors bool                        `json:"errors"`
	Items  []map[string]BulkItemResult `json:"items"`
}

type BulkItemResult struct {
	Index  string     `json:"_index"`
	ID     string     `json:"_id"`
	Status int        `json:"status"`
	Error  *BulkError `json:"error,omitempty"`
}

type BulkError struct {
	Type   string `json:"type"` // e.g. version_conflict_engine_exception
	Reason string `json:"reason"`
}
