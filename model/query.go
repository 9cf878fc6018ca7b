package model

import "time"

type QueryReq struct {
	DataSourceId string `json:"dataSourceId"`
	Database     string `json:"database"`
	Statement    string `json:"statement"`
	Limit        int    `json:"limit"`
	Submitter    string `json:"submitter"`
}

type QueryResult struct {
	Columns    []string                 `json:"columns"`
	Rows       []map[string]interface{} `json:"rows"`
	RowCount   int                      `json:"rowCount"`
	Truncated  bool                     `json:"truncated"`
	DurationMs int64                    `json:"durationMs"`
}

// QueryRecord is the history entry kept after a workbench query; the
// result set itself is never persisted.
type QueryRecord struct {
	QueryId      string    `json:"queryId" yaml:"query_id"`
	DataSourceId string    `json:"dataSourceId" yaml:"datasource_id"`
	Database     string    `json:"database" yaml:"database"`
	Statement    string    `json:"statement" yaml:"statement"`
	Submitter    string    `json:"submitter" yaml:"submitter"`
	RowCount     int       `json:"rowCount" yaml:"row_count"`
	Truncated    bool      `json:"truncated" yaml:"truncated"`
	DurationMs   int64     `json:"durationMs" yaml:"duration_ms"`
	CreatedAt    time.Time `json:"createdAt" yaml:"created_at"`
}
