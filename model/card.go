package model

// Card is a saved question. Only the fields the metric machinery reads are
// typed; DatasetQuery stays a generic document because its shape varies by
// query type.
type Card struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Type         string         `json:"type,omitempty"`
	CollectionID *int           `json:"collection_id,omitempty"`
	DatabaseID   int            `json:"database_id,omitempty"`
	DatasetQuery map[string]any `json:"dataset_query,omitempty"`
}

// CardTypeMetric marks a saved card as a reusable metric definition.
const CardTypeMetric = "metric"

// MetricSummary is the normalized view of one discovered metric.
type MetricSummary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	TableID      int    `json:"table_id"`
	DatabaseID   int    `json:"database_id,omitempty"`
	Aggregation  string `json:"aggregation"`
	HasFilter    bool   `json:"has_filter"`
	CollectionID *int   `json:"collection_id,omitempty"`
}
