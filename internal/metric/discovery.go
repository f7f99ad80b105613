package metric

import (
	"context"

	"go.uber.org/zap"

	"github.com/mwadron/metabase-mcp/internal/mbql"
	"github.com/mwadron/metabase-mcp/model"
)

// Find scans all saved cards, retains those typed as metrics whose stored
// query reads from tableID (and, when databaseID is non-nil, from that
// database), and returns a normalized summary per match.
//
// An empty result is an expected outcome, not an error: it signals that no
// standardized metric exists yet for the table.
func (s *Service) Find(ctx context.Context, tableID int, databaseID *int) ([]model.MetricSummary, error) {
	doc, err := s.gw.Get(ctx, "/card")
	if err != nil {
		return nil, err
	}

	summaries := []model.MetricSummary{}
	for _, entry := range cardList(doc) {
		card, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if cardType, _ := card["type"].(string); cardType != model.CardTypeMetric {
			continue
		}

		datasetQuery, _ := card["dataset_query"].(map[string]any)
		query, _ := datasetQuery["query"].(map[string]any)
		if query == nil {
			continue
		}

		sourceTable, ok := intValue(query["source-table"])
		if !ok || sourceTable != tableID {
			continue
		}

		cardDatabase, _ := intValue(datasetQuery["database"])
		if databaseID != nil && cardDatabase != *databaseID {
			continue
		}

		summary := model.MetricSummary{
			Name:        stringValue(card["name"]),
			Description: stringValue(card["description"]),
			TableID:     sourceTable,
			DatabaseID:  cardDatabase,
			Aggregation: aggregationOperator(query),
			HasFilter:   query["filter"] != nil,
		}
		summary.ID, _ = intValue(card["id"])
		if collectionID, ok := intValue(card["collection_id"]); ok {
			summary.CollectionID = &collectionID
		}

		summaries = append(summaries, summary)
	}

	s.logger.Debug("metric discovery completed",
		zap.Int("table_id", tableID),
		zap.Int("matches", len(summaries)),
	)
	return summaries, nil
}

// cardList tolerates both response shapes of GET /card: a bare array and an
// object with a data list.
func cardList(doc any) []any {
	if list, ok := doc.([]any); ok {
		return list
	}
	if m, ok := doc.(map[string]any); ok {
		if list, ok := m["data"].([]any); ok {
			return list
		}
	}
	return nil
}

// aggregationOperator reports the operator tag of the query's first
// aggregation clause, or "unknown" when absent or malformed.
func aggregationOperator(query map[string]any) string {
	agg, ok := firstAggregation(query)
	if !ok {
		return mbql.AggregationOperator(nil)
	}
	return mbql.AggregationOperator(agg)
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
