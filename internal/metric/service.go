// Package metric implements discovery and lifecycle of reusable metric
// cards: saved single-aggregation queries whose aggregation carries a
// name/display-name annotation kept in sync with the metric's own name.
package metric

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mwadron/metabase-mcp/internal/mbql"
	"github.com/mwadron/metabase-mcp/model"
)

// Service performs metric operations through the gateway.
type Service struct {
	gw     model.Gateway
	logger *zap.Logger
}

// NewService builds a metric Service.
func NewService(gw model.Gateway, logger *zap.Logger) *Service {
	return &Service{gw: gw, logger: logger}
}

// CreateRequest describes a new metric definition.
type CreateRequest struct {
	Name         string
	Description  string
	TableID      int
	DatabaseID   int
	Aggregation  mbql.Clause
	Filter       mbql.Clause
	CollectionID *int
}

// Create saves a new metric card. The aggregation is wrapped so its
// name/display-name annotation equals the metric's name at creation time.
func (s *Service) Create(ctx context.Context, req CreateRequest) (any, error) {
	if req.Name == "" {
		return nil, model.NewBadRequestError("metric name is required")
	}
	if len(req.Aggregation) == 0 {
		return nil, model.NewBadRequestError("metric aggregation clause is required")
	}

	named := mbql.NamedAggregation(req.Aggregation, req.Name)
	q := mbql.BuildQuery(mbql.QueryInput{
		SourceTable:  req.TableID,
		Aggregations: []mbql.Clause{named},
		Filter:       req.Filter,
	})

	payload := map[string]any{
		"name":                   req.Name,
		"type":                   model.CardTypeMetric,
		"display":                "scalar",
		"dataset_query":          mbql.DatasetQuery(req.DatabaseID, q),
		"visualization_settings": map[string]any{},
	}
	if req.Description != "" {
		payload["description"] = req.Description
	}
	if req.CollectionID != nil {
		payload["collection_id"] = *req.CollectionID
	}

	return s.gw.Send(ctx, http.MethodPost, "/card", payload)
}

// UpdateRequest describes an in-place metric update. Zero-valued fields are
// left unchanged; ClearFilter removes the filter entirely.
type UpdateRequest struct {
	CardID         int
	NewName        string
	NewAggregation mbql.Clause
	NewFilter      mbql.Clause
	ClearFilter    bool
	Description    *string
}

// Update fetches the metric card, rebuilds its aggregation so the
// name/display-name annotation tracks any rename, and writes the card back.
// The existing aggregation is never mutated in place.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (any, error) {
	doc, err := s.gw.Get(ctx, fmt.Sprintf("/card/%d", req.CardID))
	if err != nil {
		return nil, err
	}

	var card model.Card
	if err := model.Decode(doc, &card); err != nil {
		return nil, fmt.Errorf("metric: decode card %d: %w", req.CardID, err)
	}
	if card.Type != model.CardTypeMetric {
		return nil, model.NewBadRequestError(
			fmt.Sprintf("card %d is not a metric (type %q)", req.CardID, card.Type))
	}

	query, _ := card.DatasetQuery["query"].(map[string]any)
	if query == nil {
		return nil, model.NewBadRequestError(
			fmt.Sprintf("card %d has no structured query", req.CardID))
	}

	name := req.NewName
	if name == "" {
		name = card.Name
	}

	var named mbql.Clause
	if len(req.NewAggregation) > 0 {
		named = mbql.NamedAggregation(req.NewAggregation, name)
	} else {
		current, ok := firstAggregation(query)
		if !ok {
			return nil, model.NewBadRequestError(
				fmt.Sprintf("card %d has no aggregation to rename", req.CardID))
		}
		named = mbql.RenameAggregation(current, name)
	}

	// Rebuild the query map instead of mutating the fetched document.
	newQuery := make(map[string]any, len(query))
	for k, v := range query {
		newQuery[k] = v
	}
	newQuery["aggregation"] = []any{[]any(named)}
	if req.ClearFilter {
		delete(newQuery, "filter")
	} else if len(req.NewFilter) > 0 {
		newQuery["filter"] = []any(req.NewFilter)
	}

	datasetQuery := make(map[string]any, len(card.DatasetQuery))
	for k, v := range card.DatasetQuery {
		datasetQuery[k] = v
	}
	datasetQuery["query"] = newQuery

	payload := map[string]any{"dataset_query": datasetQuery}
	if req.NewName != "" {
		payload["name"] = req.NewName
	}
	if req.Description != nil {
		payload["description"] = *req.Description
	}

	return s.gw.Send(ctx, http.MethodPut, fmt.Sprintf("/card/%d", req.CardID), payload)
}

// firstAggregation extracts the first aggregation clause from a parsed
// structured query.
func firstAggregation(query map[string]any) (mbql.Clause, bool) {
	aggs, ok := query["aggregation"].([]any)
	if !ok || len(aggs) == 0 {
		return nil, false
	}
	return mbql.FromDocument(aggs[0])
}
