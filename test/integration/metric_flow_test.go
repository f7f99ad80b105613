package integration

import (
	"context"
	"testing"

	"github.com/mwadron/metabase-mcp/internal/mbql"
	"github.com/mwadron/metabase-mcp/internal/metric"
)

func TestMetricLifecycle_endToEnd(t *testing.T) {
	h := NewTestHarness(t)

	created, err := h.Metrics.Create(context.Background(), metric.CreateRequest{
		Name:        "Total Revenue",
		Description: "Sum of order totals",
		TableID:     5,
		DatabaseID:  2,
		Aggregation: mbql.Aggregation("sum", []any{"field", 12, nil}),
		Filter:      mbql.Clause{"=", []any{"field", 4, nil}, "paid"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	cardID := int(created.(map[string]any)["id"].(float64))

	stored := h.Mock.Card(cardID)
	if stored["type"] != "metric" {
		t.Errorf("stored type = %v, want metric", stored["type"])
	}
	agg := stored["dataset_query"].(map[string]any)["query"].(map[string]any)["aggregation"].([]any)[0].([]any)
	if agg[0] != "aggregation-options" {
		t.Fatalf("stored aggregation tag = %v", agg[0])
	}
	if opts := agg[2].(map[string]any); opts["display-name"] != "Total Revenue" {
		t.Errorf("annotation = %v", opts)
	}

	// Discovery sees the new metric through the wrapper.
	found, err := h.Metrics.Find(context.Background(), 5, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found = %d metrics, want 1", len(found))
	}
	if found[0].ID != cardID || found[0].Aggregation != "sum" || !found[0].HasFilter {
		t.Errorf("summary = %+v", found[0])
	}

	// Renaming keeps the annotation in sync with the stored card.
	if _, err := h.Metrics.Update(context.Background(), metric.UpdateRequest{
		CardID:  cardID,
		NewName: "Net Revenue",
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored = h.Mock.Card(cardID)
	if stored["name"] != "Net Revenue" {
		t.Errorf("stored name = %v", stored["name"])
	}
	agg = stored["dataset_query"].(map[string]any)["query"].(map[string]any)["aggregation"].([]any)[0].([]any)
	if opts := agg[2].(map[string]any); opts["name"] != "Net Revenue" || opts["display-name"] != "Net Revenue" {
		t.Errorf("annotation after rename = %v", opts)
	}
}

func TestSessionAuth_loginOnce(t *testing.T) {
	h := NewTestHarness(t, WithSessionAuth())
	h.Mock.SeedDashboard(seedTargetDashboard)

	for i := 0; i < 3; i++ {
		if _, err := h.Dashboards.Get(context.Background(), 20); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
	}
	if h.Mock.SessionLogins != 1 {
		t.Errorf("session logins = %d, want 1 (token cached)", h.Mock.SessionLogins)
	}
}
