package tools

import (
	"strings"
	"testing"
)

func TestRenderTableList_sortsAndEscapes(t *testing.T) {
	metadata := map[string]any{
		"tables": []any{
			map[string]any{"id": float64(3), "schema": "public", "name": "orders", "display_name": "Orders", "entity_type": "entity/TransactionTable"},
			map[string]any{"id": float64(1), "schema": "analytics", "name": "events", "display_name": "Raw | Events", "entity_type": nil},
			map[string]any{"id": float64(2), "schema": "public", "name": "accounts", "display_name": "Accounts", "entity_type": "entity/CompanyTable"},
		},
	}

	out := renderTableList(metadata)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want header + separator + 3 rows:\n%s", len(lines), out)
	}

	// analytics sorts before public; within public, accounts before orders.
	if !strings.Contains(lines[2], "events") {
		t.Errorf("row 1 = %q, want events first", lines[2])
	}
	if !strings.Contains(lines[3], "accounts") || !strings.Contains(lines[4], "orders") {
		t.Errorf("public rows out of order:\n%s", out)
	}

	// A pipe in cell content must not break the table.
	if !strings.Contains(out, `Raw \| Events`) {
		t.Errorf("pipe not escaped:\n%s", out)
	}
}

func TestRenderTableList_empty(t *testing.T) {
	out := renderTableList(map[string]any{"tables": []any{}})
	if !strings.Contains(out, "No tables found") {
		t.Errorf("empty rendering = %q", out)
	}
}

func TestSummarizeFields_truncates(t *testing.T) {
	fields := make([]any, defaultFieldLimit+20)
	for i := range fields {
		fields[i] = map[string]any{
			"id": float64(i), "name": "f", "display_name": "F", "base_type": "type/Text",
		}
	}
	out := summarizeFields(9, map[string]any{"name": "wide_table", "fields": fields}, defaultFieldLimit)

	got := out["fields"].([]map[string]any)
	if len(got) != defaultFieldLimit {
		t.Errorf("fields = %d, want %d", len(got), defaultFieldLimit)
	}
	if out["_truncated"] != true {
		t.Error("_truncated not set")
	}
	if out["_total_fields"] != defaultFieldLimit+20 {
		t.Errorf("_total_fields = %v", out["_total_fields"])
	}
	if out["_limit_applied"] != defaultFieldLimit {
		t.Errorf("_limit_applied = %v", out["_limit_applied"])
	}
	if out["table_name"] != "wide_table" {
		t.Errorf("table_name = %v", out["table_name"])
	}
}

func TestSummarizeFields_small(t *testing.T) {
	out := summarizeFields(9, map[string]any{"fields": []any{
		map[string]any{"id": float64(1), "name": "status", "display_name": "Status",
			"base_type": "type/Text", "semantic_type": "type/Category"},
	}}, defaultFieldLimit)

	if _, ok := out["_truncated"]; ok {
		t.Error("_truncated set on a small table")
	}
	got := out["fields"].([]map[string]any)
	if len(got) != 1 || got[0]["semantic_type"] != "type/Category" {
		t.Errorf("fields = %v", got)
	}
}
