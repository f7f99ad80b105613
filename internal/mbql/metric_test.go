package mbql

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNamedAggregation_roundTrip(t *testing.T) {
	agg := Aggregation("sum", []any{"field", 12, nil})

	wrapped := NamedAggregation(agg, "Total Revenue")
	if wrapped.Tag() != "aggregation-options" {
		t.Fatalf("tag = %q, want aggregation-options", wrapped.Tag())
	}
	if !IsNamedAggregation(wrapped) {
		t.Error("IsNamedAggregation(wrapped) = false")
	}

	inner := UnwrapAggregation(wrapped)
	if !reflect.DeepEqual(inner, agg) {
		t.Errorf("unwrapped = %v, want %v", inner, agg)
	}

	opts, ok := wrapped[2].(map[string]any)
	if !ok {
		t.Fatalf("options slot type = %T", wrapped[2])
	}
	if opts["name"] != "Total Revenue" || opts["display-name"] != "Total Revenue" {
		t.Errorf("annotation = %v", opts)
	}
}

func TestRenameAggregation_wrapped(t *testing.T) {
	agg := Aggregation("avg", []any{"field", 4, nil})
	wrapped := NamedAggregation(agg, "Old Name")

	before, err := json.Marshal([]any(agg))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	renamed := RenameAggregation(wrapped, "New Name")

	// Only the annotation changes; the inner aggregation is byte-identical.
	after, err := json.Marshal([]any(UnwrapAggregation(renamed)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("inner aggregation changed: %s -> %s", before, after)
	}

	opts := renamed[2].(map[string]any)
	if opts["name"] != "New Name" || opts["display-name"] != "New Name" {
		t.Errorf("annotation = %v", opts)
	}

	// The original wrapped clause is not mutated.
	origOpts := wrapped[2].(map[string]any)
	if origOpts["name"] != "Old Name" {
		t.Errorf("input clause mutated: %v", origOpts)
	}
}

func TestRenameAggregation_unwrappedBehavesAsWrap(t *testing.T) {
	agg := Aggregation("count")
	renamed := RenameAggregation(agg, "Row Count")

	if !IsNamedAggregation(renamed) {
		t.Fatal("rename of bare aggregation did not wrap it")
	}
	if !reflect.DeepEqual(UnwrapAggregation(renamed), agg) {
		t.Errorf("inner = %v, want %v", UnwrapAggregation(renamed), agg)
	}
}

func TestAggregationOperator(t *testing.T) {
	tests := []struct {
		name string
		c    Clause
		want string
	}{
		{"bare", Aggregation("sum", []any{"field", 1, nil}), "sum"},
		{"wrapped", NamedAggregation(Aggregation("distinct", []any{"field", 2, nil}), "Uniques"), "distinct"},
		{"empty", Clause{}, "unknown"},
		{"nil", nil, "unknown"},
		{"untagged", Clause{42}, "unknown"},
	}
	for _, tt := range tests {
		if got := AggregationOperator(tt.c); got != tt.want {
			t.Errorf("%s: operator = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// Clauses arriving from parsed JSON are []any, not Clause; unwrapping must
// handle both.
func TestUnwrapAggregation_fromParsedJSON(t *testing.T) {
	var doc any
	raw := `["aggregation-options", ["sum", ["field", 7, null]], {"name": "Revenue", "display-name": "Revenue"}]`
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	c, ok := FromDocument(doc)
	if !ok {
		t.Fatal("FromDocument failed")
	}
	if got := AggregationOperator(c); got != "sum" {
		t.Errorf("operator = %q, want sum", got)
	}
}
