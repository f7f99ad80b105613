package tools

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mwadron/metabase-mcp/model"
)

func requestWith(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// jsonArgs round-trips fixture literals through JSON so handler inputs have
// wire-shape types (float64 numbers, []any arrays).
func jsonArgs(t *testing.T, raw string) map[string]any {
	t.Helper()
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return args
}

func TestOptionalInt(t *testing.T) {
	req := requestWith(jsonArgs(t, `{"collection_id": 7}`))
	if got := optionalInt(req, "collection_id"); got == nil || *got != 7 {
		t.Errorf("optionalInt(present) = %v, want 7", got)
	}
	if got := optionalInt(req, "parent_id"); got != nil {
		t.Errorf("optionalInt(absent) = %v, want nil", got)
	}
}

func TestClauseArg(t *testing.T) {
	args := jsonArgs(t, `{"filter": ["=", ["field", 4, null], "paid"], "bad": "not a clause"}`)

	c, err := clauseArg(args, "filter")
	if err != nil {
		t.Fatalf("clauseArg() error = %v", err)
	}
	if c.Tag() != "=" {
		t.Errorf("tag = %q", c.Tag())
	}

	if c, err := clauseArg(args, "absent"); err != nil || c != nil {
		t.Errorf("absent clause = %v, %v; want nil, nil", c, err)
	}

	_, err = clauseArg(args, "bad")
	var ee *model.ErrorEnvelope
	if !errors.As(err, &ee) || ee.Code != model.ErrBadRequest {
		t.Errorf("error = %v, want BAD_REQUEST", err)
	}
}

func TestQueryInputFromArgs(t *testing.T) {
	req := requestWith(jsonArgs(t, `{
		"aggregations": [["count"], ["sum", ["field", 12, null]]],
		"breakouts": [["field", 31, {"temporal-unit": "month"}]],
		"filter": ["=", ["field", 4, null], "paid"],
		"order_by": [["desc", ["aggregation", 0]]],
		"expressions": {"margin": ["-", ["field", 1, null], ["field", 2, null]]},
		"joins": [{"source-table": 9, "alias": "People", "condition": ["=", ["field", 7, null], ["field", 13, {"join-alias": "People"}]]}],
		"limit": 50
	}`))

	in, err := queryInputFromArgs(req, 5)
	if err != nil {
		t.Fatalf("queryInputFromArgs() error = %v", err)
	}
	if in.SourceTable != 5 {
		t.Errorf("SourceTable = %d", in.SourceTable)
	}
	if len(in.Aggregations) != 2 || in.Aggregations[1].Tag() != "sum" {
		t.Errorf("Aggregations = %v", in.Aggregations)
	}
	if len(in.Breakouts) != 1 || in.Breakouts[0].Tag() != "field" {
		t.Errorf("Breakouts = %v", in.Breakouts)
	}
	if in.Filter.Tag() != "=" {
		t.Errorf("Filter = %v", in.Filter)
	}
	if len(in.OrderBy) != 1 {
		t.Errorf("OrderBy = %v", in.OrderBy)
	}
	if in.Expressions["margin"].Tag() != "-" {
		t.Errorf("Expressions = %v", in.Expressions)
	}
	if len(in.Joins) != 1 || in.Joins[0].SourceTable != 9 || in.Joins[0].Alias != "People" {
		t.Errorf("Joins = %+v", in.Joins)
	}
	if in.Limit != 50 {
		t.Errorf("Limit = %d", in.Limit)
	}
}

func TestQueryInputFromArgs_allOptional(t *testing.T) {
	in, err := queryInputFromArgs(requestWith(map[string]any{}), 5)
	if err != nil {
		t.Fatalf("queryInputFromArgs() error = %v", err)
	}
	if in.Aggregations != nil || in.Filter != nil || in.Joins != nil || in.Limit != 0 {
		t.Errorf("empty args produced non-zero inputs: %+v", in)
	}
}

func TestJoinsArg_missingSourceTable(t *testing.T) {
	_, err := joinsArg(jsonArgs(t, `{"joins": [{"alias": "People"}]}`))
	var ee *model.ErrorEnvelope
	if !errors.As(err, &ee) || ee.Code != model.ErrBadRequest {
		t.Errorf("error = %v, want BAD_REQUEST", err)
	}
}
