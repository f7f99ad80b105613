package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mwadron/metabase-mcp/internal/mbql"
	"github.com/mwadron/metabase-mcp/model"
)

// optionalInt returns a pointer to the integer argument, or nil when the
// argument was not supplied at all.
func optionalInt(req mcp.CallToolRequest, name string) *int {
	if _, ok := req.GetArguments()[name]; !ok {
		return nil
	}
	v := req.GetInt(name, 0)
	return &v
}

// clauseArg parses one optional clause argument. Absent means nil.
func clauseArg(args map[string]any, name string) (mbql.Clause, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	c, ok := mbql.FromDocument(v)
	if !ok {
		return nil, model.NewBadRequestError(name + " must be a clause array")
	}
	return c, nil
}

// clauseListArg parses an optional list of clauses. Absent means nil.
func clauseListArg(args map[string]any, name string) ([]mbql.Clause, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, model.NewBadRequestError(name + " must be an array of clause arrays")
	}
	out := make([]mbql.Clause, 0, len(list))
	for i, item := range list {
		c, ok := mbql.FromDocument(item)
		if !ok {
			return nil, model.NewBadRequestError(fmt.Sprintf("%s[%d] is not a clause array", name, i))
		}
		out = append(out, c)
	}
	return out, nil
}

// expressionsArg parses the optional name-to-clause expressions object.
func expressionsArg(args map[string]any) (map[string]mbql.Clause, error) {
	v, ok := args["expressions"]
	if !ok || v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, model.NewBadRequestError("expressions must be an object of name to clause")
	}
	out := make(map[string]mbql.Clause, len(obj))
	for name, raw := range obj {
		c, ok := mbql.FromDocument(raw)
		if !ok {
			return nil, model.NewBadRequestError(fmt.Sprintf("expression %q is not a clause array", name))
		}
		out[name] = c
	}
	return out, nil
}

// joinsArg parses the optional joins list.
func joinsArg(args map[string]any) ([]mbql.Join, error) {
	v, ok := args["joins"]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, model.NewBadRequestError("joins must be an array of join objects")
	}
	out := make([]mbql.Join, 0, len(list))
	for i, item := range list {
		var j mbql.Join
		if err := model.Decode(item, &j); err != nil {
			return nil, model.NewBadRequestError(fmt.Sprintf("joins[%d]: %v", i, err))
		}
		if j.SourceTable == 0 {
			return nil, model.NewBadRequestError(fmt.Sprintf("joins[%d] is missing source-table", i))
		}
		out = append(out, j)
	}
	return out, nil
}

// queryInputFromArgs assembles the structured-query inputs shared by the
// run and save tool paths, so both produce identical documents from
// identical arguments.
func queryInputFromArgs(req mcp.CallToolRequest, sourceTable int) (mbql.QueryInput, error) {
	args := req.GetArguments()
	in := mbql.QueryInput{SourceTable: sourceTable}

	var err error
	if in.Aggregations, err = clauseListArg(args, "aggregations"); err != nil {
		return in, err
	}
	if in.Breakouts, err = clauseListArg(args, "breakouts"); err != nil {
		return in, err
	}
	if in.Filter, err = clauseArg(args, "filter"); err != nil {
		return in, err
	}
	if in.OrderBy, err = clauseListArg(args, "order_by"); err != nil {
		return in, err
	}
	if in.Expressions, err = expressionsArg(args); err != nil {
		return in, err
	}
	if in.Joins, err = joinsArg(args); err != nil {
		return in, err
	}
	if in.Fields, err = clauseListArg(args, "fields"); err != nil {
		return in, err
	}
	in.Limit = req.GetInt("limit", 0)
	return in, nil
}
