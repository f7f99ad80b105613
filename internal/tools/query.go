package tools

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mwadron/metabase-mcp/internal/mbql"
)

func registerQueryTools(s *server.MCPServer, d Deps) {
	executeQuery := mcp.NewTool("execute_query",
		mcp.WithDescription("Run a native SQL query against one database and return the raw result set."),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("Database to run against"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("SQL text"),
		),
		mcp.WithArray("native_parameters",
			mcp.Description("Optional template parameters, passed through uninterpreted"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(executeQuery, d.instrument("execute_query", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		databaseID, err := req.RequireInt("database_id")
		if err != nil {
			return badRequest("execute_query", err.Error())
		}
		sql, err := req.RequireString("query")
		if err != nil {
			return badRequest("execute_query", err.Error())
		}
		params, _ := req.GetArguments()["native_parameters"].([]any)

		result, err := d.Gateway.Send(ctx, http.MethodPost, "/dataset",
			mbql.NativeQuery(databaseID, sql, params))
		if err != nil {
			return errResult("execute_query", err)
		}
		return jsonResult(result)
	}))

	runMBQL := mcp.NewTool("run_mbql_query",
		mcp.WithDescription(`Run a structured (MBQL) query and return the result set.

Clause arguments are JSON arrays in wire form, for example:
- aggregation: ["sum", ["field", 12, null]]
- breakout with bucketing: ["field", 31, {"temporal-unit": "month"}]
- filter: ["=", ["field", 4, null], "paid"]
- order-by: ["desc", ["aggregation", 0]]

Omitted arguments are omitted from the query document entirely.`),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("Database to run against"),
		),
		mcp.WithNumber("source_table",
			mcp.Required(),
			mcp.Description("Table the query reads from"),
		),
		mcp.WithArray("aggregations",
			mcp.Description("Aggregation clauses"),
		),
		mcp.WithArray("breakouts",
			mcp.Description("Breakout (group-by) clauses, each a field reference"),
		),
		mcp.WithArray("filter",
			mcp.Description("One filter clause, possibly compound (and/or/not)"),
		),
		mcp.WithArray("order_by",
			mcp.Description("Ordering clauses"),
		),
		mcp.WithObject("expressions",
			mcp.Description("Named calculated columns: expression name to clause"),
		),
		mcp.WithArray("joins",
			mcp.Description(`Join specifications: {"source-table": id, "alias": "...", "condition": clause}`),
		),
		mcp.WithArray("fields",
			mcp.Description("Explicit column projection clauses"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Row limit"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(runMBQL, d.instrument("run_mbql_query", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		databaseID, err := req.RequireInt("database_id")
		if err != nil {
			return badRequest("run_mbql_query", err.Error())
		}
		sourceTable, err := req.RequireInt("source_table")
		if err != nil {
			return badRequest("run_mbql_query", err.Error())
		}
		in, err := queryInputFromArgs(req, sourceTable)
		if err != nil {
			return errResult("run_mbql_query", err)
		}

		result, err := d.Gateway.Send(ctx, http.MethodPost, "/dataset",
			mbql.DatasetQuery(databaseID, mbql.BuildQuery(in)))
		if err != nil {
			return errResult("run_mbql_query", err)
		}
		return jsonResult(result)
	}))

	executeCard := mcp.NewTool("execute_card",
		mcp.WithDescription("Execute a saved card (question) and return its result set."),
		mcp.WithNumber("card_id",
			mcp.Required(),
			mcp.Description("Card to execute"),
		),
		mcp.WithArray("parameters",
			mcp.Description("Optional card parameter values, passed through uninterpreted"),
		),
		mcp.WithBoolean("ignore_cache",
			mcp.Description("Bypass the card's cached result"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(executeCard, d.instrument("execute_card", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cardID, err := req.RequireInt("card_id")
		if err != nil {
			return badRequest("execute_card", err.Error())
		}
		body := map[string]any{}
		if params, ok := req.GetArguments()["parameters"].([]any); ok && len(params) > 0 {
			body["parameters"] = params
		}
		if req.GetBool("ignore_cache", false) {
			body["ignore_cache"] = true
		}

		result, err := d.Gateway.Send(ctx, http.MethodPost, fmt.Sprintf("/card/%d/query", cardID), body)
		if err != nil {
			return errResult("execute_card", err)
		}
		return jsonResult(result)
	}))
}
