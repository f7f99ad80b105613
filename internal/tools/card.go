package tools

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mwadron/metabase-mcp/internal/mbql"
)

func registerCardTools(s *server.MCPServer, d Deps) {
	listCards := mcp.NewTool("list_cards",
		mcp.WithDescription("List all saved cards (questions, models, and metrics)."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(listCards, d.instrument("list_cards", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := d.Gateway.Get(ctx, "/card")
		if err != nil {
			return errResult("list_cards", err)
		}
		return jsonResult(result)
	}))

	createCard := mcp.NewTool("create_card",
		mcp.WithDescription("Save a native SQL query as a new card (question)."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Card name"),
		),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("Database the query runs against"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("SQL text"),
		),
		mcp.WithString("description",
			mcp.Description("Optional card description"),
		),
		mcp.WithNumber("collection_id",
			mcp.Description("Collection to save into; root collection when omitted"),
		),
		mcp.WithObject("visualization_settings",
			mcp.Description("Optional visualization settings, passed through uninterpreted"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(createCard, d.instrument("create_card", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return badRequest("create_card", err.Error())
		}
		databaseID, err := req.RequireInt("database_id")
		if err != nil {
			return badRequest("create_card", err.Error())
		}
		sql, err := req.RequireString("query")
		if err != nil {
			return badRequest("create_card", err.Error())
		}

		vizSettings, _ := req.GetArguments()["visualization_settings"].(map[string]any)
		if vizSettings == nil {
			vizSettings = map[string]any{}
		}
		payload := map[string]any{
			"name":                   name,
			"display":                "table",
			"dataset_query":          mbql.NativeQuery(databaseID, sql, nil),
			"visualization_settings": vizSettings,
		}
		if desc := req.GetString("description", ""); desc != "" {
			payload["description"] = desc
		}
		if cid := optionalInt(req, "collection_id"); cid != nil {
			payload["collection_id"] = *cid
		}

		result, err := d.Gateway.Send(ctx, http.MethodPost, "/card", payload)
		if err != nil {
			return errResult("create_card", err)
		}
		return jsonResult(result)
	}))

	createMBQLCard := mcp.NewTool("create_mbql_card",
		mcp.WithDescription(`Save a structured (MBQL) query as a new card. Takes the same clause arguments as run_mbql_query; identical arguments produce an identical saved query document.`),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Card name"),
		),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("Database the query runs against"),
		),
		mcp.WithNumber("source_table",
			mcp.Required(),
			mcp.Description("Table the query reads from"),
		),
		mcp.WithArray("aggregations", mcp.Description("Aggregation clauses")),
		mcp.WithArray("breakouts", mcp.Description("Breakout clauses")),
		mcp.WithArray("filter", mcp.Description("One filter clause")),
		mcp.WithArray("order_by", mcp.Description("Ordering clauses")),
		mcp.WithObject("expressions", mcp.Description("Named calculated columns")),
		mcp.WithArray("joins", mcp.Description("Join specifications")),
		mcp.WithArray("fields", mcp.Description("Explicit column projection clauses")),
		mcp.WithNumber("limit", mcp.Description("Row limit")),
		mcp.WithString("display",
			mcp.Description("Visualization type, defaults to table"),
		),
		mcp.WithString("description",
			mcp.Description("Optional card description"),
		),
		mcp.WithNumber("collection_id",
			mcp.Description("Collection to save into"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(createMBQLCard, d.instrument("create_mbql_card", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return badRequest("create_mbql_card", err.Error())
		}
		databaseID, err := req.RequireInt("database_id")
		if err != nil {
			return badRequest("create_mbql_card", err.Error())
		}
		sourceTable, err := req.RequireInt("source_table")
		if err != nil {
			return badRequest("create_mbql_card", err.Error())
		}
		in, err := queryInputFromArgs(req, sourceTable)
		if err != nil {
			return errResult("create_mbql_card", err)
		}

		payload := map[string]any{
			"name":                   name,
			"display":                req.GetString("display", "table"),
			"dataset_query":          mbql.DatasetQuery(databaseID, mbql.BuildQuery(in)),
			"visualization_settings": map[string]any{},
		}
		if desc := req.GetString("description", ""); desc != "" {
			payload["description"] = desc
		}
		if cid := optionalInt(req, "collection_id"); cid != nil {
			payload["collection_id"] = *cid
		}

		result, err := d.Gateway.Send(ctx, http.MethodPost, "/card", payload)
		if err != nil {
			return errResult("create_mbql_card", err)
		}
		return jsonResult(result)
	}))
}
