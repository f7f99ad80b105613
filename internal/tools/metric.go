package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mwadron/metabase-mcp/internal/metric"
)

func registerMetricTools(s *server.MCPServer, d Deps) {
	createMetric := mcp.NewTool("create_metric",
		mcp.WithDescription(`Save a reusable metric: a named single-aggregation definition over one table. Other queries can reference it as ["metric", id]. The aggregation's display name is kept equal to the metric name.`),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Metric name"),
		),
		mcp.WithNumber("table_id",
			mcp.Required(),
			mcp.Description("Table the metric is defined over"),
		),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("Database containing the table"),
		),
		mcp.WithArray("aggregation",
			mcp.Required(),
			mcp.Description(`The aggregation clause, e.g. ["sum", ["field", 12, null]]`),
		),
		mcp.WithArray("filter",
			mcp.Description("Optional filter baked into the metric definition"),
		),
		mcp.WithString("description",
			mcp.Description("Optional description"),
		),
		mcp.WithNumber("collection_id",
			mcp.Description("Collection to save into"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(createMetric, d.instrument("create_metric", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return badRequest("create_metric", err.Error())
		}
		tableID, err := req.RequireInt("table_id")
		if err != nil {
			return badRequest("create_metric", err.Error())
		}
		databaseID, err := req.RequireInt("database_id")
		if err != nil {
			return badRequest("create_metric", err.Error())
		}
		args := req.GetArguments()
		agg, err := clauseArg(args, "aggregation")
		if err != nil {
			return errResult("create_metric", err)
		}
		filter, err := clauseArg(args, "filter")
		if err != nil {
			return errResult("create_metric", err)
		}

		result, err := d.Metrics.Create(ctx, metric.CreateRequest{
			Name:         name,
			Description:  req.GetString("description", ""),
			TableID:      tableID,
			DatabaseID:   databaseID,
			Aggregation:  agg,
			Filter:       filter,
			CollectionID: optionalInt(req, "collection_id"),
		})
		if err != nil {
			return errResult("create_metric", err)
		}
		return jsonResult(result)
	}))

	updateMetric := mcp.NewTool("update_metric",
		mcp.WithDescription("Update a saved metric's name, aggregation, or filter. Renames keep the aggregation's display name in sync. Fields not supplied are left unchanged."),
		mcp.WithNumber("card_id",
			mcp.Required(),
			mcp.Description("The metric card to update"),
		),
		mcp.WithString("name",
			mcp.Description("New metric name"),
		),
		mcp.WithArray("aggregation",
			mcp.Description("Replacement aggregation clause"),
		),
		mcp.WithArray("filter",
			mcp.Description("Replacement filter clause"),
		),
		mcp.WithBoolean("clear_filter",
			mcp.Description("Remove the metric's filter entirely"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(updateMetric, d.instrument("update_metric", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cardID, err := req.RequireInt("card_id")
		if err != nil {
			return badRequest("update_metric", err.Error())
		}
		args := req.GetArguments()
		agg, err := clauseArg(args, "aggregation")
		if err != nil {
			return errResult("update_metric", err)
		}
		filter, err := clauseArg(args, "filter")
		if err != nil {
			return errResult("update_metric", err)
		}

		upd := metric.UpdateRequest{
			CardID:         cardID,
			NewName:        req.GetString("name", ""),
			NewAggregation: agg,
			NewFilter:      filter,
			ClearFilter:    req.GetBool("clear_filter", false),
		}
		if _, ok := args["description"]; ok {
			desc := req.GetString("description", "")
			upd.Description = &desc
		}

		result, err := d.Metrics.Update(ctx, upd)
		if err != nil {
			return errResult("update_metric", err)
		}
		return jsonResult(result)
	}))

	findMetrics := mcp.NewTool("find_metrics",
		mcp.WithDescription("Find saved metrics defined over one table. Returns per-metric summaries: id, name, aggregation operator, and whether a filter is baked in."),
		mcp.WithNumber("table_id",
			mcp.Required(),
			mcp.Description("Table to search metrics for"),
		),
		mcp.WithNumber("database_id",
			mcp.Description("Restrict to metrics in one database"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(findMetrics, d.instrument("find_metrics", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tableID, err := req.RequireInt("table_id")
		if err != nil {
			return badRequest("find_metrics", err.Error())
		}

		summaries, err := d.Metrics.Find(ctx, tableID, optionalInt(req, "database_id"))
		if err != nil {
			return errResult("find_metrics", err)
		}
		return jsonResult(map[string]any{
			"table_id": tableID,
			"metrics":  summaries,
		})
	}))
}
