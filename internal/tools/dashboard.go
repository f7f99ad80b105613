package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mwadron/metabase-mcp/internal/dashboard"
	"github.com/mwadron/metabase-mcp/model"
)

func registerDashboardTools(s *server.MCPServer, d Deps) {
	getDashboard := mcp.NewTool("get_dashboard",
		mcp.WithDescription("Get one dashboard's full representation: tabs, dashcards, and parameters."),
		mcp.WithNumber("dashboard_id",
			mcp.Required(),
			mcp.Description("Dashboard to fetch"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(getDashboard, d.instrument("get_dashboard", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dashboardID, err := req.RequireInt("dashboard_id")
		if err != nil {
			return badRequest("get_dashboard", err.Error())
		}
		dash, err := d.Dashboards.Get(ctx, dashboardID)
		if err != nil {
			return errResult("get_dashboard", err)
		}
		return jsonResult(dash)
	}))

	addCard := mcp.NewTool("add_card_to_dashboard",
		mcp.WithDescription("Place a card on a dashboard at the given grid position. Existing placements are preserved; placing the same card twice is not deduplicated."),
		mcp.WithNumber("dashboard_id",
			mcp.Required(),
			mcp.Description("Dashboard to modify"),
		),
		mcp.WithNumber("card_id",
			mcp.Required(),
			mcp.Description("Card to place"),
		),
		mcp.WithNumber("tab_id",
			mcp.Description("Tab to place the card on, for dashboards with tabs"),
		),
		mcp.WithNumber("row", mcp.Description("Grid row, defaults to 0")),
		mcp.WithNumber("col", mcp.Description("Grid column, defaults to 0")),
		mcp.WithNumber("size_x", mcp.Description("Width in grid units, defaults to 6")),
		mcp.WithNumber("size_y", mcp.Description("Height in grid units, defaults to 4")),
		mcp.WithObject("visualization_settings",
			mcp.Description("Optional per-placement visualization overrides"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(addCard, d.instrument("add_card_to_dashboard", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dashboardID, err := req.RequireInt("dashboard_id")
		if err != nil {
			return badRequest("add_card_to_dashboard", err.Error())
		}
		cardID, err := req.RequireInt("card_id")
		if err != nil {
			return badRequest("add_card_to_dashboard", err.Error())
		}
		viz, _ := req.GetArguments()["visualization_settings"].(map[string]any)

		result, err := d.Dashboards.AddCard(ctx, dashboardID, dashboard.Placement{
			CardID:                cardID,
			TabID:                 optionalInt(req, "tab_id"),
			Row:                   req.GetInt("row", 0),
			Col:                   req.GetInt("col", 0),
			SizeX:                 req.GetInt("size_x", 6),
			SizeY:                 req.GetInt("size_y", 4),
			VisualizationSettings: viz,
		})
		if err != nil {
			return errResult("add_card_to_dashboard", err)
		}
		return jsonResult(result)
	}))

	removeCard := mcp.NewTool("remove_card_from_dashboard",
		mcp.WithDescription("Remove one dashcard (placement) from a dashboard. The card itself is not deleted."),
		mcp.WithNumber("dashboard_id",
			mcp.Required(),
			mcp.Description("Dashboard to modify"),
		),
		mcp.WithNumber("dashcard_id",
			mcp.Required(),
			mcp.Description("The placement to remove, not the card id"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(removeCard, d.instrument("remove_card_from_dashboard", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dashboardID, err := req.RequireInt("dashboard_id")
		if err != nil {
			return badRequest("remove_card_from_dashboard", err.Error())
		}
		dashcardID, err := req.RequireInt("dashcard_id")
		if err != nil {
			return badRequest("remove_card_from_dashboard", err.Error())
		}

		result, err := d.Dashboards.RemoveCard(ctx, dashboardID, dashcardID)
		if err != nil {
			return errResult("remove_card_from_dashboard", err)
		}
		return jsonResult(result)
	}))

	updateParameters := mcp.NewTool("update_dashboard_parameters",
		mcp.WithDescription("Replace a dashboard's entire parameters (filters) list. Parameters not in the new list are removed; read the dashboard first to modify additively."),
		mcp.WithNumber("dashboard_id",
			mcp.Required(),
			mcp.Description("Dashboard to modify"),
		),
		mcp.WithArray("parameters",
			mcp.Required(),
			mcp.Description(`Full replacement list, each {"id": ..., "name": ..., "slug": ..., "type": ...}`),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(updateParameters, d.instrument("update_dashboard_parameters", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dashboardID, err := req.RequireInt("dashboard_id")
		if err != nil {
			return badRequest("update_dashboard_parameters", err.Error())
		}
		raw, ok := req.GetArguments()["parameters"].([]any)
		if !ok {
			return badRequest("update_dashboard_parameters", "parameters must be an array of parameter objects")
		}
		var params []model.Parameter
		if err := model.Decode(raw, &params); err != nil {
			return badRequest("update_dashboard_parameters", "parameters: "+err.Error())
		}

		result, err := d.Dashboards.ReplaceParameters(ctx, dashboardID, params)
		if err != nil {
			return errResult("update_dashboard_parameters", err)
		}
		return jsonResult(result)
	}))

	updateCards := mcp.NewTool("update_dashboard_cards",
		mcp.WithDescription("Replace a dashboard's entire dashcards list, e.g. to rearrange the grid. Placements not in the new list are removed. New placements use negative ids."),
		mcp.WithNumber("dashboard_id",
			mcp.Required(),
			mcp.Description("Dashboard to modify"),
		),
		mcp.WithArray("dashcards",
			mcp.Required(),
			mcp.Description("Full replacement list of dashcard objects"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(updateCards, d.instrument("update_dashboard_cards", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dashboardID, err := req.RequireInt("dashboard_id")
		if err != nil {
			return badRequest("update_dashboard_cards", err.Error())
		}
		raw, ok := req.GetArguments()["dashcards"].([]any)
		if !ok {
			return badRequest("update_dashboard_cards", "dashcards must be an array of dashcard objects")
		}
		var dashcards []model.Dashcard
		if err := model.Decode(raw, &dashcards); err != nil {
			return badRequest("update_dashboard_cards", "dashcards: "+err.Error())
		}

		result, err := d.Dashboards.ReplaceDashcards(ctx, dashboardID, dashcards)
		if err != nil {
			return errResult("update_dashboard_cards", err)
		}
		return jsonResult(result)
	}))

	copyTab := mcp.NewTool("copy_dashboard_tab",
		mcp.WithDescription("Copy one tab and its card placements from a source dashboard to a target dashboard. Optionally copies the dashboard filters the placements reference, renaming them on id collision. Additive: nothing on the target is removed. Not idempotent."),
		mcp.WithNumber("source_dashboard_id",
			mcp.Required(),
			mcp.Description("Dashboard to copy from; never modified"),
		),
		mcp.WithNumber("source_tab_id",
			mcp.Required(),
			mcp.Description("Tab to copy"),
		),
		mcp.WithNumber("target_dashboard_id",
			mcp.Required(),
			mcp.Description("Dashboard to copy into"),
		),
		mcp.WithString("new_tab_name",
			mcp.Description("Name for the copied tab; defaults to the source tab's name"),
		),
		mcp.WithBoolean("include_filters",
			mcp.Description("Copy the referenced dashboard filters too; defaults to true"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(copyTab, d.instrument("copy_dashboard_tab", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sourceDashboardID, err := req.RequireInt("source_dashboard_id")
		if err != nil {
			return badRequest("copy_dashboard_tab", err.Error())
		}
		sourceTabID, err := req.RequireInt("source_tab_id")
		if err != nil {
			return badRequest("copy_dashboard_tab", err.Error())
		}
		targetDashboardID, err := req.RequireInt("target_dashboard_id")
		if err != nil {
			return badRequest("copy_dashboard_tab", err.Error())
		}

		result, err := d.Dashboards.CopyTab(ctx, dashboard.CopyTabRequest{
			SourceDashboardID: sourceDashboardID,
			SourceTabID:       sourceTabID,
			TargetDashboardID: targetDashboardID,
			NewTabName:        req.GetString("new_tab_name", ""),
			IncludeFilters:    req.GetBool("include_filters", true),
		})
		if err != nil {
			return errResult("copy_dashboard_tab", err)
		}
		return jsonResult(result)
	}))
}
