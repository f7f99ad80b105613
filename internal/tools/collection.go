package tools

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerCollectionTools(s *server.MCPServer, d Deps) {
	listCollections := mcp.NewTool("list_collections",
		mcp.WithDescription("List all collections."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(listCollections, d.instrument("list_collections", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := d.Gateway.Get(ctx, "/collection")
		if err != nil {
			return errResult("list_collections", err)
		}
		return jsonResult(result)
	}))

	createCollection := mcp.NewTool("create_collection",
		mcp.WithDescription("Create a new collection, optionally nested under a parent collection."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Collection name"),
		),
		mcp.WithString("description",
			mcp.Description("Optional description"),
		),
		mcp.WithString("color",
			mcp.Description("Optional hex color, e.g. #509EE3"),
		),
		mcp.WithNumber("parent_id",
			mcp.Description("Parent collection; root when omitted"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(createCollection, d.instrument("create_collection", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return badRequest("create_collection", err.Error())
		}
		payload := map[string]any{"name": name}
		if desc := req.GetString("description", ""); desc != "" {
			payload["description"] = desc
		}
		if color := req.GetString("color", ""); color != "" {
			payload["color"] = color
		}
		if pid := optionalInt(req, "parent_id"); pid != nil {
			payload["parent_id"] = *pid
		}

		result, err := d.Gateway.Send(ctx, http.MethodPost, "/collection", payload)
		if err != nil {
			return errResult("create_collection", err)
		}
		return jsonResult(result)
	}))
}
