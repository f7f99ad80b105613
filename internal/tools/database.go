package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// defaultFieldLimit caps get_table_fields output so very wide tables do not
// flood the client context.
const defaultFieldLimit = 20

func registerDatabaseTools(s *server.MCPServer, d Deps) {
	listDatabases := mcp.NewTool("list_databases",
		mcp.WithDescription("List all databases connected to the Metabase instance."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(listDatabases, d.instrument("list_databases", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := d.Gateway.Get(ctx, "/database")
		if err != nil {
			return errResult("list_databases", err)
		}
		return jsonResult(result)
	}))

	listTables := mcp.NewTool("list_tables",
		mcp.WithDescription("List the tables of one database as a markdown table with id, schema, name, and entity type."),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("Database to inspect"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(listTables, d.instrument("list_tables", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		databaseID, err := req.RequireInt("database_id")
		if err != nil {
			return badRequest("list_tables", err.Error())
		}
		result, err := d.Gateway.Get(ctx, fmt.Sprintf("/database/%d/metadata", databaseID))
		if err != nil {
			return errResult("list_tables", err)
		}
		return mcp.NewToolResultText(renderTableList(result)), nil
	}))

	getTableFields := mcp.NewTool("get_table_fields",
		mcp.WithDescription("Get the fields of one table: id, name, display name, base type, and semantic type. Long field lists are truncated."),
		mcp.WithNumber("table_id",
			mcp.Required(),
			mcp.Description("Table to inspect"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum fields returned, defaults to 20"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(getTableFields, d.instrument("get_table_fields", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tableID, err := req.RequireInt("table_id")
		if err != nil {
			return badRequest("get_table_fields", err.Error())
		}
		limit := req.GetInt("limit", defaultFieldLimit)
		if limit < 1 {
			return badRequest("get_table_fields", "limit must be positive")
		}
		result, err := d.Gateway.Get(ctx, fmt.Sprintf("/table/%d/query_metadata", tableID))
		if err != nil {
			return errResult("get_table_fields", err)
		}
		return jsonResult(summarizeFields(tableID, result, limit))
	}))
}

// renderTableList formats the database metadata response as a markdown
// table sorted by schema then name. Cell content is pipe-escaped.
func renderTableList(metadata any) string {
	doc, _ := metadata.(map[string]any)
	rawTables, _ := doc["tables"].([]any)

	type row struct{ id, schema, name, display, entity string }
	rows := make([]row, 0, len(rawTables))
	for _, rt := range rawTables {
		t, ok := rt.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, row{
			id:      fmt.Sprintf("%v", t["id"]),
			schema:  mdCell(t["schema"]),
			name:    mdCell(t["name"]),
			display: mdCell(t["display_name"]),
			entity:  mdCell(t["entity_type"]),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].schema != rows[j].schema {
			return rows[i].schema < rows[j].schema
		}
		return rows[i].name < rows[j].name
	})

	var b strings.Builder
	b.WriteString("| ID | Schema | Name | Display Name | Entity Type |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", r.id, r.schema, r.name, r.display, r.entity)
	}
	if len(rows) == 0 {
		b.WriteString("\nNo tables found.\n")
	}
	return b.String()
}

func mdCell(v any) string {
	if v == nil {
		return ""
	}
	s := fmt.Sprintf("%v", v)
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// summarizeFields trims the query metadata down to the per-field facts a
// query author needs, truncating past limit.
func summarizeFields(tableID int, metadata any, limit int) map[string]any {
	doc, _ := metadata.(map[string]any)
	rawFields, _ := doc["fields"].([]any)

	total := len(rawFields)
	truncated := total > limit
	if truncated {
		rawFields = rawFields[:limit]
	}

	fields := make([]map[string]any, 0, len(rawFields))
	for _, rf := range rawFields {
		f, ok := rf.(map[string]any)
		if !ok {
			continue
		}
		entry := map[string]any{
			"id":           f["id"],
			"name":         f["name"],
			"display_name": f["display_name"],
			"base_type":    f["base_type"],
		}
		if st := f["semantic_type"]; st != nil {
			entry["semantic_type"] = st
		}
		if desc := f["description"]; desc != nil {
			entry["description"] = desc
		}
		fields = append(fields, entry)
	}

	out := map[string]any{
		"table_id": tableID,
		"fields":   fields,
	}
	if name := doc["name"]; name != nil {
		out["table_name"] = name
	}
	if truncated {
		out["_truncated"] = true
		out["_total_fields"] = total
		out["_limit_applied"] = limit
	}
	return out
}
