// Package tools exposes the MCP tool surface: argument parsing, handler
// registration, and rendering of operation results and error envelopes.
// Handlers stay thin; domain behavior lives in the dashboard, metric, and
// mbql packages.
package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mwadron/metabase-mcp/internal/dashboard"
	"github.com/mwadron/metabase-mcp/internal/metric"
	"github.com/mwadron/metabase-mcp/internal/observability"
	"github.com/mwadron/metabase-mcp/model"
)

// Deps carries the collaborators every tool handler needs.
type Deps struct {
	Gateway     model.Gateway
	Dashboards  *dashboard.Engine
	Metrics     *metric.Service
	Logger      *zap.Logger
	Instruments *observability.Metrics
}

// NewServer builds the MCP server with the full tool set registered.
func NewServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer("metabase-mcp", version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	registerDatabaseTools(s, deps)
	registerQueryTools(s, deps)
	registerCardTools(s, deps)
	registerCollectionTools(s, deps)
	registerMetricTools(s, deps)
	registerDashboardTools(s, deps)

	return s
}

// instrument wraps a handler with per-invocation request context, logging,
// tracing, and metrics. Every registered handler goes through it.
func (d Deps) instrument(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = model.WithRequestContext(ctx, model.NewRequestContext(name))
		ctx, span := observability.StartSpan(ctx, "tool."+name,
			observability.AttrTool.String(name))
		defer span.End()

		logger := observability.RequestLogger(ctx, d.Logger)
		logger.Debug("tool invoked",
			zap.Any("arguments", observability.RedactBody(req.GetArguments(), nil)))

		start := time.Now()
		res, err := h(ctx, req)

		status := "ok"
		if err != nil || (res != nil && res.IsError) {
			status = "error"
		}
		d.Instruments.RecordToolInvocation(name, status, time.Since(start))
		logger.Info("tool completed",
			zap.String("status", status),
			zap.Duration("duration", time.Since(start)),
		)
		return res, err
	}
}
