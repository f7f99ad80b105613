package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mwadron/metabase-mcp/model"
)

// jsonResult renders a value as indented JSON tool output.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("encoding response: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errResult renders a failed operation as its error envelope. The failure is
// reported through the result payload, never as a protocol-level error, so
// the client always receives the structured envelope.
func errResult(op string, err error) (*mcp.CallToolResult, error) {
	var ee *model.ErrorEnvelope
	if !errors.As(err, &ee) {
		ee = &model.ErrorEnvelope{Code: model.ErrInternalError, Message: err.Error()}
	}
	data, mErr := json.MarshalIndent(ee.WithOperation(op), "", "  ")
	if mErr != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultError(string(data)), nil
}

// badRequest shortcuts errResult for caller input problems.
func badRequest(op, msg string) (*mcp.CallToolResult, error) {
	return errResult(op, model.NewBadRequestError(msg))
}
