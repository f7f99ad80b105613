// Package model holds the shared document types, the error envelope, and the
// Gateway contract consumed by every other package.
package model

import (
	"context"

	"github.com/google/uuid"
)

// RequestContext carries the identity of one tool invocation for the
// lifetime of its request/response sequence. It is immutable after
// construction and safe for concurrent reads.
type RequestContext struct {
	// Tool is the name of the MCP tool being executed.
	Tool string
	// CorrelationID ties together the tool invocation, its log lines, and
	// the X-Request-Id header sent on every remote call it makes.
	CorrelationID string
}

// NewRequestContext returns a RequestContext for the named tool with a
// freshly generated correlation id.
func NewRequestContext(tool string) *RequestContext {
	return &RequestContext{
		Tool:          tool,
		CorrelationID: uuid.NewString(),
	}
}

type contextKey struct{}

// WithRequestContext attaches a RequestContext to the given context.
func WithRequestContext(ctx context.Context, rctx *RequestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rctx)
}

// RequestContextFrom extracts the RequestContext from the context, or
// returns nil if not present.
func RequestContextFrom(ctx context.Context) *RequestContext {
	rctx, _ := ctx.Value(contextKey{}).(*RequestContext)
	return rctx
}
