package model

import "context"

// Gateway is the single collaborator interface through which every operation
// reaches the Metabase API. Paths are resource paths beneath the /api root,
// for example "/dashboard/42". Return values are parsed JSON documents.
//
// A non-success response surfaces as an *ErrorEnvelope carrying the status
// and raw body; callers never inspect status codes themselves.
type Gateway interface {
	Get(ctx context.Context, path string) (any, error)
	Send(ctx context.Context, method, path string, body any) (any, error)
}
