// Package integration exercises the gateway, dashboard engine, and metric
// service end to end against a stateful mock Metabase instance.
package integration

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mwadron/metabase-mcp/internal/config"
	"github.com/mwadron/metabase-mcp/internal/dashboard"
	"github.com/mwadron/metabase-mcp/internal/gateway"
	"github.com/mwadron/metabase-mcp/internal/metric"
)

// TestHarness wires the real gateway client and domain services against a
// MockMetabase.
type TestHarness struct {
	Mock       *MockMetabase
	Gateway    *gateway.Client
	Dashboards *dashboard.Engine
	Metrics    *metric.Service
}

// HarnessOption configures the harness.
type HarnessOption func(*config.MetabaseConfig)

// WithSessionAuth switches the harness from API-key to email/password
// authentication, exercising the session login path.
func WithSessionAuth() HarnessOption {
	return func(cfg *config.MetabaseConfig) {
		cfg.APIKey = ""
		cfg.Email = "tester@example.com"
		cfg.Password = "integration-secret"
	}
}

// NewTestHarness starts a mock Metabase and builds the full client stack
// against it. API-key auth by default.
func NewTestHarness(t *testing.T, opts ...HarnessOption) *TestHarness {
	t.Helper()

	mock := NewMockMetabase(t)
	cfg := config.MetabaseConfig{
		URL:     mock.URL(),
		APIKey:  "test-api-key",
		Timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := zap.NewNop()
	gw := gateway.NewClient(cfg, logger, nil)

	return &TestHarness{
		Mock:       mock,
		Gateway:    gw,
		Dashboards: dashboard.NewEngine(gw, logger),
		Metrics:    metric.NewService(gw, logger),
	}
}
