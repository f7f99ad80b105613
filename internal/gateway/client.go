// Package gateway implements the authenticated HTTP client for the Metabase
// API. It is the only component that touches the network: every operation
// in the repository reaches Metabase through model.Gateway.
//
// The client performs exactly one attempt per call. Failures are surfaced,
// never retried — callers decide what a failure means for their operation.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mwadron/metabase-mcp/internal/config"
	"github.com/mwadron/metabase-mcp/internal/observability"
	"github.com/mwadron/metabase-mcp/model"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 << 20

// Client is an authenticated Metabase API client. It implements
// model.Gateway and is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	email   string
	password string

	client  *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics

	mu           sync.Mutex
	sessionToken string
}

// NewClient builds a Client from configuration. Credentials are validated by
// config.Validate before this is called.
func NewClient(cfg config.MetabaseConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		apiKey:   cfg.APIKey,
		email:    cfg.Email,
		password: cfg.Password,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Get performs a GET request against the API path.
func (c *Client) Get(ctx context.Context, path string) (any, error) {
	return c.Send(ctx, http.MethodGet, path, nil)
}

// Send performs a request with the given method and optional JSON body.
// On a non-success response it returns a REMOTE_ERROR envelope carrying the
// status and raw body.
func (c *Client) Send(ctx context.Context, method, path string, body any) (any, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	var bodyBytes []byte
	if body != nil {
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("gateway: marshal body: %w", err)
		}
	}

	ctx, span := observability.StartSpan(ctx, "metabase.request",
		observability.AttrHTTPMethod.String(method),
		observability.AttrPath.String(path),
	)

	start := time.Now()
	result, status, err := c.execute(ctx, method, path, headers, bodyBytes)
	c.metrics.RecordGatewayRequest(method, status, time.Since(start))
	if status != 0 {
		span.SetAttributes(observability.AttrStatus.Int(status))
	}
	observability.EndSpanWithError(span, err)

	logger := observability.RequestLogger(ctx, c.logger)
	if err != nil {
		logger.Warn("metabase request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Debug("metabase request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// HealthCheck probes the unauthenticated /health endpoint. Used by the
// readiness handler.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metabase health status %d", resp.StatusCode)
	}
	return nil
}

// execute performs a single HTTP request. Returns the parsed body and the
// HTTP status (0 when the request never completed).
func (c *Client) execute(ctx context.Context, method, path string, headers http.Header, bodyBytes []byte) (any, int, error) {
	var body io.Reader
	if bodyBytes != nil {
		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header = headers

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, model.NewBackendTimeoutError()
		}
		if isConnectionError(err) {
			return nil, 0, model.NewBackendUnavailableError()
		}
		return nil, 0, fmt.Errorf("gateway: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("gateway: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, model.NewRemoteError(resp.StatusCode, string(respBody))
	}

	if len(respBody) == 0 {
		return nil, resp.StatusCode, nil
	}

	var parsed any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		// Some endpoints return non-JSON bodies; pass them through as text.
		return string(respBody), resp.StatusCode, nil
	}
	return parsed, resp.StatusCode, nil
}

// authHeaders builds the headers for an authenticated request. API key
// authentication wins when configured; otherwise a session token is fetched
// lazily and cached for the process lifetime.
func (c *Client) authHeaders(ctx context.Context) (http.Header, error) {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")

	if rctx := model.RequestContextFrom(ctx); rctx != nil {
		h.Set("X-Request-Id", sanitizeHeader(rctx.CorrelationID))
	}

	if c.apiKey != "" {
		h.Set("X-API-KEY", c.apiKey)
		return h, nil
	}

	token, err := c.sessionTokenLocked(ctx)
	if err != nil {
		return nil, err
	}
	h.Set("X-Metabase-Session", token)
	return h, nil
}

// sessionTokenLocked returns the cached session token, fetching one from
// POST /api/session on first use.
func (c *Client) sessionTokenLocked(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionToken != "" {
		return c.sessionToken, nil
	}

	login, err := json.Marshal(map[string]string{
		"username": c.email,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("gateway: marshal login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/session", bytes.NewReader(login))
	if err != nil {
		return "", fmt.Errorf("gateway: build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if isConnectionError(err) {
			return "", model.NewBackendUnavailableError()
		}
		return "", fmt.Errorf("gateway: session request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("gateway: read session response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", model.NewUnauthorizedError(
			fmt.Sprintf("authentication failed: %d - %s", resp.StatusCode, respBody))
	}

	var session struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &session); err != nil || session.ID == "" {
		return "", model.NewUnauthorizedError("authentication succeeded but no session id returned")
	}

	c.sessionToken = session.ID
	c.metrics.RecordSessionRefresh()
	c.logger.Info("metabase session established")
	return c.sessionToken, nil
}

// sanitizeHeader strips newlines and carriage returns to prevent header
// injection.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
