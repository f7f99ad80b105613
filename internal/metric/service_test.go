package metric

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/mwadron/metabase-mcp/internal/mbql"
	"github.com/mwadron/metabase-mcp/model"
)

// fakeGateway is an in-memory model.Gateway double.
type fakeGateway struct {
	// getResponses maps a path to the raw JSON served for Get.
	getResponses map[string]string
	getErr       error

	sendResponse string
	sendErr      error

	// recorded writes
	sentMethod string
	sentPath   string
	sentBody   any
	sendCount  int
}

func (f *fakeGateway) Get(_ context.Context, path string) (any, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	raw, ok := f.getResponses[path]
	if !ok {
		return nil, model.NewRemoteError(404, `{"message": "not found"}`)
	}
	return parseJSON(raw), nil
}

func (f *fakeGateway) Send(_ context.Context, method, path string, body any) (any, error) {
	f.sendCount++
	f.sentMethod = method
	f.sentPath = path
	// Round-trip through JSON so assertions see what the wire would carry.
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	f.sentBody = parseJSON(string(data))
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if f.sendResponse == "" {
		return nil, nil
	}
	return parseJSON(f.sendResponse), nil
}

func parseJSON(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		panic("bad test fixture: " + err.Error())
	}
	return v
}

func newTestService(gw *fakeGateway) *Service {
	return NewService(gw, zap.NewNop())
}

func TestCreate_payloadShape(t *testing.T) {
	gw := &fakeGateway{sendResponse: `{"id": 77}`}
	s := newTestService(gw)

	_, err := s.Create(context.Background(), CreateRequest{
		Name:        "Total Revenue",
		Description: "Sum of order totals",
		TableID:     5,
		DatabaseID:  2,
		Aggregation: mbql.Aggregation("sum", []any{"field", 12, nil}),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if gw.sentMethod != "POST" || gw.sentPath != "/card" {
		t.Fatalf("sent %s %s, want POST /card", gw.sentMethod, gw.sentPath)
	}

	payload := gw.sentBody.(map[string]any)
	if payload["type"] != "metric" {
		t.Errorf("type = %v, want metric", payload["type"])
	}
	if payload["name"] != "Total Revenue" {
		t.Errorf("name = %v", payload["name"])
	}

	dq := payload["dataset_query"].(map[string]any)
	if dq["type"] != "query" {
		t.Errorf("dataset_query.type = %v", dq["type"])
	}
	query := dq["query"].(map[string]any)
	aggs := query["aggregation"].([]any)
	if len(aggs) != 1 {
		t.Fatalf("aggregation count = %d, want 1", len(aggs))
	}

	wrapped := aggs[0].([]any)
	if wrapped[0] != "aggregation-options" {
		t.Errorf("aggregation tag = %v", wrapped[0])
	}
	opts := wrapped[2].(map[string]any)
	if opts["name"] != "Total Revenue" || opts["display-name"] != "Total Revenue" {
		t.Errorf("annotation = %v", opts)
	}
}

func TestCreate_validation(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestService(gw)

	_, err := s.Create(context.Background(), CreateRequest{TableID: 5, DatabaseID: 2,
		Aggregation: mbql.Aggregation("count")})
	var ee *model.ErrorEnvelope
	if !errors.As(err, &ee) || ee.Code != model.ErrBadRequest {
		t.Fatalf("error = %v, want BAD_REQUEST", err)
	}
	// Validation failures never reach the gateway.
	if gw.sendCount != 0 {
		t.Errorf("sendCount = %d, want 0", gw.sendCount)
	}
}

const metricCard42 = `{
	"id": 42,
	"name": "Revenue",
	"type": "metric",
	"dataset_query": {
		"database": 2,
		"type": "query",
		"query": {
			"source-table": 5,
			"aggregation": [["aggregation-options", ["sum", ["field", 12, null]], {"name": "Revenue", "display-name": "Revenue"}]],
			"filter": ["=", ["field", 4, null], "paid"]
		}
	}
}`

func TestUpdate_renameSyncsAnnotation(t *testing.T) {
	gw := &fakeGateway{
		getResponses: map[string]string{"/card/42": metricCard42},
		sendResponse: `{"id": 42}`,
	}
	s := newTestService(gw)

	_, err := s.Update(context.Background(), UpdateRequest{CardID: 42, NewName: "Net Revenue"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if gw.sentMethod != "PUT" || gw.sentPath != "/card/42" {
		t.Fatalf("sent %s %s, want PUT /card/42", gw.sentMethod, gw.sentPath)
	}

	payload := gw.sentBody.(map[string]any)
	if payload["name"] != "Net Revenue" {
		t.Errorf("name = %v", payload["name"])
	}

	query := payload["dataset_query"].(map[string]any)["query"].(map[string]any)
	wrapped := query["aggregation"].([]any)[0].([]any)
	opts := wrapped[2].(map[string]any)
	// The annotation follows the rename, not just the surrounding record.
	if opts["name"] != "Net Revenue" || opts["display-name"] != "Net Revenue" {
		t.Errorf("annotation = %v", opts)
	}

	// The inner aggregation is preserved exactly.
	innerJSON, _ := json.Marshal(wrapped[1])
	if string(innerJSON) != `["sum",["field",12,null]]` {
		t.Errorf("inner aggregation = %s", innerJSON)
	}

	// The untouched filter survives the rebuild.
	if query["filter"] == nil {
		t.Error("filter dropped by rename")
	}
}

func TestUpdate_clearFilter(t *testing.T) {
	gw := &fakeGateway{
		getResponses: map[string]string{"/card/42": metricCard42},
	}
	s := newTestService(gw)

	_, err := s.Update(context.Background(), UpdateRequest{CardID: 42, ClearFilter: true})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	query := gw.sentBody.(map[string]any)["dataset_query"].(map[string]any)["query"].(map[string]any)
	if _, ok := query["filter"]; ok {
		t.Error("filter still present after ClearFilter")
	}
}

func TestUpdate_notAMetric(t *testing.T) {
	gw := &fakeGateway{
		getResponses: map[string]string{
			"/card/7": `{"id": 7, "name": "Plain question", "type": "question", "dataset_query": {"type": "query", "query": {"source-table": 5}}}`,
		},
	}
	s := newTestService(gw)

	_, err := s.Update(context.Background(), UpdateRequest{CardID: 7, NewName: "x"})
	var ee *model.ErrorEnvelope
	if !errors.As(err, &ee) || ee.Code != model.ErrBadRequest {
		t.Fatalf("error = %v, want BAD_REQUEST", err)
	}
	if gw.sendCount != 0 {
		t.Errorf("sendCount = %d, want 0", gw.sendCount)
	}
}
