package tools

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mwadron/metabase-mcp/model"
)

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("content is %T, want text", res.Content[0])
	}
	return tc.Text
}

func TestErrResult_envelopePassesThrough(t *testing.T) {
	res, err := errResult("get_dashboard", model.NewRemoteError(500, `{"message":"boom"}`))
	if err != nil {
		t.Fatalf("errResult() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("IsError = false")
	}

	var ee model.ErrorEnvelope
	if err := json.Unmarshal([]byte(resultText(t, res)), &ee); err != nil {
		t.Fatalf("payload is not an envelope: %v", err)
	}
	if ee.Code != model.ErrRemoteError || ee.Status != 500 || ee.Operation != "get_dashboard" {
		t.Errorf("envelope = %+v", ee)
	}
	if !strings.Contains(ee.Body, "boom") {
		t.Errorf("remote body dropped: %q", ee.Body)
	}
}

func TestErrResult_plainErrorBecomesInternal(t *testing.T) {
	res, _ := errResult("list_cards", errors.New("something broke"))

	var ee model.ErrorEnvelope
	if err := json.Unmarshal([]byte(resultText(t, res)), &ee); err != nil {
		t.Fatalf("payload is not an envelope: %v", err)
	}
	if ee.Code != model.ErrInternalError || ee.Message != "something broke" {
		t.Errorf("envelope = %+v", ee)
	}
}

func TestJSONResult_indented(t *testing.T) {
	res, err := jsonResult(map[string]any{"id": 7})
	if err != nil {
		t.Fatalf("jsonResult() error = %v", err)
	}
	if res.IsError {
		t.Fatal("IsError = true")
	}
	if got := resultText(t, res); !strings.Contains(got, "\"id\": 7") {
		t.Errorf("output = %q", got)
	}
}
