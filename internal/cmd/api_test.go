package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestAPICommand_Get(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/threads", jsonResponse(200, `{"threads": [], "count": 0}`))

	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"api", "/threads"}); err != nil {
			t.Fatalf("api get failed: %v", err)
		}
	})

	// Text mode pretty-prints JSON bodies
	if !strings.Contains(output, `"count": 0`) {
		t.Errorf("output missing pretty JSON: %s", output)
	}
}

func TestAPICommand_PostWithFields(t *testing.T) {
	var receivedBody map[string]any
	handler := newRouteHandler().
		On("POST", "/api/campaign/start", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&receivedBody)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"thread_id": "t-1", "status": "started"}`))
		})

	setupTestEnvWithHandler(t, handler)

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{
			"api", "/campaign/start", "-X", "POST",
			"-f", "query=fintech startups",
			"-f", "mode=test",
			"-F", "thread_id=null",
		})
		if err != nil {
			t.Fatalf("api post failed: %v", err)
		}
	})

	if receivedBody["query"] != "fintech startups" {
		t.Errorf("wrong query: %v", receivedBody["query"])
	}
	if v, ok := receivedBody["thread_id"]; !ok || v != nil {
		t.Errorf("raw field should produce JSON null, got: %v (present=%v)", v, ok)
	}
}

func TestAPICommand_InlineBody(t *testing.T) {
	var receivedBody map[string]any
	handler := newRouteHandler().
		On("POST", "/api/campaign/t-1/approve-emails", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&receivedBody)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"thread_id": "t-1", "status": "approved"}`))
		})

	setupTestEnvWithHandler(t, handler)

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{
			"api", "/campaign/t-1/approve-emails", "-X", "POST",
			"-d", `{"thread_id": "t-1", "decision": "yes"}`,
		})
		if err != nil {
			t.Fatalf("api post failed: %v", err)
		}
	})

	if receivedBody["decision"] != "yes" {
		t.Errorf("wrong decision: %v", receivedBody["decision"])
	}
}

func TestAPICommand_InvalidMethod(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"api", "/threads", "-X", "BREW"})
		if err == nil {
			t.Error("expected error for invalid method")
		}
	})
}

func TestAPICommand_BodyAndInputConflict(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"api", "/threads", "-d", "{}", "-i", "body.json"})
		if err == nil {
			t.Error("expected error for --body with --input")
		}
	})
}

func TestAPICommand_SilentMode(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/threads", jsonResponse(200, `{"threads": [], "count": 0}`))

	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"api", "/threads", "-s"}); err != nil {
			t.Fatalf("api silent failed: %v", err)
		}
	})

	if output != "" {
		t.Errorf("expected no output in silent mode, got: %q", output)
	}
}

func TestBuildRequestBody(t *testing.T) {
	body, err := buildRequestBody(
		[]string{"query=fintech", "mode=test"},
		[]string{`tags=["a","b"]`},
		"", `{"mode": "live", "extra": 1}`,
	)
	if err != nil {
		t.Fatalf("buildRequestBody failed: %v", err)
	}

	// Fields override inline JSON
	if body["mode"] != "test" {
		t.Errorf("field should override inline body: %v", body["mode"])
	}
	if body["extra"] != float64(1) {
		t.Errorf("inline body value lost: %v", body["extra"])
	}
	tags, ok := body["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Errorf("raw field not parsed as JSON: %v", body["tags"])
	}
}

func TestBuildRequestBody_Empty(t *testing.T) {
	body, err := buildRequestBody(nil, nil, "", "")
	if err != nil {
		t.Fatalf("buildRequestBody failed: %v", err)
	}
	if body != nil {
		t.Errorf("expected nil body, got: %v", body)
	}
}

func TestParseField(t *testing.T) {
	k, v, err := parseField("query=fintech startups")
	if err != nil || k != "query" || v != "fintech startups" {
		t.Errorf("parseField = %q, %q, %v", k, v, err)
	}
	if _, _, err := parseField("noequals"); err == nil {
		t.Error("expected error for malformed field")
	}
}

func TestParseRawField(t *testing.T) {
	k, v, err := parseRawField("count=3")
	if err != nil || k != "count" || v != float64(3) {
		t.Errorf("parseRawField = %q, %v, %v", k, v, err)
	}
	if _, _, err := parseRawField("bad={not json"); err == nil {
		t.Error("expected error for invalid JSON value")
	}
}
