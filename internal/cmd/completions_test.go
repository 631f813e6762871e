package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
)

func TestCompletionsThreads(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/threads", jsonResponse(200, `{
			"threads": [
				{"thread_id": "t-1a2b", "phase": "monitor", "query": "fintech startups"},
				{"thread_id": "t-9z8y", "phase": "done", "query": "logistics SaaS"}
			],
			"count": 2
		}`))

	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"completions", "threads"}); err != nil {
			t.Fatalf("completions threads failed: %v", err)
		}
	})

	if !strings.Contains(output, "t-1a2b") || !strings.Contains(output, "t-9z8y") {
		t.Errorf("output missing thread IDs: %s", output)
	}
	if !strings.Contains(output, "fintech startups") {
		t.Errorf("output missing query label: %s", output)
	}
}

func TestCompletionsThreads_UsesCache(t *testing.T) {
	var calls atomic.Int32
	handler := newRouteHandler().
		On("GET", "/api/threads", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"threads": [{"thread_id": "t-1a2b", "query": "q"}], "count": 1}`))
		})

	setupTestEnvWithHandler(t, handler)

	for i := 0; i < 2; i++ {
		_ = captureStdout(t, func() {
			if err := Execute(context.Background(), []string{"completions", "threads"}); err != nil {
				t.Fatalf("completions threads failed: %v", err)
			}
		})
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 backend call with warm cache, got %d", got)
	}
}

func TestCompletionsThreads_NoCache(t *testing.T) {
	var calls atomic.Int32
	handler := newRouteHandler().
		On("GET", "/api/threads", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"threads": [], "count": 0}`))
		})

	setupTestEnvWithHandler(t, handler)

	for i := 0; i < 2; i++ {
		_ = captureStdout(t, func() {
			if err := Execute(context.Background(), []string{"completions", "threads", "--no-cache"}); err != nil {
				t.Fatalf("completions threads failed: %v", err)
			}
		})
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 backend calls with --no-cache, got %d", got)
	}
}

func TestCompletionsModes(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"completions", "modes"}); err != nil {
			t.Fatalf("completions modes failed: %v", err)
		}
	})

	if !strings.Contains(output, "test") || !strings.Contains(output, "live") {
		t.Errorf("output missing modes: %s", output)
	}
}

func TestCompletionsDecisions_JSON(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"completions", "decisions", "-o", "json"}); err != nil {
			t.Fatalf("completions decisions failed: %v", err)
		}
	})

	var items []CompletionItem
	if err := json.Unmarshal([]byte(output), &items); err != nil {
		t.Fatalf("output is not valid JSON: %v, output: %s", err, output)
	}
	if len(items) != 2 || items[0].Value != "yes" || items[1].Value != "no" {
		t.Errorf("unexpected decisions: %+v", items)
	}
}

func TestCompletionsPhases(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"completions", "phases"}); err != nil {
			t.Fatalf("completions phases failed: %v", err)
		}
	})

	for _, phase := range []string{"research", "qualify", "outreach", "approval", "sending", "monitor", "done"} {
		if !strings.Contains(output, phase) {
			t.Errorf("output missing phase %q: %s", phase, output)
		}
	}
}
