// Test utilities for the leadflow CLI commands.
//
// The main components are:
//
//   - routeHandler: a chainable HTTP handler for routing requests to mock responses
//   - setupTestEnvWithHandler: environment setup with automatic cleanup
//   - captureStdout / captureStderr: output capture utilities
//   - jsonResponse: helper for creating JSON response handlers
//
// A minimal example of testing a command:
//
//	func TestMyCommand(t *testing.T) {
//	    handler := newRouteHandler().
//	        On("GET", "/api/threads", jsonResponse(200, `{"threads": [], "count": 0}`))
//
//	    setupTestEnvWithHandler(t, handler)
//
//	    output := captureStdout(t, func() {
//	        if err := Execute(context.Background(), []string{"threads", "list"}); err != nil {
//	            t.Fatalf("command failed: %v", err)
//	        }
//	    })
//
//	    // Assert on output...
//	}
//
// For inspecting request bodies, register a custom handler:
//
//	var receivedBody map[string]any
//	handler := newRouteHandler().
//	    On("POST", "/api/campaign/start", func(w http.ResponseWriter, r *http.Request) {
//	        _ = json.NewDecoder(r.Body).Decode(&receivedBody)
//	        w.Header().Set("Content-Type", "application/json")
//	        w.WriteHeader(http.StatusOK)
//	        _, _ = w.Write([]byte(`{"thread_id": "t-1", "status": "started"}`))
//	    })
package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

// captureStdout executes a function and captures its stdout output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// captureStderr executes a function and captures its stderr output.
// Use this for error messages and "no results" messages.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	_ = w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// testEnv provides access to the mock backend server.
type testEnv struct {
	t      *testing.T
	server *httptest.Server
}

// setupTestEnvWithHandler creates a mock server with any http.Handler and
// points the CLI at it. It automatically:
//
//   - creates a test HTTP server
//   - sets LEADFLOW_BASE_URL to the test server
//   - sets LEADFLOW_TESTING to skip URL validation
//   - forces text output and isolates HOME and the cache dir
//   - restores everything on test cleanup
func setupTestEnvWithHandler(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("LEADFLOW_BASE_URL", server.URL)
	t.Setenv("LEADFLOW_TESTING", "1")
	t.Setenv("LEADFLOW_OUTPUT", "text")
	t.Setenv("LEADFLOW_MODE", "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LEADFLOW_CACHE_DIR", t.TempDir())

	return &testEnv{t: t, server: server}
}

// jsonResponse creates an http.HandlerFunc that returns a JSON response with
// the given status and body.
func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler is a test HTTP handler that routes requests based on method and
// path. Routes are matched by exact "METHOD PATH" combination; unmatched
// requests return 404.
type routeHandler struct {
	routes map[string]http.HandlerFunc
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers a handler for the given HTTP method and path and returns the
// routeHandler to allow chaining.
func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	if handler, ok := rh.routes[key]; ok {
		handler(w, r)
		return
	}
	http.NotFound(w, r)
}

// TestTestInfrastructure validates that the test infrastructure works correctly
func TestTestInfrastructure(t *testing.T) {
	t.Run("setupTestEnvWithHandler sets environment variables", func(t *testing.T) {
		env := setupTestEnvWithHandler(t, jsonResponse(200, `{"status": "ok"}`))

		if os.Getenv("LEADFLOW_BASE_URL") != env.server.URL {
			t.Error("LEADFLOW_BASE_URL not set correctly")
		}
		if os.Getenv("LEADFLOW_TESTING") != "1" {
			t.Error("LEADFLOW_TESTING not set correctly")
		}
	})

	t.Run("routeHandler routes requests correctly", func(t *testing.T) {
		handler := newRouteHandler().
			On("GET", "/api/test", jsonResponse(200, `{"method": "get"}`)).
			On("POST", "/api/test", jsonResponse(201, `{"method": "post"}`))

		env := setupTestEnvWithHandler(t, handler)

		resp, err := http.Get(env.server.URL + "/api/test")
		if err != nil {
			t.Fatalf("GET request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}

		resp, err = http.Post(env.server.URL+"/api/test", "application/json", nil)
		if err != nil {
			t.Fatalf("POST request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 201 {
			t.Errorf("expected status 201, got %d", resp.StatusCode)
		}

		resp, err = http.Get(env.server.URL + "/api/unknown")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 404 {
			t.Errorf("expected status 404 for unknown route, got %d", resp.StatusCode)
		}
	})
}

// decodeList parses JSON output from a list command and returns the array
// stored under the given envelope key, e.g. "leads" from
// {"thread_id": ..., "leads": [...], "count": N}.
func decodeList(t *testing.T, output, key string) []map[string]any {
	t.Helper()
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(output), &wrapper); err != nil {
		t.Fatalf("output is not valid JSON: %v, output: %s", err, output)
	}
	raw, ok := wrapper[key]
	if !ok {
		t.Fatalf("output has no %q key: %s", key, output)
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("%q is not an array: %v, output: %s", key, err, output)
	}
	return items
}
