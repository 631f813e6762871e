package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Get_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/threads" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"threads":[{"thread_id":"t-1"}],"count":1}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	var resp ThreadsResponse
	if err := c.Get(context.Background(), "/threads", &resp); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if resp.Count != 1 || resp.Threads[0].ThreadID != "t-1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClient_Post_SendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("body decode failed: %v", err)
		}
		if body["decision"] != "yes" {
			t.Errorf("decision = %v", body["decision"])
		}
		_, _ = w.Write([]byte(`{"thread_id":"t-1","status":"approved"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	var resp DecisionResponse
	err := c.Post(context.Background(), "/campaign/t-1/approve-emails",
		ApproveEmailsRequest{ThreadID: "t-1", Decision: "yes"}, &resp)
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if resp.Status != "approved" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{
			name:       "not found with detail",
			status:     404,
			body:       `{"detail":"Campaign not found"}`,
			wantDetail: "Campaign not found",
		},
		{
			name:       "server error with detail",
			status:     500,
			body:       `{"detail":"graph execution failed"}`,
			wantDetail: "graph execution failed",
		},
		{
			name:       "validation error list",
			status:     422,
			body:       `{"detail":[{"loc":["body","query"],"msg":"field required","type":"value_error.missing"}]}`,
			wantDetail: "query: field required",
		},
		{
			name:       "unparseable body redacted",
			status:     502,
			body:       `<html>bad gateway</html>`,
			wantDetail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newTestClient(server.URL)
			err := c.Get(context.Background(), "/campaign/t-1/status", &CampaignStatus{})
			if err == nil {
				t.Fatal("expected error")
			}

			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected RequestError, got %T: %v", err, err)
			}
			if reqErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", reqErr.StatusCode, tt.status)
			}
			if tt.wantDetail != "" && !contains(reqErr.Detail, tt.wantDetail) {
				t.Errorf("detail = %q, want substring %q", reqErr.Detail, tt.wantDetail)
			}
			if tt.wantDetail == "" && contains(reqErr.Body, "bad gateway") {
				t.Errorf("raw body should not leak into sanitized error: %q", reqErr.Body)
			}
		})
	}
}

func TestClient_DecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{broken json`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	err := c.Get(context.Background(), "/threads", &ThreadsResponse{})
	if err == nil || !contains(err.Error(), "JSON decode failed") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestClient_URLValidation(t *testing.T) {
	c := New("ftp://bad-scheme")
	err := c.Get(context.Background(), "/threads", nil)
	if err == nil || !contains(err.Error(), "URL validation failed") {
		t.Errorf("expected URL validation error, got %v", err)
	}
}

func TestClient_DoRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"threads":[],"count":0}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	body, status, err := c.DoRaw(context.Background(), http.MethodGet, "/threads", nil)
	if err != nil {
		t.Fatalf("DoRaw returned error: %v", err)
	}
	if status != 200 || !contains(string(body), `"count":0`) {
		t.Errorf("DoRaw = %d %q", status, string(body))
	}
}

func TestClient_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"threads":[],"count":0}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	ok, err := c.HealthCheck(context.Background())
	if err != nil || !ok {
		t.Errorf("HealthCheck = %v, %v", ok, err)
	}
}

func TestApiPath(t *testing.T) {
	c := newTestClient("http://localhost:8000")
	if got := c.apiPath("threads"); got != "http://localhost:8000/api/threads" {
		t.Errorf("apiPath without slash = %q", got)
	}
	if got := c.apiPath("/campaign/t-1/status"); got != "http://localhost:8000/api/campaign/t-1/status" {
		t.Errorf("apiPath = %q", got)
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
