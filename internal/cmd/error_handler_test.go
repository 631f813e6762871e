package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/leadflow/leadflow-cli/internal/api"
)

func TestHandleError_Nil(t *testing.T) {
	if got := HandleError(nil); got != "" {
		t.Errorf("HandleError(nil) = %q, want empty", got)
	}
}

func TestHandleError_RequestError404(t *testing.T) {
	err := &api.RequestError{StatusCode: 404, Detail: "No campaign state found for thread t-1"}
	msg := HandleError(err)

	if !strings.Contains(msg, "API error (HTTP 404)") {
		t.Errorf("missing status line: %s", msg)
	}
	if !strings.Contains(msg, "leadflow threads list") {
		t.Errorf("404 should suggest listing threads: %s", msg)
	}
}

func TestHandleError_RequestError409(t *testing.T) {
	err := &api.RequestError{StatusCode: 409, Detail: "campaign is not awaiting approval"}
	msg := HandleError(err)

	if !strings.Contains(msg, "leadflow campaign status") {
		t.Errorf("409 should suggest checking the phase: %s", msg)
	}
}

func TestHandleError_RequestErrorFallsBackToBody(t *testing.T) {
	err := &api.RequestError{StatusCode: 500, Body: "Internal Server Error"}
	msg := HandleError(err)

	if !strings.Contains(msg, "Internal Server Error") {
		t.Errorf("missing body fallback: %s", msg)
	}
	if !strings.Contains(msg, "Wait and retry") {
		t.Errorf("5xx should suggest retrying: %s", msg)
	}
}

func TestHandleError_ConnectionRefused(t *testing.T) {
	msg := HandleError(errors.New("dial tcp 127.0.0.1:8000: connection refused"))

	if !strings.Contains(msg, "Connection refused") {
		t.Errorf("missing headline: %s", msg)
	}
	if !strings.Contains(msg, "backend is running") {
		t.Errorf("missing suggestion: %s", msg)
	}
}

func TestHandleError_DNSFailure(t *testing.T) {
	msg := HandleError(errors.New("lookup leadflow.invalid: no such host"))

	if !strings.Contains(msg, "DNS resolution failed") {
		t.Errorf("missing headline: %s", msg)
	}
}

func TestHandleError_StructuredSuggestion(t *testing.T) {
	err := api.NewValidationError("decision", "maybe", []string{"yes", "no"})
	msg := HandleError(err)

	if !strings.Contains(msg, "invalid decision") {
		t.Errorf("missing message: %s", msg)
	}
	if !strings.Contains(msg, "Suggestion:") {
		t.Errorf("structured errors should surface their suggestion: %s", msg)
	}
}

func TestHandleError_Generic(t *testing.T) {
	msg := HandleError(errors.New("something odd"))
	if !strings.Contains(msg, "Error: something odd") {
		t.Errorf("missing generic message: %s", msg)
	}
}
