package api

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewRequestError_StringDetail(t *testing.T) {
	err := newRequestError(404, []byte(`{"detail":"Campaign not found"}`))
	if err.Detail != "Campaign not found" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNewRequestError_ValidationList(t *testing.T) {
	body := `{"detail":[
		{"loc":["body","query"],"msg":"field required","type":"value_error.missing"},
		{"loc":["body","mode"],"msg":"value is not a valid enumeration member","type":"type_error.enum"}
	]}`
	err := newRequestError(422, []byte(body))
	if !strings.Contains(err.Detail, "query: field required") {
		t.Errorf("Detail missing field error: %q", err.Detail)
	}
	if !strings.Contains(err.Detail, "mode:") {
		t.Errorf("Detail missing second field: %q", err.Detail)
	}
}

func TestNewRequestError_UnrecognizedBody(t *testing.T) {
	err := newRequestError(500, []byte("<html>secret token abc</html>"))
	if strings.Contains(err.Body, "secret") {
		t.Errorf("unrecognized body must be redacted, got %q", err.Body)
	}
}

func TestIsNotFoundError(t *testing.T) {
	if !IsNotFoundError(&RequestError{StatusCode: 404}) {
		t.Error("404 should be not-found")
	}
	if !IsNotFoundError(fmt.Errorf("wrap: %w", &RequestError{StatusCode: 400, Detail: "thread not found"})) {
		t.Error("detail text should count as not-found")
	}
	if IsNotFoundError(&RequestError{StatusCode: 500, Detail: "boom"}) {
		t.Error("500 is not not-found")
	}
	if IsNotFoundError(nil) {
		t.Error("nil is not an error")
	}
}

func TestContextualError(t *testing.T) {
	inner := &RequestError{StatusCode: 409, Detail: "campaign already running"}
	err := WrapError("POST", "http://localhost:8000/api/campaign/start", 409, inner)

	if !strings.Contains(err.Error(), "POST") || !strings.Contains(err.Error(), "409") {
		t.Errorf("Error() = %q", err.Error())
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Error("ContextualError should unwrap to RequestError")
	}
}
