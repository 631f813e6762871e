package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"
)

func TestErrorCodeFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCode
	}{
		{400, ErrBadRequest},
		{404, ErrNotFound},
		{409, ErrConflict},
		{422, ErrValidation},
		{500, ErrServerError},
		{503, ErrServerError},
		{418, ErrUnknown},
	}
	for _, tt := range tests {
		if got := ErrorCodeFromStatus(tt.status); got != tt.want {
			t.Errorf("ErrorCodeFromStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestErrorCodeRetryable(t *testing.T) {
	for _, code := range []ErrorCode{ErrServerError, ErrTimeout, ErrConnection} {
		if !code.IsRetryable() {
			t.Errorf("%s should be retryable", code)
		}
	}
	for _, code := range []ErrorCode{ErrBadRequest, ErrNotFound, ErrValidation, ErrConflict, ErrUnknown} {
		if code.IsRetryable() {
			t.Errorf("%s should not be retryable", code)
		}
	}
}

func TestStructuredErrorFromError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if StructuredErrorFromError(nil) != nil {
			t.Error("nil error should map to nil")
		}
	})

	t.Run("request error", func(t *testing.T) {
		err := StructuredErrorFromError(&RequestError{StatusCode: 404, Detail: "Campaign not found"})
		if err.Code != ErrNotFound || err.Message != "Campaign not found" {
			t.Errorf("got %+v", err)
		}
		if err.Context["status_code"] != 404 {
			t.Errorf("context = %v", err.Context)
		}
	})

	t.Run("structured passthrough", func(t *testing.T) {
		original := NewValidationError("decision", "maybe", []string{"yes", "no"})
		got := StructuredErrorFromError(original)
		if got != original {
			t.Error("StructuredError should pass through unchanged")
		}
	})

	t.Run("deadline", func(t *testing.T) {
		err := StructuredErrorFromError(context.DeadlineExceeded)
		if err.Code != ErrTimeout || !err.Retryable {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		opErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		err := StructuredErrorFromError(opErr)
		if err.Code != ErrConnection {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("net timeout", func(t *testing.T) {
		err := StructuredErrorFromError(timeoutError{})
		if err.Code != ErrTimeout {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("generic", func(t *testing.T) {
		err := StructuredErrorFromError(errors.New("boom"))
		if err.Code != ErrUnknown || err.Retryable {
			t.Errorf("got %+v", err)
		}
	})
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("mode", "prod", []string{"test", "live"})
	if err.Code != ErrValidation {
		t.Errorf("code = %s", err.Code)
	}
	if !strings.Contains(err.Message, `"prod"`) {
		t.Errorf("message = %q", err.Message)
	}
	if len(err.AllowedValues) != 2 {
		t.Errorf("allowed = %v", err.AllowedValues)
	}
}

func TestStructuredErrorJSON(t *testing.T) {
	err := NewStructuredError(ErrTimeout, "request timed out after 30s")
	data, mErr := json.Marshal(err)
	if mErr != nil {
		t.Fatalf("marshal failed: %v", mErr)
	}
	var decoded map[string]any
	if uErr := json.Unmarshal(data, &decoded); uErr != nil {
		t.Fatalf("unmarshal failed: %v", uErr)
	}
	if decoded["code"] != "timeout" || decoded["retryable"] != true {
		t.Errorf("decoded = %v", decoded)
	}
}
