package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// RequestError represents an error response from the backend. FastAPI wraps
// error messages in a {"detail": ...} envelope; Detail carries the extracted
// message and Body the sanitized raw payload for debugging.
type RequestError struct {
	StatusCode int
	Detail     string
	Body       string
}

func (e *RequestError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// newRequestError builds a RequestError from a failed response body.
func newRequestError(statusCode int, body []byte) *RequestError {
	detail, sanitized := extractDetail(body)
	return &RequestError{
		StatusCode: statusCode,
		Detail:     detail,
		Body:       sanitized,
	}
}

// extractDetail pulls the message out of a FastAPI error envelope. The detail
// field is a string for ordinary errors and a list of field errors for 422
// validation failures.
func extractDetail(body []byte) (detail, sanitized string) {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return "", "request failed (response body was not a recognized error payload)"
	}

	var message string
	if err := json.Unmarshal(envelope.Detail, &message); err == nil {
		return message, message
	}

	var fieldErrors []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &fieldErrors); err == nil && len(fieldErrors) > 0 {
		lines := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			field := ""
			if len(fe.Loc) > 0 {
				last := fe.Loc[len(fe.Loc)-1]
				field = fmt.Sprintf("%v", last)
			}
			if field != "" {
				lines = append(lines, fmt.Sprintf("  %s: %s", field, fe.Msg))
			} else {
				lines = append(lines, "  "+fe.Msg)
			}
		}
		sort.Strings(lines)
		joined := "validation errors:\n" + strings.Join(lines, "\n")
		return joined, joined
	}

	return "", "request failed (response body was not a recognized error payload)"
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == 404 ||
			strings.Contains(strings.ToLower(reqErr.Detail), "not found")
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// IsRequestError checks if the error is a backend error response.
func IsRequestError(err error) bool {
	var e *RequestError
	return errors.As(err, &e)
}

// ContextualError wraps an API error with request context
type ContextualError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *ContextualError) Error() string {
	return fmt.Sprintf("%s %s failed (status %d): %v", e.Method, e.URL, e.StatusCode, e.Err)
}

func (e *ContextualError) Unwrap() error {
	return e.Err
}

// WrapError adds request context to an API error
func WrapError(method, url string, statusCode int, err error) error {
	return &ContextualError{
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
