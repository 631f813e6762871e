package validation

import (
	"strings"
	"testing"
)

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"empty", "", "cannot be empty"},
		{"bad scheme", "ftp://example.com", "invalid URL scheme"},
		{"no hostname", "http://", "must contain a hostname"},
		{"localhost allowed", "http://localhost:8000", ""},
		{"loopback ip allowed", "http://127.0.0.1:8000", ""},
		{"ipv6 loopback allowed", "http://[::1]:8000", ""},
		{"localhost subdomain", "http://api.localhost:8000", ""},
		{"https public", "https://leadflow.example.com", ""},
		{"metadata ip", "http://169.254.169.254/latest", "metadata"},
		{"metadata hostname", "http://metadata.google.internal", "metadata"},
		{"private ip blocked", "http://10.0.0.5:8000", "private IP"},
		{"link local blocked", "http://169.254.1.1", "link-local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.url)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateBaseURL(%q) unexpected error: %v", tt.url, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateBaseURL(%q) = %v, want error containing %q", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBaseURL_AllowPrivate(t *testing.T) {
	prev := AllowPrivateEnabled()
	SetAllowPrivate(true)
	defer SetAllowPrivate(prev)

	if err := ValidateBaseURL("http://10.1.2.3:8000"); err != nil {
		t.Errorf("private IP should be allowed when enabled: %v", err)
	}
	// Metadata stays blocked even with private allowed.
	if err := ValidateBaseURL("http://169.254.169.254"); err == nil {
		t.Error("metadata endpoint should stay blocked")
	}
}
