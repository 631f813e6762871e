package config

import (
	"os"
	"strings"
)

// DefaultBaseURL is where the backend listens in local development.
const DefaultBaseURL = "http://localhost:8000"

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	BaseURL string
	Mode    string
}

// ResolveClientConfig resolves client settings with precedence:
// flag override > environment > config file > local default.
func ResolveClientConfig(baseURLOverride string) (ClientConfig, error) {
	cfg := ClientConfig{BaseURL: DefaultBaseURL, Mode: "test"}

	if settings, err := Load(); err == nil {
		if settings.BaseURL != "" {
			cfg.BaseURL = settings.BaseURL
		}
		if settings.Mode != "" {
			cfg.Mode = settings.Mode
		}
	}

	if envURL := strings.TrimSpace(os.Getenv("LEADFLOW_BASE_URL")); envURL != "" {
		cfg.BaseURL = strings.TrimSuffix(envURL, "/")
	}
	if envMode := strings.TrimSpace(os.Getenv("LEADFLOW_MODE")); envMode == "test" || envMode == "live" {
		cfg.Mode = envMode
	}

	if baseURLOverride != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURLOverride, "/")
	}

	return cfg, nil
}

// ResolveSender merges the configured sender profile with overrides; empty
// override fields keep the configured value.
func ResolveSender(override SenderProfile) SenderProfile {
	sender := override
	settings, err := Load()
	if err != nil {
		return sender
	}
	if sender.CompanyName == "" {
		sender.CompanyName = settings.Sender.CompanyName
	}
	if sender.SenderName == "" {
		sender.SenderName = settings.Sender.SenderName
	}
	if sender.SenderRole == "" {
		sender.SenderRole = settings.Sender.SenderRole
	}
	if sender.CompanyDescription == "" {
		sender.CompanyDescription = settings.Sender.CompanyDescription
	}
	return sender
}
