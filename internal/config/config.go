// Package config stores CLI settings in a JSON file under the user config
// directory. The backend exposes no credentials, so there is nothing secret
// here: base URL, default campaign mode, and the default sender profile.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

const appDirName = "leadflow"

var userConfigDir = os.UserConfigDir

// Settings holds the persisted CLI configuration.
type Settings struct {
	BaseURL string        `json:"base_url,omitempty"`
	Mode    string        `json:"mode,omitempty"` // default campaign mode: test or live
	Sender  SenderProfile `json:"sender,omitempty"`
}

// SenderProfile is the default sender identity attached to campaign starts.
type SenderProfile struct {
	CompanyName        string `json:"company_name,omitempty"`
	SenderName         string `json:"sender_name,omitempty"`
	SenderRole         string `json:"sender_role,omitempty"`
	CompanyDescription string `json:"company_description,omitempty"`
}

// ErrNotConfigured is returned when no config file exists yet.
var ErrNotConfigured = errors.New("leadflow not configured - run 'leadflow config set' or set LEADFLOW_BASE_URL")

// Path returns the config file location.
func Path() (string, error) {
	base, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName, "config.json"), nil
}

// Load reads the settings file. A missing file returns ErrNotConfigured.
func Load() (*Settings, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the settings file, creating the directory if needed.
func Save(s *Settings) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// Keys lists the settable config keys.
func Keys() []string {
	keys := []string{
		"base_url",
		"mode",
		"sender.company_name",
		"sender.sender_name",
		"sender.sender_role",
		"sender.company_description",
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value for a dotted config key.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "base_url":
		return s.BaseURL, nil
	case "mode":
		return s.Mode, nil
	case "sender.company_name":
		return s.Sender.CompanyName, nil
	case "sender.sender_name":
		return s.Sender.SenderName, nil
	case "sender.sender_role":
		return s.Sender.SenderRole, nil
	case "sender.company_description":
		return s.Sender.CompanyDescription, nil
	default:
		return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
}

// Set updates the value for a dotted config key.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "base_url":
		s.BaseURL = strings.TrimSuffix(value, "/")
	case "mode":
		if value != "test" && value != "live" {
			return fmt.Errorf("invalid mode %q (use 'test' or 'live')", value)
		}
		s.Mode = value
	case "sender.company_name":
		s.Sender.CompanyName = value
	case "sender.sender_name":
		s.Sender.SenderName = value
	case "sender.sender_role":
		s.Sender.SenderRole = value
	case "sender.company_description":
		s.Sender.CompanyDescription = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

// LoadDotEnv loads environment variables from ~/.leadflow/.env when present.
// Existing environment variables win; the file never overrides them.
func LoadDotEnv() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	path := filepath.Join(home, "."+appDirName, ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}
