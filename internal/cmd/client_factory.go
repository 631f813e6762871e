package cmd

import (
	"fmt"
	"time"

	"github.com/leadflow/leadflow-cli/internal/api"
	"github.com/leadflow/leadflow-cli/internal/config"
)

type clientFactory struct {
	timeout   time.Duration
	userAgent string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("leadflow-cli/%s", version),
	}
}

func (f *clientFactory) backend() (*api.Client, error) {
	cfg, err := config.ResolveClientConfig(flags.BaseURL)
	if err != nil {
		return nil, err
	}
	return f.newClient(cfg), nil
}

func (f *clientFactory) newClient(cfg config.ClientConfig) *api.Client {
	client := api.New(cfg.BaseURL)
	if f.timeout > 0 {
		client.HTTP.Timeout = f.timeout
	}
	if f.userAgent != "" {
		client.UserAgent = f.userAgent
	}
	return client
}

// resolvedMode returns the effective campaign mode: an explicit flag value
// wins, otherwise config/env resolution decides, falling back to test mode.
func resolvedMode(flagMode string) (string, error) {
	if flagMode != "" {
		return validateMode(flagMode)
	}
	cfg, err := config.ResolveClientConfig(flags.BaseURL)
	if err != nil {
		return "", err
	}
	if cfg.Mode != "" {
		return validateMode(cfg.Mode)
	}
	return api.ModeTest, nil
}
