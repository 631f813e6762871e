package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leadflow/leadflow-cli/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigCheckCmd())

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Print one configuration value",
		Example: "  leadflow config get base_url",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					settings = &config.Settings{}
				} else {
					return err
				}
			}

			value, err := settings.Get(args[0])
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"key": args[0], "value": value})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		}),
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Example: `  leadflow config set base_url http://localhost:8000
  leadflow config set mode test
  leadflow config set sender.company_name "Acme Inc"`,
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					settings = &config.Settings{}
				} else {
					return err
				}
			}

			if err := settings.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(settings); err != nil {
				return err
			}

			printAction(cmd, "Set", args[0], nil, args[1])
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"key": args[0], "value": args[1]})
			}
			return nil
		}),
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all configuration values",
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					settings = &config.Settings{}
				} else {
					return err
				}
			}

			if isJSON(cmd) {
				return printJSON(cmd, settings)
			}

			w := newTabWriterFromCmd(cmd)
			defer func() { _ = w.Flush() }()
			_, _ = fmt.Fprintln(w, "KEY\tVALUE")
			for _, key := range config.Keys() {
				value, err := settings.Get(key)
				if err != nil {
					continue
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\n", key, valueOrDash(value))
			}
			return nil
		}),
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"path": path})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	}
}

func newConfigCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the backend is reachable",
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			ok, err := client.HealthCheck(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("backend unreachable at %s: %w", client.BaseURL, err)
			}
			if !ok {
				return fmt.Errorf("backend at %s responded but is not healthy", client.BaseURL)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"base_url": client.BaseURL, "healthy": true})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("OK"), client.BaseURL)
			return nil
		}),
	}
}
