package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leadflow/leadflow-cli/internal/api"
	"github.com/leadflow/leadflow-cli/internal/cache"
)

var completionsNoCache bool

// CompletionItem represents an autocomplete suggestion
type CompletionItem struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

func outputCompletionItems(cmd *cobra.Command, items []CompletionItem) error {
	if isJSON(cmd) {
		return printJSON(cmd, items)
	}

	w := newTabWriterFromCmd(cmd)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", item.Value, item.Label, item.Description)
	}
	return w.Flush()
}

func completionsStore(client *api.Client, key string) *cache.Store {
	if completionsNoCache {
		return nil
	}
	dir := resolveCacheDir()
	if dir == "" {
		return nil
	}
	return cache.NewStore(dir, key, client.BaseURL)
}

func newCompletionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completions",
		Short: "Get autocomplete values",
		Long:  "Retrieve valid values to help with command completion (threads, modes, decisions, phases)",
	}

	cmd.PersistentFlags().BoolVar(&completionsNoCache, "no-cache", false, "Disable completions cache")

	cmd.AddCommand(newCompletionsThreadsCmd())
	cmd.AddCommand(newCompletionsModesCmd())
	cmd.AddCommand(newCompletionsDecisionsCmd())
	cmd.AddCommand(newCompletionsPhasesCmd())

	return cmd
}

func newCompletionsThreadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "threads",
		Short: "List valid thread IDs with their queries",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			store := completionsStore(client, "threads")
			if store != nil {
				var items []CompletionItem
				if store.Get(&items) {
					return outputCompletionItems(cmd, items)
				}
			}

			resp, err := client.Threads().List(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list threads: %w", err)
			}

			items := make([]CompletionItem, len(resp.Threads))
			for i, t := range resp.Threads {
				items[i] = CompletionItem{
					Value:       t.ThreadID,
					Label:       t.Query,
					Description: t.Phase,
				}
			}

			if store != nil {
				store.Put(items)
			}
			return outputCompletionItems(cmd, items)
		}),
	}
}

func newCompletionsModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List valid campaign modes",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			// Static values - no API call needed
			items := []CompletionItem{
				{Value: api.ModeTest, Label: "Test", Description: "Dry run, no emails are sent"},
				{Value: api.ModeLive, Label: "Live", Description: "Real outreach emails are sent"},
			}

			return outputCompletionItems(cmd, items)
		}),
	}
}

func newCompletionsDecisionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decisions",
		Short: "List valid decision values",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			items := []CompletionItem{
				{Value: api.DecisionYes, Label: "Yes", Description: "Approve the pending action"},
				{Value: api.DecisionNo, Label: "No", Description: "Reject the pending action"},
			}

			return outputCompletionItems(cmd, items)
		}),
	}
}

func newCompletionsPhasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phases",
		Short: "List campaign phases in order",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			items := []CompletionItem{
				{Value: api.PhaseResearch, Label: "Research", Description: "Finding companies for the query"},
				{Value: api.PhaseQualify, Label: "Qualify", Description: "Scoring and filtering leads"},
				{Value: api.PhaseOutreach, Label: "Outreach", Description: "Drafting outreach emails"},
				{Value: api.PhaseApproval, Label: "Approval", Description: "Waiting for the send decision"},
				{Value: api.PhaseSending, Label: "Sending", Description: "Delivering approved emails"},
				{Value: api.PhaseMonitor, Label: "Monitor", Description: "Watching for replies"},
				{Value: api.PhaseDone, Label: "Done", Description: "Campaign finished"},
			}

			return outputCompletionItems(cmd, items)
		}),
	}
}
