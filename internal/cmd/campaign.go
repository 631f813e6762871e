package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leadflow/leadflow-cli/internal/api"
	"github.com/leadflow/leadflow-cli/internal/config"
	"github.com/leadflow/leadflow-cli/internal/dryrun"
	"github.com/leadflow/leadflow-cli/internal/validation"
)

func newCampaignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "campaign",
		Aliases: []string{"c"},
		Short:   "Run and steer outreach campaigns",
	}

	cmd.AddCommand(newCampaignStartCmd())
	cmd.AddCommand(newCampaignStatusCmd())
	cmd.AddCommand(newCampaignContinueCmd())
	cmd.AddCommand(newCampaignApproveCmd())
	cmd.AddCommand(newCampaignFollowCmd())

	return cmd
}

func newCampaignStartCmd() *cobra.Command {
	var (
		query             string
		mode              string
		thread            string
		senderCompany     string
		senderName        string
		senderRole        string
		senderDescription string
	)

	cmd := &cobra.Command{
		Use:     "start",
		Aliases: []string{"s"},
		Short:   "Start a new campaign",
		Long: `Start a new campaign from a lead search query.

The backend researches companies matching the query, qualifies them, and
drafts outreach emails. Use --thread to resume an existing thread instead
of creating a new one. In test mode no emails are actually sent.`,
		Example: `  leadflow campaign start --query "fintech startups in Berlin"
  leadflow campaign start --query "SaaS companies using Postgres" --mode live
  leadflow campaign start --query "..." --thread existing-thread`,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateQuery(query); err != nil {
				return err
			}
			resolved, err := resolvedMode(mode)
			if err != nil {
				return err
			}
			if thread != "" {
				if err := validation.ValidateThreadID(thread); err != nil {
					return err
				}
			}
			for field, value := range map[string]string{
				"sender-company":     senderCompany,
				"sender-name":        senderName,
				"sender-role":        senderRole,
				"sender-description": senderDescription,
			} {
				if err := validation.ValidateProfileField(field, value); err != nil {
					return err
				}
			}

			sender := config.ResolveSender(config.SenderProfile{
				CompanyName:        senderCompany,
				SenderName:         senderName,
				SenderRole:         senderRole,
				CompanyDescription: senderDescription,
			})

			req := api.StartCampaignRequest{
				Query: query,
				Mode:  resolved,
			}
			if thread != "" {
				req.ThreadID = &thread
			}
			if sender != (config.SenderProfile{}) {
				req.SenderProfile = &api.SenderProfile{
					CompanyName:        sender.CompanyName,
					SenderName:         sender.SenderName,
					SenderRole:         sender.SenderRole,
					CompanyDescription: sender.CompanyDescription,
				}
			}

			preview := &dryrun.Preview{
				Operation:   "start",
				Resource:    "campaign",
				Description: fmt.Sprintf("Start a %s-mode campaign for query %q", resolved, query),
				Details: map[string]any{
					"query": query,
					"mode":  resolved,
				},
			}
			if thread != "" {
				preview.Details["thread_id"] = thread
			}
			if resolved == api.ModeLive {
				preview.Warnings = append(preview.Warnings, "live mode sends real emails")
			}
			if done, err := maybeDryRun(cmd, preview); done {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			resp, err := client.Campaigns().Start(cmdContext(cmd), req)
			if err != nil {
				return fmt.Errorf("failed to start campaign: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			printAction(cmd, "Started", "campaign", resp.ThreadID, "")
			printIfNotQuiet(cmd, "Follow progress with 'leadflow campaign follow %s'\n", resp.ThreadID)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Lead search query (required)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Campaign mode: test|live (default from config, else test)")
	cmd.Flags().StringVarP(&thread, "thread", "t", "", "Resume an existing thread instead of creating one")
	cmd.Flags().StringVar(&senderCompany, "sender-company", "", "Sender company name")
	cmd.Flags().StringVar(&senderName, "sender-name", "", "Sender full name")
	cmd.Flags().StringVar(&senderRole, "sender-role", "", "Sender role or title")
	cmd.Flags().StringVar(&senderDescription, "sender-description", "", "Short company description used in emails")
	_ = cmd.MarkFlagRequired("query")
	registerStaticCompletions(cmd, "mode", []string{api.ModeTest, api.ModeLive})
	flagAlias(cmd.Flags(), "mode", "md")
	flagAlias(cmd.Flags(), "thread", "th")
	flagAlias(cmd.Flags(), "sender-company", "sc")
	flagAlias(cmd.Flags(), "sender-name", "sn")

	return cmd
}

func newCampaignStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status <thread>",
		Aliases: []string{"st"},
		Short:   "Show campaign phase and counters",
		Example: "  leadflow campaign status my-thread",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			threadID, err := resolveThreadID(cmdContext(cmd), client, args[0])
			if err != nil {
				return err
			}

			status, err := client.Campaigns().Status(cmdContext(cmd), threadID)
			if err != nil {
				return fmt.Errorf("failed to get campaign status: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, status)
			}
			return printCampaignStatus(cmd, status)
		}),
	}
}

func printCampaignStatus(cmd *cobra.Command, status *api.CampaignStatus) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Thread: %s\n", bold(status.ThreadID))
	_, _ = fmt.Fprintf(out, "Phase: %s\n", phaseDisplay(status.Phase))
	_, _ = fmt.Fprintf(out, "Leads: %d (%d qualified)\n", status.LeadsCount, status.QualifiedCount)
	_, _ = fmt.Fprintf(out, "Emails: %d ready, %d sent\n", status.EmailsReady, status.EmailsSent)
	_, _ = fmt.Fprintf(out, "Monitoring: %d active, %d replies\n", status.MonitoringCount, status.RepliesReceived)
	if status.Phase == api.PhaseApproval {
		_, _ = fmt.Fprintf(out, "\nEmails are awaiting approval. Run 'leadflow campaign approve %s --decision yes|no'\n", status.ThreadID)
	}
	return nil
}

func phaseDisplay(phase string) string {
	switch phase {
	case api.PhaseApproval:
		return yellow(phase)
	case api.PhaseDone:
		return green(phase)
	default:
		return phase
	}
}

func newCampaignContinueCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "continue <thread>",
		Aliases: []string{"resume"},
		Short:   "Resume a paused campaign run",
		Long: `Resume a campaign whose graph run is paused waiting for input.

Campaigns in the monitoring phase cannot be continued; the monitor loop
runs server-side until every record resolves or expires.`,
		Example: "  leadflow campaign continue my-thread",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			threadID, err := resolveThreadID(cmdContext(cmd), client, args[0])
			if err != nil {
				return err
			}

			preview := &dryrun.Preview{
				Operation:   "continue",
				Resource:    "campaign",
				Description: fmt.Sprintf("Resume campaign %s", threadID),
				Details:     map[string]any{"thread_id": threadID},
			}
			if done, err := maybeDryRun(cmd, preview); done {
				return err
			}

			resp, err := client.Campaigns().Continue(cmdContext(cmd), threadID)
			if err != nil {
				return fmt.Errorf("failed to continue campaign: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			printAction(cmd, "Resumed", "campaign", resp.ThreadID, "")
			return nil
		}),
	}
}

func newCampaignApproveCmd() *cobra.Command {
	var decision string

	cmd := &cobra.Command{
		Use:     "approve <thread>",
		Aliases: []string{"ap"},
		Short:   "Approve or reject drafted outreach emails",
		Long: `Record the send-first-email decision for a campaign in the approval phase.

Approving with yes moves the campaign into the sending phase; rejecting
with no ends the outreach without sending anything.`,
		Example: `  leadflow campaign approve my-thread --decision yes
  leadflow campaign approve my-thread --decision no`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			normalized, err := validateDecision(decision)
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			threadID, err := resolveThreadID(cmdContext(cmd), client, args[0])
			if err != nil {
				return err
			}

			preview := &dryrun.Preview{
				Operation:   "approve-emails",
				Resource:    "campaign",
				Description: fmt.Sprintf("Record decision %q for campaign %s", normalized, threadID),
				Details: map[string]any{
					"thread_id": threadID,
					"decision":  normalized,
				},
			}
			if normalized == api.DecisionYes {
				preview.Warnings = append(preview.Warnings, "approving sends the drafted emails")
			}
			if done, err := maybeDryRun(cmd, preview); done {
				return err
			}

			resp, err := client.Campaigns().ApproveEmails(cmdContext(cmd), threadID, normalized)
			if err != nil {
				return fmt.Errorf("failed to record approval: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			if normalized == api.DecisionYes {
				printAction(cmd, "Approved", "emails for", resp.ThreadID, "")
			} else {
				printAction(cmd, "Rejected", "emails for", resp.ThreadID, "")
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&decision, "decision", "d", "", "Decision: yes|no (required)")
	_ = cmd.MarkFlagRequired("decision")
	registerStaticCompletions(cmd, "decision", []string{api.DecisionYes, api.DecisionNo})
	flagAlias(cmd.Flags(), "decision", "dec")

	return cmd
}

// newStatusCmd is a root-level shortcut for "campaign status".
func newStatusCmd() *cobra.Command {
	cmd := newCampaignStatusCmd()
	cmd.Use = "status <thread>"
	cmd.Aliases = nil
	cmd.Short = "Show campaign phase and counters (shortcut for campaign status)"
	return cmd
}
