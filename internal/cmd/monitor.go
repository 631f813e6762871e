package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadflow/leadflow-cli/internal/api"
	"github.com/leadflow/leadflow-cli/internal/cli"
	"github.com/leadflow/leadflow-cli/internal/dryrun"
	"github.com/leadflow/leadflow-cli/internal/liveview"
	"github.com/leadflow/leadflow-cli/internal/push"
	"github.com/leadflow/leadflow-cli/internal/resolve"
	"github.com/leadflow/leadflow-cli/internal/validation"
)

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "monitor",
		Aliases: []string{"m"},
		Short:   "Track replies to sent outreach emails",
	}

	cmd.AddCommand(newMonitorListCmd())
	cmd.AddCommand(newMonitorScheduleCmd())
	cmd.AddCommand(newMonitorFollowCmd())

	return cmd
}

func newMonitorListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list <thread>",
		Aliases: []string{"ls"},
		Short:   "List reply-monitoring records for a thread",
		Example: "  leadflow monitor list my-thread",
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

			resp, err := client.Monitoring().List(cmdContext(cmd), threadID)
			if err != nil {
				return fmt.Errorf("failed to list monitoring records: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}

			if len(resp.Monitoring) == 0 {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No monitoring records found.")
				return nil
			}

			w := newTabWriterFromCmd(cmd)
			defer func() { _ = w.Flush() }()
			_, _ = fmt.Fprintln(w, "COMPANY\tEMAIL\tSTATUS\tREPLIED\tFOLLOWUPS\tMEETING")
			for _, rec := range resp.Monitoring {
				replied := "no"
				if rec.ReplyReceived {
					replied = green("yes")
				}
				meeting := "-"
				if rec.MeetLink != "" {
					meeting = rec.MeetLink
				} else if rec.ReplyReceived {
					meeting = yellow("pending")
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					rec.CompanyName,
					rec.Email,
					rec.MonitorStatus,
					replied,
					countFollowups(rec),
					meeting,
				)
			}
			return nil
		}),
	}

	return cmd
}

func countFollowups(rec api.MonitorRecord) int {
	n := 0
	if rec.Followup1Sent {
		n++
	}
	if rec.Followup2Sent {
		n++
	}
	return n
}

func newMonitorScheduleCmd() *cobra.Command {
	var (
		company  string
		decision string
		at       string
	)

	cmd := &cobra.Command{
		Use:     "schedule <thread>",
		Aliases: []string{"sch"},
		Short:   "Accept or decline a meeting with a replied lead",
		Long: `Record the meeting decision for a lead that replied to an outreach email.

Accepting with yes books a calendar slot at the given --at time and sends
the invite; declining with no sends a polite decline. The company must
have a reply without a booked meeting.`,
		Example: `  leadflow monitor schedule my-thread --company "Acme GmbH" --decision yes --at "2026-09-03 14:00"
  leadflow monitor schedule my-thread --company acme --decision no`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			normalized, err := validateDecision(decision)
			if err != nil {
				return err
			}
			if err := validation.ValidateCompanyName(company); err != nil {
				return err
			}

			var when *string
			if normalized == api.DecisionYes {
				if strings.TrimSpace(at) == "" {
					return api.NewStructuredError(api.ErrValidation, "a meeting time is required when the decision is yes (use --at)")
				}
				parsed, err := cli.ParseMeetingTime(at, time.Now())
				if err != nil {
					return err
				}
				formatted := cli.FormatMeetingTime(parsed)
				when = &formatted
			} else if strings.TrimSpace(at) != "" {
				return fmt.Errorf("--at cannot be used when the decision is no")
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			threadID, err := resolveThreadID(cmdContext(cmd), client, args[0])
			if err != nil {
				return err
			}

			matched, err := resolveMonitorCompany(cmd, client, threadID, company)
			if err != nil {
				return err
			}

			preview := &dryrun.Preview{
				Operation:   "schedule-meeting",
				Resource:    "monitor",
				Description: fmt.Sprintf("Record meeting decision %q for %s", normalized, matched),
				Details: map[string]any{
					"thread_id": threadID,
					"company":   matched,
					"decision":  normalized,
				},
			}
			if when != nil {
				preview.Details["meeting_datetime"] = *when
			}
			if done, err := maybeDryRun(cmd, preview); done {
				return err
			}

			resp, err := client.Campaigns().ScheduleMeeting(cmdContext(cmd), threadID, normalized, when)
			if err != nil {
				return fmt.Errorf("failed to record meeting decision: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			if normalized == api.DecisionYes {
				printAction(cmd, "Scheduled", "meeting with", matched, *when)
			} else {
				printAction(cmd, "Declined", "meeting with", matched, "")
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&company, "company", "c", "", "Company that replied (required)")
	cmd.Flags().StringVarP(&decision, "decision", "d", "", "Decision: yes|no (required)")
	cmd.Flags().StringVar(&at, "at", "", `Meeting time: "YYYY-MM-DD HH:MM", "tomorrow 14:00", or "in 2d"`)
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("decision")
	registerStaticCompletions(cmd, "decision", []string{api.DecisionYes, api.DecisionNo})
	flagAlias(cmd.Flags(), "company", "co")
	flagAlias(cmd.Flags(), "decision", "dec")

	return cmd
}

// resolveMonitorCompany fuzzy-matches a company name against monitoring
// records that have a reply but no booked meeting yet.
func resolveMonitorCompany(cmd *cobra.Command, client *api.Client, threadID, company string) (string, error) {
	resp, err := client.Monitoring().List(cmdContext(cmd), threadID)
	if err != nil {
		return "", fmt.Errorf("failed to list monitoring records: %w", err)
	}

	awaiting := api.AwaitingSchedule(resp.Monitoring)
	if len(awaiting) == 0 {
		return "", api.NewStructuredErrorWithContext(api.ErrConflict,
			"no replied leads are awaiting a meeting decision",
			map[string]any{"thread_id": threadID})
	}

	items := make([]resolve.Named, 0, len(awaiting))
	for _, rec := range awaiting {
		items = append(items, resolve.Named{ID: rec.CompanyName, Name: rec.CompanyName + " " + rec.Email})
	}

	matched, err := resolve.FuzzyMatch(company, items)
	if err != nil {
		var ambiguous *resolve.AmbiguousError
		if errors.As(err, &ambiguous) {
			options := make([]string, 0, len(ambiguous.Matches))
			for _, m := range ambiguous.Matches {
				options = append(options, "  "+m.Name)
			}
			return "", fmt.Errorf("company %q is ambiguous, best matches:\n%s", company, strings.Join(options, "\n"))
		}
		return "", fmt.Errorf("no replied lead matches %q (see 'leadflow monitor list %s')", company, threadID)
	}
	return matched, nil
}

// monitorStreamEvent is one emitted line in JSON/JSONL follow output.
type monitorStreamEvent struct {
	Event         string              `json:"event"`
	At            string              `json:"at"`
	Prompt        string              `json:"prompt"`
	PromptCompany string              `json:"prompt_company,omitempty"`
	Records       []api.MonitorRecord `json:"records"`
}

func newMonitorFollowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "follow <thread>",
		Aliases: []string{"fw"},
		Short:   "Stream live monitoring updates",
		Long: `Follow reply monitoring for a thread and print a fresh snapshot whenever
it changes. When a lead replies and no meeting is booked yet, a scheduling
hint is shown once; answer it with 'leadflow monitor schedule'.`,
		Example: "  leadflow monitor follow my-thread",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			client, err := getClient()
			if err != nil {
				return err
			}
			threadID, err := resolveThreadID(ctx, client, args[0])
			if err != nil {
				return err
			}

			if !streamOutput(cmd) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Following monitoring for %s (press Ctrl+C to stop)...\n", threadID)
			}

			ch := push.New(client.BaseURL)
			model := liveview.NewMonitoringModel(liveview.APIFetcher{Client: client}, ch)

			var renderMu sync.Mutex
			model.OnUpdate(func(s liveview.MonitoringSnapshot) {
				renderMu.Lock()
				defer renderMu.Unlock()
				_ = renderMonitoringSnapshot(cmd, threadID, s)
			})

			if err := model.Mount(ctx, threadID); err != nil {
				return err
			}
			defer model.Unmount()

			return runFollowLoop(ctx, cmd, ch, threadID, model.Refresh)
		}),
	}

	return cmd
}

func renderMonitoringSnapshot(cmd *cobra.Command, threadID string, s liveview.MonitoringSnapshot) error {
	now := time.Now().Format(followTimeLayout)
	if streamOutput(cmd) {
		return writeStreamJSON(cmd, monitorStreamEvent{
			Event:         "snapshot",
			At:            now,
			Prompt:        string(s.Prompt.State),
			PromptCompany: s.Prompt.Company,
			Records:       s.Records,
		})
	}

	replied := 0
	meetings := 0
	for _, rec := range s.Records {
		if rec.ReplyReceived {
			replied++
		}
		if rec.MeetLink != "" {
			meetings++
		}
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "[%s] monitoring=%d replied=%d meetings=%d\n", now, len(s.Records), replied, meetings)
	if s.Prompt.State == liveview.PromptPending {
		hint := fmt.Sprintf("reply from %s: run 'leadflow monitor schedule %s --company %q --decision yes --at ...'",
			s.Prompt.Company, threadID, s.Prompt.Company)
		_, _ = fmt.Fprintf(out, "[%s] %s\n", now, yellow(hint))
	}
	return nil
}
