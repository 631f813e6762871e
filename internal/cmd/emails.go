package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leadflow/leadflow-cli/internal/api"
)

func newEmailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "emails",
		Aliases: []string{"e"},
		Short:   "Inspect drafted and sent outreach emails",
	}

	cmd.AddCommand(newEmailsListCmd())

	return cmd
}

func newEmailsListCmd() *cobra.Command {
	var (
		sentOnly   bool
		unsentOnly bool
	)

	cmd := &cobra.Command{
		Use:     "list <thread>",
		Aliases: []string{"ls"},
		Short:   "List outreach emails for a thread",
		Example: `  leadflow emails list my-thread
  leadflow emails list my-thread --unsent`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if sentOnly && unsentOnly {
				return fmt.Errorf("--sent and --unsent are mutually exclusive")
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			threadID, err := resolveThreadID(cmdContext(cmd), client, args[0])
			if err != nil {
				return err
			}

			resp, err := client.Emails().List(cmdContext(cmd), threadID)
			if err != nil {
				return fmt.Errorf("failed to list emails: %w", err)
			}

			emails := resp.Emails
			if sentOnly || unsentOnly {
				filtered := make([]api.Email, 0, len(emails))
				for _, e := range emails {
					if e.Sent == sentOnly {
						filtered = append(filtered, e)
					}
				}
				emails = filtered
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"thread_id": resp.ThreadID,
					"emails":    emails,
					"count":     len(emails),
				})
			}

			if len(emails) == 0 {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No emails found.")
				return nil
			}

			w := newTabWriterFromCmd(cmd)
			defer func() { _ = w.Flush() }()
			_, _ = fmt.Fprintln(w, "COMPANY\tTO\tSUBJECT\tSENT\tSENT_AT")
			for _, e := range emails {
				sent := "no"
				if e.Sent {
					sent = green("yes")
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.CompanyName,
					e.Email,
					truncate(e.EmailSubject, 60),
					sent,
					valueOrDash(e.SentAt),
				)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&sentOnly, "sent", false, "Only show sent emails")
	cmd.Flags().BoolVar(&unsentOnly, "unsent", false, "Only show unsent (draft) emails")

	return cmd
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
