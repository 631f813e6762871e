package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leadflow/leadflow-cli/internal/api"
)

func newLeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "leads",
		Aliases: []string{"l"},
		Short:   "Inspect researched leads",
	}

	cmd.AddCommand(newLeadsListCmd())

	return cmd
}

func newLeadsListCmd() *cobra.Command {
	var qualifiedOnly bool

	cmd := &cobra.Command{
		Use:     "list <thread>",
		Aliases: []string{"ls"},
		Short:   "List researched leads for a thread",
		Example: `  leadflow leads list my-thread
  leadflow leads list my-thread --qualified --json`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			threadID, err := resolveThreadID(cmdContext(cmd), client, args[0])
			if err != nil {
				return err
			}

			resp, err := client.Leads().List(cmdContext(cmd), threadID)
			if err != nil {
				return fmt.Errorf("failed to list leads: %w", err)
			}

			leads := resp.Leads
			if qualifiedOnly {
				leads = api.Qualified(leads)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"thread_id": resp.ThreadID,
					"leads":     leads,
					"count":     len(leads),
				})
			}

			if len(leads) == 0 {
				if qualifiedOnly {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No qualified leads found.")
				} else {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No leads found.")
				}
				return nil
			}

			w := newTabWriterFromCmd(cmd)
			defer func() { _ = w.Flush() }()
			_, _ = fmt.Fprintln(w, "COMPANY\tDOMAIN\tSCORE\tQUALIFIED\tEMAILS")
			for _, lead := range leads {
				qualified := "no"
				if lead.Qualified {
					qualified = green("yes")
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					lead.CompanyName,
					valueOrDash(lead.Domain),
					lead.QualificationScore,
					qualified,
					valueOrDash(strings.Join(lead.ValidatedEmails, ", ")),
				)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&qualifiedOnly, "qualified", false, "Only show qualified leads")
	flagAlias(cmd.Flags(), "qualified", "ql")

	return cmd
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
