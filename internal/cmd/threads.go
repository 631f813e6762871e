package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newThreadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "threads",
		Aliases: []string{"t"},
		Short:   "List known campaign threads",
	}

	cmd.AddCommand(newThreadsListCmd())

	return cmd
}

func newThreadsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List campaign threads",
		Example: "  leadflow threads list",
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			resp, err := client.Threads().List(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list threads: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}

			if len(resp.Threads) == 0 {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No threads found. Start one with 'leadflow campaign start'.")
				return nil
			}

			w := newTabWriterFromCmd(cmd)
			defer func() { _ = w.Flush() }()
			_, _ = fmt.Fprintln(w, "THREAD\tPHASE\tMODE\tLEADS\tSENT\tQUERY")
			for _, t := range resp.Threads {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
					t.ThreadID,
					valueOrDash(t.Phase),
					valueOrDash(t.Mode),
					t.LeadsCount,
					t.EmailsSent,
					truncate(t.Query, 50),
				)
			}
			return nil
		}),
	}

	return cmd
}
