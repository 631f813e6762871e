package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadflow/leadflow-cli/internal/api"
	"github.com/leadflow/leadflow-cli/internal/liveview"
	"github.com/leadflow/leadflow-cli/internal/outfmt"
	"github.com/leadflow/leadflow-cli/internal/push"
)

const followTimeLayout = "15:04:05"

// Reconnect backoff knobs, variables so tests can shorten them.
var (
	followBackoffInitial = 2 * time.Second
	followBackoffMax     = 30 * time.Second
	followBackoffReset   = 60 * time.Second
)

func writeStreamJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	// JSONL is for streaming/piping: emit a single JSON object per line.
	if outfmt.IsJSONL(cmd.Context()) {
		return enc.Encode(v)
	}
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func streamOutput(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context()) || outfmt.IsJSONL(cmd.Context())
}

// runFollowLoop keeps the push channel connected until the context is
// cancelled, reconnecting with exponential backoff. The socket only signals
// changes, so refresh runs after every reconnect: state that moved during
// the outage would otherwise stay invisible until the next push.
func runFollowLoop(ctx context.Context, cmd *cobra.Command, ch *push.Channel, threadID string, refresh func(context.Context) error) error {
	disconnected := make(chan push.Event, 1)
	sub := ch.Subscribe(push.CategoryDisconnected, func(e push.Event) {
		select {
		case disconnected <- e:
		default:
		}
	})
	defer ch.Unsubscribe(sub)
	defer ch.Disconnect()

	// Reconnection loop with exponential backoff.
	backoff := followBackoffInitial
	maxBackoff := followBackoffMax
	resetThreshold := followBackoffReset

	first := true
	for {
		connectStart := time.Now()
		err := ch.Connect(ctx, threadID)
		if err == nil {
			// Mount pulled before the first connect; later connects
			// re-pull to pick up anything missed while disconnected.
			if !first && refresh != nil {
				if rerr := refresh(ctx); rerr != nil && !streamOutput(cmd) {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "refresh after reconnect: %v\n", rerr)
				}
			}
			first = false
			select {
			case <-ctx.Done():
				return nil
			case e := <-disconnected:
				err = e.Err
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("connection closed")
		}
		// Reset backoff if the connection was stable for a while.
		if time.Since(connectStart) > resetThreshold {
			backoff = followBackoffInitial
		}
		if !streamOutput(cmd) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "disconnected: %v, reconnecting in %s...\n", err, backoff)
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// campaignStreamEvent is one emitted line in JSON/JSONL follow output.
type campaignStreamEvent struct {
	Event  string              `json:"event"`
	At     string              `json:"at"`
	Prompt string              `json:"prompt"`
	Status *api.CampaignStatus `json:"status"`
}

func newCampaignFollowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "follow <thread>",
		Aliases: []string{"fw"},
		Short:   "Stream live campaign updates",
		Long: `Follow a campaign and print a fresh snapshot whenever it changes.

Connects to the backend's WebSocket for change notifications and re-pulls
the campaign state on every one, so the output always reflects the
server's view. Reconnects automatically if the connection drops.`,
		Example: `  leadflow campaign follow my-thread
  leadflow campaign follow my-thread -o jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			// Ensure downstream helpers using cmd.Context() see cancellation.
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
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Following campaign %s (press Ctrl+C to stop)...\n", threadID)
			}

			ch := push.New(client.BaseURL)
			model := liveview.NewCampaignModel(liveview.APIFetcher{Client: client}, ch)

			var renderMu sync.Mutex
			model.OnUpdate(func(s liveview.CampaignSnapshot) {
				renderMu.Lock()
				defer renderMu.Unlock()
				_ = renderCampaignSnapshot(cmd, s)
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

func renderCampaignSnapshot(cmd *cobra.Command, s liveview.CampaignSnapshot) error {
	if s.Status == nil {
		return nil
	}
	now := time.Now().Format(followTimeLayout)
	if streamOutput(cmd) {
		return writeStreamJSON(cmd, campaignStreamEvent{
			Event:  "snapshot",
			At:     now,
			Prompt: string(s.Prompt),
			Status: s.Status,
		})
	}

	out := cmd.OutOrStdout()
	st := s.Status
	_, _ = fmt.Fprintf(out, "[%s] phase=%s leads=%d qualified=%d ready=%d sent=%d replies=%d\n",
		now, phaseDisplay(st.Phase), st.LeadsCount, st.QualifiedCount, st.EmailsReady, st.EmailsSent, st.RepliesReceived)
	if s.Prompt == liveview.PromptPending {
		hint := fmt.Sprintf("approval pending: run 'leadflow campaign approve %s --decision yes|no'", st.ThreadID)
		_, _ = fmt.Fprintf(out, "[%s] %s\n", now, yellow(hint))
	}
	return nil
}
