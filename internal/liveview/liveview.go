// Package liveview holds the session-scoped models behind the follow
// commands. A model combines authoritative pulls from the REST API with
// push notifications from the WebSocket channel: pushes only signal that
// something changed, pulls decide what the state is. Snapshots are replaced
// wholesale; a partial pull is never committed.
package liveview

import (
	"context"

	"github.com/leadflow/leadflow-cli/internal/api"
	"github.com/leadflow/leadflow-cli/internal/push"
)

// PromptState tracks the lifecycle of a human-decision prompt.
type PromptState string

const (
	// PromptIdle means no prompt is showing and none has been answered.
	PromptIdle PromptState = "idle"
	// PromptPending means the prompt is showing and awaiting a decision.
	PromptPending PromptState = "pending"
	// PromptResolved means the user answered. Resolved persists until the
	// model is remounted, even if later pulls would re-open the prompt.
	PromptResolved PromptState = "resolved"
)

// Feed is the push-channel surface the models subscribe to.
type Feed interface {
	Subscribe(cat push.Category, fn push.Handler) *push.Subscription
	Unsubscribe(sub *push.Subscription)
}

var _ Feed = (*push.Channel)(nil)

// CampaignFetcher pulls the campaign resources and posts decisions.
type CampaignFetcher interface {
	Status(ctx context.Context, threadID string) (*api.CampaignStatus, error)
	Leads(ctx context.Context, threadID string) (*api.LeadsResponse, error)
	Emails(ctx context.Context, threadID string) (*api.EmailsResponse, error)
	ApproveEmails(ctx context.Context, threadID, decision string) (*api.DecisionResponse, error)
	Continue(ctx context.Context, threadID string) (*api.DecisionResponse, error)
}

// MonitoringFetcher pulls monitoring state and posts scheduling decisions.
type MonitoringFetcher interface {
	Monitoring(ctx context.Context, threadID string) (*api.MonitoringResponse, error)
	ScheduleMeeting(ctx context.Context, threadID, decision string, when *string) (*api.DecisionResponse, error)
}

// APIFetcher adapts *api.Client to the fetcher interfaces.
type APIFetcher struct {
	Client *api.Client
}

var (
	_ CampaignFetcher   = APIFetcher{}
	_ MonitoringFetcher = APIFetcher{}
)

func (f APIFetcher) Status(ctx context.Context, threadID string) (*api.CampaignStatus, error) {
	return f.Client.Campaigns().Status(ctx, threadID)
}

func (f APIFetcher) Leads(ctx context.Context, threadID string) (*api.LeadsResponse, error) {
	return f.Client.Leads().List(ctx, threadID)
}

func (f APIFetcher) Emails(ctx context.Context, threadID string) (*api.EmailsResponse, error) {
	return f.Client.Emails().List(ctx, threadID)
}

func (f APIFetcher) ApproveEmails(ctx context.Context, threadID, decision string) (*api.DecisionResponse, error) {
	return f.Client.Campaigns().ApproveEmails(ctx, threadID, decision)
}

func (f APIFetcher) Continue(ctx context.Context, threadID string) (*api.DecisionResponse, error) {
	return f.Client.Campaigns().Continue(ctx, threadID)
}

func (f APIFetcher) Monitoring(ctx context.Context, threadID string) (*api.MonitoringResponse, error) {
	return f.Client.Monitoring().List(ctx, threadID)
}

func (f APIFetcher) ScheduleMeeting(ctx context.Context, threadID, decision string, when *string) (*api.DecisionResponse, error) {
	return f.Client.Campaigns().ScheduleMeeting(ctx, threadID, decision, when)
}
