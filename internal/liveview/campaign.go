package liveview

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/leadflow/leadflow-cli/internal/api"
	"github.com/leadflow/leadflow-cli/internal/push"
)

// DecisionSendFirstEmail is the human-decision key recorded once the user
// answers the email approval prompt. A recorded "no" counts as answered.
const DecisionSendFirstEmail = "send_first_email"

// CampaignSnapshot is the committed campaign state. All three resources come
// from the same pull; it is replaced as a unit.
type CampaignSnapshot struct {
	Status *api.CampaignStatus
	Leads  []api.Lead
	Emails []api.Email
	Prompt PromptState
}

// Phase returns the effective phase, honoring the optimistic override set
// while an approval is in flight.
func (s CampaignSnapshot) Phase() string {
	if s.Status == nil {
		return ""
	}
	return s.Status.Phase
}

// CampaignModel drives `leadflow campaign follow`: it pulls the status,
// leads, and emails for one thread, re-pulls when the push channel signals a
// change, and runs the email approval prompt state machine.
type CampaignModel struct {
	fetcher CampaignFetcher
	feed    Feed

	mu        sync.Mutex
	threadID  string
	mounted   bool
	ctx       context.Context
	sub       *push.Subscription
	snapshot  CampaignSnapshot
	prompt    PromptState
	seq       int // last issued pull
	committed int // last committed pull
	onUpdate  func(CampaignSnapshot)
	pending   []CampaignSnapshot
	notifying bool
}

// NewCampaignModel builds an unmounted model. feed may be nil for pull-only use.
func NewCampaignModel(fetcher CampaignFetcher, feed Feed) *CampaignModel {
	return &CampaignModel{
		fetcher: fetcher,
		feed:    feed,
		prompt:  PromptIdle,
	}
}

// OnUpdate registers the renderer callback, invoked after every committed
// snapshot. Must be set before Mount.
func (m *CampaignModel) OnUpdate(fn func(CampaignSnapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// Mount binds the model to a thread: resets the prompt machine, subscribes
// to push updates, and performs the initial pull.
func (m *CampaignModel) Mount(ctx context.Context, threadID string) error {
	m.mu.Lock()
	m.threadID = threadID
	m.mounted = true
	m.ctx = ctx
	m.prompt = PromptIdle
	m.snapshot = CampaignSnapshot{Prompt: PromptIdle}
	m.seq = 0
	m.committed = 0
	if m.feed != nil && m.sub == nil {
		m.sub = m.feed.Subscribe(push.CategoryMessage, m.onPush)
	}
	m.mu.Unlock()

	return m.Refresh(ctx)
}

// Unmount detaches from the push feed and marks the model dead: pull results
// still in flight are discarded.
func (m *CampaignModel) Unmount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mounted = false
	if m.sub != nil && m.feed != nil {
		m.feed.Unsubscribe(m.sub)
		m.sub = nil
	}
}

// Snapshot returns the last committed state.
func (m *CampaignModel) Snapshot() CampaignSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Prompt returns the current approval prompt state.
func (m *CampaignModel) Prompt() PromptState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompt
}

// onPush re-pulls on the message types that change campaign state.
func (m *CampaignModel) onPush(e push.Event) {
	switch e.Type {
	case push.TypeCampaignStarted, push.TypeCampaignUpdated,
		push.TypeEmailsApproved, push.TypeMeetingScheduled:
	default:
		return
	}
	m.mu.Lock()
	ctx := m.ctx
	alive := m.mounted
	m.mu.Unlock()
	if !alive {
		return
	}
	_ = m.Refresh(ctx)
}

// Refresh pulls status, leads, and emails concurrently and commits them as
// one snapshot. If any pull fails nothing is committed. Results arriving
// after a newer pull committed, or after Unmount, are discarded.
func (m *CampaignModel) Refresh(ctx context.Context) error {
	m.mu.Lock()
	m.seq++
	seq := m.seq
	threadID := m.threadID
	m.mu.Unlock()

	var (
		status *api.CampaignStatus
		leads  *api.LeadsResponse
		emails *api.EmailsResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		status, err = m.fetcher.Status(gctx, threadID)
		return err
	})
	g.Go(func() error {
		var err error
		leads, err = m.fetcher.Leads(gctx, threadID)
		return err
	})
	g.Go(func() error {
		var err error
		emails, err = m.fetcher.Emails(gctx, threadID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	m.commit(seq, status, leads.Leads, emails.Emails)
	return nil
}

// commit installs a pulled snapshot and advances the prompt machine. Stale
// and post-unmount results are dropped.
func (m *CampaignModel) commit(seq int, status *api.CampaignStatus, leads []api.Lead, emails []api.Email) {
	m.mu.Lock()
	if !m.mounted || seq <= m.committed {
		m.mu.Unlock()
		return
	}
	m.committed = seq

	// Resolved sticks until remount. Otherwise the prompt follows the
	// pulled state: pending while approval is outstanding and at least one
	// email is drafted, idle the moment that stops being true.
	if m.prompt != PromptResolved {
		awaiting := status != nil &&
			!status.CurrentState.HasDecision(DecisionSendFirstEmail) &&
			len(emails) > 0
		if awaiting {
			m.prompt = PromptPending
		} else {
			m.prompt = PromptIdle
		}
	}

	m.snapshot = CampaignSnapshot{
		Status: status,
		Leads:  leads,
		Emails: emails,
		Prompt: m.prompt,
	}
	m.notifyLocked(m.snapshot)
}

// notifyLocked queues snap and drains the queue unless another goroutine
// already is. Queueing under the mutex keeps callbacks in commit order;
// draining outside it keeps renderers off the lock. Callers hold m.mu,
// which is released on return.
func (m *CampaignModel) notifyLocked(snap CampaignSnapshot) {
	if m.onUpdate == nil {
		m.mu.Unlock()
		return
	}
	m.pending = append(m.pending, snap)
	if m.notifying {
		m.mu.Unlock()
		return
	}
	m.notifying = true
	for len(m.pending) > 0 {
		next := m.pending[0]
		m.pending = m.pending[1:]
		fn := m.onUpdate
		m.mu.Unlock()
		fn(next)
		m.mu.Lock()
	}
	m.notifying = false
	m.mu.Unlock()
}

// Approve posts the email approval decision. The prompt becomes resolved
// either way; on yes the phase is optimistically set to sending until the
// next pull reports the authoritative phase.
func (m *CampaignModel) Approve(ctx context.Context, decision string) error {
	m.mu.Lock()
	threadID := m.threadID
	m.mu.Unlock()

	if _, err := m.fetcher.ApproveEmails(ctx, threadID, decision); err != nil {
		return err
	}

	m.mu.Lock()
	m.prompt = PromptResolved
	m.snapshot.Prompt = PromptResolved
	if decision == api.DecisionYes && m.snapshot.Status != nil {
		status := *m.snapshot.Status
		status.Phase = api.PhaseSending
		m.snapshot.Status = &status
	}
	m.notifyLocked(m.snapshot)
	return m.Refresh(ctx)
}

// Continue resumes a paused campaign and re-pulls. It is rejected in the
// monitor phase, where there is nothing left to resume.
func (m *CampaignModel) Continue(ctx context.Context) error {
	m.mu.Lock()
	threadID := m.threadID
	phase := m.snapshot.Phase()
	m.mu.Unlock()

	if phase == api.PhaseMonitor {
		return api.NewStructuredErrorWithContext(api.ErrConflict,
			"campaign is in the monitor phase and cannot be continued",
			map[string]any{"thread_id": threadID, "phase": phase})
	}
	if _, err := m.fetcher.Continue(ctx, threadID); err != nil {
		return err
	}
	return m.Refresh(ctx)
}
