package liveview

import (
	"context"
	"sync"

	"github.com/leadflow/leadflow-cli/internal/api"
	"github.com/leadflow/leadflow-cli/internal/push"
)

// SchedulePrompt describes the meeting-scheduler prompt for one company.
type SchedulePrompt struct {
	State   PromptState
	Company string
}

// MonitoringSnapshot is the committed reply-monitoring state.
type MonitoringSnapshot struct {
	Records       []api.MonitorRecord
	ActiveMonitor *api.MonitorRecord
	Prompt        SchedulePrompt
}

// MonitoringModel drives `leadflow monitor follow`: it pulls the monitoring
// records for one thread, re-pulls on relevant pushes, and opens the
// meeting-scheduler prompt when a reply arrives without a booked meeting.
type MonitoringModel struct {
	fetcher MonitoringFetcher
	feed    Feed

	mu         sync.Mutex
	threadID   string
	mounted    bool
	ctx        context.Context
	sub        *push.Subscription
	snapshot   MonitoringSnapshot
	prompt     SchedulePrompt
	suppressed bool // set only by an explicit scheduling decision
	seq        int
	committed  int
	onUpdate   func(MonitoringSnapshot)
	pending    []MonitoringSnapshot
	notifying  bool
}

// NewMonitoringModel builds an unmounted model. feed may be nil for
// pull-only use.
func NewMonitoringModel(fetcher MonitoringFetcher, feed Feed) *MonitoringModel {
	return &MonitoringModel{
		fetcher: fetcher,
		feed:    feed,
		prompt:  SchedulePrompt{State: PromptIdle},
	}
}

// OnUpdate registers the renderer callback. Must be set before Mount.
func (m *MonitoringModel) OnUpdate(fn func(MonitoringSnapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// Mount binds the model to a thread. The suppression flag and prompt state
// are session-scoped: both reset here.
func (m *MonitoringModel) Mount(ctx context.Context, threadID string) error {
	m.mu.Lock()
	m.threadID = threadID
	m.mounted = true
	m.ctx = ctx
	m.prompt = SchedulePrompt{State: PromptIdle}
	m.suppressed = false
	m.snapshot = MonitoringSnapshot{Prompt: m.prompt}
	m.seq = 0
	m.committed = 0
	if m.feed != nil && m.sub == nil {
		m.sub = m.feed.Subscribe(push.CategoryMessage, m.onPush)
	}
	m.mu.Unlock()

	return m.Refresh(ctx)
}

// Unmount detaches from the push feed; in-flight pull results are discarded.
func (m *MonitoringModel) Unmount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mounted = false
	if m.sub != nil && m.feed != nil {
		m.feed.Unsubscribe(m.sub)
		m.sub = nil
	}
}

// Snapshot returns the last committed state.
func (m *MonitoringModel) Snapshot() MonitoringSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Prompt returns the current scheduler prompt.
func (m *MonitoringModel) Prompt() SchedulePrompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompt
}

func (m *MonitoringModel) onPush(e push.Event) {
	switch e.Type {
	case push.TypeCampaignUpdated, push.TypeReplyReceived:
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

// Refresh pulls the monitoring records and commits them as one snapshot.
func (m *MonitoringModel) Refresh(ctx context.Context) error {
	m.mu.Lock()
	m.seq++
	seq := m.seq
	threadID := m.threadID
	m.mu.Unlock()

	resp, err := m.fetcher.Monitoring(ctx, threadID)
	if err != nil {
		return err
	}
	m.commit(seq, resp)
	return nil
}

// commit installs a pulled snapshot. The scheduler prompt auto-opens when a
// record has a reply and no booked meeting, unless the prompt already fired
// this session or a decision suppressed it.
func (m *MonitoringModel) commit(seq int, resp *api.MonitoringResponse) {
	m.mu.Lock()
	if !m.mounted || seq <= m.committed {
		m.mu.Unlock()
		return
	}
	m.committed = seq

	if m.prompt.State == PromptIdle && !m.suppressed {
		if r := awaitingSchedule(resp.Monitoring); r != nil {
			m.prompt = SchedulePrompt{State: PromptPending, Company: r.CompanyName}
		}
	}

	m.snapshot = MonitoringSnapshot{
		Records:       resp.Monitoring,
		ActiveMonitor: resp.ActiveMonitor,
		Prompt:        m.prompt,
	}
	m.notifyLocked(m.snapshot)
}

// notifyLocked queues snap and drains the queue unless another goroutine
// already is, keeping callbacks in commit order without holding the mutex
// during delivery. Callers hold m.mu, which is released on return.
func (m *MonitoringModel) notifyLocked(snap MonitoringSnapshot) {
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

// awaitingSchedule returns the first record with a reply and no meeting link.
func awaitingSchedule(records []api.MonitorRecord) *api.MonitorRecord {
	for i := range records {
		if records[i].ReplyReceived && records[i].MeetLink == "" {
			return &records[i]
		}
	}
	return nil
}

// OpenScheduler re-opens the prompt for a company. Always allowed: a manual
// open overrides both the suppression flag and a resolved prompt.
func (m *MonitoringModel) OpenScheduler(companyName string) {
	m.mu.Lock()
	m.prompt = SchedulePrompt{State: PromptPending, Company: companyName}
	m.snapshot.Prompt = m.prompt
	m.notifyLocked(m.snapshot)
}

// Schedule posts the scheduling decision. Yes requires when in
// "YYYY-MM-DD HH:MM" form; no sends a null datetime. Either decision
// resolves the prompt and suppresses further auto-opens this session,
// then re-pulls.
func (m *MonitoringModel) Schedule(ctx context.Context, decision string, when string) error {
	m.mu.Lock()
	threadID := m.threadID
	m.mu.Unlock()

	var whenPtr *string
	if decision == api.DecisionYes {
		if when == "" {
			return api.NewStructuredError(api.ErrValidation,
				"a meeting datetime is required when the decision is yes")
		}
		whenPtr = &when
	}
	if _, err := m.fetcher.ScheduleMeeting(ctx, threadID, decision, whenPtr); err != nil {
		return err
	}

	m.mu.Lock()
	m.prompt.State = PromptResolved
	m.suppressed = true
	m.snapshot.Prompt = m.prompt
	m.mu.Unlock()

	return m.Refresh(ctx)
}
