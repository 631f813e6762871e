package api

// Decision values accepted by the approval and scheduling endpoints.
const (
	DecisionYes = "yes"
	DecisionNo  = "no"
)

// Campaign modes.
const (
	ModeTest = "test"
	ModeLive = "live"
)

// Campaign phases reported in status responses.
const (
	PhaseResearch = "research"
	PhaseQualify  = "qualify"
	PhaseOutreach = "outreach"
	PhaseApproval = "approval"
	PhaseSending  = "sending"
	PhaseMonitor  = "monitor"
	PhaseDone     = "done"
)

// SenderProfile identifies who the outreach emails are sent as.
type SenderProfile struct {
	CompanyName        string `json:"company_name"`
	SenderName         string `json:"sender_name"`
	SenderRole         string `json:"sender_role"`
	CompanyDescription string `json:"company_description"`
}

// StartCampaignRequest is the body for POST /api/campaign/start.
type StartCampaignRequest struct {
	Query         string         `json:"query"`
	Mode          string         `json:"mode"`
	ThreadID      *string        `json:"thread_id"`
	SenderProfile *SenderProfile `json:"sender_profile,omitempty"`
}

// StartCampaignResponse is the response from campaign start and continue.
type StartCampaignResponse struct {
	ThreadID string `json:"thread_id"`
	Status   string `json:"status"`
}

// CurrentState is the graph state snapshot embedded in a status response.
// HumanDecision records explicit user decisions by name; the presence of a
// key matters independently of its value (a recorded "no" is still recorded).
type CurrentState struct {
	Phase         string         `json:"phase,omitempty"`
	HumanDecision map[string]any `json:"human_decision,omitempty"`
}

// HasDecision reports whether a decision with the given name was recorded.
func (s *CurrentState) HasDecision(name string) bool {
	if s == nil || s.HumanDecision == nil {
		return false
	}
	_, ok := s.HumanDecision[name]
	return ok
}

// CampaignStatus is the response from GET /api/campaign/{thread_id}/status.
type CampaignStatus struct {
	ThreadID        string        `json:"thread_id"`
	Phase           string        `json:"phase"`
	LeadsCount      int           `json:"leads_count"`
	QualifiedCount  int           `json:"qualified_count"`
	EmailsReady     int           `json:"emails_ready"`
	EmailsSent      int           `json:"emails_sent"`
	MonitoringCount int           `json:"monitoring_count"`
	RepliesReceived int           `json:"replies_received"`
	CurrentState    *CurrentState `json:"current_state,omitempty"`
}

// Lead is a researched company with qualification results merged in.
type Lead struct {
	CompanyName         string   `json:"company_name"`
	CompanyWebsite      string   `json:"company_website,omitempty"`
	Domain              string   `json:"domain,omitempty"`
	Industry            string   `json:"industry,omitempty"`
	CompanySize         string   `json:"company_size,omitempty"`
	IntentSignals       []string `json:"intent_signals,omitempty"`
	IntentConfidence    float64  `json:"intent_confidence,omitempty"`
	PainPoints          []string `json:"pain_points,omitempty"`
	DecisionMakers      []string `json:"decision_makers,omitempty"`
	ValidatedEmails     []string `json:"validated_emails,omitempty"`
	EmailQuality        string   `json:"email_quality,omitempty"`
	WebsiteSummary      string   `json:"website_summary,omitempty"`
	WebsiteTextSample   string   `json:"website_text_sample,omitempty"`
	ResearchConfidence  float64  `json:"research_confidence,omitempty"`
	Source              string   `json:"source,omitempty"`
	QualificationScore  int      `json:"qualification_score,omitempty"`
	Qualified           bool     `json:"qualified"`
	QualificationReason []string `json:"qualification_reason,omitempty"`
}

// LeadsResponse is the envelope from GET /api/campaign/{thread_id}/leads.
type LeadsResponse struct {
	ThreadID string `json:"thread_id"`
	Leads    []Lead `json:"leads"`
	Count    int    `json:"count"`
}

// Email is a drafted (and possibly sent) outreach email.
type Email struct {
	CompanyName  string `json:"company_name"`
	Email        string `json:"email"`
	EmailSubject string `json:"email_subject"`
	EmailBody    string `json:"email_body"`
	Sent         bool   `json:"sent"`
	SentAt       string `json:"sent_at,omitempty"`
	MessageID    string `json:"message_id,omitempty"`
}

// EmailsResponse is the envelope from GET /api/campaign/{thread_id}/emails.
type EmailsResponse struct {
	ThreadID string  `json:"thread_id"`
	Emails   []Email `json:"emails"`
	Count    int     `json:"count"`
}

// Monitor statuses.
const (
	MonitorActive         = "active"
	MonitorReplied        = "replied"
	MonitorMeetingCreated = "meeting_created"
	MonitorExpired        = "expired"
)

// MonitorRecord tracks a sent email awaiting a reply.
type MonitorRecord struct {
	CompanyName      string  `json:"company_name"`
	Email            string  `json:"email"`
	MessageID        string  `json:"message_id"`
	MonitorStartedAt string  `json:"monitor_started_at"`
	LastCheckedAt    *string `json:"last_checked_at"`
	ReplyReceived    bool    `json:"reply_received"`
	MeetingScheduled bool    `json:"meeting_scheduled"`
	Followup1Sent    bool    `json:"followup_1_sent"`
	Followup2Sent    bool    `json:"followup_2_sent"`
	MonitorStatus    string  `json:"monitor_status"`
	MeetLink         string  `json:"meet_link,omitempty"`
	CalendarEventID  string  `json:"calendar_event_id,omitempty"`
}

// MonitoringResponse is the envelope from GET /api/campaign/{thread_id}/monitoring.
type MonitoringResponse struct {
	ThreadID      string          `json:"thread_id"`
	Monitoring    []MonitorRecord `json:"monitoring"`
	ActiveMonitor *MonitorRecord  `json:"active_monitor"`
	Count         int             `json:"count"`
}

// ThreadSummary is one entry from GET /api/threads.
type ThreadSummary struct {
	ThreadID   string `json:"thread_id"`
	Phase      string `json:"phase,omitempty"`
	Query      string `json:"query,omitempty"`
	Mode       string `json:"mode,omitempty"`
	LeadsCount int    `json:"leads_count,omitempty"`
	EmailsSent int    `json:"emails_sent,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// ThreadsResponse is the envelope from GET /api/threads.
type ThreadsResponse struct {
	Threads []ThreadSummary `json:"threads"`
	Count   int             `json:"count"`
}

// ApproveEmailsRequest is the body for POST /api/campaign/{thread_id}/approve-emails.
type ApproveEmailsRequest struct {
	ThreadID string `json:"thread_id"`
	Decision string `json:"decision"`
}

// ScheduleMeetingRequest is the body for POST /api/campaign/{thread_id}/schedule-meeting.
// MeetingDatetime uses the "YYYY-MM-DD HH:MM" wire format and is null when
// the decision is no.
type ScheduleMeetingRequest struct {
	ThreadID        string  `json:"thread_id"`
	Decision        string  `json:"decision"`
	MeetingDatetime *string `json:"meeting_datetime"`
}

// DecisionResponse is the generic acknowledgement for decision posts.
type DecisionResponse struct {
	ThreadID string `json:"thread_id"`
	Status   string `json:"status"`
}
