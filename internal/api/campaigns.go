package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/leadflow/leadflow-cli/internal/validation"
)

// Start launches a new campaign run. A nil ThreadID asks the backend to
// allocate one; passing an existing thread ID resumes that thread.
func (s CampaignsService) Start(ctx context.Context, req StartCampaignRequest) (*StartCampaignResponse, error) {
	return startCampaign(ctx, s.Client, req)
}

// Status fetches the current campaign status for a thread.
func (s CampaignsService) Status(ctx context.Context, threadID string) (*CampaignStatus, error) {
	return getCampaignStatus(ctx, s.Client, threadID)
}

// Continue resumes a paused campaign graph.
func (s CampaignsService) Continue(ctx context.Context, threadID string) (*DecisionResponse, error) {
	return continueCampaign(ctx, s.Client, threadID)
}

// ApproveEmails posts the send-first-email decision.
func (s CampaignsService) ApproveEmails(ctx context.Context, threadID, decision string) (*DecisionResponse, error) {
	return approveEmails(ctx, s.Client, threadID, decision)
}

// ScheduleMeeting posts the meeting decision. when must be in the
// "YYYY-MM-DD HH:MM" wire format when the decision is yes, and nil otherwise.
func (s CampaignsService) ScheduleMeeting(ctx context.Context, threadID, decision string, when *string) (*DecisionResponse, error) {
	return scheduleMeeting(ctx, s.Client, threadID, decision, when)
}

func startCampaign(ctx context.Context, r Requester, req StartCampaignRequest) (*StartCampaignResponse, error) {
	if err := validation.ValidateQuery(req.Query); err != nil {
		return nil, NewStructuredError(ErrValidation, err.Error())
	}
	if req.Mode != ModeTest && req.Mode != ModeLive {
		return nil, NewValidationError("mode", req.Mode, []string{ModeTest, ModeLive})
	}
	if req.ThreadID != nil {
		if err := validation.ValidateThreadID(*req.ThreadID); err != nil {
			return nil, NewStructuredError(ErrValidation, err.Error())
		}
	}

	var resp StartCampaignResponse
	if err := r.do(ctx, http.MethodPost, r.apiPath("/campaign/start"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func getCampaignStatus(ctx context.Context, r Requester, threadID string) (*CampaignStatus, error) {
	path, err := campaignPath(threadID, "status")
	if err != nil {
		return nil, err
	}
	var status CampaignStatus
	if err := r.do(ctx, http.MethodGet, r.apiPath(path), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func continueCampaign(ctx context.Context, r Requester, threadID string) (*DecisionResponse, error) {
	path, err := campaignPath(threadID, "continue")
	if err != nil {
		return nil, err
	}
	var resp DecisionResponse
	if err := r.do(ctx, http.MethodPost, r.apiPath(path), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func approveEmails(ctx context.Context, r Requester, threadID, decision string) (*DecisionResponse, error) {
	if decision != DecisionYes && decision != DecisionNo {
		return nil, NewValidationError("decision", decision, []string{DecisionYes, DecisionNo})
	}
	path, err := campaignPath(threadID, "approve-emails")
	if err != nil {
		return nil, err
	}
	body := ApproveEmailsRequest{ThreadID: threadID, Decision: decision}
	var resp DecisionResponse
	if err := r.do(ctx, http.MethodPost, r.apiPath(path), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func scheduleMeeting(ctx context.Context, r Requester, threadID, decision string, when *string) (*DecisionResponse, error) {
	if decision != DecisionYes && decision != DecisionNo {
		return nil, NewValidationError("decision", decision, []string{DecisionYes, DecisionNo})
	}
	if decision == DecisionYes && (when == nil || *when == "") {
		return nil, NewStructuredError(ErrValidation, "meeting_datetime is required when decision is yes")
	}
	if decision == DecisionNo {
		when = nil
	}
	path, err := campaignPath(threadID, "schedule-meeting")
	if err != nil {
		return nil, err
	}
	body := ScheduleMeetingRequest{ThreadID: threadID, Decision: decision, MeetingDatetime: when}
	var resp DecisionResponse
	if err := r.do(ctx, http.MethodPost, r.apiPath(path), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// campaignPath builds "/campaign/{thread_id}/{suffix}" after validating the
// thread ID so it never needs escaping.
func campaignPath(threadID, suffix string) (string, error) {
	if err := validation.ValidateThreadID(threadID); err != nil {
		return "", NewStructuredError(ErrValidation, err.Error())
	}
	return fmt.Sprintf("/campaign/%s/%s", url.PathEscape(threadID), suffix), nil
}
