package api

import (
	"context"
	"net/http"
)

// List fetches the drafted and sent emails for a thread.
func (s EmailsService) List(ctx context.Context, threadID string) (*EmailsResponse, error) {
	return listEmails(ctx, s.Client, threadID)
}

func listEmails(ctx context.Context, r Requester, threadID string) (*EmailsResponse, error) {
	path, err := campaignPath(threadID, "emails")
	if err != nil {
		return nil, err
	}
	var resp EmailsResponse
	if err := r.do(ctx, http.MethodGet, r.apiPath(path), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
