package api

import (
	"context"
	"net/http"
)

// List fetches the researched leads for a thread.
func (s LeadsService) List(ctx context.Context, threadID string) (*LeadsResponse, error) {
	return listLeads(ctx, s.Client, threadID)
}

func listLeads(ctx context.Context, r Requester, threadID string) (*LeadsResponse, error) {
	path, err := campaignPath(threadID, "leads")
	if err != nil {
		return nil, err
	}
	var resp LeadsResponse
	if err := r.do(ctx, http.MethodGet, r.apiPath(path), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Qualified filters a lead list down to qualified entries.
func Qualified(leads []Lead) []Lead {
	var out []Lead
	for _, lead := range leads {
		if lead.Qualified {
			out = append(out, lead)
		}
	}
	return out
}
