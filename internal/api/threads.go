package api

import (
	"context"
	"net/http"
)

// List fetches all known campaign threads.
func (s ThreadsService) List(ctx context.Context) (*ThreadsResponse, error) {
	return listThreads(ctx, s.Client)
}

func listThreads(ctx context.Context, r Requester) (*ThreadsResponse, error) {
	var resp ThreadsResponse
	if err := r.do(ctx, http.MethodGet, r.apiPath("/threads"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
