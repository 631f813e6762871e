package api

import (
	"context"
	"net/http"
)

// List fetches the reply-monitoring records for a thread.
func (s MonitoringService) List(ctx context.Context, threadID string) (*MonitoringResponse, error) {
	return listMonitoring(ctx, s.Client, threadID)
}

func listMonitoring(ctx context.Context, r Requester, threadID string) (*MonitoringResponse, error) {
	path, err := campaignPath(threadID, "monitoring")
	if err != nil {
		return nil, err
	}
	var resp MonitoringResponse
	if err := r.do(ctx, http.MethodGet, r.apiPath(path), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AwaitingSchedule returns the records with a reply but no meeting booked yet.
func AwaitingSchedule(records []MonitorRecord) []MonitorRecord {
	var out []MonitorRecord
	for _, rec := range records {
		if rec.ReplyReceived && rec.MeetLink == "" {
			out = append(out, rec)
		}
	}
	return out
}
