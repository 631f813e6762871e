package api

import (
	"context"
	"testing"
)

func TestListLeads(t *testing.T) {
	f := &fakeRequester{response: `{
		"thread_id": "t-1",
		"leads": [
			{"company_name": "Acme", "qualified": true, "qualification_score": 8},
			{"company_name": "Globex", "qualified": false}
		],
		"count": 2
	}`}
	resp, err := listLeads(context.Background(), f, "t-1")
	if err != nil {
		t.Fatalf("listLeads returned error: %v", err)
	}
	if resp.Count != 2 || resp.Leads[0].QualificationScore != 8 {
		t.Errorf("resp = %+v", resp)
	}
	if f.lastURL != "http://fake/api/campaign/t-1/leads" {
		t.Errorf("url = %s", f.lastURL)
	}

	qualified := Qualified(resp.Leads)
	if len(qualified) != 1 || qualified[0].CompanyName != "Acme" {
		t.Errorf("Qualified = %+v", qualified)
	}
}

func TestListEmails(t *testing.T) {
	f := &fakeRequester{response: `{
		"thread_id": "t-1",
		"emails": [
			{"company_name": "Acme", "email": "ceo@acme.test", "email_subject": "Quick question", "sent": true, "sent_at": "2026-08-28T10:00:00Z"}
		],
		"count": 1
	}`}
	resp, err := listEmails(context.Background(), f, "t-1")
	if err != nil {
		t.Fatalf("listEmails returned error: %v", err)
	}
	if resp.Emails[0].EmailSubject != "Quick question" || !resp.Emails[0].Sent {
		t.Errorf("email = %+v", resp.Emails[0])
	}
}

func TestListMonitoring(t *testing.T) {
	f := &fakeRequester{response: `{
		"thread_id": "t-1",
		"monitoring": [
			{"company_name": "Acme", "email": "ceo@acme.test", "reply_received": true, "monitor_status": "replied", "last_checked_at": null},
			{"company_name": "Globex", "email": "cto@globex.test", "reply_received": true, "monitor_status": "meeting_created", "meet_link": "https://meet.example/abc"},
			{"company_name": "Initech", "email": "vp@initech.test", "reply_received": false, "monitor_status": "active"}
		],
		"active_monitor": {"company_name": "Acme", "email": "ceo@acme.test", "reply_received": true, "monitor_status": "replied"},
		"count": 3
	}`}
	resp, err := listMonitoring(context.Background(), f, "t-1")
	if err != nil {
		t.Fatalf("listMonitoring returned error: %v", err)
	}
	if resp.Count != 3 || resp.ActiveMonitor == nil {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Monitoring[0].LastCheckedAt != nil {
		t.Error("null last_checked_at should decode to nil")
	}

	// Only replied-without-meeting records need scheduling.
	waiting := AwaitingSchedule(resp.Monitoring)
	if len(waiting) != 1 || waiting[0].CompanyName != "Acme" {
		t.Errorf("AwaitingSchedule = %+v", waiting)
	}
}

func TestListThreads(t *testing.T) {
	f := &fakeRequester{response: `{
		"threads": [
			{"thread_id": "campaign-1", "phase": "monitor"},
			{"thread_id": "campaign-2", "phase": "research"}
		],
		"count": 2
	}`}
	resp, err := listThreads(context.Background(), f)
	if err != nil {
		t.Fatalf("listThreads returned error: %v", err)
	}
	if resp.Count != 2 || resp.Threads[1].Phase != "research" {
		t.Errorf("resp = %+v", resp)
	}
	if f.lastURL != "http://fake/api/threads" {
		t.Errorf("url = %s", f.lastURL)
	}
}

func TestBadThreadIDBlockedBeforeNetwork(t *testing.T) {
	f := &fakeRequester{}
	if _, err := listLeads(context.Background(), f, "../../etc"); err == nil {
		t.Error("traversal-looking thread ID should be rejected")
	}
	if f.lastMethod != "" {
		t.Error("invalid thread ID must not reach the network")
	}
}
