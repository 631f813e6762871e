package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailsListCommand(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/campaign/t-1a2b/emails", jsonResponse(200, `{
			"thread_id": "t-1a2b",
			"emails": [
				{"company_name": "Acme GmbH", "email": "info@acme.de", "email_subject": "Quick question about your stack", "sent": true, "sent_at": "2026-08-20T10:00:00Z"},
				{"company_name": "Globex", "email": "hello@globex.com", "email_subject": "Intro", "sent": false}
			],
			"count": 2
		}`))

	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"emails", "list", "t-1a2b"})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "COMPANY")
	assert.Contains(t, output, "SUBJECT")
	assert.Contains(t, output, "Quick question about your stack")
	assert.Contains(t, output, "2026-08-20T10:00:00Z")
}

func TestEmailsListCommand_UnsentFilter(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/campaign/t-1a2b/emails", jsonResponse(200, `{
			"thread_id": "t-1a2b",
			"emails": [
				{"company_name": "Acme GmbH", "email": "info@acme.de", "email_subject": "a", "sent": true},
				{"company_name": "Globex", "email": "hello@globex.com", "email_subject": "b", "sent": false}
			],
			"count": 2
		}`))

	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"emails", "list", "t-1a2b", "--unsent"})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "Globex")
	assert.NotContains(t, output, "Acme GmbH", "sent email leaked through --unsent filter")
}

func TestEmailsListCommand_SentAndUnsentConflict(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"emails", "list", "t-1a2b", "--sent", "--unsent"})
		assert.Error(t, err, "expected error for conflicting filters")
	})
}

func TestEmailsListCommand_JSON(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/campaign/t-1a2b/emails", jsonResponse(200, `{
			"thread_id": "t-1a2b",
			"emails": [{"company_name": "Acme GmbH", "email": "info@acme.de", "email_subject": "a", "sent": true}],
			"count": 1
		}`))

	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"emails", "list", "t-1a2b", "-o", "json"})
		require.NoError(t, err)
	})

	emails := decodeList(t, output, "emails")
	require.Len(t, emails, 1)
	assert.Equal(t, "info@acme.de", emails[0]["email"])
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten!", 12, "exactly ten!"},
		{"a much longer subject line", 10, "a much ..."},
		{"ab", 2, "ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.max), "truncate(%q, %d)", tt.in, tt.max)
	}
}
