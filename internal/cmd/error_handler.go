package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/leadflow/leadflow-cli/internal/api"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var reqErr *api.RequestError

	switch {
	case errors.As(err, &reqErr):
		detail := reqErr.Detail
		if detail == "" {
			detail = reqErr.Body
		}
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n\n", reqErr.StatusCode, detail)
		msg.WriteString(suggestionsForStatusCode(reqErr.StatusCode, detail))

	case strings.Contains(err.Error(), "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check if the LeadFlow backend is running\n")
		msg.WriteString("  - Verify the URL: leadflow config get base_url\n")
		msg.WriteString("  - Check your network connection\n")

	case strings.Contains(err.Error(), "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the backend URL spelling\n")
		msg.WriteString("  - Verify your DNS settings\n")
		msg.WriteString("  - Try using the IP address directly\n")

	case strings.Contains(err.Error(), "certificate"):
		msg.WriteString("TLS certificate error.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Verify the server's SSL certificate\n")
		msg.WriteString("  - Check if the certificate is expired\n")
		msg.WriteString("  - Ensure you're using https:// correctly\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
		if structured := api.StructuredErrorFromError(err); structured != nil && structured.Suggestion != "" {
			fmt.Fprintf(&msg, "\nSuggestion: %s\n", structured.Suggestion)
		}
	}

	return msg.String()
}

func suggestionsForStatusCode(code int, body string) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch code {
	case 400:
		suggestions.WriteString("  - Check your request parameters\n")
		suggestions.WriteString("  - Use --debug to see the full request\n")
		if strings.Contains(body, "required") {
			suggestions.WriteString("  - A required field may be missing\n")
		}

	case 404:
		suggestions.WriteString("  - The thread doesn't exist\n")
		suggestions.WriteString("  - Check the thread ID: leadflow threads list\n")
		suggestions.WriteString("  - The campaign state may have been deleted\n")

	case 409:
		suggestions.WriteString("  - The campaign is not in a phase that allows this action\n")
		suggestions.WriteString("  - Check the phase: leadflow campaign status <thread>\n")

	case 422:
		suggestions.WriteString("  - Validation failed\n")
		suggestions.WriteString("  - Check your input values\n")
		suggestions.WriteString("  - Some fields may have invalid formats\n")

	case 500, 502, 503, 504:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")
		suggestions.WriteString("  - Check the backend logs\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}

// ExitWithError prints error with suggestions and exits
func ExitWithError(err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprint(os.Stderr, HandleError(err))
	os.Exit(ExitCode(err))
}
