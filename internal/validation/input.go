package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input length limits to prevent resource exhaustion
const (
	MaxQueryLength       = 500
	MaxCompanyNameLength = 255
	MaxProfileFieldLen   = 1000
	MaxThreadIDLength    = 128
)

var threadIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// ValidateQuery validates a campaign search query.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	length := utf8.RuneCountInString(query)
	if length > MaxQueryLength {
		return fmt.Errorf("query exceeds maximum length of %d characters (got %d)", MaxQueryLength, length)
	}
	return nil
}

// ValidateThreadID validates a campaign thread identifier. Thread IDs are
// path segments in every campaign endpoint, so the character set is kept
// tight enough to never need escaping.
func ValidateThreadID(threadID string) error {
	if threadID == "" {
		return fmt.Errorf("thread ID cannot be empty")
	}
	if len(threadID) > MaxThreadIDLength {
		return fmt.Errorf("thread ID exceeds maximum length of %d characters", MaxThreadIDLength)
	}
	if !threadIDPattern.MatchString(threadID) {
		return fmt.Errorf("thread ID contains invalid characters (allowed: letters, digits, . _ : -)")
	}
	return nil
}

// ValidateCompanyName validates a company name used to select a monitoring
// record. Empty is allowed where the field is optional.
func ValidateCompanyName(name string) error {
	if name == "" {
		return nil
	}
	length := utf8.RuneCountInString(name)
	if length > MaxCompanyNameLength {
		return fmt.Errorf("company name exceeds maximum length of %d characters (got %d)", MaxCompanyNameLength, length)
	}
	return nil
}

// ValidateProfileField validates a sender profile field.
func ValidateProfileField(field, value string) error {
	length := utf8.RuneCountInString(value)
	if length > MaxProfileFieldLen {
		return fmt.Errorf("%s exceeds maximum length of %d characters (got %d)", field, MaxProfileFieldLen, length)
	}
	return nil
}
