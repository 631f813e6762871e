package validation

import (
	"strings"
	"testing"
)

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery("b2b saas companies in fintech"); err != nil {
		t.Errorf("valid query rejected: %v", err)
	}
	if err := ValidateQuery("   "); err == nil {
		t.Error("blank query should be rejected")
	}
	if err := ValidateQuery(strings.Repeat("x", MaxQueryLength+1)); err == nil {
		t.Error("oversized query should be rejected")
	}
}

func TestValidateThreadID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"campaign-1756500000", false},
		{"t_42.a:b", false},
		{"", true},
		{"has space", true},
		{"path/../traversal", true},
		{strings.Repeat("a", MaxThreadIDLength + 1), true},
	}
	for _, tt := range tests {
		err := ValidateThreadID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateThreadID(%q) = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}

func TestValidateCompanyName(t *testing.T) {
	if err := ValidateCompanyName(""); err != nil {
		t.Errorf("empty company name is optional: %v", err)
	}
	if err := ValidateCompanyName("Acme Robotics"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	if err := ValidateCompanyName(strings.Repeat("A", MaxCompanyNameLength+1)); err == nil {
		t.Error("oversized name should be rejected")
	}
}

func TestValidateProfileField(t *testing.T) {
	if err := ValidateProfileField("company_description", "We build developer tools."); err != nil {
		t.Errorf("valid field rejected: %v", err)
	}
	err := ValidateProfileField("company_description", strings.Repeat("d", MaxProfileFieldLen+1))
	if err == nil || !strings.Contains(err.Error(), "company_description") {
		t.Errorf("oversized field should be rejected with field name, got %v", err)
	}
}
