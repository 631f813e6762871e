package resolve

import (
	"errors"
	"strings"
	"testing"
)

var companies = []Named{
	{ID: "Acme Robotics", Name: "Acme Robotics"},
	{ID: "Globex Corp", Name: "Globex Corp"},
	{ID: "Initech", Name: "Initech"},
	{ID: "Initrode", Name: "Initrode"},
}

func TestFuzzyMatch_Exact(t *testing.T) {
	id, err := FuzzyMatch("initech", companies)
	if err != nil {
		t.Fatalf("FuzzyMatch returned error: %v", err)
	}
	if id != "Initech" {
		t.Errorf("FuzzyMatch = %q, want %q", id, "Initech")
	}
}

func TestFuzzyMatch_Fuzzy(t *testing.T) {
	id, err := FuzzyMatch("globex", companies)
	if err != nil {
		t.Fatalf("FuzzyMatch returned error: %v", err)
	}
	if id != "Globex Corp" {
		t.Errorf("FuzzyMatch = %q, want %q", id, "Globex Corp")
	}
}

func TestFuzzyMatch_NoMatch(t *testing.T) {
	if _, err := FuzzyMatch("zzzzz", companies); err == nil {
		t.Fatal("expected error for no match")
	}
}

func TestFuzzyMatch_EmptyInputs(t *testing.T) {
	if _, err := FuzzyMatch("  ", companies); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := FuzzyMatch("acme", nil); !errors.Is(err, ErrEmptyItems) {
		t.Errorf("expected ErrEmptyItems, got %v", err)
	}
}

func TestFuzzyMatch_Ambiguous(t *testing.T) {
	items := []Named{
		{ID: "t-1", Name: "campaign-alpha"},
		{ID: "t-2", Name: "campaign-alphb"},
	}
	_, err := FuzzyMatch("campaign-alph", items)
	var ambiguous *AmbiguousError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	if len(ambiguous.Matches) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(ambiguous.Matches))
	}
	if !strings.Contains(ambiguous.Error(), "candidates:") {
		t.Errorf("error text should list candidates: %s", ambiguous.Error())
	}
}

func TestFuzzyMatchAll(t *testing.T) {
	matches := FuzzyMatchAll("init", companies, 5)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches should be sorted best-first")
	}

	if got := FuzzyMatchAll("init", companies, 1); len(got) != 1 {
		t.Errorf("limit should cap results, got %d", len(got))
	}
	if got := FuzzyMatchAll("", companies, 5); got != nil {
		t.Errorf("empty query should return nil, got %v", got)
	}
}
