package sync

import (
	"testing"

	"github.com/harperreed/dealboard/models"
)

func TestMatchContactByEmail(t *testing.T) {
	existing := []models.Contact{
		{ID: 1, FirstName: "Alice", Email: "alice@example.com"},
		{ID: 2, FirstName: "Bob", Email: "bob@example.com"},
	}

	matcher := NewContactMatcher(existing)

	match, found := matcher.FindMatch("Alice@Example.com ")
	if !found {
		t.Fatal("expected to find match for alice@example.com")
	}
	if match.ID != 1 {
		t.Errorf("expected contact 1, got %d", match.ID)
	}

	if _, found = matcher.FindMatch("charlie@example.com"); found {
		t.Error("expected no match for charlie@example.com")
	}
	if _, found = matcher.FindMatch(""); found {
		t.Error("empty email must never match")
	}

	matcher.AddContact(&models.Contact{ID: 3, Email: "charlie@example.com"})
	if _, found = matcher.FindMatch("charlie@example.com"); !found {
		t.Error("expected added contact to match")
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Alice@Example.com", "alice@example.com"},
		{"alice.smith@example.com", "alice.smith@example.com"},
		{"  ALICE@EXAMPLE.COM ", "alice@example.com"},
	}

	for _, tt := range tests {
		result := normalizeEmail(tt.input)
		if result != tt.expected {
			t.Errorf("normalizeEmail(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
