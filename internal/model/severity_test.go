package model

import (
	"encoding/json"
	"testing"
)

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityCritical, "critical"},
		{Severity(999), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestParseSeverity tests that model-emitted synonyms map to the canonical
// severities.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected Severity
	}{
		// Canonical values
		{"info", SeverityInfo},
		{"warning", SeverityWarning},
		{"critical", SeverityCritical},

		// Synonyms models emit in practice
		{"minor", SeverityInfo},
		{"low", SeverityInfo},
		{"none", SeverityInfo},
		{"moderate", SeverityWarning},
		{"medium", SeverityWarning},
		{"high", SeverityCritical},
		{"fatal", SeverityCritical},
		{"severe", SeverityCritical},

		// Case and whitespace variants
		{"INFO", SeverityInfo},
		{"Critical", SeverityCritical},
		{"  warning  ", SeverityWarning},

		// Unrecognized values degrade to warning
		{"banana", SeverityWarning},
		{"", SeverityWarning},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			result := ParseSeverity(tc.input)
			if result != tc.expected {
				t.Errorf("ParseSeverity(%q) = %v, expected %v", tc.input, result, tc.expected)
			}
		})
	}
}

// TestSeverityOrdering tests that severity levels are ordered correctly.
// Info < Warning < Critical
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if SeverityInfo >= SeverityWarning {
		t.Error("expected SeverityInfo < SeverityWarning")
	}
	if SeverityWarning >= SeverityCritical {
		t.Error("expected SeverityWarning < SeverityCritical")
	}
}

// TestSeverityJSON tests JSON round-tripping and synonym decoding.
func TestSeverityJSON(t *testing.T) {
	t.Parallel()

	t.Run("marshals to lowercase string", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(SeverityCritical)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `"critical"` {
			t.Errorf("got %s, expected %q", data, `"critical"`)
		}
	})

	t.Run("unmarshals synonyms", func(t *testing.T) {
		t.Parallel()

		var s Severity
		if err := json.Unmarshal([]byte(`"HIGH"`), &s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s != SeverityCritical {
			t.Errorf("got %v, expected SeverityCritical", s)
		}
	})

	t.Run("rejects non-string values", func(t *testing.T) {
		t.Parallel()

		var s Severity
		if err := json.Unmarshal([]byte(`42`), &s); err == nil {
			t.Error("expected error for numeric severity, got nil")
		}
	})
}
