package model

import (
	"encoding/json"
	"testing"
)

// TestRiskLevelString tests the String method of RiskLevel.
func TestRiskLevelString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		level    RiskLevel
		expected string
	}{
		{RiskNone, "NONE"},
		{RiskMinor, "MINOR"},
		{RiskModerate, "MODERATE"},
		{RiskCritical, "CRITICAL"},
		{RiskFatal, "FATAL"},
		{RiskLevel(999), "NONE"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.level.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.level.String(), tc.expected)
			}
		})
	}
}

// TestParseRiskLevel tests decoding of risk level strings.
func TestParseRiskLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected RiskLevel
	}{
		{"NONE", RiskNone},
		{"MINOR", RiskMinor},
		{"MODERATE", RiskModerate},
		{"CRITICAL", RiskCritical},
		{"FATAL", RiskFatal},

		// Case and whitespace variants
		{"none", RiskNone},
		{"Fatal", RiskFatal},
		{" minor ", RiskMinor},

		// Unreadable values need review, so they map to moderate
		{"catastrophic", RiskModerate},
		{"", RiskModerate},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			result := ParseRiskLevel(tc.input)
			if result != tc.expected {
				t.Errorf("ParseRiskLevel(%q) = %v, expected %v", tc.input, result, tc.expected)
			}
		})
	}
}

// TestRiskLevelOrdering tests that risk levels are ordered correctly.
// None < Minor < Moderate < Critical < Fatal
func TestRiskLevelOrdering(t *testing.T) {
	t.Parallel()

	if RiskNone >= RiskMinor {
		t.Error("expected RiskNone < RiskMinor")
	}
	if RiskMinor >= RiskModerate {
		t.Error("expected RiskMinor < RiskModerate")
	}
	if RiskModerate >= RiskCritical {
		t.Error("expected RiskModerate < RiskCritical")
	}
	if RiskCritical >= RiskFatal {
		t.Error("expected RiskCritical < RiskFatal")
	}
}

// TestRiskLevelJSON tests JSON round-tripping.
func TestRiskLevelJSON(t *testing.T) {
	t.Parallel()

	t.Run("marshals to uppercase string", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(RiskModerate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `"MODERATE"` {
			t.Errorf("got %s, expected %q", data, `"MODERATE"`)
		}
	})

	t.Run("unmarshals lowercase input", func(t *testing.T) {
		t.Parallel()

		var l RiskLevel
		if err := json.Unmarshal([]byte(`"fatal"`), &l); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l != RiskFatal {
			t.Errorf("got %v, expected RiskFatal", l)
		}
	})
}
