package model

import (
	"encoding/json"
	"testing"
)

// TestParseChangeType tests decoding of change type strings.
func TestParseChangeType(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected ChangeType
	}{
		{"FACTUAL", ChangeFactual},
		{"TONE", ChangeTone},
		{"OMISSION", ChangeOmission},
		{"ADDITION", ChangeAddition},
		{"FORMATTING", ChangeFormatting},

		// Models emit lowercase despite the schema asking for uppercase
		{"factual", ChangeFactual},
		{"omission", ChangeOmission},
		{" tone ", ChangeTone},

		// Unknown types fall back to the most conservative category
		{"STYLE", ChangeFactual},
		{"", ChangeFactual},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			result := ParseChangeType(tc.input)
			if result != tc.expected {
				t.Errorf("ParseChangeType(%q) = %v, expected %v", tc.input, result, tc.expected)
			}
		})
	}
}

// TestChangeTypeString tests the String method of ChangeType.
func TestChangeTypeString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		changeType ChangeType
		expected   string
	}{
		{ChangeFactual, "FACTUAL"},
		{ChangeTone, "TONE"},
		{ChangeOmission, "OMISSION"},
		{ChangeAddition, "ADDITION"},
		{ChangeFormatting, "FORMATTING"},
		{ChangeType(999), "FACTUAL"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.changeType.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.changeType.String(), tc.expected)
			}
		})
	}
}

// TestTextSpanIsEmpty tests empty-span detection.
func TestTextSpanIsEmpty(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		span     TextSpan
		expected bool
	}{
		{"zero value", TextSpan{}, true},
		{"with text", TextSpan{Text: "hello", Start: 0, End: 5}, false},
		{"offsets only", TextSpan{Start: 3, End: 3}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if tc.span.IsEmpty() != tc.expected {
				t.Errorf("IsEmpty() = %v, expected %v", tc.span.IsEmpty(), tc.expected)
			}
		})
	}
}

// TestChangeJSONDecoding tests that a raw model payload decodes into the
// normalized enum values.
func TestChangeJSONDecoding(t *testing.T) {
	t.Parallel()

	raw := `{
		"id": "c1",
		"type": "omission",
		"severity": "high",
		"description": "dropped the dosage warning",
		"original_span": {"text": "Do not exceed 50mg.", "start": 10, "end": 29},
		"generated_span": {"text": "", "start": 0, "end": 0},
		"reasoning": "the generated text omits the safety warning"
	}`

	var c Change
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Type != ChangeOmission {
		t.Errorf("Type = %v, expected ChangeOmission", c.Type)
	}
	if c.Severity != SeverityCritical {
		t.Errorf("Severity = %v, expected SeverityCritical", c.Severity)
	}
	if !c.GeneratedSpan.IsEmpty() {
		t.Error("expected empty generated span")
	}
	if c.OriginalSpan.Text != "Do not exceed 50mg." {
		t.Errorf("OriginalSpan.Text = %q", c.OriginalSpan.Text)
	}
}

// TestChangeJSONEncoding tests that spans omit context fields when unset.
func TestChangeJSONEncoding(t *testing.T) {
	t.Parallel()

	c := Change{
		ID:           "c2",
		Type:         ChangeFactual,
		Severity:     SeverityWarning,
		Description:  "number changed",
		OriginalSpan: TextSpan{Text: "50mg", Start: 5, End: 9},
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decoded["type"] != "FACTUAL" {
		t.Errorf("type = %v, expected FACTUAL", decoded["type"])
	}
	if decoded["severity"] != "warning" {
		t.Errorf("severity = %v, expected warning", decoded["severity"])
	}

	span, ok := decoded["original_span"].(map[string]any)
	if !ok {
		t.Fatalf("original_span has unexpected shape: %T", decoded["original_span"])
	}
	if _, present := span["context_before"]; present {
		t.Error("context_before should be omitted when empty")
	}
}
