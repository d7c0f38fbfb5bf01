package llm

import (
	"strings"
	"testing"

	"github.com/semdiff/semdiff/internal/model"
)

func TestSystemPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sensitivity model.Sensitivity
		wantMode    string
	}{
		{name: "low", sensitivity: model.SensitivityLow, wantMode: "SENSITIVITY MODE: LOW"},
		{name: "medium", sensitivity: model.SensitivityMedium, wantMode: "SENSITIVITY MODE: MEDIUM"},
		{name: "high", sensitivity: model.SensitivityHigh, wantMode: "SENSITIVITY MODE: HIGH"},
		{name: "unknown falls back to medium", sensitivity: model.Sensitivity("extreme"), wantMode: "SENSITIVITY MODE: MEDIUM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SystemPrompt(tt.sensitivity)

			if !strings.Contains(got, tt.wantMode) {
				t.Errorf("prompt missing %q", tt.wantMode)
			}
			if !strings.Contains(got, "VALID JSON ONLY") {
				t.Error("prompt missing the JSON-only rule")
			}
			if !strings.Contains(got, `"context_before"`) || !strings.Contains(got, `"context_after"`) {
				t.Error("prompt missing the context fingerprint fields")
			}
			if !strings.Contains(got, `"semantic_change_level": "NONE" | "MINOR" | "MODERATE" | "CRITICAL" | "FATAL"`) {
				t.Error("prompt missing the change level enumeration")
			}
		})
	}
}

func TestUserPrompt(t *testing.T) {
	t.Parallel()

	got := UserPrompt("the original words", "the generated words")

	if !strings.Contains(got, "ORIGINAL TEXT:") || !strings.Contains(got, "GENERATED TEXT:") {
		t.Error("prompt missing section labels")
	}
	if !strings.Contains(got, "the original words") {
		t.Error("prompt missing the original text")
	}
	if !strings.Contains(got, "the generated words") {
		t.Error("prompt missing the generated text")
	}
	if strings.Index(got, "the original words") > strings.Index(got, "the generated words") {
		t.Error("original text should precede generated text")
	}
}
