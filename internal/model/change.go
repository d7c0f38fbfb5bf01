package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChangeType categorizes what kind of semantic drift a change represents.
type ChangeType int

const (
	// ChangeFactual covers altered facts: numbers, names, dates, claims.
	ChangeFactual ChangeType = iota

	// ChangeTone covers shifts in register, sentiment, or emphasis.
	ChangeTone

	// ChangeOmission covers content present in the original but missing
	// from the generated text.
	ChangeOmission

	// ChangeAddition covers content the generated text invented.
	ChangeAddition

	// ChangeFormatting covers structural rearrangement with no meaning
	// change: lists, headings, punctuation.
	ChangeFormatting
)

// changeTypeNames maps change types to their wire representation.
var changeTypeNames = map[ChangeType]string{
	ChangeFactual:    "FACTUAL",
	ChangeTone:       "TONE",
	ChangeOmission:   "OMISSION",
	ChangeAddition:   "ADDITION",
	ChangeFormatting: "FORMATTING",
}

// changeTypeValues is the reverse of changeTypeNames for decoding.
var changeTypeValues = map[string]ChangeType{
	"FACTUAL":    ChangeFactual,
	"TONE":       ChangeTone,
	"OMISSION":   ChangeOmission,
	"ADDITION":   ChangeAddition,
	"FORMATTING": ChangeFormatting,
}

// String returns the uppercase wire representation of the change type.
func (t ChangeType) String() string {
	if name, ok := changeTypeNames[t]; ok {
		return name
	}
	return "FACTUAL"
}

// ParseChangeType converts a string into a ChangeType, ignoring case and
// surrounding whitespace. Unrecognized values map to ChangeFactual, the
// most conservative category.
func ParseChangeType(s string) ChangeType {
	if t, ok := changeTypeValues[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return t
	}
	return ChangeFactual
}

// MarshalJSON encodes the change type as its uppercase string form.
func (t ChangeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a change type from its string form.
func (t *ChangeType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("change type must be a string: %w", err)
	}
	*t = ParseChangeType(raw)
	return nil
}

// TextSpan locates a quoted excerpt inside one of the compared texts.
// Start and End are byte offsets into the sanitized text such that
// text[Start:End] equals Text. A span may be empty (all fields zero)
// when a change has no anchor on that side, e.g. pure omissions have
// an empty generated span.
type TextSpan struct {
	// Text is the excerpt exactly as it appears in the source.
	Text string `json:"text"`
	// Start is the byte offset of the excerpt's first byte.
	Start int `json:"start"`
	// End is the byte offset one past the excerpt's last byte.
	End int `json:"end"`
	// ContextBefore holds the few characters preceding the excerpt,
	// used to disambiguate repeated occurrences.
	ContextBefore string `json:"context_before,omitempty"`
	// ContextAfter holds the few characters following the excerpt.
	ContextAfter string `json:"context_after,omitempty"`
}

// IsEmpty reports whether the span carries no excerpt at all.
func (s TextSpan) IsEmpty() bool {
	return s.Text == "" && s.Start == 0 && s.End == 0
}

// Change is one semantic difference between the original and generated
// texts, as reported by the model and verified by the reconciler.
type Change struct {
	// ID uniquely identifies the change within a response. Assigned
	// server-side when the model omits it.
	ID string `json:"id"`
	// Type categorizes the change.
	Type ChangeType `json:"type"`
	// Severity grades the change's impact.
	Severity Severity `json:"severity"`
	// Description is the model's one-line summary of the change.
	Description string `json:"description"`
	// OriginalSpan locates the affected excerpt in the original text.
	OriginalSpan TextSpan `json:"original_span"`
	// GeneratedSpan locates the affected excerpt in the generated text.
	GeneratedSpan TextSpan `json:"generated_span"`
	// Reasoning is the model's explanation for flagging the change.
	Reasoning string `json:"reasoning,omitempty"`
}
