package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity represents how much a single semantic change matters.
// This allows filtering and sorting changes by their potential impact
// on the meaning of the rewritten text.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and aggregation (the merger needs ordering
// to decide "most severe"). The String() method and JSON marshaling provide
// the lowercase wire representation.
type Severity int

const (
	// SeverityInfo indicates a change with negligible impact.
	// Examples: synonym substitution, punctuation normalization.
	// These are reported for completeness but rarely need review.
	SeverityInfo Severity = iota

	// SeverityWarning indicates a notable change that might matter in
	// some contexts. Examples: tone shift, slight rewording, hedging.
	SeverityWarning

	// SeverityCritical indicates a change that alters meaning or facts.
	// Examples: changed numbers, flipped negation, dropped conditions.
	// A single critical change makes the whole comparison unsafe.
	SeverityCritical
)

// severityNames maps severities to their wire representation.
var severityNames = map[Severity]string{
	SeverityInfo:     "info",
	SeverityWarning:  "warning",
	SeverityCritical: "critical",
}

// severityAliases maps the variants language models actually emit to the
// canonical severity. Models regularly invent values like "minor" or "high"
// no matter how strict the prompt is, so the decoder absorbs them instead
// of failing the whole analysis.
var severityAliases = map[string]Severity{
	"info":     SeverityInfo,
	"minor":    SeverityInfo,
	"low":      SeverityInfo,
	"none":     SeverityInfo,
	"warning":  SeverityWarning,
	"moderate": SeverityWarning,
	"medium":   SeverityWarning,
	"critical": SeverityCritical,
	"high":     SeverityCritical,
	"fatal":    SeverityCritical,
	"severe":   SeverityCritical,
}

// String returns the lowercase wire representation of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSeverity converts a string into a Severity. It is deliberately
// forgiving: case and surrounding whitespace are ignored and common
// synonyms are accepted. Unrecognized values map to SeverityWarning so a
// sloppy model response degrades to "needs review" rather than an error.
func ParseSeverity(s string) Severity {
	if sev, ok := severityAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return sev
	}
	return SeverityWarning
}

// MarshalJSON encodes the severity as its lowercase string form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its string form, accepting the
// same synonyms as ParseSeverity.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("severity must be a string: %w", err)
	}
	*s = ParseSeverity(raw)
	return nil
}
