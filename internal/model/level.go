package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskLevel classifies the overall danger of a comparison. Unlike Severity,
// which describes a single change, the risk level summarizes the whole
// response and pairs with the numeric risk score.
type RiskLevel int

const (
	// RiskNone means the texts are semantically equivalent.
	RiskNone RiskLevel = iota

	// RiskMinor means only cosmetic or negligible drift was found.
	RiskMinor

	// RiskModerate means the rewrite shifted meaning enough to review.
	RiskModerate

	// RiskCritical means facts or intent changed.
	RiskCritical

	// RiskFatal means the rewrite contradicts the original outright.
	RiskFatal
)

// riskLevelNames maps levels to their wire representation.
var riskLevelNames = map[RiskLevel]string{
	RiskNone:     "NONE",
	RiskMinor:    "MINOR",
	RiskModerate: "MODERATE",
	RiskCritical: "CRITICAL",
	RiskFatal:    "FATAL",
}

// riskLevelValues is the reverse of riskLevelNames for decoding.
var riskLevelValues = map[string]RiskLevel{
	"NONE":     RiskNone,
	"MINOR":    RiskMinor,
	"MODERATE": RiskModerate,
	"CRITICAL": RiskCritical,
	"FATAL":    RiskFatal,
}

// String returns the uppercase wire representation of the risk level.
func (l RiskLevel) String() string {
	if name, ok := riskLevelNames[l]; ok {
		return name
	}
	return "NONE"
}

// ParseRiskLevel converts a string into a RiskLevel, ignoring case and
// surrounding whitespace. Unrecognized values map to RiskModerate: if the
// model produced a level we cannot read, the response needs human eyes.
func ParseRiskLevel(s string) RiskLevel {
	if l, ok := riskLevelValues[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return l
	}
	return RiskModerate
}

// MarshalJSON encodes the risk level as its uppercase string form.
func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a risk level from its string form.
func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("risk level must be a string: %w", err)
	}
	*l = ParseRiskLevel(raw)
	return nil
}
