package model

import (
	"fmt"
	"strings"
)

// Sensitivity selects how aggressively the analysis flags drift. It feeds
// both the prompt sent to the model and the cache key, so two requests
// with different sensitivities never share a cached result.
type Sensitivity string

const (
	// SensitivityLow flags only clear factual changes.
	SensitivityLow Sensitivity = "low"

	// SensitivityMedium flags factual changes plus notable tone and
	// emphasis shifts. This is the default.
	SensitivityMedium Sensitivity = "medium"

	// SensitivityHigh flags any detectable semantic drift, however small.
	SensitivityHigh Sensitivity = "high"
)

// DefaultSensitivity is applied when a request leaves the field empty.
const DefaultSensitivity = SensitivityMedium

// ParseSensitivity validates a sensitivity value from a request. The empty
// string resolves to DefaultSensitivity; anything else must match one of
// the three levels exactly (after lowercasing and trimming).
func ParseSensitivity(s string) (Sensitivity, error) {
	switch Sensitivity(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultSensitivity, nil
	case SensitivityLow:
		return SensitivityLow, nil
	case SensitivityMedium:
		return SensitivityMedium, nil
	case SensitivityHigh:
		return SensitivityHigh, nil
	default:
		return "", fmt.Errorf("invalid sensitivity %q: must be low, medium, or high", s)
	}
}

// String returns the sensitivity as its wire form.
func (s Sensitivity) String() string {
	return string(s)
}
