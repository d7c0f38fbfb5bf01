package model

import "fmt"

// CompareRequest is the inbound payload for a semantic comparison. The
// texts are sanitized before validation, so limits apply to what the
// model will actually see.
type CompareRequest struct {
	// OriginalText is the reference text.
	OriginalText string `json:"original_text"`
	// GeneratedText is the rewrite to audit against the original.
	GeneratedText string `json:"generated_text"`
	// Sensitivity selects how aggressively to flag drift. Empty means
	// DefaultSensitivity.
	Sensitivity Sensitivity `json:"sensitivity,omitempty"`
	// PremiumMode requests the stronger (and slower) analysis model.
	PremiumMode bool `json:"premium_mode,omitempty"`
}

// Validate checks the request against the given limits. maxText bounds
// each text individually and maxTotal bounds their combined length,
// both in characters. A zero or negative limit disables that check.
func (r *CompareRequest) Validate(maxText, maxTotal int) error {
	if r.OriginalText == "" {
		return fmt.Errorf("original_text: %w", ErrEmptyText)
	}
	if r.GeneratedText == "" {
		return fmt.Errorf("generated_text: %w", ErrEmptyText)
	}
	origLen := len([]rune(r.OriginalText))
	genLen := len([]rune(r.GeneratedText))
	if maxText > 0 {
		if origLen > maxText {
			return fmt.Errorf("original_text is %d characters: %w (limit %d)", origLen, ErrTextTooLong, maxText)
		}
		if genLen > maxText {
			return fmt.Errorf("generated_text is %d characters: %w (limit %d)", genLen, ErrTextTooLong, maxText)
		}
	}
	if maxTotal > 0 && origLen+genLen > maxTotal {
		return fmt.Errorf("texts total %d characters: %w (limit %d)", origLen+genLen, ErrCombinedTooLong, maxTotal)
	}
	if _, err := ParseSensitivity(string(r.Sensitivity)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSensitivity, r.Sensitivity)
	}
	return nil
}
